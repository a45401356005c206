package versionbits

import (
	"math"
	"sync"

	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/consensus"
	lru "github.com/hashicorp/golang-lru"
)

const (
	// VersionBitsLastOldBlockVersion what block version to use for new blocks (pre versionBits)
	VersionBitsLastOldBlockVersion = 4
	// VersionBitsTopBits what bits to set in version for versionBits blocks
	VersionBitsTopBits = 0x20000000
	// VersionBitsTopMask What bitMask determines whether versionBits is in use
	VersionBitsTopMask int64 = 0xE0000000
	// VersionBitsNumBits Total bits available for versionBits
	VersionBitsNumBits = 29
)

type ThresholdState int

const (
	ThresholdDefined ThresholdState = iota
	ThresholdStarted
	ThresholdLockedIn
	ThresholdActive
	ThresholdFailed
)

type BIP9DeploymentInfo struct {
	Name string
	// GbtForce clients confirm rule support through getblocktemplate
	// unless forced.
	GbtForce bool
	// CheckMNProtocol holds the started bit back until masternodes have
	// upgraded on networks that gate on it.
	CheckMNProtocol bool
}

// thresholdStateCacheSize bounds the memoized period boundaries per
// deployment; evicted entries are simply recomputed on the next walk.
const thresholdStateCacheSize = 4096

// ThresholdConditionCache memoizes the threshold state at period
// boundary blocks, evicting least recently used boundaries so
// abandoned branches do not pin index entries.
type ThresholdConditionCache struct {
	entries *lru.Cache
}

func newThresholdConditionCache() ThresholdConditionCache {
	entries, err := lru.New(thresholdStateCacheSize)
	if err != nil {
		panic(err)
	}
	return ThresholdConditionCache{entries: entries}
}

func (tcc ThresholdConditionCache) get(index *blockindex.BlockIndex) (ThresholdState, bool) {
	value, ok := tcc.entries.Get(index)
	if !ok {
		return ThresholdDefined, false
	}
	return value.(ThresholdState), true
}

func (tcc ThresholdConditionCache) put(index *blockindex.BlockIndex, state ThresholdState) {
	tcc.entries.Add(index, state)
}

var VersionBitsDeploymentInfo = [consensus.MaxVersionBitsDeployments]BIP9DeploymentInfo{
	{
		Name:     "testdummy",
		GbtForce: true,
	},
	{
		Name:     "csv",
		GbtForce: true,
	},
	{
		Name:            "dip0001",
		GbtForce:        true,
		CheckMNProtocol: true,
	},
	{
		Name:     "bip147",
		GbtForce: true,
	},
	{
		Name:     "dip0003",
		GbtForce: true,
	},
	{
		Name:     "dip0008",
		GbtForce: true,
	},
}

type AbstractThresholdConditionChecker interface {
	Condition(index *blockindex.BlockIndex, params *chainparams.Params) bool
	BeginTime(params *chainparams.Params) int64
	EndTime(params *chainparams.Params) int64
	Period(params *chainparams.Params) int
	Threshold(params *chainparams.Params) int
}

var VBCache *VersionBitsCache

type VersionBitsCache struct {
	sync.RWMutex
	cache [consensus.MaxVersionBitsDeployments]ThresholdConditionCache
}

func NewVersionBitsCache() *VersionBitsCache {
	var cache [consensus.MaxVersionBitsDeployments]ThresholdConditionCache
	for i := 0; i < int(consensus.MaxVersionBitsDeployments); i++ {
		cache[i] = newThresholdConditionCache()
	}
	return &VersionBitsCache{cache: cache}
}

func (vbc *VersionBitsCache) Clear() {
	for i := 0; i < int(consensus.MaxVersionBitsDeployments); i++ {
		vbc.cache[i].entries.Purge()
	}
}

func NewWarnBitsCache(bitNum int) []ThresholdConditionCache {
	w := make([]ThresholdConditionCache, 0, bitNum)
	for i := 0; i < bitNum; i++ {
		w = append(w, newThresholdConditionCache())
	}
	return w
}

func VersionBitsState(indexPrev *blockindex.BlockIndex, params *chainparams.Params,
	pos consensus.DeploymentPos, vbc *VersionBitsCache) ThresholdState {
	vc := &VersionBitsConditionChecker{id: pos}
	return GetStateFor(vc, indexPrev, params, vbc.cache[pos])
}

func VersionBitsStateSinceHeight(indexPrev *blockindex.BlockIndex, params *chainparams.Params,
	pos consensus.DeploymentPos, vbc *VersionBitsCache) int32 {
	vc := &VersionBitsConditionChecker{id: pos}
	return GetStateSinceHeightFor(vc, indexPrev, params, vbc.cache[pos])
}

func VersionBitsMask(params *chainparams.Params, pos consensus.DeploymentPos) uint32 {
	vc := VersionBitsConditionChecker{id: pos}
	return uint32(vc.Mask(params))
}

type VersionBitsConditionChecker struct {
	id consensus.DeploymentPos
}

func (vc *VersionBitsConditionChecker) BeginTime(params *chainparams.Params) int64 {
	return params.Deployments[vc.id].StartTime
}

func (vc *VersionBitsConditionChecker) EndTime(params *chainparams.Params) int64 {
	return params.Deployments[vc.id].Timeout
}

// Period defers to the network window unless the deployment carries its own.
func (vc *VersionBitsConditionChecker) Period(params *chainparams.Params) int {
	if w := params.Deployments[vc.id].WindowSize; w != 0 {
		return int(w)
	}
	return int(params.MinerConfirmationWindow)
}

func (vc *VersionBitsConditionChecker) Threshold(params *chainparams.Params) int {
	if t := params.Deployments[vc.id].Threshold; t != 0 {
		return int(t)
	}
	return int(params.RuleChangeActivationThreshold)
}

func (vc *VersionBitsConditionChecker) Condition(index *blockindex.BlockIndex, params *chainparams.Params) bool {
	return ((int64(index.Header.Version) & VersionBitsTopMask) == VersionBitsTopBits) &&
		(index.Header.Version&vc.Mask(params)) != 0
}

func (vc *VersionBitsConditionChecker) Mask(params *chainparams.Params) int32 {
	return int32(1) << uint(params.Deployments[vc.id].Bit)
}

func GetStateFor(vc AbstractThresholdConditionChecker, indexPrev *blockindex.BlockIndex,
	params *chainparams.Params, cache ThresholdConditionCache) ThresholdState {

	nPeriod := int32(vc.Period(params))
	nThreshold := vc.Threshold(params)
	nTimeStart := vc.BeginTime(params)
	nTimeTimeout := vc.EndTime(params)

	// A block's state is always the same as that of the first of its period,
	// so it is computed based on an indexPrev whose height equals a multiple
	// of nPeriod - 1.
	if indexPrev != nil {
		indexPrev = indexPrev.GetAncestor(indexPrev.Height - (indexPrev.Height+1)%nPeriod)
	}

	// Walk backwards in steps of nPeriod to find an indexPrev whose
	// information is known.
	toCompute := make([]*blockindex.BlockIndex, 0)
	for {
		if _, ok := cache.get(indexPrev); ok {
			break
		}
		if indexPrev == nil {
			// The genesis block is by definition defined.
			cache.put(indexPrev, ThresholdDefined)
			break
		}
		if indexPrev.GetMedianTimePast() < nTimeStart {
			// Every earlier block is before the start time as well.
			cache.put(indexPrev, ThresholdDefined)
			break
		}
		toCompute = append(toCompute, indexPrev)
		indexPrev = indexPrev.GetAncestor(indexPrev.Height - nPeriod)
	}

	state, ok := cache.get(indexPrev)
	if !ok {
		panic("the walk above always seeds the cache entry")
	}

	// Now walk forward and compute the state of descendants of indexPrev.
	for len(toCompute) > 0 {
		stateNext := state
		indexPrev = toCompute[len(toCompute)-1]
		toCompute = toCompute[:len(toCompute)-1]

		switch state {
		case ThresholdDefined:
			if indexPrev.GetMedianTimePast() >= nTimeTimeout {
				stateNext = ThresholdFailed
			} else if indexPrev.GetMedianTimePast() >= nTimeStart {
				stateNext = ThresholdStarted
			}
		case ThresholdStarted:
			if indexPrev.GetMedianTimePast() >= nTimeTimeout {
				stateNext = ThresholdFailed
				break
			}
			// We need to count
			indexCount := indexPrev
			count := 0
			for i := int32(0); i < nPeriod; i++ {
				if vc.Condition(indexCount, params) {
					count++
				}
				indexCount = indexCount.Prev
			}
			if count >= nThreshold {
				stateNext = ThresholdLockedIn
			}
		case ThresholdLockedIn:
			// Always progresses into ACTIVE.
			stateNext = ThresholdActive
		case ThresholdFailed, ThresholdActive:
			// Nothing happens, these are terminal states.
		}
		state = stateNext
		cache.put(indexPrev, state)
	}

	return state
}

func GetStateSinceHeightFor(vc AbstractThresholdConditionChecker, indexPrev *blockindex.BlockIndex,
	params *chainparams.Params, cache ThresholdConditionCache) int32 {
	initialState := GetStateFor(vc, indexPrev, params, cache)

	// BIP 9 about state DEFINED: "The genesis block is by definition in this
	// state for each deployment."
	if initialState == ThresholdDefined {
		return 0
	}

	nPeriod := int32(vc.Period(params))
	// A block's state is always the same as that of the first of its period.
	// Right now indexPrev points to the block prior to the block that we are
	// computing for, so it points either into the same period, or to the last
	// block of the previous period.
	indexPrev = indexPrev.GetAncestor(indexPrev.Height - (indexPrev.Height+1)%nPeriod)
	previousPeriodParent := indexPrev.GetAncestor(indexPrev.Height - nPeriod)
	for previousPeriodParent != nil && GetStateFor(vc, previousPeriodParent, params, cache) == initialState {
		indexPrev = previousPeriodParent
		previousPeriodParent = indexPrev.GetAncestor(indexPrev.Height - nPeriod)
	}

	// Adjust the result because right now we point to the parent block.
	return indexPrev.Height + 1
}

type WarningBitsConditionChecker struct {
	bit int
}

func NewWarningBitsConChecker(bitIn int) *WarningBitsConditionChecker {
	return &WarningBitsConditionChecker{bit: bitIn}
}

func (w *WarningBitsConditionChecker) BeginTime(params *chainparams.Params) int64 {
	return 0
}

func (w *WarningBitsConditionChecker) EndTime(params *chainparams.Params) int64 {
	return math.MaxInt64
}

func (w *WarningBitsConditionChecker) Period(params *chainparams.Params) int {
	return int(params.MinerConfirmationWindow)
}

func (w *WarningBitsConditionChecker) Threshold(params *chainparams.Params) int {
	return int(params.RuleChangeActivationThreshold)
}

func (w *WarningBitsConditionChecker) Condition(index *blockindex.BlockIndex, params *chainparams.Params) bool {
	return int64(index.Header.Version)&VersionBitsTopMask == VersionBitsTopBits &&
		(index.Header.Version>>uint(w.bit))&1 != 0 &&
		(ComputeBlockVersion(index.Prev, params, VBCache)>>uint(w.bit))&1 == 0
}

// ComputeBlockVersion assembles the version a new block should carry: the
// versionbits prefix plus the bit of every deployment that is started or
// locked in. Started deployments gating on the masternode protocol stay
// unsignalled on networks with BIP9CheckMasternodesUpgraded.
func ComputeBlockVersion(indexPrev *blockindex.BlockIndex, params *chainparams.Params,
	vbc *VersionBitsCache) int32 {
	version := int32(VersionBitsTopBits)

	for i := 0; i < int(consensus.MaxVersionBitsDeployments); i++ {
		pos := consensus.DeploymentPos(i)
		state := func() ThresholdState {
			vbc.Lock()
			defer vbc.Unlock()
			return VersionBitsState(indexPrev, params, pos, vbc)
		}()

		if VersionBitsDeploymentInfo[pos].CheckMNProtocol &&
			state == ThresholdStarted && params.BIP9CheckMasternodesUpgraded {
			continue
		}
		if state == ThresholdLockedIn || state == ThresholdStarted {
			version |= int32(VersionBitsMask(params, pos))
		}
	}

	return version
}

func init() {
	VBCache = NewVersionBitsCache()
}
