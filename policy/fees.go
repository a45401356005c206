package policy

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"

	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

const (
	// MaxBlockConfirms is the confirmation horizon tracked per bucket.
	MaxBlockConfirms = 25

	// DefaultDecay is the per-block decay of the moving averages,
	// roughly a 500-block half memory.
	DefaultDecay = 0.998

	// MinSuccessPct is the confirmation rate a bucket range needs to
	// count as "confirms within target".
	MinSuccessPct = 0.95

	// SufficientFeeTxs is the average number of transactions per block
	// a bucket range must hold before it is judged at all.
	SufficientFeeTxs = 1.0

	// MinBucketFeeRate and MaxBucketFeeRate bound the bucket bounds,
	// in satoshis per kB, spaced by FeeSpacing.
	MinBucketFeeRate = 10.0
	MaxBucketFeeRate = 1e7
	FeeSpacing       = 1.1
)

// infFeeRate caps the top bucket so every real rate sorts below it.
const infFeeRate = float64(amount.MaxMoney)

// feeBucketBounds builds the exponentially spaced bucket bounds every
// estimator instance shares.
func feeBucketBounds() []float64 {
	bounds := make([]float64, 0, 200)
	for v := MinBucketFeeRate; v <= MaxBucketFeeRate; v *= FeeSpacing {
		bounds = append(bounds, v)
	}
	return append(bounds, infFeeRate)
}

type txStatsInfo struct {
	blockHeight int32
	bucketIndex int
}

// BlockPolicyEstimator learns feerate-to-confirmation behavior from
// the pool feed and answers the estimate* queries. It satisfies
// mempool.FeeEstimator.
type BlockPolicyEstimator struct {
	mtx sync.Mutex

	bestSeenHeight int32
	feeStats       *TxConfirmStats
	trackedTxs     map[util.Hash]txStatsInfo

	trackedCount   uint64
	untrackedCount uint64
}

func NewBlockPolicyEstimator() *BlockPolicyEstimator {
	return &BlockPolicyEstimator{
		feeStats:   NewTxConfirmStats(feeBucketBounds(), MaxBlockConfirms, DefaultDecay),
		trackedTxs: make(map[util.Hash]txStatsInfo),
	}
}

// ProcessTx learns a newly admitted pool transaction. Entries accepted
// at a stale height would skew the confirmation counts and are only
// tallied.
func (bpe *BlockPolicyEstimator) ProcessTx(entry *mempool.TxEntry) {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()

	hash := entry.Tx.GetHash()
	if _, ok := bpe.trackedTxs[hash]; ok {
		log.Debug("estimatefee: %s already being tracked", hash)
		return
	}
	if entry.TxHeight != bpe.bestSeenHeight {
		bpe.untrackedCount++
		return
	}
	bpe.trackedCount++

	rate := entry.GetFeeRate()
	bpe.trackedTxs[hash] = txStatsInfo{
		blockHeight: entry.TxHeight,
		bucketIndex: bpe.feeStats.NewTx(entry.TxHeight, float64(rate.SataoshisPerK)),
	}
}

// processBlockTx turns one confirmed entry into a data point; reports
// whether the point was usable.
func (bpe *BlockPolicyEstimator) processBlockTx(blockHeight int32, entry *mempool.TxEntry) bool {
	if !bpe.removeTxLocked(entry.Tx.GetHash()) {
		// Wasn't being tracked, e.g. admitted during a reorg.
		return false
	}
	blocksToConfirm := blockHeight - entry.TxHeight
	if blocksToConfirm <= 0 {
		log.Debug("estimatefee: transaction claims to confirm before its admission height")
		return false
	}
	rate := entry.GetFeeRate()
	bpe.feeStats.Record(int(blocksToConfirm), float64(rate.SataoshisPerK))
	return true
}

// ProcessBlock folds a connected block's confirmed pool entries into
// the history.
func (bpe *BlockPolicyEstimator) ProcessBlock(blockHeight int32, entries []*mempool.TxEntry) {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()

	if blockHeight <= bpe.bestSeenHeight {
		// A reorg replay; the stats only ever move forward.
		return
	}
	bpe.bestSeenHeight = blockHeight

	bpe.feeStats.ClearCurrent(blockHeight)

	countedTxs := 0
	for _, entry := range entries {
		if bpe.processBlockTx(blockHeight, entry) {
			countedTxs++
		}
	}
	bpe.feeStats.UpdateMovingAverages()

	log.Debug("estimatefee: block %d, %d of %d confirmed txs usable (%d tracked, %d untracked in pool)",
		blockHeight, countedTxs, len(entries), bpe.trackedCount, bpe.untrackedCount)
	bpe.trackedCount = 0
	bpe.untrackedCount = 0
}

// RemoveTx forgets an unconfirmed transaction that left the pool.
func (bpe *BlockPolicyEstimator) RemoveTx(hash util.Hash) {
	bpe.mtx.Lock()
	bpe.removeTxLocked(hash)
	bpe.mtx.Unlock()
}

func (bpe *BlockPolicyEstimator) removeTxLocked(hash util.Hash) bool {
	info, ok := bpe.trackedTxs[hash]
	if !ok {
		return false
	}
	bpe.feeStats.RemoveTx(info.blockHeight, bpe.bestSeenHeight, info.bucketIndex)
	delete(bpe.trackedTxs, hash)
	return true
}

// EstimateFee is the rate expected to confirm within confTarget
// blocks, zero when there is not enough data.
func (bpe *BlockPolicyEstimator) EstimateFee(confTarget int) util.FeeRate {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()

	if confTarget <= 0 || confTarget > bpe.feeStats.GetMaxConfirms() {
		return util.FeeRate{}
	}
	median := bpe.feeStats.EstimateMedianVal(confTarget, SufficientFeeTxs,
		MinSuccessPct, true, bpe.bestSeenHeight)
	if median < 0 {
		return util.FeeRate{}
	}
	return util.FeeRate{SataoshisPerK: int64(median)}
}

// EstimateSmartFee relaxes the target until an answer exists and
// reports the target actually answered. foundTarget is 0 when even the
// horizon had no answer.
func (bpe *BlockPolicyEstimator) EstimateSmartFee(confTarget int) (rate util.FeeRate, foundTarget int) {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()

	if confTarget <= 0 || confTarget > bpe.feeStats.GetMaxConfirms() {
		return util.FeeRate{}, 0
	}
	median := -1.0
	target := confTarget
	for median < 0 && target <= bpe.feeStats.GetMaxConfirms() {
		median = bpe.feeStats.EstimateMedianVal(target, SufficientFeeTxs,
			MinSuccessPct, true, bpe.bestSeenHeight)
		target++
	}
	if median < 0 {
		return util.FeeRate{}, 0
	}
	return util.FeeRate{SataoshisPerK: int64(median)}, target - 1
}

// EstimateRawFee answers a single target at a caller-chosen success
// threshold, without the smart-fee target relaxation.
func (bpe *BlockPolicyEstimator) EstimateRawFee(confTarget int, threshold float64) (util.FeeRate, bool) {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()

	if confTarget <= 0 || confTarget > bpe.feeStats.GetMaxConfirms() {
		return util.FeeRate{}, false
	}
	if threshold <= 0 || threshold > 1 {
		return util.FeeRate{}, false
	}
	median := bpe.feeStats.EstimateMedianVal(confTarget, SufficientFeeTxs,
		threshold, true, bpe.bestSeenHeight)
	if median < 0 {
		return util.FeeRate{}, false
	}
	return util.FeeRate{SataoshisPerK: int64(median)}, true
}

// MaxUsableEstimate is the highest answerable confirmation target.
func (bpe *BlockPolicyEstimator) MaxUsableEstimate() int {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()
	return bpe.feeStats.GetMaxConfirms()
}

// Serialize writes the best seen height and the decayed history.
func (bpe *BlockPolicyEstimator) Serialize(w io.Writer) error {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()
	if err := binary.Write(w, binary.LittleEndian, bpe.bestSeenHeight); err != nil {
		return err
	}
	return bpe.feeStats.Serialize(w)
}

// Unserialize restores a previously serialized history.
func (bpe *BlockPolicyEstimator) Unserialize(r io.Reader) error {
	bpe.mtx.Lock()
	defer bpe.mtx.Unlock()
	var height int32
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return err
	}
	if err := bpe.feeStats.Unserialize(r); err != nil {
		return err
	}
	bpe.bestSeenHeight = height
	return nil
}

var (
	feeEstimatesBucket = []byte("feeestimates")
	feeEstimatesKey    = []byte("stats")
)

// SaveTo persists the estimator state into the given bolt handle.
func (bpe *BlockPolicyEstimator) SaveTo(db *bolt.DB) error {
	var buf bytes.Buffer
	if err := bpe.Serialize(&buf); err != nil {
		return err
	}
	return db.Update(func(btx *bolt.Tx) error {
		bucket, err := btx.CreateBucketIfNotExists(feeEstimatesBucket)
		if err != nil {
			return err
		}
		return bucket.Put(feeEstimatesKey, buf.Bytes())
	})
}

// LoadFrom restores persisted state; a missing record is not an error.
func (bpe *BlockPolicyEstimator) LoadFrom(db *bolt.DB) error {
	var raw []byte
	err := db.View(func(btx *bolt.Tx) error {
		bucket := btx.Bucket(feeEstimatesBucket)
		if bucket == nil {
			return nil
		}
		if v := bucket.Get(feeEstimatesKey); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	return errors.Wrap(bpe.Unserialize(bytes.NewReader(raw)), "fee estimates")
}
