package policy

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// TxConfirmStats tracks, per feerate bucket, how long transactions
// took to confirm. Confirmed history lives in exponentially decayed
// moving averages; the unconfirmed counts are kept separately so a
// backlog of stuck transactions drags the estimate down without
// polluting the history.
type TxConfirmStats struct {
	// buckets holds the inclusive feerate upper bound of each bucket,
	// ascending.
	buckets []float64

	// confAvg[y][x] is the decayed count of bucket-x transactions that
	// confirmed within y+1 blocks.
	confAvg      [][]float64
	curBlockConf [][]int

	txCtAvg      []float64
	curBlockTxCt []int

	// avg is the decayed feerate total per bucket; avg/txCtAvg is the
	// representative rate of a bucket.
	avg         []float64
	curBlockVal []float64

	decay float64

	// unconfTxs[h%bins][x] counts mempool transactions accepted at
	// height h that are still unconfirmed; once older than the
	// tracking horizon they move to oldUnconfTxs.
	unconfTxs    [][]int
	oldUnconfTxs []int
}

// NewTxConfirmStats sizes the tracking arrays for the given bucket
// bounds and confirmation horizon.
func NewTxConfirmStats(bucketBounds []float64, maxConfirms int, decay float64) *TxConfirmStats {
	s := &TxConfirmStats{
		buckets: append([]float64(nil), bucketBounds...),
		decay:   decay,
	}
	n := len(s.buckets)
	s.confAvg = make([][]float64, maxConfirms)
	s.curBlockConf = make([][]int, maxConfirms)
	s.unconfTxs = make([][]int, maxConfirms)
	for i := 0; i < maxConfirms; i++ {
		s.confAvg[i] = make([]float64, n)
		s.curBlockConf[i] = make([]int, n)
		s.unconfTxs[i] = make([]int, n)
	}
	s.txCtAvg = make([]float64, n)
	s.curBlockTxCt = make([]int, n)
	s.avg = make([]float64, n)
	s.curBlockVal = make([]float64, n)
	s.oldUnconfTxs = make([]int, n)
	return s
}

// bucketIndex maps a feerate to the lowest bucket whose bound covers
// it; rates beyond the top bound land in the top bucket.
func (s *TxConfirmStats) bucketIndex(val float64) int {
	i := sort.SearchFloat64s(s.buckets, val)
	if i >= len(s.buckets) {
		i = len(s.buckets) - 1
	}
	return i
}

// GetMaxConfirms is the confirmation horizon being tracked.
func (s *TxConfirmStats) GetMaxConfirms() int {
	return len(s.confAvg)
}

// ClearCurrent rolls the per-block counters for a new block at
// blockHeight: the unconfirmed slot being reused ages into the old
// bucket and the current-block tallies reset.
func (s *TxConfirmStats) ClearCurrent(blockHeight int32) {
	bins := len(s.unconfTxs)
	slot := int(blockHeight) % bins
	for j := range s.buckets {
		s.oldUnconfTxs[j] += s.unconfTxs[slot][j]
		s.unconfTxs[slot][j] = 0
		for i := range s.curBlockConf {
			s.curBlockConf[i][j] = 0
		}
		s.curBlockVal[j] = 0
		s.curBlockTxCt[j] = 0
	}
}

// Record adds one confirmed data point. blocksToConfirm is 1-based.
func (s *TxConfirmStats) Record(blocksToConfirm int, val float64) {
	if blocksToConfirm < 1 {
		return
	}
	bucket := s.bucketIndex(val)
	for i := blocksToConfirm; i <= len(s.curBlockConf); i++ {
		s.curBlockConf[i-1][bucket]++
	}
	s.curBlockTxCt[bucket]++
	s.curBlockVal[bucket] += val
}

// NewTx registers an unconfirmed transaction and returns the bucket it
// was filed under, which the caller must remember for removeTx.
func (s *TxConfirmStats) NewTx(blockHeight int32, val float64) int {
	bucket := s.bucketIndex(val)
	slot := int(blockHeight) % len(s.unconfTxs)
	s.unconfTxs[slot][bucket]++
	return bucket
}

// RemoveTx forgets an unconfirmed transaction that left the pool
// without confirming in a tracked block.
func (s *TxConfirmStats) RemoveTx(entryHeight, bestSeenHeight int32, bucket int) {
	// bestSeenHeight is zero before any block arrives; everything is
	// then still in an unconfirmed slot.
	blocksAgo := int(bestSeenHeight - entryHeight)
	if bestSeenHeight == 0 {
		blocksAgo = 0
	}
	if blocksAgo < 0 {
		return
	}
	if blocksAgo >= len(s.unconfTxs) {
		if s.oldUnconfTxs[bucket] > 0 {
			s.oldUnconfTxs[bucket]--
		}
		return
	}
	slot := int(entryHeight) % len(s.unconfTxs)
	if s.unconfTxs[slot][bucket] > 0 {
		s.unconfTxs[slot][bucket]--
	}
}

// UpdateMovingAverages decays the history and folds in the counters of
// the block just processed.
func (s *TxConfirmStats) UpdateMovingAverages() {
	for j := range s.buckets {
		for i := range s.confAvg {
			s.confAvg[i][j] = s.confAvg[i][j]*s.decay + float64(s.curBlockConf[i][j])
		}
		s.avg[j] = s.avg[j]*s.decay + s.curBlockVal[j]
		s.txCtAvg[j] = s.txCtAvg[j]*s.decay + float64(s.curBlockTxCt[j])
	}
}

// EstimateMedianVal scans bucket ranges for the cheapest range still
// confirming within confTarget blocks at the required success rate
// (requireGreater), or the dearest range failing it. The returned rate
// is the median-transaction bucket's average feerate, -1 when no range
// qualifies.
func (s *TxConfirmStats) EstimateMedianVal(confTarget int, sufficientTxVal,
	successBreakPoint float64, requireGreater bool, blockHeight int32) float64 {
	if confTarget < 1 || confTarget > s.GetMaxConfirms() {
		return -1
	}

	nConf := 0.0
	totalNum := 0.0
	extraNum := 0
	maxBucket := len(s.buckets) - 1
	bins := len(s.unconfTxs)

	startBucket, step := 0, 1
	if requireGreater {
		startBucket, step = maxBucket, -1
	}

	curNearBucket := startBucket
	bestNearBucket := startBucket
	curFarBucket := startBucket
	bestFarBucket := startBucket
	foundAnswer := false

	for bucket := startBucket; bucket >= 0 && bucket <= maxBucket; bucket += step {
		curFarBucket = bucket
		nConf += s.confAvg[confTarget-1][bucket]
		totalNum += s.txCtAvg[bucket]
		for confct := confTarget; confct < s.GetMaxConfirms(); confct++ {
			if int(blockHeight) >= confct {
				extraNum += s.unconfTxs[(int(blockHeight)-confct)%bins][bucket]
			}
		}
		extraNum += s.oldUnconfTxs[bucket]

		// Only judge a range holding enough confirmed data points;
		// stuck transactions count against it but never for it.
		if totalNum >= sufficientTxVal/(1-s.decay) {
			curPct := nConf / (totalNum + float64(extraNum))
			if requireGreater && curPct < successBreakPoint {
				break
			}
			if !requireGreater && curPct > successBreakPoint {
				break
			}
			foundAnswer = true
			nConf, totalNum, extraNum = 0, 0, 0
			bestNearBucket = curNearBucket
			bestFarBucket = curFarBucket
			curNearBucket = bucket + step
		}
	}

	if !foundAnswer {
		return -1
	}

	// Report the average rate of the bucket holding the median
	// transaction of the winning range.
	minBucket, maxRange := bestNearBucket, bestFarBucket
	if minBucket > maxRange {
		minBucket, maxRange = maxRange, minBucket
	}
	txSum := 0.0
	for j := minBucket; j <= maxRange; j++ {
		txSum += s.txCtAvg[j]
	}
	if txSum == 0 {
		return -1
	}
	txSum /= 2
	for j := minBucket; j <= maxRange; j++ {
		if s.txCtAvg[j] < txSum {
			txSum -= s.txCtAvg[j]
		} else {
			return s.avg[j] / s.txCtAvg[j]
		}
	}
	return -1
}

func writeFloats(w io.Writer, vals []float64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vals))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vals)
}

func readFloats(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > 1<<20 {
		return nil, errors.Errorf("implausible vector length %d", n)
	}
	vals := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// Serialize writes the decayed history. The unconfirmed counters are
// runtime state and are not persisted.
func (s *TxConfirmStats) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, s.decay); err != nil {
		return err
	}
	if err := writeFloats(w, s.buckets); err != nil {
		return err
	}
	if err := writeFloats(w, s.avg); err != nil {
		return err
	}
	if err := writeFloats(w, s.txCtAvg); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.confAvg))); err != nil {
		return err
	}
	for _, row := range s.confAvg {
		if err := writeFloats(w, row); err != nil {
			return err
		}
	}
	return nil
}

// Unserialize replaces the history with a previously serialized one,
// resizing every runtime counter to match.
func (s *TxConfirmStats) Unserialize(r io.Reader) error {
	var decay float64
	if err := binary.Read(r, binary.LittleEndian, &decay); err != nil {
		return err
	}
	if decay <= 0 || decay >= 1 {
		return errors.Errorf("corrupt estimates: decay %v out of range", decay)
	}
	buckets, err := readFloats(r)
	if err != nil {
		return err
	}
	if len(buckets) <= 1 {
		return errors.New("corrupt estimates: must have more than one feerate bucket")
	}
	avg, err := readFloats(r)
	if err != nil {
		return err
	}
	txCtAvg, err := readFloats(r)
	if err != nil {
		return err
	}
	var maxConfirms uint32
	if err := binary.Read(r, binary.LittleEndian, &maxConfirms); err != nil {
		return err
	}
	if maxConfirms == 0 || maxConfirms > 6*24*7 {
		return errors.Errorf("corrupt estimates: %d block horizon", maxConfirms)
	}
	confAvg := make([][]float64, maxConfirms)
	for i := range confAvg {
		if confAvg[i], err = readFloats(r); err != nil {
			return err
		}
		if len(confAvg[i]) != len(buckets) {
			return errors.New("corrupt estimates: mismatch in feerate conf average bucket count")
		}
	}
	if len(avg) != len(buckets) || len(txCtAvg) != len(buckets) {
		return errors.New("corrupt estimates: mismatch in feerate average bucket count")
	}

	fresh := NewTxConfirmStats(buckets, int(maxConfirms), decay)
	fresh.avg = avg
	fresh.txCtAvg = txCtAvg
	fresh.confAvg = confAvg
	*s = *fresh
	return nil
}
