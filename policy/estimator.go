package policy

import (
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/mempool"
)

// feeEstimatesFile is the bolt database under the data directory.
const feeEstimatesFile = "fee_estimates.dat"

var (
	gEstimator *BlockPolicyEstimator
	gFeeDB     *bolt.DB
)

// InitFeeEstimator opens the persisted estimates, restores whatever
// state survived the last run and hooks the estimator into the pool
// feed. Corrupt state starts the estimator fresh rather than failing
// startup.
func InitFeeEstimator(dataDir string) error {
	db, err := bolt.Open(filepath.Join(dataDir, feeEstimatesFile), 0600,
		&bolt.Options{Timeout: time.Second})
	if err != nil {
		return err
	}

	est := NewBlockPolicyEstimator()
	if err := est.LoadFrom(db); err != nil {
		log.Warn("estimatefee: discarding persisted estimates: %v", err)
		est = NewBlockPolicyEstimator()
	}

	gEstimator = est
	gFeeDB = db
	mempool.GetInstance().SetEstimator(est)
	return nil
}

// GetFeeEstimator returns the wired estimator; before InitFeeEstimator
// it hands out a detached one so estimate* calls degrade to "no data".
func GetFeeEstimator() *BlockPolicyEstimator {
	if gEstimator == nil {
		gEstimator = NewBlockPolicyEstimator()
	}
	return gEstimator
}

// CloseFeeEstimator persists the state and releases the database.
func CloseFeeEstimator() error {
	if gFeeDB == nil {
		return nil
	}
	err := gEstimator.SaveTo(gFeeDB)
	if cerr := gFeeDB.Close(); err == nil {
		err = cerr
	}
	gFeeDB = nil
	return err
}
