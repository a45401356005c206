package mining

import (
	"context"
	"sync"
	"time"

	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/script"
)

const (
	// minerSleep paces kernel searches; the search window only widens
	// once per second anyway.
	minerSleep = 500 * time.Millisecond

	// mintableCheckInterval caps how often the wallet is asked whether
	// it holds mature stakeable coins. The scan walks every output.
	mintableCheckInterval = 60 * time.Second

	noTipWait    = time.Second
	notPoSWait   = 10 * time.Second
	walletWait   = 10 * time.Second
	newTipSettle = 5 * time.Second
)

// StakeMinerConfig wires the proof-of-stake driver.
type StakeMinerConfig struct {
	ChainParams  *chainparams.Params
	ProcessBlock ProcessBlockFunc

	// CoinbaseScript receives the primary reward output. On a staked
	// block the wallet rebinds it to the kernel key when signing.
	CoinbaseScript *script.Script

	Options AssemblerOptions
	Collab  Collaborators

	Sync MasternodeSync
}

// StakeMiner drives the wallet staker on a single goroutine. Kernel
// search state lives on the assembler, so one driver owns one
// assembler for its whole life.
type StakeMiner struct {
	cfg StakeMinerConfig

	mtx    sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lastHeight        int32
	mintableLastCheck time.Time
	mintableCached    bool
}

func NewStakeMiner(cfg StakeMinerConfig) *StakeMiner {
	return &StakeMiner{cfg: cfg, lastHeight: -1}
}

// Start launches the driver. Calling Start on a running driver is a
// no-op.
func (s *StakeMiner) Start() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.cancel != nil {
		return
	}
	if s.cfg.Collab.Staker == nil {
		log.Warn("stake miner: no staking wallet wired, not starting")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	log.Info("stake miner started")
	go s.loop(ctx)
}

// Stop signals the driver and waits for it to exit.
func (s *StakeMiner) Stop() {
	s.mtx.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mtx.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	log.Info("stake miner stopped")
}

// IsRunning reports whether the driver goroutine is live.
func (s *StakeMiner) IsRunning() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.cancel != nil
}

// mintableCoins answers from a cache refreshed at most once per
// interval.
func (s *StakeMiner) mintableCoins() bool {
	if time.Since(s.mintableLastCheck) >= mintableCheckInterval {
		s.mintableLastCheck = time.Now()
		s.mintableCached = s.cfg.Collab.Staker.MintableCoins()
	}
	return s.mintableCached
}

func (s *StakeMiner) loop(ctx context.Context) {
	defer s.wg.Done()

	ba := NewBlockAssembler(s.cfg.ChainParams, s.cfg.Options, s.cfg.Collab)
	staker := s.cfg.Collab.Staker
	gChain := chain.GetInstance()

	for ctx.Err() == nil {
		gChain.RLock()
		tip := gChain.Tip()
		gChain.RUnlock()
		if tip == nil {
			if !sleepCtx(ctx, noTipWait) {
				return
			}
			continue
		}

		// Proof-of-work territory: neither the next height nor the
		// current tip is PoS.
		if !s.cfg.ChainParams.IsPoSEnforcedHeight(tip.Height+1) && !tip.IsProofOfStake() {
			if !sleepCtx(ctx, notPoSWait) {
				return
			}
			continue
		}

		if staker.IsLocked() || !s.mintableCoins() ||
			staker.ReserveBalance() >= staker.Balance() ||
			(s.cfg.Sync != nil && !s.cfg.Sync.IsSynced()) {
			ba.ResetCoinStakeSearchInterval()
			if !sleepCtx(ctx, walletWait) {
				return
			}
			continue
		}

		// Let a fresh tip propagate before staking on top of it.
		if tip.Height != s.lastHeight {
			s.lastHeight = tip.Height
			if !sleepCtx(ctx, newTipSettle) {
				return
			}
			continue
		}

		bt, err := ba.CreateNewBlock(s.cfg.CoinbaseScript)
		if err != nil {
			log.Error("stake miner: couldn't create new block: %v", err)
			if !sleepCtx(ctx, walletWait) {
				return
			}
			continue
		}
		pblock := bt.Block

		if pblock.Stake() == nil {
			// No kernel in this search window; the window widens once
			// per second.
			if !sleepCtx(ctx, minerSleep) {
				return
			}
			continue
		}

		if err := pblock.CheckStake(); err != nil {
			log.Error("stake miner: found kernel fails stake check: %v", err)
			if !sleepCtx(ctx, minerSleep) {
				return
			}
			continue
		}

		hash := pblock.GetHash()
		accepted, isNew, err := s.cfg.ProcessBlock(pblock, true)
		switch {
		case err != nil || !accepted:
			log.Warn("stake miner: staked block %s not accepted: %v", hash, err)
		case !isNew:
			log.Info("stake miner: staked block %s was a duplicate", hash)
		default:
			log.Info("stake miner: submitted staked block %s at height %d",
				hash, tip.Height+1)
		}

		if !sleepCtx(ctx, minerSleep) {
			return
		}
	}
}
