package mining

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/pow"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/util"
)

// innerLoopCount bounds the nonce search per template; past it the
// worker rebuilds with a fresh extra nonce.
const innerLoopCount = 0x10000

// hpsWindow is how often the hash meter folds the raw counter into the
// rate surfaced over RPC.
const hpsWindow = 30 * time.Second

// ProcessBlockFunc submits a freshly found block for validation and
// connection. It reports whether the block was accepted and whether it
// was new.
type ProcessBlockFunc func(pblock *block.Block, forceProcessing bool) (accepted, isNew bool, err error)

// checkBlockProof mirrors the acceptance-time proof check: work for
// PoW headers, the stake binding for PoS blocks.
func checkBlockProof(pblock *block.Block, params *chainparams.Params) bool {
	if pblock.Header.IsProofOfStake() {
		return pblock.CheckStake() == nil
	}
	hash := pblock.GetHash()
	p := pow.Pow{}
	return p.CheckProofOfWork(&hash, pblock.Header.Bits, params)
}

// MinerConfig wires one proof-of-work miner handle.
type MinerConfig struct {
	ChainParams  *chainparams.Params
	ProcessBlock ProcessBlockFunc

	// CoinbaseScript receives the block reward. An empty script is
	// refused at start.
	CoinbaseScript *script.Script

	// NumWorkers, -1 means hardware concurrency.
	NumWorkers int

	Options AssemblerOptions
	Collab  Collaborators

	// Sync, when set, holds workers back until the masternode
	// subsystem has caught up.
	Sync MasternodeSync
}

// Miner runs the proof-of-work worker pool. All counters live on the
// handle, so tests can run miners side by side.
type Miner struct {
	cfg MinerConfig

	mtx     sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	workers int

	hashesDone atomic.Int64
	lastHPS    atomic.Int64
}

func NewMiner(cfg MinerConfig) *Miner {
	return &Miner{cfg: cfg}
}

// Start launches the worker pool. A running pool is resized by a full
// stop and relaunch. numWorkers <= -1 selects hardware concurrency, 0
// stops mining.
func (m *Miner) Start(numWorkers int) error {
	if m.cfg.CoinbaseScript == nil || m.cfg.CoinbaseScript.Size() == 0 {
		return errcode.NewError(errcode.ErrorNoChainTip, "no coinbase script available")
	}

	m.Stop()

	if numWorkers < 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers == 0 {
		return nil
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.workers = numWorkers
	m.hashesDone.Store(0)
	m.lastHPS.Store(0)

	log.Info("PoW miner started with %d workers", numWorkers)
	m.wg.Add(numWorkers + 1)
	go m.meter(ctx)
	for i := 0; i < numWorkers; i++ {
		go m.worker(ctx)
	}
	return nil
}

// Stop signals every worker and waits for them to drain. In-flight
// template construction completes first.
func (m *Miner) Stop() {
	m.mtx.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.workers = 0
	m.mtx.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
	m.hashesDone.Store(0)
	m.lastHPS.Store(0)
	log.Info("PoW miner stopped")
}

// IsRunning reports whether any worker is live.
func (m *Miner) IsRunning() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.cancel != nil
}

// NumWorkers is the live worker count.
func (m *Miner) NumWorkers() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.workers
}

// HashesPerSec is the rate over the last meter window.
func (m *Miner) HashesPerSec() int64 {
	return m.lastHPS.Load()
}

// meter converts the raw hash counter into a rate once per window.
func (m *Miner) meter(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(hpsWindow)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done := m.hashesDone.Swap(0)
			m.lastHPS.Store(done / int64(hpsWindow/time.Second))
		}
	}
}

func (m *Miner) worker(ctx context.Context) {
	defer m.wg.Done()

	ba := NewBlockAssembler(m.cfg.ChainParams, m.cfg.Options, m.cfg.Collab)
	extraNonce := uint(0)
	var lastPrevHash util.Hash

	for ctx.Err() == nil {
		if m.cfg.Sync != nil && !m.cfg.Sync.IsSynced() {
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}

		bt, err := ba.CreateNewBlock(m.cfg.CoinbaseScript)
		if err != nil {
			log.Error("miner: couldn't create new block: %v", err)
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}
		pblock := bt.Block

		if pblock.Header.IsProofOfStake() {
			// Work can't satisfy a stake slot; wait for the PoS driver.
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}

		gChain := chain.GetInstance()
		gChain.RLock()
		IncrementExtraNonce(pblock, gChain.Tip(), &extraNonce, &lastPrevHash)
		gChain.RUnlock()

		found := false
		p := pow.Pow{}
		for nonce := uint32(0); nonce < innerLoopCount; nonce++ {
			if ctx.Err() != nil {
				return
			}
			pblock.Header.Nonce = nonce
			hash := pblock.GetHash()
			m.hashesDone.Add(1)
			if p.CheckProofOfWork(&hash, pblock.Header.Bits, m.cfg.ChainParams) {
				found = true
				break
			}
		}
		if !found {
			// Search space exhausted, rebuild with the next extra nonce.
			continue
		}

		accepted, _, err := m.cfg.ProcessBlock(pblock, true)
		if err != nil || !accepted {
			log.Warn("miner: ProcessNewBlock, block not accepted: %v", err)
		}
	}
}

// sleepCtx reports false when the context fired during the sleep.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// GenerateBlocks mines nBlocks discretely for the generate RPCs,
// spending at most maxTries nonce attempts in total. A failed proof
// check keeps eating the budget even when the nonce hit, which only
// matters for templates carrying stake data.
func GenerateBlocks(ba *BlockAssembler, coinbaseScript *script.Script, nBlocks int,
	maxTries uint64, processBlock ProcessBlockFunc) ([]util.Hash, error) {
	gChain := chain.GetInstance()

	gChain.RLock()
	height := gChain.TipHeight()
	gChain.RUnlock()
	heightEnd := height + int32(nBlocks)

	extraNonce := uint(0)
	var lastPrevHash util.Hash
	hashes := make([]util.Hash, 0, nBlocks)

	for height < heightEnd {
		bt, err := ba.CreateNewBlock(coinbaseScript)
		if err != nil {
			return hashes, err
		}
		pblock := bt.Block

		gChain.RLock()
		IncrementExtraNonce(pblock, gChain.Tip(), &extraNonce, &lastPrevHash)
		gChain.RUnlock()

		for maxTries > 0 && pblock.Header.Nonce < innerLoopCount &&
			!checkBlockProof(pblock, ba.chainParams) {
			pblock.Header.Nonce++
			maxTries--
		}
		if maxTries == 0 {
			break
		}
		if pblock.Header.Nonce == innerLoopCount {
			continue
		}

		accepted, _, err := processBlock(pblock, true)
		if err != nil {
			return hashes, err
		}
		if !accepted {
			return hashes, errcode.NewError(errcode.ErrorTemplateSelfCheck,
				"ProcessNewBlock, block not accepted")
		}
		height++
		hashes = append(hashes, pblock.GetHash())
	}
	return hashes, nil
}
