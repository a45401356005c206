package masternode

import (
	"sync/atomic"

	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/chain"
)

const (
	SyncInitial int32 = iota
	SyncBlockchain
	SyncFinished
)

// Sync tracks how far the masternode subsystem has caught up. Template
// building and chain-lock gating only trust the list once the sync has
// finished.
type Sync struct {
	asset atomic.Int32
}

func NewSync() *Sync {
	return &Sync{}
}

func (s *Sync) IsBlockchainSynced() bool {
	return s.asset.Load() > SyncInitial
}

func (s *Sync) IsSynced() bool {
	return s.asset.Load() == SyncFinished
}

// UpdateBlockTip advances through the sync assets as the chain catches
// up. Regtest-style networks finish immediately.
func (s *Sync) UpdateBlockTip(mineableOnDemand bool) {
	switch s.asset.Load() {
	case SyncInitial:
		if mineableOnDemand || chain.GetInstance().IsAlmostSynced() {
			s.switchTo(SyncBlockchain)
		}
	case SyncBlockchain:
		// The deterministic list rides along with block processing, so
		// a synced chain means a synced list.
		s.switchTo(SyncFinished)
	}
}

// Reset drops back to the initial asset, as after a long disconnect.
func (s *Sync) Reset() {
	s.asset.Store(SyncInitial)
}

func (s *Sync) switchTo(asset int32) {
	s.asset.Store(asset)
	log.Info("masternode: sync asset now %d", asset)
}
