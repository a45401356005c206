package llmq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/util"
)

type fakeSync struct {
	synced bool
}

func (f *fakeSync) IsSynced() bool { return f.synced }

func useMockTime(t *testing.T, sec int64) {
	t.Helper()
	util.SetMockTime(sec)
	t.Cleanup(func() { util.SetMockTime(0) })
}

func TestChainLocksEnforcement(t *testing.T) {
	h := NewChainLocksHandler(&fakeSync{synced: true})
	assert.False(t, h.IsEnforced())
	h.SetEnforced(true)
	assert.True(t, h.IsEnforced())
	h.SetEnforced(false)
	assert.False(t, h.IsEnforced())
}

func TestIsTxSafeForMining(t *testing.T) {
	const base = int64(1700000000)
	useMockTime(t, base)

	sync := &fakeSync{synced: true}
	h := NewChainLocksHandler(sync)
	txid := util.Hash{0x01}
	h.TransactionAddedToMempool(txid)

	// Enforcement off: everything is safe.
	assert.True(t, h.IsTxSafeForMining(txid))

	h.SetEnforced(true)
	assert.False(t, h.IsTxSafeForMining(txid))

	// Before the chain is synced safety cannot be judged.
	sync.synced = false
	assert.True(t, h.IsTxSafeForMining(txid))
	sync.synced = true

	// Transactions the mempool hook never saw are assumed old.
	assert.True(t, h.IsTxSafeForMining(util.Hash{0x02}))

	// An instant-send lock makes it safe immediately.
	h.TransactionLocked(txid)
	assert.True(t, h.IsTxSafeForMining(txid))
}

func TestIsTxSafeForMiningAge(t *testing.T) {
	const base = int64(1700000000)
	useMockTime(t, base)

	h := NewChainLocksHandler(&fakeSync{synced: true})
	h.SetEnforced(true)

	txid := util.Hash{0x03}
	h.TransactionAddedToMempool(txid)
	assert.False(t, h.IsTxSafeForMining(txid))

	util.SetMockTime(base + WaitForInstantSendTimeout - 1)
	assert.False(t, h.IsTxSafeForMining(txid))

	util.SetMockTime(base + WaitForInstantSendTimeout)
	assert.True(t, h.IsTxSafeForMining(txid))
}

func TestTransactionAddedToMempoolKeepsFirstSeen(t *testing.T) {
	const base = int64(1700000000)
	useMockTime(t, base)

	h := NewChainLocksHandler(&fakeSync{synced: true})
	h.SetEnforced(true)

	txid := util.Hash{0x04}
	h.TransactionAddedToMempool(txid)

	// A re-announcement must not reset the clock.
	util.SetMockTime(base + WaitForInstantSendTimeout)
	h.TransactionAddedToMempool(txid)
	assert.True(t, h.IsTxSafeForMining(txid))
}

func TestBlockConnectedDropsBookkeeping(t *testing.T) {
	const base = int64(1700000000)
	useMockTime(t, base)

	h := NewChainLocksHandler(&fakeSync{synced: true})
	h.SetEnforced(true)

	txn := tx.NewTx(0, tx.TxVersion)
	txid := txn.GetHash()
	h.TransactionAddedToMempool(txid)
	assert.False(t, h.IsTxSafeForMining(txid))

	h.BlockConnected(&block.Block{Txs: []*tx.Tx{txn}})

	// With its first-seen record gone the txid counts as never seen.
	assert.True(t, h.IsTxSafeForMining(txid))
}
