package pow

import (
	"math/big"
	"testing"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(length int32, step uint32, bits uint32) []*blockindex.BlockIndex {
	chain := make([]*blockindex.BlockIndex, 0, length)
	var prev *blockindex.BlockIndex
	for height := int32(0); height < length; height++ {
		header := block.NewBlockHeader()
		header.Version = 4
		header.Time = 1626442320 + uint32(height)*step
		header.Bits = bits
		header.Nonce = uint32(height)
		if prev != nil {
			header.HashPrevBlock = prev.BlockHash
		}
		index := blockindex.NewBlockIndex(header)
		index.Height = height
		index.Prev = prev
		index.BuildSkip()
		chain = append(chain, index)
		prev = index
	}
	return chain
}

func TestCompactRoundTrip(t *testing.T) {
	for _, compact := range []uint32{0x1d00ffff, 0x1e0ffff0, 0x207fffff, 0x1b04864c} {
		assert.Equal(t, compact, BigToCompact(CompactToBig(compact)))
	}

	assert.Equal(t, uint32(0), BigToCompact(big.NewInt(0)))
	assert.Equal(t, int64(0x1234), CompactToBig(0x03001234).Int64())

	// The sign bit makes the number negative.
	assert.Equal(t, int64(-0x1234), CompactToBig(0x03801234).Int64())
}

func TestPowLimitCompacts(t *testing.T) {
	assert.Equal(t, uint32(0x207fffff), BigToCompact(chainparams.RegressionNetParams.PowLimit))
	assert.Equal(t, uint32(0x1e0fffff), BigToCompact(chainparams.MainNetParams.PowLimit))
}

func TestHashToBig(t *testing.T) {
	hash := util.HashFromString("0000000000000000000000000000000000000000000000000000000000000001")
	assert.Equal(t, int64(1), HashToBig(hash).Int64())
}

func TestGetBlockProof(t *testing.T) {
	header := block.NewBlockHeader()
	header.Bits = 0x207fffff
	index := blockindex.NewBlockIndex(header)

	// Work is 2^256 / (target + 1); the regtest limit yields 2.
	assert.Equal(t, int64(2), GetBlockProof(index).Int64())

	header.Bits = 0
	index = blockindex.NewBlockIndex(header)
	assert.Equal(t, int64(0), GetBlockProof(index).Int64())
}

func TestGetNextWorkRequiredGenesis(t *testing.T) {
	p := Pow{}
	header := block.NewBlockHeader()
	bits := p.GetNextWorkRequired(nil, header, &chainparams.MainNetParams)
	assert.Equal(t, BigToCompact(chainparams.MainNetParams.PowLimit), bits)
}

func TestGetNextWorkRequiredRegTest(t *testing.T) {
	p := Pow{}
	params := &chainparams.RegressionNetParams
	chain := buildChain(10, uint32(params.TargetTimePerBlock), 0x207fffff)

	header := block.NewBlockHeader()
	header.Time = chain[9].GetBlockTime() + uint32(params.TargetTimePerBlock)
	assert.Equal(t, uint32(0x207fffff), p.GetNextWorkRequired(chain[9], header, params))
}

func TestGetNextWorkRequiredLegacyInterval(t *testing.T) {
	p := Pow{}
	params := &chainparams.MainNetParams
	interval := int32(params.DifficultyAdjustmentInterval())
	require.Equal(t, int32(576), interval)

	chain := buildChain(interval, uint32(params.TargetTimePerBlock), 0x1e0ffff0)
	tip := chain[len(chain)-1]

	header := block.NewBlockHeader()
	header.Time = tip.GetBlockTime() + uint32(params.TargetTimePerBlock)

	// Constant spacing measures one spacing short of the full window, so
	// the target tightens by the same ratio.
	actual := int64(interval-1) * params.TargetTimePerBlock
	expected := CompactToBig(0x1e0ffff0)
	expected.Mul(expected, big.NewInt(actual))
	expected.Div(expected, big.NewInt(params.TargetTimespan))

	assert.Equal(t, BigToCompact(expected), p.GetNextWorkRequired(tip, header, params))
}

func TestGetNextWorkRequiredLegacyNoRetarget(t *testing.T) {
	p := Pow{}
	params := &chainparams.MainNetParams
	chain := buildChain(100, uint32(params.TargetTimePerBlock), 0x1e0ffff0)
	tip := chain[len(chain)-1]

	header := block.NewBlockHeader()
	header.Time = tip.GetBlockTime() + uint32(params.TargetTimePerBlock)

	// Height 100 is inside the interval, the previous bits carry over.
	assert.Equal(t, uint32(0x1e0ffff0), p.GetNextWorkRequired(tip, header, params))
}

func dgwParams() chainparams.Params {
	params := chainparams.MainNetParams
	params.PowKGWHeight = 1
	params.PowDGWHeight = 1
	return params
}

func TestDarkGravityWaveShortChain(t *testing.T) {
	p := Pow{}
	params := dgwParams()
	chain := buildChain(10, uint32(params.TargetTimePerBlock), 0x1e0ffff0)

	header := block.NewBlockHeader()
	bits := p.GetNextWorkRequired(chain[9], header, &params)
	assert.Equal(t, BigToCompact(params.PowLimit), bits)
}

func TestDarkGravityWaveSteadyRate(t *testing.T) {
	p := Pow{}
	params := dgwParams()
	chain := buildChain(100, uint32(params.TargetTimePerBlock), 0x1e0ffff0)
	tip := chain[len(chain)-1]

	header := block.NewBlockHeader()
	header.Time = tip.GetBlockTime() + uint32(params.TargetTimePerBlock)

	// All past targets agree, so the averaged target is the shared one and
	// only the timespan ratio moves the result. The window measures 23
	// spacings against an expectation of 24.
	expected := CompactToBig(0x1e0ffff0)
	expected.Mul(expected, big.NewInt(23*params.TargetTimePerBlock))
	expected.Div(expected, big.NewInt(24*params.TargetTimePerBlock))

	assert.Equal(t, BigToCompact(expected), p.GetNextWorkRequired(tip, header, &params))
}

func TestDarkGravityWaveClampsTimespan(t *testing.T) {
	p := Pow{}
	params := dgwParams()

	// Zero spacing collapses the measured timespan, which clamps to a
	// third of the window.
	chain := buildChain(100, 0, 0x1e0ffff0)
	tip := chain[len(chain)-1]

	header := block.NewBlockHeader()
	header.Time = tip.GetBlockTime()

	expected := CompactToBig(0x1e0ffff0)
	expected.Mul(expected, big.NewInt(24*params.TargetTimePerBlock/3))
	expected.Div(expected, big.NewInt(24*params.TargetTimePerBlock))

	assert.Equal(t, BigToCompact(expected), p.GetNextWorkRequired(tip, header, &params))
}

func TestDarkGravityWaveMinDifficulty(t *testing.T) {
	p := Pow{}
	params := dgwParams()
	params.FPowAllowMinDifficultyBlocks = true
	chain := buildChain(100, uint32(params.TargetTimePerBlock), 0x1b04864c)
	tip := chain[len(chain)-1]

	// More than two hours since the tip allows a limit-difficulty block.
	header := block.NewBlockHeader()
	header.Time = tip.GetBlockTime() + 2*60*60 + 1
	assert.Equal(t, BigToCompact(params.PowLimit), p.GetNextWorkRequired(tip, header, &params))

	// More than four spacings eases the previous target tenfold.
	header.Time = tip.GetBlockTime() + uint32(params.TargetTimePerBlock*4) + 1
	eased := CompactToBig(0x1b04864c)
	eased.Mul(eased, big.NewInt(10))
	assert.Equal(t, BigToCompact(eased), p.GetNextWorkRequired(tip, header, &params))
}

func TestCheckProofOfWork(t *testing.T) {
	p := Pow{}
	params := &chainparams.RegressionNetParams

	low := util.HashFromString("0000000000000000000000000000000000000000000000000000000000000001")
	assert.True(t, p.CheckProofOfWork(low, 0x207fffff, params))

	high := util.HashFromString("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	assert.True(t, p.CheckProofOfWork(high, 0x207fffff, params))

	above := util.HashFromString("8000000000000000000000000000000000000000000000000000000000000000")
	assert.False(t, p.CheckProofOfWork(above, 0x207fffff, params))

	// A target above the network limit never validates.
	assert.False(t, p.CheckProofOfWork(low, 0x207fffff, &chainparams.MainNetParams))

	// Zero and negative targets never validate.
	assert.False(t, p.CheckProofOfWork(low, 0, params))
	assert.False(t, p.CheckProofOfWork(low, 0x03801234, params))
}
