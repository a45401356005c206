package blockindex

import (
	"testing"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(length int32) []*BlockIndex {
	chain := make([]*BlockIndex, 0, length)
	var prev *BlockIndex
	for height := int32(0); height < length; height++ {
		header := block.NewBlockHeader()
		header.Version = 4
		header.Time = 1626442320 + uint32(height)*150
		header.Bits = 0x1e0ffff0
		header.Nonce = uint32(height)
		if prev != nil {
			header.HashPrevBlock = prev.BlockHash
		}
		index := NewBlockIndex(header)
		index.Height = height
		index.Prev = prev
		index.BuildSkip()
		chain = append(chain, index)
		prev = index
	}
	return chain
}

func TestGetAncestor(t *testing.T) {
	chain := buildChain(1000)
	tip := chain[len(chain)-1]

	for _, height := range []int32{0, 1, 2, 511, 512, 998, 999} {
		ancestor := tip.GetAncestor(height)
		require.NotNil(t, ancestor)
		assert.Equal(t, chain[height], ancestor)
	}

	assert.Nil(t, tip.GetAncestor(1000))
	assert.Nil(t, tip.GetAncestor(-1))
}

func TestGetMedianTimePast(t *testing.T) {
	chain := buildChain(23)
	tip := chain[len(chain)-1]

	// Spacing is constant so the median is the middle block of the
	// 11-block window ending at the tip.
	expected := int64(chain[17].GetBlockTime())
	assert.Equal(t, expected, tip.GetMedianTimePast())

	// Short chains take the median of whatever exists.
	assert.Equal(t, int64(chain[0].GetBlockTime()), chain[0].GetMedianTimePast())
	assert.Equal(t, int64(chain[1].GetBlockTime()), chain[1].GetMedianTimePast())
}

func TestValidityFlags(t *testing.T) {
	index := NewBlockIndex(block.NewBlockHeader())

	assert.False(t, index.IsValid())
	assert.True(t, index.RaiseValidity(StatusAllValid))
	assert.True(t, index.IsValid())
	assert.False(t, index.RaiseValidity(StatusAllValid), "no change the second time")

	index.AddStatus(StatusFailed)
	assert.True(t, index.IsInvalid())
	assert.False(t, index.IsValid())
	assert.False(t, index.RaiseValidity(StatusHeaderValid))

	index.SubStatus(StatusFailed)
	assert.False(t, index.IsInvalid())
}
