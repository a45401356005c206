package chainparams

import (
	"encoding/hex"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
)

const genesisTimestamp = "Sic parvis magna"

const genesisPubKey = "045b03cb0f02869cfe578880740c00363cc3c58958f737360d1ec5df054a1ad27c" +
	"801e3a7353333738cf17bd314dd71f8fb8118d7c424d6f69e71017e0d2c3e9e9"

var MainNetGenesisHash = *util.HashFromString("00000ce07df018e65e003f4d097cf026db99bcd493d6c4d07f0b47edf6534a26")
var TestNetGenesisHash = *util.HashFromString("0000030f02c1f2473c1b3d7988b7d83a5e2cde4b2b69fe1612befdcbcb8eb70f")
var RegTestGenesisHash = *util.HashFromString("02fc1e7262651eb1027ef489dae355c0ca063bc4832ca4b6d41d18216268835c")

var GenesisMerkleRoot = *util.HashFromString("e16337d6f2cd561e3b9b2c470ec2adc11cf94ba2cda40bddfd2f23deff2499fb")

var MainNetGenesisBlock = newGenesisBlock(1626442320, 7465800, 0x1e0ffff0, 1)
var TestNetGenesisBlock = newGenesisBlock(1618221600, 2054584, 0x1e0ffff0, 1)
var RegTestGenesisBlock = newGenesisBlock(1618221600, 98744, 0x207fffff, 1)

func genesisCoinbaseTx() *tx.Tx {
	scriptSig := script.NewEmptyScript()
	if err := scriptSig.PushInt64(486604799); err != nil {
		panic(err)
	}
	if err := scriptSig.PushScriptNum(script.NewScriptNum(4)); err != nil {
		panic(err)
	}
	if err := scriptSig.PushSingleData([]byte(genesisTimestamp)); err != nil {
		panic(err)
	}

	pubKey, err := hex.DecodeString(genesisPubKey)
	if err != nil {
		panic(err)
	}
	scriptPubKey := script.NewEmptyScript()
	if err := scriptPubKey.PushSingleData(pubKey); err != nil {
		panic(err)
	}
	if err := scriptPubKey.PushOpCode(opcodes.OP_CHECKSIG); err != nil {
		panic(err)
	}

	coinbase := tx.NewTx(0, 1)
	coinbase.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), scriptSig, 0xffffffff))
	coinbase.AddTxOut(txout.NewTxOut(0, scriptPubKey))
	return coinbase
}

func newGenesisBlock(time uint32, nonce uint32, bits uint32, version int32) block.Block {
	coinbase := genesisCoinbaseTx()
	return block.Block{
		Header: block.BlockHeader{
			Version:       version,
			HashPrevBlock: util.Hash{},
			MerkleRoot:    coinbase.GetHash(),
			Time:          time,
			Bits:          bits,
			Nonce:         nonce,
		},
		Txs: []*tx.Tx{coinbase},
	}
}
