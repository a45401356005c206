package conf

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

type Opts struct {
	DataDir string `long:"datadir" description:"specified program data dir"`

	RegTest bool `long:"regtest" description:"initiate regtest"`
	TestNet bool `long:"testnet" description:"initiate testnet"`

	Whitelists []string `long:"whitelist" description:"whitelist"`

	UtxoHashStartHeight int32 `long:"utxohashstartheight" default:"-1" description:"Which height begin logging out the utxos hash at"`
	UtxoHashEndHeight   int32 `long:"utxohashendheight" default:"-1" description:"Which height finish logging out the utxos hash at"`

	// mining
	Generate       bool   `long:"gen" description:"Generate (mine) coins with the cpu miner"`
	GenProcLimit   int32  `long:"genproclimit" default:"-1" description:"Set the number of threads for coin generation if enabled (-1 = all cores)"`
	BlockVersion   int32  `long:"blockversion" default:"-1" description:"Override block version to test forking scenarios"`
	BlockMaxSize   uint64 `long:"blockmaxsize" description:"Set maximum block size in bytes"`
	BlockMinTxFee  int64  `long:"blockmintxfee" description:"Set lowest fee rate (in satoshis/kB) for transactions to be included in block creation"`
	MiningAddr     string `long:"miningaddr" description:"The payment address used by generate when no wallet is available"`
	Staking        bool   `long:"staking" description:"Stake your coins to support the network (default: true)"`
	NoStaking      bool   `long:"nostaking" description:"Disable coin staking"`
	ReserveBalance string `long:"reservebalance" description:"Keep the specified amount from staking"`
}

func InitArgs(args []string) (*Opts, error) {
	opts := new(Opts)
	_, err := flags.ParseArgs(opts, args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	return opts, nil
}

func (opts *Opts) String() string {
	return fmt.Sprintf("datadir:%s regtest:%v testnet:%v gen:%v", opts.DataDir, opts.RegTest, opts.TestNet, opts.Generate)
}
