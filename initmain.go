package main

import (
	"path/filepath"

	"github.com/cosanta/cosanta-core/conf"
	"github.com/cosanta/cosanta-core/logic/lchain"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/policy"
)

// appInitMain primes the node state: the active network parameters,
// the global chain with its genesis tip, the mempool, and the fee
// estimator restored from the data directory.
func appInitMain() error {
	name := chainparams.MainNetParams.Name
	switch {
	case conf.Cfg.P2PNet.RegTest:
		name = chainparams.RegressionNetParams.Name
	case conf.Cfg.P2PNet.TestNet:
		name = chainparams.TestNetParams.Name
	}
	params, err := chainparams.SelectParams(name)
	if err != nil {
		return err
	}

	if len(conf.Cfg.RPC.RPCListeners) == 0 {
		conf.Cfg.RPC.RPCListeners = []string{"127.0.0.1:" + params.RPCPort}
	}
	if conf.Cfg.RPC.RPCCert == "" {
		conf.Cfg.RPC.RPCCert = filepath.Join(conf.DataDir, "rpc.cert")
	}
	if conf.Cfg.RPC.RPCKey == "" {
		conf.Cfg.RPC.RPCKey = filepath.Join(conf.DataDir, "rpc.key")
	}

	chain.InitGlobalChain(params)
	if err := lchain.InitGenesisChain(); err != nil {
		return err
	}

	mempool.InitMempool()
	return policy.InitFeeEstimator(conf.DataDir)
}
