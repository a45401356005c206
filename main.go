package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cosanta/cosanta-core/conf"
	"github.com/cosanta/cosanta-core/llmq"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/masternode"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/policy"
	"github.com/cosanta/cosanta-core/rpc"
	"github.com/cosanta/cosanta-core/service"
	"github.com/cosanta/cosanta-core/service/mining"
)

// populated by the build script through -ldflags
var (
	version   = "0.17.0"
	buildDate string
)

// cosantaMain is the real main. Deferred shutdown handlers do not run
// when os.Exit is called, so main delegates here and exits on the
// returned error.
func cosantaMain() error {
	interrupt := interruptListener()
	if interruptRequested(interrupt) {
		return nil
	}
	defer log.Info("Shutdown complete")

	if err := appInitMain(); err != nil {
		return err
	}
	defer func() {
		if err := policy.CloseFeeEstimator(); err != nil {
			log.Error("shutdown: persisting fee estimates failed: %v", err)
		}
	}()

	params := chainparams.ActiveNetParams

	registry := llmq.NewCommitmentRegistry(params)
	mnSync := masternode.NewSync()
	chainLocks := llmq.NewChainLocksHandler(mnSync)
	processor := masternode.NewProcessor(params, registry)

	// No staking wallet is wired yet; the stake driver declines to
	// start until one is.
	collab := mining.Collaborators{
		Quorums:    registry,
		ChainLocks: chainLocks,
		SpecialTx:  processor,
	}

	var coinbaseScript *script.Script
	if addrStr := conf.Cfg.Mining.MiningAddr; addrStr != "" {
		addr, err := script.AddressFromString(addrStr)
		if err != nil {
			return fmt.Errorf("invalid mining address %q: %v", addrStr, err)
		}
		coinbaseScript = script.NewScriptFromAddress(addr)
	}

	powMiner := mining.NewMiner(mining.MinerConfig{
		ChainParams:    params,
		ProcessBlock:   service.ProcessNewBlock,
		CoinbaseScript: coinbaseScript,
		NumWorkers:     int(conf.Cfg.Mining.GenProcLimit),
		Options:        mining.DefaultAssemblerOptions(),
		Collab:         collab,
		Sync:           mnSync,
	})
	defer powMiner.Stop()
	if conf.Cfg.Mining.Generate {
		if err := powMiner.Start(int(conf.Cfg.Mining.GenProcLimit)); err != nil {
			return fmt.Errorf("cannot start generation: %v", err)
		}
	}

	stakeMiner := mining.NewStakeMiner(mining.StakeMinerConfig{
		ChainParams:    params,
		ProcessBlock:   service.ProcessNewBlock,
		CoinbaseScript: coinbaseScript,
		Options:        mining.DefaultAssemblerOptions(),
		Collab:         collab,
		Sync:           mnSync,
	})
	defer stakeMiner.Stop()
	if conf.Cfg.Staking.Enable {
		stakeMiner.Start()
	}

	rpc.RegisterMiningSubsystem(rpc.MiningSubsystem{
		PowMiner:   powMiner,
		StakeMiner: stakeMiner,
		Collab:     collab,
		Sync:       mnSync,
	})

	if !conf.Cfg.RPC.Disable {
		server, err := rpc.InitRPCServer()
		if err != nil {
			return err
		}
		server.Start()
		defer func() {
			log.Info("Gracefully shutting down the RPC server...")
			if err := server.Stop(); err != nil {
				log.Error("shutdown: RPC server stop failed: %v", err)
			}
		}()

		// Authenticated stop requests take the same path as signals.
		go func() {
			<-server.RequestedProcessShutdown()
			shutdownRequestChannel <- struct{}{}
		}()
	}

	<-interrupt
	return nil
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	conf.Cfg = conf.InitConfig(os.Args[1:])
	if conf.Cfg == nil {
		os.Exit(1)
	}
	conf.Cfg.Version = version
	conf.Cfg.BuildDate = buildDate
	conf.Cfg.GoVersion = runtime.Version()

	log.Init()
	log.Info("cosantad version %s starting, datadir %s", version, conf.DataDir)

	if err := cosantaMain(); err != nil {
		log.Error("startup failed: %v", err)
		os.Exit(1)
	}
}
