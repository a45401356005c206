package chainparams

import (
	"math/big"

	"github.com/cosanta/cosanta-core/crypto"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/util"
	"github.com/pkg/errors"
)

var ActiveNetParams = &MainNetParams

var (
	bigOne = big.NewInt(1)
	// ~uint256(0) >> 20
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)
	// ~uint256(0) >> 24
	mainPosLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 232), bigOne)
	// ~uint256(0) >> 1
	regTestPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
	// ~uint256(0) >> 4
	regTestPosLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 252), bigOne)
)

// This quorum is regtest only.
var llmq5_60 = consensus.LLMQParams{
	Type:      consensus.LLMQ5_60,
	Name:      "llmq_5_60",
	Size:      5,
	MinSize:   3,
	Threshold: 3,

	DkgInterval:          24,
	DkgPhaseBlocks:       2,
	DkgMiningWindowStart: 10,
	DkgMiningWindowEnd:   18,
	DkgBadVotesThreshold: 8,

	SigningActiveQuorumCount: 2,

	KeepOldConnections: 3,
}

var llmq50_60 = consensus.LLMQParams{
	Type:      consensus.LLMQ50_60,
	Name:      "llmq_50_60",
	Size:      50,
	MinSize:   40,
	Threshold: 30,

	DkgInterval:          24,
	DkgPhaseBlocks:       2,
	DkgMiningWindowStart: 10,
	DkgMiningWindowEnd:   18,
	DkgBadVotesThreshold: 40,

	SigningActiveQuorumCount: 24,

	KeepOldConnections: 25,
}

var llmq400_60 = consensus.LLMQParams{
	Type:      consensus.LLMQ400_60,
	Name:      "llmq_400_60",
	Size:      400,
	MinSize:   300,
	Threshold: 240,

	DkgInterval:          24 * 12,
	DkgPhaseBlocks:       4,
	DkgMiningWindowStart: 20,
	DkgMiningWindowEnd:   28,
	DkgBadVotesThreshold: 300,

	SigningActiveQuorumCount: 4,

	KeepOldConnections: 5,
}

// Used for deployment and min-proto-version signalling, so it needs a
// higher threshold.
var llmq400_85 = consensus.LLMQParams{
	Type:      consensus.LLMQ400_85,
	Name:      "llmq_400_85",
	Size:      400,
	MinSize:   350,
	Threshold: 340,

	DkgInterval:          24 * 24,
	DkgPhaseBlocks:       4,
	DkgMiningWindowStart: 20,
	DkgMiningWindowEnd:   48,
	DkgBadVotesThreshold: 300,

	SigningActiveQuorumCount: 4,

	KeepOldConnections: 5,
}

type Params struct {
	consensus.Param
	Name        string
	DefaultPort string
	RPCPort     string

	GenesisBlock *block.Block
	PowLimitBits uint32

	CoinbaseMaturity uint16

	// MineBlocksOnDemand regtest-style networks where blocks are only
	// produced on request.
	MineBlocksOnDemand bool
	RequireStandard    bool

	// BIP9CheckMasternodesUpgraded holds back started deployments that
	// gate on the masternode protocol until the network says otherwise.
	BIP9CheckMasternodesUpgraded bool

	PubKeyHashAddressID byte
	ScriptHashAddressID byte
	PrivateKeyID        byte
	HDPrivateKeyID      [4]byte
	HDPublicKeyID       [4]byte
	HDCoinType          uint32
}

// IsDIP0003Active height-buried deployment check.
func (p *Params) IsDIP0003Active(height int32) bool {
	return height >= p.DIP0003Height
}

// IsPoSEnforcedHeight reports whether blocks at height must carry a
// stake instead of work.
func (p *Params) IsPoSEnforcedHeight(height int32) bool {
	return height >= p.PoSStartHeight
}

var MainNetParams = Params{
	Param: consensus.Param{
		GenesisHash:            &MainNetGenesisHash,
		SubsidyHalvingInterval: 210240,

		MasternodePaymentsStartBlock:     700000,
		MasternodePaymentsIncreaseBlock:  700000,
		MasternodePaymentsIncreasePeriod: 576 * 30,
		BudgetPaymentsStartBlock:     700000,
		BudgetPaymentsCycleBlocks:    16616,
		BudgetPaymentsWindowBlocks:   100,
		SuperblockStartBlock:         710000,
		SuperblockCycle:              16616,

		BIP34Height: 76,
		BIP65Height: 2431,
		BIP66Height: 2075,

		DIP0001Height:            5500,
		DIP0003Height:            7000,
		DIP0003EnforcementHeight: 7300,

		// Not announced yet. Once a PoS block exists the builder keys
		// off the previous block's stake flag as well.
		PoSStartHeight: 999999999,

		RuleChangeActivationThreshold: 1916, // 95% of 2016
		MinerConfirmationWindow:       2016, // nPowTargetTimespan / nPowTargetSpacing
		Deployments: [consensus.MaxVersionBitsDeployments]consensus.BIP9Deployment{
			consensus.DeploymentTestDummy: {Bit: 27, StartTime: 1619222400, Timeout: 1672444800},
			consensus.DeploymentCSV:       {Bit: 0, StartTime: 1619222400, Timeout: 1672444800},
			consensus.DeploymentDIP0001:   {Bit: 1, StartTime: 1619222400, Timeout: 1672444800, WindowSize: 100, Threshold: 50},
			consensus.DeploymentBIP147:    {Bit: 2, StartTime: 1619222400, Timeout: 1672444800, WindowSize: 100, Threshold: 50},
			consensus.DeploymentDIP0003:   {Bit: 3, StartTime: 1619222400, Timeout: 1672444800, WindowSize: 4032, Threshold: 3226},
			consensus.DeploymentDIP0008:   {Bit: 4, StartTime: 1619222400, Timeout: 1672444800, WindowSize: 100, Threshold: 50},
		},

		PowLimit:                     mainPowLimit,
		PosLimit:                     mainPosLimit,
		FPowAllowMinDifficultyBlocks: false,
		FPowNoRetargeting:            false,
		TargetTimePerBlock:           150,          // 2.5 minutes
		TargetTimespan:               24 * 60 * 60, // 1 day
		PowKGWHeight:                 4002,
		PowDGWHeight:                 13000,

		StakeMinAge: 24 * 60 * 60,

		MinimumChainWork:   util.Hash{},
		DefaultAssumeValid: util.Hash{},

		LLMQs: map[consensus.LLMQType]consensus.LLMQParams{
			consensus.LLMQ50_60:  llmq50_60,
			consensus.LLMQ400_60: llmq400_60,
			consensus.LLMQ400_85: llmq400_85,
		},
		LLMQTypeChainLocks:  consensus.LLMQ400_60,
		LLMQTypeInstantSend: consensus.LLMQ50_60,
	},

	Name:        "main",
	DefaultPort: "60606",
	RPCPort:     "9606",

	GenesisBlock: &MainNetGenesisBlock,
	PowLimitBits: 0x1e0ffff0,

	CoinbaseMaturity: 100,

	MineBlocksOnDemand: false,
	RequireStandard:    true,

	BIP9CheckMasternodesUpgraded: true,

	PubKeyHashAddressID: 28,  // starts with 'C'
	ScriptHashAddressID: 13,  // starts with '7'
	PrivateKeyID:        204, // starts with '7' or 'X'
	HDPrivateKeyID:      [4]byte{0x04, 0x88, 0xad, 0xe4},
	HDPublicKeyID:       [4]byte{0x04, 0x88, 0xb2, 0x1e},
	HDCoinType:          770,
}

var TestNetParams = Params{
	Param: consensus.Param{
		GenesisHash:            &TestNetGenesisHash,
		SubsidyHalvingInterval: 210240,

		MasternodePaymentsStartBlock:     4010,
		MasternodePaymentsIncreaseBlock:  4030,
		MasternodePaymentsIncreasePeriod: 10,
		BudgetPaymentsStartBlock:     4100,
		BudgetPaymentsCycleBlocks:    50,
		BudgetPaymentsWindowBlocks:   10,
		SuperblockStartBlock:         4200,
		SuperblockCycle:              24,

		BIP34Height: 76,
		BIP65Height: 2431,
		BIP66Height: 2075,

		DIP0001Height:            5500,
		DIP0003Height:            7000,
		DIP0003EnforcementHeight: 7300,

		PoSStartHeight: 999999999,

		RuleChangeActivationThreshold: 1512, // 75% for testchains
		MinerConfirmationWindow:       2016,
		Deployments: [consensus.MaxVersionBitsDeployments]consensus.BIP9Deployment{
			consensus.DeploymentTestDummy: {Bit: 27, StartTime: 1619222400, Timeout: 1672444800},
			consensus.DeploymentCSV:       {Bit: 0, StartTime: 1618221600, Timeout: 1672444800},
			consensus.DeploymentDIP0001:   {Bit: 1, StartTime: 1544655600, Timeout: 1635903900, WindowSize: 100, Threshold: 50},
			consensus.DeploymentBIP147:    {Bit: 2, StartTime: 1619222400, Timeout: 1672444800, WindowSize: 100, Threshold: 50},
			consensus.DeploymentDIP0003:   {Bit: 3, StartTime: 1619222400, Timeout: 1672444800, WindowSize: 100, Threshold: 50},
			consensus.DeploymentDIP0008:   {Bit: 4, StartTime: 1619222400, Timeout: 1672444800, WindowSize: 100, Threshold: 50},
		},

		PowLimit:                     mainPowLimit,
		PosLimit:                     regTestPosLimit,
		FPowAllowMinDifficultyBlocks: true,
		FPowNoRetargeting:            false,
		TargetTimePerBlock:           150,
		TargetTimespan:               24 * 60 * 60,
		PowKGWHeight:                 4002,
		PowDGWHeight:                 4002,

		StakeMinAge: 24 * 60 * 60,

		MinimumChainWork:   util.Hash{},
		DefaultAssumeValid: util.Hash{},

		LLMQs: map[consensus.LLMQType]consensus.LLMQParams{
			consensus.LLMQ50_60:  llmq50_60,
			consensus.LLMQ400_60: llmq400_60,
			consensus.LLMQ400_85: llmq400_85,
		},
		LLMQTypeChainLocks:  consensus.LLMQ50_60,
		LLMQTypeInstantSend: consensus.LLMQ50_60,
	},

	Name:        "test",
	DefaultPort: "60696",
	RPCPort:     "9696",

	GenesisBlock: &TestNetGenesisBlock,
	PowLimitBits: 0x1e0ffff0,

	CoinbaseMaturity: 100,

	MineBlocksOnDemand: false,
	RequireStandard:    false,

	BIP9CheckMasternodesUpgraded: true,

	PubKeyHashAddressID: 88, // starts with 'c'
	ScriptHashAddressID: 19,
	PrivateKeyID:        239,
	HDPrivateKeyID:      [4]byte{0x04, 0x35, 0x83, 0x94},
	HDPublicKeyID:       [4]byte{0x04, 0x35, 0x87, 0xcf},
	HDCoinType:          1,
}

var RegressionNetParams = Params{
	Param: consensus.Param{
		GenesisHash:            &RegTestGenesisHash,
		SubsidyHalvingInterval: 150,

		MasternodePaymentsStartBlock:     240,
		MasternodePaymentsIncreaseBlock:  350,
		MasternodePaymentsIncreasePeriod: 10,
		BudgetPaymentsStartBlock:     1000,
		BudgetPaymentsCycleBlocks:    50,
		BudgetPaymentsWindowBlocks:   10,
		SuperblockStartBlock:         1500,
		SuperblockCycle:              10,

		BIP34Height: 100,
		BIP65Height: 101,
		BIP66Height: 102,

		DIP0001Height:            103,
		DIP0003Height:            104,
		DIP0003EnforcementHeight: 105,

		// Kept out of the way so proof-of-work tests run; tests that
		// need stake lower it explicitly.
		PoSStartHeight: 999999999,

		RuleChangeActivationThreshold: 108, // 75% for testchains
		MinerConfirmationWindow:       144,
		Deployments: [consensus.MaxVersionBitsDeployments]consensus.BIP9Deployment{
			consensus.DeploymentTestDummy: {Bit: 27, StartTime: 0, Timeout: 999999999999},
			consensus.DeploymentCSV:       {Bit: 0, StartTime: 0, Timeout: 999999999999},
			consensus.DeploymentDIP0001:   {Bit: 1, StartTime: 0, Timeout: 999999999999},
			consensus.DeploymentBIP147:    {Bit: 2, StartTime: 0, Timeout: 999999999999},
			consensus.DeploymentDIP0003:   {Bit: 3, StartTime: 0, Timeout: 999999999999},
			consensus.DeploymentDIP0008:   {Bit: 4, StartTime: 0, Timeout: 999999999999},
		},

		PowLimit:                     regTestPowLimit,
		PosLimit:                     regTestPosLimit,
		FPowAllowMinDifficultyBlocks: true,
		FPowNoRetargeting:            true,
		TargetTimePerBlock:           60,
		TargetTimespan:               24 * 60 * 60,
		PowKGWHeight:                 15200,
		PowDGWHeight:                 34140,

		StakeMinAge: 24 * 60 * 60,

		MinimumChainWork:   util.Hash{},
		DefaultAssumeValid: util.Hash{},

		LLMQs: map[consensus.LLMQType]consensus.LLMQParams{
			consensus.LLMQ5_60:  llmq5_60,
			consensus.LLMQ50_60: llmq50_60,
		},
		LLMQTypeChainLocks:  consensus.LLMQ5_60,
		LLMQTypeInstantSend: consensus.LLMQ5_60,
	},

	Name:        "regtest",
	DefaultPort: "63646",
	RPCPort:     "9966",

	GenesisBlock: &RegTestGenesisBlock,
	PowLimitBits: 0x207fffff,

	CoinbaseMaturity: 100,

	MineBlocksOnDemand: true,
	RequireStandard:    false,

	PubKeyHashAddressID: 125, // starts with 's'
	ScriptHashAddressID: 19,
	PrivateKeyID:        239,
	HDPrivateKeyID:      [4]byte{0x04, 0x35, 0x83, 0x94},
	HDPublicKeyID:       [4]byte{0x04, 0x35, 0x87, 0xcf},
	HDCoinType:          1,
}

var registeredNets = map[string]*Params{
	MainNetParams.Name:       &MainNetParams,
	TestNetParams.Name:       &TestNetParams,
	RegressionNetParams.Name: &RegressionNetParams,
}

// SelectParams sets the active network and switches the base58 address
// and secret key prefixes to match.
func SelectParams(name string) (*Params, error) {
	params, ok := registeredNets[name]
	if !ok {
		return nil, errors.Errorf("unknown chain %s", name)
	}
	ActiveNetParams = params
	script.InitAddressParam(&script.AddressParam{
		PubKeyHashAddressVer: params.PubKeyHashAddressID,
		ScriptHashAddressVer: params.ScriptHashAddressID,
	})
	crypto.InitPrivateKeyVersion(params.PrivateKeyID)
	return params, nil
}
