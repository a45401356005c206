package consensus

import (
	"math/big"

	"github.com/cosanta/cosanta-core/util"
)

type DeploymentPos int

const (
	DeploymentTestDummy DeploymentPos = iota
	// DeploymentCSV deployment of BIP68, BIP112, and BIP113.
	DeploymentCSV
	DeploymentDIP0001
	DeploymentBIP147
	DeploymentDIP0003
	DeploymentDIP0008
	// MaxVersionBitsDeployments NOTE: also add new deployments to
	// VersionBitsDeploymentInfo in versionbits.go
	MaxVersionBitsDeployments
)

type BIP9Deployment struct {
	/** Bit position to select the particular bit in nVersion. */
	Bit int
	/** Start MedianTime for version bits miner confirmation. Can be a date in
	 * the past */
	StartTime int64
	/** Timeout/expiry MedianTime for the deployment attempt. */
	Timeout int64
	// WindowSize overrides MinerConfirmationWindow for this deployment
	// when non zero.
	WindowSize uint32
	// Threshold overrides RuleChangeActivationThreshold when non zero.
	Threshold uint32
}

type LLMQType int

const (
	LLMQNone LLMQType = 0

	LLMQ50_60  LLMQType = 1
	LLMQ400_60 LLMQType = 2
	LLMQ400_85 LLMQType = 3

	// LLMQ5_60 is for regtest only.
	LLMQ5_60 LLMQType = 100
)

// LLMQParams describes one long-living masternode quorum type.
type LLMQParams struct {
	Type      LLMQType
	Name      string
	Size      int
	MinSize   int
	Threshold int

	// A quorum DKG starts every DkgInterval blocks.
	DkgInterval          int
	DkgPhaseBlocks       int
	DkgMiningWindowStart int
	DkgMiningWindowEnd   int
	DkgBadVotesThreshold int

	SigningActiveQuorumCount int

	KeepOldConnections int
}

type Param struct {
	GenesisHash            *util.Hash
	SubsidyHalvingInterval int32

	MasternodePaymentsStartBlock int32
	// The masternode share of the reward starts at 20% and grows by
	// 5% every IncreasePeriod blocks past IncreaseBlock, up to 50%.
	MasternodePaymentsIncreaseBlock  int32
	MasternodePaymentsIncreasePeriod int32

	BudgetPaymentsStartBlock int32
	BudgetPaymentsCycleBlocks    int32
	BudgetPaymentsWindowBlocks   int32
	SuperblockStartBlock         int32
	SuperblockCycle              int32

	// Block height at which BIP34 becomes active
	BIP34Height int32
	//  Block height at which BIP65 becomes active
	BIP65Height int32
	//  Block height at which BIP66 becomes active
	BIP66Height int32

	// Block height at which DIP0001 (2MB blocks) becomes active
	DIP0001Height int32
	// Block height at which DIP0003 (deterministic masternodes, special
	// transactions) becomes active
	DIP0003Height int32
	// Block height at which DIP0003 becomes enforced
	DIP0003EnforcementHeight int32

	// Block height from which blocks must be proof-of-stake. Below it
	// the chain is pure proof-of-work.
	PoSStartHeight int32

	// Minimum blocks including miner confirmation of the total of 2016 blocks
	// in a retargeting period, (nPowTargetTimespan / nPowTargetSpacing) which
	// is also used for BIP9 deployments.
	// Examples: 1916 for 95%, 1512 for testchains.
	RuleChangeActivationThreshold uint32

	MinerConfirmationWindow uint32

	Deployments [MaxVersionBitsDeployments]BIP9Deployment

	// Proof of work parameters
	PowLimit *big.Int
	// Proof of stake kernel target bound
	PosLimit                     *big.Int
	FPowAllowMinDifficultyBlocks bool
	FPowNoRetargeting            bool
	// TargetTimePerBlock block spacing in seconds
	TargetTimePerBlock int64
	// TargetTimespan retarget window in seconds
	TargetTimespan int64
	// PowKGWHeight kimoto gravity well retarget activation
	PowKGWHeight int32
	// PowDGWHeight dark gravity wave retarget activation
	PowDGWHeight int32

	// StakeMinAge minimum coin age for staking, in seconds
	StakeMinAge int64

	// The best chain should have at least this much work.
	MinimumChainWork util.Hash

	// By default assume that the signatures in ancestors of this block are valid.
	DefaultAssumeValid util.Hash

	LLMQs               map[LLMQType]LLMQParams
	LLMQTypeChainLocks  LLMQType
	LLMQTypeInstantSend LLMQType

	// HighSubsidyBlocks devnet bootstrapping aid
	HighSubsidyBlocks int32
	HighSubsidyFactor int32
}

func (pm *Param) DifficultyAdjustmentInterval() int64 {
	return pm.TargetTimespan / pm.TargetTimePerBlock
}
