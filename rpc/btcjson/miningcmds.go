// Copyright (c) 2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcjson

// GenerateCmd defines the generate JSON-RPC command.
type GenerateCmd struct {
	NumBlocks uint32
	MaxTries  *uint64 `jsonrpcdefault:"1000000"`
}

// NewGenerateCmd returns a new instance which can be used to issue a generate
// JSON-RPC command.
func NewGenerateCmd(numBlocks uint32, maxTries *uint64) *GenerateCmd {
	return &GenerateCmd{
		NumBlocks: numBlocks,
		MaxTries:  maxTries,
	}
}

// GenerateToAddressCmd defines the generatetoaddress JSON-RPC command.
type GenerateToAddressCmd struct {
	NumBlocks int64
	Address   string
	MaxTries  *uint64 `jsonrpcdefault:"1000000"`
}

// NewGenerateToAddressCmd returns a new instance which can be used to issue a
// generatetoaddress JSON-RPC command.
//
// The parameters which are pointers indicate they are optional.  Passing nil
// for optional parameters will use the default value.
func NewGenerateToAddressCmd(numBlocks int64, address string, maxTries *uint64) *GenerateToAddressCmd {
	return &GenerateToAddressCmd{
		NumBlocks: numBlocks,
		Address:   address,
		MaxTries:  maxTries,
	}
}

// SetGenerateCmd defines the setgenerate JSON-RPC command.
type SetGenerateCmd struct {
	Generate     bool
	GenProcLimit *int32 `jsonrpcdefault:"-1"`
}

// NewSetGenerateCmd returns a new instance which can be used to issue a
// setgenerate JSON-RPC command.
//
// The parameters which are pointers indicate they are optional.  Passing nil
// for optional parameters will use the default value.
func NewSetGenerateCmd(generate bool, genProcLimit *int32) *SetGenerateCmd {
	return &SetGenerateCmd{
		Generate:     generate,
		GenProcLimit: genProcLimit,
	}
}

// PrioritiseTransactionCmd defines the prioritisetransaction JSON-RPC command.
type PrioritiseTransactionCmd struct {
	TxID     string
	FeeDelta int64
}

// NewPrioritiseTransactionCmd returns a new instance which can be used to
// issue a prioritisetransaction JSON-RPC command.
func NewPrioritiseTransactionCmd(txID string, feeDelta int64) *PrioritiseTransactionCmd {
	return &PrioritiseTransactionCmd{
		TxID:     txID,
		FeeDelta: feeDelta,
	}
}

// ReserveBalanceCmd defines the reservebalance JSON-RPC command.  With no
// arguments it reports the current reserve.
type ReserveBalanceCmd struct {
	Reserve *bool
	Amount  *float64
}

// NewReserveBalanceCmd returns a new instance which can be used to issue a
// reservebalance JSON-RPC command.
func NewReserveBalanceCmd(reserve *bool, amount *float64) *ReserveBalanceCmd {
	return &ReserveBalanceCmd{
		Reserve: reserve,
		Amount:  amount,
	}
}

// EstimateFeeCmd defines the estimatefee JSON-RPC command.
type EstimateFeeCmd struct {
	NumBlocks int32
}

// NewEstimateFeeCmd returns a new instance which can be used to issue an
// estimatefee JSON-RPC command.
func NewEstimateFeeCmd(numBlocks int32) *EstimateFeeCmd {
	return &EstimateFeeCmd{
		NumBlocks: numBlocks,
	}
}

// EstimateSmartFeeCmd defines the estimatesmartfee JSON-RPC command.
type EstimateSmartFeeCmd struct {
	ConfTarget   int32
	EstimateMode *string `jsonrpcdefault:"\"CONSERVATIVE\""`
}

// NewEstimateSmartFeeCmd returns a new instance which can be used to issue an
// estimatesmartfee JSON-RPC command.
func NewEstimateSmartFeeCmd(confTarget int32, estimateMode *string) *EstimateSmartFeeCmd {
	return &EstimateSmartFeeCmd{
		ConfTarget:   confTarget,
		EstimateMode: estimateMode,
	}
}

// EstimateRawFeeCmd defines the estimaterawfee JSON-RPC command.
type EstimateRawFeeCmd struct {
	ConfTarget int32
	Threshold  *float64 `jsonrpcdefault:"0.95"`
}

// NewEstimateRawFeeCmd returns a new instance which can be used to issue an
// estimaterawfee JSON-RPC command.
func NewEstimateRawFeeCmd(confTarget int32, threshold *float64) *EstimateRawFeeCmd {
	return &EstimateRawFeeCmd{
		ConfTarget: confTarget,
		Threshold:  threshold,
	}
}

func init() {
	// No special flags for commands in this file.
	flags := UsageFlag(0)

	MustRegisterCmd("generate", (*GenerateCmd)(nil), flags)
	MustRegisterCmd("generatetoaddress", (*GenerateToAddressCmd)(nil), flags)
	MustRegisterCmd("setgenerate", (*SetGenerateCmd)(nil), flags)
	MustRegisterCmd("prioritisetransaction", (*PrioritiseTransactionCmd)(nil), flags)
	MustRegisterCmd("reservebalance", (*ReserveBalanceCmd)(nil), flags)
	MustRegisterCmd("estimatefee", (*EstimateFeeCmd)(nil), flags)
	MustRegisterCmd("estimatesmartfee", (*EstimateSmartFeeCmd)(nil), flags)
	MustRegisterCmd("estimaterawfee", (*EstimateRawFeeCmd)(nil), flags)
}
