// Copyright (c) 2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcjson

// GetBlockHeaderVerboseResult models the data from the getblockheader command
// when the verbose flag is set.  When the verbose flag is not set,
// getblockheader returns a hex-encoded string.
type GetBlockHeaderVerboseResult struct {
	Hash          string  `json:"hash"`
	Confirmations uint64  `json:"confirmations"`
	Height        int32   `json:"height"`
	Version       int32   `json:"version"`
	VersionHex    string  `json:"versionHex"`
	MerkleRoot    string  `json:"merkleroot"`
	Time          uint32  `json:"time"`
	Mediantime    int64   `json:"mediantime"`
	Nonce         uint64  `json:"nonce"`
	Bits          string  `json:"bits"`
	Difficulty    float64 `json:"difficulty"`
	Chainwork     string  `json:"chainwork"`
	PreviousHash  string  `json:"previousblockhash,omitempty"`
	NextHash      string  `json:"nextblockhash,omitempty"`
}

// SoftForkDescription describes the current state of a soft-fork which was
// deployed using a super-majority block signalling mechanism.
type SoftForkDescription struct {
	ID      string `json:"id"`
	Version uint32 `json:"version"`
	Reject  struct {
		Status bool `json:"status"`
	} `json:"reject"`
}

// Bip9SoftForkDescription describes the current state of a defined BIP0009
// version bits soft-fork.
type Bip9SoftForkDescription struct {
	Status    string `json:"status"`
	Bit       uint8  `json:"bit"`
	StartTime int64  `json:"startTime"`
	Timeout   int64  `json:"timeout"`
	Since     int32  `json:"since"`
}

// GetBlockChainInfoResult models the data returned from the getblockchaininfo
// command.
type GetBlockChainInfoResult struct {
	Chain                string                              `json:"chain"`
	Blocks               int32                               `json:"blocks"`
	Headers              int32                               `json:"headers"`
	BestBlockHash        string                              `json:"bestblockhash"`
	Difficulty           float64                             `json:"difficulty"`
	MedianTime           int64                               `json:"mediantime"`
	VerificationProgress float64                             `json:"verificationprogress,omitempty"`
	Pruned               bool                                `json:"pruned"`
	PruneHeight          int32                               `json:"pruneheight,omitempty"`
	ChainWork            string                              `json:"chainwork,omitempty"`
	SoftForks            []*SoftForkDescription              `json:"softforks"`
	Bip9SoftForks        map[string]*Bip9SoftForkDescription `json:"bip9_softforks"`
}

// ChainTipsInfo models the data returns from the getchaintips command.
type ChainTipsInfo struct {
	Height    int32  `json:"height"`
	Hash      string `json:"hash"`
	BranchLen int32  `json:"branchlen"`
	Status    string `json:"status"`
}

// GetChainTipsResult models the data returns from the getchaintips command.
type GetChainTipsResult struct {
	Tips []ChainTipsInfo
}

// WaitForBlockResult models the data returned from the waitfornewblock,
// waitforblock and waitforblockheight commands.
type WaitForBlockResult struct {
	Hash   string `json:"hash"`
	Height int32  `json:"height"`
}

// GetMempoolInfoResult models the data returned from the getmempoolinfo
// command.
type GetMempoolInfoResult struct {
	Size          int     `json:"size"`
	Bytes         int64   `json:"bytes"`
	Usage         int64   `json:"usage"`
	MaxMempool    int64   `json:"maxmempool"`
	MempoolMinFee float64 `json:"mempoolminfee"`
}

// GetMempoolEntryRelativeInfoVerbose models the verbose data returned from
// the getmempoolentry, getmempoolancestors and getmempooldescendants
// commands.
type GetMempoolEntryRelativeInfoVerbose struct {
	Size             int      `json:"size"`
	Fee              float64  `json:"fee"`
	ModifiedFee      float64  `json:"modifiedfee"`
	Time             int64    `json:"time"`
	Height           int32    `json:"height"`
	StartingPriority float64  `json:"startingpriority"`
	CurrentPriority  float64  `json:"currentpriority"`
	DescendantCount  int64    `json:"descendantcount"`
	DescendantSize   int64    `json:"descendantsize"`
	DescendantFees   int64    `json:"descendantfees"`
	AncestorCount    int64    `json:"ancestorcount"`
	AncestorSize     int64    `json:"ancestorsize"`
	AncestorFees     int64    `json:"ancestorfees"`
	Depends          []string `json:"depends"`
}

// GetBlockTemplateResultTx models the transactions field of the
// getblocktemplate command.
type GetBlockTemplateResultTx struct {
	Data    string  `json:"data"`
	TxID    string  `json:"txid"`
	Hash    string  `json:"hash"`
	Depends []int64 `json:"depends"`
	Fee     int64   `json:"fee"`
	SigOps  int64   `json:"sigops"`
}

// GetBlockTemplateResultAux models the coinbaseaux field of the
// getblocktemplate command.
type GetBlockTemplateResultAux struct {
	Flags string `json:"flags"`
}

// GetBlockTemplateResultPayee models a masternode or superblock payment
// entry of the getblocktemplate command.
type GetBlockTemplateResultPayee struct {
	Payee  string `json:"payee"`
	Script string `json:"script"`
	Amount int64  `json:"amount"`
}

// GetBlockTemplateResult models the data returned from the getblocktemplate
// command.
type GetBlockTemplateResult struct {
	// Base fields from BIP 0022.  CoinbaseAux is optional.  One of
	// CoinbaseTxn or CoinbaseValue must be specified, but not both.
	Capabilities  []string                   `json:"capabilities"`
	Version       int32                      `json:"version"`
	Rules         []string                   `json:"rules"`
	VbAvailable   map[string]uint32          `json:"vbavailable"`
	VbRequired    uint32                     `json:"vbrequired"`
	PreviousHash  string                     `json:"previousblockhash"`
	Transactions  []GetBlockTemplateResultTx `json:"transactions"`
	CoinbaseAux   *GetBlockTemplateResultAux `json:"coinbaseaux,omitempty"`
	CoinbaseTxn   *GetBlockTemplateResultTx  `json:"coinbasetxn,omitempty"`
	CoinbaseValue *int64                     `json:"coinbasevalue,omitempty"`

	// Optional long polling from BIP 0022.
	LongPollID string `json:"longpollid,omitempty"`
	SubmitOld  *bool  `json:"submitold,omitempty"`

	// Basic pool extension from BIP 0023.
	Target  string `json:"target,omitempty"`
	Expires int64  `json:"expires,omitempty"`

	// Mutations from BIP 0023.
	MinTime    int64    `json:"mintime,omitempty"`
	MaxTime    int64    `json:"maxtime,omitempty"`
	Mutable    []string `json:"mutable,omitempty"`
	NonceRange string   `json:"noncerange,omitempty"`

	SigOpLimit   int64  `json:"sigoplimit,omitempty"`
	SizeLimit    int64  `json:"sizelimit,omitempty"`
	CurTime      int64  `json:"curtime"`
	Bits         string `json:"bits"`
	PreviousBits string `json:"previousbits"`
	Height       int64  `json:"height"`

	// Masternode and superblock payments plus the special coinbase
	// payload, following the original chain's template extensions.
	Masternode                 []GetBlockTemplateResultPayee `json:"masternode"`
	MasternodePaymentsStarted  bool                          `json:"masternode_payments_started"`
	MasternodePaymentsEnforced bool                          `json:"masternode_payments_enforced"`
	Superblock                 []GetBlockTemplateResultPayee `json:"superblock"`
	SuperblocksStarted         bool                          `json:"superblocks_started"`
	SuperblocksEnabled         bool                          `json:"superblocks_enabled"`
	CoinbasePayload            string                        `json:"coinbase_payload"`
}

// GetMiningInfoResult models the data from the getmininginfo command.
type GetMiningInfoResult struct {
	Blocks           int32   `json:"blocks"`
	CurrentBlockSize uint64  `json:"currentblocksize"`
	CurrentBlockTx   uint64  `json:"currentblocktx"`
	Difficulty       float64 `json:"difficulty"`
	Errors           string  `json:"errors"`
	Generate         bool    `json:"generate"`
	GenProcLimit     int32   `json:"genproclimit"`
	HashesPerSec     int64   `json:"hashespersec"`
	NetworkHashPS    float64 `json:"networkhashps"`
	PooledTx         uint64  `json:"pooledtx"`
	Chain            string  `json:"chain"`
}

// EstimateSmartFeeResult models the data returned from the estimatesmartfee
// command.
type EstimateSmartFeeResult struct {
	FeeRate *float64 `json:"feerate,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Blocks  int32    `json:"blocks"`
}

// EstimateRawFeeResult models the data returned from the estimaterawfee
// command.
type EstimateRawFeeResult struct {
	FeeRate   *float64 `json:"feerate,omitempty"`
	Decay     float64  `json:"decay"`
	Threshold float64  `json:"threshold"`
	Blocks    int32    `json:"blocks"`
}

// InfoChainResult models the data returned by the chain server getinfo
// command.
type InfoChainResult struct {
	Version         int32   `json:"version"`
	ProtocolVersion int32   `json:"protocolversion"`
	Blocks          int32   `json:"blocks"`
	TimeOffset      int64   `json:"timeoffset"`
	Connections     int32   `json:"connections"`
	Proxy           string  `json:"proxy"`
	Difficulty      float64 `json:"difficulty"`
	TestNet         bool    `json:"testnet"`
	RelayFee        float64 `json:"relayfee"`
	Errors          string  `json:"errors"`
}

// ValidateAddressChainResult models the data returned by the chain server
// validateaddress command.
type ValidateAddressChainResult struct {
	IsValid      bool   `json:"isvalid"`
	Address      string `json:"address,omitempty"`
	ScriptPubKey string `json:"scriptPubKey,omitempty"`
}

// VersionResult models objects included in the version response.  In the
// actual result, these objects are keyed by the program or API name.
type VersionResult struct {
	VersionString string `json:"versionstring"`
	Major         uint32 `json:"major"`
	Minor         uint32 `json:"minor"`
	Patch         uint32 `json:"patch"`
	Prerelease    string `json:"prerelease,omitempty"`
	BuildMetadata string `json:"buildmetadata,omitempty"`
}
