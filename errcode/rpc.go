package errcode

import "fmt"

type RPCErr int

const (
	ModelValid RPCErr = RpcErrorBase + iota
	ModelInvalid
	ModelError
	ErrUnDefined

	ClientNotConnected
	ClientInInitialDownload
	WalletNotFound
)

var rpcErrString = map[RPCErr]string{
	ModelValid:   "valid",
	ModelInvalid: "invalid",
	ModelError:   "error",
	ErrUnDefined: "undefined",

	ClientNotConnected:      "Cosanta is not connected",
	ClientInInitialDownload: "Cosanta is downloading blocks...",
	WalletNotFound:          "wallet functionality is not available",
}

func (re RPCErr) String() string {
	if s, ok := rpcErrString[re]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", re)
}
