package errcode

import (
	"fmt"
)

const (
	MempoolErrorBase = iota * 1000
	ChainErrorBase
	RpcErrorBase
	MiningErrorBase
)

type ProjectError struct {
	Module string
	Code   int
	Desc   string
}

func (e ProjectError) Error() string {
	return fmt.Sprintf("module: %s, global errcode: %v,  errdesc: %s", e.Module, e.Code, e.Desc)
}

func getCodeAndName(errCode fmt.Stringer) (int, string) {
	code := 0
	name := ""

	switch t := errCode.(type) {
	case RPCErr:
		code = int(t)
		name = "rpc"
	case MemPoolErr:
		code = int(t)
		name = "mempool"
	case ChainErr:
		code = int(t)
		name = "chain"
	case MiningErr:
		code = int(t)
		name = "mining"
	default:
	}

	return code, name
}

func IsErrorCode(err error, errCode fmt.Stringer) bool {
	e, ok := err.(ProjectError)
	icode, _ := getCodeAndName(errCode)
	return ok && icode == e.Code
}

func New(errCode fmt.Stringer) error {
	code, name := getCodeAndName(errCode)

	return ProjectError{
		Module: name,
		Code:   code,
		Desc:   errCode.String(),
	}
}

// NewError keeps the module and numeric code of errCode but overrides
// the description, so callers can attach reject detail to a shared code.
func NewError(errCode fmt.Stringer, desc string) error {
	code, name := getCodeAndName(errCode)

	return ProjectError{
		Module: name,
		Code:   code,
		Desc:   desc,
	}
}
