package rpc

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cosanta/cosanta-core/conf"
	"github.com/cosanta/cosanta-core/crypto"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/rpc/btcjson"
	"github.com/cosanta/cosanta-core/util"
)

// API version constants
const (
	jsonrpcSemverString = "1.0.0"
	jsonrpcSemverMajor  = 1
	jsonrpcSemverMinor  = 1
	jsonrpcSemverPatch  = 0
)

// Wire protocol version reported by getinfo.
const protocolVersion = 70221

// Client version components reported by getinfo.
const (
	appMajor = 0
	appMinor = 17
	appPatch = 0
)

// strMessageMagic prefixes every signed message so a signature over a
// message can never double as a transaction signature.
const strMessageMagic = "DarkCoin Signed Message:\n"

var miscHandlers = map[string]commandHandler{
	"getinfo":                handleGetInfo,
	"validateaddress":        handleValidateAddress,
	"verifymessage":          handleVerifyMessage,
	"signmessagewithprivkey": handleSignMessageWithPrivkey,
	"setmocktime":            handleSetMocktime,
	"echo":                   handleEcho,
	"help":                   handleHelp,
	"stop":                   handleStop,
	"uptime":                 handleUptime,
	"version":                handleVersion,
}

func handleGetInfo(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	gChain := chain.GetInstance()
	gChain.RLock()
	best := gChain.Tip()
	var height int32
	if best != nil {
		height = best.Height
	}
	difficulty := getDifficulty(best)
	gChain.RUnlock()

	ret := &btcjson.InfoChainResult{
		Version:         1000000*appMajor + 10000*appMinor + 100*appPatch,
		ProtocolVersion: protocolVersion,
		Blocks:          height,
		TimeOffset:      util.GetTimeOffsetSec(),
		Connections:     0,
		Difficulty:      difficulty,
		TestNet:         conf.Cfg.P2PNet.TestNet,
		RelayFee:        valueFromAmount(conf.Cfg.Mining.BlockMinTxFee),
	}

	return ret, nil
}

// handleValidateAddress implements the validateaddress command.
func handleValidateAddress(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.ValidateAddressCmd)

	result := btcjson.ValidateAddressChainResult{}
	dest, err := script.AddressFromString(c.Address)
	if err != nil {
		result.IsValid = false
		return result, nil
	}

	result.IsValid = true
	result.Address = c.Address
	result.ScriptPubKey = hex.EncodeToString(script.NewScriptFromAddress(dest).Bytes())

	return result, nil
}

// signedMessageHash produces the digest both message RPCs sign and
// recover against: the magic and the message, each length-prefixed,
// double hashed.
func signedMessageHash(message string) util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, len(strMessageMagic)+len(message)+8))
	util.WriteVarBytes(buf, []byte(strMessageMagic))
	util.WriteVarBytes(buf, []byte(message))
	return util.DoubleSha256Hash(buf.Bytes())
}

func handleVerifyMessage(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.VerifyMessageCmd)

	addr, err := script.AddressFromString(c.Address)
	if err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCType,
			Message: "Invalid address",
		}
	}

	sigBytes, err := base64.StdEncoding.DecodeString(c.Signature)
	if err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidAddressOrKey,
			Message: "Malformed base64 encoding",
		}
	}

	hash := signedMessageHash(c.Message)
	pk := crypto.RecoverCompact(&hash, sigBytes)
	if pk == nil {
		return false, nil
	}

	recovered, err := script.AddressFromPublicKey(pk.ToBytes())
	if err != nil {
		return false, nil
	}

	return bytes.Equal(recovered.EncodeToPubKeyHash(), addr.EncodeToPubKeyHash()), nil
}

func handleSignMessageWithPrivkey(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.SignMessageWithPrivkeyCmd)

	bs, _, err := util.Base58DecodeCheck(c.Privkey)
	if err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidAddressOrKey,
			Message: "Invalid private key",
		}
	}
	// A WIF payload is the 32 raw key bytes, optionally followed by the
	// compression marker.
	if len(bs) != 32 && !(len(bs) == 33 && bs[32] == 0x01) {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidAddressOrKey,
			Message: "Invalid private key",
		}
	}
	privKey := crypto.PrivateKeyFromBytes(bs[:32])

	hash := signedMessageHash(c.Message)
	signature, err := privKey.SignCompact(&hash)
	if err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInternal.Code,
			Message: "Sign failed",
		}
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

func handleSetMocktime(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.SetMocktimeCmd)

	if !chain.GetInstance().GetParams().MineBlocksOnDemand {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCForbiddenBySafeMode,
			Message: "setmocktime for regression testing (-regtest mode) only",
		}
	}

	// Mocktime shifts every GetTimeSec call at once. Template caching
	// and mempool expiry both read the clock, so only regtest, where
	// nothing races the RPC, may move it.
	util.SetMockTime(c.Timestamp)

	return nil, nil
}

func handleEcho(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	const echoArgPrefix = "arg"
	if _, ok := cmd.(*map[string]json.RawMessage); !ok {
		return cmd, nil
	}
	// JSON format
	params := cmd.(*map[string]json.RawMessage)
	retLen := 0
	args := make(map[int]interface{})
	for argName, arg := range *params {
		if !strings.HasPrefix(strings.ToLower(argName), echoArgPrefix) {
			return nil, &btcjson.RPCError{
				Code:    btcjson.ErrRPCInvalidParameter,
				Message: "Unknown named parameter " + argName,
			}
		}
		argIdx := argName[len(echoArgPrefix):]
		if index, err := strconv.Atoi(argIdx); err == nil {
			args[index] = arg
			if index >= retLen {
				retLen = index + 1
			}
		}
	}
	result := make([]interface{}, retLen)
	for index, arg := range args {
		result[index] = arg
	}
	return result, nil
}

// handleHelp implements the help command.
func handleHelp(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.HelpCmd)
	var command string
	if c.Command != nil {
		command = *c.Command
	}
	if command == "" {
		usage, err := s.helpCacher.rpcUsage(false)
		if err != nil {
			context := "Failed to generate RPC usage"
			return nil, internalRPCError(err.Error(), context)
		}
		return usage, nil
	}

	if _, ok := rpcHandlers[command]; !ok {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "Unknown command: " + command,
		}
	}

	help, err := s.helpCacher.rpcMethodHelp(command)
	if err != nil {
		context := "Failed to generate help"
		return nil, internalRPCError(err.Error(), context)
	}
	return help, nil
}

// handleStop implements the stop command.
func handleStop(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	select {
	case s.requestProcessShutdown <- struct{}{}:
	default:
	}
	return "Cosanta server stopping", nil
}

// handleUptime implements the uptime command.
func handleUptime(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	return util.GetTimeSec() - s.startupTime, nil
}

func handleVersion(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	result := map[string]btcjson.VersionResult{
		"btcdjsonrpcapi": {
			VersionString: jsonrpcSemverString,
			Major:         jsonrpcSemverMajor,
			Minor:         jsonrpcSemverMinor,
			Patch:         jsonrpcSemverPatch,
		},
	}
	return result, nil
}

func registerMiscRPCCommands() {
	for name, handler := range miscHandlers {
		appendCommand(name, handler)
	}
}
