package rpc

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosanta/cosanta-core/crypto"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/rpc/btcjson"
	"github.com/cosanta/cosanta-core/util"
)

var testSigningKey = func() *crypto.PrivateKey {
	raw := make([]byte, 32)
	raw[0] = 0x2a
	raw[31] = 0x01
	return crypto.PrivateKeyFromBytes(raw)
}()

func TestSignedMessageHash(t *testing.T) {
	h1 := signedMessageHash("hello")
	h2 := signedMessageHash("hello")
	h3 := signedMessageHash("hello.")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestSignAndVerifyMessage(t *testing.T) {
	const message = "until the last duff"

	addr, err := script.AddressFromPublicKey(testSigningKey.PubKey().ToBytes())
	require.NoError(t, err)

	result, err := handleSignMessageWithPrivkey(nil, &btcjson.SignMessageWithPrivkeyCmd{
		Privkey: testSigningKey.ToString(),
		Message: message,
	}, nil)
	require.NoError(t, err)
	signature := result.(string)

	verified, err := handleVerifyMessage(nil, &btcjson.VerifyMessageCmd{
		Address:   addr.String(),
		Signature: signature,
		Message:   message,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, verified)

	// A different message no longer recovers to the signing key.
	verified, err = handleVerifyMessage(nil, &btcjson.VerifyMessageCmd{
		Address:   addr.String(),
		Signature: signature,
		Message:   message + "!",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, false, verified)

	_, err = handleVerifyMessage(nil, &btcjson.VerifyMessageCmd{
		Address:   addr.String(),
		Signature: "definitely not base64!",
		Message:   message,
	}, nil)
	require.Error(t, err)
	rpcErr, ok := err.(*btcjson.RPCError)
	require.True(t, ok)
	assert.Equal(t, btcjson.ErrRPCInvalidAddressOrKey, rpcErr.Code)
}

func TestHandleSignMessageWithPrivkeyRejectsGarbage(t *testing.T) {
	for _, privkey := range []string{
		"",
		"not base58 at all",
		// Valid base58check, wrong payload length for a WIF key.
		util.Base58EncodeCheck([]byte{1, 2, 3}, 204),
	} {
		_, err := handleSignMessageWithPrivkey(nil, &btcjson.SignMessageWithPrivkeyCmd{
			Privkey: privkey,
			Message: "m",
		}, nil)
		require.Error(t, err, "privkey %q", privkey)
		rpcErr, ok := err.(*btcjson.RPCError)
		require.True(t, ok)
		assert.Equal(t, btcjson.ErrRPCInvalidAddressOrKey, rpcErr.Code)
	}
}

func TestHandleValidateAddress(t *testing.T) {
	addr, err := script.AddressFromPublicKey(testSigningKey.PubKey().ToBytes())
	require.NoError(t, err)

	result, err := handleValidateAddress(nil, &btcjson.ValidateAddressCmd{Address: addr.String()}, nil)
	require.NoError(t, err)
	info := result.(btcjson.ValidateAddressChainResult)
	assert.True(t, info.IsValid)
	assert.Equal(t, addr.String(), info.Address)
	assert.Equal(t, hex.EncodeToString(script.NewScriptFromAddress(addr).Bytes()), info.ScriptPubKey)

	result, err = handleValidateAddress(nil, &btcjson.ValidateAddressCmd{Address: "notanaddress"}, nil)
	require.NoError(t, err)
	info = result.(btcjson.ValidateAddressChainResult)
	assert.False(t, info.IsValid)
	assert.Empty(t, info.Address)
}

func TestHandleSetMocktime(t *testing.T) {
	chain.SetInstance(chain.NewChain(&chainparams.MainNetParams))
	_, err := handleSetMocktime(nil, &btcjson.SetMocktimeCmd{Timestamp: 1626442320}, nil)
	require.Error(t, err)
	rpcErr, ok := err.(*btcjson.RPCError)
	require.True(t, ok)
	assert.Equal(t, btcjson.ErrRPCForbiddenBySafeMode, rpcErr.Code)

	chain.SetInstance(chain.NewChain(&chainparams.RegressionNetParams))
	t.Cleanup(func() { util.SetMockTime(0) })
	_, err = handleSetMocktime(nil, &btcjson.SetMocktimeCmd{Timestamp: 1626442320}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1626442320), util.GetTimeSec())
}

func TestHandleUptime(t *testing.T) {
	t.Cleanup(func() { util.SetMockTime(0) })

	util.SetMockTime(1626442320)
	s := &Server{startupTime: util.GetTimeSec()}

	result, err := handleUptime(s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result)

	util.SetMockTime(1626442320 + 90)
	result, err = handleUptime(s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(90), result)
}

func TestHandleVersion(t *testing.T) {
	result, err := handleVersion(nil, nil, nil)
	require.NoError(t, err)
	versions := result.(map[string]btcjson.VersionResult)
	info, ok := versions["btcdjsonrpcapi"]
	require.True(t, ok)
	assert.Equal(t, jsonrpcSemverString, info.VersionString)
}
