package rpc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every served command carries a help text, and nothing documents a
// command the server no longer serves.
func TestMethodHelpMatchesHandlers(t *testing.T) {
	registerAllRPCCommands()

	for method := range rpcHandlers {
		desc, ok := methodHelp[method]
		assert.True(t, ok, "no help text for %s", method)
		assert.True(t, strings.HasPrefix(desc, method), "help for %s does not open with its usage line", method)
	}
	for method := range methodHelp {
		_, ok := rpcHandlers[method]
		assert.True(t, ok, "help text for unserved command %s", method)
	}
}

func TestHelpCacher(t *testing.T) {
	registerAllRPCCommands()
	cacher := newHelpCacher()

	help, err := cacher.rpcMethodHelp("getblockcount")
	require.NoError(t, err)
	assert.Contains(t, help, "getblockcount")

	help, err = cacher.rpcMethodHelp("nosuchmethod")
	require.NoError(t, err)
	assert.Empty(t, help)

	usage, err := cacher.rpcUsage(false)
	require.NoError(t, err)
	assert.Contains(t, usage, "getblocktemplate")

	// The second call serves the cached copy.
	again, err := cacher.rpcUsage(false)
	require.NoError(t, err)
	assert.Equal(t, usage, again)
}
