package rpc

import (
	"sort"
	"strings"
	"sync"

	"github.com/cosanta/cosanta-core/rpc/btcjson"
)

// helpCacher provides a concurrent safe type that provides help and usage for
// the RPC server commands and caches the results for future calls.
type helpCacher struct {
	sync.Mutex
	usage      string
	methodHelp map[string]string
}

var methodHelp = map[string]string{
	"getblockchaininfo":     getblockchaininfoDesc,
	"getbestblockhash":      getbestblockhashDesc,
	"getblockcount":         getblockcountDesc,
	"getblockhash":          getblockhashDesc,
	"getblockheader":        getblockheaderDesc,
	"getchaintips":          getchaintipsDesc,
	"getdifficulty":         getdifficultyDesc,
	"getmempoolancestors":   getmempoolancestorsDesc,
	"getmempooldescendants": getmempooldescendantsDesc,
	"getmempoolentry":       getmempoolentryDesc,
	"getmempoolinfo":        getmempoolinfoDesc,
	"getrawmempool":         getrawmempoolDesc,
	"waitfornewblock":       waitfornewblockDesc,
	"waitforblock":          waitforblockDesc,
	"waitforblockheight":    waitforblockheightDesc,

	"getnetworkhashps":      getnetworkhashpsDesc,
	"getmininginfo":         getmininginfoDesc,
	"getblocktemplate":      getblocktemplateDesc,
	"submitblock":           submitblockDesc,
	"generate":              generateDesc,
	"generatetoaddress":     generatetoaddressDesc,
	"getgenerate":           getgenerateDesc,
	"setgenerate":           setgenerateDesc,
	"prioritisetransaction": prioritisetransactionDesc,
	"reservebalance":        reservebalanceDesc,
	"estimatefee":           estimatefeeDesc,
	"estimatesmartfee":      estimatesmartfeeDesc,
	"estimaterawfee":        estimaterawfeeDesc,

	"getinfo":                getinfoDesc,
	"validateaddress":        validateaddressDesc,
	"verifymessage":          verifymessageDesc,
	"signmessagewithprivkey": signmessagewithprivkeyDesc,
	"setmocktime":            setmocktimeDesc,
	"echo":                   echoDesc,
	"help":                   helpDesc,
	"stop":                   stopDesc,
	"uptime":                 uptimeDesc,
	"version":                versionDesc,
}

// rpcMethodHelp returns an RPC help string for the provided method.
//
// This function is safe for concurrent access.
func (c *helpCacher) rpcMethodHelp(method string) (string, error) {
	c.Lock()
	defer c.Unlock()
	help, exists := c.methodHelp[method]

	if !exists {
		return "", nil
	}

	return help, nil
}

// rpcUsage returns one-line usage for all support RPC commands.
//
// This function is safe for concurrent access.
func (c *helpCacher) rpcUsage(includeWebsockets bool) (string, error) {
	c.Lock()
	defer c.Unlock()

	// Return the cached usage if it is available.
	if c.usage != "" {
		return c.usage, nil
	}

	// Generate a list of one-line usage for every command.
	usageTexts := make([]string, 0, len(methodHelp))
	for k := range methodHelp {

		usage, err := btcjson.MethodUsageText(k)
		if err != nil {
			return "", err
		}
		usageTexts = append(usageTexts, usage)
	}

	sort.Sort(sort.StringSlice(usageTexts))
	c.usage = strings.Join(usageTexts, "\n")
	return c.usage, nil
}

// newHelpCacher returns a new instance of a help cacher which provides help and
// usage for the RPC server commands and caches the results for future calls.
func newHelpCacher() *helpCacher {
	return &helpCacher{
		methodHelp: methodHelp,
	}
}
