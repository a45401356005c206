package rpc

//blockchain
const (
	getblockchaininfoDesc = "getblockchaininfo\n" +
		"Returns an object containing various state info regarding " +
		"blockchain processing.\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"chain\": \"xxxx\",        (string) current network name as " +
		"defined in BIP70 (main, test, regtest)\n" +
		"  \"blocks\": xxxxxx,         (numeric) the current number of " +
		"blocks processed in the server\n" +
		"  \"headers\": xxxxxx,        (numeric) the current number of " +
		"headers we have validated\n" +
		"  \"bestblockhash\": \"...\", (string) the hash of the currently " +
		"best block\n" +
		"  \"difficulty\": xxxxxx,     (numeric) the current difficulty\n" +
		"  \"mediantime\": xxxxxx,     (numeric) median time for the " +
		"current best block\n" +
		"  \"chainwork\": \"xxxx\"     (string) total amount of work in " +
		"active chain, in hexadecimal\n" +
		"  \"softforks\": [ ... ],     (array) status of softforks in " +
		"progress\n" +
		"  \"bip9_softforks\": { ... } (object) status of BIP9 softforks " +
		"in progress\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli getblockchaininfo\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getblockchaininfo", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getbestblockhashDesc = "getbestblockhash\n" +
		"\nReturns the hash of the best (tip) block in the " +
		"longest blockchain.\n" +
		"\nResult:\n" +
		"\"hex\"      (string) the block hash hex encoded\n" +
		"\nExamples:\n" +
		"> cosanta-cli getbestblockhash\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getbestblockhash", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getblockcountDesc = "getblockcount\n" +
		"\nReturns the number of blocks in the longest blockchain.\n" +
		"\nResult:\n" +
		"n    (numeric) the current block count\n" +
		"\nExamples:\n" +
		"> cosanta-cli getblockcount\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getblockcount", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getblockhashDesc = "getblockhash height\n" +
		"\nReturns hash of block in best-block-chain at height provided.\n" +
		"\nArguments:\n" +
		"1. height         (numeric, required) the height index\n" +
		"\nResult:\n" +
		"\"hash\"         (string) the block hash\n" +
		"\nExamples:\n" +
		"> cosanta-cli getblockhash 1000\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getblockhash", "params": [1000] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getblockheaderDesc = "getblockheader \"hash\" ( verbose )\n" +
		"\nIf verbose is false, returns a string that is serialized, " +
		"hex-encoded data for blockheader 'hash'.\n" +
		"If verbose is true, returns an Object with information about " +
		"blockheader <hash>.\n" +
		"\nArguments:\n" +
		"1. \"hash\"          (string, required) the block hash\n" +
		"2. verbose           (boolean, optional, default=true) true for a " +
		"json object, false for the hex encoded data\n" +
		"\nResult (for verbose = true):\n" +
		"{\n" +
		"  \"hash\" : \"hash\",       (string) the block hash\n" +
		"  \"confirmations\" : n,   (numeric) the number of confirmations, " +
		"or -1 if the block is not on the main chain\n" +
		"  \"height\" : n,          (numeric) the block height or index\n" +
		"  \"version\" : n,         (numeric) the block version\n" +
		"  \"merkleroot\" : \"xxxx\", (string) the merkle root\n" +
		"  \"time\" : ttt,          (numeric) the block time\n" +
		"  \"mediantime\" : ttt,    (numeric) the median block time\n" +
		"  \"nonce\" : n,           (numeric) the nonce\n" +
		"  \"bits\" : \"1d00ffff\",   (string) the bits\n" +
		"  \"difficulty\" : x.xxx,  (numeric) the difficulty\n" +
		"  \"chainwork\" : \"0000...1f3\"     (string) expected number of " +
		"hashes required to produce the current chain (in hex)\n" +
		"  \"previousblockhash\" : \"hash\",  (string) the hash of the " +
		"previous block\n" +
		"  \"nextblockhash\" : \"hash\",      (string) the hash of the " +
		"next block\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli getblockheader \"00000000c937983704a73af28acdec37b049d214adbda81d7e2a3dd146f6ed09\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getblockheader", "params": ["00000000c937983704a73af28acdec37b049d214adbda81d7e2a3dd146f6ed09"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getchaintipsDesc = "getchaintips\n" +
		"Return information about all known tips in the block tree, " +
		"including the main chain as well as orphaned branches.\n" +
		"\nResult:\n" +
		"[\n" +
		"  {\n" +
		"    \"height\": xxxx,     (numeric) height of the chain tip\n" +
		"    \"hash\": \"xxxx\",     (string) block hash of the tip\n" +
		"    \"branchlen\": 0      (numeric) zero for main chain\n" +
		"    \"status\": \"active\"  (string) \"active\" for the main chain\n" +
		"  },\n" +
		"]\n" +
		"\nExamples:\n" +
		"> cosanta-cli getchaintips\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getchaintips", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getdifficultyDesc = "getdifficulty\n" +
		"\nReturns the proof-of-work difficulty as a multiple of the " +
		"minimum difficulty.\n" +
		"\nResult:\n" +
		"n.nnn       (numeric) the proof-of-work difficulty as a multiple " +
		"of the minimum difficulty.\n" +
		"\nExamples:\n" +
		"> cosanta-cli getdifficulty\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getdifficulty", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getmempoolancestorsDesc = "getmempoolancestors txid (verbose)\n" +
		"\nIf txid is in the mempool, returns all in-mempool ancestors.\n" +
		"\nArguments:\n" +
		"1. \"txid\"       (string, required) the transaction id (must be " +
		"in mempool)\n" +
		"2. verbose        (boolean, optional, default=false) true for a " +
		"json object, false for array of transaction ids\n" +
		"\nResult (for verbose=false):\n" +
		"[                       (json array of strings)\n" +
		"  \"transactionid\"     (string) the transaction id of an " +
		"in-mempool ancestor transaction\n" +
		"  ,...\n" +
		"]\n" +
		"\nExamples:\n" +
		"> cosanta-cli getmempoolancestors \"mytxid\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getmempoolancestors", "params": ["mytxid"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getmempooldescendantsDesc = "getmempooldescendants txid (verbose)\n" +
		"\nIf txid is in the mempool, returns all in-mempool descendants.\n" +
		"\nArguments:\n" +
		"1. \"txid\"       (string, required) the transaction id (must be " +
		"in mempool)\n" +
		"2. verbose        (boolean, optional, default=false) true for a " +
		"json object, false for array of transaction ids\n" +
		"\nResult (for verbose=false):\n" +
		"[                       (json array of strings)\n" +
		"  \"transactionid\"     (string) the transaction id of an " +
		"in-mempool descendant transaction\n" +
		"  ,...\n" +
		"]\n" +
		"\nExamples:\n" +
		"> cosanta-cli getmempooldescendants \"mytxid\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getmempooldescendants", "params": ["mytxid"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getmempoolentryDesc = "getmempoolentry txid\n" +
		"\nReturns mempool data for given transaction.\n" +
		"\nArguments:\n" +
		"1. \"txid\"                   (string, required) the transaction " +
		"id (must be in mempool)\n" +
		"\nResult:\n" +
		"{\n" +
		"    \"size\" : n,             (numeric) transaction size\n" +
		"    \"fee\" : n,              (numeric) transaction fee in COSA\n" +
		"    \"modifiedfee\" : n,      (numeric) transaction fee with fee " +
		"deltas used for mining priority\n" +
		"    \"time\" : n,             (numeric) local time transaction " +
		"entered pool in seconds since 1 Jan 1970 GMT\n" +
		"    \"height\" : n,           (numeric) block height when " +
		"transaction entered pool\n" +
		"    \"descendantcount\" : n,  (numeric) number of in-mempool " +
		"descendant transactions (including this one)\n" +
		"    \"descendantsize\" : n,   (numeric) size of in-mempool " +
		"descendants (including this one)\n" +
		"    \"descendantfees\" : n,   (numeric) modified fees (see above) " +
		"of in-mempool descendants (including this one)\n" +
		"    \"ancestorcount\" : n,    (numeric) number of in-mempool " +
		"ancestor transactions (including this one)\n" +
		"    \"ancestorsize\" : n,     (numeric) size of in-mempool " +
		"ancestors (including this one)\n" +
		"    \"ancestorfees\" : n,     (numeric) modified fees (see above) " +
		"of in-mempool ancestors (including this one)\n" +
		"    \"depends\" : [           (array) unconfirmed transactions " +
		"used as inputs for this transaction\n" +
		"        \"transactionid\",    (string) parent transaction id\n" +
		"       ... ]\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli getmempoolentry \"mytxid\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getmempoolentry", "params": ["mytxid"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getmempoolinfoDesc = "getmempoolinfo\n" +
		"\nReturns details on the active state of the TX memory pool.\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"size\": xxxxx,               (numeric) current tx count\n" +
		"  \"bytes\": xxxxx,              (numeric) sum of all tx sizes\n" +
		"  \"usage\": xxxxx,              (numeric) total memory usage for " +
		"the mempool\n" +
		"  \"maxmempool\": xxxxx,         (numeric) maximum memory usage " +
		"for the mempool\n" +
		"  \"mempoolminfee\": xxxxx       (numeric) minimum fee rate in " +
		"COSA/kB for tx to be accepted\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli getmempoolinfo\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getmempoolinfo", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getrawmempoolDesc = "getrawmempool ( verbose )\n" +
		"\nReturns all transaction ids in memory pool as a json array of " +
		"string transaction ids.\n" +
		"\nArguments:\n" +
		"1. verbose (boolean, optional, default=false) true for a json " +
		"object, false for array of transaction ids\n" +
		"\nResult: (for verbose = false):\n" +
		"[                     (json array of string)\n" +
		"  \"transactionid\"     (string) the transaction id\n" +
		"  ,...\n" +
		"]\n" +
		"\nExamples:\n" +
		"> cosanta-cli getrawmempool true\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getrawmempool", "params": [true] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	waitfornewblockDesc = "waitfornewblock (timeout)\n" +
		"\nWaits for a specific new block and returns useful info about " +
		"it.\n" +
		"\nReturns the current block on timeout or exit.\n" +
		"\nArguments:\n" +
		"1. timeout (int, optional, default=0) time in milliseconds to " +
		"wait for a response. 0 indicates no timeout.\n" +
		"\nResult:\n" +
		"{                           (json object)\n" +
		"  \"hash\" : {       (string) the blockhash\n" +
		"  \"height\" : {     (int) block height\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli waitfornewblock 1000\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "waitfornewblock", "params": [1000] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	waitforblockDesc = "waitforblock \"blockhash\" (timeout)\n" +
		"\nWaits for a specific new block and returns useful info about " +
		"it.\n" +
		"\nReturns the current block on timeout or exit.\n" +
		"\nArguments:\n" +
		"1. \"blockhash\" (required, string) block hash to wait for.\n" +
		"2. timeout       (int, optional, default=0) time in milliseconds " +
		"to wait for a response. 0 indicates no timeout.\n" +
		"\nResult:\n" +
		"{                           (json object)\n" +
		"  \"hash\" : {       (string) the blockhash\n" +
		"  \"height\" : {     (int) block height\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli waitforblock \"0000000000079f8ef3d2c688c244eb7a4570b24c9ed7b4a8c619eb02596f8862\", 1000\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "waitforblock", "params": ["0000000000079f8ef3d2c688c244eb7a4570b24c9ed7b4a8c619eb02596f8862", 1000] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	waitforblockheightDesc = "waitforblockheight height (timeout)\n" +
		"\nWaits for (at least) block height and returns the height and " +
		"hash of the current tip.\n" +
		"\nReturns the current block on timeout or exit.\n" +
		"\nArguments:\n" +
		"1. height  (required, int) block height to wait for\n" +
		"2. timeout (int, optional, default=0) time in milliseconds to " +
		"wait for a response. 0 indicates no timeout.\n" +
		"\nResult:\n" +
		"{                           (json object)\n" +
		"  \"hash\" : {       (string) the blockhash\n" +
		"  \"height\" : {     (int) block height\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli waitforblockheight \"100\", 1000\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "waitforblockheight", "params": [100, 1000] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`
)

//mining
const (
	getnetworkhashpsDesc = "getnetworkhashps ( nblocks height )\n" +
		"\nReturns the estimated network hashes per second based on the " +
		"last n blocks.\n" +
		"Pass in [blocks] to override # of blocks, -1 specifies since last " +
		"difficulty change.\n" +
		"Pass in [height] to estimate the network speed at the time when a " +
		"certain block was found.\n" +
		"\nArguments:\n" +
		"1. nblocks     (numeric, optional, default=120) the number of " +
		"blocks, or -1 for blocks since last difficulty change\n" +
		"2. height      (numeric, optional, default=-1) to estimate at the " +
		"time of the given height\n" +
		"\nResult:\n" +
		"x             (numeric) hashes per second estimated\n" +
		"\nExamples:\n" +
		"> cosanta-cli getnetworkhashps\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getnetworkhashps", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getmininginfoDesc = "getmininginfo\n" +
		"\nReturns a json object containing mining-related information." +
		"\nResult:\n" +
		"{\n" +
		"  \"blocks\": nnn,             (numeric) the current block\n" +
		"  \"currentblocksize\": nnn,   (numeric) the last block size\n" +
		"  \"currentblocktx\": nnn,     (numeric) the last block " +
		"transaction\n" +
		"  \"difficulty\": xxx.xxxxx    (numeric) the current difficulty\n" +
		"  \"errors\": \"...\"            (string) current errors\n" +
		"  \"generate\": true|false     (boolean) if the generation is on " +
		"or off\n" +
		"  \"genproclimit\": n          (numeric) the processor limit for " +
		"generation, -1 for unlimited\n" +
		"  \"hashespersec\": n          (numeric) recent hashes per second " +
		"of built-in miner\n" +
		"  \"networkhashps\": nnn,      (numeric) the network hashes per " +
		"second\n" +
		"  \"pooledtx\": n              (numeric) the size of the mempool\n" +
		"  \"chain\": \"xxxx\",           (string) current network name as " +
		"defined in BIP70 (main, test, regtest)\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli getmininginfo\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getmininginfo", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getblocktemplateDesc = "getblocktemplate ( TemplateRequest )\n" +
		"\nIf the request parameters include a 'mode' key, that is used to " +
		"explicitly select between the default 'template' request or a " +
		"'proposal'.\n" +
		"It returns data needed to construct a block to work on.\n" +
		"For full specification, see BIPs 22, 23, 9, and 145:\n" +
		"    https://github.com/bitcoin/bips/blob/master/bip-0022.mediawiki\n" +
		"    https://github.com/bitcoin/bips/blob/master/bip-0023.mediawiki\n" +
		"\nArguments:\n" +
		"1. template_request         (json object, optional) a json object " +
		"in the following spec\n" +
		"     {\n" +
		"       \"mode\":\"template\"    (string, optional) this must be " +
		"set to \"template\", \"proposal\" (see BIP 23), or omitted\n" +
		"       \"capabilities\":[     (array, optional) a list of " +
		"strings\n" +
		"           \"support\"          (string) client side supported " +
		"feature, 'longpoll', 'coinbasetxn', 'coinbasevalue', 'proposal', " +
		"'serverlist', 'workid'\n" +
		"           ,...\n" +
		"       ]\n" +
		"     }\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"version\" : n,                    (numeric) the preferred " +
		"block version\n" +
		"  \"rules\" : [ \"rulename\", ... ],    (array of strings) " +
		"specific block rules that are to be enforced\n" +
		"  \"vbavailable\" : { ... },          (json object) set of " +
		"pending, supported versionbit (BIP 9) softfork deployments\n" +
		"  \"vbrequired\" : n,                 (numeric) bit mask of " +
		"versionbits the server requires set in submissions\n" +
		"  \"previousblockhash\" : \"xxxx\",     (string) the hash of " +
		"current highest block\n" +
		"  \"transactions\" : [ ... ],         (array) contents of " +
		"non-coinbase transactions that should be included in the next " +
		"block\n" +
		"  \"coinbaseaux\" : { ... },          (json object) data that " +
		"should be included in the coinbase's scriptSig content\n" +
		"  \"coinbasevalue\" : n,              (numeric) maximum allowable " +
		"input to coinbase transaction, including the generation award and " +
		"transaction fees (in duffs)\n" +
		"  \"longpollid\" : \"str\",             (string) an id to include " +
		"with a request to longpoll on an update to this template\n" +
		"  \"target\" : \"xxxx\",               (string) the hash target\n" +
		"  \"mintime\" : xxx,                  (numeric) the minimum " +
		"timestamp appropriate for next block time\n" +
		"  \"mutable\" : [ \"value\", ... ],     (array of string) list of " +
		"ways the block template may be changed\n" +
		"  \"noncerange\" : \"00000000ffffffff\",(string) a range of valid " +
		"nonces\n" +
		"  \"sigoplimit\" : n,                 (numeric) limit of sigops " +
		"in blocks\n" +
		"  \"sizelimit\" : n,                  (numeric) limit of block " +
		"size\n" +
		"  \"curtime\" : ttt,                  (numeric) current timestamp " +
		"in seconds since epoch\n" +
		"  \"bits\" : \"xxxxxxxx\",              (string) compressed " +
		"target of next block\n" +
		"  \"previousbits\" : \"xxxxxxxx\",      (string) compressed " +
		"target of the current highest block\n" +
		"  \"height\" : n                      (numeric) the height of the " +
		"next block\n" +
		"  \"masternode\" : [ ... ],           (array) required masternode " +
		"payees that must be included in the next block\n" +
		"  \"masternode_payments_started\" : true|false, (boolean) true if " +
		"masternode payments started\n" +
		"  \"masternode_payments_enforced\" : true|false, (boolean) true " +
		"if masternode payments enforced\n" +
		"  \"superblock\" : [ ... ],           (array) required superblock " +
		"payees that must be included in the next block\n" +
		"  \"superblocks_started\" : true|false, (boolean) true if " +
		"superblock payments started\n" +
		"  \"superblocks_enabled\" : true|false, (boolean) true if " +
		"superblock payments enabled\n" +
		"  \"coinbase_payload\" : \"xxxx\"       (string) coinbase " +
		"transaction payload data encoded in hexadecimal\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli getblocktemplate\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getblocktemplate", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	submitblockDesc = "submitblock \"hexdata\" ( \"jsonparametersobject\" )\n" +
		"\nAttempts to submit new block to network.\n" +
		"The 'jsonparametersobject' parameter is currently ignored.\n" +
		"See https://en.bitcoin.it/wiki/BIP_0022 for full specification.\n" +
		"\nArguments\n" +
		"1. \"hexdata\"        (string, required) the hex-encoded block " +
		"data to submit\n" +
		"2. \"parameters\"     (string, optional) object of optional " +
		"parameters\n" +
		"    {\n" +
		"      \"workid\" : \"id\"    (string, optional) if the server " +
		"provided a workid, it MUST be included with submissions\n" +
		"    }\n" +
		"\nExamples:\n" +
		"> cosanta-cli submitblock \"mydata\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "submitblock", "params": ["mydata"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	generateDesc = "generate nblocks ( maxtries )\n" +
		"\nMine up to nblocks blocks immediately (before the RPC call " +
		"returns) to the configured mining address.\n" +
		"\nArguments:\n" +
		"1. nblocks      (numeric, required) how many blocks are generated " +
		"immediately\n" +
		"2. maxtries     (numeric, optional) how many iterations to try " +
		"(default = 1000000)\n" +
		"\nResult:\n" +
		"[ blockhashes ]     (array) hashes of blocks generated\n" +
		"\nExamples:\n" +
		"\nGenerate 11 blocks\n" +
		"> cosanta-cli generate 11\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "generate", "params": [11] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	generatetoaddressDesc = "generatetoaddress nblocks \"address\" ( maxtries )\n" +
		"\nMine blocks immediately to a specified address (before the RPC " +
		"call returns).\n" +
		"\nArguments:\n" +
		"1. nblocks      (numeric, required) how many blocks are generated " +
		"immediately\n" +
		"2. \"address\"    (string, required) the address to send the newly " +
		"generated COSA to\n" +
		"3. maxtries     (numeric, optional) how many iterations to try " +
		"(default = 1000000)\n" +
		"\nResult:\n" +
		"[ blockhashes ]     (array) hashes of blocks generated\n" +
		"\nExamples:\n" +
		"\nGenerate 11 blocks to myaddress\n" +
		"> cosanta-cli generatetoaddress 11 \"myaddress\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "generatetoaddress", "params": [11, "myaddress"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	getgenerateDesc = "getgenerate\n" +
		"\nReturn if the server is set to generate coins or not. The " +
		"default is false.\n" +
		"It is set with the command line argument -gen (or " +
		"cosanta.conf setting gen)\n" +
		"It can also be set with the setgenerate call.\n" +
		"\nResult:\n" +
		"true|false      (boolean) if the server is set to generate coins " +
		"or not\n" +
		"\nExamples:\n" +
		"> cosanta-cli getgenerate\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getgenerate", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	setgenerateDesc = "setgenerate generate ( genproclimit )\n" +
		"\nSet 'generate' true or false to turn generation on or off.\n" +
		"Generation is limited to 'genproclimit' processors, -1 is " +
		"unlimited.\n" +
		"See the getgenerate call for the current setting.\n" +
		"\nArguments:\n" +
		"1. generate         (boolean, required) set to true to turn on " +
		"generation, false to turn off.\n" +
		"2. genproclimit     (numeric, optional) set the processor limit " +
		"for when generation is on. Can be -1 for unlimited.\n" +
		"\nExamples:\n" +
		"\nSet the generation on with a limit of one processor\n" +
		"> cosanta-cli setgenerate true 1\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "setgenerate", "params": [true, 1] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	prioritisetransactionDesc = "prioritisetransaction <txid> <fee delta>\n" +
		"Accepts the transaction into mined blocks at a higher (or lower) " +
		"priority\n" +
		"\nArguments:\n" +
		"1. \"txid\"       (string, required) the transaction id.\n" +
		"2. fee_delta      (numeric, required) the fee value (in duffs) to " +
		"add (or subtract, if negative).\n" +
		"                  The fee is not actually paid, only the " +
		"algorithm for selecting transactions into a block considers the " +
		"transaction as it would have paid a higher (or lower) fee.\n" +
		"\nResult:\n" +
		"true              (boolean) returns true\n" +
		"\nExamples:\n" +
		"> cosanta-cli prioritisetransaction \"txid\" 10000\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "prioritisetransaction", "params": ["txid", 10000] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	reservebalanceDesc = "reservebalance ( reserve amount )\n" +
		"\nShow or set the reserve amount not participating in network " +
		"protection.\n" +
		"If no parameters provided current setting is printed.\n" +
		"\nArguments:\n" +
		"1. reserve     (boolean, optional) is true or false to turn " +
		"balance reserve on or off.\n" +
		"2. amount      (numeric, optional) is a real and rounded to cent.\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"reserve\": true|false, (boolean) status of the reserve\n" +
		"  \"amount\": x.xxxx      (numeric) amount reserved\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli reservebalance true 5000\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "reservebalance", "params": [true, 5000] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	estimatefeeDesc = "estimatefee nblocks\n" +
		"\nEstimates the approximate fee per kilobyte needed for a " +
		"transaction to begin confirmation within nblocks blocks.\n" +
		"\nArguments:\n" +
		"1. nblocks     (numeric, required)\n" +
		"\nResult:\n" +
		"n              (numeric) estimated fee-per-kilobyte\n" +
		"\nA negative value is returned if not enough transactions and " +
		"blocks have been observed to make an estimate.\n" +
		"\nExample:\n" +
		"> cosanta-cli estimatefee 6\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "estimatefee", "params": [6] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	estimatesmartfeeDesc = "estimatesmartfee conf_target\n" +
		"\nEstimates the approximate fee per kilobyte needed for a " +
		"transaction to begin confirmation within conf_target blocks if " +
		"possible and returns the number of blocks for which the estimate " +
		"is valid.\n" +
		"\nArguments:\n" +
		"1. conf_target  (numeric, required) confirmation target in " +
		"blocks\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"feerate\" : x.x,     (numeric, optional) estimate fee rate in " +
		"COSA/kB\n" +
		"  \"errors\": [ str... ] (json array of strings, optional) errors " +
		"encountered during processing\n" +
		"  \"blocks\" : n         (numeric) block number where estimate " +
		"was found\n" +
		"}\n" +
		"\nExample:\n" +
		"> cosanta-cli estimatesmartfee 6\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "estimatesmartfee", "params": [6] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	estimaterawfeeDesc = "estimaterawfee conf_target ( threshold )\n" +
		"\nWARNING: This interface is unstable and may disappear or " +
		"change!\n" +
		"\nEstimates the approximate fee per kilobyte needed for a " +
		"transaction to begin confirmation within conf_target blocks if " +
		"possible.\n" +
		"\nArguments:\n" +
		"1. conf_target (numeric, required) confirmation target in blocks\n" +
		"2. threshold   (numeric, optional, default=0.95) the proportion " +
		"of transactions in a given feerate range that must have been " +
		"confirmed within conf_target in order to consider those feerates " +
		"as high enough and proceed to check lower feerates.\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"feerate\" : x.x,        (numeric, optional) estimate fee rate " +
		"in COSA/kB\n" +
		"  \"decay\" : x.x,          (numeric) exponential decay used in " +
		"fee rate estimation\n" +
		"  \"threshold\" : x.x,      (numeric) sufficiency threshold\n" +
		"  \"blocks\" : n            (numeric) block number where estimate " +
		"was found\n" +
		"}\n" +
		"\nExample:\n" +
		"> cosanta-cli estimaterawfee 6 0.9\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "estimaterawfee", "params": [6, 0.9] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`
)

//misc
const (
	getinfoDesc = "getinfo\n" +
		"Returns an object containing various state info.\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"version\": xxxxx,           (numeric) the server version\n" +
		"  \"protocolversion\": xxxxx,   (numeric) the protocol version\n" +
		"  \"blocks\": xxxxxx,           (numeric) the current number of " +
		"blocks processed in the server\n" +
		"  \"timeoffset\": xxxxx,        (numeric) the time offset\n" +
		"  \"connections\": xxxxx,       (numeric) the number of " +
		"connections\n" +
		"  \"difficulty\": xxxxxx,       (numeric) the current difficulty\n" +
		"  \"testnet\": true|false,      (boolean) if the server is using " +
		"testnet or not\n" +
		"  \"relayfee\": x.xxxx,         (numeric) minimum relay fee for " +
		"non-free transactions in COSA/kB\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli getinfo\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "getinfo", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	validateaddressDesc = "validateaddress \"address\"\n" +
		"\nReturn information about the given address.\n" +
		"\nArguments:\n" +
		"1. \"address\"     (string, required) the address to validate\n" +
		"\nResult:\n" +
		"{\n" +
		"  \"isvalid\" : true|false,       (boolean) if the address is " +
		"valid or not. If not, this is the only property returned.\n" +
		"  \"address\" : \"address\",        (string) the address " +
		"validated\n" +
		"  \"scriptPubKey\" : \"hex\",       (string) the hex encoded " +
		"scriptPubKey generated by the address\n" +
		"}\n" +
		"\nExamples:\n" +
		"> cosanta-cli validateaddress \"XwnLY9Tf7Zsef8gMGL2fhWA9ZmMjt4KPwg\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "validateaddress", "params": ["XwnLY9Tf7Zsef8gMGL2fhWA9ZmMjt4KPwg"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	verifymessageDesc = "verifymessage \"address\" \"signature\" \"message\"\n" +
		"\nVerify a signed message\n" +
		"\nArguments:\n" +
		"1. \"address\"         (string, required) the address to use for " +
		"the signature.\n" +
		"2. \"signature\"       (string, required) the signature provided " +
		"by the signer in base 64 encoding.\n" +
		"3. \"message\"         (string, required) the message that was " +
		"signed.\n" +
		"\nResult:\n" +
		"true|false   (boolean) if the signature is verified or not.\n" +
		"\nExamples:\n" +
		"> cosanta-cli verifymessage \"myaddress\" \"signature\" \"my message\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "verifymessage", "params": ["myaddress", "signature", "my message"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	signmessagewithprivkeyDesc = "signmessagewithprivkey \"privkey\" \"message\"\n" +
		"\nSign a message with the private key of an address.\n" +
		"\nArguments:\n" +
		"1. \"privkey\"         (string, required) the private key to sign " +
		"the message with.\n" +
		"2. \"message\"         (string, required) the message to create a " +
		"signature of.\n" +
		"\nResult:\n" +
		"\"signature\"          (string) the signature of the message " +
		"encoded in base 64.\n" +
		"\nExamples:\n" +
		"> cosanta-cli signmessagewithprivkey \"privkey\" \"my message\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "signmessagewithprivkey", "params": ["privkey", "my message"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	setmocktimeDesc = "setmocktime timestamp\n" +
		"\nSet the local time to given timestamp (-regtest only).\n" +
		"\nArguments:\n" +
		"1. timestamp  (integer, required) unix seconds-since-epoch " +
		"timestamp, pass 0 to go back to using the system time.\n" +
		"\nResult:\n" +
		"null         (json null)\n" +
		"\nExamples:\n" +
		"> cosanta-cli setmocktime 1503980600\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "setmocktime", "params": [1503980600] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	echoDesc = "echo \"message\" ...\n" +
		"\nSimply echo back the input arguments. This command is for " +
		"testing.\n" +
		"\nExamples:\n" +
		"> cosanta-cli echo \"my message\"\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "echo", "params": ["my message"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	helpDesc = "help ( \"command\" )\n" +
		"\nList all commands, or get help for a specified command.\n" +
		"\nArguments:\n" +
		"1. \"command\"     (string, optional) the command to get help on\n" +
		"\nResult:\n" +
		"\"text\"     (string) the help text\n" +
		"\nExamples:\n" +
		"> cosanta-cli help getblockcount\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "help", "params": ["getblockcount"] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	stopDesc = "stop\n" +
		"\nStop Cosanta server.\n" +
		"\nExamples:\n" +
		"> cosanta-cli stop\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "stop", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	uptimeDesc = "uptime\n" +
		"\nReturns the total uptime of the server.\n" +
		"\nResult:\n" +
		"ttt        (numeric) the number of seconds that the server has " +
		"been running\n" +
		"\nExamples:\n" +
		"> cosanta-cli uptime\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "uptime", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`

	versionDesc = "version\n" +
		"\nReturns the JSON-RPC API version.\n" +
		"\nExamples:\n" +
		"> cosanta-cli version\n" +
		`> curl --user myusername --data-binary '{"jsonrpc": "1.0", "id":"curltest", "method": "version", "params": [] }' -H 'content-type: text/plain;' http://127.0.0.1:9606/`
)
