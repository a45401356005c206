package conf

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	tagName = "default"

	defaultConfigFilename = "cosanta.yml"
	defaultDataDirname    = "cosanta"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "debug.log"

	// DefaultBlockMinTxFee is the rate floor (in satoshis/kB) a
	// transaction must pay to be considered for block inclusion.
	DefaultBlockMinTxFee = 1000

	// DefaultMaxRPCClients is the limit of concurrent RPC clients.
	DefaultMaxRPCClients = 10
)

var (
	Cfg *Configuration

	// DataDir is the resolved data directory of the active network. Every
	// on-disk artifact (logs, fee estimates) lives below it.
	DataDir string
)

type Configuration struct {
	GoVersion string
	Version   string
	BuildDate string
	DataDir   string

	RPC struct {
		RPCListeners  []string
		RPCUser       string
		RPCPass       string
		RPCLimitUser  string
		RPCLimitPass  string
		RPCCert       string
		RPCKey        string
		RPCMaxClients int  `default:"10"`
		RPCQuirks     bool `default:"true"`
		Disable       bool
		DisableTLS    bool
	}

	Log struct {
		Level    string `default:"debug"`
		FileName string `default:"debug.log"`
		Module   []string
	}

	Mempool struct {
		LimitAncestorCount   int   `default:"25"`
		LimitAncestorSize    int   `default:"101"`
		LimitDescendantCount int   `default:"25"`
		LimitDescendantSize  int   `default:"101"`
		MaxPoolSize          int64 `default:"300000000"`
	}

	Mining struct {
		BlockMinTxFee int64  `default:"1000"`
		BlockMaxSize  uint64 `default:"2000000"`
		BlockVersion  int32  `default:"-1"`
		Strategy      string `default:"ancestorfeerate"`
		Generate      bool
		GenProcLimit  int32 `default:"-1"`
		MiningAddr    string
	}

	Staking struct {
		Enable         bool  `default:"true"`
		ReserveBalance int64 `default:"0"`
	}

	P2PNet struct {
		TestNet bool
		RegTest bool
	}

	Wallet struct {
		Enable bool
	}
}

// InitConfig builds the running configuration: struct tag defaults, then
// the yaml file below the data directory if one exists, then command line
// flags on top.
func InitConfig(args []string) *Configuration {
	opts, err := InitArgs(args)
	if err != nil {
		fmt.Println("parse args error:", err)
		return nil
	}

	defaultDataDir := AppDataDir(defaultDataDirname, false)
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	dataDir = netSubDir(dataDir, opts.RegTest, opts.TestNet)
	if !FileExists(dataDir) {
		if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
			panic("datadir create failed: " + err.Error())
		}
	}
	DataDir = dataDir

	config := &Configuration{}
	viper.SetEnvPrefix("cosanta")
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")

	// defaults come from the `default:` struct tags
	t := reflect.TypeOf(Configuration{})
	v := reflect.ValueOf(Configuration{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if v.Field(i).Type().Kind() != reflect.Struct {
			viper.SetDefault(field.Name, field.Tag.Get(tagName))
			continue
		}
		structField := v.Field(i).Type()
		for j := 0; j < structField.NumField(); j++ {
			key := field.Name + "." + structField.Field(j).Name
			value := structField.Field(j).Tag.Get(tagName)
			viper.SetDefault(key, value)
		}
	}

	confFile := filepath.Join(dataDir, defaultConfigFilename)
	if FileExists(confFile) {
		raw, err := ioutil.ReadFile(confFile)
		if err != nil {
			panic("read config file failed: " + err.Error())
		}
		if err := viper.ReadConfig(bytes.NewBuffer(raw)); err != nil {
			panic("parse config file failed: " + err.Error())
		}
	}
	if err := viper.Unmarshal(config); err != nil {
		panic("unmarshal config failed: " + err.Error())
	}

	config.DataDir = dataDir
	config.P2PNet.RegTest = opts.RegTest
	config.P2PNet.TestNet = opts.TestNet

	// flags override both defaults and file values
	if opts.Generate {
		config.Mining.Generate = true
	}
	if opts.GenProcLimit != -1 {
		config.Mining.GenProcLimit = opts.GenProcLimit
	}
	if opts.BlockVersion != -1 {
		config.Mining.BlockVersion = opts.BlockVersion
	}
	if opts.BlockMaxSize != 0 {
		config.Mining.BlockMaxSize = opts.BlockMaxSize
	}
	if opts.BlockMinTxFee != 0 {
		config.Mining.BlockMinTxFee = opts.BlockMinTxFee
	}
	if opts.MiningAddr != "" {
		config.Mining.MiningAddr = opts.MiningAddr
	}
	if opts.Staking {
		config.Staking.Enable = true
	}
	if opts.NoStaking {
		config.Staking.Enable = false
	}
	if opts.ReserveBalance != "" {
		reserve, err := strconv.ParseFloat(opts.ReserveBalance, 64)
		if err != nil || reserve < 0 {
			fmt.Println("invalid reservebalance:", opts.ReserveBalance)
			return nil
		}
		config.Staking.ReserveBalance = int64(reserve * 100000000)
	}

	return config
}

func netSubDir(dataDir string, regTest bool, testNet bool) string {
	if regTest {
		return filepath.Join(dataDir, "regtest")
	}
	if testNet {
		return filepath.Join(dataDir, "testnet3")
	}
	return dataDir
}

// SetUnitTestDataDir redirects the data directory to a throwaway temp
// dir so unit tests never touch real state.
func SetUnitTestDataDir(config *Configuration) {
	testDataDir, err := ioutil.TempDir("", "unitestdatadir")
	if err != nil {
		panic("create unit test datadir failed: " + err.Error())
	}

	DataDir = testDataDir
	config.DataDir = testDataDir
}

func GetDataPath() string {
	return DataDir
}

func GetLogDir() string {
	return filepath.Join(DataDir, defaultLogDirname)
}

func FileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// AppDataDir returns an operating system specific data directory for the
// given application name. On unix-alikes this is ~/.<appName>.
func AppDataDir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}

	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicodeToUpper(appName[0])) + appName[1:]
	appNameLower := string(unicodeToLower(appName[0])) + appName[1:]

	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		if usr, err := os.UserHomeDir(); err == nil {
			homeDir = usr
		}
	}

	switch {
	case os.Getenv("APPDATA") != "" && roaming:
		return filepath.Join(os.Getenv("APPDATA"), appNameUpper)
	case homeDir != "":
		return filepath.Join(homeDir, "."+appNameLower)
	}

	return "."
}

func unicodeToUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func unicodeToLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
