package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/astaxie/beego/logs"
	"github.com/cosanta/cosanta-core/conf"
)

type logConfig struct {
	FileName string `json:"filename"`
	Level    int    `json:"level"`
	Daily    bool   `json:"daily"`
	Rotate   bool   `json:"rotate,omitempty"`
	MaxDays  int64  `json:"maxdays,omitempty"`
}

var mlog *logs.BeeLogger

func init() {
	mlog = logs.NewLogger()
	mlog.SetLogger(logs.AdapterConsole)
}

// Init routes logging to a rotating file below the data directory plus
// the console, using the level configured in conf.Cfg.
func Init() {
	logDir := conf.GetLogDir()
	if !conf.FileExists(logDir) {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			panic("create log dir failed: " + err.Error())
		}
	}

	fileName := conf.Cfg.Log.FileName
	if fileName == "" {
		fileName = "debug.log"
	}
	config, err := json.Marshal(logConfig{
		FileName: filepath.Join(logDir, fileName),
		Level:    GetLevel(conf.Cfg.Log.Level),
		Daily:    true,
		Rotate:   true,
	})
	if err != nil {
		panic("marshal log config failed: " + err.Error())
	}

	mlog = logs.NewLogger()
	mlog.SetLogger(logs.AdapterFile, string(config))
	mlog.SetLogger(logs.AdapterConsole)
	mlog.EnableFuncCallDepth(true)
	mlog.SetLogFuncCallDepth(4)
	mlog.Async()
}

func GetLogger() *logs.BeeLogger {
	return mlog
}

func formatLog(f interface{}, v ...interface{}) string {
	var msg string
	switch f := f.(type) {
	case string:
		msg = f
		if len(v) == 0 {
			return msg
		}
		if !strings.Contains(msg, "%") || strings.Contains(msg, "%%") {
			// do not contain format char
			msg += strings.Repeat(" %v", len(v))
		}
	default:
		msg = fmt.Sprint(f)
		if len(v) == 0 {
			return msg
		}
		msg += strings.Repeat(" %v", len(v))
	}
	return fmt.Sprintf(msg, v...)
}

func Emergency(f interface{}, v ...interface{}) {
	mlog.Emergency(formatLog(f, v...))
}

func Alert(f interface{}, v ...interface{}) {
	mlog.Alert(formatLog(f, v...))
}

func Critical(f interface{}, v ...interface{}) {
	mlog.Critical(formatLog(f, v...))
}

func Error(f interface{}, v ...interface{}) {
	mlog.Error(formatLog(f, v...))
}

func Warn(f interface{}, v ...interface{}) {
	mlog.Warn(formatLog(f, v...))
}

func Notice(f interface{}, v ...interface{}) {
	mlog.Notice(formatLog(f, v...))
}

func Info(f interface{}, v ...interface{}) {
	mlog.Info(formatLog(f, v...))
}

func Debug(f interface{}, v ...interface{}) {
	mlog.Debug(formatLog(f, v...))
}

func Trace(f interface{}, v ...interface{}) {
	mlog.Trace(formatLog(f, v...))
}

// Print logs through the module filter: only modules listed in the Log
// config emit. Hot paths use it so routine noise can be switched per
// subsystem.
func Print(module string, level string, f interface{}, v ...interface{}) {
	if !isIncludeModule(module) {
		return
	}
	switch strings.ToLower(level) {
	case "emergency":
		Emergency(f, v...)
	case "alert":
		Alert(f, v...)
	case "critical":
		Critical(f, v...)
	case "error":
		Error(f, v...)
	case "warn":
		Warn(f, v...)
	case "notice":
		Notice(f, v...)
	case "info":
		Info(f, v...)
	case "debug":
		Debug(f, v...)
	case "trace":
		Trace(f, v...)
	}
}

func isIncludeModule(module string) bool {
	for _, item := range conf.Cfg.Log.Module {
		if item == module {
			return true
		}
	}
	return false
}

type Closure func() string

func (c Closure) String() string {
	return c()
}

// InitLogClosure defers expensive formatting until a log line is
// actually emitted.
func InitLogClosure(c func() string) Closure {
	return Closure(c)
}
