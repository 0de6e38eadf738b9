package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before BoostrapLogger runs so library packages can log from tests.
var Log = logrus.New()

// BoostrapLogger sets up the server logger: stdout, caller reporting, debug until config says otherwise.
func BoostrapLogger() {
	Log = newLogger(os.Stdout, logrus.DebugLevel)
	Log.SetReportCaller(true)
}

// BootstrapCLILogger keeps stdout for command output and logs to w without timestamps.
// It reconfigures Log in place instead of replacing it.
func BootstrapCLILogger(w io.Writer, level string) {
	Log.SetOutput(w)
	Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	Log.SetLevel(logrus.WarnLevel)
	SetLevel(level)
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	return &logrus.Logger{
		Out:   out,
		Hooks: make(logrus.LevelHooks),
		Formatter: &logrus.TextFormatter{
			DisableColors:    false,
			DisableQuote:     false,
			DisableTimestamp: false,
			FullTimestamp:    false,
			TimestampFormat:  "",
		},
		Level:    level,
		ExitFunc: os.Exit,
	}
}

// SetLevel applies a level name such as "info" or "warn". Unknown names keep the current level.
func SetLevel(level string) {
	if level == "" {
		return
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("unknown log level %q, keeping %s", level, Log.GetLevel())
		return
	}
	Log.SetLevel(parsed)
}
