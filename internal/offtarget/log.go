package offtarget

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verboseLogging bool

	logLevel = zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		if verboseLogging {
			return level >= zapcore.DebugLevel
		}
		return level >= zapcore.InfoLevel
	})

	l = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			logLevel,
		),
	)

	// rlog is the default sugared logger
	rlog = l.Sugar()
)

// SetVerboseLogging turns on debug output, including every external command line.
func SetVerboseLogging() {
	verboseLogging = true
}

// Logger exposes the package logger to the CLI layer.
func Logger() *zap.SugaredLogger {
	return rlog
}
