package logger

import "go.uber.org/zap"

var Log *zap.Logger

func Init() {
	Log = zap.Must(zap.NewProduction())
}

// InitNop swaps in a no-op logger, for tests that exercise code paths
// which log through the package global.
func InitNop() {
	Log = zap.NewNop()
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
