package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Log is the process-wide logger. It is a no-op until Initialize is called,
// so packages may log during early startup without a nil check.
var Log = zap.NewNop()

func Initialize() error {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("error building logger: %w", err)
	}

	Log = l

	return nil
}

func Error(err error) zap.Field {
	return zap.Error(err)
}

func String(key, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Int64(key string, value int64) zap.Field {
	return zap.Int64(key, value)
}
