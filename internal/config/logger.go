package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// InitLogger configures the shared logrus instance. Safe to call more than
// once; the last call wins.
func InitLogger() {
	Log = logrus.New()

	// JSON output so log aggregation can index fields directly.
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetOutput(os.Stdout)

	level := logrus.InfoLevel
	if parsed, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		level = parsed
	}
	Log.SetLevel(level)
}

func init() {
	// Packages log through config.Log before main runs in tests.
	InitLogger()
}
