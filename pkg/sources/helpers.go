package sources

import (
	"os"
	"time"

	"github.com/unytco/pricing-oracle/pkg/logging"
)

// GetLoggerFromConfig extracts logger from config map or returns a default noop logger.
// Sources should use this to get the logger passed down from the app.
// If no logger is configured, returns a noop logger to prevent nil pointer dereferences.
func GetLoggerFromConfig(config map[string]interface{}) *logging.Logger {
	if loggerInterface, ok := config["logger"]; ok {
		if logger, ok := loggerInterface.(*logging.Logger); ok {
			return logger
		}
	}

	// return default noop logger if logger not found
	return logging.NewNoopLogger()
}

// APIKeyFromConfig resolves a provider API key: an explicit api_key entry in
// the source config wins, otherwise the named environment variable is read.
// Returns empty string when neither is set.
func APIKeyFromConfig(config map[string]interface{}, envVar string) string {
	if raw, ok := config["api_key"]; ok {
		if key, ok := raw.(string); ok && key != "" {
			return key
		}
	}
	return os.Getenv(envVar)
}

// TimeoutFromConfig reads a timeout in milliseconds from the source config,
// falling back to DefaultTimeout.
func TimeoutFromConfig(config map[string]interface{}) time.Duration {
	if raw, ok := config["timeout"]; ok {
		if ms, ok := raw.(int); ok && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return DefaultTimeout
}

// Float64Ptr returns a pointer to v. Adapters use it for optional market
// fields on Quote.
func Float64Ptr(v float64) *float64 {
	return &v
}
