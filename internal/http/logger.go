package http

import (
	"fmt"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// leveledLogger adapts dsm.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger dsm.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

// retryablehttp logs every attempt at debug level, these stay at debug.
func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		value := keysAndValues[i+1]

		// retryablehttp passes the *http.Request and the URL, which carry
		// the session id.
		if key == "request" || key == "url" {
			value = "[omitted]"
		}

		result[key] = value
	}

	if len(keysAndValues)%2 == 1 {
		result["extra"] = keysAndValues[len(keysAndValues)-1]
	}

	return result
}
