package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the process-wide logrus logger. Packages log through the
// logrus standard logger so no instance has to be threaded through constructors.
func Init(serviceName, level string) *log.Entry {
	log.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime:  "timestamp",
			log.FieldKeyLevel: "level",
			log.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(ParseLevel(level))

	return log.WithField("service", serviceName)
}

func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// WithRequestID adds the chi request id to a log entry.
func WithRequestID(requestID string) *log.Entry {
	return log.WithField("request_id", requestID)
}
