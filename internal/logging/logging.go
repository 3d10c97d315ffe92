// Package logging builds the process logger.
package logging

import (
	"os"
	"regexp"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr. Production output is JSON; other
// environments get the text formatter. An unknown level falls back to info.
func New(level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if production {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		defer log.WithField("level", level).Warn("unknown log level, using info")
	}
	log.SetLevel(lvl)
	log.AddHook(MaskingHook{})

	return log
}

var emailPattern = regexp.MustCompile(`(?i)\b([A-Z0-9._%+-]{2})[A-Z0-9._%+-]*@`)

// MaskEmail hides all but the first two characters of the local part of
// every email address in s: "ada.obi@example.com" becomes "ad***@example.com".
func MaskEmail(s string) string {
	return emailPattern.ReplaceAllString(s, "${1}***@")
}

// MaskingHook masks email addresses in log messages and string fields.
type MaskingHook struct{}

// Levels implements logrus.Hook.
func (MaskingHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (MaskingHook) Fire(entry *logrus.Entry) error {
	entry.Message = MaskEmail(entry.Message)
	for key, value := range entry.Data {
		switch v := value.(type) {
		case string:
			entry.Data[key] = MaskEmail(v)
		case error:
			entry.Data[key] = MaskEmail(v.Error())
		}
	}
	return nil
}
