package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets the logrus level and format. Unknown levels fall
// back to info.
func ConfigureLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warnf("Invalid log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
