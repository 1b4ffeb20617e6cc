package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

func SetLogLevel(level string) {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad error level string")
	}
}

// SanitizeFilename strips characters that make generated output filenames
// awkward (corporate suffixes, brackets, spaces) and trims to max runes.
func SanitizeFilename(s string, max int) string {
	replacer := strings.NewReplacer(
		"株式会社", "",
		" ", "",
		"　", "",
		"（", "",
		"）", "",
		"・", "",
		"/", "_",
		"\\", "_",
	)
	s = replacer.Replace(s)
	runes := []rune(s)
	if max > 0 && len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}
