// Package logging configures the global zerolog logger. Diagnostics go to
// stderr so the report on stdout stays machine-comparable across runs.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global log level from the QSIPREFLIGHT_LOG_LEVEL environment
// variable (debug, info, warn, error; default: warn). verbose forces debug.
func Init(verbose bool) {
	switch os.Getenv("QSIPREFLIGHT_LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
