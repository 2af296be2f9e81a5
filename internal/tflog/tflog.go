// Package tflog is the DSL's structured logger, set up the same way the
// teacher repository wires rs/zerolog: a caller-annotated logger over a
// console writer.
package tflog

import (
	"os"

	"github.com/rs/zerolog"
	logger "github.com/rs/zerolog/log"
)

// Log is the package-wide logger used for diagnostics that are not errors:
// the variable-node weight-map fallback (§4.5) and live-check mode
// notices (§4.7) are the only two places the DSL logs instead of
// returning/panicking.
var Log = logger.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
