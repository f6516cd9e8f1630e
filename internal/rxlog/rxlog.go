// Package rxlog wires the process-wide zerolog logger the way
// cmd/hydra/main.go does: a level parsed from configuration, a
// console-friendly writer, and per-connection correlation ids attached with
// zerolog's With() rather than passed as plain strings.
package rxlog

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global logger level and output writer. verbose forces debug
// level regardless of levelName, mirroring the --verbose CLI flag (spec.md
// §6 CLI surface, carried as ambient-stack per SPEC_FULL.md §10.1).
func Init(levelName string, verbose bool) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// NewConnectionID mints a correlation id for one accepted connection
// (SPEC_FULL.md §11: uuid.New() session trace IDs, grounded in the
// teacher's per-request correlation ids across api/pkg/server handlers).
func NewConnectionID() string {
	return uuid.New().String()
}

// For returns a logger with the connection's trace id attached to every
// subsequent line.
func For(connID string) zerolog.Logger {
	return log.With().Str("conn_id", connID).Logger()
}
