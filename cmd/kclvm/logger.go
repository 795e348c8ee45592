package main

import (
	"os"

	charmlog "charm.land/log/v2"
)

// newLogger builds the CLI's structured step logger. Trace output (one
// line per executed instruction, the "Trace mode" of SPEC_FULL.md) is
// emitted at debug level so `--trace` is the only thing that needs to
// flip the level; the CLI logs nothing else through it.
func newLogger(trace bool) *charmlog.Logger {
	l := charmlog.New(os.Stderr)
	if trace {
		l.SetLevel(charmlog.DebugLevel)
	} else {
		l.SetLevel(charmlog.InfoLevel)
	}
	return l
}
