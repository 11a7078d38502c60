// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package log builds the logr.Logger used by the table and the example program.
package log

import (
	"io"
	stdlog "log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// GetLogger returns a stdr.Logger that implements the logr.Logger interface
// and sets the verbosity of the returned logger.
// set v to 0 for info level messages,
// 1 for rehashes and 2 for every aborted displacement chain.
// any other verbosity level will default to 0.
func GetLogger(v int) logr.Logger {
	return newLogger(os.Stderr, v)
}

func newLogger(w io.Writer, v int) logr.Logger {
	// the table names its own logger, see dcuckoo.SetLogger
	logger := stdr.New(stdlog.New(w, "", stdlog.LstdFlags))
	// bound check
	if v > 2 || v < 0 {
		v = 0
		logger.Info("Invalid verbosity, setting logger to display info level messages only.")
	}
	stdr.SetVerbosity(v)

	return logger
}
