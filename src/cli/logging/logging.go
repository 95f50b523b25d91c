// Package logging contains the singleton logger shared by the packages in
// this module that log (currently the emitter), plus its backend setup.
package logging

import (
	"gopkg.in/op/go-logging.v1"
)

// Log is the singleton logger instance. We never configure per-package
// levels and don't log the module name, so there is no need for more than
// one logger, and it avoids a class of race conditions around backend
// reconfiguration.
var Log = logging.MustGetLogger("xcbuild")

// Level re-exports the underlying library type.
type Level = logging.Level

// Re-exports of the log levels callers choose between on the command line.
const (
	CRITICAL = logging.CRITICAL
	ERROR    = logging.ERROR
	WARNING  = logging.WARNING
	NOTICE   = logging.NOTICE
	INFO     = logging.INFO
	DEBUG    = logging.DEBUG
)
