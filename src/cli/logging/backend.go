package logging

import (
	"os"

	"golang.org/x/term"
	"gopkg.in/op/go-logging.v1"
)

// IsATerminal is true if the process' stderr is an interactive TTY; it
// decides whether InitLogging colourises its output.
var IsATerminal = term.IsTerminal(int(os.Stderr.Fd()))

// InitLogging configures the singleton logger to write to stderr at the
// given level, colourised when stderr is a terminal.
func InitLogging(level Level) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, formatter(IsATerminal))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}

// InitFileLogging adds a second backend writing every message at
// level or above to the given file, independent of the terminal
// backend's terminalLevel. Used by the CLI's --log_file flag.
func InitFileLogging(path string, level Level, terminalLevel Level) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	fileBackend := logging.NewLogBackend(file, "", 0)
	fileFormatted := logging.NewBackendFormatter(fileBackend, formatter(false))
	fileLeveled := logging.AddModuleLevel(fileFormatted)
	fileLeveled.SetLevel(level, "")

	termBackend := logging.NewLogBackend(os.Stderr, "", 0)
	termFormatted := logging.NewBackendFormatter(termBackend, formatter(IsATerminal))
	termLeveled := logging.AddModuleLevel(termFormatted)
	termLeveled.SetLevel(terminalLevel, "")

	logging.SetBackend(termLeveled, fileLeveled)
	return nil
}

func formatter(coloured bool) logging.Formatter {
	format := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		format = "%{color}" + format + "%{color:reset}"
	}
	return logging.MustStringFormatter(format)
}
