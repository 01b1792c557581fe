package logger

import (
	"fmt"
	stdlog "log"
	"os"
	"path"
	"path/filepath"

	"github.com/op/go-logging"
)

/*
InitLogger creates and returns a logger suitable for logging
human-readable messages. Also returns the path to the log file.
If toStderr is true, messages are echoed to stderr as well, which
is what we want for dev and test configs.
*/
func InitLogger(logDir string, logLevel logging.Level, toStderr bool) (*logging.Logger, string) {
	processName := path.Base(os.Args[0])
	filename := fmt.Sprintf("%s.log", processName)
	filename = filepath.Join(logDir, filename)
	writer, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v\n", filename, err)
		os.Exit(1)
	}
	log := logging.MustGetLogger(processName)
	format := logging.MustStringFormatter("[%{level}] %{message}")
	logging.SetFormatter(format)
	logging.SetLevel(logLevel, processName)
	fileBackend := logging.NewLogBackend(writer, "", stdlog.LstdFlags|stdlog.LUTC)
	if toStderr {
		stderrBackend := logging.NewLogBackend(os.Stderr, "", stdlog.LstdFlags)
		logging.SetBackend(fileBackend, stderrBackend)
	} else {
		logging.SetBackend(fileBackend)
	}
	return log, filename
}
