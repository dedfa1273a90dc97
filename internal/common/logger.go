package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const (
	LogFileName   = "augur.log"
	logTimeFormat = "15:04:05"
	logMaxSize    = 100 * 1024 * 1024
	logMaxBackups = 3
)

// LogDir resolves where augur.log is written: logging.dir when set, otherwise
// a logs directory beside the category data.
func LogDir(config *Config) string {
	if config.Logging.Dir != "" {
		return config.Logging.Dir
	}
	return filepath.Join(config.Data.Dir, "logs")
}

// InitLogger builds the arbor logger for the configured outputs and level.
// An unwritable log directory degrades to console-only output.
func InitLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()
	toFile, toConsole := logOutputs(config.Logging.Output)

	if toFile {
		dir := LogDir(config)
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log directory %s unavailable: %v\n", dir, err)
			toConsole = true
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   filepath.Join(dir, LogFileName),
				TimeFormat: logTimeFormat,
				MaxSize:    logMaxSize,
				MaxBackups: logMaxBackups,
				TextOutput: true,
			})
		}
	}

	if toConsole {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			TimeFormat: logTimeFormat,
			TextOutput: true,
		})
	}

	return logger.WithLevelFromString(config.Logging.Level)
}

func logOutputs(outputs []string) (toFile, toConsole bool) {
	for _, output := range outputs {
		switch output {
		case "file":
			toFile = true
		case "stdout", "console":
			toConsole = true
		}
	}
	return toFile, toConsole
}
