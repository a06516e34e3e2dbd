package logging

import (
	"os"
	"strings"

	"github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bnb-chain/block-feed/config"
)

var (
	// Logger instance for quick declarative logging levels
	Logger = logging.MustGetLogger("block-feed")

	// log levels that are available
	levels = map[string]logging.Level{
		"CRITICAL": logging.CRITICAL,
		"ERROR":    logging.ERROR,
		"WARNING":  logging.WARNING,
		"NOTICE":   logging.NOTICE,
		"INFO":     logging.INFO,
		"DEBUG":    logging.DEBUG,
	}

	consoleFormat = logging.MustStringFormatter(`%{time:2006-01-02 15:04:05.000} %{color}%{level:.4s}%{color:reset} %{shortfile} %{message}`)
	fileFormat    = logging.MustStringFormatter(`%{time:2006-01-02 15:04:05.000} %{level:.4s} %{shortfile} %{message}`)
)

// InitLogger initialises the logger with console and/or rotating file backends.
func InitLogger(cfg *config.LogConfig) {
	level := parseLevel(cfg.Level)
	var backends []logging.Backend

	if cfg.UseConsoleLogger {
		consoleLogger := logging.NewLogBackend(os.Stdout, "", 0)
		consoleFormatter := logging.NewBackendFormatter(consoleLogger, consoleFormat)
		consoleLoggerLeveled := logging.AddModuleLevel(consoleFormatter)
		consoleLoggerLeveled.SetLevel(level, "")
		backends = append(backends, consoleLoggerLeveled)
	}

	if cfg.UseFileLogger {
		fileLogger := logging.NewLogBackend(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxFileSizeInMB,
			MaxBackups: cfg.MaxBackupsOfLogFiles,
			MaxAge:     cfg.MaxAgeToRetainLogFilesInDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}, "", 0)
		fileFormatter := logging.NewBackendFormatter(fileLogger, fileFormat)
		fileLoggerLeveled := logging.AddModuleLevel(fileFormatter)
		fileLoggerLeveled.SetLevel(level, "")
		backends = append(backends, fileLoggerLeveled)
	}

	if len(backends) == 0 {
		return
	}
	logging.SetBackend(backends...)
}

func parseLevel(level string) logging.Level {
	if l, ok := levels[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return l
	}
	return logging.INFO
}
