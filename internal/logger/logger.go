package logger

import (
	"context"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/config"
	"github.com/akimenko/resume-pilot/pkg/loki"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb     = "db"
	ErrorTypeAiApi  = "ai_api"
	ErrorTypeScrape = "scrape"
	ErrorTypeLatex  = "latex"
	ErrorTypeTgApi  = "tg_api"
)

var logFile *os.File

func Setup(ctx context.Context, cfg config.LoggerConfig) {

	logDir := "./logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	logFile, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)

	customFormatter := &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	}
	log.SetFormatter(customFormatter)
	addPrometheusHook()

	if cfg.LokiURL != "" {
		lokiCfg := loki.Config{
			URL:      cfg.LokiURL,
			User:     cfg.LokiUser,
			Password: cfg.LokiPassword,
			AppName:  cfg.AppName,
		}
		if err := addLokiHook(ctx, lokiCfg, log.InfoLevel); err != nil {
			log.WithError(err).Error("failed to enable loki logging")
		}
	}

	switch cfg.LogLevel {
	case config.LevelInfo:
		log.SetLevel(log.InfoLevel)
	case config.LevelDebug:
		log.SetLevel(log.DebugLevel)
	case config.LevelWarning:
		log.SetLevel(log.WarnLevel)
	case config.LevelError:
		log.SetLevel(log.ErrorLevel)
	case config.LevelFatal:
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func Cleanup() {
	if logFile != nil {
		_ = logFile.Close()
	}
}
