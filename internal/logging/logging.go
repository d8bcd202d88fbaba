package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samuel262816/curry-company/internal/models"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup builds the application logger. Logs go to stderr unless a log file is
// configured, in which case they are rotated by size.
func Setup(cfg *models.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("unknown logging level %q. Check the config", cfg.LogLevel)
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    32, // megabytes
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   cfg.LogFile != "",
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return logger, nil
}
