package internal

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is used for config lookup paths and the env prefix
	DefaultAppName    = "memvfs"
	DefaultEnvPrefix  = "MEMVFS"
	DefaultConfigPath = filepath.Join(getHomeDir(), ".config", DefaultAppName)

	// Node names: anything without a slash or whitespace
	DefaultNamePattern = `^[^\s/]+$`

	DefaultLogLevel      = "info"
	DefaultGlobCacheSize = 128
	DefaultGrepWorkers   = 4
	DefaultPrompt        = "%s $ "
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// NewLogger builds a logger at the given level. Console mode writes the
// human-readable zerolog format instead of JSON lines.
func NewLogger(w io.Writer, level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
