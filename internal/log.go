package internal

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logMu  sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// SetLogger replaces the package-wide logger used by LogError. Networks and
// NetRefs share this logger unless a caller supplies its own error sink.
func SetLogger(l zerolog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = l
}

// Logger returns the current package-wide logger.
func Logger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// LogError is the default error sink: every error a link-fn's panic or a
// delivery fault produces that nobody else handles ends up here, at error
// level, tagged with component=reactnet.
func LogError(err error) {
	if err == nil {
		return
	}
	Logger().Error().Str("component", "reactnet").Err(err).Msg("unhandled error")
}
