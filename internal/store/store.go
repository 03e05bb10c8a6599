package store

import (
	"os"
	"sync"
	"time"

	"mailwatch/internal/logger"
	"mailwatch/internal/maillog"
	"mailwatch/internal/metrics"
)

// Loader rebuilds the transaction set from the log files.
type Loader interface {
	Load() []*maillog.Transaction
}

// Store caches the aggregated transaction set and reruns the pipeline
// only when the primary log file's modification time advances. A rebuild
// replaces the whole set; there is no incremental merge.
//
// Concurrent callers may both decide to rebuild; rebuilds are idempotent
// over the same file content, so the race is harmless.
type Store struct {
	mu        sync.Mutex
	loader    Loader
	logPath   string
	txs       []*maillog.Transaction
	modTime   time.Time
	onRebuild func([]*maillog.Transaction)
}

func New(loader Loader, logPath string) *Store {
	return &Store{loader: loader, logPath: logPath}
}

// OnRebuild registers a hook invoked with the fresh transaction set
// after every rebuild. Used by the event forwarder.
func (s *Store) OnRebuild(fn func([]*maillog.Transaction)) {
	s.onRebuild = fn
}

// Get returns the current transaction set, rebuilding it first if the
// log file changed. A missing primary log file is served from rotated
// logs once and then cached.
func (s *Store) Get() []*maillog.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.WithComponent("store")

	info, err := os.Stat(s.logPath)
	switch {
	case err == nil && info.ModTime().After(s.modTime):
		log.Info().Str("file", s.logPath).Msg("log file changed, re-parsing")
		s.rebuild(info.ModTime())
	case err == nil:
		metrics.CacheHits.Inc()
	case os.IsNotExist(err) && s.txs == nil:
		log.Warn().Str("file", s.logPath).Msg("main log not found, parsing rotated logs")
		s.rebuild(time.Now())
	case !os.IsNotExist(err):
		log.Error().Err(err).Str("file", s.logPath).Msg("cannot stat log file")
	}

	return s.txs
}

func (s *Store) rebuild(modTime time.Time) {
	s.txs = s.loader.Load()
	if s.txs == nil {
		s.txs = []*maillog.Transaction{}
	}
	s.modTime = modTime
	metrics.CacheRefreshes.Inc()

	if s.onRebuild != nil {
		s.onRebuild(s.txs)
	}
}
