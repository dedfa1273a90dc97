package badger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/augur/internal/common"
)

// Share of stale data a value log file needs before Close rewrites it
const gcDiscardRatio = 0.5

// BadgerDB owns the badgerhold store behind the insight and chat log storages
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	path   string
}

// NewBadgerDB opens (or creates) the store at config.Path. With
// reset_on_startup the previous directory is removed first.
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config.Path == "" {
		return nil, errors.New("badger path is empty")
	}

	if config.ResetOnStartup {
		if err := os.RemoveAll(config.Path); err != nil {
			logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to reset insight store")
		} else {
			logger.Info().Str("path", config.Path).Msg("Insight store reset")
		}
	}

	if err := os.MkdirAll(config.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create insight store directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = &badgerLogger{logger: logger}

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open insight store at %s: %w", config.Path, err)
	}

	logger.Debug().Str("path", config.Path).Msg("Insight store opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
		path:   config.Path,
	}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// CollectGarbage rewrites value log files until badger reports nothing left
// to reclaim. Returns the number of files rewritten.
func (b *BadgerDB) CollectGarbage() (int, error) {
	rewritten := 0
	for {
		err := b.store.Badger().RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badgerdb.ErrNoRewrite) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, err
		}
		rewritten++
	}
}

// Close compacts the value log and closes the store
func (b *BadgerDB) Close() error {
	if b.store == nil {
		return nil
	}

	if rewritten, err := b.CollectGarbage(); err != nil {
		b.logger.Warn().Err(err).Str("path", b.path).Msg("Value log GC failed")
	} else if rewritten > 0 {
		b.logger.Debug().Int("files", rewritten).Msg("Value log GC rewrote files")
	}

	err := b.store.Close()
	b.store = nil
	return err
}

// badgerLogger routes badger's internal messages into arbor, one level down
type badgerLogger struct {
	logger arbor.ILogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Str("component", "badger").Msg(trimLine(format, args))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Str("component", "badger").Msg(trimLine(format, args))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Str("component", "badger").Msg(trimLine(format, args))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Str("component", "badger").Msg(trimLine(format, args))
}

func trimLine(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
