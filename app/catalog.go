// Package app contains the catalog services that hold the gates databases
// served by gatesdb.
package app

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bodygraph/gatesdb/domain/schema"
	"github.com/bodygraph/gatesdb/ports"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
)

// Catalog is one loaded revision of a locale's gates database.
type Catalog struct {
	Locale   string
	Database schema.GatesDatabase
	Document []byte // compact JSON encoding of Database
	Checksum string // hex BLAKE2b-256 of Document
	LoadedAt time.Time
}

// Counts returns the number of entries per collection.
func (c *Catalog) Counts() map[string]int {
	db := c.Database
	circuits, _ := db.Circuits.Get()
	return map[string]int{
		"gates":       len(db.Gates),
		"channels":    len(db.Channels),
		"centers":     len(db.Centers),
		"types":       len(db.Types),
		"profiles":    len(db.Profiles),
		"authorities": len(db.Authorities),
		"crosses":     len(db.Crosses),
		"circuits":    len(circuits),
	}
}

// Checksum returns the hex BLAKE2b-256 digest of an encoded document.
func Checksum(document []byte) string {
	sum := blake2b.Sum256(document)
	return hex.EncodeToString(sum[:])
}

// ReadDatabase reads and strictly decodes a gates database file. Files with
// a .yaml or .yml extension are decoded as YAML, everything else as JSON.
func ReadDatabase(path string) (schema.GatesDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.GatesDatabase{}, fmt.Errorf("read %s: %w", path, err)
	}
	var db schema.GatesDatabase
	if IsYAML(path) {
		db, err = schema.DecodeYAML[schema.GatesDatabase](data)
	} else {
		db, err = schema.Decode[schema.GatesDatabase](data)
	}
	if err != nil {
		return schema.GatesDatabase{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return db, nil
}

// IsYAML reports whether path names a YAML document.
func IsYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// NewCatalog encodes db and computes its checksum.
func NewCatalog(locale string, db schema.GatesDatabase, loadedAt time.Time) (*Catalog, error) {
	doc, err := schema.Encode(db)
	if err != nil {
		return nil, fmt.Errorf("encode database: %w", err)
	}
	return &Catalog{
		Locale:   locale,
		Database: db,
		Document: doc,
		Checksum: Checksum(doc),
		LoadedAt: loadedAt,
	}, nil
}

// CatalogDeps contains dependencies for CatalogService.
type CatalogDeps struct {
	Store   ports.SnapshotStore  // optional
	Metrics ports.CatalogMetrics // optional
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  zerolog.Logger
}

// CatalogService holds the current database of one locale and reloads it
// from its source file.
type CatalogService struct {
	locale string
	path   string
	deps   CatalogDeps
	logger zerolog.Logger

	mu       sync.RWMutex
	current  *Catalog
	onChange []func(*Catalog)

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCatalogService creates a catalog service for locale backed by the file
// at path. Nothing is loaded until Reload or Restore is called.
func NewCatalogService(locale, path string, deps CatalogDeps) (*CatalogService, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &CatalogService{
		locale: locale,
		path:   absPath,
		deps:   deps,
		logger: deps.Logger.With().Str("locale", locale).Logger(),
		stopCh: make(chan struct{}),
	}, nil
}

// Locale returns the locale served by this catalog.
func (s *CatalogService) Locale() string { return s.locale }

// Path returns the absolute path of the source file.
func (s *CatalogService) Path() string { return s.path }

// Get returns the current catalog, or nil before the first successful load.
func (s *CatalogService) Get() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload reads the source file and replaces the current catalog.
// On failure the previous catalog is kept.
func (s *CatalogService) Reload(ctx context.Context) error {
	s.logger.Info().Str("path", s.path).Msg("loading catalog")

	db, err := ReadDatabase(s.path)
	if err != nil {
		return s.fail(fmt.Errorf("load catalog %s: %w", s.locale, err))
	}
	cat, err := NewCatalog(s.locale, db, s.deps.Clock.Now())
	if err != nil {
		return s.fail(fmt.Errorf("load catalog %s: %w", s.locale, err))
	}

	s.swap(cat)
	s.record(ctx, cat)
	return nil
}

// Restore replaces the current catalog with the latest stored snapshot of
// the locale. It returns ports.ErrNotFound when no snapshot exists.
func (s *CatalogService) Restore(ctx context.Context) error {
	if s.deps.Store == nil {
		return fmt.Errorf("restore catalog %s: %w", s.locale, ports.ErrNotFound)
	}

	snap, err := s.deps.Store.Latest(ctx, s.locale)
	if err != nil {
		return fmt.Errorf("restore catalog %s: %w", s.locale, err)
	}
	db, err := schema.Decode[schema.GatesDatabase](snap.Document)
	if err != nil {
		return fmt.Errorf("restore catalog %s from snapshot %s: %w", s.locale, snap.ID, err)
	}
	cat, err := NewCatalog(s.locale, db, s.deps.Clock.Now())
	if err != nil {
		return fmt.Errorf("restore catalog %s: %w", s.locale, err)
	}

	s.logger.Warn().Str("snapshot", snap.ID).Time("created_at", snap.CreatedAt).Msg("catalog restored from snapshot")
	s.swap(cat)
	if s.deps.Metrics != nil {
		s.deps.Metrics.CatalogLoaded(s.locale, cat.Counts(), cat.LoadedAt)
	}
	return nil
}

func (s *CatalogService) fail(err error) error {
	s.logger.Error().Err(err).Msg("catalog load failed, keeping previous catalog")
	if s.deps.Metrics != nil {
		s.deps.Metrics.CatalogLoadFailed(s.locale)
	}
	return err
}

func (s *CatalogService) swap(cat *Catalog) {
	s.mu.Lock()
	old := s.current
	s.current = cat
	listeners := append([]func(*Catalog){}, s.onChange...)
	s.mu.Unlock()

	s.logChanges(old, cat)

	for _, fn := range listeners {
		fn(cat)
	}
}

// record publishes metrics and saves a snapshot for a freshly loaded catalog.
// Store failures are logged and do not fail the load.
func (s *CatalogService) record(ctx context.Context, cat *Catalog) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.CatalogLoaded(s.locale, cat.Counts(), cat.LoadedAt)
	}

	s.logger.Info().
		Str("checksum", cat.Checksum).
		Int("gates", len(cat.Database.Gates)).
		Int("channels", len(cat.Database.Channels)).
		Msg("catalog loaded")

	if s.deps.Store == nil {
		return
	}

	snap := ports.Snapshot{
		ID:        s.deps.IDGen.New(),
		Locale:    s.locale,
		Checksum:  cat.Checksum,
		Document:  cat.Document,
		CreatedAt: cat.LoadedAt,
	}
	saved, err := s.deps.Store.Save(ctx, snap)
	if err != nil {
		s.logger.Error().Err(err).Msg("save snapshot failed")
		return
	}
	if saved {
		s.logger.Debug().Str("snapshot", snap.ID).Msg("snapshot saved")
		if s.deps.Metrics != nil {
			s.deps.Metrics.SnapshotSaved(s.locale)
		}
	}
}

// OnChange registers a callback invoked after every catalog replacement.
func (s *CatalogService) OnChange(fn func(*Catalog)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// WatchFile reloads the catalog whenever its source file is written or
// recreated. It fails if the file is already watched or the service has
// been stopped.
func (s *CatalogService) WatchFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return fmt.Errorf("catalog %s: file is already watched", s.locale)
	}
	select {
	case <-s.stopCh:
		return fmt.Errorf("catalog %s: service is stopped", s.locale)
	default:
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors that save atomically replace the file.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	s.watcher = watcher

	go s.watchLoop(watcher)

	s.logger.Info().Str("path", s.path).Msg("watching catalog file for changes")
	return nil
}

// WatchSignals reloads the catalog on SIGHUP.
func (s *CatalogService) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				s.logger.Info().Msg("received SIGHUP, reloading catalog")
				if err := s.Reload(context.Background()); err != nil {
					s.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-s.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop stops watching for file changes and signals. It is safe to call more
// than once.
func (s *CatalogService) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		close(s.stopCh)
		watcher := s.watcher
		s.mu.Unlock()

		if watcher != nil {
			watcher.Close()
		}
	})
}

func (s *CatalogService) watchLoop(watcher *fsnotify.Watcher) {
	filename := filepath.Base(s.path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("catalog file changed")

				if err := s.Reload(context.Background()); err != nil {
					s.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error().Err(err).Msg("file watcher error")

		case <-s.stopCh:
			return
		}
	}
}

func (s *CatalogService) logChanges(old, cat *Catalog) {
	if old == nil {
		return
	}
	if old.Checksum == cat.Checksum {
		s.logger.Debug().Msg("catalog unchanged")
		return
	}

	oldCounts := old.Counts()
	for collection, n := range cat.Counts() {
		if oldCounts[collection] != n {
			s.logger.Info().
				Str("collection", collection).
				Int("old", oldCounts[collection]).
				Int("new", n).
				Msg("collection size changed")
		}
	}
}
