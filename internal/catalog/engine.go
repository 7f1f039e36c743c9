// Package catalog manages the browsable collections of the learning platform:
// their settings, their record snapshots and the derived views computed over them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/learnflow/catalog/config"
	internalErrors "github.com/learnflow/catalog/internal/errors"
	"github.com/learnflow/catalog/internal/persistence"
	"github.com/learnflow/catalog/services"
	"github.com/learnflow/catalog/store"
)

const (
	dataDirPerm  = 0755
	settingsFile = "settings.gob"
	recordsFile  = "records.gob"
)

// Options tunes browse behaviour shared by every collection.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	MemoEntries     int
}

func (o *Options) applyDefaults() {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 20
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 100
	}
	if o.DefaultPageSize > o.MaxPageSize {
		o.DefaultPageSize = o.MaxPageSize
	}
}

// Engine manages multiple collections.
// It implements the services.CollectionManager interface.
type Engine struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	dataDir     string
	logger      *zap.Logger
	opts        Options
}

// NewEngine creates a collection manager rooted at dataDir and loads any collections found there.
func NewEngine(dataDir string, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.applyDefaults()

	eng := &Engine{
		collections: make(map[string]*Collection),
		dataDir:     dataDir,
		logger:      logger.Named("catalog"),
		opts:        opts,
	}
	eng.loadCollectionsFromDisk()
	return eng
}

// CreateCollection creates a new collection with the given settings and persists it.
func (e *Engine) CreateCollection(settings config.CollectionSettings) error {
	settings.ApplyDefaults()
	if conflicts := settings.ValidateFieldNames(); len(conflicts) > 0 {
		return internalErrors.NewValidationError("settings", strings.Join(conflicts, "; "))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.collections[settings.Name]; exists {
		return internalErrors.NewCollectionAlreadyExistsError(settings.Name)
	}

	coll := e.newCollection(settings, store.NewRecordStore())

	if err := persistence.SaveGob(e.settingsPath(settings.Name), settings); err != nil {
		return fmt.Errorf("failed to save settings for collection %s: %w", settings.Name, err)
	}
	if err := persistence.SaveGob(e.recordsPath(settings.Name), coll.records); err != nil {
		return fmt.Errorf("failed to save initial records for collection %s: %w", settings.Name, err)
	}

	e.collections[settings.Name] = coll
	e.logger.Info("collection created", zap.String("collection", settings.Name))
	return nil
}

// GetCollection retrieves a collection by its name.
func (e *Engine) GetCollection(name string) (services.CollectionAccessor, error) {
	coll, err := e.collection(name)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

func (e *Engine) collection(name string) (*Collection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	coll, exists := e.collections[name]
	if !exists {
		return nil, internalErrors.NewCollectionNotFoundError(name)
	}
	return coll, nil
}

// GetCollectionSettings retrieves a copy of the settings of a collection.
func (e *Engine) GetCollectionSettings(name string) (config.CollectionSettings, error) {
	coll, err := e.collection(name)
	if err != nil {
		return config.CollectionSettings{}, err
	}
	return coll.Settings(), nil
}

// UpdateCollectionSettings replaces the settings of an existing collection and persists them.
// Records are untouched; derived views pick up the new fields on the next browse.
func (e *Engine) UpdateCollectionSettings(name string, newSettings config.CollectionSettings) error {
	if newSettings.Name != "" && newSettings.Name != name {
		return internalErrors.NewValidationError("name",
			fmt.Sprintf("cannot change collection name from '%s' to '%s'", name, newSettings.Name))
	}
	newSettings.Name = name
	newSettings.ApplyDefaults()
	if conflicts := newSettings.ValidateFieldNames(); len(conflicts) > 0 {
		return internalErrors.NewValidationError("settings", strings.Join(conflicts, "; "))
	}

	coll, err := e.collection(name)
	if err != nil {
		return err
	}

	if err := persistence.SaveGob(e.settingsPath(name), newSettings); err != nil {
		return fmt.Errorf("failed to save updated settings for collection '%s': %w", name, err)
	}
	coll.setSettings(newSettings)

	e.logger.Info("collection settings updated", zap.String("collection", name))
	return nil
}

// DeleteCollection removes a collection from memory and disk.
// A name that is not loaded is only removed from disk when its directory holds collection settings.
func (e *Engine) DeleteCollection(name string) error {
	if !config.ValidCollectionName(name) {
		return internalErrors.NewValidationError("name", fmt.Sprintf("invalid collection name '%s'", name))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	collPath := filepath.Join(e.dataDir, name)
	if _, exists := e.collections[name]; !exists {
		if _, err := os.Stat(e.settingsPath(name)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return internalErrors.NewCollectionNotFoundError(name)
			}
			return fmt.Errorf("failed to inspect collection directory %s: %w", collPath, err)
		}
	}
	delete(e.collections, name)

	if err := os.RemoveAll(collPath); err != nil {
		return fmt.Errorf("failed to delete collection data directory %s: %w", collPath, err)
	}
	e.logger.Info("collection deleted", zap.String("collection", name))
	return nil
}

// ListCollections returns the names of all loaded collections, sorted.
func (e *Engine) ListCollections() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.collections))
	for name := range e.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PersistCollection saves the records of a collection if they changed since the last save.
func (e *Engine) PersistCollection(name string) error {
	coll, err := e.collection(name)
	if err != nil {
		return err
	}
	return coll.save()
}

func (e *Engine) saveRecords(name string, records *store.RecordStore) error {
	if err := persistence.SaveGob(e.recordsPath(name), records); err != nil {
		e.logger.Error("failed to persist records", zap.String("collection", name), zap.Error(err))
		return fmt.Errorf("failed to save records for %s: %w", name, err)
	}
	e.logger.Debug("records persisted", zap.String("collection", name))
	return nil
}

func (e *Engine) newCollection(settings config.CollectionSettings, records *store.RecordStore) *Collection {
	name := settings.Name
	return newCollection(settings, records, e.opts, e.logger.With(zap.String("collection", name)),
		func() error { return e.saveRecords(name, records) })
}

func (e *Engine) settingsPath(name string) string {
	return filepath.Join(e.dataDir, name, settingsFile)
}

func (e *Engine) recordsPath(name string) string {
	return filepath.Join(e.dataDir, name, recordsFile)
}
