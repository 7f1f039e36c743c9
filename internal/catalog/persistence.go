package catalog

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/learnflow/catalog/config"
	"github.com/learnflow/catalog/internal/persistence"
	"github.com/learnflow/catalog/store"
)

// loadCollectionsFromDisk loads every collection directory under the data directory.
// Directories with unreadable settings are skipped; unreadable records start empty.
func (e *Engine) loadCollectionsFromDisk() {
	log := e.logger.With(zap.String("data_dir", e.dataDir))

	if err := os.MkdirAll(e.dataDir, dataDirPerm); err != nil {
		log.Warn("could not create data directory; persistence may fail", zap.Error(err))
	}

	items, err := os.ReadDir(e.dataDir)
	if err != nil {
		log.Warn("failed to read data directory; no collections loaded", zap.Error(err))
		return
	}

	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		name := item.Name()

		var settings config.CollectionSettings
		if err := persistence.LoadGob(e.settingsPath(name), &settings); err != nil {
			log.Warn("skipping collection without readable settings", zap.String("collection", name), zap.Error(err))
			continue
		}
		if settings.Name != name {
			log.Warn("skipping collection whose settings name does not match its directory",
				zap.String("collection", name), zap.String("settings_name", settings.Name))
			continue
		}
		settings.ApplyDefaults()

		records := store.NewRecordStore()
		if err := persistence.LoadGob(e.recordsPath(name), records); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Info("no records file; starting empty", zap.String("collection", name))
			} else {
				log.Warn("failed to load records; starting empty", zap.String("collection", name), zap.Error(err))
			}
			records = store.NewRecordStore()
		}

		e.collections[name] = e.newCollection(settings, records)
		log.Info("collection loaded", zap.String("collection", name), zap.Int("records", records.Len()),
			zap.String("path", filepath.Join(e.dataDir, name)))
	}
}
