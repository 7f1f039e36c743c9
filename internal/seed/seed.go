// Package seed loads the initial browse catalog from a YAML file.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/learnflow/catalog/config"
	internalErrors "github.com/learnflow/catalog/internal/errors"
	"github.com/learnflow/catalog/model"
	"github.com/learnflow/catalog/services"
)

// Catalog is the seed file layout.
type Catalog struct {
	Collections []Collection `yaml:"collections"`
}

// Collection is one seeded collection: its settings plus initial records.
type Collection struct {
	config.CollectionSettings `yaml:",inline"`
	Records                   []map[string]interface{} `yaml:"records"`
}

// Result reports what Apply did.
type Result struct {
	Created []string
	Skipped []string
}

// LoadFile parses a seed catalog from path.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return catalog, nil
}

// Apply creates every collection of the catalog that the manager does not have yet and
// adds its records. Existing collections are left untouched.
func Apply(manager services.CollectionManager, catalog Catalog, logger *zap.Logger) (Result, error) {
	var result Result
	for _, coll := range catalog.Collections {
		name := coll.Name
		err := manager.CreateCollection(coll.CollectionSettings)
		if errors.Is(err, internalErrors.ErrCollectionAlreadyExists) {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to create seed collection '%s': %w", name, err)
		}

		if len(coll.Records) > 0 {
			records, err := normalizeRecords(coll.Records)
			if err != nil {
				return result, fmt.Errorf("seed collection '%s': %w", name, err)
			}
			accessor, err := manager.GetCollection(name)
			if err != nil {
				return result, err
			}
			if err := accessor.AddRecords(records); err != nil {
				return result, fmt.Errorf("failed to add seed records to '%s': %w", name, err)
			}
		}

		logger.Info("seeded collection", zap.String("collection", name), zap.Int("records", len(coll.Records)))
		result.Created = append(result.Created, name)
	}
	return result, nil
}

// normalizeRecords converts YAML-decoded values (int, nested maps) into the shapes
// JSON decoding produces, so seeded records behave exactly like pushed ones.
func normalizeRecords(raw []map[string]interface{}) ([]model.Record, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}
