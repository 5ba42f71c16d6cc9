package tier

import (
	"context"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Source defines how tier configurations are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) ([]Config, error)
}

// StaticSource serves a fixed slice of configs. Useful in tests and for the
// built-in catalog.
type StaticSource []Config

func (s StaticSource) Load(_ context.Context) ([]Config, error) {
	return s, nil
}

// FileSource loads tier configurations from a YAML file.
type FileSource string

func (s FileSource) Load(_ context.Context) ([]Config, error) {
	data, err := os.ReadFile(string(s))
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadTiers, err)
	}

	var doc struct {
		Tiers []Config `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadTiers, err)
	}

	return doc.Tiers, nil
}

// LoadCatalog loads configs from the source and validates them into a
// Catalog in one step.
func LoadCatalog(ctx context.Context, src Source) (*Catalog, error) {
	configs, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(configs)
}
