package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

// seedFile is the on-disk shape of a stage definition file.
type seedFile struct {
	Stages []seedStage `yaml:"stages"`
}

type seedStage struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Order       int    `yaml:"order"`
	Active      *bool  `yaml:"active"`
}

// LoadSeedFile parses a stage definition YAML file. The system stage names
// are reserved and rejected.
func LoadSeedFile(path string) ([]models.PipelineStage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse seed file: %w", err)
	}

	out := make([]models.PipelineStage, 0, len(f.Stages))
	for i, s := range f.Stages {
		if s.Name == "" {
			return nil, fmt.Errorf("catalog: seed stage %d has no name", i)
		}
		if models.IsTerminalStage(s.Name) {
			return nil, fmt.Errorf("catalog: stage name %q is reserved", s.Name)
		}
		display := s.DisplayName
		if display == "" {
			display = s.Name
		}
		order := s.Order
		if order == 0 {
			order = i + 1
		}
		active := true
		if s.Active != nil {
			active = *s.Active
		}
		out = append(out, models.PipelineStage{
			Name:        s.Name,
			DisplayName: display,
			Order:       order,
			IsActive:    active,
		})
	}
	return out, nil
}

// ApplySeed loads the seed file, upserts its stages into the store, and
// invalidates the cache. Existing stages not mentioned in the file are left
// untouched: the file describes stages, it does not own the catalog.
func (c *Catalog) ApplySeed(path string) error {
	stages, err := LoadSeedFile(path)
	if err != nil {
		return err
	}
	for _, s := range stages {
		if err := c.store.UpsertStage(s); err != nil {
			return err
		}
	}
	c.Invalidate()
	return nil
}
