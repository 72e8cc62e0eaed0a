package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

// LoadLayoutDefaults reads a YAML file on top of the built-in layout. Keys
// missing from the file keep their built-in value.
func LoadLayoutDefaults(path string) (domain.Layout, error) {
	layout := domain.DefaultLayout()

	data, err := os.ReadFile(path)
	if err != nil {
		return layout, fmt.Errorf("read layout defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return layout, fmt.Errorf("parse layout defaults %s: %w", path, err)
	}

	return layout, nil
}
