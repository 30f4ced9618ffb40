package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the creator watch-list
type Loader struct {
	path string
}

// NewLoader creates a new watch-list loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and validates the watch-list YAML file
func (l *Loader) Load() (*WatchList, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watch-list file: %w", err)
	}

	var list WatchList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse watch-list YAML: %w", err)
	}

	l.setDefaults(&list)

	if err := l.validate(&list); err != nil {
		return nil, fmt.Errorf("invalid watch-list %s: %w", l.path, err)
	}

	return &list, nil
}

// setDefaults applies default values to the watch-list
func (l *Loader) setDefaults(list *WatchList) {
	for i := range list.Creators {
		if len(list.Creators[i].Monitor) == 0 {
			list.Creators[i].Monitor = []string{KindPost, KindVideo}
		}
	}
}

// validate checks the watch-list for configuration errors
func (l *Loader) validate(list *WatchList) error {
	if len(list.Creators) == 0 {
		return fmt.Errorf("creator list is empty")
	}

	seen := make(map[string]bool, len(list.Creators))
	for i, c := range list.Creators {
		if c.UID == "" {
			return fmt.Errorf("creator %d is missing uid", i+1)
		}
		if c.Name == "" {
			return fmt.Errorf("creator %d (uid %s) is missing name", i+1, c.UID)
		}
		if seen[c.UID] {
			return fmt.Errorf("duplicate creator uid %s", c.UID)
		}
		seen[c.UID] = true

		for _, kind := range c.Monitor {
			if kind != KindPost && kind != KindVideo {
				return fmt.Errorf("creator %s has unknown monitor kind %q", c.UID, kind)
			}
		}
	}

	return nil
}
