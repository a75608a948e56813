package action

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// actionFile is the YAML document shape for user-authored actions.
type actionFile struct {
	Actions []*Definition `yaml:"actions"`
}

// LoadFile reads user-authored action definitions from a YAML file. Every
// definition is validated; a definition without an ID gets a generated one
// (the wizard writes files without IDs on first save).
func LoadFile(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading action file: %w", err)
	}

	var file actionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	for i, d := range file.Actions {
		if d == nil {
			return nil, fmt.Errorf("%s: action %d is empty", filepath.Base(path), i)
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.Context == "" {
			d.Context = ContextGeneral
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%s: action %d: %w", filepath.Base(path), i, err)
		}
	}

	return file.Actions, nil
}

// LoadDir loads every .yml/.yaml file in dir, sorted by filename so load
// order is deterministic. A missing directory yields no actions.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading action directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yml" || ext == ".yaml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var all []*Definition
	for _, p := range paths {
		defs, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, defs...)
	}
	return all, nil
}
