package resource

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Resources map[string]resourceFile `json:"resources" yaml:"resources"`
}

type resourceFile struct {
	IdentifierField string                  `json:"identifier" yaml:"identifier"`
	DisplayField    string                  `json:"display" yaml:"display"`
	Relationships   map[string]Relationship `json:"relationships" yaml:"relationships"`
}

// LoadFS walks fsys and registers every resource declared in JSON or YAML
// files. A resource declared twice across files is an error. A nil fsys
// yields an empty registry.
func LoadFS(fsys fs.FS) (*Registry, error) {
	reg := &Registry{resources: make(map[string]Resource)}
	if fsys == nil {
		return reg, nil
	}

	origins := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("resource: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for name, raw := range doc.Resources {
			key := strings.TrimSpace(name)
			if prev, exists := origins[key]; exists {
				return fmt.Errorf("resource: duplicate resource %q (files %s and %s)", key, prev, path)
			}
			res := Resource{
				Name:            key,
				IdentifierField: raw.IdentifierField,
				DisplayField:    raw.DisplayField,
				Relationships:   raw.Relationships,
			}
			if err := reg.Register(res); err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
			origins[key] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Parse decodes a single JSON or YAML configuration document.
func Parse(data []byte) (*Registry, error) {
	doc, err := parseDocument(data, "<inline>")
	if err != nil {
		return nil, err
	}
	reg := &Registry{resources: make(map[string]Resource)}
	for name, raw := range doc.Resources {
		err := reg.Register(Resource{
			Name:            name,
			IdentifierField: raw.IdentifierField,
			DisplayField:    raw.DisplayField,
			Relationships:   raw.Relationships,
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("resource: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("resource: parse %s: invalid JSON or YAML", source)
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
