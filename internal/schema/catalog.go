package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog maps schema names to schema files on disk.
type Catalog struct {
	paths map[string]string
}

type catalogFile struct {
	Schemas []catalogEntry `yaml:"schemas"`
}

type catalogEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// LoadCatalog reads a YAML catalog file. Relative schema paths are
// resolved against the directory holding the catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	c := &Catalog{paths: make(map[string]string, len(f.Schemas))}
	for i, e := range f.Schemas {
		if e.Name == "" || e.Path == "" {
			return nil, fmt.Errorf("catalog %q: entry %d needs both name and path", path, i)
		}
		if _, dup := c.paths[e.Name]; dup {
			return nil, fmt.Errorf("catalog %q: duplicate schema name %q", path, e.Name)
		}
		p := e.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		c.paths[e.Name] = p
	}
	return c, nil
}

// ScanCatalog registers every *.json file directly inside dir. The
// name is the file name without its ".schema.json" or ".json" suffix.
// A missing directory yields an empty catalog.
func ScanCatalog(dir string) (*Catalog, error) {
	c := &Catalog{paths: map[string]string{}}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("scan schema dir %q: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimSuffix(name, ".json"), ".schema")
		c.paths[key] = filepath.Join(dir, name)
	}
	return c, nil
}

// Lookup returns the schema file registered under name. A nil Catalog
// holds no schemas.
func (c *Catalog) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	p, ok := c.paths[name]
	return p, ok
}

// Names lists the registered schema names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return []string{}
	}
	names := make([]string, 0, len(c.paths))
	for n := range c.paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.paths)
}
