package persona

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// FileName is the override file looked up in the personas directory.
const FileName = "personas.yaml"

// overrideFile is the personas.yaml structure:
//
//	judge: |
//	  You are ...
//	styles:
//	  academic:
//	    description: ...
//	    pro: |
//	      ...
//	    con: |
//	      ...
type overrideFile struct {
	Judge  string                   `yaml:"judge"`
	Styles map[string]styleOverride `yaml:"styles"`
}

type styleOverride struct {
	Description string `yaml:"description"`
	Pro         string `yaml:"pro"`
	Con         string `yaml:"con"`
}

// PathIn returns the override file path inside dir.
func PathIn(dir string) string {
	return filepath.Join(dir, FileName)
}

// LoadFile applies the overrides in path on top of the built-in styles.
// Fields left empty keep the built-in text. Styles not in the built-in set
// are skipped with a warning; the selector set is closed. A missing file
// restores the built-ins.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		c.mu.Lock()
		c.reset()
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read persona overrides: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse persona overrides %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	if judge := strings.TrimSpace(file.Judge); judge != "" {
		c.judge = file.Judge
	}
	applied := 0
	for name, o := range file.Styles {
		s, ok := c.styles[name]
		if !ok {
			log.Printf("[persona] WARNING: ignoring unknown style %q in %s", name, path)
			continue
		}
		if o.Description != "" {
			s.Description = o.Description
		}
		if o.Pro != "" {
			s.Pro = o.Pro
		}
		if o.Con != "" {
			s.Con = o.Con
		}
		c.styles[name] = s
		applied++
	}
	log.Printf("[persona] loaded %d style overrides from %s", applied, path)
	return nil
}
