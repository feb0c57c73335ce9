// Package gallery builds and maintains the JSON manifests behind a static
// photo-gallery site: it scans album directories, derives resized image
// variants and EXIF metadata, and reconciles the results against previously
// persisted manifests without losing user edits.
package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// DefaultConcurrency caps simultaneous image decodes within one album.
var DefaultConcurrency = 4

// Config holds configuration for a pipeline run.
type Config struct {
	// InDir is the root of album subdirectories holding source photos.
	InDir string
	// ContentDir receives the JSON manifest tree.
	ContentDir string
	// VariantDir receives web-ready image variants.
	VariantDir string

	// Force regenerates variants even when the destination already exists.
	Force bool
	// Concurrency bounds per-photo work within an album.
	Concurrency int
}

// FileConfig is the optional on-disk TOML configuration. Flag values
// override anything set here.
type FileConfig struct {
	InDir       string `toml:"in_dir"`
	ContentDir  string `toml:"content_dir"`
	VariantDir  string `toml:"variant_dir"`
	Concurrency int    `toml:"concurrency"`
}

// LoadFileConfig reads a TOML config file. A missing file is not an error
// and yields an empty config.
func LoadFileConfig(path string) (*FileConfig, error) {
	fc := &FileConfig{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, fc); err != nil {
		return nil, fmt.Errorf("decode config %q: %w", path, err)
	}
	return fc, nil
}

// WriteFileConfig persists a TOML config file, creating parent directories.
func WriteFileConfig(path string, fc *FileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(fc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Apply overlays file-config values onto c for any field the flags left
// unset.
func (c *Config) Apply(fc *FileConfig) {
	if c.InDir == "" {
		c.InDir = fc.InDir
	}
	if c.ContentDir == "" {
		c.ContentDir = fc.ContentDir
	}
	if c.VariantDir == "" {
		c.VariantDir = fc.VariantDir
	}
	if c.Concurrency == 0 {
		c.Concurrency = fc.Concurrency
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Concurrency > runtime.NumCPU()*2 {
		c.Concurrency = runtime.NumCPU() * 2
	}
}
