package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// Store reads and writes the persisted JSON documents under the content
// root. Documents are rebuilt whole in memory and replaced via a temp file
// rename, so a crash never leaves one half-written.
type Store struct {
	Root string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Root: dir}
}

func (s *Store) albumPath(slug string) string {
	return filepath.Join(s.Root, "albums", slug+".json")
}

func (s *Store) indexPath() string     { return filepath.Join(s.Root, "albums.json") }
func (s *Store) geoPath() string       { return filepath.Join(s.Root, "geo.json") }
func (s *Store) locationsPath() string { return filepath.Join(s.Root, "locations.json") }

// LoadAlbum reads the manifest for slug. A missing manifest yields
// (nil, nil); a manifest that exists but does not parse is an error.
func (s *Store) LoadAlbum(slug string) (*Album, error) {
	a := &Album{}
	ok, err := s.readJSON(s.albumPath(slug), a)
	if err != nil || !ok {
		return nil, err
	}
	return a, nil
}

// SaveAlbum replaces the manifest for a.Slug.
func (s *Store) SaveAlbum(a *Album) error {
	return s.writeJSON(s.albumPath(a.Slug), a)
}

// LoadIndex reads the album index, or (nil, nil) when none exists yet.
func (s *Store) LoadIndex() (*AlbumIndex, error) {
	idx := &AlbumIndex{}
	ok, err := s.readJSON(s.indexPath(), idx)
	if err != nil || !ok {
		return nil, err
	}
	return idx, nil
}

// SaveIndex replaces the album index.
func (s *Store) SaveIndex(idx *AlbumIndex) error {
	return s.writeJSON(s.indexPath(), idx)
}

// SaveGeoIndex replaces the geo index.
func (s *Store) SaveGeoIndex(g *GeoIndex) error {
	return s.writeJSON(s.geoPath(), g)
}

// LoadLocations reads the location config. A missing document yields an
// empty table; a present but malformed one is an error (the caller treats
// it as fatal rather than risk clobbering user-entered coordinates).
func (s *Store) LoadLocations() (LocationConfig, error) {
	cfg := LocationConfig{}
	if _, err := s.readJSON(s.locationsPath(), &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveLocations replaces the location config.
func (s *Store) SaveLocations(cfg LocationConfig) error {
	return s.writeJSON(s.locationsPath(), cfg)
}

// Slugs lists the slugs of every persisted album manifest, sorted.
func (s *Store) Slugs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Root, "albums"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read albums dir: %w", err)
	}

	slugs := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(slugs)
	return slugs, nil
}

// Reset removes every generated document under the content root. This is
// the only path that ever deletes manifests.
func (s *Store) Reset() error {
	for _, p := range []string{
		filepath.Join(s.Root, "albums"),
		s.indexPath(),
		s.geoPath(),
	} {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
		klog.Infof("removed %s", p)
	}
	return nil
}

// readJSON decodes path into v. The bool reports whether the file existed.
func (s *Store) readJSON(path string, v any) (bool, error) {
	bs, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// writeJSON pretty-prints v and replaces path atomically.
func (s *Store) writeJSON(path string, v any) error {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	bs = append(bs, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, bs, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	klog.V(1).Infof("wrote %s (%d bytes)", path, len(bs))
	return nil
}
