package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// OverrideFile is the optional per-album metadata file read from each
// source directory.
var OverrideFile = "album.json"

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SourceAlbum is one discovered album directory and its image files.
type SourceAlbum struct {
	Dir       string // absolute directory path
	Name      string // folder base name
	Slug      string
	Images    []string // absolute image paths, sorted by filename
	Overrides *Overrides
}

// Scan walks the input root and groups supported images into albums by
// containing directory. Directories without images are ignored. A missing
// root is an error; the caller treats it as fatal.
func Scan(root string) ([]*SourceAlbum, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("input root: %w", err)
	}

	byDir := map[string]*SourceAlbum{}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}
			if de.IsDir() {
				return nil
			}
			if !imageExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			klog.V(1).Infof("found %s", path)
			dir := filepath.Dir(path)
			if byDir[dir] == nil {
				name := filepath.Base(dir)
				byDir[dir] = &SourceAlbum{
					Dir:  dir,
					Name: name,
					Slug: Slugify(name),
				}
			}
			byDir[dir].Images = append(byDir[dir].Images, path)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}

	albums := make([]*SourceAlbum, 0, len(byDir))
	for _, a := range byDir {
		sort.Slice(a.Images, func(i, j int) bool {
			return filepath.Base(a.Images[i]) < filepath.Base(a.Images[j])
		})
		a.Overrides = readOverrides(a.Dir)
		albums = append(albums, a)
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].Slug < albums[j].Slug })

	klog.Infof("found %d albums under %s", len(albums), root)
	return albums, nil
}

// readOverrides reads the per-album override file. Absence is normal; a
// malformed file is logged and the album falls back to defaults.
func readOverrides(dir string) *Overrides {
	path := filepath.Join(dir, OverrideFile)
	bs, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		klog.Warningf("unable to read %s: %v", path, err)
		return nil
	}

	ov := &Overrides{}
	if err := json.Unmarshal(bs, ov); err != nil {
		klog.Warningf("malformed override file %s, using defaults: %v", path, err)
		return nil
	}
	return ov
}
