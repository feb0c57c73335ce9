package gallery

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Results aggregates per-item outcomes across one run. Per-item failures
// degrade these counts instead of aborting the run.
type Results struct {
	Albums         int // albums reconciled this run
	Indexed        int // albums in the rebuilt index, incl. stale manifests
	Photos         int // photos processed
	SkippedPhotos  int // unreadable sources skipped
	Generated      int // variants generated
	Reused         int // variants already present
	FailedVariants int
}

// Log prints the run summary.
func (r *Results) Log() {
	klog.Infof("reconciled %d albums (%d indexed): %d photos, %d skipped; variants: %d generated, %d reused, %d failed",
		r.Albums, r.Indexed, r.Photos, r.SkippedPhotos, r.Generated, r.Reused, r.FailedVariants)
}

// Run executes the full pipeline: scan the input root, build and reconcile
// each album's manifest, then rebuild the global indexes. Errors returned
// from here are fatal setup or persistence problems; anything per-item was
// already logged and counted.
func Run(c *Config) (*Results, error) {
	store := NewStore(c.ContentDir)

	locations, err := store.LoadLocations()
	if err != nil {
		return nil, err
	}

	srcAlbums, err := Scan(c.InDir)
	if err != nil {
		return nil, err
	}

	extractor := NewExtractor()
	defer extractor.Close()

	builder := &Builder{
		Extractor:   extractor,
		Variants:    NewVariantGenerator(),
		VariantRoot: c.VariantDir,
		Force:       c.Force,
	}

	res := &Results{}
	locationsDirty := false

	// Albums are reconciled strictly one at a time; only per-photo work
	// inside an album runs in parallel.
	for _, sa := range srcAlbums {
		previous, err := store.LoadAlbum(sa.Slug)
		if err != nil {
			return res, err
		}

		fresh := buildPhotos(builder, sa, c.Concurrency, res)
		if len(fresh) == 0 && previous == nil {
			klog.Warningf("no readable images in %s, skipping", sa.Dir)
			continue
		}

		title := ResolveTitle(sa.Overrides, previous, sa.Name)
		if EnsureLocationEntry(locations, sa.Slug, title) {
			locationsDirty = true
		}

		var prevLoc *Location
		if previous != nil {
			prevLoc = previous.PrimaryLocation
		}
		loc := ResolveLocation(sa.Slug, title, locations, prevLoc)

		album := Reconcile(sa.Slug, fresh, previous, sa.Overrides, loc)
		if err := store.SaveAlbum(album); err != nil {
			return res, err
		}
		klog.Infof("reconciled %s: %d photos", sa.Slug, album.Count)
		res.Albums++
	}

	if err := rebuildIndexes(store, locations, res); err != nil {
		return res, err
	}

	if locationsDirty {
		if err := store.SaveLocations(locations); err != nil {
			return res, err
		}
	}

	res.Generated = int(builder.Generated.Load())
	res.Reused = int(builder.Reused.Load())
	res.FailedVariants = int(builder.Failed.Load())
	res.Log()
	return res, nil
}

// buildPhotos runs the Photo Record Builder over an album's images with
// bounded parallelism, preserving sorted filename order in the result.
func buildPhotos(b *Builder, sa *SourceAlbum, concurrency int, res *Results) []Photo {
	built := make([]*Photo, len(sa.Images))

	g := &errgroup.Group{}
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for i, src := range sa.Images {
		g.Go(func() error {
			p, err := b.Build(src, sa.Slug)
			if err != nil {
				klog.Warningf("skipping %s: %v", src, err)
				return nil
			}
			built[i] = &p
			return nil
		})
	}
	g.Wait()

	photos := make([]Photo, 0, len(built))
	for _, p := range built {
		if p == nil {
			res.SkippedPhotos++
			continue
		}
		photos = append(photos, *p)
	}
	res.Photos += len(photos)
	return photos
}

// rebuildIndexes derives the Album Index and Geo Index from every
// persisted manifest, including stale ones for directories no longer on
// disk, and writes pinned favorite values back into diverging manifests.
func rebuildIndexes(store *Store, locations LocationConfig, res *Results) error {
	slugs, err := store.Slugs()
	if err != nil {
		return err
	}

	albums := make([]*Album, 0, len(slugs))
	bySlug := make(map[string]*Album, len(slugs))
	for _, slug := range slugs {
		a, err := store.LoadAlbum(slug)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("manifest for %s vanished mid-run", slug)
		}
		albums = append(albums, a)
		bySlug[slug] = a
	}

	prevIdx, err := store.LoadIndex()
	if err != nil {
		return err
	}

	idx, fixups := RebuildIndex(prevIdx, albums)
	for slug, fav := range fixups {
		a := bySlug[slug]
		a.IsFavorite = &fav
		if err := store.SaveAlbum(a); err != nil {
			return err
		}
		klog.Infof("wrote pinned isFavorite=%v back to %s", fav, slug)
	}

	if err := store.SaveIndex(idx); err != nil {
		return err
	}
	if err := store.SaveGeoIndex(BuildGeoIndex(albums, locations)); err != nil {
		return err
	}

	res.Indexed = len(idx.Albums)
	return nil
}
