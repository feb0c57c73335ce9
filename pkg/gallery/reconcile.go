package gallery

import (
	"strings"
)

// Reconcile merges one run's freshly built photos against the previously
// persisted manifest for the same album, preserving user-entered values.
// It is a pure function: callers load previous state before calling and
// persist the result after. Field trust is asymmetric:
//
//   - geometry and variant paths are always taken from the fresh scan
//   - GPS axes are taken fresh only when the fresh value is present
//   - a non-empty previous EXIF block is kept verbatim
//   - photos present only in the previous manifest are never dropped
//
// Running it twice with identical inputs converges on identical output.
func Reconcile(slug string, fresh []Photo, previous *Album, ov *Overrides, loc *Location) *Album {
	photos := mergePhotos(fresh, previous)

	cover, coverAspect := resolveCover(ov, previous, photos)
	start, end := resolveDateBounds(previous, photos)

	a := &Album{
		ID:               slug,
		Slug:             slug,
		Title:            ResolveTitle(ov, previous, slug),
		Description:      resolveDescription(ov, previous),
		Tags:             resolveTags(previous, ov, photos),
		Date:             resolveDate(previous, ov, photos),
		StartDate:        start,
		EndDate:          end,
		Cover:            cover,
		CoverAspectRatio: coverAspect,
		Count:            len(photos),
		IsFavorite:       resolveFavorite(ov, previous),
		PrimaryLocation:  loc,
		Photos:           photos,
	}
	return a
}

// photoKey is the normalized identity of a photo across runs. The large
// variant path is preferred, then the generic path, then the bare filename;
// matching is case-insensitive to tolerate filename-casing drift.
func photoKey(p Photo) string {
	switch {
	case p.PathLarge != "":
		return strings.ToLower(p.PathLarge)
	case p.Path != "":
		return strings.ToLower(p.Path)
	default:
		return strings.ToLower(p.Filename)
	}
}

// mergePhotos pairs fresh photos with their previous records by identity
// key, then appends previous photos with no fresh counterpart unchanged.
// Removal of a photo from a manifest is never automatic.
func mergePhotos(fresh []Photo, previous *Album) []Photo {
	var prev []Photo
	if previous != nil {
		prev = previous.Photos
	}

	prevByKey := make(map[string]Photo, len(prev))
	for _, p := range prev {
		prevByKey[photoKey(p)] = p
	}

	matched := make(map[string]bool, len(fresh))
	out := make([]Photo, 0, len(fresh))
	for _, f := range fresh {
		k := photoKey(f)
		if p, ok := prevByKey[k]; ok {
			matched[k] = true
			out = append(out, mergePhoto(f, p))
			continue
		}
		out = append(out, f)
	}

	// orphans retained in their previous order
	for _, p := range prev {
		if !matched[photoKey(p)] {
			out = append(out, p)
		}
	}
	return out
}

// mergePhoto applies the per-field trust rules for a photo seen in both the
// fresh scan and the previous manifest.
func mergePhoto(fresh, prev Photo) Photo {
	m := fresh

	// EXIF presence in the previous record means it may have been
	// hand-corrected, so the whole block survives.
	if !prev.Exif.IsEmpty() {
		m.Exif = prev.Exif
	}

	// GPS is overwritten by presence, not absence: re-exports sometimes
	// strip coordinates the previous scan still has.
	if m.Lat == nil {
		m.Lat = prev.Lat
	}
	if m.Lng == nil {
		m.Lng = prev.Lng
	}

	return m
}

// ResolveTitle picks the album title: override, else previous manifest,
// else a title derived from the folder name.
func ResolveTitle(ov *Overrides, previous *Album, folderName string) string {
	if ov != nil && ov.Title != "" {
		return ov.Title
	}
	if previous != nil && previous.Title != "" {
		return previous.Title
	}
	return TitleFromFolder(folderName)
}

func resolveDescription(ov *Overrides, previous *Album) *string {
	if ov != nil && ov.Description != nil {
		return ov.Description
	}
	if previous != nil {
		return previous.Description
	}
	return nil
}

func resolveFavorite(ov *Overrides, previous *Album) *bool {
	if ov != nil && ov.IsFavorite != nil {
		return ov.IsFavorite
	}
	if previous != nil {
		return previous.IsFavorite
	}
	return nil
}

// resolveCover picks the album cover: an override filename naming a merged
// photo, else the previous cover when its path still matches a merged
// photo, else the first photo.
func resolveCover(ov *Overrides, previous *Album, photos []Photo) (string, float64) {
	if ov != nil && ov.Cover != "" {
		for _, p := range photos {
			if strings.EqualFold(p.Filename, ov.Cover) {
				return p.Path, p.AspectRatio
			}
		}
	}
	if previous != nil && previous.Cover != "" {
		for _, p := range photos {
			if strings.EqualFold(p.Path, previous.Cover) || strings.EqualFold(p.PathLarge, previous.Cover) {
				return previous.Cover, p.AspectRatio
			}
		}
	}
	if len(photos) > 0 {
		return photos[0].Path, photos[0].AspectRatio
	}
	return "", 0
}

// resolveDate picks the album date: previous manifest, else override, else
// the first merged photo with a parseable EXIF date. The result is always
// a plain YYYY-MM-DD string.
func resolveDate(previous *Album, ov *Overrides, photos []Photo) string {
	if previous != nil && previous.Date != "" {
		return previous.Date
	}
	if ov != nil && ov.Date != "" {
		if d := NormalizeDate(ov.Date); d != "" {
			return d
		}
		return ov.Date
	}
	for _, p := range photos {
		if p.Exif == nil {
			continue
		}
		if d := NormalizeDate(p.Exif.DateTaken); d != "" {
			return d
		}
	}
	return ""
}

// resolveDateBounds yields the min/max normalized photo dates, with the
// previous manifest's values winning when already set.
func resolveDateBounds(previous *Album, photos []Photo) (string, string) {
	var min, max string
	for _, p := range photos {
		if p.Exif == nil {
			continue
		}
		d := NormalizeDate(p.Exif.DateTaken)
		if d == "" {
			continue
		}
		if min == "" || d < min {
			min = d
		}
		if max == "" || d > max {
			max = d
		}
	}
	if previous != nil && previous.StartDate != "" {
		min = previous.StartDate
	}
	if previous != nil && previous.EndDate != "" {
		max = previous.EndDate
	}
	return min, max
}

// resolveTags unions the curated tags (previous manifest's, or the
// override's on first sight) with auto-derived camera-brand tags.
func resolveTags(previous *Album, ov *Overrides, photos []Photo) []string {
	var base []string
	if previous != nil {
		base = previous.Tags
	} else if ov != nil {
		base = ov.Tags
	}

	seen := map[string]bool{}
	tags := []string{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		k := strings.ToLower(t)
		if !seen[k] {
			seen[k] = true
			tags = append(tags, t)
		}
	}
	for _, t := range base {
		add(t)
	}
	for _, t := range cameraTags(photos) {
		add(t)
	}
	return tags
}

// cameraTags derives one brand tag per distinct camera string: its first
// word, lowercased.
func cameraTags(photos []Photo) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range photos {
		if p.Exif == nil || p.Exif.Camera == "" {
			continue
		}
		if seen[p.Exif.Camera] {
			continue
		}
		seen[p.Exif.Camera] = true
		out = append(out, strings.ToLower(strings.Fields(p.Exif.Camera)[0]))
	}
	return out
}
