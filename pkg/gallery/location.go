package gallery

import (
	"math"
)

// ResolveLocation picks an album's primary location. First applicable wins:
//
//  1. the previous manifest's location when both coordinates are present —
//     once valid coordinates exist they are a manual pin, never recomputed
//  2. the location config's default for this slug
//  3. a named placeholder with null coordinates
//
// Per-photo GPS is deliberately not consulted here; it feeds the Geo Index
// instead. The primary location is a curated point, not a centroid.
func ResolveLocation(slug, title string, cfg LocationConfig, prev *Location) *Location {
	if prev.HasCoordinates() {
		return prev
	}

	if e, ok := cfg[slug]; ok && e.DefaultLocation.Lat != nil && e.DefaultLocation.Lng != nil {
		name := e.AlbumTitle
		if name == "" {
			name = title
		}
		return &Location{Name: name, Lat: e.DefaultLocation.Lat, Lng: e.DefaultLocation.Lng}
	}

	return &Location{Name: title}
}

// EnsureLocationEntry adds a null-coordinate config entry the first time a
// slug is seen. Existing entries are never touched; the config is additive
// only. Reports whether the table changed.
func EnsureLocationEntry(cfg LocationConfig, slug, title string) bool {
	if _, ok := cfg[slug]; ok {
		return false
	}
	cfg[slug] = LocationEntry{
		AlbumSlug:  slug,
		AlbumTitle: title,
	}
	return true
}

// finiteCoordinates reports whether a location has two usable numeric
// coordinates (NaN and infinities in hand-edited documents do not count).
func finiteCoordinates(l *Location) bool {
	if !l.HasCoordinates() {
		return false
	}
	return !math.IsNaN(*l.Lat) && !math.IsInf(*l.Lat, 0) &&
		!math.IsNaN(*l.Lng) && !math.IsInf(*l.Lng, 0)
}
