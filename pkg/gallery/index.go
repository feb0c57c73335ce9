package gallery

import (
	"sort"

	"k8s.io/klog/v2"
)

// indexPin holds user-entered values lifted from a previous Album Index
// entry that must survive the rebuild.
type indexPin struct {
	cover       string
	coverAspect float64
	location    *Location
	favorite    *bool
}

// extractPins collects pinned values from the previous index, keyed by
// slug: a non-empty cover (together with its aspect ratio), a location with
// finite coordinates, and an explicitly boolean favorite flag.
func extractPins(prev *AlbumIndex) map[string]indexPin {
	pins := map[string]indexPin{}
	if prev == nil {
		return pins
	}
	for _, e := range prev.Albums {
		p := indexPin{}
		if e.Cover != "" {
			p.cover = e.Cover
			p.coverAspect = e.CoverAspectRatio
		}
		if finiteCoordinates(e.PrimaryLocation) {
			p.location = e.PrimaryLocation
		}
		p.favorite = e.IsFavorite
		if p.cover != "" || p.location != nil || p.favorite != nil {
			pins[e.Slug] = p
		}
	}
	return pins
}

// RebuildIndex derives the Album Index from the reconciled manifests,
// overlaying pins retained from the previous index. The returned map names
// albums whose manifest isFavorite differs from the pinned index value and
// must be rewritten so the two stores do not diverge.
func RebuildIndex(prev *AlbumIndex, albums []*Album) (*AlbumIndex, map[string]bool) {
	pins := extractPins(prev)
	fixups := map[string]bool{}

	summaries := make([]AlbumSummary, 0, len(albums))
	for _, a := range albums {
		if len(a.Photos) == 0 {
			klog.Warningf("excluding empty album %q from index", a.Slug)
			continue
		}
		s := a.Summary()

		pin, ok := pins[a.Slug]
		if !ok {
			summaries = append(summaries, s)
			continue
		}
		if pin.cover != "" {
			s.Cover = pin.cover
			s.CoverAspectRatio = pin.coverAspect
		}
		if pin.location != nil {
			s.PrimaryLocation = pin.location
		}
		if pin.favorite != nil {
			s.IsFavorite = pin.favorite
			if a.IsFavorite == nil || *a.IsFavorite != *pin.favorite {
				fixups[a.Slug] = *pin.favorite
			}
		}
		summaries = append(summaries, s)
	}

	sortSummaries(summaries)
	return &AlbumIndex{Albums: summaries}, fixups
}

// sortSummaries orders by date descending (dates are normalized
// YYYY-MM-DD, so lexicographic works), dated entries before undated, then
// title ascending.
func sortSummaries(ss []AlbumSummary) {
	sort.SliceStable(ss, func(i, j int) bool {
		a, b := ss[i], ss[j]
		if a.Date != b.Date {
			if a.Date == "" {
				return false
			}
			if b.Date == "" {
				return true
			}
			return a.Date > b.Date
		}
		return a.Title < b.Title
	})
}

// BuildGeoIndex derives one map pin per geolocatable album: the arithmetic
// mean of its photos' coordinates with their date range, else the location
// config default, else the album's own primary location. Albums with no
// coordinate source anywhere are omitted, never emitted with nulls.
func BuildGeoIndex(albums []*Album, cfg LocationConfig) *GeoIndex {
	entries := []GeoEntry{}
	for _, a := range albums {
		e, ok := geoEntry(a, cfg)
		if !ok {
			klog.V(1).Infof("no coordinates for %q, omitting from geo index", a.Slug)
			continue
		}
		entries = append(entries, e)
	}
	return &GeoIndex{Albums: entries}
}

func geoEntry(a *Album, cfg LocationConfig) (GeoEntry, bool) {
	e := GeoEntry{
		Slug:  a.Slug,
		Title: a.Title,
		Tags:  a.Tags,
	}

	var sumLat, sumLng float64
	var minDate, maxDate string
	n := 0
	for _, p := range a.Photos {
		if p.Lat == nil || p.Lng == nil {
			continue
		}
		sumLat += *p.Lat
		sumLng += *p.Lng
		n++
		if p.Exif == nil {
			continue
		}
		d := NormalizeDate(p.Exif.DateTaken)
		if d == "" {
			continue
		}
		if minDate == "" || d < minDate {
			minDate = d
		}
		if maxDate == "" || d > maxDate {
			maxDate = d
		}
	}

	if n > 0 {
		e.Lat = sumLat / float64(n)
		e.Lng = sumLng / float64(n)
		e.PhotoCount = n
		if minDate != "" {
			e.DateRange = &DateRange{Start: minDate, End: maxDate}
		}
		return e, true
	}

	// a fallback point represents the whole album
	e.PhotoCount = a.Count

	if le, ok := cfg[a.Slug]; ok && le.DefaultLocation.Lat != nil && le.DefaultLocation.Lng != nil {
		e.Lat = *le.DefaultLocation.Lat
		e.Lng = *le.DefaultLocation.Lng
		return e, true
	}

	if finiteCoordinates(a.PrimaryLocation) {
		e.Lat = *a.PrimaryLocation.Lat
		e.Lng = *a.PrimaryLocation.Lng
		return e, true
	}

	return GeoEntry{}, false
}
