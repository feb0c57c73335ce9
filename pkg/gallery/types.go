package gallery

// Exif is the per-photo camera metadata block. Once any field has been
// populated in a persisted manifest the whole block is treated as
// user-curated and survives re-scans verbatim.
type Exif struct {
	Camera       string `json:"camera,omitempty"`
	Lens         string `json:"lens,omitempty"`
	Aperture     string `json:"aperture,omitempty"`
	ShutterSpeed string `json:"shutterSpeed,omitempty"`
	ISO          string `json:"iso,omitempty"`
	FocalLength  string `json:"focalLength,omitempty"`
	DateTaken    string `json:"dateTaken,omitempty"`
	Copyright    string `json:"copyright,omitempty"`
	Artist       string `json:"artist,omitempty"`
	Description  string `json:"description,omitempty"`
}

// IsEmpty reports whether no field carries a value.
func (e *Exif) IsEmpty() bool {
	if e == nil {
		return true
	}
	return *e == Exif{}
}

// Photo is one source image's derived record within an album manifest.
type Photo struct {
	Filename    string  `json:"filename"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	AspectRatio float64 `json:"aspectRatio"`

	// Web-relative variant paths, forward-slash separated.
	Path      string `json:"path"`
	PathLarge string `json:"pathLarge"`
	PathSmall string `json:"pathSmall"`
	PathBlur  string `json:"pathBlur"`

	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`

	Exif *Exif `json:"exif,omitempty"`
}

// Location is an album-level geographic point. Nil coordinates mean "no
// location known"; zero is a valid coordinate, not a sentinel.
type Location struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// HasCoordinates reports whether both axes carry a value.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Lat != nil && l.Lng != nil
}

// Album is the persisted manifest for one source directory.
type Album struct {
	ID               string    `json:"id"`
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	Tags             []string  `json:"tags"`
	Date             string    `json:"date,omitempty"`
	StartDate        string    `json:"startDate,omitempty"`
	EndDate          string    `json:"endDate,omitempty"`
	Cover            string    `json:"cover,omitempty"`
	CoverAspectRatio float64   `json:"coverAspectRatio,omitempty"`
	Count            int       `json:"count"`
	IsFavorite       *bool     `json:"isFavorite,omitempty"`
	PrimaryLocation  *Location `json:"primaryLocation,omitempty"`
	Photos           []Photo   `json:"photos"`
}

// AlbumSummary is an Album without its photos, as held in the Album Index.
type AlbumSummary struct {
	ID               string    `json:"id"`
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	Tags             []string  `json:"tags"`
	Date             string    `json:"date,omitempty"`
	StartDate        string    `json:"startDate,omitempty"`
	EndDate          string    `json:"endDate,omitempty"`
	Cover            string    `json:"cover,omitempty"`
	CoverAspectRatio float64   `json:"coverAspectRatio,omitempty"`
	Count            int       `json:"count"`
	IsFavorite       *bool     `json:"isFavorite,omitempty"`
	PrimaryLocation  *Location `json:"primaryLocation,omitempty"`
}

// Summary projects an Album into its index form.
func (a *Album) Summary() AlbumSummary {
	return AlbumSummary{
		ID:               a.ID,
		Slug:             a.Slug,
		Title:            a.Title,
		Description:      a.Description,
		Tags:             a.Tags,
		Date:             a.Date,
		StartDate:        a.StartDate,
		EndDate:          a.EndDate,
		Cover:            a.Cover,
		CoverAspectRatio: a.CoverAspectRatio,
		Count:            a.Count,
		IsFavorite:       a.IsFavorite,
		PrimaryLocation:  a.PrimaryLocation,
	}
}

// AlbumIndex is the persisted global index of album summaries.
type AlbumIndex struct {
	Albums []AlbumSummary `json:"albums"`
}

// DateRange spans the normalized dates of an album's geotagged photos.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GeoEntry is one album's pin in the Geo Index: the arithmetic mean of its
// photos' coordinates, or a configured fallback point.
type GeoEntry struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	PhotoCount int        `json:"photoCount"`
	Tags       []string   `json:"tags,omitempty"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
}

// GeoIndex is the persisted map index, one entry per geolocatable album.
type GeoIndex struct {
	Albums []GeoEntry `json:"albums"`
}

// Coordinates is a nullable lat/lng pair in the location config.
type Coordinates struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Accuracy string   `json:"accuracy,omitempty"`
}

// LocationEntry is one album's user-maintained default location. Entries
// are created with null coordinates and never overwritten once present.
type LocationEntry struct {
	AlbumSlug       string      `json:"albumSlug"`
	AlbumTitle      string      `json:"albumTitle"`
	DefaultLocation Coordinates `json:"defaultLocation"`
}

// LocationConfig is the persisted location-config document, keyed by slug.
type LocationConfig map[string]LocationEntry

// Overrides is the optional per-album metadata file read from the source
// directory. Nil pointer fields mean "not provided".
type Overrides struct {
	Title       string   `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Date        string   `json:"date,omitempty"`
	Cover       string   `json:"cover,omitempty"`
	IsFavorite  *bool    `json:"isFavorite,omitempty"`
}
