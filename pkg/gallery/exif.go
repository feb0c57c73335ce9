package gallery

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"k8s.io/klog/v2"
)

var exifDate = "2006:01:02 15:04:05"

// Metadata is the flat record of embedded tags extracted from one source
// image. Zero values mean the tag was absent.
type Metadata struct {
	Make         string
	Model        string
	Lens         string
	Aperture     float64
	ShutterSpeed float64
	FocalLength  float64
	ISO          int64
	DateTime     string // raw EXIF-format timestamp
	Copyright    string
	Artist       string
	Description  string
	Width        int
	Height       int
	Lat          *float64
	Lng          *float64
}

// MetadataExtractor parses embedded tags from a source image file.
// Extraction failure for a single file is tolerated by callers and treated
// as an empty record.
type MetadataExtractor interface {
	Extract(path string) (*Metadata, error)
	Close() error
}

// NewExtractor returns an exiftool-backed extractor, or a pure-Go fallback
// when no exiftool binary is installed.
func NewExtractor() MetadataExtractor {
	et, err := exiftool.NewExiftool()
	if err != nil {
		klog.Warningf("exiftool unavailable, falling back to built-in EXIF decoder: %v", err)
		return &goexifExtractor{}
	}
	return &exiftoolExtractor{et: et}
}

type exiftoolExtractor struct {
	et *exiftool.Exiftool
}

func (x *exiftoolExtractor) Extract(path string) (*Metadata, error) {
	fis := x.et.ExtractMetadata(path)
	fi := fis[0]
	m := &Metadata{}
	var err error

	if fi.Err != nil {
		return nil, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	m.Make, err = fi.GetString("Make")
	if err != nil {
		klog.V(1).Infof("unable to get make for %s: %v", path, err)
	}

	m.Model, err = fi.GetString("Model")
	if err != nil {
		klog.V(1).Infof("unable to get model for %s: %v", path, err)
	}

	m.Lens, _ = fi.GetString("LensModel")

	if w, err := fi.GetInt("ImageWidth"); err == nil {
		m.Width = int(w)
	}
	if h, err := fi.GetInt("ImageHeight"); err == nil {
		m.Height = int(h)
	}

	m.ISO, err = fi.GetInt("ISO")
	if err != nil {
		klog.V(1).Infof("unable to get ISO for %s: %v", path, err)
	}

	m.Aperture, err = fi.GetFloat("ApertureValue")
	if err != nil {
		klog.V(1).Infof("unable to get aperture for %s: %v", path, err)
	}

	m.ShutterSpeed, err = fi.GetFloat("ExposureTime")
	if err != nil {
		klog.V(1).Infof("unable to get shutter speed for %s: %v", path, err)
	}

	if fl, err := fi.GetFloat("FocalLength"); err == nil {
		m.FocalLength = fl
	} else if s, err := fi.GetString("FocalLength"); err == nil {
		// exiftool may render focal length as "50.0 mm"
		m.FocalLength, _ = strconv.ParseFloat(strings.Fields(s)[0], 64)
	}

	m.Copyright, _ = fi.GetString("Copyright")
	m.Artist, _ = fi.GetString("Artist")
	m.Description, _ = fi.GetString("ImageDescription")
	m.DateTime, _ = fi.GetString("DateTimeOriginal")

	m.Lat = gpsAxis(fi, "GPSLatitude", "GPSLatitudeRef")
	m.Lng = gpsAxis(fi, "GPSLongitude", "GPSLongitudeRef")

	return m, nil
}

func (x *exiftoolExtractor) Close() error {
	return x.et.Close()
}

// gpsAxis resolves one GPS axis: a decimal value is preferred when exiftool
// yields one directly, else the DMS string form is converted with its
// hemisphere reference. Absence yields nil, never zero.
func gpsAxis(fi exiftool.FileMetadata, key, refKey string) *float64 {
	ref, _ := fi.GetString(refKey)

	if v, err := fi.GetFloat(key); err == nil {
		d := applyHemisphere(v, ref)
		return &d
	}

	s, err := fi.GetString(key)
	if err != nil {
		return nil
	}
	v, err := parseDMS(s)
	if err != nil {
		klog.V(1).Infof("unparseable %s %q: %v", key, s, err)
		return nil
	}
	d := applyHemisphere(v, ref)
	return &d
}

// parseDMS converts a degrees/minutes/seconds rendering such as
// `43 deg 28' 2.81"` to an unsigned decimal value.
func parseDMS(s string) (float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !((r >= '0' && r <= '9') || r == '.')
	})
	nums := make([]float64, 0, 3)
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		nums = append(nums, v)
	}
	if len(nums) == 0 {
		return 0, fmt.Errorf("no numeric components in %q", s)
	}
	d := nums[0]
	if len(nums) > 1 {
		d += nums[1] / 60
	}
	if len(nums) > 2 {
		d += nums[2] / 3600
	}
	return d, nil
}

// applyHemisphere negates a decimal coordinate for southern or western
// references.
func applyHemisphere(v float64, ref string) float64 {
	r := strings.ToUpper(strings.TrimSpace(ref))
	if strings.HasPrefix(r, "S") || strings.HasPrefix(r, "W") {
		return -math.Abs(v)
	}
	return v
}

// goexifExtractor decodes EXIF directly from the file. JPEG and TIFF carry
// EXIF; other formats yield an empty record.
type goexifExtractor struct{}

func (g *goexifExtractor) Extract(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	m := &Metadata{}
	x, err := exif.Decode(f)
	if err != nil {
		// no EXIF data is not an error for the caller
		klog.V(1).Infof("no exif data in %s: %v", path, err)
		return m, nil
	}

	m.Make = tagString(x, exif.Make)
	m.Model = tagString(x, exif.Model)
	m.Lens = tagString(x, exif.FieldName("LensModel"))
	m.Copyright = tagString(x, exif.Copyright)
	m.Artist = tagString(x, exif.Artist)
	m.Description = tagString(x, exif.ImageDescription)
	m.Aperture = tagRat(x, exif.FNumber)
	m.ShutterSpeed = tagRat(x, exif.ExposureTime)
	m.FocalLength = tagRat(x, exif.FocalLength)
	m.Width = int(tagInt(x, exif.PixelXDimension))
	m.Height = int(tagInt(x, exif.PixelYDimension))
	m.ISO = tagInt(x, exif.ISOSpeedRatings)
	m.DateTime = tagString(x, exif.DateTimeOriginal)

	if lat, lng, err := x.LatLong(); err == nil {
		m.Lat, m.Lng = &lat, &lng
	}

	return m, nil
}

func (g *goexifExtractor) Close() error { return nil }

func tagString(x *exif.Exif, name exif.FieldName) string {
	t, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := t.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func tagInt(x *exif.Exif, name exif.FieldName) int64 {
	t, err := x.Get(name)
	if err != nil {
		return 0
	}
	v, err := t.Int64(0)
	if err != nil {
		return 0
	}
	return v
}

func tagRat(x *exif.Exif, name exif.FieldName) float64 {
	t, err := x.Get(name)
	if err != nil {
		return 0
	}
	if t.Format() == tiff.RatVal {
		num, den, err := t.Rat2(0)
		if err != nil || den == 0 {
			return 0
		}
		return float64(num) / float64(den)
	}
	v, err := t.Int64(0)
	if err != nil {
		return 0
	}
	return float64(v)
}

// FormatShutter renders an exposure time: whole seconds as "2s",
// fractional as "1/250s".
func FormatShutter(v float64) string {
	if v <= 0 {
		return ""
	}
	if v >= 1 {
		return fmt.Sprintf("%gs", v)
	}
	return fmt.Sprintf("1/%ds", int(math.Round(1/v)))
}

// FormatAperture renders an f-stop as "f/2.8".
func FormatAperture(v float64) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("f/%g", v)
}

// FormatFocal renders a focal length rounded to whole millimeters.
func FormatFocal(v float64) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("%dmm", int(math.Round(v)))
}

// FormatCamera joins make and model, or yields "" unless both are present.
func FormatCamera(make, model string) string {
	if make == "" || model == "" {
		return ""
	}
	return make + " " + model
}

// NormalizeDate reduces a timestamp in any of the persisted or EXIF forms
// to a plain YYYY-MM-DD calendar date. Unknown forms yield "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{
		exifDate,
		"2006:01:02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
