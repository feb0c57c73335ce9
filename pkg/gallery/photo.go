package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// DefaultAspectRatio stands in when pixel dimensions are unavailable.
const DefaultAspectRatio = 1.5

// Builder derives one Photo record per source image: embedded metadata,
// pixel geometry, and the web-ready variant set.
type Builder struct {
	Extractor   MetadataExtractor
	Variants    VariantGenerator
	VariantRoot string
	Force       bool

	// counters for the run summary
	Generated atomic.Int64
	Reused    atomic.Int64
	Failed    atomic.Int64
}

// Build produces the Photo record for one source image. An unreadable
// source returns an error and the image is skipped for this run; metadata
// extraction failure degrades to an empty record. Individual variant
// failures are logged and do not abort the remaining variants.
func (b *Builder) Build(src, slug string) (Photo, error) {
	filename := filepath.Base(src)
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	meta, err := b.Extractor.Extract(src)
	if err != nil {
		klog.Warningf("metadata extraction failed for %s: %v", src, err)
		meta = &Metadata{}
	}

	width, height := meta.Width, meta.Height
	if width == 0 || height == 0 {
		width, height, err = decodeDimensions(src)
		if err != nil {
			klog.V(1).Infof("no dimensions for %s: %v", src, err)
			width, height = 0, 0
		}
	}

	aspect := DefaultAspectRatio
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}

	destDir := filepath.Join(b.VariantRoot, "photos", slug)
	if err := copyOriginal(src, filepath.Join(destDir, filename)); err != nil {
		return Photo{}, fmt.Errorf("copy original: %w", err)
	}

	for _, spec := range Variants {
		dest := filepath.Join(destDir, base+spec.Suffix+".jpg")
		if !b.Force {
			if st, err := os.Stat(dest); err == nil && st.Size() > 0 {
				klog.V(1).Infof("%s exists (%d bytes)", dest, st.Size())
				b.Reused.Add(1)
				continue
			}
		}
		if err := b.Variants.Generate(src, dest, spec); err != nil {
			klog.Errorf("%s variant failed for %s: %v", spec.Name, src, err)
			b.Failed.Add(1)
			continue
		}
		b.Generated.Add(1)
	}

	p := Photo{
		Filename:    filename,
		Width:       width,
		Height:      height,
		AspectRatio: aspect,
		Path:        webPath("photos", slug, filename),
		PathLarge:   webPath("photos", slug, base+"_large.jpg"),
		PathSmall:   webPath("photos", slug, base+"_small.jpg"),
		PathBlur:    webPath("photos", slug, base+"_blur.jpg"),
		Lat:         meta.Lat,
		Lng:         meta.Lng,
		Exif:        photoExif(meta),
	}

	return p, nil
}

// photoExif renders the extracted metadata into the persisted EXIF block,
// or nil when nothing was extracted.
func photoExif(m *Metadata) *Exif {
	e := &Exif{
		Camera:       FormatCamera(m.Make, m.Model),
		Lens:         m.Lens,
		Aperture:     FormatAperture(m.Aperture),
		ShutterSpeed: FormatShutter(m.ShutterSpeed),
		FocalLength:  FormatFocal(m.FocalLength),
		DateTaken:    m.DateTime,
		Copyright:    m.Copyright,
		Artist:       m.Artist,
		Description:  m.Description,
	}
	if m.ISO > 0 {
		e.ISO = strconv.FormatInt(m.ISO, 10)
	}
	if e.IsEmpty() {
		return nil
	}
	return e
}
