package gallery

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// VariantSpec is one resize/encode preset.
type VariantSpec struct {
	Name     string
	Suffix   string // appended to the file base name
	LongSide int    // longest-side pixel target, never upscaled past source
	Quality  int    // JPEG quality
}

// Variants are the fixed presets every photo is rendered at.
var Variants = []VariantSpec{
	{Name: "large", Suffix: "_large", LongSide: 1800, Quality: 80},
	{Name: "small", Suffix: "_small", LongSide: 800, Quality: 80},
	{Name: "blur", Suffix: "_blur", LongSide: 40, Quality: 40},
}

// VariantGenerator produces one encoded rendition of a source image.
type VariantGenerator interface {
	Generate(src, dest string, spec VariantSpec) error
}

// NewVariantGenerator returns the bild-backed implementation.
func NewVariantGenerator() VariantGenerator {
	return &bildGenerator{}
}

type bildGenerator struct{}

func (b *bildGenerator) Generate(src, dest string, spec VariantSpec) error {
	img, err := imgio.Open(src)
	if err != nil {
		return fmt.Errorf("imgio.Open: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	x, y := scaleToLongSide(img.Bounds().Dx(), img.Bounds().Dy(), spec.LongSide)
	klog.V(1).Infof("creating %dx%d %s variant: %s", x, y, spec.Name, dest)

	rimg := transform.Resize(img, x, y, transform.Lanczos)
	if err := imgio.Save(dest, rimg, imgio.JPEGEncoder(spec.Quality)); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// scaleToLongSide fits w x h into target on the longest side, preserving
// aspect ratio and never scaling up.
func scaleToLongSide(w, h, target int) (int, int) {
	long := w
	if h > w {
		long = h
	}
	if long <= target || long == 0 {
		return w, h
	}
	scale := float64(target) / float64(long)
	x := int(float64(w) * scale)
	y := int(float64(h) * scale)
	if x < 1 {
		x = 1
	}
	if y < 1 {
		y = 1
	}
	return x, y
}

// copyOriginal places the source image at its web destination, skipping the
// copy when the existing file matches by size and is not older than the
// source.
func copyOriginal(src, dest string) error {
	sst, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	dst, err := os.Stat(dest)
	updated := false

	if err != nil {
		updated = true
		klog.V(1).Infof("updating %s: does not exist", dest)
	}

	if err == nil && sst.Size() != dst.Size() {
		updated = true
		klog.Infof("updating %s: size mismatch", dest)
	}

	if err == nil && sst.ModTime().After(dst.ModTime()) {
		updated = true
		klog.Infof("updating %s: source newer", dest)
	}

	if !updated {
		return nil
	}

	if err := copy.Copy(src, dest); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// decodeDimensions reads pixel dimensions straight from the image header,
// for sources whose embedded metadata lacks them.
func decodeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to decode: %w", err)
	}
	return ic.Width, ic.Height, nil
}
