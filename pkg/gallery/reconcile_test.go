package gallery

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func f64(v float64) *float64 { return &v }
func strp(s string) *string  { return &s }
func boolp(b bool) *bool     { return &b }

func testPhoto(name, slug string) Photo {
	base := name[:len(name)-len(".jpg")]
	return Photo{
		Filename:    name,
		Width:       3000,
		Height:      2000,
		AspectRatio: 1.5,
		Path:        webPath("photos", slug, name),
		PathLarge:   webPath("photos", slug, base+"_large.jpg"),
		PathSmall:   webPath("photos", slug, base+"_small.jpg"),
		PathBlur:    webPath("photos", slug, base+"_blur.jpg"),
	}
}

func TestReconcilePhotoMerge(t *testing.T) {
	t.Run("previous GPS survives when fresh metadata has none", func(t *testing.T) {
		t.Parallel()
		fresh := testPhoto("a.jpg", "trip")
		prev := testPhoto("a.jpg", "trip")
		prev.Lat = f64(10)
		prev.Lng = f64(20)

		merged := Reconcile("trip", []Photo{fresh}, &Album{Slug: "trip", Photos: []Photo{prev}}, nil, nil)

		if got := merged.Photos[0]; got.Lat == nil || *got.Lat != 10 || got.Lng == nil || *got.Lng != 20 {
			t.Errorf("GPS not preserved: lat=%v lng=%v", got.Lat, got.Lng)
		}
	})

	t.Run("fresh GPS overwrites previous when present", func(t *testing.T) {
		t.Parallel()
		fresh := testPhoto("a.jpg", "trip")
		fresh.Lat = f64(48.8)
		fresh.Lng = f64(2.3)
		prev := testPhoto("a.jpg", "trip")
		prev.Lat = f64(10)
		prev.Lng = f64(20)

		merged := Reconcile("trip", []Photo{fresh}, &Album{Slug: "trip", Photos: []Photo{prev}}, nil, nil)

		if got := merged.Photos[0]; *got.Lat != 48.8 || *got.Lng != 2.3 {
			t.Errorf("fresh GPS not taken: lat=%v lng=%v", *got.Lat, *got.Lng)
		}
	})

	t.Run("non-empty previous EXIF block survives verbatim", func(t *testing.T) {
		t.Parallel()
		fresh := testPhoto("a.jpg", "trip")
		fresh.Exif = &Exif{Description: "fresh scan text", Camera: "Canon EOS R5"}
		prev := testPhoto("a.jpg", "trip")
		prev.Exif = &Exif{Description: "Custom caption"}

		merged := Reconcile("trip", []Photo{fresh}, &Album{Slug: "trip", Photos: []Photo{prev}}, nil, nil)

		if diff := cmp.Diff(prev.Exif, merged.Photos[0].Exif); diff != "" {
			t.Errorf("EXIF not preserved (-want +got):\n%s", diff)
		}
	})

	t.Run("empty previous EXIF is replaced by fresh", func(t *testing.T) {
		t.Parallel()
		fresh := testPhoto("a.jpg", "trip")
		fresh.Exif = &Exif{Camera: "Canon EOS R5"}
		prev := testPhoto("a.jpg", "trip")

		merged := Reconcile("trip", []Photo{fresh}, &Album{Slug: "trip", Photos: []Photo{prev}}, nil, nil)

		if merged.Photos[0].Exif == nil || merged.Photos[0].Exif.Camera != "Canon EOS R5" {
			t.Errorf("fresh EXIF not taken: %+v", merged.Photos[0].Exif)
		}
	})

	t.Run("geometry always comes from the fresh scan", func(t *testing.T) {
		t.Parallel()
		fresh := testPhoto("a.jpg", "trip")
		fresh.Width, fresh.Height, fresh.AspectRatio = 4000, 3000, 4.0/3.0
		prev := testPhoto("a.jpg", "trip")

		merged := Reconcile("trip", []Photo{fresh}, &Album{Slug: "trip", Photos: []Photo{prev}}, nil, nil)

		if got := merged.Photos[0]; got.Width != 4000 || got.Height != 3000 {
			t.Errorf("geometry = %dx%d, want 4000x3000", got.Width, got.Height)
		}
	})

	t.Run("photo removed from disk is retained after fresh photos", func(t *testing.T) {
		t.Parallel()
		fresh := testPhoto("a.jpg", "trip")
		gone := testPhoto("removed.jpg", "trip")
		gone.Exif = &Exif{Description: "still here"}

		merged := Reconcile("trip", []Photo{fresh}, &Album{Slug: "trip", Photos: []Photo{gone}}, nil, nil)

		if merged.Count != 2 || len(merged.Photos) != 2 {
			t.Fatalf("count = %d, want 2", merged.Count)
		}
		if diff := cmp.Diff(gone, merged.Photos[1]); diff != "" {
			t.Errorf("orphan altered (-want +got):\n%s", diff)
		}
	})

	t.Run("filename casing drift still matches", func(t *testing.T) {
		t.Parallel()
		fresh := testPhoto("IMG_1.jpg", "trip")
		fresh.Path = "/photos/trip/IMG_1.jpg"
		fresh.PathLarge = "/photos/trip/IMG_1_large.jpg"
		prev := testPhoto("img_1.jpg", "trip")
		prev.Lat = f64(5)
		prev.Lng = f64(6)

		merged := Reconcile("trip", []Photo{fresh}, &Album{Slug: "trip", Photos: []Photo{prev}}, nil, nil)

		if len(merged.Photos) != 1 {
			t.Fatalf("casing drift produced %d photos, want 1", len(merged.Photos))
		}
		if merged.Photos[0].Lat == nil || *merged.Photos[0].Lat != 5 {
			t.Errorf("previous GPS lost across casing drift")
		}
	})
}

func TestReconcileAlbumFields(t *testing.T) {
	t.Run("override cover wins when it names a merged photo", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		b := testPhoto("b.jpg", "trip")
		b.AspectRatio = 0.75

		merged := Reconcile("trip", []Photo{a, b}, nil, &Overrides{Cover: "b.jpg"}, nil)

		if merged.Cover != b.Path {
			t.Errorf("cover = %q, want %q", merged.Cover, b.Path)
		}
		if merged.CoverAspectRatio != 0.75 {
			t.Errorf("coverAspectRatio = %v, want 0.75", merged.CoverAspectRatio)
		}
	})

	t.Run("previous cover kept while its photo is still present", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		b := testPhoto("b.jpg", "trip")
		prev := &Album{Slug: "trip", Cover: b.Path, Photos: []Photo{a, b}}

		merged := Reconcile("trip", []Photo{a, b}, prev, nil, nil)

		if merged.Cover != b.Path {
			t.Errorf("cover = %q, want %q", merged.Cover, b.Path)
		}
	})

	t.Run("stale previous cover falls back to first photo", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		prev := &Album{Slug: "trip", Cover: "/photos/trip/deleted.jpg"}

		merged := Reconcile("trip", []Photo{a}, prev, nil, nil)

		if merged.Cover != a.Path {
			t.Errorf("cover = %q, want first photo %q", merged.Cover, a.Path)
		}
	})

	t.Run("date chain: previous, then override, then EXIF", func(t *testing.T) {
		t.Parallel()
		p := testPhoto("a.jpg", "trip")
		p.Exif = &Exif{DateTaken: "2023:06:15 10:30:00"}

		got := Reconcile("trip", []Photo{p}, nil, nil, nil)
		if got.Date != "2023-06-15" {
			t.Errorf("EXIF date = %q, want 2023-06-15", got.Date)
		}

		got = Reconcile("trip", []Photo{p}, nil, &Overrides{Date: "2024-01-01"}, nil)
		if got.Date != "2024-01-01" {
			t.Errorf("override date = %q, want 2024-01-01", got.Date)
		}

		prev := &Album{Slug: "trip", Date: "2022-12-31"}
		got = Reconcile("trip", []Photo{p}, prev, &Overrides{Date: "2024-01-01"}, nil)
		if got.Date != "2022-12-31" {
			t.Errorf("previous date = %q, want 2022-12-31", got.Date)
		}
	})

	t.Run("start and end dates span merged photos", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		a.Exif = &Exif{DateTaken: "2023:06:15 10:30:00"}
		b := testPhoto("b.jpg", "trip")
		b.Exif = &Exif{DateTaken: "2023:06:01 08:00:00"}

		got := Reconcile("trip", []Photo{a, b}, nil, nil, nil)
		if got.StartDate != "2023-06-01" || got.EndDate != "2023-06-15" {
			t.Errorf("range = %q..%q, want 2023-06-01..2023-06-15", got.StartDate, got.EndDate)
		}
	})

	t.Run("tags union curated with camera brands, deduplicated", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		a.Exif = &Exif{Camera: "Canon EOS R5"}
		b := testPhoto("b.jpg", "trip")
		b.Exif = &Exif{Camera: "Canon EOS R6"}
		prev := &Album{Slug: "trip", Tags: []string{"alps", "canon"}}

		got := Reconcile("trip", []Photo{a, b}, prev, nil, nil)
		want := []string{"alps", "canon"}
		if diff := cmp.Diff(want, got.Tags); diff != "" {
			t.Errorf("tags (-want +got):\n%s", diff)
		}
	})

	t.Run("override tags only seed a first-run album", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		ov := &Overrides{Tags: []string{"hiking"}}

		got := Reconcile("trip", []Photo{a}, nil, ov, nil)
		if diff := cmp.Diff([]string{"hiking"}, got.Tags); diff != "" {
			t.Errorf("first-run tags (-want +got):\n%s", diff)
		}

		prev := &Album{Slug: "trip", Tags: []string{"alps"}}
		got = Reconcile("trip", []Photo{a}, prev, ov, nil)
		if diff := cmp.Diff([]string{"alps"}, got.Tags); diff != "" {
			t.Errorf("later-run tags (-want +got):\n%s", diff)
		}
	})

	t.Run("favorite and description follow override then previous", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		prev := &Album{Slug: "trip", IsFavorite: boolp(true), Description: strp("old")}

		got := Reconcile("trip", []Photo{a}, prev, nil, nil)
		if got.IsFavorite == nil || !*got.IsFavorite {
			t.Errorf("previous favorite lost")
		}
		if got.Description == nil || *got.Description != "old" {
			t.Errorf("previous description lost")
		}

		ov := &Overrides{IsFavorite: boolp(false), Description: strp("new")}
		got = Reconcile("trip", []Photo{a}, prev, ov, nil)
		if got.IsFavorite == nil || *got.IsFavorite {
			t.Errorf("override favorite not applied")
		}
		if got.Description == nil || *got.Description != "new" {
			t.Errorf("override description not applied")
		}
	})

	t.Run("count always equals photo length", func(t *testing.T) {
		t.Parallel()
		a := testPhoto("a.jpg", "trip")
		gone := testPhoto("gone.jpg", "trip")

		got := Reconcile("trip", []Photo{a}, &Album{Slug: "trip", Photos: []Photo{gone}}, nil, nil)
		if got.Count != len(got.Photos) {
			t.Errorf("count = %d, photos = %d", got.Count, len(got.Photos))
		}
	})
}

func TestReconcileIdempotence(t *testing.T) {
	t.Parallel()

	a := testPhoto("a.jpg", "trip")
	a.Exif = &Exif{Camera: "Sony A7", DateTaken: "2024:02:10 09:00:00"}
	a.Lat = f64(10)
	a.Lng = f64(20)
	b := testPhoto("b.jpg", "trip")
	ov := &Overrides{Title: "Trip", Tags: []string{"travel"}, IsFavorite: boolp(true)}
	loc := &Location{Name: "Trip"}

	first := Reconcile("trip", []Photo{a, b}, nil, ov, loc)
	second := Reconcile("trip", []Photo{a, b}, first, ov, loc)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run diverged (-first +second):\n%s", diff)
	}
}
