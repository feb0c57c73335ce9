package gallery

import (
	"testing"
)

func TestResolveLocation(t *testing.T) {
	t.Run("no sources yields a named placeholder with null coordinates", func(t *testing.T) {
		t.Parallel()
		got := ResolveLocation("trip", "Trip", LocationConfig{}, nil)
		if got.Name != "Trip" || got.Lat != nil || got.Lng != nil {
			t.Errorf("got %+v, want placeholder {Trip nil nil}", got)
		}
	})

	t.Run("config default applies when no manual pin exists", func(t *testing.T) {
		t.Parallel()
		cfg := LocationConfig{
			"trip": {
				AlbumSlug:       "trip",
				AlbumTitle:      "Alpine Trip",
				DefaultLocation: Coordinates{Lat: f64(46.5), Lng: f64(8.0)},
			},
		}
		got := ResolveLocation("trip", "Trip", cfg, nil)
		if !got.HasCoordinates() || *got.Lat != 46.5 || *got.Lng != 8.0 {
			t.Fatalf("config default not applied: %+v", got)
		}
		if got.Name != "Alpine Trip" {
			t.Errorf("name = %q, want config title", got.Name)
		}
	})

	t.Run("manual pin beats config default", func(t *testing.T) {
		t.Parallel()
		cfg := LocationConfig{
			"trip": {AlbumSlug: "trip", DefaultLocation: Coordinates{Lat: f64(1), Lng: f64(2)}},
		}
		prev := &Location{Name: "Pinned", Lat: f64(9), Lng: f64(8)}
		got := ResolveLocation("trip", "Trip", cfg, prev)
		if *got.Lat != 9 || *got.Lng != 8 || got.Name != "Pinned" {
			t.Errorf("manual pin lost: %+v", got)
		}
	})

	t.Run("previous location without coordinates is not a pin", func(t *testing.T) {
		t.Parallel()
		prev := &Location{Name: "Trip"}
		cfg := LocationConfig{
			"trip": {AlbumSlug: "trip", DefaultLocation: Coordinates{Lat: f64(1), Lng: f64(2)}},
		}
		got := ResolveLocation("trip", "Trip", cfg, prev)
		if !got.HasCoordinates() || *got.Lat != 1 {
			t.Errorf("placeholder blocked config default: %+v", got)
		}
	})

	t.Run("half-set config coordinates do not apply", func(t *testing.T) {
		t.Parallel()
		cfg := LocationConfig{
			"trip": {AlbumSlug: "trip", DefaultLocation: Coordinates{Lat: f64(1)}},
		}
		got := ResolveLocation("trip", "Trip", cfg, nil)
		if got.HasCoordinates() {
			t.Errorf("half-set default applied: %+v", got)
		}
	})
}

func TestEnsureLocationEntry(t *testing.T) {
	t.Parallel()

	cfg := LocationConfig{}
	if !EnsureLocationEntry(cfg, "trip", "Trip") {
		t.Fatal("first sight should add an entry")
	}
	e, ok := cfg["trip"]
	if !ok || e.AlbumSlug != "trip" || e.AlbumTitle != "Trip" {
		t.Fatalf("entry = %+v", e)
	}
	if e.DefaultLocation.Lat != nil || e.DefaultLocation.Lng != nil {
		t.Errorf("new entry must start with null coordinates")
	}

	// user fills in coordinates later; re-running must not touch them
	cfg["trip"] = LocationEntry{AlbumSlug: "trip", AlbumTitle: "Trip", DefaultLocation: Coordinates{Lat: f64(1), Lng: f64(2)}}
	if EnsureLocationEntry(cfg, "trip", "Renamed") {
		t.Error("existing entry reported as changed")
	}
	if *cfg["trip"].DefaultLocation.Lat != 1 {
		t.Error("existing entry overwritten")
	}
}
