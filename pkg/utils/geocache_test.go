package utils

import (
	"testing"
)

func TestGeoCacheRoundTrip(t *testing.T) {
	cache, err := OpenGeoCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	loc := GeoLocation{Lat: 50.043, Lng: -5.655, City: "Porthcurno", Country: "GB", Org: "Example Carrier"}
	if err := cache.Put("192.0.2.1", loc); err != nil {
		t.Fatal(err)
	}

	got, ok := cache.Get("192.0.2.1")
	if !ok {
		t.Fatal("entry missing after Put")
	}
	if got != loc {
		t.Errorf("Get = %+v, want %+v", got, loc)
	}

	if _, ok := cache.Get("198.51.100.9"); ok {
		t.Error("unknown address reported as cached")
	}

	n, err := cache.Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

func TestGeoCachePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenGeoCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	loc := GeoLocation{Lat: 40.766, Lng: -72.852, Country: "US"}
	if err := cache.Put("203.0.113.5", loc); err != nil {
		t.Fatal(err)
	}
	if err := cache.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenGeoCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, ok := reopened.Get("203.0.113.5")
	if !ok || got != loc {
		t.Errorf("after reopen Get = (%+v, %v), want %+v", got, ok, loc)
	}
}
