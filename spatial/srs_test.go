package spatial

import (
	"errors"
	"testing"
)

func TestFetchSpatialRefBadAuthority(t *testing.T) {
	if _, err := FetchSpatialRef(4326, "usgs"); !errors.Is(err, ErrUnknownAuthority) {
		t.Errorf("err = %v, want ErrUnknownAuthority", err)
	}
}

func TestHasSRID(t *testing.T) {
	s := newBlobTestDB(t)

	ok, err := s.HasSRID(4326)
	if err != nil {
		t.Fatalf("HasSRID() error: %v", err)
	}
	if !ok {
		t.Error("HasSRID(4326) = false, want true")
	}

	ok, err = s.HasSRID(102700)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("HasSRID(102700) = true, want false")
	}
}

func TestLoadSpatialRefSysExisting(t *testing.T) {
	s := newBlobTestDB(t)
	// Already-loaded SRIDs are left alone, no fetch happens.
	if err := s.LoadSpatialRefSys(4326, "epsg"); err != nil {
		t.Errorf("LoadSpatialRefSys() error: %v", err)
	}
}

func TestSpatialRef(t *testing.T) {
	s := newBlobTestDB(t)

	ref, err := s.SpatialRef(4326)
	if err != nil {
		t.Fatalf("SpatialRef() error: %v", err)
	}
	if ref.AuthName != "epsg" || ref.RefName != "WGS 84" {
		t.Errorf("SpatialRef() = %+v", ref)
	}

	if _, err := s.SpatialRef(102700); !errors.Is(err, ErrSpatialRefNotFound) {
		t.Errorf("err = %v, want ErrSpatialRefNotFound", err)
	}
}
