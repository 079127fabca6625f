package spatial

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/khankhulgun/khandb/models"
)

// spatialreference.org serves ready-made INSERT statements for the
// spatial_ref_sys table. There is no dedicated SpatiaLite format; the PostGIS
// statement works once the leading 9 on the srid value is dropped.
const spatialRefSite = "https://spatialreference.org/ref/%s/%d/%s/"

var spatialRefAuthorities = []string{"epsg", "esri", "sr-org"}

var (
	ErrSpatialRefNotFound = errors.New("spatial reference not found")
	ErrUnknownAuthority   = errors.New("unknown spatial reference authority")
)

var spatialRefClient = &http.Client{Timeout: 30 * time.Second}

// FetchSpatialRef downloads the spatial_ref_sys INSERT statement for an SRID
// from spatialreference.org. Authority is one of epsg, esri or sr-org.
func FetchSpatialRef(srid int, auth string) (string, error) {
	auth = strings.ToLower(auth)
	valid := false
	for _, a := range spatialRefAuthorities {
		if a == auth {
			valid = true
			break
		}
	}
	if !valid {
		return "", fmt.Errorf("%w: %q", ErrUnknownAuthority, auth)
	}

	resp, err := spatialRefClient.Get(fmt.Sprintf(spatialRefSite, auth, srid, "postgis"))
	if err != nil {
		return "", fmt.Errorf("failed to fetch spatial reference %s:%d: %w", auth, srid, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s:%d (HTTP %d)", ErrSpatialRefNotFound, auth, srid, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read spatial reference %s:%d: %w", auth, srid, err)
	}

	// The srid value carries a leading 9 in the PostGIS INSERT statement.
	stmt := strings.Replace(string(body), fmt.Sprintf("9%d", srid), fmt.Sprint(srid), 1)
	return stmt, nil
}

// HasSRID reports whether a spatial reference system is in the database.
func (s *SpatialDB) HasSRID(srid int) (bool, error) {
	_, rows, err := s.QueryRaw("SELECT srid FROM spatial_ref_sys WHERE srid = ?", srid)
	if err != nil {
		return false, err
	}
	return len(rows) == 1, nil
}

// LoadSpatialRefSys inserts the spatial reference data for an SRID, fetched
// from spatialreference.org. Does nothing when the SRID is already loaded.
// The default authority is esri since spatial_ref_sys ships with most epsg
// references preloaded.
func (s *SpatialDB) LoadSpatialRefSys(srid int, auth string) error {
	if auth == "" {
		auth = "esri"
	}
	exists, err := s.HasSRID(srid)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	stmt, err := FetchSpatialRef(srid, auth)
	if err != nil {
		return err
	}
	if _, err := s.Exec(stmt); err != nil {
		return fmt.Errorf("failed to load spatial reference %d: %w", srid, err)
	}
	return nil
}

// SpatialRef returns the spatial_ref_sys record for an SRID.
func (s *SpatialDB) SpatialRef(srid int) (models.SpatialRef, error) {
	var ref models.SpatialRef
	err := s.Gorm().Raw(
		"SELECT srid, auth_name, auth_srid, ref_sys_name, proj4text FROM spatial_ref_sys WHERE srid = ?",
		srid).Scan(&ref).Error
	if err != nil {
		return ref, err
	}
	if ref.SRID == 0 {
		return ref, fmt.Errorf("%w: %d", ErrSpatialRefNotFound, srid)
	}
	return ref, nil
}
