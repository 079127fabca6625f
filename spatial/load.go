package spatial

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/khankhulgun/khandb/database"
)

var (
	ErrSecurityRequired  = errors.New("operation requires relaxed SpatiaLite security")
	ErrNoGeometryColumn  = errors.New("frame has no geometry or wkt column")
	ErrShapefileNotFound = errors.New("shapefile not found")
	ErrShapefileImport   = errors.New("shapefile import failed")
	ErrShapefileExport   = errors.New("shapefile export failed")
	ErrNoGeometryValues  = errors.New("geometry column has no values")
)

// geometryTypeNames maps geometry_columns.geometry_type codes to the names
// SpatiaLite's shapefile functions take.
var geometryTypeNames = map[int]string{
	1: "POINT",
	2: "LINESTRING",
	3: "POLYGON",
	4: "MULTIPOINT",
	5: "MULTILINESTRING",
	6: "MULTIPOLYGON",
	7: "GEOMETRYCOLLECTION",
}

// LoadGeoDataFrame creates a spatial table from a DataFrame whose geometry
// rides as Well-Known Text in a "geometry" (or "wkt") column. The WKT is
// loaded as plain text, converted in place with GeomFromText, registered via
// RecoverGeometryColumn and validated with MakeValid. Missing spatial
// reference data is fetched from the web first; auth defaults to esri.
func (s *SpatialDB) LoadGeoDataFrame(df dataframe.DataFrame, table string, srid int, auth string) (dataframe.DataFrame, error) {
	hasGeometry := false
	hasWKT := false
	for _, name := range df.Names() {
		switch name {
		case GeometryColumn:
			hasGeometry = true
		case "wkt":
			hasWKT = true
		}
	}
	if !hasGeometry {
		if !hasWKT {
			return dataframe.DataFrame{}, ErrNoGeometryColumn
		}
		df = df.Rename(GeometryColumn, "wkt")
	}

	if err := s.LoadSpatialRefSys(srid, auth); err != nil {
		return dataframe.DataFrame{}, err
	}

	geomType, mixed, err := wktGeometryType(df.Col(GeometryColumn).Records())
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	result, err := s.DB.LoadDataFrame(df, table)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	convertSQL, err := database.Render(
		"UPDATE {{ tbl }} SET geometry = GeomFromText(geometry, {{ srid }});",
		map[string]interface{}{"tbl": table, "srid": srid})
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	affected, err := s.Exec(convertSQL)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to convert WKT geometry: %w", err)
	}
	result = result.RBind(database.SuccessFrame(convertSQL, int(affected)))

	// SpatiaLite tables hold a single geometry type, so mixed inputs are
	// promoted to their Multi-type counterpart.
	if mixed {
		castSQL := fmt.Sprintf("UPDATE %q SET geometry = CastToMulti(geometry);", table)
		affected, err = s.Exec(castSQL)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		result = result.RBind(database.SuccessFrame(castSQL, int(affected)))
	}

	_, recovered, err := s.QueryRaw(
		"SELECT RecoverGeometryColumn(?, ?, ?, ?);", table, GeometryColumn, srid, geomType)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	recoverResult := 0
	if len(recovered) == 1 {
		if code, ok := recovered[0][0].(int64); ok {
			recoverResult = int(code)
		}
	}
	result = result.RBind(database.SuccessFrame("RecoverGeometryColumn", recoverResult))

	validateSQL, err := database.Render(
		"UPDATE {{ tbl }} SET geometry = MakeValid(geometry) WHERE NOT IsValid(geometry);",
		map[string]interface{}{"tbl": table})
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	affected, err = s.Exec(validateSQL)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	result = result.RBind(database.SuccessFrame(validateSQL, int(affected)))

	return result, nil
}

// wktGeometryType inspects WKT values and returns the table's geometry type.
// When more than one type is present the Multi-type is returned and mixed is
// true, signaling that rows need a CastToMulti pass.
func wktGeometryType(values []string) (string, bool, error) {
	types := map[string]bool{}
	for _, value := range values {
		value = strings.TrimSpace(value)
		i := 0
		for i < len(value) && (value[i] >= 'A' && value[i] <= 'Z' || value[i] >= 'a' && value[i] <= 'z') {
			i++
		}
		if i == 0 {
			continue
		}
		types[strings.ToUpper(value[:i])] = true
	}
	if len(types) == 0 {
		return "", false, ErrNoGeometryValues
	}

	longest := ""
	for name := range types {
		if len(name) > len(longest) {
			longest = name
		}
	}
	if len(types) == 1 {
		return longest, false, nil
	}
	if !strings.HasPrefix(longest, "MULTI") {
		longest = "MULTI" + longest
	}
	return longest, true, nil
}

// ImportSHPOptions tune the ImportSHP call. Zero values mean SpatiaLite's
// defaults: UTF-8, a geometry column named "geometry", an autoincrement PK
// and AUTO geometry type detection.
type ImportSHPOptions struct {
	Charset        string
	GeometryColumn string
	PKColumn       string
	GeometryType   string
	Coerce2D       bool
	Compressed     bool
	SpatialIndex   bool
	TextDates      bool
}

func (o *ImportSHPOptions) setDefaults() {
	if o.Charset == "" {
		o.Charset = "UTF-8"
	}
	if o.GeometryColumn == "" {
		o.GeometryColumn = GeometryColumn
	}
	if o.PKColumn == "" {
		o.PKColumn = "PK"
	}
	if o.GeometryType == "" {
		o.GeometryType = "AUTO"
	}
}

// ImportSHP imports an external shapefile as a table, wrapping SpatiaLite's
// ImportSHP function. The filename may carry or omit the .shp suffix. This is
// faster than LoadGeoDataFrame but requires relaxed security.
func (s *SpatialDB) ImportSHP(filename, table string, srid int, opts ImportSHPOptions) (dataframe.DataFrame, error) {
	if !SecurityRelaxed() {
		return dataframe.DataFrame{}, ErrSecurityRequired
	}
	opts.setDefaults()

	filename = shapefileBase(filename)
	if _, err := os.Stat(filename + ".shp"); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s.shp", ErrShapefileNotFound, filename)
	}
	if srid > 0 {
		if err := s.LoadSpatialRefSys(srid, ""); err != nil {
			return dataframe.DataFrame{}, err
		}
	}

	df, err := s.QueryFrame(
		"SELECT ImportSHP(?,?,?,?,?,?,?,?,?,?,?);",
		filename, table, opts.Charset, srid, opts.GeometryColumn, opts.PKColumn,
		opts.GeometryType, boolFlag(opts.Coerce2D), boolFlag(opts.Compressed),
		boolFlag(opts.SpatialIndex), boolFlag(opts.TextDates))
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	exists, err := s.HasTable(table)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if !exists {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrShapefileImport, table)
	}
	return df, nil
}

// ExportSHP exports a table as an external shapefile, wrapping SpatiaLite's
// ExportSHP function. With geomType AUTO the registered geometry type is
// looked up in geometry_columns. Requires relaxed security.
func (s *SpatialDB) ExportSHP(table, filename, geomColumn, charset, geomType string) (dataframe.DataFrame, error) {
	if !SecurityRelaxed() {
		return dataframe.DataFrame{}, ErrSecurityRequired
	}
	if geomColumn == "" {
		geomColumn = GeometryColumn
	}
	if charset == "" {
		charset = "UTF-8"
	}

	exists, err := s.HasTable(table)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if !exists {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", database.ErrTableNotFound, table)
	}

	filename = shapefileBase(filename)
	if geomType == "" || geomType == "AUTO" {
		data, err := s.GeometryData(table)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		geomType = geometryTypeNames[data.GeometryType]
	}

	df, err := s.QueryFrame("SELECT ExportSHP(?,?,?,?);", table, geomColumn, filename, charset)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	if _, err := os.Stat(filename + ".shp"); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s.shp", ErrShapefileExport, filename)
	}
	return df, nil
}

// shapefileBase normalizes a shapefile path: forward slashes, no extension.
func shapefileBase(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	ext := filepath.Ext(filename)
	if strings.EqualFold(ext, ".shp") || strings.EqualFold(ext, ".shx") || strings.EqualFold(ext, ".dbf") {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
