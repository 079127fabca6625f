package spatial

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-spatial/geom"

	"github.com/khankhulgun/khandb/connection"
	"github.com/khankhulgun/khandb/database"
	"github.com/khankhulgun/khandb/models"
)

// GeometryColumn is the conventional geometry column name; Sql looks for it
// when deciding whether to decode BLOBs.
const GeometryColumn = "geometry"

// ModSpatialite returns the default mod_spatialite extension location.
func ModSpatialite() string {
	if runtime.GOOS == "linux" {
		return "/usr/local/lib/mod_spatialite.so"
	}
	return "mod_spatialite"
}

// SpatialDB is a SQLite database with SpatiaLite loaded. Queries that select
// a geometry column come back with the BLOBs decoded.
type SpatialDB struct {
	*database.DB
}

// New opens (or creates) a SpatiaLite database. Fresh databases get their
// spatial metadata tables initialized. Extra extensions may be supplied; the
// default is mod_spatialite alone.
func New(dbname string, extensions ...string) (*SpatialDB, error) {
	if len(extensions) == 0 {
		extensions = []string{ModSpatialite()}
	}
	d, err := database.New(connection.Config{
		Dialect:    connection.DialectSQLite,
		Database:   dbname,
		Extensions: extensions,
	})
	if err != nil {
		return nil, err
	}
	s := &SpatialDB{DB: d}

	hasMeta, err := d.HasTable("geometry_columns")
	if err != nil {
		return nil, err
	}
	if !hasMeta {
		if _, _, err := d.QueryRaw("SELECT InitSpatialMetaData(1);"); err != nil {
			return nil, fmt.Errorf("failed to initialize spatial metadata: %w", err)
		}
	}
	return s, nil
}

// GeoDataFrame is a DataFrame whose geometry column has been decoded. The
// frame itself carries the geometries as WKT; the decoded values and the
// spatial reference ride alongside.
type GeoDataFrame struct {
	dataframe.DataFrame
	Geometries []geom.Geometry
	SRID       int
	AuthName   string
	Proj4      string
}

// Sql executes SQL like database.DB.Sql and post-processes the result: when
// a geometry column is present and fully populated, its SpatiaLite BLOBs are
// decoded and the returned frame carries WKT plus the spatial reference.
// Results with NULL geometries are returned as a plain frame, undecoded.
func (s *SpatialDB) Sql(query string, data ...interface{}) (*GeoDataFrame, error) {
	stmts := database.SplitStatements(query)

	// Only a single query can carry geometry; scripts and statements go
	// through the base implementation untouched.
	if len(stmts) != 1 {
		return s.plainSql(query, data...)
	}

	rendered := stmts[0]
	var args []interface{}
	if len(data) > 0 {
		switch records := data[0].(type) {
		case map[string]interface{}:
			if database.HasPlaceholders(rendered) {
				var err error
				rendered, err = database.Render(rendered, records)
				if err != nil {
					return nil, err
				}
			} else {
				args = []interface{}{records}
			}
		case []map[string]interface{}:
			if !database.HasPlaceholders(rendered) || !database.IsQuery(rendered) {
				return s.plainSql(query, data...)
			}
			var err error
			rendered, err = database.RenderBatch(query, records, true)
			if err != nil {
				return nil, err
			}
		case []interface{}:
			args = records
		default:
			return s.plainSql(query, data...)
		}
	}

	if !database.IsQuery(rendered) {
		if len(args) > 0 {
			return s.plainSql(rendered, args)
		}
		return s.plainSql(rendered)
	}

	columns, rows, err := s.QueryRaw(rendered, args...)
	if err != nil {
		return nil, err
	}

	geomIndex := -1
	for i, name := range columns {
		if name == GeometryColumn {
			geomIndex = i
			break
		}
	}
	if geomIndex < 0 || len(rows) == 0 {
		return &GeoDataFrame{DataFrame: database.BuildFrame(columns, rows)}, nil
	}
	return s.decodeGeometry(columns, rows, geomIndex)
}

func (s *SpatialDB) plainSql(query string, data ...interface{}) (*GeoDataFrame, error) {
	df, err := s.DB.Sql(query, data...)
	if err != nil {
		return nil, err
	}
	return &GeoDataFrame{DataFrame: df}, nil
}

// decodeGeometry replaces BLOB values with WKT and collects the decoded
// geometries and spatial reference info.
func (s *SpatialDB) decodeGeometry(columns []string, rows [][]interface{}, geomIndex int) (*GeoDataFrame, error) {
	geometries := make([]geom.Geometry, 0, len(rows))
	srid := 0

	for _, row := range rows {
		raw, isBlob := row[geomIndex].([]byte)
		if !isBlob {
			// NULL geometries: hand back the plain frame untouched.
			return &GeoDataFrame{DataFrame: database.BuildFrame(columns, rows)}, nil
		}
		element, err := DecodeBlob(raw)
		if err != nil {
			return nil, err
		}
		g, err := element.Geometry()
		if err != nil {
			return nil, err
		}
		text, err := element.WKT()
		if err != nil {
			return nil, err
		}
		geometries = append(geometries, g)
		row[geomIndex] = text
		if srid == 0 {
			srid = element.SRID
		}
	}

	result := &GeoDataFrame{
		DataFrame:  database.BuildFrame(columns, rows),
		Geometries: geometries,
		SRID:       srid,
	}

	_, srs, err := s.QueryRaw(
		"SELECT auth_name, proj4text FROM spatial_ref_sys WHERE auth_srid = ?", srid)
	if err == nil && len(srs) == 1 {
		if auth, ok := srs[0][0].(string); ok {
			result.AuthName = auth
		}
		if proj, ok := srs[0][1].(string); ok {
			result.Proj4 = proj
		}
	}
	return result, nil
}

// Geometries lists the registered geometry columns joined with their spatial
// reference systems.
func (s *SpatialDB) Geometries() (dataframe.DataFrame, error) {
	return s.QueryFrame(
		"SELECT * FROM geometry_columns g LEFT JOIN spatial_ref_sys s ON g.srid = s.srid")
}

// GeometryData returns the geometry_columns record for a table.
func (s *SpatialDB) GeometryData(table string) (models.GeometryTable, error) {
	var record models.GeometryTable
	err := s.Gorm().Raw(
		"SELECT f_table_name, f_geometry_column, coord_dimension, srid, geometry_type FROM geometry_columns WHERE f_table_name = ?",
		strings.ToLower(table)).Scan(&record).Error
	if err != nil {
		return record, err
	}
	if record.TableName == "" {
		return record, fmt.Errorf("%w: %s", database.ErrTableNotFound, table)
	}
	return record, nil
}

// Map relationship types to spatial predicate functions
func RelationshipFunction(relationship string) (string, error) {
	relationshipFunctions := map[string]string{
		"contains":   "ST_Contains",
		"crosses":    "ST_Crosses",
		"disjoint":   "ST_Disjoint",
		"equals":     "ST_Equals",
		"intersects": "ST_Intersects",
		"overlaps":   "ST_Overlaps",
		"within":     "ST_Within",
		"touches":    "ST_Touches",
	}

	sqlFunction, ok := relationshipFunctions[strings.ToLower(relationship)]
	if !ok {
		return "", fmt.Errorf("invalid spatial relationship")
	}
	return sqlFunction, nil
}

// BuildFilterQuery builds a spatial-predicate SELECT against a table. The
// input geometry is bound as WKT; columns may be "*" or a comma list.
func BuildFilterQuery(table, geometryColumn, sqlFunction, columns string, srid int, returnGeometry bool) string {
	selected := sanitizeColumns(columns)
	if returnGeometry && selected != "*" {
		selected = selected + ", " + quoteIdent(geometryColumn)
	}
	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s(%s, GeomFromText(?, %d))",
		selected, quoteIdent(table), sqlFunction, quoteIdent(geometryColumn), srid)
}

// Filter runs a spatial-relationship query against a table, binding the
// filter geometry as WKT.
func (s *SpatialDB) Filter(input models.SpatialFilterInput) (*GeoDataFrame, error) {
	sqlFunction, err := RelationshipFunction(input.Relationship)
	if err != nil {
		return nil, err
	}
	srid := input.SRID
	if srid == 0 {
		srid = 4326
	}
	geometryColumn := input.GeometryColumn
	if geometryColumn == "" {
		geometryColumn = GeometryColumn
	}
	query := BuildFilterQuery(
		input.Table, geometryColumn, sqlFunction, input.OutFields, srid, input.ReturnGeometry)

	columns, rows, err := s.QueryRaw(query, input.Geometry)
	if err != nil {
		return nil, fmt.Errorf("error executing spatial query: %w", err)
	}

	geomIndex := -1
	if input.ReturnGeometry {
		for i, name := range columns {
			if name == geometryColumn {
				geomIndex = i
				break
			}
		}
	}
	if geomIndex < 0 || len(rows) == 0 {
		return &GeoDataFrame{DataFrame: database.BuildFrame(columns, rows)}, nil
	}
	return s.decodeGeometry(columns, rows, geomIndex)
}

func sanitizeColumns(columns string) string {
	columns = strings.TrimSpace(columns)
	if columns == "" || columns == "*" {
		return "*"
	}
	parts := strings.Split(columns, ",")
	var cleaned []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			cleaned = append(cleaned, quoteIdent(part))
		}
	}
	if len(cleaned) == 0 {
		return "*"
	}
	return strings.Join(cleaned, ", ")
}

// quoteIdent double-quotes an identifier, stripping any embedded quotes.
func quoteIdent(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, "'", "")
	return `"` + name + `"`
}
