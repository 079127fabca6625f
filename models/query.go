package models

// QueryInput is the request body for the SQL endpoint. Data may be a single
// record, a list of records, or a list of positional values, matching what
// database.DB.Sql accepts.
type QueryInput struct {
	SQL  string      `json:"sql" validate:"required"`
	Data interface{} `json:"data"`
}

// SpatialFilterInput describes a spatial-relationship query against a table.
type SpatialFilterInput struct {
	Table          string `json:"table" validate:"required"`
	GeometryColumn string `json:"geometryColumn"`
	Relationship   string `json:"relationship" validate:"required"`
	Geometry       string `json:"geometry" validate:"required"`
	SRID           int    `json:"srid"`
	OutFields      string `json:"outFields"`
	ReturnGeometry bool   `json:"returnGeometry"`
}
