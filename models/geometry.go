package models

// Model for registered geometry tables
type GeometryTable struct {
	TableName      string `gorm:"column:f_table_name" json:"table"`
	GeometryColumn string `gorm:"column:f_geometry_column" json:"geometryColumn"`
	CoordDimension int    `gorm:"column:coord_dimension" json:"coordDimension"`
	SRID           int    `gorm:"column:srid" json:"srid"`
	GeometryType   int    `gorm:"column:geometry_type" json:"geometryType"`
}

// Model for table columns
type TableColumn struct {
	ColumnName string `gorm:"column:column_name" json:"columnName"`
	DataType   string `gorm:"column:data_type" json:"dataType"`
}

// Model for spatial reference systems
type SpatialRef struct {
	SRID     int    `gorm:"column:srid" json:"srid"`
	AuthName string `gorm:"column:auth_name" json:"authName"`
	AuthSRID int    `gorm:"column:auth_srid" json:"authSrid"`
	RefName  string `gorm:"column:ref_sys_name" json:"refName"`
	Proj4    string `gorm:"column:proj4text" json:"proj4"`
}
