package khandb

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khankhulgun/khandb/controllers"
	"github.com/khankhulgun/khandb/database"
	"github.com/khankhulgun/khandb/spatial"
)

// Set registers the SQL and schema endpoints on a fiber app.
func Set(app *fiber.App, d *database.DB) {
	a := app.Group("/khandb/api")
	a.Post("/query", controllers.Query(d))
	a.Get("/tables", controllers.Tables(d))
	a.Get("/table-schema/:table", controllers.TableSchema(d))
	a.Get("/table-columns/:table", controllers.TableColumns(d))
	a.Get("/foreign-keys", controllers.ForeignKeys(d))
}

// SetSpatial registers the SQL endpoints plus the spatial ones.
func SetSpatial(app *fiber.App, s *spatial.SpatialDB) {
	Set(app, s.DB)

	a := app.Group("/khandb/api")
	a.Get("/geometry-tables", controllers.GeometryTables(s))
	a.Post("/spatial/:relationship", controllers.Spatial(s))
}
