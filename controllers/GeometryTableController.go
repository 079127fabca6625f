package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khankhulgun/khandb/models"
	"github.com/khankhulgun/khandb/spatial"
)

// GeometryTables lists the registered geometry tables.
func GeometryTables(s *spatial.SpatialDB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var geometryTables []models.GeometryTable
		if err := s.Gorm().Raw(`SELECT f_table_name, f_geometry_column, coord_dimension, srid, geometry_type FROM geometry_columns`).Scan(&geometryTables).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Error listing geometry tables",
				"error":   err.Error(),
			})
		}
		return c.JSON(geometryTables)
	}
}
