package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khankhulgun/khandb/models"
	"github.com/khankhulgun/khandb/spatial"
)

// Spatial runs a spatial-relationship query against a table. The relationship
// comes from the URL, the filter geometry and options from the body.
func Spatial(s *spatial.SpatialDB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		relationship := c.Params("relationship")
		if relationship == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Relationship is a required parameter",
			})
		}

		var input models.SpatialFilterInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid input",
				"error":   err.Error(),
			})
		}
		input.Relationship = relationship
		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Table and geometry are required",
			})
		}

		results, err := s.Filter(input)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Error executing spatial query",
				"error":   err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"records":  results.Maps(),
			"srid":     results.SRID,
			"authName": results.AuthName,
		})
	}
}
