package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/khankhulgun/khandb/database"
	"github.com/khankhulgun/khandb/models"
	"github.com/khankhulgun/khandb/schema"
)

// TableSchema describes a table's columns.
func TableSchema(d *database.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		table := c.Params("table")
		ts, err := schema.Inspect(d, table)
		if err != nil {
			if errors.Is(err, database.ErrTableNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"status":  "error",
					"message": "Table not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Error describing table",
				"error":   err.Error(),
			})
		}
		return c.JSON(ts)
	}
}

// TableColumns lists a table's column names and data types.
func TableColumns(d *database.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ts, err := schema.Inspect(d, c.Params("table"))
		if err != nil {
			if errors.Is(err, database.ErrTableNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"status":  "error",
					"message": "Table not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Error describing table",
				"error":   err.Error(),
			})
		}

		columns := make([]models.TableColumn, len(ts.Columns))
		for i, col := range ts.Columns {
			columns[i] = models.TableColumn{ColumnName: col.Name, DataType: col.Type}
		}
		return c.JSON(columns)
	}
}

// ForeignKeys lists foreign key relationships across all tables.
func ForeignKeys(d *database.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		df, err := schema.ForeignKeys(d)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Error listing foreign keys",
				"error":   err.Error(),
			})
		}
		return c.JSON(df.Maps())
	}
}
