package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/khankhulgun/khandb/database"
	"github.com/khankhulgun/khandb/models"
)

var validate = validator.New()

// Query executes SQL from the request body and returns the resulting frame
// as records. Data may be a single record, a list of records or a list of
// positional values.
func Query(d *database.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input models.QueryInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid input",
				"error":   err.Error(),
			})
		}
		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "SQL is required",
			})
		}

		df, err := d.Sql(input.SQL, queryData(input.Data)...)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Error executing SQL",
				"error":   err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"columns": df.Names(),
			"records": df.Maps(),
		})
	}
}

// queryData converts the decoded JSON data value into Sql arguments.
func queryData(data interface{}) []interface{} {
	switch value := data.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		return []interface{}{value}
	case []interface{}:
		if len(value) == 0 {
			return nil
		}
		records := make([]map[string]interface{}, 0, len(value))
		for _, item := range value {
			record, ok := item.(map[string]interface{})
			if !ok {
				// A list of scalars is positional bind values.
				return []interface{}{value}
			}
			records = append(records, record)
		}
		return []interface{}{records}
	default:
		return []interface{}{data}
	}
}

// Tables lists the database's user tables.
func Tables(d *database.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		names, err := d.TableNames()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Error listing tables",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{"tables": names})
	}
}
