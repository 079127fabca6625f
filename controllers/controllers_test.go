package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/khankhulgun/khandb/connection"
	"github.com/khankhulgun/khandb/database"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	d, err := database.Open(connection.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if _, err := d.Sql(`
		CREATE TABLE species (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		INSERT INTO species (name) VALUES ('wolf');
		INSERT INTO species (name) VALUES ('bear');`); err != nil {
		t.Fatalf("setup: %v", err)
	}

	app := fiber.New()
	app.Post("/query", Query(d))
	app.Get("/tables", Tables(d))
	app.Get("/table-schema/:table", TableSchema(d))
	app.Get("/table-columns/:table", TableColumns(d))
	app.Get("/foreign-keys", ForeignKeys(d))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestQueryEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, body := postJSON(t, app, "/query",
		`{"sql": "SELECT name FROM species ORDER BY id;"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200: %v", status, body)
	}
	records, ok := body["records"].([]interface{})
	if !ok || len(records) != 2 {
		t.Fatalf("records = %v, want 2 rows", body["records"])
	}
	first := records[0].(map[string]interface{})
	if first["name"] != "wolf" {
		t.Errorf("name[0] = %v, want wolf", first["name"])
	}
}

func TestQueryEndpointWithData(t *testing.T) {
	app := newTestApp(t)

	status, body := postJSON(t, app, "/query",
		`{"sql": "SELECT * FROM {{ tbl }} WHERE name = '{{ name }}';", "data": {"tbl": "species", "name": "bear"}}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200: %v", status, body)
	}
	records := body["records"].([]interface{})
	if len(records) != 1 {
		t.Errorf("records = %v, want 1 row", records)
	}
}

func TestQueryEndpointRequiresSQL(t *testing.T) {
	app := newTestApp(t)

	status, body := postJSON(t, app, "/query", `{"data": {"a": 1}}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400: %v", status, body)
	}
}

func TestQueryEndpointSQLError(t *testing.T) {
	app := newTestApp(t)

	status, _ := postJSON(t, app, "/query", `{"sql": "SELECT * FROM missing;"}`)
	if status != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
}

func TestTablesEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/tables", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Tables []string `json:"tables"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Tables) != 1 || body.Tables[0] != "species" {
		t.Errorf("tables = %v, want [species]", body.Tables)
	}
}

func TestTableSchemaEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/table-schema/species", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Table   string `json:"table"`
		Columns []struct {
			Name string `json:"name"`
		} `json:"columns"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Table != "species" || len(body.Columns) != 2 {
		t.Errorf("schema = %+v", body)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/table-schema/ghosts", nil))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("missing table status = %d, want 404", resp.StatusCode)
	}
}

func TestTableColumnsEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/table-columns/species", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var columns []struct {
		ColumnName string `json:"columnName"`
		DataType   string `json:"dataType"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&columns); err != nil {
		t.Fatal(err)
	}
	if len(columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(columns))
	}
	if columns[1].ColumnName != "name" || columns[1].DataType != "TEXT" {
		t.Errorf("columns[1] = %+v, want name/TEXT", columns[1])
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/table-columns/ghosts", nil))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("missing table status = %d, want 404", resp.StatusCode)
	}
}

func TestQueryData(t *testing.T) {
	if got := queryData(nil); got != nil {
		t.Errorf("nil data should produce no args, got %v", got)
	}

	args := queryData(map[string]interface{}{"a": 1})
	if len(args) != 1 {
		t.Fatalf("map data should be one arg, got %d", len(args))
	}

	args = queryData([]interface{}{
		map[string]interface{}{"a": 1},
		map[string]interface{}{"a": 2},
	})
	if len(args) != 1 {
		t.Fatalf("record list should be one arg, got %d", len(args))
	}
	if _, ok := args[0].([]map[string]interface{}); !ok {
		t.Errorf("record list arg is %T, want []map[string]interface{}", args[0])
	}

	args = queryData([]interface{}{1.0, "x"})
	if _, ok := args[0].([]interface{}); !ok {
		t.Errorf("scalar list arg is %T, want []interface{}", args[0])
	}
}
