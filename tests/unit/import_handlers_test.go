package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/handlers"
	"github.com/localnerve/recipedb/internal/parser"
	"github.com/localnerve/recipedb/tests/helpers"
	"gorm.io/gorm"
)

// stubParserServices serves both the extractor and parser endpoints
func stubParserServices(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/extract":
			w.Write([]byte(`{"text":"Apple Pie. Peel apples, bake."}`))
		case "/parse":
			w.Write([]byte(`{"title":"Apple Pie","category":"Dessert","instructions":"Peel apples, bake.","ingredients":[{"name":"Apples","quantity":"6"}],"tags":["baking"]}`))
		default:
			t.Errorf("Unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func setupImportApp(db *gorm.DB, parserURL string) *fiber.App {
	app := fiber.New()
	handler := &handlers.ImportHandler{DB: db, Parser: parser.NewClient(parserURL, parserURL)}
	app.Post("/api/import", handler.ImportRecipe)
	app.Get("/api/pending", handler.ListPending)
	app.Get("/api/pending/:id", handler.GetPending)
	app.Post("/api/pending/:id/approve", handler.ApprovePending)
	app.Delete("/api/pending/:id", handler.DeletePending)
	return app
}

// TestImportRecipe tests the POST /api/import endpoint end to end
// against stubbed extraction and parsing services.
func TestImportRecipe(t *testing.T) {
	db := setupTestDB(t)
	server := stubParserServices(t)
	defer server.Close()
	app := setupImportApp(db, server.URL)

	body, _ := json.Marshal(map[string]string{"url": "https://example.com/pie"})
	req := httptest.NewRequest("POST", "/api/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	if resp.StatusCode != 201 {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result["title"] != "Apple Pie" {
		t.Errorf("Expected parsed title, got %v", result["title"])
	}
	if result["category"] != "Dessert" {
		t.Errorf("Expected parsed category, got %v", result["category"])
	}
}

// TestImportRecipeInputGate tests the exactly-one-of source rule
func TestImportRecipeInputGate(t *testing.T) {
	db := setupTestDB(t)
	server := stubParserServices(t)
	defer server.Close()
	app := setupImportApp(db, server.URL)

	for _, payload := range []map[string]string{
		{},
		{"file_path": "/tmp/a.pdf", "url": "https://example.com"},
	} {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/import", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("Expected status 400 for payload %v, got %d", payload, resp.StatusCode)
		}
	}
}

// TestApprovePendingEndpoint tests POST /api/pending/:id/approve
func TestApprovePendingEndpoint(t *testing.T) {
	db := setupTestDB(t)
	server := stubParserServices(t)
	defer server.Close()
	app := setupImportApp(db, server.URL)

	id := helpers.CreateTestPending(t, db, "Apple Pie", "Dessert", []string{"Apples"}, []string{"baking"})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/pending/"+itoa(id)+"/approve", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["ok"] != true || result["recipeId"] == nil {
		t.Errorf("Expected ok and recipeId in response, got %v", result)
	}

	// The draft is consumed; a repeat approval is a 404
	resp, _ = app.Test(httptest.NewRequest("POST", "/api/pending/"+itoa(id)+"/approve", nil))
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 on repeat approval, got %d", resp.StatusCode)
	}
}

// TestDeletePendingEndpoint tests DELETE /api/pending/:id
func TestDeletePendingEndpoint(t *testing.T) {
	db := setupTestDB(t)
	server := stubParserServices(t)
	defer server.Close()
	app := setupImportApp(db, server.URL)

	id := helpers.CreateTestPending(t, db, "Apple Pie", "", []string{"Apples"}, nil)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/pending/"+itoa(id), nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/api/pending/"+itoa(id), nil))
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 on repeat delete, got %d", resp.StatusCode)
	}
}
