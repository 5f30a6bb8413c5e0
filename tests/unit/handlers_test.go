package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/handlers"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/tests/helpers"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.Recipe{},
		&models.Ingredient{},
		&models.Tag{},
		&models.RecipeTag{},
		&models.RecipeImage{},
		&models.PendingRecipe{},
		&models.PendingIngredient{},
		&models.PendingTag{},
		&models.UserSubmittedRecipe{},
		&models.SubmittedIngredient{},
		&models.SubmittedTag{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// setupRecipeApp mounts the recipe routes the way the server does
func setupRecipeApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	handler := &handlers.RecipeHandler{DB: db}
	app.Get("/api/recipes", handler.ListRecipes)
	app.Get("/api/recipes/search", handler.SearchRecipes)
	app.Get("/api/admin/recipes", handler.ListAdminRecipes)
	app.Get("/api/recipes/:id", handler.GetRecipe)
	app.Post("/api/recipes", handler.CreateRecipe)
	app.Put("/api/recipes/:id", handler.UpdateRecipe)
	app.Delete("/api/recipes/:id", handler.DeleteRecipe)
	app.Post("/api/recipes/:id/cooked", handler.MarkCooked)
	return app
}

// TestListRecipes tests the GET /api/recipes endpoint
func TestListRecipes(t *testing.T) {
	db := setupTestDB(t)
	app := setupRecipeApp(db)

	helpers.CreateTestRecipe(t, db, "Apple Pie", []string{"Apples", "Flour"}, []string{"dessert"})
	helpers.CreateTestRecipe(t, db, "Bread", []string{"Flour", "Yeast"}, []string{"baking"})

	req := httptest.NewRequest("GET", "/api/recipes", nil)
	resp, err := app.Test(req)
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

	if result["total"] != float64(2) {
		t.Errorf("Expected total 2, got %v", result["total"])
	}
	recipes, ok := result["recipes"].([]interface{})
	if !ok || len(recipes) != 2 {
		t.Errorf("Expected 2 recipes in response, got %v", result["recipes"])
	}
}

// TestGetRecipe tests the GET /api/recipes/:id endpoint
func TestGetRecipe(t *testing.T) {
	db := setupTestDB(t)
	app := setupRecipeApp(db)

	id := helpers.CreateTestRecipe(t, db, "Apple Pie", []string{"Apples"}, []string{"dessert"})

	req := httptest.NewRequest("GET", "/api/recipes/"+itoa(id), nil)
	resp, err := app.Test(req)
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

	if result["title"] != "Apple Pie" {
		t.Errorf("Expected title 'Apple Pie', got %v", result["title"])
	}

	// Non-numeric and missing ids
	req = httptest.NewRequest("GET", "/api/recipes/abc", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 for bad id, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/recipes/99999", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

// TestCreateRecipe tests the POST /api/recipes endpoint
func TestCreateRecipe(t *testing.T) {
	db := setupTestDB(t)
	app := setupRecipeApp(db)

	reqBody := map[string]interface{}{
		"title":        "Pancakes",
		"instructions": "Mix and fry",
		"servings":     4,
		"ingredients": []map[string]string{
			{"name": "Flour", "quantity": "2", "unit": "cups"},
			{"name": "Milk", "quantity": "1", "unit": "cup"},
		},
		"tags": []string{"Breakfast"},
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/api/recipes", bytes.NewReader(body))
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

	if result["title"] != "Pancakes" {
		t.Errorf("Expected title 'Pancakes', got %v", result["title"])
	}
	if result["id"] == nil {
		t.Error("Expected id in response")
	}

	// Validation failures roll back as 400
	body, _ = json.Marshal(map[string]interface{}{"title": "   "})
	req = httptest.NewRequest("POST", "/api/recipes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 for blank title, got %d", resp.StatusCode)
	}
}

// TestSearchRecipes tests the GET /api/recipes/search endpoint
func TestSearchRecipes(t *testing.T) {
	db := setupTestDB(t)
	app := setupRecipeApp(db)

	helpers.CreateTestRecipe(t, db, "Apple Pie", []string{"Apples", "Flour"}, []string{"dessert"})
	helpers.CreateTestRecipe(t, db, "Apple Salad", []string{"Apples"}, []string{"salad"})

	req := httptest.NewRequest("GET", "/api/recipes/search?title=apple&tags=dessert", nil)
	resp, err := app.Test(req)
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

	if result["total"] != float64(1) {
		t.Errorf("Expected total 1, got %v", result["total"])
	}

	// No filter at all is a client error
	req = httptest.NewRequest("GET", "/api/recipes/search", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 for empty search, got %d", resp.StatusCode)
	}
}

// TestUpdateRecipe tests the PUT /api/recipes/:id endpoint
func TestUpdateRecipe(t *testing.T) {
	db := setupTestDB(t)
	app := setupRecipeApp(db)

	id := helpers.CreateTestRecipe(t, db, "Apple Pie", []string{"Apples"}, []string{"dessert"})

	body, _ := json.Marshal(map[string]interface{}{
		"title": "Deep Dish Apple Pie",
		"tags":  []string{"dessert", "baking"},
	})
	req := httptest.NewRequest("PUT", "/api/recipes/"+itoa(id), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
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

	if result["title"] != "Deep Dish Apple Pie" {
		t.Errorf("Expected updated title, got %v", result["title"])
	}
	tags, _ := result["tags"].([]interface{})
	if len(tags) != 2 {
		t.Errorf("Expected 2 tags after update, got %v", result["tags"])
	}
}

// TestDeleteRecipe tests the DELETE /api/recipes/:id endpoint
func TestDeleteRecipe(t *testing.T) {
	db := setupTestDB(t)
	app := setupRecipeApp(db)

	id := helpers.CreateTestRecipe(t, db, "Apple Pie", []string{"Apples"}, []string{"dessert"})

	req := httptest.NewRequest("DELETE", "/api/recipes/"+itoa(id), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	// Second delete reports not found
	req = httptest.NewRequest("DELETE", "/api/recipes/"+itoa(id), nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 on repeat delete, got %d", resp.StatusCode)
	}
}

// TestMarkCooked tests the POST /api/recipes/:id/cooked endpoint
func TestMarkCooked(t *testing.T) {
	db := setupTestDB(t)
	app := setupRecipeApp(db)

	id := helpers.CreateTestRecipe(t, db, "Apple Pie", []string{"Apples"}, nil)

	req := httptest.NewRequest("POST", "/api/recipes/"+itoa(id)+"/cooked", nil)
	resp, err := app.Test(req)
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

	if result["timesCooked"] != float64(1) {
		t.Errorf("Expected timesCooked 1, got %v", result["timesCooked"])
	}
}
