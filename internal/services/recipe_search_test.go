package services_test

import (
	"errors"
	"testing"

	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

func seedSearchCatalog(t *testing.T, db *gorm.DB) {
	fixtures := []services.RecipeInput{
		{
			Title: "Apple Pie",
			Ingredients: []services.IngredientInput{
				{Name: "Apples"}, {Name: "Flour"}, {Name: "Butter"},
			},
			Tags: []string{"dessert", "baking"},
		},
		{
			Title: "Apple Salad",
			Ingredients: []services.IngredientInput{
				{Name: "Apples"}, {Name: "Lettuce"},
			},
			Tags: []string{"salad"},
		},
		{
			Title: "Bread",
			Ingredients: []services.IngredientInput{
				{Name: "Flour"}, {Name: "Water"}, {Name: "Yeast"},
			},
			Tags: []string{"baking"},
		},
	}
	for _, in := range fixtures {
		if _, err := services.CreateRecipe(db, in); err != nil {
			t.Fatalf("Failed to seed recipe %q: %v", in.Title, err)
		}
	}
}

// TestSearchRequiresFilter tests that a filterless search is rejected
func TestSearchRequiresFilter(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.SearchRecipes(db, services.SearchInput{})
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

// TestSearchByTitle tests case-insensitive substring title matching
func TestSearchByTitle(t *testing.T) {
	db := setupTestDB(t)
	seedSearchCatalog(t, db)

	rows, err := services.SearchRecipes(db, services.SearchInput{Title: "apple"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 matches for 'apple', got %d", len(rows))
	}
}

// TestSearchByIngredient tests single-ingredient substring matching
func TestSearchByIngredient(t *testing.T) {
	db := setupTestDB(t)
	seedSearchCatalog(t, db)

	rows, err := services.SearchRecipes(db, services.SearchInput{Ingredient: "FLOUR"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 matches for 'FLOUR', got %d", len(rows))
	}
}

// TestSearchAllIngredients tests that every listed ingredient must be present
func TestSearchAllIngredients(t *testing.T) {
	db := setupTestDB(t)
	seedSearchCatalog(t, db)

	// Only Apple Pie has both
	rows, err := services.SearchRecipes(db, services.SearchInput{
		Ingredients: []string{"apples", "flour"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "Apple Pie" {
		t.Errorf("Expected only 'Apple Pie', got %v", rows)
	}

	// No recipe carries all three
	rows, err = services.SearchRecipes(db, services.SearchInput{
		Ingredients: []string{"apples", "flour", "yeast"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no matches, got %d", len(rows))
	}
}

// TestSearchByTags tests the any-of tag filter with normalization
func TestSearchByTags(t *testing.T) {
	db := setupTestDB(t)
	seedSearchCatalog(t, db)

	rows, err := services.SearchRecipes(db, services.SearchInput{
		Tags: []string{"Baking"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 matches for tag 'Baking', got %d", len(rows))
	}

	// Multiple tags widen the match (any-of)
	rows, err = services.SearchRecipes(db, services.SearchInput{
		Tags: []string{"salad", "dessert"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 matches for two tags, got %d", len(rows))
	}
}

// TestSearchCombinedFilters tests that filters AND together
func TestSearchCombinedFilters(t *testing.T) {
	db := setupTestDB(t)
	seedSearchCatalog(t, db)

	rows, err := services.SearchRecipes(db, services.SearchInput{
		Title: "apple",
		Tags:  []string{"baking"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "Apple Pie" {
		t.Errorf("Expected only 'Apple Pie', got %v", rows)
	}
}
