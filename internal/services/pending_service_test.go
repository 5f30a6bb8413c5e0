package services_test

import (
	"errors"
	"testing"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/types"
)

// TestCreatePendingDraft tests draft insertion with verbatim tags
func TestCreatePendingDraft(t *testing.T) {
	db := setupTestDB(t)

	detail, err := services.CreatePending(db, services.PendingInput{
		FileID:       "file-1",
		Title:        "Scraped Soup",
		Source:       "https://example.com/soup",
		Category:     "Dinner",
		Instructions: "Boil.",
		RawText:      "raw text from the extractor",
		ParsedData:   []byte(`{"title":"Scraped Soup"}`),
		Ingredients: []services.IngredientInput{
			{Name: "Water", Quantity: "4", Unit: "cups"},
			{Name: "Salt"},
		},
		Tags: []string{"Soup", "SOUP", "easy"},
	})
	if err != nil {
		t.Fatalf("Failed to create pending draft: %v", err)
	}

	if detail.Title != "Scraped Soup" {
		t.Errorf("Expected title 'Scraped Soup', got %q", detail.Title)
	}
	if len(detail.Ingredients) != 2 {
		t.Errorf("Expected 2 ingredients, got %d", len(detail.Ingredients))
	}
	// Draft tags stay verbatim, duplicates and casing included
	if len(detail.Tags) != 3 {
		t.Errorf("Expected 3 verbatim draft tags, got %v", detail.Tags)
	}
	// No registry rows until promotion
	if n := countRows(t, db, &models.Tag{}); n != 0 {
		t.Errorf("Expected 0 registry tags before approval, got %d", n)
	}
}

// TestListPendingOrder tests the oldest-first queue order
func TestListPendingOrder(t *testing.T) {
	db := setupTestDB(t)

	for _, title := range []string{"First", "Second"} {
		if _, err := services.CreatePending(db, services.PendingInput{Title: title}); err != nil {
			t.Fatalf("Failed to create pending draft: %v", err)
		}
	}

	rows, err := services.ListPending(db)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 drafts, got %d", len(rows))
	}
	if rows[0].Title != "First" {
		t.Errorf("Expected oldest first, got %q", rows[0].Title)
	}
}

// TestApprovePending tests draft promotion into the catalog
func TestApprovePending(t *testing.T) {
	db := setupTestDB(t)

	draft, err := services.CreatePending(db, services.PendingInput{
		Title:    "Scraped Stew",
		Category: "Dinner",
		Ingredients: []services.IngredientInput{
			{Name: "Beef", Quantity: "1", Unit: "lb"},
			{Name: "Carrots"},
		},
		Tags: []string{"Hearty", "hearty"},
	})
	if err != nil {
		t.Fatalf("Failed to create pending draft: %v", err)
	}

	recipeID, err := services.ApprovePending(db, draft.ID)
	if err != nil {
		t.Fatalf("Failed to approve pending draft: %v", err)
	}

	recipe, err := services.GetRecipe(db, recipeID)
	if err != nil {
		t.Fatalf("Failed to get promoted recipe: %v", err)
	}
	if recipe.Title != "Scraped Stew" {
		t.Errorf("Expected promoted title, got %q", recipe.Title)
	}
	if len(recipe.Ingredients) != 2 || recipe.Ingredients[0].Name != "Beef" {
		t.Errorf("Expected ingredient order preserved, got %v", recipe.Ingredients)
	}
	// Promotion normalizes and dedupes tags, and folds in the category
	if len(recipe.Tags) != 2 {
		t.Errorf("Expected tags [dinner hearty], got %v", recipe.Tags)
	}

	// The draft and its children are gone
	if n := countRows(t, db, &models.PendingRecipe{}); n != 0 {
		t.Errorf("Expected pending row deleted, got %d", n)
	}
	if n := countRows(t, db, &models.PendingIngredient{}); n != 0 {
		t.Errorf("Expected pending ingredients deleted, got %d", n)
	}
	if n := countRows(t, db, &models.PendingTag{}); n != 0 {
		t.Errorf("Expected pending tags deleted, got %d", n)
	}
}

// TestApprovePendingTwice tests that re-approving a consumed draft misses
func TestApprovePendingTwice(t *testing.T) {
	db := setupTestDB(t)

	draft, err := services.CreatePending(db, services.PendingInput{Title: "Once"})
	if err != nil {
		t.Fatalf("Failed to create pending draft: %v", err)
	}

	if _, err := services.ApprovePending(db, draft.ID); err != nil {
		t.Fatalf("First approval failed: %v", err)
	}

	_, err = services.ApprovePending(db, draft.ID)
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("Expected NotFoundError on second approval, got %v", err)
	}

	// Exactly one recipe was produced
	if n := countRows(t, db, &models.Recipe{}); n != 1 {
		t.Errorf("Expected 1 recipe, got %d", n)
	}
}

// TestDeletePending tests draft rejection
func TestDeletePending(t *testing.T) {
	db := setupTestDB(t)

	draft, err := services.CreatePending(db, services.PendingInput{
		Title:       "Discard",
		Ingredients: []services.IngredientInput{{Name: "Dust"}},
		Tags:        []string{"nope"},
	})
	if err != nil {
		t.Fatalf("Failed to create pending draft: %v", err)
	}

	existed, err := services.DeletePending(db, draft.ID)
	if err != nil {
		t.Fatalf("Failed to delete pending draft: %v", err)
	}
	if !existed {
		t.Fatal("Expected existed=true")
	}

	// Rejection never touches the catalog
	if n := countRows(t, db, &models.Recipe{}); n != 0 {
		t.Errorf("Expected 0 recipes after rejection, got %d", n)
	}
	if n := countRows(t, db, &models.PendingIngredient{}); n != 0 {
		t.Errorf("Expected pending children deleted, got %d", n)
	}

	existed, err = services.DeletePending(db, draft.ID)
	if err != nil {
		t.Fatalf("Second delete errored: %v", err)
	}
	if existed {
		t.Error("Expected existed=false on second delete")
	}
}
