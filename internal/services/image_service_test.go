package services_test

import (
	"errors"
	"testing"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

func createImageFixture(t *testing.T, db *gorm.DB) uint64 {
	detail, err := services.CreateRecipe(db, services.RecipeInput{Title: "Photogenic"})
	if err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}
	return detail.ID
}

func addImageFixture(t *testing.T, db *gorm.DB, recipeID uint64, filename string, isHero bool) *services.ImageView {
	view, err := services.AddImage(db, recipeID, services.ImageMeta{
		Filename: filename,
		FilePath: "/tmp/" + filename,
		MimeType: "image/jpeg",
	}, isHero)
	if err != nil {
		t.Fatalf("Failed to add image %s: %v", filename, err)
	}
	return view
}

func heroCount(t *testing.T, db *gorm.DB, recipeID uint64) int64 {
	var n int64
	if err := db.Model(&models.RecipeImage{}).
		Where("recipe_id = ? AND is_hero = ?", recipeID, true).
		Count(&n).Error; err != nil {
		t.Fatalf("Failed to count heroes: %v", err)
	}
	return n
}

// TestAddImagePositions tests that appended images take max+1 positions
func TestAddImagePositions(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)

	first := addImageFixture(t, db, recipeID, "a.jpg", false)
	second := addImageFixture(t, db, recipeID, "b.jpg", false)

	if first.Position != 0 {
		t.Errorf("Expected first position 0, got %d", first.Position)
	}
	if second.Position != 1 {
		t.Errorf("Expected second position 1, got %d", second.Position)
	}
}

// TestAddImageMissingRecipe tests NotFound on a dangling recipe id
func TestAddImageMissingRecipe(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.AddImage(db, 9999, services.ImageMeta{Filename: "x.jpg"}, false)
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

// TestSingleHeroInvariant tests that flagging a second hero clears the first
func TestSingleHeroInvariant(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)

	addImageFixture(t, db, recipeID, "a.jpg", true)
	second := addImageFixture(t, db, recipeID, "b.jpg", true)

	if n := heroCount(t, db, recipeID); n != 1 {
		t.Fatalf("Expected exactly 1 hero, got %d", n)
	}

	var hero models.RecipeImage
	if err := db.Where("recipe_id = ? AND is_hero = ?", recipeID, true).First(&hero).Error; err != nil {
		t.Fatalf("Failed to fetch hero: %v", err)
	}
	if hero.ID != second.ID {
		t.Errorf("Expected the later image to be hero, got image %d", hero.ID)
	}
}

// TestSetHeroImage tests hero reassignment and the no-op repeat
func TestSetHeroImage(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)

	first := addImageFixture(t, db, recipeID, "a.jpg", true)
	second := addImageFixture(t, db, recipeID, "b.jpg", false)

	if err := services.SetHeroImage(db, recipeID, second.ID); err != nil {
		t.Fatalf("Failed to set hero: %v", err)
	}
	if n := heroCount(t, db, recipeID); n != 1 {
		t.Fatalf("Expected exactly 1 hero, got %d", n)
	}

	// Setting the same hero again is a no-op, not an error
	if err := services.SetHeroImage(db, recipeID, second.ID); err != nil {
		t.Fatalf("Repeat set failed: %v", err)
	}
	if n := heroCount(t, db, recipeID); n != 1 {
		t.Fatalf("Expected exactly 1 hero after repeat, got %d", n)
	}

	// Foreign image ids miss
	err := services.SetHeroImage(db, recipeID, first.ID+second.ID+100)
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

// TestReorderImages tests the position rewrite
func TestReorderImages(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)

	a := addImageFixture(t, db, recipeID, "a.jpg", false)
	b := addImageFixture(t, db, recipeID, "b.jpg", false)
	c := addImageFixture(t, db, recipeID, "c.jpg", false)

	if err := services.ReorderImages(db, recipeID, []uint64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Failed to reorder: %v", err)
	}

	var ordered []models.RecipeImage
	if err := db.Where("recipe_id = ?", recipeID).Order("position ASC").Find(&ordered).Error; err != nil {
		t.Fatalf("Failed to fetch images: %v", err)
	}
	want := []uint64{c.ID, a.ID, b.ID}
	for i, img := range ordered {
		if img.ID != want[i] {
			t.Errorf("Position %d: expected image %d, got %d", i, want[i], img.ID)
		}
	}
}

// TestReorderImagesRejectsForeign tests that a foreign id aborts with no writes
func TestReorderImagesRejectsForeign(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)
	otherID := createImageFixture(t, db)

	a := addImageFixture(t, db, recipeID, "a.jpg", false)
	b := addImageFixture(t, db, recipeID, "b.jpg", false)
	foreign := addImageFixture(t, db, otherID, "z.jpg", false)

	err := services.ReorderImages(db, recipeID, []uint64{b.ID, foreign.ID})
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	// Original positions survive the aborted reorder
	var check models.RecipeImage
	if err := db.First(&check, a.ID).Error; err != nil {
		t.Fatalf("Failed to fetch image: %v", err)
	}
	if check.Position != 0 {
		t.Errorf("Expected position unchanged at 0, got %d", check.Position)
	}

	// Empty and duplicate lists are rejected too
	if err := services.ReorderImages(db, recipeID, nil); err == nil {
		t.Error("Expected error for empty id list")
	}
	if err := services.ReorderImages(db, recipeID, []uint64{a.ID, a.ID}); err == nil {
		t.Error("Expected error for duplicate ids")
	}
}

// TestReorderImagesRejectsSubset tests that a partial id list aborts with no writes
func TestReorderImagesRejectsSubset(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)

	a := addImageFixture(t, db, recipeID, "a.jpg", false)
	b := addImageFixture(t, db, recipeID, "b.jpg", false)
	c := addImageFixture(t, db, recipeID, "c.jpg", false)

	err := services.ReorderImages(db, recipeID, []uint64{c.ID, b.ID})
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	var ordered []models.RecipeImage
	if err := db.Where("recipe_id = ?", recipeID).Order("position ASC").Find(&ordered).Error; err != nil {
		t.Fatalf("Failed to fetch images: %v", err)
	}
	want := []uint64{a.ID, b.ID, c.ID}
	for i, img := range ordered {
		if img.Position != i {
			t.Errorf("Expected position %d, got %d", i, img.Position)
		}
		if img.ID != want[i] {
			t.Errorf("Position %d: expected image %d, got %d", i, want[i], img.ID)
		}
	}
}

// TestDeleteImage tests row deletion and the idempotent miss
func TestDeleteImage(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)
	img := addImageFixture(t, db, recipeID, "a.jpg", false)

	existed, err := services.DeleteImage(db, nil, img.ID)
	if err != nil {
		t.Fatalf("Failed to delete image: %v", err)
	}
	if !existed {
		t.Fatal("Expected existed=true")
	}

	existed, err = services.DeleteImage(db, nil, img.ID)
	if err != nil {
		t.Fatalf("Second delete errored: %v", err)
	}
	if existed {
		t.Error("Expected existed=false on second delete")
	}
}

// TestDeleteImageCompactsPositions tests that survivors close the gap
func TestDeleteImageCompactsPositions(t *testing.T) {
	db := setupTestDB(t)
	recipeID := createImageFixture(t, db)

	a := addImageFixture(t, db, recipeID, "a.jpg", false)
	b := addImageFixture(t, db, recipeID, "b.jpg", false)
	c := addImageFixture(t, db, recipeID, "c.jpg", false)

	existed, err := services.DeleteImage(db, nil, b.ID)
	if err != nil {
		t.Fatalf("Failed to delete image: %v", err)
	}
	if !existed {
		t.Fatal("Expected existed=true")
	}

	var ordered []models.RecipeImage
	if err := db.Where("recipe_id = ?", recipeID).Order("position ASC").Find(&ordered).Error; err != nil {
		t.Fatalf("Failed to fetch images: %v", err)
	}
	if len(ordered) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(ordered))
	}
	want := []uint64{a.ID, c.ID}
	for i, img := range ordered {
		if img.Position != i {
			t.Errorf("Expected position %d, got %d", i, img.Position)
		}
		if img.ID != want[i] {
			t.Errorf("Position %d: expected image %d, got %d", i, want[i], img.ID)
		}
	}

	// The next append lands right after the survivors
	d := addImageFixture(t, db, recipeID, "d.jpg", false)
	if d.Position != 2 {
		t.Errorf("Expected appended position 2, got %d", d.Position)
	}
}
