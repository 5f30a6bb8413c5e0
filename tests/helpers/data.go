// data.go
//
// A recipe catalog data service with ingestion review and moderation
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipedb.
// recipedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package helpers

import (
	"testing"
	"time"

	"github.com/localnerve/recipedb/internal/models"
	"gorm.io/gorm"
)

// CreateTestRecipe creates a recipe with ordered ingredients and
// normalized tags, bypassing the service layer.
func CreateTestRecipe(t *testing.T, db *gorm.DB, title string, ingredients []string, tags []string) uint64 {
	recipe := models.Recipe{
		Title:     title,
		DateAdded: time.Now().UTC(),
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}

	for i, name := range ingredients {
		ing := models.Ingredient{
			RecipeID: recipe.ID,
			Name:     name,
			Position: i,
		}
		if err := db.Create(&ing).Error; err != nil {
			t.Fatalf("Failed to create ingredient: %v", err)
		}
	}

	for _, name := range tags {
		tag := models.Tag{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			t.Fatalf("Failed to create tag: %v", err)
		}
		link := models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("Failed to link tag: %v", err)
		}
	}

	return recipe.ID
}

// CreateTestImage attaches an image row to a recipe
func CreateTestImage(t *testing.T, db *gorm.DB, recipeID uint64, filename string, isHero bool, position int) uint64 {
	img := models.RecipeImage{
		RecipeID: recipeID,
		Filename: filename,
		FilePath: "/tmp/" + filename,
		IsHero:   isHero,
		Position: position,
	}
	if err := db.Create(&img).Error; err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	return img.ID
}

// CreateTestPending creates a pending draft with children
func CreateTestPending(t *testing.T, db *gorm.DB, title, category string, ingredients []string, tags []string) uint64 {
	draft := models.PendingRecipe{
		Title:    title,
		Category: category,
	}
	if err := db.Create(&draft).Error; err != nil {
		t.Fatalf("Failed to create pending recipe: %v", err)
	}

	for i, name := range ingredients {
		ing := models.PendingIngredient{
			PendingRecipeID: draft.ID,
			Name:            name,
			Position:        i,
		}
		if err := db.Create(&ing).Error; err != nil {
			t.Fatalf("Failed to create pending ingredient: %v", err)
		}
	}

	for _, name := range tags {
		tag := models.PendingTag{PendingRecipeID: draft.ID, Name: name}
		if err := db.Create(&tag).Error; err != nil {
			t.Fatalf("Failed to create pending tag: %v", err)
		}
	}

	return draft.ID
}

// CreateTestSubmission creates a user submission with children
func CreateTestSubmission(t *testing.T, db *gorm.DB, userID, title string, ingredients []string, tags []string) uint64 {
	sub := models.UserSubmittedRecipe{
		UserID: userID,
		Title:  title,
		Status: models.StatusPending,
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("Failed to create submission: %v", err)
	}

	for i, name := range ingredients {
		ing := models.SubmittedIngredient{
			SubmittedRecipeID: sub.ID,
			Name:              name,
			Position:          i,
		}
		if err := db.Create(&ing).Error; err != nil {
			t.Fatalf("Failed to create submitted ingredient: %v", err)
		}
	}

	for _, name := range tags {
		tag := models.SubmittedTag{SubmittedRecipeID: sub.ID, Name: name}
		if err := db.Create(&tag).Error; err != nil {
			t.Fatalf("Failed to create submitted tag: %v", err)
		}
	}

	return sub.ID
}
