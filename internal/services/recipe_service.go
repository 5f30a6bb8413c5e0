// recipe_service.go
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

package services

import (
	"log"
	"strings"
	"time"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// IngredientInput is one ingredient of a create/update request.
// Quantity stays a string so fractions like "1/2" survive round trips.
type IngredientInput struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// RecipeInput is the input for creating a recipe
type RecipeInput struct {
	Title              string            `json:"title"`
	Source             string            `json:"source"`
	Instructions       string            `json:"instructions"`
	Servings           *uint64           `json:"servings"`
	EstimatedCalories  *int              `json:"estimatedCalories"`
	CaloriesConfidence string            `json:"caloriesConfidence"`
	Ingredients        []IngredientInput `json:"ingredients"`
	Tags               []string          `json:"tags"`
}

// RecipeUpdate is a partial update. Scalar pointers: nil means leave
// untouched. For Ingredients/Tags the absence-vs-empty distinction is
// load-bearing: nil pointer leaves the set untouched, a non-nil empty
// slice clears it.
type RecipeUpdate struct {
	Title              *string            `json:"title"`
	Source             *string            `json:"source"`
	Instructions       *string            `json:"instructions"`
	Servings           *uint64            `json:"servings"`
	EstimatedCalories  *int               `json:"estimatedCalories"`
	CaloriesConfidence *string            `json:"caloriesConfidence"`
	Ingredients        *[]IngredientInput `json:"ingredients"`
	Tags               *[]string          `json:"tags"`
}

// IngredientView is the read projection of one ingredient
type IngredientView struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Position int    `json:"position"`
}

// ImageView is the read projection of one recipe image
type ImageView struct {
	ID           uint64 `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	FilePath     string `json:"filePath"`
	FileSize     int64  `json:"fileSize"`
	MimeType     string `json:"mimeType"`
	IsHero       bool   `json:"isHero"`
	Position     int    `json:"position"`
}

// RecipeDetail is the full read projection of a recipe aggregate
type RecipeDetail struct {
	ID                 uint64           `json:"id"`
	Title              string           `json:"title"`
	Source             string           `json:"source"`
	Instructions       string           `json:"instructions"`
	Servings           *uint64          `json:"servings"`
	ImagePath          string           `json:"imagePath,omitempty"`
	EstimatedCalories  *int             `json:"estimatedCalories"`
	CaloriesConfidence string           `json:"caloriesConfidence,omitempty"`
	TimesCooked        int              `json:"timesCooked"`
	DateAdded          time.Time        `json:"dateAdded"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	Ingredients        []IngredientView `json:"ingredients"`
	Tags               []string         `json:"tags"`
	Images             []ImageView      `json:"images"`
	HeroImage          *string          `json:"heroImage"`
}

// RecipeSummary is the list read projection. It carries only the
// hero-image filename, not the full image set.
type RecipeSummary struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Servings  *uint64   `json:"servings"`
	DateAdded time.Time `json:"dateAdded"`
	HeroImage *string   `json:"heroImage"`
}

// AdminRecipeRow is the admin list projection. Category and
// MainIngredient are display conveniences, not stored fields.
type AdminRecipeRow struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	MainIngredient string    `json:"mainIngredient"`
	TimesCooked    int       `json:"timesCooked"`
	DateAdded      time.Time `json:"dateAdded"`
}

// CreateRecipe creates a recipe aggregate with its ingredients and tags
// in one transaction and returns the hydrated aggregate.
func CreateRecipe(db *gorm.DB, in RecipeInput) (*RecipeDetail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &types.ValidationError{Field: "title", Msg: "title must not be empty"}
	}

	var recipeID uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		recipe := models.Recipe{
			Title:              strings.TrimSpace(in.Title),
			Source:             in.Source,
			Instructions:       in.Instructions,
			Servings:           in.Servings,
			EstimatedCalories:  in.EstimatedCalories,
			CaloriesConfidence: in.CaloriesConfidence,
			DateAdded:          time.Now().UTC(),
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return &types.StorageError{Op: "recipe insert", Err: err}
		}
		recipeID = recipe.ID

		if err := insertIngredients(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}

		return linkRecipeTags(tx, recipe.ID, in.Tags)
	})
	if err != nil {
		return nil, err
	}

	return GetRecipe(db, recipeID)
}

// insertIngredients inserts the ingredient list with list index as position
func insertIngredients(tx *gorm.DB, recipeID uint64, ingredients []IngredientInput) error {
	for i, ing := range ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return &types.ValidationError{Field: "ingredients", Msg: "ingredient name must not be empty"}
		}
		row := models.Ingredient{
			RecipeID: recipeID,
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Position: i,
		}
		if err := tx.Create(&row).Error; err != nil {
			return &types.StorageError{Op: "ingredient insert", Err: err}
		}
	}
	return nil
}

// GetRecipe returns the full aggregate or NotFound
func GetRecipe(db *gorm.DB, id uint64) (*RecipeDetail, error) {
	var recipe models.Recipe
	err := silent(db).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&recipe, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.NotFoundError{Entity: "recipe"}
		}
		return nil, &types.StorageError{Op: "recipe select", Err: err}
	}

	return reduceRecipeDetail(&recipe), nil
}

// reduceRecipeDetail converts the model aggregate to the detail projection
func reduceRecipeDetail(recipe *models.Recipe) *RecipeDetail {
	detail := &RecipeDetail{
		ID:                 recipe.ID,
		Title:              recipe.Title,
		Source:             recipe.Source,
		Instructions:       recipe.Instructions,
		Servings:           recipe.Servings,
		ImagePath:          recipe.ImagePath,
		EstimatedCalories:  recipe.EstimatedCalories,
		CaloriesConfidence: recipe.CaloriesConfidence,
		TimesCooked:        recipe.TimesCooked,
		DateAdded:          recipe.DateAdded,
		CreatedAt:          recipe.CreatedAt,
		UpdatedAt:          recipe.UpdatedAt,
		Ingredients:        make([]IngredientView, 0, len(recipe.Ingredients)),
		Tags:               make([]string, 0, len(recipe.Tags)),
		Images:             make([]ImageView, 0, len(recipe.Images)),
	}

	for _, ing := range recipe.Ingredients {
		detail.Ingredients = append(detail.Ingredients, IngredientView{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Position: ing.Position,
		})
	}

	for _, tag := range recipe.Tags {
		detail.Tags = append(detail.Tags, tag.Name)
	}

	for _, img := range recipe.Images {
		detail.Images = append(detail.Images, ImageView{
			ID:           img.ID,
			Filename:     img.Filename,
			OriginalName: img.OriginalName,
			FilePath:     img.FilePath,
			FileSize:     img.FileSize,
			MimeType:     img.MimeType,
			IsHero:       img.IsHero,
			Position:     img.Position,
		})
	}

	detail.HeroImage = heroImage(recipe.Images, recipe.ImagePath)

	return detail
}

// heroImage resolves the display image: the flagged hero, else the
// first image by (is_hero desc, position asc), else the legacy
// image_path field, else nil.
func heroImage(images []models.RecipeImage, legacyPath string) *string {
	var best *models.RecipeImage
	for i := range images {
		img := &images[i]
		if best == nil {
			best = img
			continue
		}
		if img.IsHero != best.IsHero {
			if img.IsHero {
				best = img
			}
			continue
		}
		if img.Position < best.Position {
			best = img
		}
	}
	if best != nil {
		return &best.Filename
	}
	if legacyPath != "" {
		return &legacyPath
	}
	return nil
}

// recipeListRow is the scan target for the list/search queries
type recipeListRow struct {
	ID           uint64
	Title        string
	Source       string
	Servings     *uint64
	ImagePath    string
	DateAdded    time.Time
	HeroFilename *string
}

const heroFilenameSelect = `recipes.id, recipes.title, recipes.source, recipes.servings, recipes.image_path, recipes.date_added,
	(SELECT ri.filename FROM recipe_images ri WHERE ri.recipe_id = recipes.id ORDER BY ri.is_hero DESC, ri.position ASC LIMIT 1) AS hero_filename`

// ListRecipes returns one page ordered by date_added descending plus
// the total count. Limit is clamped to [1,100], offset to >= 0.
func ListRecipes(db *gorm.DB, limit, offset int) ([]RecipeSummary, int64, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := db.Model(&models.Recipe{}).Count(&total).Error; err != nil {
		return nil, 0, &types.StorageError{Op: "recipe count", Err: err}
	}

	var rows []recipeListRow
	err := db.Clauses(hints.CommentBefore("select", "recipedb:list")).
		Model(&models.Recipe{}).
		Select(heroFilenameSelect).
		Order("recipes.date_added DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, &types.StorageError{Op: "recipe list", Err: err}
	}

	return reduceSummaries(rows), total, nil
}

// reduceSummaries converts list rows to the summary projection
func reduceSummaries(rows []recipeListRow) []RecipeSummary {
	summaries := make([]RecipeSummary, 0, len(rows))
	for _, row := range rows {
		summary := RecipeSummary{
			ID:        row.ID,
			Title:     row.Title,
			Source:    row.Source,
			Servings:  row.Servings,
			DateAdded: row.DateAdded,
			HeroImage: row.HeroFilename,
		}
		if summary.HeroImage == nil && row.ImagePath != "" {
			legacy := row.ImagePath
			summary.HeroImage = &legacy
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// ListAdminRecipes returns the admin list projection. Category is the
// recipe's first tag, mainIngredient the first-by-position ingredient.
func ListAdminRecipes(db *gorm.DB) ([]AdminRecipeRow, error) {
	type adminRow struct {
		ID             uint64
		Title          string
		TimesCooked    int
		DateAdded      time.Time
		Category       *string
		MainIngredient *string
	}

	var rows []adminRow
	err := db.Clauses(hints.CommentBefore("select", "recipedb:admin-list")).
		Model(&models.Recipe{}).
		Select(`recipes.id, recipes.title, recipes.times_cooked, recipes.date_added,
			(SELECT t.name FROM tags t JOIN recipe_tags rt ON rt.tag_id = t.id WHERE rt.recipe_id = recipes.id ORDER BY t.id ASC LIMIT 1) AS category,
			(SELECT i.name FROM ingredients i WHERE i.recipe_id = recipes.id ORDER BY i.position ASC LIMIT 1) AS main_ingredient`).
		Order("recipes.date_added DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, &types.StorageError{Op: "admin recipe list", Err: err}
	}

	out := make([]AdminRecipeRow, 0, len(rows))
	for _, row := range rows {
		admin := AdminRecipeRow{
			ID:          row.ID,
			Title:       row.Title,
			TimesCooked: row.TimesCooked,
			DateAdded:   row.DateAdded,
		}
		if row.Category != nil {
			admin.Category = *row.Category
		}
		if row.MainIngredient != nil {
			admin.MainIngredient = *row.MainIngredient
		}
		out = append(out, admin)
	}
	return out, nil
}

// UpdateRecipe applies a partial update. Supplied scalar fields are
// changed on the recipe row; a supplied ingredient or tag set fully
// replaces the existing one inside the same transaction.
func UpdateRecipe(db *gorm.DB, id uint64, up RecipeUpdate) (*RecipeDetail, error) {
	if up.Title != nil && strings.TrimSpace(*up.Title) == "" {
		return nil, &types.ValidationError{Field: "title", Msg: "title must not be empty"}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := silent(tx).First(&recipe, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &types.NotFoundError{Entity: "recipe"}
			}
			return &types.StorageError{Op: "recipe select", Err: err}
		}

		updates := map[string]interface{}{}
		if up.Title != nil {
			updates["title"] = strings.TrimSpace(*up.Title)
		}
		if up.Source != nil {
			updates["source"] = *up.Source
		}
		if up.Instructions != nil {
			updates["instructions"] = *up.Instructions
		}
		if up.Servings != nil {
			updates["servings"] = *up.Servings
		}
		if up.EstimatedCalories != nil {
			updates["estimated_calories"] = *up.EstimatedCalories
		}
		if up.CaloriesConfidence != nil {
			updates["calories_confidence"] = *up.CaloriesConfidence
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return &types.StorageError{Op: "recipe update", Err: err}
			}
		}

		// Delete-all-then-reinsert keeps child replacement atomic and simple
		if up.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
				return &types.StorageError{Op: "ingredient delete", Err: err}
			}
			if err := insertIngredients(tx, id, *up.Ingredients); err != nil {
				return err
			}
		}

		if up.Tags != nil {
			if err := replaceRecipeTags(tx, id, *up.Tags); err != nil {
				return err
			}
			if err := CleanupOrphanTags(tx); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetRecipe(db, id)
}

// DeleteRecipe deletes the aggregate and returns whether a row existed.
// Row deletion is authoritative; backing image files are removed
// best-effort after commit.
func DeleteRecipe(db *gorm.DB, store *storage.Store, id uint64) (bool, error) {
	var filePaths []string
	if err := silent(db).Model(&models.RecipeImage{}).
		Where("recipe_id = ?", id).
		Pluck("file_path", &filePaths).Error; err != nil {
		return false, &types.StorageError{Op: "image path select", Err: err}
	}

	var existed bool
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
			return &types.StorageError{Op: "ingredient delete", Err: err}
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return &types.StorageError{Op: "tag unlink", Err: err}
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeImage{}).Error; err != nil {
			return &types.StorageError{Op: "image delete", Err: err}
		}

		result := tx.Delete(&models.Recipe{}, id)
		if result.Error != nil {
			return &types.StorageError{Op: "recipe delete", Err: result.Error}
		}
		existed = result.RowsAffected > 0

		return CleanupOrphanTags(tx)
	})
	if err != nil {
		return false, err
	}

	if existed {
		removeImageFiles(store, filePaths)
	}

	return existed, nil
}

// MarkCooked increments times_cooked and returns the new count
func MarkCooked(db *gorm.DB, id uint64) (int, error) {
	result := db.Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("times_cooked", gorm.Expr("times_cooked + 1"))
	if result.Error != nil {
		return 0, &types.StorageError{Op: "times_cooked update", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return 0, &types.NotFoundError{Entity: "recipe"}
	}

	var count int
	if err := db.Model(&models.Recipe{}).Where("id = ?", id).
		Pluck("times_cooked", &count).Error; err != nil {
		return 0, &types.StorageError{Op: "times_cooked select", Err: err}
	}
	return count, nil
}

// removeImageFiles deletes backing files best-effort. Failures are
// logged and swallowed, the DB rows are authoritative.
func removeImageFiles(store *storage.Store, paths []string) {
	if store == nil {
		return
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := store.Remove(path); err != nil {
			log.Printf("Failed to remove image file %s: %v", path, err)
		}
	}
}
