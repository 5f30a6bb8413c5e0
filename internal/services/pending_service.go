package services

import (
	"strings"
	"time"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// PendingInput is the draft produced by the PDF/URL import path. All
// parsing/extraction happens before the insert transaction begins.
type PendingInput struct {
	FileID        string            `json:"fileId"`
	Title         string            `json:"title"`
	Source        string            `json:"source"`
	Category      string            `json:"category"`
	Description   string            `json:"description"`
	Instructions  string            `json:"instructions"`
	RawText       string            `json:"rawText"`
	ParsedData    []byte            `json:"-"`
	ImageFilename string            `json:"imageFilename"`
	ImagePath     string            `json:"imagePath"`
	Ingredients   []IngredientInput `json:"ingredients"`
	Tags          []string          `json:"tags"`

	EstimatedCalories  *int   `json:"estimatedCalories"`
	CaloriesConfidence string `json:"caloriesConfidence"`
}

// PendingSummary is the pending queue list projection
type PendingSummary struct {
	ID        uint64    `json:"id"`
	FileID    string    `json:"fileId"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// PendingDetail is the full pending draft projection. Tags are the
// verbatim draft strings, not yet normalized.
type PendingDetail struct {
	ID            uint64           `json:"id"`
	FileID        string           `json:"fileId"`
	Title         string           `json:"title"`
	Source        string           `json:"source"`
	Category      string           `json:"category"`
	Description   string           `json:"description"`
	Instructions  string           `json:"instructions"`
	RawText       string           `json:"rawText"`
	ImageFilename string           `json:"imageFilename,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	Ingredients   []IngredientView `json:"ingredients"`
	Tags          []string         `json:"tags"`

	EstimatedCalories  *int   `json:"estimatedCalories,omitempty"`
	CaloriesConfidence string `json:"caloriesConfidence,omitempty"`
}

// CreatePending inserts a pending draft with its children in one
// transaction. Draft tags are stored verbatim; normalization waits for
// promotion.
func CreatePending(db *gorm.DB, in PendingInput) (*PendingDetail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &types.ValidationError{Field: "title", Msg: "title must not be empty"}
	}

	var pendingID uint64
	err := db.Transaction(func(tx *gorm.DB) error {
		pending := models.PendingRecipe{
			FileID:        in.FileID,
			Title:         strings.TrimSpace(in.Title),
			Source:        in.Source,
			Category:      in.Category,
			Description:   in.Description,
			Instructions:  in.Instructions,
			RawText:       in.RawText,
			ImageFilename: in.ImageFilename,
			ImagePath:     in.ImagePath,

			EstimatedCalories:  in.EstimatedCalories,
			CaloriesConfidence: in.CaloriesConfidence,
		}
		if len(in.ParsedData) > 0 {
			pending.ParsedData.JSON = in.ParsedData
		}
		if err := tx.Create(&pending).Error; err != nil {
			return &types.StorageError{Op: "pending insert", Err: err}
		}
		pendingID = pending.ID

		for i, ing := range in.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				return &types.ValidationError{Field: "ingredients", Msg: "ingredient name must not be empty"}
			}
			row := models.PendingIngredient{
				PendingRecipeID: pending.ID,
				Name:            strings.TrimSpace(ing.Name),
				Quantity:        ing.Quantity,
				Unit:            ing.Unit,
				Position:        i,
			}
			if err := tx.Create(&row).Error; err != nil {
				return &types.StorageError{Op: "pending ingredient insert", Err: err}
			}
		}

		for _, name := range in.Tags {
			if strings.TrimSpace(name) == "" {
				continue
			}
			row := models.PendingTag{PendingRecipeID: pending.ID, Name: name}
			if err := tx.Create(&row).Error; err != nil {
				return &types.StorageError{Op: "pending tag insert", Err: err}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetPending(db, pendingID)
}

// ListPending returns the review queue, oldest first
func ListPending(db *gorm.DB) ([]PendingSummary, error) {
	var rows []models.PendingRecipe
	if err := db.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, &types.StorageError{Op: "pending list", Err: err}
	}

	out := make([]PendingSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, PendingSummary{
			ID:        row.ID,
			FileID:    row.FileID,
			Title:     row.Title,
			Source:    row.Source,
			Category:  row.Category,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// GetPending returns the full draft or NotFound
func GetPending(db *gorm.DB, id uint64) (*PendingDetail, error) {
	var pending models.PendingRecipe
	err := silent(db).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Tags").
		First(&pending, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.NotFoundError{Entity: "pending recipe"}
		}
		return nil, &types.StorageError{Op: "pending select", Err: err}
	}

	detail := &PendingDetail{
		ID:            pending.ID,
		FileID:        pending.FileID,
		Title:         pending.Title,
		Source:        pending.Source,
		Category:      pending.Category,
		Description:   pending.Description,
		Instructions:  pending.Instructions,
		RawText:       pending.RawText,
		ImageFilename: pending.ImageFilename,
		CreatedAt:     pending.CreatedAt,
		Ingredients:   make([]IngredientView, 0, len(pending.Ingredients)),
		Tags:          make([]string, 0, len(pending.Tags)),

		EstimatedCalories:  pending.EstimatedCalories,
		CaloriesConfidence: pending.CaloriesConfidence,
	}
	for _, ing := range pending.Ingredients {
		detail.Ingredients = append(detail.Ingredients, IngredientView{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Position: ing.Position,
		})
	}
	for _, tag := range pending.Tags {
		detail.Tags = append(detail.Tags, tag.Name)
	}

	return detail, nil
}

// ApprovePending promotes a pending draft into a canonical recipe and
// deletes the pending row outright, all in one transaction. Draft tag
// strings finally get normalized here via the tag registry. Returns
// the new canonical recipe id.
func ApprovePending(db *gorm.DB, id uint64) (uint64, error) {
	var newRecipeID uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		var pending models.PendingRecipe
		err := silent(tx).
			Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC")
			}).
			Preload("Tags").
			First(&pending, id).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return &types.NotFoundError{Entity: "pending recipe"}
			}
			return &types.StorageError{Op: "pending select", Err: err}
		}

		recipe := models.Recipe{
			Title:              pending.Title,
			Source:             pending.Source,
			Instructions:       pending.Instructions,
			ImagePath:          pending.ImagePath,
			EstimatedCalories:  pending.EstimatedCalories,
			CaloriesConfidence: pending.CaloriesConfidence,
			DateAdded:          time.Now().UTC(),
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return &types.StorageError{Op: "recipe insert", Err: err}
		}
		newRecipeID = recipe.ID

		for _, ing := range pending.Ingredients {
			row := models.Ingredient{
				RecipeID: recipe.ID,
				Name:     ing.Name,
				Quantity: ing.Quantity,
				Unit:     ing.Unit,
				Position: ing.Position,
			}
			if err := tx.Create(&row).Error; err != nil {
				return &types.StorageError{Op: "ingredient insert", Err: err}
			}
		}

		tagNames := make([]string, 0, len(pending.Tags)+1)
		for _, tag := range pending.Tags {
			tagNames = append(tagNames, tag.Name)
		}
		if pending.Category != "" {
			tagNames = append(tagNames, pending.Category)
		}
		if err := linkRecipeTags(tx, recipe.ID, tagNames); err != nil {
			return err
		}

		return deletePendingRows(tx, id, true)
	})
	if err != nil {
		return 0, err
	}

	return newRecipeID, nil
}

// DeletePending removes a still-pending draft and returns whether a
// row existed.
func DeletePending(db *gorm.DB, id uint64) (bool, error) {
	var existed bool
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := deletePendingRows(tx, id, false); err != nil {
			if _, ok := err.(*types.ConflictError); ok {
				return nil
			}
			return err
		}
		existed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// deletePendingRows removes children then the parent. Zero affected
// parent rows means a concurrent approve or delete already took it.
func deletePendingRows(tx *gorm.DB, id uint64, conflictOnMiss bool) error {
	if err := tx.Where("pending_recipe_id = ?", id).Delete(&models.PendingIngredient{}).Error; err != nil {
		return &types.StorageError{Op: "pending ingredient delete", Err: err}
	}
	if err := tx.Where("pending_recipe_id = ?", id).Delete(&models.PendingTag{}).Error; err != nil {
		return &types.StorageError{Op: "pending tag delete", Err: err}
	}

	result := tx.Delete(&models.PendingRecipe{}, id)
	if result.Error != nil {
		return &types.StorageError{Op: "pending delete", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		if conflictOnMiss {
			return &types.ConflictError{Msg: "not found or already reviewed"}
		}
		return &types.ConflictError{Msg: "not found"}
	}
	return nil
}
