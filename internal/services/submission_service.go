// submission_service.go
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
	"strings"
	"time"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// SubmissionInput is the end-user recipe submission
type SubmissionInput struct {
	Title        string            `json:"title"`
	Source       string            `json:"source"`
	Instructions string            `json:"instructions"`
	Servings     *uint64           `json:"servings"`
	Ingredients  []IngredientInput `json:"ingredients"`
	Tags         []string          `json:"tags"`
}

// SubmissionSummary is the submission list projection
type SubmissionSummary struct {
	ID        uint64    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmissionDetail is the full submission projection
type SubmissionDetail struct {
	ID           uint64           `json:"id"`
	UserID       string           `json:"userId"`
	Title        string           `json:"title"`
	Source       string           `json:"source"`
	Instructions string           `json:"instructions"`
	Servings     *uint64          `json:"servings"`
	Status       string           `json:"status"`
	AdminNotes   string           `json:"adminNotes,omitempty"`
	ReviewedBy   *string          `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Ingredients  []IngredientView `json:"ingredients"`
	Tags         []string         `json:"tags"`
}

// ListSubmissionsOptions scope the submission list. Admins see the
// pending queue by default (Status overrides); users see only their
// own rows, whatever their status.
type ListSubmissionsOptions struct {
	UserID  string
	IsAdmin bool
	Status  string
}

// CreateSubmission inserts a user submission with status pending, with
// its children, in one transaction.
func CreateSubmission(db *gorm.DB, userID string, in SubmissionInput) (*SubmissionDetail, error) {
	if userID == "" {
		return nil, &types.ValidationError{Field: "userId", Msg: "submitter is required"}
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, &types.ValidationError{Field: "title", Msg: "title must not be empty"}
	}

	var submissionID uint64
	err := db.Transaction(func(tx *gorm.DB) error {
		sub := models.UserSubmittedRecipe{
			UserID:       userID,
			Title:        strings.TrimSpace(in.Title),
			Source:       in.Source,
			Instructions: in.Instructions,
			Servings:     in.Servings,
			Status:       models.StatusPending,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return &types.StorageError{Op: "submission insert", Err: err}
		}
		submissionID = sub.ID

		for i, ing := range in.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				return &types.ValidationError{Field: "ingredients", Msg: "ingredient name must not be empty"}
			}
			row := models.SubmittedIngredient{
				SubmittedRecipeID: sub.ID,
				Name:              strings.TrimSpace(ing.Name),
				Quantity:          ing.Quantity,
				Unit:              ing.Unit,
				Position:          i,
			}
			if err := tx.Create(&row).Error; err != nil {
				return &types.StorageError{Op: "submitted ingredient insert", Err: err}
			}
		}

		for _, name := range in.Tags {
			if strings.TrimSpace(name) == "" {
				continue
			}
			row := models.SubmittedTag{SubmittedRecipeID: sub.ID, Name: name}
			if err := tx.Create(&row).Error; err != nil {
				return &types.StorageError{Op: "submitted tag insert", Err: err}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return getSubmission(db, submissionID)
}

// ListSubmissions returns the scoped submission list, newest first
func ListSubmissions(db *gorm.DB, opts ListSubmissionsOptions) ([]SubmissionSummary, error) {
	query := db.Model(&models.UserSubmittedRecipe{})

	if opts.IsAdmin {
		// The moderation queue view: pending unless asked otherwise
		status := opts.Status
		if status == "" {
			status = models.StatusPending
		}
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("user_id = ?", opts.UserID)
	}

	var rows []models.UserSubmittedRecipe
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, &types.StorageError{Op: "submission list", Err: err}
	}

	out := make([]SubmissionSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, SubmissionSummary{
			ID:        row.ID,
			UserID:    row.UserID,
			Title:     row.Title,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// GetSubmission returns a submission for its owner or an admin. A
// foreign id is reported as NotFound, not Forbidden, so ownership is
// not leaked.
func GetSubmission(db *gorm.DB, id uint64, requesterID string, isAdmin bool) (*SubmissionDetail, error) {
	detail, err := getSubmission(db, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && detail.UserID != requesterID {
		return nil, &types.NotFoundError{Entity: "submission"}
	}
	return detail, nil
}

func getSubmission(db *gorm.DB, id uint64) (*SubmissionDetail, error) {
	var sub models.UserSubmittedRecipe
	err := silent(db).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Tags").
		First(&sub, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.NotFoundError{Entity: "submission"}
		}
		return nil, &types.StorageError{Op: "submission select", Err: err}
	}

	return reduceSubmission(&sub), nil
}

func reduceSubmission(sub *models.UserSubmittedRecipe) *SubmissionDetail {
	detail := &SubmissionDetail{
		ID:           sub.ID,
		UserID:       sub.UserID,
		Title:        sub.Title,
		Source:       sub.Source,
		Instructions: sub.Instructions,
		Servings:     sub.Servings,
		Status:       sub.Status,
		AdminNotes:   sub.AdminNotes,
		ReviewedBy:   sub.ReviewedBy,
		ReviewedAt:   sub.ReviewedAt,
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    sub.UpdatedAt,
		Ingredients:  make([]IngredientView, 0, len(sub.Ingredients)),
		Tags:         make([]string, 0, len(sub.Tags)),
	}
	for _, ing := range sub.Ingredients {
		detail.Ingredients = append(detail.Ingredients, IngredientView{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Position: ing.Position,
		})
	}
	for _, tag := range sub.Tags {
		detail.Tags = append(detail.Tags, tag.Name)
	}
	return detail
}

// ApproveSubmission promotes a pending submission into a canonical
// recipe and stamps the review, all in one transaction. The re-fetch
// filtered on status pending plus the conditional status UPDATE make
// concurrent double-approval safe: exactly one caller wins. Returns
// the new canonical recipe id.
func ApproveSubmission(db *gorm.DB, id uint64, adminID, notes string) (uint64, error) {
	var newRecipeID uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		var sub models.UserSubmittedRecipe
		err := silent(tx).
			Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC")
			}).
			Preload("Tags").
			Where("id = ? AND status = ?", id, models.StatusPending).
			First(&sub).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reviewMissError(tx, id)
			}
			return &types.StorageError{Op: "submission select", Err: err}
		}

		recipe := models.Recipe{
			Title:        sub.Title,
			Source:       sub.Source,
			Instructions: sub.Instructions,
			Servings:     sub.Servings,
			DateAdded:    time.Now().UTC(),
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return &types.StorageError{Op: "recipe insert", Err: err}
		}
		newRecipeID = recipe.ID

		for _, ing := range sub.Ingredients {
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

		tagNames := make([]string, 0, len(sub.Tags))
		for _, tag := range sub.Tags {
			tagNames = append(tagNames, tag.Name)
		}
		if err := linkRecipeTags(tx, recipe.ID, tagNames); err != nil {
			return err
		}

		return stampReview(tx, id, models.StatusApproved, adminID, notes)
	})
	if err != nil {
		return 0, err
	}

	return newRecipeID, nil
}

// RejectSubmission terminates a pending submission with a required
// reason. A single conditional UPDATE; zero affected rows means "not
// found or already reviewed".
func RejectSubmission(db *gorm.DB, id uint64, adminID, notes string) error {
	if strings.TrimSpace(notes) == "" {
		return &types.ValidationError{Field: "notes", Msg: "rejection notes must not be empty"}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return stampReview(tx, id, models.StatusRejected, adminID, notes)
	})
}

// stampReview performs the conditional status transition out of
// pending. RowsAffected zero means the row is gone or already
// terminal; reviewMissError distinguishes the two.
func stampReview(tx *gorm.DB, id uint64, status, adminID, notes string) error {
	now := time.Now().UTC()
	result := tx.Model(&models.UserSubmittedRecipe{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"admin_notes": notes,
			"reviewed_by": adminID,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return &types.StorageError{Op: "review update", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return reviewMissError(tx, id)
	}
	return nil
}

// reviewMissError distinguishes a missing row (NotFound) from an
// already-reviewed one (Conflict). Both carry the same boundary
// message so callers cannot probe review history.
func reviewMissError(tx *gorm.DB, id uint64) error {
	var count int64
	if err := tx.Model(&models.UserSubmittedRecipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return &types.StorageError{Op: "submission select", Err: err}
	}
	if count > 0 {
		return &types.ConflictError{Msg: "not found or already reviewed"}
	}
	return &types.NotFoundError{Entity: "submission"}
}

// DeleteSubmission removes a still-pending submission. For non-admin
// callers the ownership check is part of the WHERE clause, so there is
// no window between check and delete.
func DeleteSubmission(db *gorm.DB, id uint64, requesterID string, isAdmin bool) (bool, error) {
	var existed bool

	err := db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ? AND status = ?", id, models.StatusPending)
		if !isAdmin {
			query = query.Where("user_id = ?", requesterID)
		}

		result := query.Delete(&models.UserSubmittedRecipe{})
		if result.Error != nil {
			return &types.StorageError{Op: "submission delete", Err: result.Error}
		}
		if result.RowsAffected == 0 {
			return nil
		}
		existed = true

		if err := tx.Where("submitted_recipe_id = ?", id).Delete(&models.SubmittedIngredient{}).Error; err != nil {
			return &types.StorageError{Op: "submitted ingredient delete", Err: err}
		}
		if err := tx.Where("submitted_recipe_id = ?", id).Delete(&models.SubmittedTag{}).Error; err != nil {
			return &types.StorageError{Op: "submitted tag delete", Err: err}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return existed, nil
}
