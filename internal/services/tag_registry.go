package services

import (
	"strings"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NormalizeTag is the single normalization point for tag names.
// Callers pass raw strings; draft tags stay verbatim until promotion.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeTagSet normalizes and dedupes, preserving first-seen order
func normalizeTagSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeTag(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// GetOrCreateTag returns the id of the tag with the normalized name,
// creating it if needed. Insert-or-ignore then re-select, so it is safe
// to race with concurrent creation of the same name.
func GetOrCreateTag(tx *gorm.DB, name string) (uint64, error) {
	name = NormalizeTag(name)
	if name == "" {
		return 0, &types.ValidationError{Field: "tag", Msg: "tag name must not be empty"}
	}

	tag := models.Tag{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error; err != nil {
		return 0, &types.StorageError{Op: "tag insert", Err: err}
	}

	if tag.ID == 0 {
		// Conflicted with an existing row, fetch it
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			return 0, &types.StorageError{Op: "tag select", Err: err}
		}
	}

	return tag.ID, nil
}

// LinkTag associates a tag with a recipe. Idempotent.
func LinkTag(tx *gorm.DB, recipeID, tagID uint64) error {
	link := models.RecipeTag{RecipeID: recipeID, TagID: tagID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return &types.StorageError{Op: "tag link", Err: err}
	}
	return nil
}

// CleanupOrphanTags purges every tag with zero recipe references.
// Called after any operation that can shrink a recipe's tag set; a tag
// may exist unreferenced for the lifetime of one transaction.
func CleanupOrphanTags(tx *gorm.DB) error {
	if err := tx.Exec("DELETE FROM tags WHERE id NOT IN (SELECT DISTINCT tag_id FROM recipe_tags)").Error; err != nil {
		return &types.StorageError{Op: "orphan tag cleanup", Err: err}
	}
	return nil
}

// linkRecipeTags gets-or-creates and links the normalized, deduped set
func linkRecipeTags(tx *gorm.DB, recipeID uint64, names []string) error {
	for _, name := range normalizeTagSet(names) {
		tagID, err := GetOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		if err := LinkTag(tx, recipeID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// replaceRecipeTags drops all existing links and relinks the new set
func replaceRecipeTags(tx *gorm.DB, recipeID uint64, names []string) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return &types.StorageError{Op: "tag unlink", Err: err}
	}
	return linkRecipeTags(tx, recipeID, names)
}

// silent returns a session that suppresses query logging for reads
// that are expected to miss.
func silent(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}
