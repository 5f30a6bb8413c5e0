package services

import (
	"log"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// ImageMeta describes an already-saved image file. File writes happen
// before any transaction opens, so no disk I/O holds a connection.
type ImageMeta struct {
	Filename     string
	OriginalName string
	FilePath     string
	FileSize     int64
	MimeType     string
	UploadedBy   string
}

// AddImage appends an image to a recipe's image set. When isHero is
// set the existing hero flag is cleared in the same transaction,
// preserving the single-hero invariant. Position is max+1, or 0 if the
// set is empty.
func AddImage(db *gorm.DB, recipeID uint64, meta ImageMeta, isHero bool) (*ImageView, error) {
	var view ImageView

	err := db.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&exists).Error; err != nil {
			return &types.StorageError{Op: "recipe select", Err: err}
		}
		if exists == 0 {
			return &types.NotFoundError{Entity: "recipe"}
		}

		if isHero {
			if err := tx.Model(&models.RecipeImage{}).
				Where("recipe_id = ? AND is_hero = ?", recipeID, true).
				Update("is_hero", false).Error; err != nil {
				return &types.StorageError{Op: "hero clear", Err: err}
			}
		}

		var next int
		if err := tx.Model(&models.RecipeImage{}).
			Where("recipe_id = ?", recipeID).
			Select("COALESCE(MAX(position), -1) + 1").
			Scan(&next).Error; err != nil {
			return &types.StorageError{Op: "position select", Err: err}
		}

		img := models.RecipeImage{
			RecipeID:     recipeID,
			Filename:     meta.Filename,
			OriginalName: meta.OriginalName,
			FilePath:     meta.FilePath,
			FileSize:     meta.FileSize,
			MimeType:     meta.MimeType,
			IsHero:       isHero,
			Position:     next,
			UploadedBy:   meta.UploadedBy,
		}
		if err := tx.Create(&img).Error; err != nil {
			return &types.StorageError{Op: "image insert", Err: err}
		}

		view = ImageView{
			ID:           img.ID,
			Filename:     img.Filename,
			OriginalName: img.OriginalName,
			FilePath:     img.FilePath,
			FileSize:     img.FileSize,
			MimeType:     img.MimeType,
			IsHero:       img.IsHero,
			Position:     img.Position,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &view, nil
}

// SetHeroImage atomically clears the current hero and flags the target.
// No-op-safe if the target is already hero.
func SetHeroImage(db *gorm.DB, recipeID, imageID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var img models.RecipeImage
		if err := silent(tx).Where("id = ? AND recipe_id = ?", imageID, recipeID).
			First(&img).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &types.NotFoundError{Entity: "image"}
			}
			return &types.StorageError{Op: "image select", Err: err}
		}

		if err := tx.Model(&models.RecipeImage{}).
			Where("recipe_id = ? AND is_hero = ? AND id <> ?", recipeID, true, imageID).
			Update("is_hero", false).Error; err != nil {
			return &types.StorageError{Op: "hero clear", Err: err}
		}

		if err := tx.Model(&models.RecipeImage{}).
			Where("id = ?", imageID).
			Update("is_hero", true).Error; err != nil {
			return &types.StorageError{Op: "hero set", Err: err}
		}

		return nil
	})
}

// ReorderImages rewrites positions so each image takes its index in the
// supplied order. The id list must be a permutation of the recipe's
// full image set; otherwise the call fails with ValidationError and
// performs no writes.
func ReorderImages(db *gorm.DB, recipeID uint64, orderedIDs []uint64) error {
	if len(orderedIDs) == 0 {
		return &types.ValidationError{Field: "imageIds", Msg: "image id list must not be empty"}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var ownedIDs []uint64
		if err := tx.Model(&models.RecipeImage{}).
			Where("recipe_id = ?", recipeID).
			Pluck("id", &ownedIDs).Error; err != nil {
			return &types.StorageError{Op: "image select", Err: err}
		}

		owned := make(map[uint64]struct{}, len(ownedIDs))
		for _, id := range ownedIDs {
			owned[id] = struct{}{}
		}

		seen := make(map[uint64]struct{}, len(orderedIDs))
		for _, id := range orderedIDs {
			if _, ok := owned[id]; !ok {
				return &types.ValidationError{Field: "imageIds", Msg: "image does not belong to this recipe"}
			}
			if _, dup := seen[id]; dup {
				return &types.ValidationError{Field: "imageIds", Msg: "duplicate image id"}
			}
			seen[id] = struct{}{}
		}
		if len(seen) != len(owned) {
			return &types.ValidationError{Field: "imageIds", Msg: "image id list must include every image of the recipe"}
		}

		for index, id := range orderedIDs {
			if err := tx.Model(&models.RecipeImage{}).
				Where("id = ?", id).
				Update("position", index).Error; err != nil {
				return &types.StorageError{Op: "position update", Err: err}
			}
		}

		return nil
	})
}

// DeleteImage removes the row, compacts the surviving positions, then
// best-effort deletes the backing file. File-deletion failure is logged
// and swallowed; the DB row is authoritative for the returned result.
func DeleteImage(db *gorm.DB, store *storage.Store, imageID uint64) (bool, error) {
	var filePath string
	var existed bool

	err := db.Transaction(func(tx *gorm.DB) error {
		var img models.RecipeImage
		if err := silent(tx).First(&img, imageID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return &types.StorageError{Op: "image select", Err: err}
		}
		filePath = img.FilePath

		if err := tx.Delete(&models.RecipeImage{}, imageID).Error; err != nil {
			return &types.StorageError{Op: "image delete", Err: err}
		}

		// Keep positions dense so AddImage's max+1 stays gap-free.
		if err := tx.Model(&models.RecipeImage{}).
			Where("recipe_id = ? AND position > ?", img.RecipeID, img.Position).
			Update("position", gorm.Expr("position - 1")).Error; err != nil {
			return &types.StorageError{Op: "position compact", Err: err}
		}
		existed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if existed && store != nil && filePath != "" {
		if err := store.Remove(filePath); err != nil {
			log.Printf("Failed to remove image file %s: %v", filePath, err)
		}
	}

	return existed, nil
}
