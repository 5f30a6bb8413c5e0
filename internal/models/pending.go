package models

import (
	"time"
)

// PendingRecipe is a draft produced by the PDF/URL import path.
// It is a one-way funnel into Recipe: present until approved (copied
// into a Recipe, then deleted outright) or explicitly deleted.
type PendingRecipe struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	FileID        string `gorm:"size:255"` // provenance: source file or URL
	Title         string `gorm:"size:255;not null"`
	Source        string `gorm:"size:255"`
	Category      string `gorm:"size:255"`
	Description   string `gorm:"type:text"`
	Instructions  string `gorm:"type:text"`
	RawText       string `gorm:"type:text"`
	ParsedData    JSON   `gorm:"type:json"` // opaque blob from the AI parse
	ImageFilename string `gorm:"size:255"`
	ImagePath     string `gorm:"size:512"`

	// Carried through to the promoted Recipe as-is
	EstimatedCalories  *int                `gorm:"default:null"`
	CaloriesConfidence string              `gorm:"size:32"`
	CreatedAt          time.Time
	Ingredients        []PendingIngredient `gorm:"foreignKey:PendingRecipeID;constraint:OnDelete:CASCADE"`
	Tags               []PendingTag        `gorm:"foreignKey:PendingRecipeID;constraint:OnDelete:CASCADE"`
}

// PendingIngredient mirrors Ingredient, scoped to a pending recipe
type PendingIngredient struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	PendingRecipeID uint64 `gorm:"not null;index"`
	Name            string `gorm:"size:255;not null"`
	Quantity        string `gorm:"size:64"`
	Unit            string `gorm:"size:64"`
	Position        int    `gorm:"not null;default:0"`
}

// PendingTag is a bare tag string on a draft. Draft tags are stored
// verbatim and only normalized/deduplicated at promotion.
type PendingTag struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	PendingRecipeID uint64 `gorm:"not null;index"`
	Name            string `gorm:"size:255;not null"`
}

// TableName overrides the table name for PendingRecipe
func (PendingRecipe) TableName() string {
	return "pending_recipes"
}

// TableName overrides the table name for PendingIngredient
func (PendingIngredient) TableName() string {
	return "pending_ingredients"
}

// TableName overrides the table name for PendingTag
func (PendingTag) TableName() string {
	return "pending_tags"
}
