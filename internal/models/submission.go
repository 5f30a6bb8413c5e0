package models

import (
	"time"
)

// User submission review states. Status is monotonic:
// pending -> approved | rejected, no other transitions.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// UserSubmittedRecipe is a draft submitted by an end user. Reviewed
// rows are retained for audit with the reviewer stamp.
type UserSubmittedRecipe struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	UserID       string `gorm:"type:char(36);not null;index"`
	Title        string `gorm:"size:255;not null"`
	Source       string `gorm:"size:255"`
	Instructions string `gorm:"type:text"`
	Servings     *uint64
	Status       string `gorm:"size:16;not null;default:pending;index"`
	AdminNotes   string `gorm:"type:text"`
	ReviewedBy   *string `gorm:"type:char(36)"`
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Ingredients  []SubmittedIngredient `gorm:"foreignKey:SubmittedRecipeID;constraint:OnDelete:CASCADE"`
	Tags         []SubmittedTag        `gorm:"foreignKey:SubmittedRecipeID;constraint:OnDelete:CASCADE"`
}

// SubmittedIngredient mirrors Ingredient, scoped to a user submission
type SubmittedIngredient struct {
	ID                uint64 `gorm:"primaryKey;autoIncrement"`
	SubmittedRecipeID uint64 `gorm:"not null;index"`
	Name              string `gorm:"size:255;not null"`
	Quantity          string `gorm:"size:64"`
	Unit              string `gorm:"size:64"`
	Position          int    `gorm:"not null;default:0"`
}

// SubmittedTag is a bare tag string on a user submission
type SubmittedTag struct {
	ID                uint64 `gorm:"primaryKey;autoIncrement"`
	SubmittedRecipeID uint64 `gorm:"not null;index"`
	Name              string `gorm:"size:255;not null"`
}

// TableName overrides the table name for UserSubmittedRecipe
func (UserSubmittedRecipe) TableName() string {
	return "user_submitted_recipes"
}

// TableName overrides the table name for SubmittedIngredient
func (SubmittedIngredient) TableName() string {
	return "submitted_ingredients"
}

// TableName overrides the table name for SubmittedTag
func (SubmittedTag) TableName() string {
	return "submitted_tags"
}
