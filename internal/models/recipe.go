// recipe.go
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

package models

import (
	"time"
)

// Recipe is a canonical, publicly readable recipe
type Recipe struct {
	ID                 uint64 `gorm:"primaryKey;autoIncrement"`
	Title              string `gorm:"size:255;not null"`
	Source             string `gorm:"size:255"`
	Instructions       string `gorm:"type:text"`
	Servings           *uint64
	ImagePath          string `gorm:"size:512"` // legacy single-image field, superseded by Images
	EstimatedCalories  *int
	CaloriesConfidence string `gorm:"size:32"`
	TimesCooked        int    `gorm:"not null;default:0"`
	DateAdded          time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Ingredients        []Ingredient  `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags               []Tag         `gorm:"many2many:recipe_tags;"`
	Images             []RecipeImage `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// Ingredient is owned exclusively by its parent recipe and replaced
// wholesale on update, never partially patched.
type Ingredient struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	RecipeID uint64 `gorm:"not null;index"`
	Name     string `gorm:"size:255;not null"`
	Quantity string `gorm:"size:64"` // string to preserve fractions like "1/2"
	Unit     string `gorm:"size:64"`
	Position int    `gorm:"not null;default:0"`
}

// Tag is shared across recipes via recipe_tags; names are normalized to
// lowercase before insert and garbage-collected when unreferenced.
type Tag struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

// RecipeTag is the recipe/tag junction row
type RecipeTag struct {
	RecipeID uint64 `gorm:"primaryKey"`
	TagID    uint64 `gorm:"primaryKey"`
}

// RecipeImage is one image of a recipe's ordered image set.
// At most one row per recipe has IsHero = true.
type RecipeImage struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	RecipeID     uint64 `gorm:"not null;index"`
	Filename     string `gorm:"size:255;not null"`
	OriginalName string `gorm:"size:255"`
	FilePath     string `gorm:"size:512"`
	FileSize     int64
	MimeType     string `gorm:"size:128"`
	IsHero       bool   `gorm:"not null;default:false"`
	Position     int    `gorm:"not null;default:0"`
	UploadedBy   string `gorm:"type:char(36)"`
	CreatedAt    time.Time
}

// TableName overrides the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// TableName overrides the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TableName overrides the table name for RecipeTag
func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// TableName overrides the table name for RecipeImage
func (RecipeImage) TableName() string {
	return "recipe_images"
}
