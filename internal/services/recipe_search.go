package services

import (
	"strings"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// SearchInput holds the recipe search filters. At least one filter
// must be set.
type SearchInput struct {
	Title       string   // substring, case-insensitive
	Ingredient  string   // substring, case-insensitive
	Ingredients []string // recipe must contain ALL listed names
	Tags        []string // recipe must have at least one
}

func (s SearchInput) empty() bool {
	return strings.TrimSpace(s.Title) == "" &&
		strings.TrimSpace(s.Ingredient) == "" &&
		len(s.Ingredients) == 0 &&
		len(s.Tags) == 0
}

// SearchRecipes filters the catalog with simple LIKE matching. The
// all-ingredients filter is a single GROUP BY/HAVING count-equality
// query, not multiple round trips.
func SearchRecipes(db *gorm.DB, in SearchInput) ([]RecipeSummary, error) {
	if in.empty() {
		return nil, &types.ValidationError{Field: "search", Msg: "at least one search parameter is required"}
	}

	query := db.Clauses(hints.CommentBefore("select", "recipedb:search")).
		Model(&models.Recipe{}).
		Select(heroFilenameSelect)

	if title := strings.TrimSpace(in.Title); title != "" {
		query = query.Where("LOWER(recipes.title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	if ingredient := strings.TrimSpace(in.Ingredient); ingredient != "" {
		query = query.Where(
			"recipes.id IN (SELECT i.recipe_id FROM ingredients i WHERE LOWER(i.name) LIKE ?)",
			"%"+strings.ToLower(ingredient)+"%")
	}

	if len(in.Ingredients) > 0 {
		names := make([]string, 0, len(in.Ingredients))
		for _, n := range in.Ingredients {
			n = strings.ToLower(strings.TrimSpace(n))
			if n != "" {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			query = query.Where(
				`recipes.id IN (
					SELECT i.recipe_id FROM ingredients i
					WHERE LOWER(i.name) IN ?
					GROUP BY i.recipe_id
					HAVING COUNT(DISTINCT LOWER(i.name)) = ?)`,
				names, len(names))
		}
	}

	if len(in.Tags) > 0 {
		tags := normalizeTagSet(in.Tags)
		if len(tags) > 0 {
			query = query.Where(
				`recipes.id IN (
					SELECT rt.recipe_id FROM recipe_tags rt
					JOIN tags t ON t.id = rt.tag_id
					WHERE t.name IN ?)`,
				tags)
		}
	}

	var rows []recipeListRow
	if err := query.Order("recipes.date_added DESC").Scan(&rows).Error; err != nil {
		return nil, &types.StorageError{Op: "recipe search", Err: err}
	}

	return reduceSummaries(rows), nil
}
