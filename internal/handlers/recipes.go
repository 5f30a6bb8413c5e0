// recipes.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/internal/utils"
	"gorm.io/gorm"
)

// RecipeHandler handles recipe catalog routes
type RecipeHandler struct {
	DB    *gorm.DB
	Store *storage.Store
}

// recipeBody is the create request shape. FlexList/FlexUint64 accept
// both single values and arrays, and numbers as strings, matching what
// browser form serializers send.
type recipeBody struct {
	Title              string                                   `json:"title"`
	Source             string                                   `json:"source"`
	Instructions       string                                   `json:"instructions"`
	Servings           *types.FlexUint64                        `json:"servings"`
	EstimatedCalories  *int                                     `json:"estimatedCalories"`
	CaloriesConfidence string                                   `json:"caloriesConfidence"`
	Ingredients        types.FlexList[services.IngredientInput] `json:"ingredients"`
	Tags               types.FlexList[string]                   `json:"tags"`
}

// ListRecipes handles GET /api/recipes
// @Summary List recipes
// @Description Get one page of the recipe catalog, newest first
// @Tags Recipes
// @Accept json
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes [get]
func (h *RecipeHandler) ListRecipes(c *fiber.Ctx) error {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	recipes, total, err := services.ListRecipes(h.DB, limit, offset)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listRecipes")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"recipes": recipes,
		"total":   total,
	})
}

// SearchRecipes handles GET /api/recipes/search
// @Summary Search recipes
// @Description Filter recipes by title, ingredient, ingredients (all required) and tags (any)
// @Tags Recipes
// @Accept json
// @Produce json
// @Param title query string false "Title substring"
// @Param ingredient query string false "Ingredient substring"
// @Param ingredients query string false "Comma-separated ingredient names, all required"
// @Param tags query string false "Comma-separated tags, any matches"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/search [get]
func (h *RecipeHandler) SearchRecipes(c *fiber.Ctx) error {
	in := services.SearchInput{
		Title:       c.Query("title"),
		Ingredient:  c.Query("ingredient"),
		Ingredients: parseListParam(c, "ingredients"),
		Tags:        parseListParam(c, "tags"),
	}

	recipes, err := services.SearchRecipes(h.DB, in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "searchRecipes")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"recipes": recipes,
		"total":   len(recipes),
	})
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Get a recipe
// @Description Get the full recipe aggregate with ingredients, tags and images
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} services.RecipeDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "recipes.validation.input")
	}

	recipe, err := services.GetRecipe(h.DB, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getRecipe")
	}

	return c.Status(fiber.StatusOK).JSON(recipe)
}

// CreateRecipe handles POST /api/recipes
// @Summary Create a recipe
// @Description Create a recipe aggregate with ingredients and tags
// @Tags Recipes
// @Accept json
// @Produce json
// @Param body body object true "Recipe to create"
// @Success 201 {object} services.RecipeDetail
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes [post]
func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	var body recipeBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "recipes.validation.input")
	}

	in := services.RecipeInput{
		Title:              body.Title,
		Source:             body.Source,
		Instructions:       body.Instructions,
		EstimatedCalories:  body.EstimatedCalories,
		CaloriesConfidence: body.CaloriesConfidence,
		Ingredients:        body.Ingredients.Slice(),
		Tags:               body.Tags.Slice(),
	}
	if body.Servings != nil {
		servings := body.Servings.Uint64()
		in.Servings = &servings
	}

	recipe, err := services.CreateRecipe(h.DB, in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createRecipe")
	}

	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// UpdateRecipe handles PUT /api/recipes/:id
// @Summary Update a recipe
// @Description Partially update a recipe; a supplied ingredients or tags array (even empty) fully replaces the existing set
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param body body object true "Fields to update"
// @Success 200 {object} services.RecipeDetail
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id} [put]
func (h *RecipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "recipes.validation.input")
	}

	var up services.RecipeUpdate
	if err := c.BodyParser(&up); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "recipes.validation.input")
	}

	recipe, err := services.UpdateRecipe(h.DB, id, up)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "updateRecipe")
	}

	return c.Status(fiber.StatusOK).JSON(recipe)
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Description Delete a recipe aggregate, its images and orphaned tags
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "recipes.validation.input")
	}

	existed, err := services.DeleteRecipe(h.DB, h.Store, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "deleteRecipe")
	}
	if !existed {
		return utils.NotFoundResponse(c, "recipe not found")
	}

	return utils.MutationSuccessResponse(c, 1)
}

// ListAdminRecipes handles GET /api/admin/recipes
// @Summary Admin recipe list
// @Description List recipes with derived category and main ingredient columns
// @Tags Recipes
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/recipes [get]
func (h *RecipeHandler) ListAdminRecipes(c *fiber.Ctx) error {
	recipes, err := services.ListAdminRecipes(h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listAdminRecipes")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"recipes": recipes,
		"total":   len(recipes),
	})
}

// MarkCooked handles POST /api/recipes/:id/cooked
// @Summary Mark a recipe cooked
// @Description Increment the recipe's times-cooked counter
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id}/cooked [post]
func (h *RecipeHandler) MarkCooked(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "recipes.validation.input")
	}

	count, err := services.MarkCooked(h.DB, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "markCooked")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":          true,
		"timesCooked": count,
	})
}
