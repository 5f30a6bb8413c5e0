// imports.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/recipedb/internal/parser"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/utils"
	"gorm.io/gorm"
)

// ImportHandler handles the PDF/URL ingestion pipeline. Extraction and
// AI parsing are network calls; both complete before the pending draft
// transaction opens.
type ImportHandler struct {
	DB     *gorm.DB
	Parser *parser.Client
}

// importBody is the import request: exactly one of filePath or url
type importBody struct {
	FilePath string `json:"file_path"`
	URL      string `json:"url"`
}

// ImportRecipe handles POST /api/import
// @Summary Import a recipe from a PDF file or URL
// @Description Extract text, parse it with the AI parsing service, and stage the result as a pending draft
// @Tags Import
// @Accept json
// @Produce json
// @Param body body importBody true "File path or URL to import"
// @Success 201 {object} services.PendingDetail
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /import [post]
func (h *ImportHandler) ImportRecipe(c *fiber.Ctx) error {
	var body importBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "import.validation.input")
	}

	filePath := strings.TrimSpace(body.FilePath)
	url := strings.TrimSpace(body.URL)
	if (filePath == "") == (url == "") {
		return utils.ErrorResponse(c, "Exactly one of file_path or url is required", fiber.StatusBadRequest, "import.validation.input")
	}

	var text string
	var source string
	var err error
	if filePath != "" {
		text, err = h.Parser.ExtractFile(filePath)
		source = filePath
	} else {
		text, err = h.Parser.ExtractURL(url)
		source = url
	}
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "import.extract")
	}

	parsed, rawBody, err := h.Parser.ParseRecipe(text)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "import.parse")
	}

	in := services.PendingInput{
		FileID:       uuid.New().String(),
		Title:        parsed.Title,
		Source:       parsed.Source,
		Category:     parsed.Category,
		Description:  parsed.Description,
		Instructions: parsed.Instructions,
		RawText:      text,
		ParsedData:   rawBody,
		Tags:         parsed.Tags,

		EstimatedCalories:  parsed.EstimatedCalories,
		CaloriesConfidence: parsed.CaloriesConfidence,
	}
	if in.Source == "" {
		in.Source = source
	}
	for _, ing := range parsed.Ingredients {
		name := ing.Name
		if name == "" {
			continue
		}
		in.Ingredients = append(in.Ingredients, services.IngredientInput{
			Name:     name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}

	draft, err := services.CreatePending(h.DB, in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "import.create")
	}

	return c.Status(fiber.StatusCreated).JSON(draft)
}

// ListPending handles GET /api/pending
// @Summary List pending recipe drafts
// @Description Oldest-first moderation queue of staged imports
// @Tags Import
// @Accept json
// @Produce json
// @Success 200 {array} services.PendingSummary
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pending [get]
func (h *ImportHandler) ListPending(c *fiber.Ctx) error {
	drafts, err := services.ListPending(h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "pending.list")
	}
	return c.JSON(drafts)
}

// GetPending handles GET /api/pending/:id
// @Summary Get a pending draft
// @Description Full pending draft with verbatim draft tags and ingredients
// @Tags Import
// @Accept json
// @Produce json
// @Param id path int true "Pending draft ID"
// @Success 200 {object} services.PendingDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pending/{id} [get]
func (h *ImportHandler) GetPending(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid pending id", fiber.StatusBadRequest, "pending.validation.input")
	}

	draft, err := services.GetPending(h.DB, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "pending.get")
	}
	return c.JSON(draft)
}

// ApprovePending handles POST /api/pending/:id/approve
// @Summary Approve a pending draft
// @Description Promote the draft into the recipe catalog and remove it from the queue
// @Tags Import
// @Accept json
// @Produce json
// @Param id path int true "Pending draft ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pending/{id}/approve [post]
func (h *ImportHandler) ApprovePending(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid pending id", fiber.StatusBadRequest, "pending.validation.input")
	}

	recipeID, err := services.ApprovePending(h.DB, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "pending.approve")
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"recipeId": recipeID,
	})
}

// DeletePending handles DELETE /api/pending/:id
// @Summary Reject a pending draft
// @Description Discard the draft and its children without touching the catalog
// @Tags Import
// @Accept json
// @Produce json
// @Param id path int true "Pending draft ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /pending/{id} [delete]
func (h *ImportHandler) DeletePending(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid pending id", fiber.StatusBadRequest, "pending.validation.input")
	}

	existed, err := services.DeletePending(h.DB, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "pending.delete")
	}
	if !existed {
		return utils.NotFoundResponse(c, "pending draft not found")
	}

	return utils.MutationSuccessResponse(c, 1)
}
