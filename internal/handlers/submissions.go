// submissions.go
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
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/internal/utils"
	"gorm.io/gorm"
)

// SubmissionHandler handles user recipe submission routes
type SubmissionHandler struct {
	DB *gorm.DB
}

// submissionBody is the create request shape
type submissionBody struct {
	Title        string                                   `json:"title"`
	Source       string                                   `json:"source"`
	Instructions string                                   `json:"instructions"`
	Servings     *types.FlexUint64                        `json:"servings"`
	Ingredients  types.FlexList[services.IngredientInput] `json:"ingredients"`
	Tags         types.FlexList[string]                   `json:"tags"`
}

// reviewBody carries the moderation notes
type reviewBody struct {
	Notes string `json:"notes"`
}

// CreateSubmission handles POST /api/submissions
// @Summary Submit a recipe for review
// @Description Stage a user recipe with status pending until a moderator reviews it
// @Tags Submissions
// @Accept json
// @Produce json
// @Param body body submissionBody true "Recipe submission"
// @Success 201 {object} services.SubmissionDetail
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *fiber.Ctx) error {
	var body submissionBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "submissions.validation.input")
	}

	in := services.SubmissionInput{
		Title:        body.Title,
		Source:       body.Source,
		Instructions: body.Instructions,
		Ingredients:  body.Ingredients.Slice(),
		Tags:         body.Tags.Slice(),
	}
	if body.Servings != nil {
		v := uint64(*body.Servings)
		in.Servings = &v
	}

	detail, err := services.CreateSubmission(h.DB, currentUserID(c), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "submissions.create")
	}

	return c.Status(fiber.StatusCreated).JSON(detail)
}

// ListSubmissions handles GET /api/submissions
// @Summary List recipe submissions
// @Description Admins see the pending queue by default, overridable by ?status=; users see only their own
// @Tags Submissions
// @Accept json
// @Produce json
// @Param status query string false "Status filter (admin only)"
// @Success 200 {array} services.SubmissionSummary
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	opts := services.ListSubmissionsOptions{
		UserID:  currentUserID(c),
		IsAdmin: isAdmin(c),
		Status:  c.Query("status"),
	}

	rows, err := services.ListSubmissions(h.DB, opts)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "submissions.list")
	}
	return c.JSON(rows)
}

// GetSubmission handles GET /api/submissions/:id
// @Summary Get a recipe submission
// @Description Full submission, visible to its owner and to admins
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} services.SubmissionDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid submission id", fiber.StatusBadRequest, "submissions.validation.input")
	}

	detail, err := services.GetSubmission(h.DB, id, currentUserID(c), isAdmin(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "submissions.get")
	}
	return c.JSON(detail)
}

// ApproveSubmission handles POST /api/submissions/:id/approve
// @Summary Approve a recipe submission
// @Description Promote the submission into the recipe catalog and stamp the review
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param body body reviewBody false "Optional review notes"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /submissions/{id}/approve [post]
func (h *SubmissionHandler) ApproveSubmission(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid submission id", fiber.StatusBadRequest, "submissions.validation.input")
	}

	// notes are optional on approval
	var body reviewBody
	_ = c.BodyParser(&body)

	recipeID, err := services.ApproveSubmission(h.DB, id, currentUserID(c), body.Notes)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "submissions.approve")
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"recipeId": recipeID,
	})
}

// RejectSubmission handles POST /api/submissions/:id/reject
// @Summary Reject a recipe submission
// @Description Terminal rejection with required notes explaining why
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param body body reviewBody true "Review notes (required)"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /submissions/{id}/reject [post]
func (h *SubmissionHandler) RejectSubmission(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid submission id", fiber.StatusBadRequest, "submissions.validation.input")
	}

	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "submissions.validation.input")
	}

	if err := services.RejectSubmission(h.DB, id, currentUserID(c), body.Notes); err != nil {
		return utils.ServiceErrorResponse(c, err, "submissions.reject")
	}

	return utils.MutationSuccessResponse(c, 1)
}

// DeleteSubmission handles DELETE /api/submissions/:id
// @Summary Withdraw a recipe submission
// @Description Owners withdraw their own pending submissions; admins can delete any pending submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid submission id", fiber.StatusBadRequest, "submissions.validation.input")
	}

	existed, err := services.DeleteSubmission(h.DB, id, currentUserID(c), isAdmin(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "submissions.delete")
	}
	if !existed {
		return utils.NotFoundResponse(c, "submission not found")
	}

	return utils.MutationSuccessResponse(c, 1)
}
