package handlers

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/internal/utils"
	"gorm.io/gorm"
)

// ImageHandler handles recipe image routes
type ImageHandler struct {
	DB    *gorm.DB
	Store *storage.Store
}

// UploadImage handles POST /api/recipes/:id/images
// @Summary Upload a recipe image
// @Description Add an image to a recipe's image set; isHero=true makes it the hero
// @Tags Images
// @Accept mpfd
// @Produce json
// @Param id path int true "Recipe ID"
// @Param image formData file true "Image file"
// @Param isHero formData bool false "Set as hero image"
// @Success 201 {object} services.ImageView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id}/images [post]
func (h *ImageHandler) UploadImage(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "images.validation.input")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return utils.ErrorResponse(c, "Missing image file", fiber.StatusBadRequest, "images.validation.input")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, "Unreadable image file", fiber.StatusBadRequest, "images.validation.input")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxFileSize+1))
	if err != nil {
		return utils.ErrorResponse(c, "Unreadable image file", fiber.StatusBadRequest, "images.validation.input")
	}

	// The file write happens before the DB transaction opens, so disk
	// I/O never holds a pooled connection.
	mimeType := fileHeader.Header.Get("Content-Type")
	info, err := h.Store.Save(mimeType, data)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "uploadImage")
	}

	meta := services.ImageMeta{
		Filename:     info.Filename,
		OriginalName: fileHeader.Filename,
		FilePath:     info.Path,
		FileSize:     info.Size,
		MimeType:     mimeType,
		UploadedBy:   currentUserID(c),
	}
	isHero := c.FormValue("isHero") == "true"

	image, err := services.AddImage(h.DB, id, meta, isHero)
	if err != nil {
		// The DB write failed; remove the just-written file
		if removeErr := h.Store.Remove(info.Path); removeErr != nil {
			log.Printf("Failed to remove image file %s: %v", info.Path, removeErr)
		}
		return utils.ServiceErrorResponse(c, err, "uploadImage")
	}

	return c.Status(fiber.StatusCreated).JSON(image)
}

// ReorderImages handles PUT /api/recipes/:id/images/reorder
// @Summary Reorder recipe images
// @Description Rewrite image positions to match the supplied id order
// @Tags Images
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param body body object true "Ordered image ids"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id}/images/reorder [put]
func (h *ImageHandler) ReorderImages(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "images.validation.input")
	}

	var body struct {
		ImageIDs types.FlexList[uint64] `json:"imageIds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "images.validation.input")
	}

	if err := services.ReorderImages(h.DB, id, body.ImageIDs.Slice()); err != nil {
		return utils.ServiceErrorResponse(c, err, "reorderImages")
	}

	return utils.MutationSuccessResponse(c, int64(len(body.ImageIDs)))
}

// SetHeroImage handles PUT /api/recipes/:id/images/:imageId/hero
// @Summary Set the hero image
// @Description Atomically move the hero flag to the target image
// @Tags Images
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param imageId path int true "Image ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id}/images/{imageId}/hero [put]
func (h *ImageHandler) SetHeroImage(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "images.validation.input")
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return utils.ErrorResponse(c, "Invalid image id", fiber.StatusBadRequest, "images.validation.input")
	}

	if err := services.SetHeroImage(h.DB, id, imageID); err != nil {
		return utils.ServiceErrorResponse(c, err, "setHeroImage")
	}

	return utils.MutationSuccessResponse(c, 1)
}

// DeleteImage handles DELETE /api/recipes/:id/images/:imageId
// @Summary Delete a recipe image
// @Description Delete the image row, then best-effort delete the backing file
// @Tags Images
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param imageId path int true "Image ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id}/images/{imageId} [delete]
func (h *ImageHandler) DeleteImage(c *fiber.Ctx) error {
	if _, ok := parseIDParam(c, "id"); !ok {
		return utils.ErrorResponse(c, "Invalid recipe id", fiber.StatusBadRequest, "images.validation.input")
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return utils.ErrorResponse(c, "Invalid image id", fiber.StatusBadRequest, "images.validation.input")
	}

	existed, err := services.DeleteImage(h.DB, h.Store, imageID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "deleteImage")
	}
	if !existed {
		return utils.NotFoundResponse(c, "image not found")
	}

	return utils.MutationSuccessResponse(c, 1)
}
