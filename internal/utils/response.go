package utils

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// ServiceErrorResponse is the single mapping point from the service
// error taxonomy to HTTP. Storage errors are logged in full and
// surfaced opaquely; raw driver errors never leak to callers.
func ServiceErrorResponse(c *fiber.Ctx, err error, errorType string) error {
	var validationErr *types.ValidationError
	var notFoundErr *types.NotFoundError
	var conflictErr *types.ConflictError
	var storageErr *types.StorageError

	switch {
	case errors.As(err, &validationErr):
		return ErrorResponse(c, validationErr.Error(), fiber.StatusBadRequest, errorType)
	case errors.As(err, &notFoundErr):
		return NotFoundResponse(c, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		return ErrorResponse(c, conflictErr.Error(), fiber.StatusConflict, errorType)
	case errors.As(err, &storageErr):
		log.Printf("Storage error [%s]: %v", errorType, storageErr)
		return ErrorResponse(c, "storage failure", fiber.StatusInternalServerError, errorType)
	default:
		log.Printf("Unexpected error [%s]: %v", errorType, err)
		return ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
	}
}

// MutationSuccessResponse sends a success response for mutations
func MutationSuccessResponse(c *fiber.Ctx, affectedRows int64) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":      "Success",
		"ok":           true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"affectedRows": affectedRows,
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	AffectedRows int64  `json:"affectedRows"`
}
