package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/database"
	"github.com/localnerve/recipedb/internal/handlers"
	"github.com/localnerve/recipedb/internal/middleware"
	"github.com/localnerve/recipedb/internal/parser"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"

	_ "github.com/localnerve/recipedb/docs/api" // Swagger docs
)

// @title RecipeDB API
// @version 1.0.0
// @description Recipe catalog data service with ingestion review and moderation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/recipedb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Image file store
	store, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	// Parsing/extraction service client
	parserClient := parser.NewClient(cfg.ParserURL, cfg.ExtractorURL)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("recipedb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded recipe images
	app.Static("/uploads/recipes", store.Dir())

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Health
	api.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// Create handlers
	recipeHandler := &handlers.RecipeHandler{DB: db, Store: store}
	imageHandler := &handlers.ImageHandler{DB: db, Store: store}
	importHandler := &handlers.ImportHandler{DB: db, Parser: parserClient}
	submissionHandler := &handlers.SubmissionHandler{DB: db}

	// Recipe catalog routes (public GET, admin mutations)
	recipes := api.Group("/recipes")
	recipes.Get("/", recipeHandler.ListRecipes)
	recipes.Get("/search", recipeHandler.SearchRecipes)
	recipes.Get("/:id", recipeHandler.GetRecipe)
	api.Get("/admin/recipes", middleware.AuthAdmin(cfg), recipeHandler.ListAdminRecipes)
	recipes.Post("/", middleware.AuthAdmin(cfg), recipeHandler.CreateRecipe)
	recipes.Put("/:id", middleware.AuthAdmin(cfg), recipeHandler.UpdateRecipe)
	recipes.Delete("/:id", middleware.AuthAdmin(cfg), recipeHandler.DeleteRecipe)
	recipes.Post("/:id/cooked", middleware.AuthAdmin(cfg), recipeHandler.MarkCooked)

	// Recipe image routes (admin)
	recipes.Post("/:id/images", middleware.AuthAdmin(cfg), imageHandler.UploadImage)
	recipes.Put("/:id/images/reorder", middleware.AuthAdmin(cfg), imageHandler.ReorderImages)
	recipes.Put("/:id/images/:imageId/hero", middleware.AuthAdmin(cfg), imageHandler.SetHeroImage)
	recipes.Delete("/:id/images/:imageId", middleware.AuthAdmin(cfg), imageHandler.DeleteImage)

	// Import pipeline and pending moderation queue (admin)
	api.Post("/import", middleware.AuthAdmin(cfg), importHandler.ImportRecipe)
	pending := api.Group("/pending", middleware.AuthAdmin(cfg))
	pending.Get("/", importHandler.ListPending)
	pending.Get("/:id", importHandler.GetPending)
	pending.Post("/:id/approve", importHandler.ApprovePending)
	pending.Delete("/:id", importHandler.DeletePending)

	// User submission routes
	submissions := api.Group("/submissions")
	submissions.Post("/", middleware.AuthUser(cfg), submissionHandler.CreateSubmission)
	submissions.Get("/", middleware.AuthUser(cfg), submissionHandler.ListSubmissions)
	submissions.Get("/:id", middleware.AuthUser(cfg), submissionHandler.GetSubmission)
	submissions.Post("/:id/approve", middleware.AuthAdmin(cfg), submissionHandler.ApproveSubmission)
	submissions.Post("/:id/reject", middleware.AuthAdmin(cfg), submissionHandler.RejectSubmission)
	submissions.Delete("/:id", middleware.AuthUser(cfg), submissionHandler.DeleteSubmission)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Authorizer client is initialized lazily on the first
	// authenticated request, when the request protocol/host are known
	log.Printf("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
