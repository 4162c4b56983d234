package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/filevault/internal/config"
	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/mansoorceksport/filevault/internal/handler"
	"github.com/mansoorceksport/filevault/internal/middleware"
	"github.com/mansoorceksport/filevault/internal/repository"
	"github.com/mansoorceksport/filevault/internal/service"
	"github.com/mansoorceksport/filevault/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config       *config.Config
	Mongo        *storage.MongoClient
	RedisClient  *redis.Client
	ContentStore domain.ContentStore
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	db := deps.Mongo.Database()

	// Initialize repositories
	userRepo := repository.NewMongoUserRepository(db)
	fileRepo := repository.NewMongoFileRepository(db)
	sessionRepo := repository.NewRedisSessionRepository(deps.RedisClient)
	fileQueue := repository.NewRedisQueue(deps.RedisClient, domain.FileQueue, deps.Config.Worker.MaxAttempts)
	userQueue := repository.NewRedisQueue(deps.RedisClient, domain.UserQueue, deps.Config.Worker.MaxAttempts)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo)
	userService := service.NewUserService(userRepo, userQueue)
	fileService := service.NewFileService(fileRepo, deps.ContentStore, fileQueue)
	statusService := service.NewStatusService(deps.Mongo, deps.RedisClient, userRepo, fileRepo)

	// Initialize handlers
	appHandler := handler.NewAppHandler(statusService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	fileHandler := handler.NewFileHandler(fileService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Filevault API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Token",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Service health
	app.Get("/status", appHandler.GetStatus)
	app.Get("/stats", appHandler.GetStats)

	// Accounts and sessions
	app.Post("/users", userHandler.PostNew)
	app.Get("/connect", authHandler.GetConnect)
	app.Get("/disconnect", authHandler.GetDisconnect)
	app.Get("/users/me", middleware.RequireToken(authService), userHandler.GetMe)

	// File tree
	files := app.Group("/files")
	files.Post("/", middleware.RequireToken(authService), fileHandler.PostUpload)
	files.Get("/", middleware.RequireToken(authService), fileHandler.GetIndex)
	files.Get("/:id", middleware.RequireToken(authService), fileHandler.GetShow)
	files.Put("/:id/publish", middleware.RequireToken(authService), fileHandler.PutPublish)
	files.Put("/:id/unpublish", middleware.RequireToken(authService), fileHandler.PutUnpublish)
	// Data reads tolerate anonymous callers; visibility is enforced per node.
	files.Get("/:id/data", middleware.OptionalToken(authService), fileHandler.GetFile)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
