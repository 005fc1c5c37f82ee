package server

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/config"
	"catalog/pkg/logger"
)

// healthTimeout bounds the store ping of GET /health.
const healthTimeout = 2 * time.Second

// Deps are the collaborators the HTTP app is built from. Publisher may be nil.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Store     *repositories.Store
	Publisher services.EventPublisher
}

// NewApp builds the Fiber app: middleware, /api routes, /health, /api-docs
// and the route-not-found fallback.
func NewApp(deps Deps) *fiber.App {
	log := deps.Logger

	app := fiber.New(fiber.Config{
		AppName:               deps.Config.App.Name,
		ErrorHandler:          middleware.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: log.Writer(),
		Format: "${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())
	app.Use(helmet.New())
	app.Use(middleware.Tracing(deps.Config.App.Name))

	categoryService := services.NewCategoryService(deps.Store.Categories, deps.Publisher, log)
	productService := services.NewProductService(deps.Store.Products, deps.Store.Categories, deps.Publisher, log)

	api := app.Group("/api")
	handlers.NewProductHandler(productService, log).RegisterRoutes(api)
	handlers.NewCategoryHandler(categoryService, log).RegisterRoutes(api)

	app.Get("/health", healthHandler(deps.Store))

	if path := deps.Config.Docs.Path; path != "" {
		if _, err := os.Stat(path); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: path,
				Path:     "api-docs",
				Title:    "Catalog API",
			}))
		} else {
			log.Warn().Str("path", path).Msg("API docs not found, /api-docs disabled")
		}
	}

	app.Use(middleware.NotFound)
	return app
}

func healthHandler(store *repositories.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		status, code, database := "healthy", fiber.StatusOK, "connected"
		if err := store.Ping(ctx); err != nil {
			status, code, database = "unhealthy", fiber.StatusServiceUnavailable, "disconnected"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	}
}
