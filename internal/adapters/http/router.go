// Package http содержит компоненты для HTTP сервера.
package http

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"notekeeper/internal/adapters/http/auth"
	"notekeeper/internal/adapters/http/health"
	"notekeeper/internal/adapters/http/middleware"
	"notekeeper/internal/adapters/http/notes"
	"notekeeper/internal/adapters/http/users"
	"notekeeper/internal/config"
	"notekeeper/internal/ports/api"
	"notekeeper/internal/ports/services"
)

// ErrorRouteNotFound - ответ для несуществующих маршрутов.
const ErrorRouteNotFound = "route not found"

// Observer собирает метрики HTTP запросов и отказов по лимиту.
type Observer interface {
	middleware.HTTPObserver
	middleware.RateLimitObserver
}

// Dependencies - зависимости HTTP слоя.
// Metrics и Limiter необязательны.
type Dependencies struct {
	Auth    api.AuthUseCase
	Users   api.UserUseCase
	Notes   api.NoteUseCase
	Search  api.SearchUseCase
	Health  health.Pinger
	Limiter services.RateLimiter
	Metrics Observer
}

// NewApp создает fiber приложение с единым обработчиком ошибок.
func NewApp(cfg *config.HTTPConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      config.ServiceName,
		ErrorHandler: middleware.ErrorHandler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
	})
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	authHandler := auth.NewHandler(deps.Auth)
	usersHandler := users.NewHandler(deps.Users)
	notesHandler := notes.NewHandler(deps.Notes, deps.Search)
	healthHandler := health.NewHandler(deps.Health)

	// Middleware для всех запросов.
	app.Use(cors.New())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		app.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	app.Get("/health", healthHandler.Check)

	apiGroup := app.Group("/api")
	if deps.Limiter != nil {
		var observer middleware.RateLimitObserver
		if deps.Metrics != nil {
			observer = deps.Metrics
		}
		apiGroup.Use(middleware.NewRateLimitMiddleware(deps.Limiter, observer))
	}

	// Публичные маршруты.
	authRoutes := apiGroup.Group("/auth")
	authRoutes.Post("/signup", authHandler.Signup)
	authRoutes.Post("/login", authHandler.Login)

	apiGroup.Get("/users", usersHandler.List)

	// Маршруты заметок (требуют авторизации).
	notesRoutes := apiGroup.Group("/notes")
	notesRoutes.Use(middleware.NewAuthMiddleware(deps.Notes))
	notesRoutes.Get("/", notesHandler.List)
	notesRoutes.Get("/search", notesHandler.Search)
	notesRoutes.Get("/:id", notesHandler.Get)
	notesRoutes.Post("/", notesHandler.Create)
	notesRoutes.Put("/:id", notesHandler.Update)
	notesRoutes.Delete("/:id", notesHandler.Delete)
	notesRoutes.Post("/:id/share", notesHandler.Share)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(_ fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, ErrorRouteNotFound)
	})
}
