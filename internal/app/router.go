package app

import (
	"github.com/dmehra2102/todo-api/internal/infrastructure/config"
	"github.com/dmehra2102/todo-api/internal/interceptors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// NewRouter wires the todo routes and middleware. metrics may be nil when
// metrics are disabled.
func NewRouter(h *TodoHandler, logger *zap.Logger, metrics *interceptors.Metrics, cfg config.ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(interceptors.LoggingMiddleware(logger))
	if metrics != nil {
		e.Use(interceptors.MetricsMiddleware(metrics))
	}
	// Recovery sits innermost so logging and metrics see the 500.
	e.Use(interceptors.RecoveryMiddleware(logger))
	e.Use(middleware.BodyLimit(cfg.MaxBodySize))
	e.Use(middleware.ContextTimeout(cfg.RequestTimeout))

	e.GET("/", h.Root)

	todos := e.Group("/todos")
	todos.POST("", h.CreateTodo)
	todos.GET("", h.ListTodos)
	todos.GET("/:id", h.GetTodo)
	todos.PUT("/:id", h.UpdateTodo)
	todos.DELETE("/:id", h.DeleteTodo)

	return e
}
