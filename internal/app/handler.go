package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmehra2102/todo-api/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const greeting = "Hello! This is the todo API root."

type TodoHandler struct {
	repo   domain.Repository
	logger *zap.Logger
	tracer trace.Tracer
	binder echo.DefaultBinder
}

func NewTodoHandler(repo domain.Repository, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("todo-api"),
	}
}

// createTodoRequest keeps text as a pointer so a missing field can be told
// apart from an empty string.
type createTodoRequest struct {
	Text      *string `json:"text"`
	Completed bool    `json:"completed"`
}

func (h *TodoHandler) Root(c echo.Context) error {
	return c.String(http.StatusOK, greeting)
}

// CreateTodo and DeleteTodo log approx_todo_count, read after the store has
// released its lock; concurrent requests may already have changed it.
func (h *TodoHandler) CreateTodo(c echo.Context) error {
	ctx, span := h.tracer.Start(c.Request().Context(), "CreateTodo")
	defer span.End()

	var req createTodoRequest
	if err := h.binder.BindBody(c, &req); err != nil {
		return err
	}

	if err := validateCreateRequest(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	todo := h.repo.Create(ctx, domain.CreateTodo{
		Text:      *req.Text,
		Completed: req.Completed,
	})
	span.SetAttributes(attribute.String("todo.id", todo.ID.String()))

	h.requestLogger(c).Info("todo created",
		zap.String("todo_id", todo.ID.String()),
		zap.Int("approx_todo_count", h.repo.Count(ctx)),
	)

	return c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) ListTodos(c echo.Context) error {
	ctx, span := h.tracer.Start(c.Request().Context(), "ListTodos")
	defer span.End()

	todos := h.repo.List(ctx)

	h.requestLogger(c).Debug("todos listed", zap.Int("todo_count", len(todos)))

	return c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) GetTodo(c echo.Context) error {
	ctx, span := h.tracer.Start(c.Request().Context(), "GetTodo")
	defer span.End()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("todo.id", id.String()))

	todo, err := h.repo.Get(ctx, id)
	if err != nil {
		return h.respondError(c, id, err)
	}

	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) UpdateTodo(c echo.Context) error {
	ctx, span := h.tracer.Start(c.Request().Context(), "UpdateTodo")
	defer span.End()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("todo.id", id.String()))

	var update domain.UpdateTodo
	if err := h.binder.BindBody(c, &update); err != nil {
		return err
	}

	todo, err := h.repo.Update(ctx, id, update)
	if err != nil {
		return h.respondError(c, id, err)
	}

	h.requestLogger(c).Info("todo updated",
		zap.String("todo_id", id.String()),
		zap.Bool("text_changed", update.Text != nil),
		zap.Bool("completed_changed", update.Completed != nil),
	)

	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(c echo.Context) error {
	ctx, span := h.tracer.Start(c.Request().Context(), "DeleteTodo")
	defer span.End()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("todo.id", id.String()))

	if err := h.repo.Delete(ctx, id); err != nil {
		return h.respondError(c, id, err)
	}

	h.requestLogger(c).Info("todo deleted",
		zap.String("todo_id", id.String()),
		zap.Int("approx_todo_count", h.repo.Count(ctx)),
	)

	return c.NoContent(http.StatusNoContent)
}

// respondError turns a store error into a response. Not found is answered
// directly with an empty 404.
func (h *TodoHandler) respondError(c echo.Context, id uuid.UUID, err error) error {
	if errors.Is(err, domain.ErrTodoNotFound) {
		h.requestLogger(c).Info("todo not found", zap.String("todo_id", id.String()))
		return c.NoContent(http.StatusNotFound)
	}

	h.requestLogger(c).Error("todo store failure",
		zap.Error(err),
		zap.String("todo_id", id.String()),
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

func (h *TodoHandler) requestLogger(c echo.Context) *zap.Logger {
	return h.logger.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid todo id").SetInternal(err)
	}
	return id, nil
}

func validateCreateRequest(req *createTodoRequest) error {
	if req.Text == nil {
		return fmt.Errorf("text is required")
	}
	return nil
}
