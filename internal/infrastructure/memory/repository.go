package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmehra2102/todo-api/internal/domain"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TodoStore keeps todos in insertion order. All access, reads included,
// goes through mu.
type TodoStore struct {
	mu     sync.Mutex
	todos  []domain.Todo
	tracer trace.Tracer
}

var _ domain.Repository = (*TodoStore)(nil)

func NewTodoStore() *TodoStore {
	return &TodoStore{
		todos:  make([]domain.Todo, 0),
		tracer: otel.Tracer("memory-repository"),
	}
}

func (s *TodoStore) Create(ctx context.Context, input domain.CreateTodo) domain.Todo {
	_, span := s.tracer.Start(ctx, "repository.Create")
	defer span.End()

	todo := domain.NewTodo(input)
	span.SetAttributes(attribute.String("todo.id", todo.ID.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos = append(s.todos, todo)
	return todo
}

func (s *TodoStore) List(ctx context.Context) []domain.Todo {
	_, span := s.tracer.Start(ctx, "repository.List")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]domain.Todo, len(s.todos))
	copy(snapshot, s.todos)

	span.SetAttributes(attribute.Int("returned_count", len(snapshot)))
	return snapshot
}

func (s *TodoStore) Get(ctx context.Context, id uuid.UUID) (domain.Todo, error) {
	_, span := s.tracer.Start(ctx, "repository.Get")
	defer span.End()

	span.SetAttributes(attribute.String("todo.id", id.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		span.SetAttributes(attribute.Bool("not_found", true))
		return domain.Todo{}, notFound(id)
	}

	return s.todos[i], nil
}

func (s *TodoStore) Update(ctx context.Context, id uuid.UUID, update domain.UpdateTodo) (domain.Todo, error) {
	_, span := s.tracer.Start(ctx, "repository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("todo.id", id.String()),
		attribute.Bool("update.text", update.Text != nil),
		attribute.Bool("update.completed", update.Completed != nil),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		span.SetAttributes(attribute.Bool("not_found", true))
		return domain.Todo{}, notFound(id)
	}

	s.todos[i].Apply(update)
	return s.todos[i], nil
}

func (s *TodoStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, span := s.tracer.Start(ctx, "repository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("todo.id", id.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		span.SetAttributes(attribute.Bool("not_found", true))
		return notFound(id)
	}

	s.todos = slices.Delete(s.todos, i, i+1)
	return nil
}

func (s *TodoStore) Count(ctx context.Context) int {
	_, span := s.tracer.Start(ctx, "repository.Count")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	span.SetAttributes(attribute.Int("returned_count", len(s.todos)))
	return len(s.todos)
}

// indexOf must be called with mu held.
func (s *TodoStore) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.todos, func(t domain.Todo) bool {
		return t.ID == id
	})
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
}
