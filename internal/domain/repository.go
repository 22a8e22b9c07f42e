package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the contract for todo storage
type Repository interface {
	// Create stores a new todo and returns a copy of it
	Create(ctx context.Context, input CreateTodo) Todo

	// List returns a snapshot of every todo in insertion order
	List(ctx context.Context) []Todo

	// Get retrieves a todo by ID
	Get(ctx context.Context, id uuid.UUID) (Todo, error)

	// Update applies a partial update and returns the result
	Update(ctx context.Context, id uuid.UUID, update UpdateTodo) (Todo, error)

	// Delete removes a todo
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of stored todos
	Count(ctx context.Context) int
}
