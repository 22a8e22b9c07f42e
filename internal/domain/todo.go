package domain

import (
	"github.com/google/uuid"
)

// Todo is a single record in the collection.
type Todo struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
}

// CreateTodo carries the caller-supplied fields of a new todo.
type CreateTodo struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// UpdateTodo is a partial update. A nil field leaves the stored value unchanged.
type UpdateTodo struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// NewTodo creates a todo with a freshly generated ID
func NewTodo(input CreateTodo) Todo {
	return Todo{
		ID:        uuid.New(),
		Text:      input.Text,
		Completed: input.Completed,
	}
}

// Apply overwrites the fields present in the update. The ID never changes.
func (t *Todo) Apply(update UpdateTodo) {
	if update.Text != nil {
		t.Text = *update.Text
	}
	if update.Completed != nil {
		t.Completed = *update.Completed
	}
}
