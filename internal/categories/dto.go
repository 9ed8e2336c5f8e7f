package categories

import (
	"time"

	"github.com/google/uuid"
)

// CategoryDTO is the public representation of a category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryInput carries the admin create payload.
type CreateCategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// UpdateCategoryInput carries the admin rename payload.
type UpdateCategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}
