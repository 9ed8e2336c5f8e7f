package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmtruong/shophub-backend/pkg/enums"
)

// UserDTO is the profile representation returned to clients.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	Addresses []AddressDTO   `json:"addresses,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AddressDTO is one saved shipping address.
type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	IsDefault bool      `json:"is_default"`
}

// UpdateProfileInput carries the profile rename payload.
type UpdateProfileInput struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpsertAddressInput carries the add/update address payload.
type UpsertAddressInput struct {
	Label     string `json:"label" validate:"required,min=1,max=60"`
	Address   string `json:"address" validate:"required,min=5,max=500"`
	IsDefault bool   `json:"is_default"`
}
