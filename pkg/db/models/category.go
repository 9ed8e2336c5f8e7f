package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is an admin-managed product grouping. Products reference it by the
// denormalized name label, so renames and deletes do not cascade.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
