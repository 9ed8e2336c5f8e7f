package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmtruong/shophub-backend/pkg/enums"
)

// Chat is the single support conversation a user has with staff.
type Chat struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserEmail   string        `gorm:"column:user_email;type:text;not null;uniqueIndex"`
	UserName    string        `gorm:"column:user_name;not null"`
	Subject     string        `gorm:"column:subject"`
	Messages    []ChatMessage `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	LastUpdated time.Time     `gorm:"column:last_updated;not null;index"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
}

// ChatMessage is one appended entry in a support conversation.
type ChatMessage struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ChatID    uuid.UUID        `gorm:"column:chat_id;type:uuid;not null;index"`
	Sender    enums.ChatSender `gorm:"column:sender;type:text;not null"`
	Text      string           `gorm:"column:text;not null"`
	Image     string           `gorm:"column:image"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime;index"`
}
