package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmtruong/shophub-backend/pkg/enums"
)

// MessageDTO is one entry in a support conversation.
type MessageDTO struct {
	ID        uuid.UUID        `json:"id"`
	Sender    enums.ChatSender `json:"sender"`
	Text      string           `json:"text"`
	Image     string           `json:"image,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ChatDTO is the conversation envelope with its messages.
type ChatDTO struct {
	ID          uuid.UUID    `json:"id"`
	UserEmail   string       `json:"user_email"`
	UserName    string       `json:"user_name"`
	Subject     string       `json:"subject,omitempty"`
	Messages    []MessageDTO `json:"messages"`
	LastUpdated time.Time    `json:"last_updated"`
}

// ChatSummaryDTO is the admin inbox row; messages are not expanded.
type ChatSummaryDTO struct {
	ID          uuid.UUID `json:"id"`
	UserEmail   string    `json:"user_email"`
	UserName    string    `json:"user_name"`
	Subject     string    `json:"subject,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// SendMessageInput carries a customer or admin message payload.
type SendMessageInput struct {
	Text  string `json:"text" validate:"required,min=1,max=5000"`
	Image string `json:"image" validate:"max=500"`
}
