package chat

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
	"github.com/nmtruong/shophub-backend/pkg/enums"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

const subjectMaxRunes = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the chat service.
type ServiceParams struct {
	Repo Repository
	Tx   txRunner
	Now  func() time.Time
}

// Service exposes the customer support conversation flows.
type Service interface {
	SendMessage(ctx context.Context, userEmail, userName string, input SendMessageInput) (ChatDTO, error)
	GetMine(ctx context.Context, userEmail string) (ChatDTO, error)
	ListSummaries(ctx context.Context) ([]ChatSummaryDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (ChatDTO, error)
	Reply(ctx context.Context, id uuid.UUID, input SendMessageInput) (ChatDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds a chat service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "chat repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, tx: params.Tx, now: now}, nil
}

// SendMessage appends a customer message, creating the user's single
// conversation on first contact. The subject is derived from the first
// message text.
func (s *service) SendMessage(ctx context.Context, userEmail, userName string, input SendMessageInput) (ChatDTO, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return ChatDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user email is required")
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return ChatDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "message text is required")
	}

	var chatID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now()

		// The insert does nothing when the email already has a conversation,
		// so a lost first-message race leaves the transaction usable and the
		// find below returns the winner either way.
		candidate := &models.Chat{
			ID:          uuid.New(),
			UserEmail:   email,
			UserName:    strings.TrimSpace(userName),
			Subject:     Subject(text),
			LastUpdated: now,
		}
		if err := repo.Ensure(ctx, candidate); err != nil {
			return err
		}
		chat, err := repo.FindByUserEmail(ctx, email)
		if err != nil {
			return err
		}

		chatID = chat.ID
		message := &models.ChatMessage{
			ID:     uuid.New(),
			ChatID: chat.ID,
			Sender: enums.ChatSenderUser,
			Text:   text,
			Image:  strings.TrimSpace(input.Image),
		}
		if err := repo.AppendMessage(ctx, message); err != nil {
			return err
		}
		return repo.TouchLastUpdated(ctx, chat.ID, now)
	})
	if err != nil {
		return ChatDTO{}, wrapChatErr(err, "send message")
	}
	return s.GetByID(ctx, chatID)
}

// GetMine returns the caller's conversation, or an empty envelope when they
// have never written in.
func (s *service) GetMine(ctx context.Context, userEmail string) (ChatDTO, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return ChatDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user email is required")
	}
	chat, err := s.repo.FindByUserEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ChatDTO{UserEmail: email, Messages: []MessageDTO{}}, nil
		}
		return ChatDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat")
	}
	return toDTO(chat), nil
}

// ListSummaries returns the staff inbox, most recently active first.
func (s *service) ListSummaries(ctx context.Context) ([]ChatSummaryDTO, error) {
	chats, err := s.repo.ListSummaries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list chats")
	}
	summaries := make([]ChatSummaryDTO, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, ChatSummaryDTO{
			ID:          chat.ID,
			UserEmail:   chat.UserEmail,
			UserName:    chat.UserName,
			Subject:     chat.Subject,
			LastUpdated: chat.LastUpdated,
		})
	}
	return summaries, nil
}

// GetByID loads one conversation with its full message history.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (ChatDTO, error) {
	if id == uuid.Nil {
		return ChatDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "chat id is required")
	}
	chat, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ChatDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "chat not found")
		}
		return ChatDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat")
	}
	return toDTO(chat), nil
}

// Reply appends a staff message to an existing conversation.
func (s *service) Reply(ctx context.Context, id uuid.UUID, input SendMessageInput) (ChatDTO, error) {
	if id == uuid.Nil {
		return ChatDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "chat id is required")
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return ChatDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "message text is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		chat, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "chat not found")
			}
			return err
		}
		message := &models.ChatMessage{
			ID:     uuid.New(),
			ChatID: chat.ID,
			Sender: enums.ChatSenderAdmin,
			Text:   text,
			Image:  strings.TrimSpace(input.Image),
		}
		if err := repo.AppendMessage(ctx, message); err != nil {
			return err
		}
		return repo.TouchLastUpdated(ctx, chat.ID, s.now())
	})
	if err != nil {
		return ChatDTO{}, wrapChatErr(err, "reply to chat")
	}
	return s.GetByID(ctx, id)
}

// Delete removes a conversation and its messages.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "chat id is required")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "chat not found")
		}
		return nil
	})
	if err != nil {
		return wrapChatErr(err, "delete chat")
	}
	return nil
}

// Subject derives the conversation subject from the first message: the first
// 50 runes, with an ellipsis marker when the text was longer.
func Subject(text string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= subjectMaxRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:subjectMaxRunes]) + "..."
}

func toDTO(chat *models.Chat) ChatDTO {
	dto := ChatDTO{
		ID:          chat.ID,
		UserEmail:   chat.UserEmail,
		UserName:    chat.UserName,
		Subject:     chat.Subject,
		Messages:    make([]MessageDTO, 0, len(chat.Messages)),
		LastUpdated: chat.LastUpdated,
	}
	for _, message := range chat.Messages {
		dto.Messages = append(dto.Messages, MessageDTO{
			ID:        message.ID,
			Sender:    message.Sender,
			Text:      message.Text,
			Image:     message.Image,
			CreatedAt: message.CreatedAt,
		})
	}
	return dto
}

func wrapChatErr(err error, msg string) error {
	var appErr *pkgerrors.Error
	if pkgerrors.As(err, &appErr) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
