package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
)

// Repository defines the persistence surface for support chats.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserEmail(ctx context.Context, userEmail string) (*models.Chat, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	Ensure(ctx context.Context, chat *models.Chat) error
	AppendMessage(ctx context.Context, message *models.ChatMessage) error
	TouchLastUpdated(ctx context.Context, id uuid.UUID, at time.Time) error
	ListSummaries(ctx context.Context) ([]models.Chat, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a chat repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUserEmail(ctx context.Context, userEmail string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_email = ?", userEmail).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// Ensure inserts the conversation unless the email already has one. The
// conflict is swallowed by DO NOTHING rather than raised, so a losing insert
// never poisons the surrounding transaction.
func (r *repository) Ensure(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_email"}},
			DoNothing: true,
		}).
		Create(chat).Error
}

func (r *repository) AppendMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) TouchLastUpdated(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", id).
		Update("last_updated", at).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", id).
		Delete(&models.ChatMessage{}).Error; err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Chat{})
	return result.RowsAffected, result.Error
}

func (r *repository) ListSummaries(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Order("last_updated DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}
