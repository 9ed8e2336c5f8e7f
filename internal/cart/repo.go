package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
)

// Repository defines the persistence surface for cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userEmail string) ([]models.CartLine, error)
	FindLineForUpdate(ctx context.Context, userEmail string, productID uuid.UUID) (*models.CartLine, error)
	Upsert(ctx context.Context, line *models.CartLine) error
	Update(ctx context.Context, line *models.CartLine) error
	DeleteLine(ctx context.Context, userEmail string, productID uuid.UUID) error
	DeleteByUser(ctx context.Context, userEmail string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByUser(ctx context.Context, userEmail string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// FindLineForUpdate locks the line row until the surrounding transaction
// commits, so a read-modify-write cannot lose a concurrent change.
func (r *repository) FindLineForUpdate(ctx context.Context, userEmail string, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_email = ? AND product_id = ?", userEmail, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Upsert inserts the line or, when the user already carries the product,
// folds the quantity into the existing row in a single statement. The stored
// unit price wins, so the line keeps its original snapshot.
func (r *repository) Upsert(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_email"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"line_total": gorm.Expr("cart_lines.unit_price * (cart_lines.quantity + excluded.quantity)"),
			}),
		}).
		Create(line).Error
}

func (r *repository) Update(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *repository) DeleteLine(ctx context.Context, userEmail string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_email = ? AND product_id = ?", userEmail, productID).
		Delete(&models.CartLine{}).Error
}

func (r *repository) DeleteByUser(ctx context.Context, userEmail string) error {
	return r.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Delete(&models.CartLine{}).Error
}
