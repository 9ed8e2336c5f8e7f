package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

type stubCategoriesRepo struct {
	listFn       func(ctx context.Context) ([]models.Category, error)
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*models.Category, error)
	findByNameFn func(ctx context.Context, name string) (*models.Category, error)
	createFn     func(ctx context.Context, category *models.Category) (*models.Category, error)
	updateFn     func(ctx context.Context, category *models.Category) error
	deleteFn     func(ctx context.Context, id uuid.UUID) error
}

func (s *stubCategoriesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCategoriesRepo) List(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}

func (s *stubCategoriesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubCategoriesRepo) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return s.findByNameFn(ctx, name)
}

func (s *stubCategoriesRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	return s.createFn(ctx, category)
}

func (s *stubCategoriesRepo) Update(ctx context.Context, category *models.Category) error {
	return s.updateFn(ctx, category)
}

func (s *stubCategoriesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func TestCreateTrimsAndPersists(t *testing.T) {
	var persisted *models.Category
	repo := &stubCategoriesRepo{
		createFn: func(ctx context.Context, category *models.Category) (*models.Category, error) {
			persisted = category
			return category, nil
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)

	dto, err := svc.Create(context.Background(), CreateCategoryInput{Name: "  Electronics  "})
	require.NoError(t, err)
	assert.Equal(t, "Electronics", dto.Name)
	require.NotNil(t, persisted)
	assert.NotEqual(t, uuid.Nil, persisted.ID)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubCategoriesRepo{}})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCategoryInput{Name: "   "})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code)
}

func TestRenameMissingCategoryReturnsNotFound(t *testing.T) {
	repo := &stubCategoriesRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)

	_, err = svc.Rename(context.Background(), uuid.New(), UpdateCategoryInput{Name: "Gadgets"})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}

func TestDeleteChecksExistenceFirst(t *testing.T) {
	deleted := false
	id := uuid.New()
	repo := &stubCategoriesRepo{
		findByIDFn: func(ctx context.Context, gotID uuid.UUID) (*models.Category, error) {
			assert.Equal(t, id, gotID)
			return &models.Category{ID: gotID, Name: "Books"}, nil
		},
		deleteFn: func(ctx context.Context, gotID uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.True(t, deleted)
}
