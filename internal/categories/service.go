package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/pkg/db"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

// ServiceParams groups dependencies for the categories service.
type ServiceParams struct {
	Repo Repository
}

// Service exposes business rules for category management.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (CategoryDTO, error)
	Rename(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a categories service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categories repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// List returns every category ordered by name.
func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	return dtos, nil
}

// Create inserts a new category, rejecting duplicate names.
func (s *service) Create(ctx context.Context, input CreateCategoryInput) (CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{ID: uuid.New(), Name: name}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return toDTO(*created), nil
}

// Rename updates the category label. Products keep the old label; the
// relationship is by name snapshot, not by reference.
func (s *service) Rename(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (CategoryDTO, error) {
	if id == uuid.Nil {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return toDTO(*category), nil
}

// Delete removes the category row only. Listings keep their label.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func toDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}
