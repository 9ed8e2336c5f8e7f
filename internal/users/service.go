package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo Repository
	Tx   txRunner
}

// Service exposes profile and address management.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (UserDTO, error)
	AddAddress(ctx context.Context, userID uuid.UUID, input UpsertAddressInput) (AddressDTO, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input UpsertAddressInput) (AddressDTO, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

// GetProfile loads the user with saved addresses.
func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	return toDTO(user), nil
}

// UpdateProfile renames the user.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	user.Name = name
	if err := s.repo.Update(ctx, user); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return toDTO(user), nil
}

// AddAddress appends a labeled shipping address. Marking it default clears
// any prior default in the same transaction.
func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, input UpsertAddressInput) (AddressDTO, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return AddressDTO{}, err
	}
	label := strings.TrimSpace(input.Label)
	addr := strings.TrimSpace(input.Address)
	if label == "" || addr == "" {
		return AddressDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "label and address are required")
	}

	address := &models.UserAddress{
		ID:        uuid.New(),
		UserID:    userID,
		Label:     label,
		Address:   addr,
		IsDefault: input.IsDefault,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault {
			if err := repo.ClearDefaultAddress(ctx, userID); err != nil {
				return err
			}
		}
		_, err := repo.CreateAddress(ctx, address)
		return err
	})
	if err != nil {
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return toAddressDTO(address), nil
}

// UpdateAddress rewrites the address fields.
func (s *service) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input UpsertAddressInput) (AddressDTO, error) {
	label := strings.TrimSpace(input.Label)
	addr := strings.TrimSpace(input.Address)
	if label == "" || addr == "" {
		return AddressDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "label and address are required")
	}

	var updated *models.UserAddress
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		address, err := repo.FindAddress(ctx, userID, addressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefaultAddress(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}
		address.Label = label
		address.Address = addr
		address.IsDefault = input.IsDefault
		if err := repo.UpdateAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		updated = address
		return nil
	})
	if err != nil {
		return AddressDTO{}, err
	}
	return toAddressDTO(updated), nil
}

// DeleteAddress removes the address. Deleting an absent address succeeds.
func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if userID == uuid.Nil || addressID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and address id are required")
	}
	if err := s.repo.DeleteAddress(ctx, userID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func toDTO(user *models.User) UserDTO {
	dto := UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	for _, address := range user.Addresses {
		dto.Addresses = append(dto.Addresses, toAddressDTO(&address))
	}
	return dto
}

func toAddressDTO(address *models.UserAddress) AddressDTO {
	return AddressDTO{
		ID:        address.ID,
		Label:     address.Label,
		Address:   address.Address,
		IsDefault: address.IsDefault,
	}
}
