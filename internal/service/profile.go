package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/storefront/storefront-go/internal/model"
	"github.com/storefront/storefront-go/internal/repository"
	"github.com/storefront/storefront-go/internal/validator"
)

var ErrUserNotFound = errors.New("user not found")

// AddressStore persists user addresses.
type AddressStore interface {
	Create(ctx context.Context, addr *model.Address) error
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)
}

// ProfileService handles profile reads and address updates.
type ProfileService struct {
	users     UserStore
	addresses AddressStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users UserStore, addresses AddressStore) *ProfileService {
	return &ProfileService{users: users, addresses: addresses}
}

// GetProfile loads a user with all of their addresses.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (model.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.ProfileResponse{}, ErrUserNotFound
		}
		return model.ProfileResponse{}, fmt.Errorf("ProfileService.GetProfile: %w", err)
	}

	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return model.ProfileResponse{}, fmt.Errorf("ProfileService.GetProfile: %w", err)
	}

	return model.ProfileResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   strconv.FormatInt(user.Phone, 10),
		Address: addressesToResponse(addresses),
	}, nil
}

// UpdateProfile validates the address and appends it to the user's addresses.
// The user's own fields are left as they are.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req model.ProfileUpdateRequest) error {
	if err := validationError(validator.UserProfile(req)); err != nil {
		return err
	}

	addr := &model.Address{
		UserID:  userID,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Country: req.Country,
	}

	if err := s.addresses.Create(ctx, addr); err != nil {
		return fmt.Errorf("ProfileService.UpdateProfile: %w", err)
	}
	return nil
}

// addressesToResponse converts stored addresses to their public shape.
func addressesToResponse(addresses []model.Address) []model.AddressResponse {
	result := make([]model.AddressResponse, len(addresses))
	for i, a := range addresses {
		result[i] = model.AddressResponse{
			Street:  a.Street,
			City:    a.City,
			State:   a.State,
			Zip:     a.Zip,
			Country: a.Country,
		}
	}
	return result
}
