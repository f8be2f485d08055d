package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
)

// AddressService manages a user's saved addresses
type AddressService struct {
	addressRepo identity.AddressRepository
	txScope     TransactionScope
	logger      *zap.Logger
}

// NewAddressService creates a new AddressService
func NewAddressService(addressRepo identity.AddressRepository, txScope TransactionScope, logger *zap.Logger) *AddressService {
	return &AddressService{addressRepo: addressRepo, txScope: txScope, logger: logger}
}

// List returns the user's addresses, default first
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]AddressResult, error) {
	addresses, err := s.addressRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := make([]AddressResult, len(addresses))
	for i := range addresses {
		results[i] = toAddressResult(&addresses[i])
	}
	return results, nil
}

// Create saves a new address. The first address of a user is always the default.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressResult, error) {
	var address *identity.Address
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.AddressRepo().FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		fields := input.fields()
		if len(existing) == 0 {
			fields.IsDefault = true
		}
		address, err = identity.NewAddress(userID, fields)
		if err != nil {
			return err
		}
		if err := repos.AddressRepo().Create(ctx, address); err != nil {
			return err
		}
		if address.IsDefault {
			return repos.AddressRepo().ClearDefault(ctx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Address created", zap.String("user_id", userID.String()), zap.String("address_id", address.ID.String()))
	result := toAddressResult(address)
	return &result, nil
}

// Update replaces an address owned by the user
func (s *AddressService) Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*AddressResult, error) {
	var address *identity.Address
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		address, err = repos.AddressRepo().FindByID(ctx, userID, addressID)
		if err != nil {
			return err
		}
		if err := address.Update(input.fields()); err != nil {
			return err
		}
		if err := repos.AddressRepo().Update(ctx, address); err != nil {
			return err
		}
		if address.IsDefault {
			return repos.AddressRepo().ClearDefault(ctx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := toAddressResult(address)
	return &result, nil
}

// Delete removes an address owned by the user
func (s *AddressService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.addressRepo.Delete(ctx, userID, addressID); err != nil {
		return err
	}
	s.logger.Info("Address deleted", zap.String("user_id", userID.String()), zap.String("address_id", addressID.String()))
	return nil
}
