package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevenext/backend/internal/domain/identity"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// Create inserts an address
func (r *GormAddressRepository) Create(ctx context.Context, address *identity.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// Update saves an address
func (r *GormAddressRepository) Update(ctx context.Context, address *identity.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// FindByID finds an address owned by userID
func (r *GormAddressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*identity.Address, error) {
	var address identity.Address
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}

// FindByUser lists a user's addresses, default first
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.Address, error) {
	var addresses []identity.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&addresses).Error
	return addresses, err
}

// ClearDefault unsets is_default on the user's other addresses
func (r *GormAddressRepository) ClearDefault(ctx context.Context, userID uuid.UUID, keep uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&identity.Address{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keep, true).
		Update("is_default", false).Error
}

// Delete removes an address owned by userID
func (r *GormAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&identity.Address{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return identity.ErrAddressNotFound
	}
	return nil
}

// DeleteByUser removes every address of the user
func (r *GormAddressRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&identity.Address{}).Error
}

var _ identity.AddressRepository = (*GormAddressRepository)(nil)
