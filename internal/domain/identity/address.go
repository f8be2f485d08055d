package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sevenext/backend/internal/domain/shared"
)

// ErrAddressNotFound is returned when the address does not exist or belongs to another user
var ErrAddressNotFound = shared.NewNotFoundError("ADDRESS_NOT_FOUND", "Address not found")

// DefaultAddressLabel names an address when the caller gives none
const DefaultAddressLabel = "Home"

// AddressFields is the editable part of an address
type AddressFields struct {
	Label      string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

// Address is a saved delivery address. At most one address per user is the default.
type Address struct {
	shared.BaseEntity
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Label      string    `gorm:"type:varchar(100);not null;default:'Home'"`
	Street     string    `gorm:"type:varchar(255);not null"`
	City       string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(100)"`
	PostalCode string    `gorm:"type:varchar(10)"`
	Country    string    `gorm:"type:varchar(100)"`
	IsDefault  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// NewAddress creates an address owned by userID
func NewAddress(userID uuid.UUID, fields AddressFields) (*Address, error) {
	a := &Address{BaseEntity: shared.NewBaseEntity(), UserID: userID}
	if err := a.Update(fields); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the editable fields
func (a *Address) Update(fields AddressFields) error {
	street := strings.TrimSpace(fields.Street)
	city := strings.TrimSpace(fields.City)
	if street == "" || city == "" {
		return shared.NewValidationError("INVALID_ADDRESS", "Street and city are required")
	}
	label := strings.TrimSpace(fields.Label)
	if label == "" {
		label = DefaultAddressLabel
	}
	a.Label = label
	a.Street = street
	a.City = city
	a.State = strings.TrimSpace(fields.State)
	a.PostalCode = strings.TrimSpace(fields.PostalCode)
	a.Country = strings.TrimSpace(fields.Country)
	a.IsDefault = fields.IsDefault
	a.Touch()
	return nil
}

// OwnedBy reports whether the address belongs to userID
func (a *Address) OwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}

// AddressRepository defines persistence for addresses
type AddressRepository interface {
	Create(ctx context.Context, address *Address) error
	Update(ctx context.Context, address *Address) error

	// FindByID finds an address owned by userID
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Address, error)

	// FindByUser lists a user's addresses, default first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)

	// ClearDefault unsets is_default on every address of the user except keep
	ClearDefault(ctx context.Context, userID uuid.UUID, keep uuid.UUID) error

	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
