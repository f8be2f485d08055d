package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/sevenext/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts an order; a duplicate id returns ErrOrderExists
	Create(ctx context.Context, order *Order) error

	// FindByID finds an order by its client-generated id
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByEmail lists orders placed with the email, newest first
	FindByEmail(ctx context.Context, email string) ([]Order, error)

	// FindByCustomer lists a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, page shared.Page) ([]Order, int64, error)
}

// ReturnRequestRepository defines the interface for return request persistence
type ReturnRequestRepository interface {
	Create(ctx context.Context, req *ReturnRequest) error

	// Save updates the request with an optimistic version check
	Save(ctx context.Context, req *ReturnRequest) error

	FindByID(ctx context.Context, id uuid.UUID) (*ReturnRequest, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]ReturnRequest, error)

	// HasOpenForOrder checks for a non-terminal request on the order
	HasOpenForOrder(ctx context.Context, orderID string) (bool, error)
}
