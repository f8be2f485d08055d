package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/domain/trade"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts an order
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return trade.ErrOrderExists
		}
		return err
	}
	return nil
}

// FindByID finds an order by its client-generated id
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByEmail lists orders placed with the email, newest first
func (r *GormOrderRepository) FindByEmail(ctx context.Context, email string) ([]trade.Order, error) {
	var orders []trade.Order
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// FindByCustomer lists a customer's orders, newest first, with the total count
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, page shared.Page) ([]trade.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&trade.Order{}).
		Where("customer_id = ?", customerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize(shared.DefaultPageLimit)
	var orders []trade.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GormReturnRequestRepository implements ReturnRequestRepository using GORM
type GormReturnRequestRepository struct {
	db *gorm.DB
}

// NewGormReturnRequestRepository creates a new GormReturnRequestRepository
func NewGormReturnRequestRepository(db *gorm.DB) *GormReturnRequestRepository {
	return &GormReturnRequestRepository{db: db}
}

// Create inserts a return request
func (r *GormReturnRequestRepository) Create(ctx context.Context, req *trade.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Save updates status fields when the stored version is the one the request was loaded with
func (r *GormReturnRequestRepository) Save(ctx context.Context, req *trade.ReturnRequest) error {
	result := r.db.WithContext(ctx).Model(&trade.ReturnRequest{}).
		Where("id = ? AND version = ?", req.ID, req.Version-1).
		Updates(map[string]any{
			"status":          req.Status,
			"resolution_note": req.ResolutionNote,
			"resolved_at":     req.ResolvedAt,
			"version":         req.Version,
			"updated_at":      req.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConcurrentUpdate
	}
	return nil
}

// FindByID finds a return request by ID
func (r *GormReturnRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ReturnRequest, error) {
	var req trade.ReturnRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrReturnNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByCustomer lists a customer's return requests, newest first
func (r *GormReturnRequestRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]trade.ReturnRequest, error) {
	var reqs []trade.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// HasOpenForOrder checks for a request on the order that is not yet resolved
func (r *GormReturnRequestRepository) HasOpenForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&trade.ReturnRequest{}).
		Where("order_id = ? AND status IN ?", orderID, []trade.ReturnStatus{trade.ReturnStatusRequested, trade.ReturnStatusApproved}).
		Count(&count).Error
	return count > 0, err
}

var (
	_ trade.OrderRepository         = (*GormOrderRepository)(nil)
	_ trade.ReturnRequestRepository = (*GormReturnRequestRepository)(nil)
)
