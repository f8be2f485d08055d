package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/domain/trade"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByEmail(ctx context.Context, email string) ([]trade.Order, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, page shared.Page) ([]trade.Order, int64, error) {
	args := m.Called(ctx, customerID, page)
	return args.Get(0).([]trade.Order), args.Get(1).(int64), args.Error(2)
}

// MockCouponRepository is a mock implementation of promotion.CouponRepository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindByCodeForUpdate(ctx context.Context, code string) (*promotion.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

// MockReturnRequestRepository is a mock implementation of trade.ReturnRequestRepository
type MockReturnRequestRepository struct {
	mock.Mock
}

func (m *MockReturnRequestRepository) Create(ctx context.Context, req *trade.ReturnRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockReturnRequestRepository) Save(ctx context.Context, req *trade.ReturnRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockReturnRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ReturnRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]trade.ReturnRequest, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]trade.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) HasOpenForOrder(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

// fakeScope runs fn directly against the mocks. It records whether fn failed so tests
// can assert that a rollback would have happened.
type fakeScope struct {
	orders     *MockOrderRepository
	coupons    *MockCouponRepository
	returns    *MockReturnRequestRepository
	rolledBack bool
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	err := fn(s)
	s.rolledBack = err != nil
	return err
}

func (s *fakeScope) OrderRepo() trade.OrderRepository {
	return s.orders
}

func (s *fakeScope) CouponRepo() promotion.CouponRepository {
	return s.coupons
}

func (s *fakeScope) ReturnRepo() trade.ReturnRequestRepository {
	return s.returns
}

func newFakeScope() *fakeScope {
	return &fakeScope{
		orders:  new(MockOrderRepository),
		coupons: new(MockCouponRepository),
		returns: new(MockReturnRequestRepository),
	}
}
