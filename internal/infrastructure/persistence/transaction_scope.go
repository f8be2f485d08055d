package persistence

import (
	"context"

	"gorm.io/gorm"

	appidentity "github.com/sevenext/backend/internal/application/identity"
	apptrade "github.com/sevenext/backend/internal/application/trade"
	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/trade"
)

// IdentityTransactionScope runs account changes spanning users, applications and addresses atomically
type IdentityTransactionScope struct {
	db *gorm.DB
}

// NewIdentityTransactionScope creates a new IdentityTransactionScope
func NewIdentityTransactionScope(db *gorm.DB) *IdentityTransactionScope {
	return &IdentityTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// The transaction is rolled back when fn returns an error or panics, and committed otherwise.
func (s *IdentityTransactionScope) Execute(ctx context.Context, fn func(repos appidentity.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&identityRepositories{tx: tx})
	})
}

type identityRepositories struct {
	tx *gorm.DB
}

func (r *identityRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

func (r *identityRepositories) ApplicationRepo() identity.B2BApplicationRepository {
	return NewGormB2BApplicationRepository(r.tx)
}

func (r *identityRepositories) AddressRepo() identity.AddressRepository {
	return NewGormAddressRepository(r.tx)
}

// TradeTransactionScope runs order placement and coupon redemption atomically
type TradeTransactionScope struct {
	db *gorm.DB
}

// NewTradeTransactionScope creates a new TradeTransactionScope
func NewTradeTransactionScope(db *gorm.DB) *TradeTransactionScope {
	return &TradeTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *TradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&tradeRepositories{tx: tx})
	})
}

type tradeRepositories struct {
	tx *gorm.DB
}

func (r *tradeRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *tradeRepositories) CouponRepo() promotion.CouponRepository {
	return NewGormCouponRepository(r.tx)
}

func (r *tradeRepositories) ReturnRepo() trade.ReturnRequestRepository {
	return NewGormReturnRequestRepository(r.tx)
}

var (
	_ appidentity.TransactionScope          = (*IdentityTransactionScope)(nil)
	_ appidentity.TransactionalRepositories = (*identityRepositories)(nil)
	_ apptrade.TransactionScope             = (*TradeTransactionScope)(nil)
	_ apptrade.TransactionalRepositories    = (*tradeRepositories)(nil)
)
