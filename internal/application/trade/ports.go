package trade

import (
	"context"

	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/trade"
)

// TransactionalRepositories exposes the repositories order placement touches, all bound
// to the same open transaction
type TransactionalRepositories interface {
	OrderRepo() trade.OrderRepository
	// CouponRepo locks coupon rows with FindByCodeForUpdate until the transaction ends
	CouponRepo() promotion.CouponRepository
	ReturnRepo() trade.ReturnRequestRepository
}

// TransactionScope runs fn in one database transaction.
// An error from fn rolls back, nil commits.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
