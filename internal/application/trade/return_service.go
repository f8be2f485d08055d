package trade

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/trade"
)

// ReturnService opens and tracks return and exchange requests
type ReturnService struct {
	returnRepo trade.ReturnRequestRepository
	txScope    TransactionScope
	logger     *zap.Logger
}

// NewReturnService creates a new ReturnService
func NewReturnService(returnRepo trade.ReturnRequestRepository, txScope TransactionScope, logger *zap.Logger) *ReturnService {
	return &ReturnService{
		returnRepo: returnRepo,
		txScope:    txScope,
		logger:     logger,
	}
}

// Create opens a request for one of the customer's orders.
// Orders of other customers look the same as missing ones.
func (s *ReturnService) Create(ctx context.Context, customerID uuid.UUID, input CreateReturnInput) (*ReturnResponse, error) {
	var created *trade.ReturnRequest
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, strings.TrimSpace(input.OrderID))
		if err != nil {
			return err
		}
		if !order.BelongsTo(customerID) {
			return trade.ErrOrderNotFound
		}

		open, err := repos.ReturnRepo().HasOpenForOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if open {
			return trade.ErrOpenReturnExists
		}

		items := lo.Map(input.Items, func(item ReturnItemInput, _ int) trade.ReturnItem {
			return trade.ReturnItem{Name: strings.TrimSpace(item.Name), Quantity: item.Quantity}
		})
		req, err := trade.NewReturnRequest(order, trade.ReturnType(strings.ToLower(strings.TrimSpace(input.Type))),
			input.Reason, input.ExchangeNote, items)
		if err != nil {
			return err
		}
		if err := repos.ReturnRepo().Create(ctx, req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Return request opened",
		zap.String("return_id", created.ID.String()),
		zap.String("order_id", created.OrderID),
		zap.String("type", string(created.Type)))
	response := toReturnResponse(created)
	return &response, nil
}

// List returns the customer's requests, newest first
func (s *ReturnService) List(ctx context.Context, customerID uuid.UUID) ([]ReturnResponse, error) {
	reqs, err := s.returnRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list return requests", zap.Error(err))
		return nil, err
	}
	return lo.Map(reqs, func(r trade.ReturnRequest, _ int) ReturnResponse {
		return toReturnResponse(&r)
	}), nil
}

// Get returns one of the customer's requests
func (s *ReturnService) Get(ctx context.Context, customerID, id uuid.UUID) (*ReturnResponse, error) {
	req, err := s.find(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	response := toReturnResponse(req)
	return &response, nil
}

// Cancel withdraws a request that is still open
func (s *ReturnService) Cancel(ctx context.Context, customerID, id uuid.UUID) (*ReturnResponse, error) {
	req, err := s.find(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if err := req.Cancel(); err != nil {
		return nil, err
	}
	if err := s.returnRepo.Save(ctx, req); err != nil {
		s.logger.Error("Failed to cancel return request", zap.String("return_id", id.String()), zap.Error(err))
		return nil, err
	}
	response := toReturnResponse(req)
	return &response, nil
}

func (s *ReturnService) find(ctx context.Context, customerID, id uuid.UUID) (*trade.ReturnRequest, error) {
	req, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != customerID {
		return nil, trade.ErrReturnNotFound
	}
	return req, nil
}
