package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sevenext/backend/internal/domain/shared"
)

// ReturnStatus represents the status of a return or exchange request
type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "REQUESTED" // Waiting for review
	ReturnStatusApproved  ReturnStatus = "APPROVED"  // Approved, pickup pending
	ReturnStatusRejected  ReturnStatus = "REJECTED"
	ReturnStatusCompleted ReturnStatus = "COMPLETED" // Goods received, refund or replacement issued
	ReturnStatusCancelled ReturnStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusRequested, ReturnStatusApproved, ReturnStatusRejected,
		ReturnStatusCompleted, ReturnStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusRequested:
		return target == ReturnStatusApproved || target == ReturnStatusRejected || target == ReturnStatusCancelled
	case ReturnStatusApproved:
		return target == ReturnStatusCompleted || target == ReturnStatusCancelled
	case ReturnStatusRejected, ReturnStatusCompleted, ReturnStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transition is possible
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusRejected || s == ReturnStatusCompleted || s == ReturnStatusCancelled
}

// ReturnType distinguishes refunds from replacements
type ReturnType string

const (
	ReturnTypeReturn   ReturnType = "return"
	ReturnTypeExchange ReturnType = "exchange"
)

// Return request errors
var (
	ErrReturnNotFound     = shared.NewNotFoundError("RETURN_NOT_FOUND", "Return request not found")
	ErrOpenReturnExists   = shared.NewDomainError("RETURN_ALREADY_OPEN", "An open return request already exists for this order")
	ErrInvalidReturnType  = shared.NewValidationError("INVALID_RETURN_TYPE", "Type must be return or exchange")
	ErrReturnItemNotFound = shared.NewValidationError("RETURN_ITEM_NOT_IN_ORDER", "Returned item is not part of the order")
)

// ReturnItem is one line being sent back
type ReturnItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ReturnRequest is a customer's request to return or exchange items of an order
type ReturnRequest struct {
	shared.BaseAggregateRoot
	OrderID        string       `gorm:"type:varchar(64);not null;index"`
	CustomerID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type           ReturnType   `gorm:"type:varchar(20);not null"`
	Reason         string       `gorm:"type:text;not null"`
	ExchangeNote   string       `gorm:"type:text"`
	Items          []ReturnItem `gorm:"type:jsonb;serializer:json"`
	Status         ReturnStatus `gorm:"type:varchar(20);not null;default:'REQUESTED'"`
	ResolutionNote string       `gorm:"type:text"`
	ResolvedAt     *time.Time
}

// TableName returns the table name for GORM
func (ReturnRequest) TableName() string {
	return "return_requests"
}

// NewReturnRequest validates the items against the order and opens a request
func NewReturnRequest(order *Order, returnType ReturnType, reason, exchangeNote string, items []ReturnItem) (*ReturnRequest, error) {
	if returnType != ReturnTypeReturn && returnType != ReturnTypeExchange {
		return nil, ErrInvalidReturnType
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("REASON_REQUIRED", "Reason is required")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("NO_ITEMS", "Cannot request a return without items")
	}
	for _, item := range items {
		ordered, ok := order.HasItem(item.Name)
		if !ok {
			return nil, ErrReturnItemNotFound
		}
		if item.Quantity <= 0 {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Return quantity must be positive")
		}
		if item.Quantity > ordered.Quantity {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Return quantity cannot exceed ordered quantity")
		}
	}

	return &ReturnRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           order.ID,
		CustomerID:        order.CustomerID,
		Type:              returnType,
		Reason:            reason,
		ExchangeNote:      strings.TrimSpace(exchangeNote),
		Items:             items,
		Status:            ReturnStatusRequested,
	}, nil
}

func (r *ReturnRequest) transition(target ReturnStatus, verb, note string) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot %s return in %s status", verb, r.Status))
	}
	r.Status = target
	r.ResolutionNote = note
	if target.IsTerminal() {
		now := time.Now()
		r.ResolvedAt = &now
	}
	r.IncrementVersion()
	return nil
}

// Approve transitions from REQUESTED to APPROVED
func (r *ReturnRequest) Approve(note string) error {
	return r.transition(ReturnStatusApproved, "approve", note)
}

// Reject transitions from REQUESTED to REJECTED
func (r *ReturnRequest) Reject(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("REASON_REQUIRED", "Rejection reason is required")
	}
	return r.transition(ReturnStatusRejected, "reject", reason)
}

// Complete transitions from APPROVED to COMPLETED
func (r *ReturnRequest) Complete() error {
	return r.transition(ReturnStatusCompleted, "complete", r.ResolutionNote)
}

// Cancel withdraws a request that is not yet resolved
func (r *ReturnRequest) Cancel() error {
	return r.transition(ReturnStatusCancelled, "cancel", "cancelled by customer")
}

// IsOpen returns true while the request can still change
func (r *ReturnRequest) IsOpen() bool {
	return !r.Status.IsTerminal()
}
