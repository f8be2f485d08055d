package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	apptrade "github.com/sevenext/backend/internal/application/trade"
)

// ReturnItemRequest is one line being sent back
type ReturnItemRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Quantity int    `json:"quantity" binding:"required,gte=1"`
}

// CreateReturnRequest opens a return or exchange
type CreateReturnRequest struct {
	OrderID      string              `json:"order_id" binding:"required,max=64"`
	Type         string              `json:"type" binding:"required,oneof=return exchange RETURN EXCHANGE"`
	Reason       string              `json:"reason" binding:"required,max=1000"`
	ExchangeNote string              `json:"exchange_note" binding:"omitempty,max=1000"`
	Items        []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReturnHandler manages the caller's return and exchange requests
type ReturnHandler struct {
	BaseHandler
	returnService *apptrade.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnService *apptrade.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// Create godoc
// @Summary      Request a return or exchange
// @Description  The order must belong to the caller and have no open request
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body CreateReturnRequest true "Return request"
// @Success      201 {object} APIResponse[apptrade.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.returnService.Create(c.Request.Context(), userID, apptrade.CreateReturnInput{
		OrderID:      req.OrderID,
		Type:         req.Type,
		Reason:       req.Reason,
		ExchangeNote: req.ExchangeNote,
		Items: lo.Map(req.Items, func(i ReturnItemRequest, _ int) apptrade.ReturnItemInput {
			return apptrade.ReturnItemInput{Name: i.Name, Quantity: i.Quantity}
		}),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List my return requests
// @Tags         returns
// @Produce      json
// @Success      200 {object} APIResponse[[]apptrade.ReturnResponse]
// @Security     BearerAuth
// @Router       /returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	results, err := h.returnService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// Get godoc
// @Summary      Get a return request
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return request ID"
// @Success      200 {object} APIResponse[apptrade.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *ReturnHandler) Get(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.returnService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @Summary      Cancel a return request
// @Description  Only requested or approved requests can be cancelled
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return request ID"
// @Success      200 {object} APIResponse[apptrade.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/cancel [post]
func (h *ReturnHandler) Cancel(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.returnService.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
