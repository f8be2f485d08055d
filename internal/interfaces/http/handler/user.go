package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/sevenext/backend/internal/application/identity"
)

// UpdateProfileRequest changes profile fields; omitted fields stay as they are.
// Business fields only apply to B2B accounts.
type UpdateProfileRequest struct {
	FullName     *string `json:"full_name" binding:"omitempty,max=100"`
	PhoneNumber  *string `json:"phone_number" binding:"omitempty,phone"`
	BusinessName *string `json:"business_name" binding:"omitempty,max=200"`
	GSTIN        *string `json:"gstin" binding:"omitempty,gstin"`
	PAN          *string `json:"pan" binding:"omitempty,len=10"`
}

// UserHandler serves the signed-in user's profile and address book
type UserHandler struct {
	BaseHandler
	profileService *appidentity.ProfileService
	addressService *appidentity.AddressService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profileService *appidentity.ProfileService, addressService *appidentity.AddressService) *UserHandler {
	return &UserHandler{profileService: profileService, addressService: addressService}
}

// GetProfile godoc
// @Summary      Get my profile
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[appidentity.ProfileResult]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateProfile godoc
// @Summary      Update my profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Fields to change"
// @Success      200 {object} APIResponse[appidentity.ProfileResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}
	profile, err := h.profileService.Update(c.Request.Context(), userID, appidentity.UpdateProfileInput{
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		BusinessName: req.BusinessName,
		GSTIN:        req.GSTIN,
		PAN:          req.PAN,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// DeleteAccount godoc
// @Summary      Delete my account
// @Description  Removes the account, its addresses and business application. Reviews stay, shown as anonymous.
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/me [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	if err := h.profileService.Delete(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Account deleted"})
}

// ListAddresses godoc
// @Summary      List my addresses
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[[]appidentity.AddressResult]
// @Security     BearerAuth
// @Router       /users/addresses [get]
func (h *UserHandler) ListAddresses(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	addresses, err := h.addressService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// CreateAddress godoc
// @Summary      Add an address
// @Description  Setting is_default clears the previous default
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body AddressRequest true "Address"
// @Success      201 {object} APIResponse[appidentity.AddressResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/addresses [post]
func (h *UserHandler) CreateAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if !h.BindJSON(c, &req) {
		return
	}
	address, err := h.addressService.Create(c.Request.Context(), userID, *req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, address)
}

// UpdateAddress godoc
// @Summary      Update an address
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "Address ID"
// @Param        request body AddressRequest true "Address"
// @Success      200 {object} APIResponse[appidentity.AddressResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/addresses/{id} [put]
func (h *UserHandler) UpdateAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req AddressRequest
	if !h.BindJSON(c, &req) {
		return
	}
	address, err := h.addressService.Update(c.Request.Context(), userID, addressID, *req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// DeleteAddress godoc
// @Summary      Delete an address
// @Tags         users
// @Produce      json
// @Param        id path string true "Address ID"
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/addresses/{id} [delete]
func (h *UserHandler) DeleteAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.addressService.Delete(c.Request.Context(), userID, addressID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Address deleted"})
}
