package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	appidentity "github.com/sevenext/backend/internal/application/identity"
	"github.com/sevenext/backend/internal/interfaces/http/dto"
	"github.com/sevenext/backend/internal/interfaces/http/middleware"
)

var errDocumentTooLarge = errors.New("document too large")

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService   *appidentity.AuthService
	otpService    *appidentity.OTPService
	maxUploadSize int64
}

// NewAuthHandler creates a new auth handler. maxUploadSize bounds each registration document.
func NewAuthHandler(authService *appidentity.AuthService, otpService *appidentity.OTPService, maxUploadSize int64) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		otpService:    otpService,
		maxUploadSize: maxUploadSize,
	}
}

// Signup godoc
// @Summary      Quick signup
// @Description  Create a consumer account and sign it in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup form"
// @Success      201 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.authService.Signup(c.Request.Context(), appidentity.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password. Business accounts must be approved first.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterB2C godoc
// @Summary      Register a consumer
// @Description  Create a consumer account, optionally with its default address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterB2CRequest true "Registration"
// @Success      201 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/register/b2c [post]
func (h *AuthHandler) RegisterB2C(c *gin.Context) {
	var req RegisterB2CRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.authService.RegisterB2C(c.Request.Context(), appidentity.RegisterB2CInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address.input(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RegisterB2B godoc
// @Summary      Register a business buyer
// @Description  Create a business account with its GST certificate and business license. The account can log in once approved.
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        email            formData string true  "Email"
// @Param        password         formData string true  "Password"
// @Param        business_name    formData string true  "Business name"
// @Param        gstin            formData string true  "GSTIN"
// @Param        pan              formData string true  "PAN"
// @Param        phone_number     formData string true  "Phone number"
// @Param        address          formData string false "Address as JSON"
// @Param        gst_certificate  formData file   true  "GST certificate"
// @Param        business_license formData file   true  "Business license"
// @Success      201 {object} APIResponse[appidentity.B2BRegistrationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /auth/register/b2b [post]
func (h *AuthHandler) RegisterB2B(c *gin.Context) {
	var form RegisterB2BForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	var address *AddressRequest
	if form.Address != "" {
		address = &AddressRequest{}
		if err := json.Unmarshal([]byte(form.Address), address); err != nil {
			h.BadRequest(c, "address must be a JSON object")
			return
		}
	}

	gst, ok := h.document(c, "gst_certificate")
	if !ok {
		return
	}
	license, ok := h.document(c, "business_license")
	if !ok {
		return
	}

	result, err := h.authService.RegisterB2B(c.Request.Context(), appidentity.RegisterB2BInput{
		Email:           form.Email,
		Password:        form.Password,
		BusinessName:    form.BusinessName,
		GSTIN:           form.GSTIN,
		PAN:             form.PAN,
		PhoneNumber:     form.PhoneNumber,
		Address:         address.input(),
		GSTCertificate:  gst,
		BusinessLicense: license,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// document reads one uploaded file, writing the error response itself
func (h *AuthHandler) document(c *gin.Context, field string) (*appidentity.Document, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		h.BadRequest(c, field+" is required")
		return nil, false
	}
	data, err := h.readDocument(header)
	if errors.Is(err, errDocumentTooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, field+" exceeds the upload limit")
		return nil, false
	}
	if err != nil {
		h.BadRequest(c, "Unable to read "+field)
		return nil, false
	}
	return &appidentity.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func (h *AuthHandler) readDocument(header *multipart.FileHeader) ([]byte, error) {
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		return nil, errDocumentTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new token pair. Each refresh token works once.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @Summary      User logout
// @Description  Revoke the current access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c)
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Logged out successfully"})
}

// RequestOTP godoc
// @Summary      Request a login code
// @Description  Send a one-time login code by SMS. A new request replaces the pending code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body OTPRequest true "Phone number"
// @Success      200 {object} APIResponse[appidentity.OTPRequestResult]
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/otp/request [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.otpService.Request(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// VerifyOTP godoc
// @Summary      Sign in with a login code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body OTPVerifyRequest true "Phone number and code"
// @Success      200 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.otpService.Verify(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
