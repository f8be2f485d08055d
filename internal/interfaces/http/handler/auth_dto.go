package handler

import appidentity "github.com/sevenext/backend/internal/application/identity"

// SignupRequest is the quick signup form
type SignupRequest struct {
	Email        string `json:"email" binding:"required,email,max=200" example:"asha@example.com"`
	Password     string `json:"password" binding:"required,min=6,max=128" example:"s3cret!"`
	FullName     string `json:"full_name" binding:"omitempty,max=100" example:"Asha Rao"`
	PhoneNumber  string `json:"phone_number" binding:"omitempty,phone" example:"+919876543210"`
	BusinessName string `json:"business_name" binding:"omitempty,max=200"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"asha@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret!"`
}

// AddressRequest is an address as the client submits it
type AddressRequest struct {
	Label      string `json:"label" binding:"omitempty,max=50" example:"Home"`
	Street     string `json:"street" binding:"required,max=255" example:"12 MG Road"`
	City       string `json:"city" binding:"required,max=100" example:"Bengaluru"`
	State      string `json:"state" binding:"required,max=100" example:"Karnataka"`
	PostalCode string `json:"postal_code" binding:"required,pincode" example:"560001"`
	Country    string `json:"country" binding:"omitempty,max=100" example:"India"`
	IsDefault  bool   `json:"is_default"`
}

func (r *AddressRequest) input() *appidentity.AddressInput {
	if r == nil {
		return nil
	}
	return &appidentity.AddressInput{
		Label:      r.Label,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		IsDefault:  r.IsDefault,
	}
}

// RegisterB2CRequest registers a consumer with an optional first address
type RegisterB2CRequest struct {
	Email       string          `json:"email" binding:"required,email,max=200"`
	Password    string          `json:"password" binding:"required,min=6,max=128"`
	FullName    string          `json:"full_name" binding:"omitempty,max=100"`
	PhoneNumber string          `json:"phone_number" binding:"omitempty,phone"`
	Address     *AddressRequest `json:"address"`
}

// RegisterB2BForm is the multipart form of a business registration; the files are read separately
type RegisterB2BForm struct {
	Email        string `form:"email" binding:"required,email,max=200"`
	Password     string `form:"password" binding:"required,min=6,max=128"`
	BusinessName string `form:"business_name" binding:"required,max=200"`
	GSTIN        string `form:"gstin" binding:"required,gstin"`
	PAN          string `form:"pan" binding:"required,len=10"`
	PhoneNumber  string `form:"phone_number" binding:"required,phone"`
	// Address is a JSON encoded AddressRequest
	Address string `form:"address"`
}

// RefreshTokenRequest represents the refresh token request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// OTPRequest asks for a login code
type OTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone" example:"+919876543210"`
}

// OTPVerifyRequest signs in with a received code
type OTPVerifyRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone" example:"+919876543210"`
	Code        string `json:"code" binding:"required,len=6,numeric" example:"482913"`
}
