package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/infrastructure/auth"
)

// SignupInput is the quick signup form
type SignupInput struct {
	Email        string
	Password     string
	FullName     string
	PhoneNumber  string
	BusinessName string
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string
	Password string
}

// AddressInput is the editable part of an address
type AddressInput struct {
	Label      string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

func (in AddressInput) fields() identity.AddressFields {
	return identity.AddressFields{
		Label:      in.Label,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		IsDefault:  in.IsDefault,
	}
}

// RegisterB2CInput registers a consumer, optionally with a first address
type RegisterB2CInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Address     *AddressInput
}

// Document is one uploaded file
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// RegisterB2BInput registers a business buyer together with its application documents
type RegisterB2BInput struct {
	Email           string
	Password        string
	BusinessName    string
	GSTIN           string
	PAN             string
	PhoneNumber     string
	Address         *AddressInput
	GSTCertificate  *Document
	BusinessLicense *Document
}

// UpdateProfileInput carries the profile fields to change; nil leaves a field as is
type UpdateProfileInput struct {
	FullName     *string
	PhoneNumber  *string
	BusinessName *string
	GSTIN        *string
	PAN          *string
}

// HasBusinessFields reports whether any B2B field is being changed
func (in UpdateProfileInput) HasBusinessFields() bool {
	return in.BusinessName != nil || in.GSTIN != nil || in.PAN != nil
}

// TokenInfo contains token information
type TokenInfo struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

func toTokenInfo(pair *auth.TokenPair) TokenInfo {
	return TokenInfo{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

// UserInfo contains the public fields of a user
type UserInfo struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	PhoneNumber string           `json:"phone_number,omitempty"`
	UserType    pricing.Audience `json:"user_type"`
}

func toUserInfo(user *identity.User, audience pricing.Audience) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		PhoneNumber: user.Phone(),
		UserType:    audience,
	}
}

// AuthResult is returned by every operation that signs a user in
type AuthResult struct {
	Token TokenInfo `json:"token"`
	User  UserInfo  `json:"user"`
}

// B2BRegistrationResult describes a submitted B2B application
type B2BRegistrationResult struct {
	ApplicationID uuid.UUID                  `json:"application_id"`
	UserID        uuid.UUID                  `json:"user_id"`
	AddressID     *uuid.UUID                 `json:"address_id,omitempty"`
	Status        identity.ApplicationStatus `json:"status"`
	Token         TokenInfo                  `json:"token"`
}

// OTPRequestResult tells the client how long the code stays valid
type OTPRequestResult struct {
	ExpiresInSeconds int `json:"expires_in_seconds"`
}

// ProfileResult is the signed-in user's profile
type ProfileResult struct {
	ID                uuid.UUID          `json:"id"`
	Email             string             `json:"email"`
	FullName          string             `json:"full_name"`
	PhoneNumber       string             `json:"phone_number,omitempty"`
	UserType          pricing.Audience   `json:"user_type"`
	BusinessName      string             `json:"business_name,omitempty"`
	GSTIN             string             `json:"gstin,omitempty"`
	PAN               string             `json:"pan,omitempty"`
	ApplicationStatus string             `json:"application_status,omitempty"`
	Documents         *BusinessDocuments `json:"documents,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// BusinessDocuments holds presigned links to a B2B account's uploaded documents
type BusinessDocuments struct {
	GSTCertificateURL  string    `json:"gst_certificate_url,omitempty"`
	BusinessLicenseURL string    `json:"business_license_url,omitempty"`
	ExpiresAt          time.Time `json:"expires_at"`
}

func toProfileResult(user *identity.User, app *identity.B2BApplication) *ProfileResult {
	result := &ProfileResult{
		ID:          user.ID,
		Email:       user.Email,
		PhoneNumber: user.Phone(),
		UserType:    user.UserType,
		CreatedAt:   user.CreatedAt,
	}
	fallback := ""
	if app != nil {
		fallback = app.BusinessName
		result.BusinessName = app.BusinessName
		result.GSTIN = app.GSTIN
		result.PAN = app.PAN
		result.ApplicationStatus = string(app.Status)
	}
	result.FullName = user.DisplayName(fallback)
	return result
}

// AddressResult is a saved address
type AddressResult struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toAddressResult(a *identity.Address) AddressResult {
	return AddressResult{
		ID:         a.ID,
		Label:      a.Label,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
