package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/sevenext/backend/internal/domain/shared"
)

// ApplicationStatus is the review state of a B2B application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending_approval"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

var (
	gstinRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panRegex   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// B2B application errors
var (
	ErrApplicationNotFound = shared.NewNotFoundError("B2B_APPLICATION_NOT_FOUND", "B2B application not found")
	ErrInvalidGSTIN        = shared.NewValidationError("INVALID_GSTIN", "Invalid GSTIN")
	ErrInvalidPAN          = shared.NewValidationError("INVALID_PAN", "Invalid PAN")
)

// B2BApplication holds the business details a user submitted to buy at B2B prices
type B2BApplication struct {
	shared.BaseEntity
	UserID             uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	BusinessName       string            `gorm:"type:varchar(255);not null"`
	GSTIN              string            `gorm:"column:gstin;type:varchar(15);not null"`
	PAN                string            `gorm:"column:pan;type:varchar(10);not null"`
	GSTCertificateKey  string            `gorm:"column:gst_certificate_key;type:text"`
	BusinessLicenseKey string            `gorm:"type:text"`
	Status             ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending_approval'"`
}

// TableName returns the table name for GORM
func (B2BApplication) TableName() string {
	return "b2b_applications"
}

// NewB2BApplication creates a pending application
func NewB2BApplication(userID uuid.UUID, businessName, gstin, pan string) (*B2BApplication, error) {
	app := &B2BApplication{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Status:     ApplicationPending,
	}
	if err := app.UpdateBusiness(businessName, gstin, pan); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateBusiness replaces the business identifiers after validating them
func (a *B2BApplication) UpdateBusiness(businessName, gstin, pan string) error {
	businessName = strings.TrimSpace(businessName)
	if businessName == "" {
		return shared.NewValidationError("BUSINESS_NAME_REQUIRED", "Business name is required")
	}
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if !ValidGSTIN(gstin) {
		return ErrInvalidGSTIN
	}
	pan = strings.ToUpper(strings.TrimSpace(pan))
	if !panRegex.MatchString(pan) {
		return ErrInvalidPAN
	}
	a.BusinessName = businessName
	a.GSTIN = gstin
	a.PAN = pan
	a.Touch()
	return nil
}

// AttachDocuments records the object keys of the uploaded documents
func (a *B2BApplication) AttachDocuments(gstCertificateKey, businessLicenseKey string) {
	a.GSTCertificateKey = gstCertificateKey
	a.BusinessLicenseKey = businessLicenseKey
	a.Touch()
}

// IsApproved reports whether the user may log in as b2b
func (a *B2BApplication) IsApproved() bool {
	return a.Status == ApplicationApproved
}

// ValidGSTIN checks the 15-character GSTIN layout
func ValidGSTIN(gstin string) bool {
	return gstinRegex.MatchString(gstin)
}
