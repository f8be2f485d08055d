package identity

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

// Password cost for bcrypt
const bcryptCost = 12

// bcrypt ignores input past this many bytes and newer versions reject it
const maxPasswordBytes = 72

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// User errors
var (
	ErrUserNotFound       = shared.NewNotFoundError("USER_NOT_FOUND", "User not found")
	ErrEmailExists        = shared.NewConflictError("EMAIL_EXISTS", "Email already registered")
	ErrPhoneExists        = shared.NewConflictError("PHONE_EXISTS", "Phone number already registered")
	ErrInvalidCredentials = shared.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid email or password")
)

// User is a storefront account. UserType is b2c until a B2B application is approved.
type User struct {
	shared.BaseAggregateRoot
	Email        string           `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string           `gorm:"type:varchar(255);not null"`
	FullName     string           `gorm:"type:varchar(200)"`
	PhoneNumber  *string          `gorm:"type:varchar(20);uniqueIndex"`
	UserType     pricing.Audience `gorm:"type:varchar(10);not null;default:'b2c'"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a b2c user with a hashed password
func NewUser(email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		UserType:          pricing.AudienceB2C,
	}, nil
}

// NormalizeEmail lower-cases and trims an email for lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetFullName sets the user's display name
func (u *User) SetFullName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_FULL_NAME", "Full name cannot exceed 200 characters")
	}
	u.FullName = name
	u.Touch()
	return nil
}

// SetPhoneNumber sets or clears the user's phone number
func (u *User) SetPhoneNumber(phone string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		u.PhoneNumber = nil
		u.Touch()
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return shared.NewValidationError("INVALID_PHONE", "Invalid phone number")
	}
	u.PhoneNumber = &phone
	u.Touch()
	return nil
}

// Phone returns the phone number or an empty string
func (u *User) Phone() string {
	if u.PhoneNumber == nil {
		return ""
	}
	return *u.PhoneNumber
}

// PromoteToB2B marks the user as an approved business buyer
func (u *User) PromoteToB2B() {
	u.UserType = pricing.AudienceB2B
	u.Touch()
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), truncatePassword(password))
	return err == nil
}

// DisplayName falls back to the fallback name, then to the local part of the email
func (u *User) DisplayName(fallback string) string {
	if u.FullName != "" {
		return u.FullName
	}
	if fallback != "" {
		return fallback
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// ValidPhone checks a normalized phone number
func ValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// NormalizePhone strips spaces and dashes
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewValidationError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 6 {
		return shared.NewValidationError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewValidationError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
