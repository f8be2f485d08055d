package identity

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/infrastructure/auth"
)

// Object key prefixes of B2B documents
const (
	GSTCertificatePrefix  = "b2b/gst/"
	BusinessLicensePrefix = "b2b/license/"
)

// ErrDocumentsRequired is returned when a B2B registration misses a document
var ErrDocumentsRequired = shared.NewValidationError("DOCUMENTS_REQUIRED", "GST certificate and business license are required")

// tokenIssuer signs token pairs with the audience the user is entitled to
type tokenIssuer struct {
	appRepo    identity.B2BApplicationRepository
	jwtService *auth.JWTService
}

// audienceFor returns b2b only for users with an approved application
func (t tokenIssuer) audienceFor(ctx context.Context, user *identity.User) (pricing.Audience, *identity.B2BApplication, error) {
	app, err := t.appRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, identity.ErrApplicationNotFound) {
			return pricing.AudienceB2C, nil, nil
		}
		return "", nil, err
	}
	if app.IsApproved() {
		return pricing.AudienceB2B, app, nil
	}
	return pricing.AudienceB2C, app, nil
}

func notApprovedError(app *identity.B2BApplication) error {
	return shared.NewForbiddenError("B2B_NOT_APPROVED", fmt.Sprintf("B2B account is %s", app.Status))
}

func (t tokenIssuer) issue(user *identity.User, audience pricing.Audience) (*AuthResult, error) {
	pair, err := t.jwtService.GenerateTokenPair(auth.Subject{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: audience,
	})
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate authentication tokens")
	}
	return &AuthResult{Token: toTokenInfo(pair), User: toUserInfo(user, audience)}, nil
}

// AuthService handles signup, password login and token lifecycle
type AuthService struct {
	tokenIssuer
	userRepo  identity.UserRepository
	txScope   TransactionScope
	documents DocumentStorage
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	appRepo identity.B2BApplicationRepository,
	txScope TransactionScope,
	documents DocumentStorage,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		tokenIssuer: tokenIssuer{appRepo: appRepo, jwtService: jwtService},
		userRepo:    userRepo,
		txScope:     txScope,
		documents:   documents,
		blacklist:   blacklist,
		logger:      logger,
	}
}

// Signup creates a b2c account and signs it in
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	user, err := s.newUser(ctx, s.userRepo, input.Email, input.Password, input.FullName, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if user.FullName == "" && strings.TrimSpace(input.BusinessName) != "" {
		if err := user.SetFullName(input.BusinessName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User signed up", zap.String("user_id", user.ID.String()))
	return s.issue(user, pricing.AudienceB2C)
}

// Login authenticates with email and password.
// A user whose B2B application is not approved yet is refused.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			s.logger.Warn("User not found during login", zap.String("email", email))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	audience, app, err := s.audienceFor(ctx, user)
	if err != nil {
		return nil, err
	}
	if app != nil && !app.IsApproved() {
		s.logger.Warn("Login refused for unapproved B2B account",
			zap.String("user_id", user.ID.String()),
			zap.String("status", string(app.Status)))
		return nil, notApprovedError(app)
	}

	if audience == pricing.AudienceB2B && user.UserType != pricing.AudienceB2B {
		user.PromoteToB2B()
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Warn("Failed to record B2B promotion", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Login successful", zap.String("user_id", user.ID.String()), zap.String("user_type", audience.String()))
	return s.issue(user, audience)
}

// RegisterB2C creates a consumer and its optional default address in one transaction
func (s *AuthService) RegisterB2C(ctx context.Context, input RegisterB2CInput) (*AuthResult, error) {
	var user *identity.User
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		user, err = s.newUser(ctx, repos.UserRepo(), input.Email, input.Password, input.FullName, input.PhoneNumber)
		if err != nil {
			return err
		}
		if err := repos.UserRepo().Create(ctx, user); err != nil {
			return err
		}
		if input.Address == nil {
			return nil
		}
		fields := input.Address.fields()
		fields.IsDefault = true
		address, err := identity.NewAddress(user.ID, fields)
		if err != nil {
			return err
		}
		return repos.AddressRepo().Create(ctx, address)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("B2C user registered", zap.String("user_id", user.ID.String()))
	return s.issue(user, pricing.AudienceB2C)
}

// RegisterB2B stores the business documents, then creates the user, its pending
// application and optional address in one transaction. Uploaded documents are
// removed again when the transaction fails.
func (s *AuthService) RegisterB2B(ctx context.Context, input RegisterB2BInput) (*B2BRegistrationResult, error) {
	if input.GSTCertificate == nil || len(input.GSTCertificate.Data) == 0 ||
		input.BusinessLicense == nil || len(input.BusinessLicense.Data) == 0 {
		return nil, ErrDocumentsRequired
	}

	user, err := s.newUser(ctx, s.userRepo, input.Email, input.Password, input.BusinessName, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	app, err := identity.NewB2BApplication(user.ID, input.BusinessName, input.GSTIN, input.PAN)
	if err != nil {
		return nil, err
	}

	gstKey := documentKey(GSTCertificatePrefix, user.ID, input.GSTCertificate.Filename)
	licenseKey := documentKey(BusinessLicensePrefix, user.ID, input.BusinessLicense.Filename)
	uploaded, err := s.uploadDocuments(ctx, map[string]*Document{
		gstKey:     input.GSTCertificate,
		licenseKey: input.BusinessLicense,
	})
	if err != nil {
		s.cleanupDocuments(ctx, uploaded)
		return nil, err
	}
	app.AttachDocuments(gstKey, licenseKey)

	var addressID *uuid.UUID
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.UserRepo().Create(ctx, user); err != nil {
			return err
		}
		if err := repos.ApplicationRepo().Create(ctx, app); err != nil {
			return err
		}
		if input.Address == nil {
			return nil
		}
		fields := input.Address.fields()
		fields.IsDefault = true
		address, err := identity.NewAddress(user.ID, fields)
		if err != nil {
			return err
		}
		if err := repos.AddressRepo().Create(ctx, address); err != nil {
			return err
		}
		addressID = &address.ID
		return nil
	})
	if err != nil {
		s.cleanupDocuments(ctx, uploaded)
		return nil, err
	}

	s.logger.Info("B2B application submitted",
		zap.String("user_id", user.ID.String()),
		zap.String("application_id", app.ID.String()))

	// pending applications shop at b2c prices until approved
	result, err := s.issue(user, pricing.AudienceB2C)
	if err != nil {
		return nil, err
	}
	return &B2BRegistrationResult{
		ApplicationID: app.ID,
		UserID:        user.ID,
		AddressID:     addressID,
		Status:        app.Status,
		Token:         result.Token,
	}, nil
}

// Refresh exchanges a refresh token for a new pair and revokes the old refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Invalid refresh token", zap.Error(err))
		return nil, shared.NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired refresh token")
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, shared.NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, shared.NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired refresh token")
		}
		return nil, err
	}

	audience, _, err := s.audienceFor(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke used refresh token", zap.String("jti", claims.ID), zap.Error(err))
	}
	return s.issue(user, audience)
}

// Logout revokes the access token with the given id for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check token blacklist: %w", err)
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
		if err != nil {
			return fmt.Errorf("check user revocation: %w", err)
		}
	}
	if revoked {
		return shared.NewUnauthorizedError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

// newUser validates the credentials and checks email and phone are free
func (s *AuthService) newUser(ctx context.Context, repo identity.UserRepository, email, password, fullName, phone string) (*identity.User, error) {
	user, err := identity.NewUser(email, password)
	if err != nil {
		return nil, err
	}
	if err := user.SetFullName(fullName); err != nil {
		return nil, err
	}
	if err := user.SetPhoneNumber(phone); err != nil {
		return nil, err
	}

	exists, err := repo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrEmailExists
	}
	if p := user.Phone(); p != "" {
		if _, err := repo.FindByPhone(ctx, p); err == nil {
			return nil, identity.ErrPhoneExists
		} else if !errors.Is(err, identity.ErrUserNotFound) {
			return nil, err
		}
	}
	return user, nil
}

func (s *AuthService) uploadDocuments(ctx context.Context, docs map[string]*Document) ([]string, error) {
	uploaded := make([]string, 0, len(docs))
	for key, doc := range docs {
		contentType := doc.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.documents.Upload(ctx, key, doc.Data, contentType); err != nil {
			s.logger.Error("Failed to store B2B document", zap.String("key", key), zap.Error(err))
			return uploaded, shared.NewUpstreamError("DOCUMENT_UPLOAD_FAILED", "Failed to store uploaded documents")
		}
		uploaded = append(uploaded, key)
	}
	return uploaded, nil
}

func (s *AuthService) cleanupDocuments(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.documents.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("Failed to remove orphaned document", zap.String("key", key), zap.Error(err))
		}
	}
}

func documentKey(prefix string, userID uuid.UUID, filename string) string {
	return prefix + userID.String() + "-" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}
