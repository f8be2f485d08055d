package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/infrastructure/auth"
)

// ErrNotBusinessAccount is returned when B2B fields are edited on an account without an application
var ErrNotBusinessAccount = shared.NewValidationError("NOT_B2B_ACCOUNT", "Business details can only be changed on a B2B account")

// ProfileService manages the signed-in user's own account
type ProfileService struct {
	userRepo   identity.UserRepository
	appRepo    identity.B2BApplicationRepository
	txScope    TransactionScope
	documents  DocumentStorage
	blacklist  auth.TokenBlacklist
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	userRepo identity.UserRepository,
	appRepo identity.B2BApplicationRepository,
	txScope TransactionScope,
	documents DocumentStorage,
	blacklist auth.TokenBlacklist,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo:   userRepo,
		appRepo:    appRepo,
		txScope:    txScope,
		documents:  documents,
		blacklist:  blacklist,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Get returns the profile, including business details and short-lived links
// to the uploaded documents for B2B accounts
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	app, err := findApplication(ctx, s.appRepo, userID)
	if err != nil {
		return nil, err
	}
	result := toProfileResult(user, app)
	if app != nil {
		result.Documents = s.documentLinks(ctx, app)
	}
	return result, nil
}

// documentLinks presigns the stored documents. A link that cannot be signed is
// left out so a storage outage does not break the profile page.
func (s *ProfileService) documentLinks(ctx context.Context, app *identity.B2BApplication) *BusinessDocuments {
	if s.documents == nil {
		return nil
	}
	var docs BusinessDocuments
	sign := func(key string) string {
		if key == "" {
			return ""
		}
		link, expiresAt, err := s.documents.GenerateDownloadURL(ctx, key, 0)
		if err != nil {
			s.logger.Warn("Failed to sign document link",
				zap.String("user_id", app.UserID.String()),
				zap.String("key", key),
				zap.Error(err))
			return ""
		}
		if docs.ExpiresAt.IsZero() || expiresAt.Before(docs.ExpiresAt) {
			docs.ExpiresAt = expiresAt
		}
		return link
	}
	docs.GSTCertificateURL = sign(app.GSTCertificateKey)
	docs.BusinessLicenseURL = sign(app.BusinessLicenseKey)
	if docs.GSTCertificateURL == "" && docs.BusinessLicenseURL == "" {
		return nil
	}
	return &docs
}

// Update changes the personal and, for B2B accounts, business fields in one transaction
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileResult, error) {
	var (
		user *identity.User
		app  *identity.B2BApplication
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		user, err = repos.UserRepo().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		app, err = findApplication(ctx, repos.ApplicationRepo(), userID)
		if err != nil {
			return err
		}

		if input.FullName != nil {
			if err := user.SetFullName(*input.FullName); err != nil {
				return err
			}
		}
		if input.PhoneNumber != nil {
			if err := s.checkPhoneFree(ctx, repos.UserRepo(), userID, *input.PhoneNumber); err != nil {
				return err
			}
			if err := user.SetPhoneNumber(*input.PhoneNumber); err != nil {
				return err
			}
		}
		if err := repos.UserRepo().Update(ctx, user); err != nil {
			return err
		}

		if !input.HasBusinessFields() {
			return nil
		}
		if app == nil {
			return ErrNotBusinessAccount
		}
		businessName, gstin, pan := app.BusinessName, app.GSTIN, app.PAN
		if input.BusinessName != nil {
			businessName = *input.BusinessName
		}
		if input.GSTIN != nil {
			gstin = *input.GSTIN
		}
		if input.PAN != nil {
			pan = *input.PAN
		}
		if err := app.UpdateBusiness(businessName, gstin, pan); err != nil {
			return err
		}
		return repos.ApplicationRepo().Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", zap.String("user_id", userID.String()))
	return toProfileResult(user, app), nil
}

// Delete removes the account with its application and addresses, then revokes every token
// issued to it. Reviews stay published without an author.
func (s *ProfileService) Delete(ctx context.Context, userID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.UserRepo().FindByID(ctx, userID); err != nil {
			return err
		}
		if err := repos.ApplicationRepo().DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := repos.AddressRepo().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return repos.UserRepo().Delete(ctx, userID)
	})
	if err != nil {
		s.logger.Error("Failed to delete account", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to revoke tokens of deleted account", zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.logger.Info("Account deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *ProfileService) checkPhoneFree(ctx context.Context, repo identity.UserRepository, userID uuid.UUID, phone string) error {
	phone = identity.NormalizePhone(phone)
	if phone == "" {
		return nil
	}
	owner, err := repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if owner.ID != userID {
		return identity.ErrPhoneExists
	}
	return nil
}

func findApplication(ctx context.Context, repo identity.B2BApplicationRepository, userID uuid.UUID) (*identity.B2BApplication, error) {
	app, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrApplicationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}
