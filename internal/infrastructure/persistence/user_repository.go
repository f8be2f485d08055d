package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevenext/backend/internal/domain/identity"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return identity.ErrEmailExists
		}
		return err
	}
	return nil
}

// Update writes profile fields when the stored version matches the loaded one, then bumps it
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		Updates(map[string]any{
			"full_name":    user.FullName,
			"phone_number": user.PhoneNumber,
			"user_type":    user.UserType,
			"version":      user.Version + 1,
			"updated_at":   user.UpdatedAt,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return identity.ErrPhoneExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConcurrentUpdate
	}
	user.Version++
	return nil
}

// Delete deletes a user by ID
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "email = ?", identity.NormalizeEmail(email))
}

// FindByPhone finds a user by normalized phone number
func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	return r.findOne(ctx, "phone_number = ?", identity.NormalizePhone(phone))
}

// ExistsByEmail checks if an email already exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg any) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GormB2BApplicationRepository implements B2BApplicationRepository using GORM
type GormB2BApplicationRepository struct {
	db *gorm.DB
}

// NewGormB2BApplicationRepository creates a new GormB2BApplicationRepository
func NewGormB2BApplicationRepository(db *gorm.DB) *GormB2BApplicationRepository {
	return &GormB2BApplicationRepository{db: db}
}

// Create inserts an application
func (r *GormB2BApplicationRepository) Create(ctx context.Context, app *identity.B2BApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// Update saves business details and document keys
func (r *GormB2BApplicationRepository) Update(ctx context.Context, app *identity.B2BApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// FindByUserID finds the application a user submitted
func (r *GormB2BApplicationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.B2BApplication, error) {
	var app identity.B2BApplication
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

// DeleteByUserID removes a user's application if any
func (r *GormB2BApplicationRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&identity.B2BApplication{}).Error
}

var (
	_ identity.UserRepository           = (*GormUserRepository)(nil)
	_ identity.B2BApplicationRepository = (*GormB2BApplicationRepository)(nil)
)
