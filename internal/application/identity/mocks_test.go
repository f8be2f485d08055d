package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/infrastructure/auth"
	"github.com/sevenext/backend/internal/infrastructure/config"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockApplicationRepository is a mock implementation of identity.B2BApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *identity.B2BApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) Update(ctx context.Context, app *identity.B2BApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.B2BApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.B2BApplication), args.Error(1)
}

func (m *MockApplicationRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockAddressRepository is a mock implementation of identity.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, address *identity.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Update(ctx context.Context, address *identity.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*identity.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Address), args.Error(1)
}

func (m *MockAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.Address), args.Error(1)
}

func (m *MockAddressRepository) ClearDefault(ctx context.Context, userID uuid.UUID, keep uuid.UUID) error {
	args := m.Called(ctx, userID, keep)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockAddressRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockDocumentStorage is a mock implementation of DocumentStorage
type MockDocumentStorage struct {
	mock.Mock
}

func (m *MockDocumentStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockDocumentStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockDocumentStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// fakeScope runs the callback directly against the mocks
type fakeScope struct {
	users     *MockUserRepository
	apps      *MockApplicationRepository
	addresses *MockAddressRepository
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *fakeScope) UserRepo() identity.UserRepository { return s.users }

func (s *fakeScope) ApplicationRepo() identity.B2BApplicationRepository { return s.apps }

func (s *fakeScope) AddressRepo() identity.AddressRepository { return s.addresses }

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-application-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "sevenext-test",
	})
}

func newTestUser(t *testing.T, email, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, password)
	require.NoError(t, err)
	return user
}

type identityFixture struct {
	users     *MockUserRepository
	apps      *MockApplicationRepository
	addresses *MockAddressRepository
	documents *MockDocumentStorage
	scope     *fakeScope
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	logger    *zap.Logger
}

func newIdentityFixture() *identityFixture {
	f := &identityFixture{
		users:     new(MockUserRepository),
		apps:      new(MockApplicationRepository),
		addresses: new(MockAddressRepository),
		documents: new(MockDocumentStorage),
		jwt:       newTestJWTService(),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		logger:    zap.NewNop(),
	}
	f.scope = &fakeScope{users: f.users, apps: f.apps, addresses: f.addresses}
	return f
}

func (f *identityFixture) authService() *AuthService {
	return NewAuthService(f.users, f.apps, f.scope, f.documents, f.jwt, f.blacklist, f.logger)
}

func (f *identityFixture) assertExpectations(t *testing.T) {
	f.users.AssertExpectations(t)
	f.apps.AssertExpectations(t)
	f.addresses.AssertExpectations(t)
	f.documents.AssertExpectations(t)
}
