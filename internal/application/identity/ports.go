package identity

import (
	"context"
	"time"

	"github.com/sevenext/backend/internal/domain/identity"
)

// TransactionalRepositories exposes repositories bound to one open transaction
type TransactionalRepositories interface {
	UserRepo() identity.UserRepository
	ApplicationRepo() identity.B2BApplicationRepository
	AddressRepo() identity.AddressRepository
}

// TransactionScope runs account changes atomically.
// fn's error rolls the transaction back; a nil return commits it.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// DocumentStorage keeps uploaded B2B documents
type DocumentStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}
