package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	appidentity "github.com/sevenext/backend/internal/application/identity"
)

var _ appidentity.DocumentStorage = (*MemoryObjectStorage)(nil)

// Object is a stored blob with its content type
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps objects in process memory. It serves local
// development without an S3 endpoint and the service tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

// NewMemoryObjectStorage creates an empty store whose download links start with baseURL
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/files"
	}
	return &MemoryObjectStorage{objects: make(map[string]Object), baseURL: baseURL}
}

// Upload stores a copy of data under storageKey
func (m *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errMissingKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[storageKey] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// GenerateDownloadURL returns a link to the object; it does not check that the object exists.
// A non-positive expiresIn gets the same 15 minute default as S3 links.
func (m *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errMissingKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultLinkExpiry
	}
	expiresAt := time.Now().Add(expiresIn)
	link := m.baseURL + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return link, expiresAt, nil
}

// DeleteObject removes an object; deleting a missing key is not an error
func (m *MemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errMissingKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storageKey)
	return nil
}

// Get returns the stored object
func (m *MemoryObjectStorage) Get(storageKey string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	return obj, ok
}
