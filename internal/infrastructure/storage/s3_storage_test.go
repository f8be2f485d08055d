package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sevenext/backend/internal/infrastructure/config"
)

func baseStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:    "sevenext-docs",
		AccessKey: "test-key",
		SecretKey: "test-secret",
		Endpoint:  "http://localhost:9000",
	}
}

func TestNewS3DocumentStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3DocumentStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	tests := []struct {
		name   string
		mutate func(*config.StorageConfig)
		errMsg string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
		{"unsupported scheme", func(c *config.StorageConfig) { c.Endpoint = "ftp://files:21" }, "endpoint scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3DocumentStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		useSSL   bool
		expected string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{" https://s3.ap-south-1.amazonaws.com ", false, "https://s3.ap-south-1.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			endpoint, err := resolveEndpoint(tt.raw, tt.useSSL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, endpoint)
		})
	}
}

func TestS3DocumentStorage_LinkExpiry(t *testing.T) {
	t.Run("defaults to 15 minutes", func(t *testing.T) {
		store, err := NewS3DocumentStorage(baseStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, store.linkExpiry)
	})

	t.Run("follows presign_expiration", func(t *testing.T) {
		cfg := baseStorageConfig()
		cfg.PresignExpiration = time.Hour
		store, err := NewS3DocumentStorage(cfg, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, store.linkExpiry)
	})
}

func TestS3DocumentStorage_GenerateDownloadURL(t *testing.T) {
	cfg := baseStorageConfig()
	cfg.UsePathStyle = true
	cfg.PresignExpiration = 30 * time.Minute
	store, err := NewS3DocumentStorage(cfg)
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		link, _, err := store.GenerateDownloadURL(context.Background(), "", time.Minute)
		require.Error(t, err)
		assert.Empty(t, link)
	})

	t.Run("presigns a path-style inline link with the configured expiry", func(t *testing.T) {
		link, expiresAt, err := store.GenerateDownloadURL(context.Background(), "b2b/gst/abc.pdf", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "http://localhost:9000/sevenext-docs/b2b/gst/abc.pdf?"))
		assert.Contains(t, link, "X-Amz-Signature=")
		assert.Contains(t, link, "X-Amz-Expires=1800")
		assert.Contains(t, link, "response-content-disposition=inline")
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("explicit expiry wins", func(t *testing.T) {
		link, _, err := store.GenerateDownloadURL(context.Background(), "b2b/license/abc.pdf", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, link, "X-Amz-Expires=60")
	})
}

func TestS3DocumentStorage_EmptyKey(t *testing.T) {
	store, err := NewS3DocumentStorage(baseStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorIs(t, store.Upload(ctx, "", []byte("x"), "text/plain"), errMissingKey)
	require.ErrorIs(t, store.DeleteObject(ctx, ""), errMissingKey)
}

// fakeS3 answers the handful of S3 calls the storage makes
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: map[string]bool{}, objects: map[string]string{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")

	if key == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			f.buckets[bucket] = true
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) object(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[key]
	return body, ok
}

func TestS3DocumentStorage_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	server := httptest.NewServer(fake)
	defer server.Close()

	cfg := baseStorageConfig()
	cfg.Endpoint = server.URL
	cfg.UsePathStyle = true
	store, err := NewS3DocumentStorage(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.EnsureBucket(ctx))
	fake.mu.Lock()
	assert.True(t, fake.buckets["sevenext-docs"])
	fake.mu.Unlock()
	require.NoError(t, store.EnsureBucket(ctx), "existing bucket is left alone")

	require.NoError(t, store.Upload(ctx, "b2b/license/u1.pdf", []byte("%PDF-1.4"), "application/pdf"))
	body, ok := fake.object("b2b/license/u1.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", body)

	require.NoError(t, store.DeleteObject(ctx, "b2b/license/u1.pdf"))
	_, ok = fake.object("b2b/license/u1.pdf")
	assert.False(t, ok)
}
