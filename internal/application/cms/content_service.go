// Package cms serves published editorial content.
package cms

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/cms"
	"github.com/sevenext/backend/internal/domain/shared"
)

// ErrInvalidContentType is returned for a type outside page, banner and faq
var ErrInvalidContentType = shared.NewValidationError("INVALID_INPUT", "type must be one of page, banner, faq")

// ContentResponse represents a content block in API responses
type ContentResponse struct {
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	Body      string          `json:"body,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	LinkURL   string          `json:"link_url,omitempty"`
	Type      cms.ContentType `json:"type"`
	SortOrder int             `json:"sort_order"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toContentResponse(c *cms.Content) ContentResponse {
	return ContentResponse{
		Slug:      c.Slug,
		Title:     c.Title,
		Body:      c.Body,
		ImageURL:  c.ImageURL,
		LinkURL:   c.LinkURL,
		Type:      c.Type,
		SortOrder: c.SortOrder,
		UpdatedAt: c.UpdatedAt,
	}
}

// ContentService reads published content through a short-lived in-process cache.
// Edits become visible once the cached entry expires.
type ContentService struct {
	repo   cms.ContentRepository
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewContentService creates a new ContentService. A ttl of zero disables caching.
func NewContentService(repo cms.ContentRepository, ttl time.Duration, logger *zap.Logger) *ContentService {
	s := &ContentService{repo: repo, logger: logger}
	if ttl > 0 {
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s
}

// GetPage returns a published block by slug
func (s *ContentService) GetPage(ctx context.Context, slug string) (*ContentResponse, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, cms.ErrContentNotFound
	}

	key := "slug:" + slug
	if cached, ok := s.cached(key); ok {
		response := cached.(ContentResponse)
		return &response, nil
	}

	content, err := s.repo.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	response := toContentResponse(content)
	s.store(key, response)
	return &response, nil
}

// List returns the published blocks of one type in display order
func (s *ContentService) List(ctx context.Context, contentType string) ([]ContentResponse, error) {
	t := cms.ContentType(strings.ToLower(strings.TrimSpace(contentType)))
	if !t.IsValid() {
		return nil, ErrInvalidContentType
	}

	key := "type:" + string(t)
	if cached, ok := s.cached(key); ok {
		return cached.([]ContentResponse), nil
	}

	contents, err := s.repo.FindPublishedByType(ctx, t)
	if err != nil {
		s.logger.Error("Failed to list content", zap.String("type", string(t)), zap.Error(err))
		return nil, err
	}
	responses := lo.Map(contents, func(c cms.Content, _ int) ContentResponse {
		return toContentResponse(&c)
	})
	s.store(key, responses)
	return responses, nil
}

func (s *ContentService) cached(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *ContentService) store(key string, value any) {
	if s.cache != nil {
		s.cache.SetDefault(key, value)
	}
}
