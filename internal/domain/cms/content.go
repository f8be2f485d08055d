// Package cms holds the storefront's editorial content: static pages, banners and FAQ entries.
package cms

import (
	"context"

	"github.com/sevenext/backend/internal/domain/shared"
)

// ContentType groups content blocks by where the storefront renders them
type ContentType string

const (
	ContentTypePage   ContentType = "page"
	ContentTypeBanner ContentType = "banner"
	ContentTypeFAQ    ContentType = "faq"
)

// IsValid checks if the type is known
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypePage, ContentTypeBanner, ContentTypeFAQ:
		return true
	}
	return false
}

// ErrContentNotFound is returned for unknown or unpublished slugs
var ErrContentNotFound = shared.NewNotFoundError("CONTENT_NOT_FOUND", "Content not found")

// Content is one editorial block
type Content struct {
	shared.BaseEntity
	Slug      string      `gorm:"type:varchar(150);not null;uniqueIndex"`
	Title     string      `gorm:"type:varchar(255);not null"`
	Body      string      `gorm:"type:text"`
	ImageURL  string      `gorm:"type:text"`
	LinkURL   string      `gorm:"type:text"`
	Type      ContentType `gorm:"type:varchar(20);not null;index"`
	Published bool        `gorm:"not null;default:false"`
	SortOrder int         `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Content) TableName() string {
	return "cms_contents"
}

// ContentRepository reads published content
type ContentRepository interface {
	// FindPublishedBySlug returns ErrContentNotFound for drafts
	FindPublishedBySlug(ctx context.Context, slug string) (*Content, error)

	// FindPublishedByType lists published blocks ordered by sort_order then title
	FindPublishedByType(ctx context.Context, contentType ContentType) ([]Content, error)
}
