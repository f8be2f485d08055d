package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sevenext/backend/internal/domain/cms"
)

// GormContentRepository implements ContentRepository using GORM
type GormContentRepository struct {
	db *gorm.DB
}

// NewGormContentRepository creates a new GormContentRepository
func NewGormContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

// FindPublishedBySlug finds a published content block by slug
func (r *GormContentRepository) FindPublishedBySlug(ctx context.Context, slug string) (*cms.Content, error) {
	var content cms.Content
	err := r.db.WithContext(ctx).
		Where("slug = ? AND published = ?", slug, true).
		First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cms.ErrContentNotFound
		}
		return nil, err
	}
	return &content, nil
}

// FindPublishedByType lists published blocks of one type
func (r *GormContentRepository) FindPublishedByType(ctx context.Context, contentType cms.ContentType) ([]cms.Content, error) {
	var contents []cms.Content
	err := r.db.WithContext(ctx).
		Where("type = ? AND published = ?", contentType, true).
		Order("sort_order ASC").
		Order("title ASC").
		Find(&contents).Error
	return contents, err
}

var _ cms.ContentRepository = (*GormContentRepository)(nil)
