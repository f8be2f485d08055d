package handler

import (
	"github.com/gin-gonic/gin"

	appcms "github.com/sevenext/backend/internal/application/cms"
)

// ContentHandler serves published storefront content
type ContentHandler struct {
	BaseHandler
	contentService *appcms.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentService *appcms.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// GetPage godoc
// @Summary      Get a content page
// @Tags         cms
// @Produce      json
// @Param        slug path string true "Page slug"
// @Success      200 {object} APIResponse[appcms.ContentResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /cms/pages/{slug} [get]
func (h *ContentHandler) GetPage(c *gin.Context) {
	page, err := h.contentService.GetPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// List godoc
// @Summary      List content
// @Description  Published content of one type in display order
// @Tags         cms
// @Produce      json
// @Param        type query string true "banner, page or faq"
// @Success      200 {object} APIResponse[[]appcms.ContentResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /cms/contents [get]
func (h *ContentHandler) List(c *gin.Context) {
	contents, err := h.contentService.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contents)
}
