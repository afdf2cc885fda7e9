package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yildiz-insaat/cms-api/internal/middleware"
	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/service"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/response"
)

// MediaHandler exposes the media library endpoints.
type MediaHandler struct {
	media *service.MediaService
}

// NewMediaHandler constructs MediaHandler.
func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload godoc
// @Summary Upload a file to the media library
// @Tags Media
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} models.Media
// @Failure 400 {object} response.ErrorBody
// @Router /media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.FromError(err))
		return
	}
	defer file.Close()

	uploaderID := ""
	if user, ok := middleware.CurrentUser(c); ok {
		uploaderID = user.ID
	}

	media, err := h.media.Upload(c.Request.Context(), uploaderID, service.UploadInput{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		SizeBytes:    header.Size,
		Content:      file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, media)
}

// List godoc
// @Summary List media library entries
// @Tags Media
// @Security BearerAuth
// @Produce json
// @Param type query string false "MIME prefix filter, e.g. image/"
// @Param search query string false "Search by file name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /media [get]
func (h *MediaHandler) List(c *gin.Context) {
	var filter models.MediaFilter
	filter.MimePrefix = strings.TrimSpace(c.Query("type"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageQuery(c)

	files, pagination, err := h.media.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, files, pagination)
}

// Get godoc
// @Summary Get a media library entry
// @Tags Media
// @Security BearerAuth
// @Produce json
// @Param id path string true "Media ID"
// @Success 200 {object} models.Media
// @Failure 404 {object} response.ErrorBody
// @Router /media/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	media, err := h.media.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, media)
}

// Delete godoc
// @Summary Delete a media library entry and its file
// @Tags Media
// @Security BearerAuth
// @Produce json
// @Param id path string true "Media ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /media/{id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.media.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
