package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/service"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/response"
)

// ContactHandler exposes the public contact form plus the admin inbox.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit godoc
// @Summary Submit a contact form message
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body service.SubmitContactRequest true "Message payload"
// @Success 201 {object} models.ContactMessage
// @Failure 400 {object} response.ErrorBody
// @Failure 429 {object} response.ErrorBody
// @Router /public/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	msg, err := h.contacts.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// List godoc
// @Summary List contact messages
// @Tags Contact
// @Security BearerAuth
// @Produce json
// @Param read query bool false "Filter by read state"
// @Param search query string false "Search by name, email or subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	var filter models.ContactFilter
	filter.Read = boolQuery(c, "read")
	filter.Search = c.Query("search")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortOrder = c.Query("order")

	messages, pagination, err := h.contacts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, messages, pagination)
}

// Get godoc
// @Summary Get a contact message (marks it read)
// @Tags Contact
// @Security BearerAuth
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} models.ContactMessage
// @Failure 404 {object} response.ErrorBody
// @Router /contact/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	msg, err := h.contacts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msg)
}

// MarkRead godoc
// @Summary Mark a contact message read or unread
// @Tags Contact
// @Security BearerAuth
// @Produce json
// @Param id path string true "Message ID"
// @Param read query bool false "Read state, defaults to true"
// @Success 200 {object} models.ContactMessage
// @Failure 404 {object} response.ErrorBody
// @Router /contact/{id}/read [patch]
func (h *ContactHandler) MarkRead(c *gin.Context) {
	read := true
	if v := boolQuery(c, "read"); v != nil {
		read = *v
	}
	msg, err := h.contacts.MarkRead(c.Request.Context(), c.Param("id"), read)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msg)
}

// Delete godoc
// @Summary Delete a contact message
// @Tags Contact
// @Security BearerAuth
// @Produce json
// @Param id path string true "Message ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /contact/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export contact messages as CSV or PDF
// @Tags Contact
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf, defaults to csv"
// @Success 200 {file} file
// @Router /contact/export [get]
func (h *ContactHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	content, contentType, err := h.contacts.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	filename := fmt.Sprintf("contact-messages-%s.%s", time.Now().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, content)
}
