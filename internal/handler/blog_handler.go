package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yildiz-insaat/cms-api/internal/middleware"
	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/service"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/response"
)

// BlogHandler exposes blog post endpoints.
type BlogHandler struct {
	blogs *service.BlogService
}

// NewBlogHandler constructs BlogHandler.
func NewBlogHandler(blogs *service.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// List godoc
// @Summary List blog posts
// @Tags Blog
// @Security BearerAuth
// @Produce json
// @Param search query string false "Search by title"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /blog [get]
func (h *BlogHandler) List(c *gin.Context) {
	filter := h.filterFrom(c)
	posts, pagination, err := h.blogs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, posts, pagination)
}

// ListPublic godoc
// @Summary List published blog posts for the public site
// @Tags Blog
// @Produce json
// @Param search query string false "Search by title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /public/blog [get]
func (h *BlogHandler) ListPublic(c *gin.Context) {
	filter := h.filterFrom(c)
	active := true
	filter.Active = &active
	filter.PublishedOnly = true
	posts, pagination, err := h.blogs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, posts, pagination)
}

// Get godoc
// @Summary Get blog post detail
// @Tags Blog
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} response.ErrorBody
// @Router /blog/{id} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blogs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post)
}

// GetBySlug godoc
// @Summary Get a published blog post by slug
// @Tags Blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} response.ErrorBody
// @Router /public/blog/{slug} [get]
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	post, err := h.blogs.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !post.IsActive || post.PublishedAt == nil || post.PublishedAt.After(time.Now()) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "blog post not found"))
		return
	}
	response.JSON(c, http.StatusOK, post)
}

// Create godoc
// @Summary Create blog post
// @Tags Blog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateBlogPostRequest true "Post payload"
// @Success 201 {object} models.BlogPost
// @Failure 400 {object} response.ErrorBody
// @Router /blog [post]
func (h *BlogHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	post, err := h.blogs.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Update godoc
// @Summary Update blog post
// @Tags Blog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body service.UpdateBlogPostRequest true "Post payload"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} response.ErrorBody
// @Router /blog/{id} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	var req service.UpdateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	post, err := h.blogs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post)
}

// ToggleActive godoc
// @Summary Toggle blog post visibility
// @Tags Blog
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} response.ErrorBody
// @Router /blog/{id}/toggle [patch]
func (h *BlogHandler) ToggleActive(c *gin.Context) {
	post, err := h.blogs.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post)
}

// Delete godoc
// @Summary Delete blog post
// @Tags Blog
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /blog/{id} [delete]
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *BlogHandler) filterFrom(c *gin.Context) models.BlogFilter {
	var filter models.BlogFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = boolQuery(c, "active")
	filter.AuthorID = optionalQuery(c, "authorId")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}
