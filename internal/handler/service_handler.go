package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/service"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/response"
)

// ServiceHandler exposes company service catalog endpoints.
type ServiceHandler struct {
	catalog *service.CatalogService
}

// NewServiceHandler constructs ServiceHandler.
func NewServiceHandler(catalog *service.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// List godoc
// @Summary List services
// @Tags Services
// @Produce json
// @Param search query string false "Search by title"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	filter := h.filterFrom(c)
	services, pagination, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, services, pagination)
}

// ListPublic godoc
// @Summary List published services for the public site
// @Tags Services
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /public/services [get]
func (h *ServiceHandler) ListPublic(c *gin.Context) {
	filter := h.filterFrom(c)
	active := true
	filter.Active = &active
	services, pagination, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, services, pagination)
}

// Get godoc
// @Summary Get service detail
// @Tags Services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} models.Service
// @Failure 404 {object} response.ErrorBody
// @Router /services/{id} [get]
func (h *ServiceHandler) Get(c *gin.Context) {
	svc, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc)
}

// GetBySlug godoc
// @Summary Get service by slug
// @Tags Services
// @Produce json
// @Param slug path string true "Service slug"
// @Success 200 {object} models.Service
// @Failure 404 {object} response.ErrorBody
// @Router /public/services/{slug} [get]
func (h *ServiceHandler) GetBySlug(c *gin.Context) {
	svc, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !svc.IsActive {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "service not found"))
		return
	}
	response.JSON(c, http.StatusOK, svc)
}

// Create godoc
// @Summary Create service
// @Tags Services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateServiceRequest true "Service payload"
// @Success 201 {object} models.Service
// @Failure 400 {object} response.ErrorBody
// @Router /services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	var req service.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	svc, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, svc)
}

// Update godoc
// @Summary Update service
// @Tags Services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param payload body service.UpdateServiceRequest true "Service payload"
// @Success 200 {object} models.Service
// @Failure 404 {object} response.ErrorBody
// @Router /services/{id} [put]
func (h *ServiceHandler) Update(c *gin.Context) {
	var req service.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	svc, err := h.catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc)
}

// ToggleActive godoc
// @Summary Toggle service visibility
// @Tags Services
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} models.Service
// @Failure 404 {object} response.ErrorBody
// @Router /services/{id}/toggle [patch]
func (h *ServiceHandler) ToggleActive(c *gin.Context) {
	svc, err := h.catalog.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc)
}

// Delete godoc
// @Summary Delete service
// @Tags Services
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /services/{id} [delete]
func (h *ServiceHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ServiceHandler) filterFrom(c *gin.Context) models.ServiceFilter {
	var filter models.ServiceFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = boolQuery(c, "active")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}
