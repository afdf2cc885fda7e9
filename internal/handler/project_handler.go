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

// ProjectHandler exposes portfolio project endpoints.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler constructs ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param search query string false "Search by title"
// @Param serviceId query string false "Filter by service"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	filter := h.filterFrom(c)
	projects, pagination, err := h.projects.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, projects, pagination)
}

// ListPublic godoc
// @Summary List published projects for the public site
// @Tags Projects
// @Produce json
// @Param search query string false "Search by title"
// @Param serviceId query string false "Filter by service"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListBody
// @Router /public/projects [get]
func (h *ProjectHandler) ListPublic(c *gin.Context) {
	filter := h.filterFrom(c)
	active := true
	filter.Active = &active
	projects, pagination, err := h.projects.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, projects, pagination)
}

// Get godoc
// @Summary Get project detail
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} response.ErrorBody
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project)
}

// GetBySlug godoc
// @Summary Get project by slug
// @Tags Projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} models.Project
// @Failure 404 {object} response.ErrorBody
// @Router /public/projects/{slug} [get]
func (h *ProjectHandler) GetBySlug(c *gin.Context) {
	project, err := h.projects.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !project.IsActive {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "project not found"))
		return
	}
	response.JSON(c, http.StatusOK, project)
}

// Create godoc
// @Summary Create project
// @Tags Projects
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateProjectRequest true "Project payload"
// @Success 201 {object} models.Project
// @Failure 400 {object} response.ErrorBody
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	project, err := h.projects.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body service.UpdateProjectRequest true "Project payload"
// @Success 200 {object} models.Project
// @Failure 404 {object} response.ErrorBody
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project)
}

// ToggleActive godoc
// @Summary Toggle project visibility
// @Tags Projects
// @Security BearerAuth
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} response.ErrorBody
// @Router /projects/{id}/toggle [patch]
func (h *ProjectHandler) ToggleActive(c *gin.Context) {
	project, err := h.projects.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Tags Projects
// @Security BearerAuth
// @Produce json
// @Param id path string true "Project ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ProjectHandler) filterFrom(c *gin.Context) models.ProjectFilter {
	var filter models.ProjectFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.ServiceID = optionalQuery(c, "serviceId")
	filter.Active = boolQuery(c, "active")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}
