package v1

import (
	"net/http"

	"talent-hub-backend/internal/delivery/http/response"
	"talent-hub-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog domain.CatalogRepository
}

func NewCatalogHandler(protected *gin.RouterGroup, catalog domain.CatalogRepository) {
	handler := &CatalogHandler{catalog: catalog}

	group := protected.Group("/catalog")
	{
		group.GET("/skills", handler.Skills)
		group.GET("/job-role-levels", handler.JobRoleLevels)
		group.GET("/certificate-types", handler.CertificateTypes)
	}
}

// JobRoleLevelView adds the display name used by pickers.
type JobRoleLevelView struct {
	domain.JobRoleLevel
	DisplayName string `json:"displayName"`
}

// ListSkills godoc
// @Summary      List catalog skills
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Skill}
// @Router       /catalog/skills [get]
// @Security     BearerAuth
func (h *CatalogHandler) Skills(c *gin.Context) {
	skills, err := h.catalog.ListSkills(requestContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skills retrieved", skills)
}

// ListJobRoleLevels godoc
// @Summary      List catalog job role levels
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]JobRoleLevelView}
// @Router       /catalog/job-role-levels [get]
// @Security     BearerAuth
func (h *CatalogHandler) JobRoleLevels(c *gin.Context) {
	levels, err := h.catalog.ListJobRoleLevels(requestContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	views := make([]JobRoleLevelView, 0, len(levels))
	for _, l := range levels {
		views = append(views, JobRoleLevelView{JobRoleLevel: l, DisplayName: l.DisplayName()})
	}
	response.Success(c, http.StatusOK, "Job role levels retrieved", views)
}

// ListCertificateTypes godoc
// @Summary      List catalog certificate types
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CertificateType}
// @Router       /catalog/certificate-types [get]
// @Security     BearerAuth
func (h *CatalogHandler) CertificateTypes(c *gin.Context) {
	types, err := h.catalog.ListCertificateTypes(requestContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Certificate types retrieved", types)
}
