package v1

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"talent-hub-backend/internal/delivery/http/response"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/workflow"
	"talent-hub-backend/pkg/apperror"
	"talent-hub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CVHandler struct {
	cvUC   domain.TalentCVUsecase
	store  domain.ObjectStore
	upload UploadPolicy
}

func NewCVHandler(protected *gin.RouterGroup, cvUC domain.TalentCVUsecase, store domain.ObjectStore, upload UploadPolicy) {
	handler := &CVHandler{cvUC: cvUC, store: store, upload: upload}

	talents := protected.Group("/talents/:talentId/cvs")
	{
		talents.GET("", handler.List)
		talents.POST("", handler.Create)
		talents.GET("/next-version", handler.NextVersion)
		talents.GET("/version-check", handler.CheckVersion)
	}

	cvs := protected.Group("/cvs")
	{
		cvs.POST("/sweep", handler.Sweep)
		cvs.GET("/:id", handler.Get)
		cvs.PATCH("/:id", handler.UpdateSummary)
		cvs.POST("/:id/activate", handler.Activate)
		cvs.POST("/:id/deactivate", handler.Deactivate)
		cvs.DELETE("/:id", handler.Delete)
	}
}

// CreateCVRequest is the JSON body for registering a CV whose file is already stored.
// Multipart requests send the same fields as form values plus a "file" part.
type CreateCVRequest struct {
	JobRoleLevelID int64  `json:"jobRoleLevelId" form:"jobRoleLevelId" binding:"required,gt=0"`
	Version        int    `json:"version" form:"version" binding:"required,gt=0"`
	CVFileURL      string `json:"cvFileUrl" form:"cvFileUrl"`
	IsActive       bool   `json:"isActive" form:"isActive"`
	Summary        string `json:"summary" form:"summary" binding:"max=4000,no_emoji"`
}

type UpdateSummaryRequest struct {
	Summary string `json:"summary" binding:"max=4000,no_emoji"`
}

type NextVersionResponse struct {
	JobRoleLevelID int64 `json:"jobRoleLevelId"`
	Version        int   `json:"version"`
}

// ListCVs godoc
// @Summary      List a talent's CVs
// @Tags         cvs
// @Produce      json
// @Param        talentId        path   int   true   "Talent ID"
// @Param        jobRoleLevelId  query  int   false  "Filter by job role level"
// @Param        active          query  bool  false  "Filter by active flag"
// @Success      200  {object}  response.Response{data=[]domain.TalentCV}
// @Failure      400  {object}  response.Response
// @Router       /talents/{talentId}/cvs [get]
// @Security     BearerAuth
func (h *CVHandler) List(c *gin.Context) {
	talentID, ok := pathID(c, "talentId")
	if !ok {
		return
	}
	jrlID, ok := queryID(c, "jobRoleLevelId")
	if !ok {
		return
	}
	filter := domain.TalentCVFilter{TalentID: &talentID, JobRoleLevelID: jrlID, ExcludeDeleted: true}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(apperror.BadRequest("Invalid active").WithField("active"))
			return
		}
		filter.IsActive = &active
	}

	cvs, err := h.cvUC.List(requestContext(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CVs retrieved", cvs)
}

// CreateCV godoc
// @Summary      Create a CV version
// @Description  Accepts JSON with cvFileUrl, or multipart/form-data with a "file" part that is stored first.
// @Tags         cvs
// @Accept       json,mpfd
// @Produce      json
// @Param        talentId  path      int              true   "Talent ID"
// @Param        cv        body      CreateCVRequest  false  "CV JSON"
// @Param        file      formData  file             false  "CV document (pdf, docx, txt)"
// @Success      201  {object}  response.Response{data=domain.ActivationResult}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /talents/{talentId}/cvs [post]
// @Security     BearerAuth
func (h *CVHandler) Create(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	talentID, ok := pathID(c, "talentId")
	if !ok {
		return
	}

	var req CreateCVRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	ctx := requestContext(c)
	uploaded := ""
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, ok := readCVUpload(c, h.upload)
		if !ok {
			return
		}
		url, err := h.store.Upload(ctx, workflow.ObjectName(talentID, file.Name), file.ContentType, bytes.NewReader(file.Data), int64(len(file.Data)), nil)
		if err != nil {
			c.Error(apperror.Upstream("Failed to store the CV file, please retry", fmt.Errorf("%w: %w", domain.ErrExternalService, err)))
			return
		}
		uploaded = url
		req.CVFileURL = url
	}
	if req.CVFileURL == "" {
		c.Error(apperror.BadRequest("A CV file or cvFileUrl is required").WithField("file"))
		return
	}

	result, err := h.cvUC.Create(ctx, domain.TalentCVCreate{
		TalentID:       talentID,
		JobRoleLevelID: req.JobRoleLevelID,
		Version:        req.Version,
		CVFileURL:      req.CVFileURL,
		IsActive:       req.IsActive,
		Summary:        req.Summary,
	})
	if err != nil {
		if uploaded != "" {
			h.discard(ctx, uploaded)
		}
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "CV created", result)
}

// discard removes a file stored for a create that did not go through.
func (h *CVHandler) discard(ctx context.Context, url string) {
	if err := h.store.Delete(context.WithoutCancel(ctx), url); err != nil {
		logger.Log.Warn("failed to remove orphaned cv file", "url", url, "error", err)
	}
}

// NextVersion godoc
// @Summary      Suggest the next CV version number
// @Tags         cvs
// @Produce      json
// @Param        talentId        path   int  true  "Talent ID"
// @Param        jobRoleLevelId  query  int  true  "Job role level ID"
// @Success      200  {object}  response.Response{data=NextVersionResponse}
// @Router       /talents/{talentId}/cvs/next-version [get]
// @Security     BearerAuth
func (h *CVHandler) NextVersion(c *gin.Context) {
	talentID, ok := pathID(c, "talentId")
	if !ok {
		return
	}
	jrlID, ok := queryID(c, "jobRoleLevelId")
	if !ok {
		return
	}
	if jrlID == nil {
		c.Error(apperror.BadRequest("jobRoleLevelId is required").WithField("jobRoleLevelId"))
		return
	}
	next, err := h.cvUC.SuggestNextVersion(requestContext(c), talentID, *jrlID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Next version suggested", NextVersionResponse{JobRoleLevelID: *jrlID, Version: next})
}

// CheckVersion godoc
// @Summary      Check that a version number is free
// @Tags         cvs
// @Produce      json
// @Param        talentId        path   int  true  "Talent ID"
// @Param        jobRoleLevelId  query  int  true  "Job role level ID"
// @Param        version         query  int  true  "Candidate version"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /talents/{talentId}/cvs/version-check [get]
// @Security     BearerAuth
func (h *CVHandler) CheckVersion(c *gin.Context) {
	talentID, ok := pathID(c, "talentId")
	if !ok {
		return
	}
	jrlID, ok := queryID(c, "jobRoleLevelId")
	if !ok {
		return
	}
	if jrlID == nil {
		c.Error(apperror.BadRequest("jobRoleLevelId is required").WithField("jobRoleLevelId"))
		return
	}
	version, err := strconv.Atoi(c.Query("version"))
	if err != nil {
		c.Error(apperror.BadRequest("Version must be a number").WithField("version"))
		return
	}
	if err := h.cvUC.ValidateVersion(requestContext(c), version, talentID, *jrlID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Version is available", gin.H{"version": version})
}

// GetCV godoc
// @Summary      Get a CV
// @Tags         cvs
// @Produce      json
// @Param        id   path  int  true  "CV ID"
// @Success      200  {object}  response.Response{data=domain.TalentCV}
// @Failure      404  {object}  response.Response
// @Router       /cvs/{id} [get]
// @Security     BearerAuth
func (h *CVHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cv, err := h.cvUC.Get(requestContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV retrieved", cv)
}

// UpdateCVSummary godoc
// @Summary      Update a CV summary
// @Tags         cvs
// @Accept       json
// @Produce      json
// @Param        id       path  int                   true  "CV ID"
// @Param        summary  body  UpdateSummaryRequest  true  "Summary"
// @Success      200  {object}  response.Response{data=domain.TalentCV}
// @Router       /cvs/{id} [patch]
// @Security     BearerAuth
func (h *CVHandler) UpdateSummary(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err).WithField("summary"))
		return
	}
	cv, err := h.cvUC.UpdateSummary(requestContext(c), id, req.Summary)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV summary updated", cv)
}

// ActivateCV godoc
// @Summary      Activate a CV
// @Description  Deactivates the other active CVs of the same job role level; failures are reported as side effects.
// @Tags         cvs
// @Produce      json
// @Param        id   path  int  true  "CV ID"
// @Success      200  {object}  response.Response{data=domain.ActivationResult}
// @Router       /cvs/{id}/activate [post]
// @Security     BearerAuth
func (h *CVHandler) Activate(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.cvUC.Activate(requestContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV activated", result)
}

// DeactivateCV godoc
// @Summary      Deactivate a CV
// @Tags         cvs
// @Produce      json
// @Param        id   path  int  true  "CV ID"
// @Success      200  {object}  response.Response{data=domain.TalentCV}
// @Failure      409  {object}  response.Response
// @Router       /cvs/{id}/deactivate [post]
// @Security     BearerAuth
func (h *CVHandler) Deactivate(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cv, err := h.cvUC.Deactivate(requestContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV deactivated", cv)
}

// DeleteCV godoc
// @Summary      Delete an inactive CV
// @Tags         cvs
// @Produce      json
// @Param        id   path  int  true  "CV ID"
// @Success      200  {object}  response.Response{data=domain.DeletionResult}
// @Failure      409  {object}  response.Response
// @Router       /cvs/{id} [delete]
// @Security     BearerAuth
func (h *CVHandler) Delete(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.cvUC.Delete(requestContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV deleted", result)
}

// SweepCVs godoc
// @Summary      Repair activation state
// @Description  Keeps one active CV per job role level and activates a CV for talents that have none.
// @Tags         cvs
// @Produce      json
// @Param        talentId  query  int  false  "Limit the sweep to one talent"
// @Success      200  {object}  response.Response{data=domain.SweepReport}
// @Router       /cvs/sweep [post]
// @Security     BearerAuth
func (h *CVHandler) Sweep(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	talentID, ok := queryID(c, "talentId")
	if !ok {
		return
	}
	report, err := h.cvUC.Sweep(requestContext(c), talentID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Sweep completed", report)
}
