package v1

import (
	"net/http"

	"talent-hub-backend/internal/delivery/http/response"
	"talent-hub-backend/internal/workflow"
	"talent-hub-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct {
	registry *workflow.Registry
	svc      *workflow.Service
	upload   UploadPolicy
}

func NewWorkflowHandler(protected *gin.RouterGroup, registry *workflow.Registry, svc *workflow.Service, upload UploadPolicy) {
	handler := &WorkflowHandler{registry: registry, svc: svc, upload: upload}

	protected.POST("/talents/:talentId/cv-workflows", handler.Start)

	flows := protected.Group("/cv-workflows/:id")
	{
		flows.GET("", handler.Get)
		flows.PUT("/file", handler.SelectFile)
		flows.POST("/preview", handler.Preview)
		flows.GET("/preview", handler.PreviewFile)
		flows.POST("/analyze", handler.Analyze)
		flows.GET("/report", handler.Report)
		flows.POST("/confirm", handler.Confirm)
		flows.POST("/proceed", handler.Proceed)
		flows.GET("/form", handler.Form)
		flows.POST("/submit", handler.Submit)
		flows.POST("/cancel", handler.Cancel)
		flows.POST("/reset", handler.Reset)
	}
}

type AnalyzeRequest struct {
	// Confirmed must be true: analysis calls a billed external service.
	Confirmed bool `json:"confirmed"`
}

// session resolves the caller's workflow. Only CV managers drive workflows.
func (h *WorkflowHandler) session(c *gin.Context) (*workflow.Session, bool) {
	if !requireCVManager(c) {
		return nil, false
	}
	sess, err := h.registry.Get(requestContext(c), c.Param("id"), operatorID(c))
	if err != nil {
		c.Error(err)
		return nil, false
	}
	return sess, true
}

func (h *WorkflowHandler) respond(c *gin.Context, message string, snap workflow.Snapshot, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, message, snap)
}

// StartWorkflow godoc
// @Summary      Start a CV workflow with a selected file
// @Tags         cv-workflows
// @Accept       mpfd
// @Produce      json
// @Param        talentId  path      int   true  "Talent ID"
// @Param        file      formData  file  true  "CV document (pdf, docx, txt)"
// @Success      201  {object}  response.Response{data=workflow.Snapshot}
// @Failure      400  {object}  response.Response
// @Router       /talents/{talentId}/cv-workflows [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Start(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	talentID, ok := pathID(c, "talentId")
	if !ok {
		return
	}
	file, ok := readCVUpload(c, h.upload)
	if !ok {
		return
	}
	ctx := requestContext(c)
	sess := h.registry.Create(ctx, talentID, operatorID(c))
	snap, err := h.svc.SelectFile(ctx, sess, *file)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "CV workflow started", snap)
}

// GetWorkflow godoc
// @Summary      Get a CV workflow
// @Tags         cv-workflows
// @Produce      json
// @Param        id   path  string  true  "Workflow ID"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Failure      404  {object}  response.Response
// @Router       /cv-workflows/{id} [get]
// @Security     BearerAuth
func (h *WorkflowHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "CV workflow retrieved", sess.Snapshot())
}

// SelectWorkflowFile godoc
// @Summary      Replace the selected file
// @Tags         cv-workflows
// @Accept       mpfd
// @Produce      json
// @Param        id    path      string  true  "Workflow ID"
// @Param        file  formData  file    true  "CV document (pdf, docx, txt)"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Failure      409  {object}  response.Response
// @Router       /cv-workflows/{id}/file [put]
// @Security     BearerAuth
func (h *WorkflowHandler) SelectFile(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	file, ok := readCVUpload(c, h.upload)
	if !ok {
		return
	}
	snap, err := h.svc.SelectFile(requestContext(c), sess, *file)
	h.respond(c, "CV file selected", snap, err)
}

// PreviewWorkflow godoc
// @Summary      Open a preview of the selected file
// @Tags         cv-workflows
// @Produce      json
// @Param        id   path  string  true  "Workflow ID"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Router       /cv-workflows/{id}/preview [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Preview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := h.svc.Preview(requestContext(c), sess)
	h.respond(c, "Preview ready", snap, err)
}

// PreviewWorkflowFile godoc
// @Summary      Download the previewed file
// @Tags         cv-workflows
// @Produce      octet-stream
// @Param        id   path   string  true  "Workflow ID"
// @Param        ref  query  string  true  "Preview reference"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /cv-workflows/{id}/preview [get]
// @Security     BearerAuth
func (h *WorkflowHandler) PreviewFile(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	file, err := h.svc.PreviewFile(sess, c.Query("ref"))
	if err != nil {
		c.Error(err)
		return
	}
	response.File(c, file.ContentType, file.Name, true, file.Data)
}

// AnalyzeWorkflow godoc
// @Summary      Analyze the selected CV
// @Description  Uploads the file, extracts it and compares it with the profile. Requires {"confirmed": true}.
// @Tags         cv-workflows
// @Accept       json
// @Produce      json
// @Param        id       path  string          true  "Workflow ID"
// @Param        confirm  body  AnalyzeRequest  true  "Confirmation"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Failure      400  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /cv-workflows/{id}/analyze [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Analyze(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()).WithField("confirmed"))
		return
	}
	snap, err := h.svc.Analyze(requestContext(c), sess, req.Confirmed)
	h.respond(c, "CV analyzed", snap, err)
}

// WorkflowReport godoc
// @Summary      Get the comparison of an analyzed workflow
// @Tags         cv-workflows
// @Produce      json
// @Param        id      path   string  true   "Workflow ID"
// @Param        format  query  string  false  "json (default) or xlsx"
// @Success      200  {object}  response.Response{data=domain.ComparisonResult}
// @Failure      404  {object}  response.Response
// @Router       /cv-workflows/{id}/report [get]
// @Security     BearerAuth
func (h *WorkflowHandler) Report(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	result, err := h.svc.Report(sess)
	if err != nil {
		c.Error(err)
		return
	}
	if c.Query("format") == "xlsx" {
		writeWorkbook(c, result)
		return
	}
	response.Success(c, http.StatusOK, "Comparison retrieved", result)
}

// ConfirmWorkflow godoc
// @Summary      Apply the reviewer's decisions
// @Tags         cv-workflows
// @Accept       json
// @Produce      json
// @Param        id         path  string                      true  "Workflow ID"
// @Param        decisions  body  domain.ApplyCVUpdatesRequest  true  "Decisions"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Failure      409  {object}  response.Response
// @Router       /cv-workflows/{id}/confirm [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Confirm(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	req, ok := bindDecisions(c)
	if !ok {
		return
	}
	snap, err := h.svc.Confirm(requestContext(c), sess, req)
	h.respond(c, "Decisions applied", snap, err)
}

// ProceedWorkflow godoc
// @Summary      Continue to the CV form without applying changes
// @Tags         cv-workflows
// @Produce      json
// @Param        id   path  string  true  "Workflow ID"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Router       /cv-workflows/{id}/proceed [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Proceed(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := h.svc.Proceed(requestContext(c), sess)
	h.respond(c, "Comparison accepted", snap, err)
}

// WorkflowForm godoc
// @Summary      Get the CV form with a suggested version
// @Tags         cv-workflows
// @Produce      json
// @Param        id              path   string  true   "Workflow ID"
// @Param        jobRoleLevelId  query  int     false  "Job role level for the version suggestion"
// @Success      200  {object}  response.Response{data=workflow.FormView}
// @Failure      409  {object}  response.Response
// @Router       /cv-workflows/{id}/form [get]
// @Security     BearerAuth
func (h *WorkflowHandler) Form(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	jrlID, ok := queryID(c, "jobRoleLevelId")
	if !ok {
		return
	}
	view, err := h.svc.Form(requestContext(c), sess, jrlID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV form ready", view)
}

// SubmitWorkflow godoc
// @Summary      Create the CV from the analyzed file
// @Tags         cv-workflows
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Workflow ID"
// @Param        form  body  workflow.SubmitForm  true  "CV form"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /cv-workflows/{id}/submit [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var form workflow.SubmitForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(bindError(err))
		return
	}
	snap, err := h.svc.Submit(requestContext(c), sess, form)
	h.respond(c, "CV created", snap, err)
}

// CancelWorkflow godoc
// @Summary      Cancel the workflow and release its file
// @Tags         cv-workflows
// @Produce      json
// @Param        id   path  string  true  "Workflow ID"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Router       /cv-workflows/{id}/cancel [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Cancel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := h.svc.Cancel(requestContext(c), sess)
	h.respond(c, "CV workflow cancelled", snap, err)
}

// ResetWorkflow godoc
// @Summary      Start over after a finished workflow
// @Tags         cv-workflows
// @Produce      json
// @Param        id   path  string  true  "Workflow ID"
// @Success      200  {object}  response.Response{data=workflow.Snapshot}
// @Router       /cv-workflows/{id}/reset [post]
// @Security     BearerAuth
func (h *WorkflowHandler) Reset(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := h.svc.Reset(requestContext(c), sess)
	h.respond(c, "CV workflow reset", snap, err)
}
