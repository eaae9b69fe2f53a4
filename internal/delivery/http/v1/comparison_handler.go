package v1

import (
	"errors"
	"fmt"
	"net/http"

	"talent-hub-backend/internal/delivery/http/response"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/report"
	"talent-hub-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ComparisonHandler struct {
	compareUC domain.ComparisonUsecase
	applier   domain.DecisionApplier
}

func NewComparisonHandler(protected *gin.RouterGroup, compareUC domain.ComparisonUsecase, applier domain.DecisionApplier) {
	handler := &ComparisonHandler{compareUC: compareUC, applier: applier}

	talents := protected.Group("/talents/:talentId")
	{
		talents.POST("/cv-comparisons", handler.Compare)
		talents.POST("/cv-updates", handler.Apply)
	}
}

// CompareCV godoc
// @Summary      Compare a CV extraction with the talent profile
// @Description  Read-only. Add ?format=xlsx to download the comparison as a workbook.
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        talentId    path   int                  true   "Talent ID"
// @Param        format      query  string               false  "json (default) or xlsx"
// @Param        extraction  body   domain.CVExtraction  true   "Extraction"
// @Success      200  {object}  response.Response{data=domain.ComparisonResult}
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /talents/{talentId}/cv-comparisons [post]
// @Security     BearerAuth
func (h *ComparisonHandler) Compare(c *gin.Context) {
	talentID, ok := pathID(c, "talentId")
	if !ok {
		return
	}
	var extraction domain.CVExtraction
	if err := c.ShouldBindJSON(&extraction); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	result, err := h.compareUC.Compare(requestContext(c), talentID, &extraction)
	if err != nil {
		c.Error(err)
		return
	}
	if c.Query("format") == "xlsx" {
		writeWorkbook(c, result)
		return
	}
	response.Success(c, http.StatusOK, "Comparison completed", result)
}

func writeWorkbook(c *gin.Context, result *domain.ComparisonResult) {
	data, err := report.ComparisonWorkbook(result)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.File(c, xlsxContentType, fmt.Sprintf("cv-comparison-talent-%d.xlsx", result.TalentID), false, data)
}

// ApplyCVUpdates godoc
// @Summary      Apply reviewer decisions to the talent profile
// @Description  Items are applied independently; failures are listed per item. Re-applying the same decisions is a no-op.
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        talentId   path  int                         true  "Talent ID"
// @Param        decisions  body  domain.ApplyCVUpdatesInput  true  "Decisions"
// @Success      200  {object}  response.Response{data=domain.ApplyCVUpdatesResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /talents/{talentId}/cv-updates [post]
// @Security     BearerAuth
func (h *ComparisonHandler) Apply(c *gin.Context) {
	if !requireCVManager(c) {
		return
	}
	talentID, ok := pathID(c, "talentId")
	if !ok {
		return
	}
	req, ok := bindDecisions(c)
	if !ok {
		return
	}
	result, err := h.applier.Apply(requestContext(c), talentID, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV updates applied", result)
}

// bindDecisions decodes the wire decisions into their typed form.
func bindDecisions(c *gin.Context) (domain.ApplyCVUpdatesRequest, bool) {
	var in domain.ApplyCVUpdatesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return domain.ApplyCVUpdatesRequest{}, false
	}
	req, err := in.Decode()
	if err != nil {
		var de *domain.DecisionError
		if errors.As(err, &de) {
			c.Error(apperror.New(http.StatusBadRequest, de.Reason, err).WithField(de.Path))
		} else {
			c.Error(apperror.BadRequest(err.Error()))
		}
		return domain.ApplyCVUpdatesRequest{}, false
	}
	return req, true
}
