package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"talent-hub-backend/internal/domain"
	"talent-hub-backend/pkg/apperror"
	"talent-hub-backend/pkg/logger"
	"talent-hub-backend/pkg/security"
	"talent-hub-backend/pkg/security/antivirus"
	"talent-hub-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// requestContext carries the operator and request id into usecases; audit entries read them.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, domain.KeyUserID, c.GetString(string(domain.KeyUserID)))
	ctx = context.WithValue(ctx, domain.KeyUserRole, c.GetString(string(domain.KeyUserRole)))
	ctx = context.WithValue(ctx, domain.KeyRequestID, c.GetString(string(domain.KeyRequestID)))
	return ctx
}

// bindError turns a binding failure into a 400 naming the first invalid field.
func bindError(err error) *apperror.AppError {
	msgs := validation.FormatValidationErrors(err)
	return apperror.New(http.StatusBadRequest, msgs[0], err).WithField(validation.FirstField(err))
}

func operatorID(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserID))
}

// requireCVManager reports false and records a 403 when the operator may not change CVs.
func requireCVManager(c *gin.Context) bool {
	if domain.CanManageCVs(c.GetString(string(domain.KeyUserRole))) {
		return true
	}
	c.Error(apperror.Forbidden("Only TA and HR may change CVs"))
	return false
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest(fmt.Sprintf("Invalid %s", name)).WithField(name))
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive id query parameter.
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest(fmt.Sprintf("Invalid %s", name)).WithField(name))
		return nil, false
	}
	return &id, true
}

const defaultMaxUpload = 10 << 20

// UploadPolicy bounds and scans CV uploads. Scanner may be nil.
type UploadPolicy struct {
	MaxBytes int64
	Scanner  antivirus.Scanner
}

// readCVUpload reads, validates and scans the multipart "file" field.
func readCVUpload(c *gin.Context, policy UploadPolicy) (*domain.CVFile, bool) {
	maxBytes := policy.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUpload
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("A CV file is required").WithField("file"))
		return nil, false
	}
	if header.Size > maxBytes {
		c.Error(apperror.BadRequest(fmt.Sprintf("File exceeds %d MB", maxBytes>>20)).WithField("file"))
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Failed to read the uploaded file").WithField("file"))
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		c.Error(apperror.BadRequest("Failed to read the uploaded file").WithField("file"))
		return nil, false
	}
	info, err := security.ValidateCVFile(header.Filename, data, maxBytes)
	if err != nil {
		c.Error(apperror.New(http.StatusBadRequest, err.Error(), err).WithField("file"))
		return nil, false
	}
	if verdict, err := antivirus.Check(c.Request.Context(), policy.Scanner, header.Filename, data); err != nil {
		if errors.Is(err, antivirus.ErrInfected) {
			logger.Log.Warn("infected CV upload rejected", "threat", verdict.ThreatName, "operator", operatorID(c))
			c.Error(apperror.BadRequest("The file was rejected by the malware scan").WithField("file"))
			return nil, false
		}
		c.Error(apperror.Upstream("The file could not be scanned, please retry", fmt.Errorf("%w: %w", domain.ErrExternalService, err)))
		return nil, false
	}
	return &domain.CVFile{Name: header.Filename, ContentType: info.ContentType, Data: data}, true
}
