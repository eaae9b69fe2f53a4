package apperror_test

import (
	"errors"
	"net/http"
	"testing"

	"talent-hub-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("version taken")
	err := apperror.Conflict("Version 2 already exists", cause).WithField("version")

	assert.Equal(t, http.StatusConflict, err.Code)
	assert.Equal(t, "version", err.Field)
	assert.True(t, errors.Is(err, cause))

	var appErr *apperror.AppError
	assert.True(t, errors.As(error(err), &appErr))
	assert.Equal(t, "Version 2 already exists", appErr.Error())
}
