package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talent-hub-backend/config"
	"talent-hub-backend/internal/delivery/http/middleware"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/workflow"
	"talent-hub-backend/pkg/apperror"
	"talent-hub-backend/pkg/security/antivirus"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeCVUsecase struct {
	domain.TalentCVUsecase
	created     []domain.TalentCVCreate
	createErr   error
	nextVersion int
	versionErr  error
}

func (f *fakeCVUsecase) Create(_ context.Context, in domain.TalentCVCreate) (*domain.ActivationResult, error) {
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.ActivationResult{CV: &domain.TalentCV{ID: 7, TalentID: in.TalentID, Version: in.Version, CVFileURL: in.CVFileURL}}, nil
}

func (f *fakeCVUsecase) SuggestNextVersion(_ context.Context, _, _ int64) (int, error) {
	return f.nextVersion, nil
}

func (f *fakeCVUsecase) ValidateVersion(_ context.Context, _ int, _, _ int64) error {
	return f.versionErr
}

type fakeStore struct {
	uploaded []string
	deleted  []string
}

func (s *fakeStore) Upload(_ context.Context, name, _ string, body io.Reader, _ int64, _ domain.ProgressFunc) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	url := "https://files.example.com/" + name
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *fakeStore) Delete(_ context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

type testEnv struct {
	router *gin.Engine
	cvUC   *fakeCVUsecase
	store  *fakeStore
}

type flagScanner struct{}

func (flagScanner) Scan(_ context.Context, _ string, data []byte) (antivirus.Verdict, error) {
	return antivirus.Verdict{Infected: bytes.Contains(data, []byte("EICAR")), ThreatName: "Eicar-Test-Signature"}, nil
}

func (flagScanner) Name() string { return "flag" }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newScannedTestEnv(t, nil)
}

func newScannedTestEnv(t *testing.T, scanner antivirus.Scanner) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:          testSecret,
		FrontendURL:        "http://localhost:3000",
		MaxCVUploadBytes:   1 << 20,
		RateLimitPerMin:    1000,
		WorkflowSessionTTL: time.Hour,
	}
	env := &testEnv{cvUC: &fakeCVUsecase{nextVersion: 3}, store: &fakeStore{}}
	svc := workflow.NewService(workflow.Deps{Store: env.store, CVs: env.cvUC})
	env.router = NewRouter(RouterDeps{
		CVUC:     env.cvUC,
		Store:    env.store,
		Workflow: svc,
		Registry: workflow.NewRegistry(svc, cfg.WorkflowSessionTTL),
		Scanner:  scanner,
		Config:   cfg,
	})
	return env
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (env *testEnv) do(t *testing.T, req *http.Request, bearer string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var body envelope
	if w.Body.Len() > 0 && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func multipartCV(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRouterAuth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Should serve health without a token", func(t *testing.T) {
		w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/health", nil), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, body.Success)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("Should reject protected routes without a token", func(t *testing.T) {
		w, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/talents/1/cvs/next-version?jobRoleLevelId=2", nil), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
			Role:             domain.RoleTA,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		}).SignedString([]byte("other"))
		require.NoError(t, err)

		w, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/talents/1/cvs/next-version?jobRoleLevelId=2", nil), forged)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject an unknown role", func(t *testing.T) {
		w, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/talents/1/cvs/next-version?jobRoleLevelId=2", nil), token(t, "u1", "intern"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCVRoutes(t *testing.T) {
	t.Run("Should suggest the next version", func(t *testing.T) {
		env := newTestEnv(t)
		w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/talents/1/cvs/next-version?jobRoleLevelId=2", nil), token(t, "u1", domain.RoleSales))

		require.Equal(t, http.StatusOK, w.Code)
		var got NextVersionResponse
		require.NoError(t, json.Unmarshal(body.Data, &got))
		assert.Equal(t, NextVersionResponse{JobRoleLevelID: 2, Version: 3}, got)
	})

	t.Run("Should name the field of an invalid path id", func(t *testing.T) {
		env := newTestEnv(t)
		w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/talents/abc/cvs/next-version?jobRoleLevelId=2", nil), token(t, "u1", domain.RoleTA))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"field":"talentId"}`, string(body.Error))
	})

	t.Run("Should surface a version collision as conflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.cvUC.versionErr = apperror.Conflict("Version 2 already exists", domain.ErrVersionCollision).WithField("version")
		w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/talents/1/cvs/version-check?jobRoleLevelId=2&version=2", nil), token(t, "u1", domain.RoleTA))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"field":"version"}`, string(body.Error))
	})

	t.Run("Should forbid sales from creating a CV", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/1/cvs", bytes.NewBufferString(`{"jobRoleLevelId":2,"version":1,"cvFileUrl":"https://x/cv.pdf"}`))
		req.Header.Set("Content-Type", "application/json")
		w, _ := env.do(t, req, token(t, "u1", domain.RoleSales))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, env.cvUC.created)
	})

	t.Run("Should reject a CV summary with emoji at binding", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/1/cvs", bytes.NewBufferString(`{"jobRoleLevelId":2,"version":1,"cvFileUrl":"https://x/cv.pdf","summary":"\ud83d\ude80"}`))
		req.Header.Set("Content-Type", "application/json")
		w, body := env.do(t, req, token(t, "u1", domain.RoleTA))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"field":"summary"}`, string(body.Error))
		assert.Empty(t, env.cvUC.created)
	})

	t.Run("Should create a CV from JSON", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/1/cvs", bytes.NewBufferString(`{"jobRoleLevelId":2,"version":1,"cvFileUrl":"https://x/cv.pdf","isActive":true}`))
		req.Header.Set("Content-Type", "application/json")
		w, _ := env.do(t, req, token(t, "u1", domain.RoleHR))

		require.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, env.cvUC.created, 1)
		assert.Equal(t, domain.TalentCVCreate{TalentID: 1, JobRoleLevelID: 2, Version: 1, CVFileURL: "https://x/cv.pdf", IsActive: true}, env.cvUC.created[0])
	})

	t.Run("Should store an uploaded file and discard it when create fails", func(t *testing.T) {
		env := newTestEnv(t)
		env.cvUC.createErr = apperror.Conflict("Version 1 already exists", domain.ErrVersionCollision)
		buf, contentType := multipartCV(t, map[string]string{"jobRoleLevelId": "2", "version": "1"}, "resume.txt", []byte("Jane Doe\nGo engineer"))
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/1/cvs", buf)
		req.Header.Set("Content-Type", contentType)
		w, _ := env.do(t, req, token(t, "u1", domain.RoleTA))

		assert.Equal(t, http.StatusConflict, w.Code)
		require.Len(t, env.store.uploaded, 1)
		assert.Equal(t, env.store.uploaded, env.store.deleted)
		assert.Equal(t, env.store.uploaded[0], env.cvUC.created[0].CVFileURL)
	})

	t.Run("Should reject a file whose content does not match its extension", func(t *testing.T) {
		env := newTestEnv(t)
		buf, contentType := multipartCV(t, map[string]string{"jobRoleLevelId": "2", "version": "1"}, "resume.pdf", []byte("not a pdf"))
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/1/cvs", buf)
		req.Header.Set("Content-Type", contentType)
		w, body := env.do(t, req, token(t, "u1", domain.RoleTA))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"field":"file"}`, string(body.Error))
		assert.Empty(t, env.store.uploaded)
	})
}

func TestUploadScanning(t *testing.T) {
	env := newScannedTestEnv(t, flagScanner{})

	t.Run("Should reject an infected upload before storing it", func(t *testing.T) {
		buf, contentType := multipartCV(t, map[string]string{"jobRoleLevelId": "2", "version": "1"}, "resume.txt", []byte("EICAR payload"))
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/1/cvs", buf)
		req.Header.Set("Content-Type", contentType)
		w, body := env.do(t, req, token(t, "u1", domain.RoleTA))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"field":"file"}`, string(body.Error))
		assert.Empty(t, env.store.uploaded)
		assert.Empty(t, env.cvUC.created)
	})

	t.Run("Should accept a clean upload", func(t *testing.T) {
		buf, contentType := multipartCV(t, map[string]string{"jobRoleLevelId": "2", "version": "1"}, "resume.txt", []byte("Jane Doe"))
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/1/cvs", buf)
		req.Header.Set("Content-Type", contentType)
		w, _ := env.do(t, req, token(t, "u1", domain.RoleTA))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Len(t, env.store.uploaded, 1)
	})
}

func TestWorkflowRoutes(t *testing.T) {
	start := func(t *testing.T, env *testEnv, bearer string) workflow.Snapshot {
		t.Helper()
		buf, contentType := multipartCV(t, nil, "resume.txt", []byte("Jane Doe\nGo engineer"))
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/4/cv-workflows", buf)
		req.Header.Set("Content-Type", contentType)
		w, body := env.do(t, req, bearer)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var snap workflow.Snapshot
		require.NoError(t, json.Unmarshal(body.Data, &snap))
		return snap
	}

	t.Run("Should start a workflow with the file selected", func(t *testing.T) {
		env := newTestEnv(t)
		snap := start(t, env, token(t, "u1", domain.RoleTA))

		assert.Equal(t, workflow.StateFileSelected, snap.State)
		assert.Equal(t, int64(4), snap.TalentID)
		assert.Equal(t, "resume.txt", snap.FileName)
	})

	t.Run("Should hide a workflow from other operators", func(t *testing.T) {
		env := newTestEnv(t)
		snap := start(t, env, token(t, "u1", domain.RoleTA))

		w, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/cv-workflows/"+snap.ID, nil), token(t, "u2", domain.RoleTA))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Should serve the previewed file only for the live reference", func(t *testing.T) {
		env := newTestEnv(t)
		bearer := token(t, "u1", domain.RoleHR)
		snap := start(t, env, bearer)

		w, body := env.do(t, httptest.NewRequest(http.MethodPost, "/v1/cv-workflows/"+snap.ID+"/preview", nil), bearer)
		require.Equal(t, http.StatusOK, w.Code)
		var previewed workflow.Snapshot
		require.NoError(t, json.Unmarshal(body.Data, &previewed))
		require.NotEmpty(t, previewed.PreviewRef)

		w, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/cv-workflows/"+snap.ID+"/preview?ref="+previewed.PreviewRef, nil), bearer)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Jane Doe\nGo engineer", w.Body.String())

		w, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/cv-workflows/"+snap.ID+"/preview?ref=stale", nil), bearer)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Should require confirmation before analysis", func(t *testing.T) {
		env := newTestEnv(t)
		bearer := token(t, "u1", domain.RoleTA)
		snap := start(t, env, bearer)
		w, _ := env.do(t, httptest.NewRequest(http.MethodPost, "/v1/cv-workflows/"+snap.ID+"/preview", nil), bearer)
		require.Equal(t, http.StatusOK, w.Code)

		req := httptest.NewRequest(http.MethodPost, "/v1/cv-workflows/"+snap.ID+"/analyze", bytes.NewBufferString(`{"confirmed":false}`))
		req.Header.Set("Content-Type", "application/json")
		w, body := env.do(t, req, bearer)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"field":"confirmed"}`, string(body.Error))
		assert.Empty(t, env.store.uploaded)
	})

	t.Run("Should forbid sales from starting a workflow", func(t *testing.T) {
		env := newTestEnv(t)
		buf, contentType := multipartCV(t, nil, "resume.txt", []byte("Jane"))
		req := httptest.NewRequest(http.MethodPost, "/v1/talents/4/cv-workflows", buf)
		req.Header.Set("Content-Type", contentType)
		w, _ := env.do(t, req, token(t, "u1", domain.RoleSales))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should reject a form summary with emoji at binding", func(t *testing.T) {
		env := newTestEnv(t)
		bearer := token(t, "u1", domain.RoleTA)
		snap := start(t, env, bearer)

		req := httptest.NewRequest(http.MethodPost, "/v1/cv-workflows/"+snap.ID+"/submit", bytes.NewBufferString(`{"jobRoleLevelId":2,"version":1,"summary":"Go expert \ud83d\ude80"}`))
		req.Header.Set("Content-Type", "application/json")
		w, body := env.do(t, req, bearer)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Summary must not contain emoji or special symbols", body.Message)
		assert.JSONEq(t, `{"field":"summary"}`, string(body.Error))
	})

	t.Run("Should cancel a workflow", func(t *testing.T) {
		env := newTestEnv(t)
		bearer := token(t, "u1", domain.RoleTA)
		snap := start(t, env, bearer)

		w, body := env.do(t, httptest.NewRequest(http.MethodPost, "/v1/cv-workflows/"+snap.ID+"/cancel", nil), bearer)
		require.Equal(t, http.StatusOK, w.Code)
		var cancelled workflow.Snapshot
		require.NoError(t, json.Unmarshal(body.Data, &cancelled))
		assert.Equal(t, workflow.StateIdle, cancelled.State)
	})
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	env := newTestEnv(t)
	env.cvUC.versionErr = errors.New("pq: connection reset")
	w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/talents/1/cvs/version-check?jobRoleLevelId=2&version=2", nil), token(t, "u1", domain.RoleTA))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body.Message, "pq")
}
