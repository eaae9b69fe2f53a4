package v1

import (
	"net/http"
	"sync"

	"talent-hub-backend/config"
	"talent-hub-backend/internal/delivery/http/middleware"
	"talent-hub-backend/internal/delivery/http/response"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/usecase"
	"talent-hub-backend/internal/workflow"
	"talent-hub-backend/pkg/auth"
	"talent-hub-backend/pkg/security/antivirus"
	"talent-hub-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CVUC      domain.TalentCVUsecase
	CompareUC domain.ComparisonUsecase
	Applier   domain.DecisionApplier
	Catalog   domain.CatalogRepository
	Store     domain.ObjectStore
	Workflow  *workflow.Service
	Registry  *workflow.Registry
	Health    usecase.HealthUsecase
	Config    *config.Config
	// JWKS verifies RS256 tokens from the identity provider when set.
	JWKS *auth.Provider
	// Scanner checks CV uploads; nil skips scanning.
	Scanner antivirus.Scanner
	// Redis backs the API rate limit when set.
	Redis goredis.Scripter
}

var bindingRules sync.Once

// registerBindingRules makes the custom validation tags usable in binding tags.
func registerBindingRules() {
	bindingRules.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.Configure(v)
		}
	})
}

func NewRouter(deps RouterDeps) *gin.Engine {
	registerBindingRules()
	r := gin.New()
	r.MaxMultipartMemory = deps.Config.MaxCVUploadBytes

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, ok := deps.Health.Check(c.Request.Context())
		if !ok {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	upload := UploadPolicy{MaxBytes: deps.Config.MaxCVUploadBytes, Scanner: deps.Scanner}

	protected := v1.Group("")
	protected.Use(middleware.RateLimitMiddleware(middleware.APIRateLimitConfig(deps.Config.RateLimitPerMin, deps.Redis)))
	protected.Use(middleware.AuthMiddleware(deps.Config.JWTSecret, deps.JWKS))
	{
		NewCatalogHandler(protected, deps.Catalog)
		NewCVHandler(protected, deps.CVUC, deps.Store, upload)
		NewComparisonHandler(protected, deps.CompareUC, deps.Applier)
		if deps.Workflow != nil && deps.Registry != nil {
			NewWorkflowHandler(protected, deps.Registry, deps.Workflow, upload)
		}
	}

	return r
}
