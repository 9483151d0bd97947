package v1

import (
	"net/http"

	"go-hiring-workflow/config"
	"go-hiring-workflow/internal/delivery/http/middleware"
	"go-hiring-workflow/internal/delivery/http/response"
	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	PostingUC    domain.PostingUsecase
	ApprovalUC   domain.ApprovalUsecase
	AssessmentUC domain.AssessmentUsecase
	DashboardUC  domain.DashboardUsecase
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	registerValidations()

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.GlobalRateLimitMiddleware())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config))
	{
		NewPostingHandler(protected, deps.PostingUC, deps.ApprovalUC)
		NewAssessmentHandler(protected, deps.AssessmentUC)
	}

	// Dashboard handler registers both the public board and protected views
	NewDashboardHandler(v1, protected, deps.DashboardUC)

	return r
}
