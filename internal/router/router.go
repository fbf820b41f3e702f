package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/auth"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/handlers"
	"github.com/justsurfingit/jobx/internal/middleware"
	"github.com/justsurfingit/jobx/internal/models"
)

// Deps is everything the routes need.
type Deps struct {
	Log         *zap.SugaredLogger
	Tokens      *auth.TokenManager
	Companies   middleware.CompanyResolver
	RateLimiter *middleware.IPRateLimiter
	CORSOrigins []string
	UploadsDir  string
	UploadsPath string

	Jobs          *handlers.JobHandler
	Applications  *handlers.ApplicationHandler
	Auth          *handlers.AuthHandler
	Company       *handlers.CompanyHandler
	Subscriptions *handlers.SubscriptionHandler
	Health        *handlers.HealthHandler
}

// New builds the engine with every route registered.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	SetupRoutes(r, d)
	return r
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, d Deps) {
	dtos.RegisterValidators()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(d.Log))
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	r.Use(middleware.RateLimit(d.RateLimiter))

	if d.UploadsDir != "" {
		r.Static(d.UploadsPath, d.UploadsDir)
	}

	authed := middleware.Authenticate(d.Tokens, d.Log)
	seeker := middleware.RequireRole(models.RoleJobSeeker, d.Log)
	employer := middleware.RequireRole(models.RoleEmployer, d.Log)
	company := middleware.RequireCompany(d.Companies, d.Log)

	api := r.Group("/api")
	{
		api.GET("/health", d.Health.HealthCheck)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", d.Auth.Register)
			authRoutes.POST("/login", d.Auth.Login)
			authRoutes.GET("/me", authed, d.Auth.Me)
		}

		companies := api.Group("/companies", authed, employer)
		{
			companies.POST("", d.Company.Create)
			companies.GET("/mine", d.Company.Mine)
		}

		// Job Routes
		jobs := api.Group("/jobs")
		{
			jobs.GET("", d.Jobs.ListJobs)
			jobs.GET("/:id", d.Jobs.GetJob)
			jobs.GET("/company/mine", authed, employer, company, d.Jobs.ListCompanyJobs)
			jobs.POST("", authed, employer, company, d.Jobs.CreateJob)
			jobs.POST("/extract", authed, employer, d.Jobs.ParseJob)
			jobs.DELETE("/:id", authed, employer, company, d.Jobs.CloseJob)
		}

		apps := api.Group("/applications", authed)
		{
			apps.POST("", seeker, d.Applications.Apply)
			apps.POST("/resume", seeker, d.Applications.UploadResume)
			apps.GET("/my-applications", seeker, d.Applications.ListMine)
			apps.DELETE("/:id", seeker, d.Applications.Withdraw)
			apps.GET("/job/:jobId", employer, company, d.Applications.ListForJob)
			apps.PATCH("/:id/status", employer, company, d.Applications.SetStatus)
			apps.GET("/:id/history", d.Applications.History)
		}

		subs := api.Group("/subscriptions", authed)
		{
			subs.GET("/me", d.Subscriptions.Me)
		}
	}
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.HeaderRequestID}
	config.ExposeHeaders = []string{middleware.HeaderRequestID}
	config.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	config.MaxAge = 12 * time.Hour
	return config
}
