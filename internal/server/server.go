package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/droneanalytics/internal/config"
	"anoa.com/droneanalytics/internal/middleware"
	"anoa.com/droneanalytics/pkg/credential"
	"anoa.com/droneanalytics/pkg/ratelimiter"

	healthHttp "anoa.com/droneanalytics/internal/modules/health/delivery/http"
	healthService "anoa.com/droneanalytics/internal/modules/health/service"

	searchService "anoa.com/droneanalytics/internal/modules/search/service"

	uploadHttp "anoa.com/droneanalytics/internal/modules/upload/delivery/http"
	uploadRepo "anoa.com/droneanalytics/internal/modules/upload/repository"
	uploadService "anoa.com/droneanalytics/internal/modules/upload/service"

	userHttp "anoa.com/droneanalytics/internal/modules/user/delivery/http"
	userRepo "anoa.com/droneanalytics/internal/modules/user/repository"
	userService "anoa.com/droneanalytics/internal/modules/user/service"

	violationHttp "anoa.com/droneanalytics/internal/modules/violation/delivery/http"
	violationRepo "anoa.com/droneanalytics/internal/modules/violation/repository"
	violationService "anoa.com/droneanalytics/internal/modules/violation/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

// Deps are the process-level resources the server is built from. RedisClient
// and Search may be nil.
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Search      searchService.MeiliSearchService
	Logger      *logrus.Logger
}

// NewSearch connects to meilisearch when a host is configured and otherwise
// returns an index that reports search as unavailable.
func NewSearch(cfg *config.Config) searchService.MeiliSearchService {
	if cfg.MeiliSearchHost == "" {
		logrus.Info("MEILISEARCH_HOST not set, violation search disabled")
		return searchService.Disabled()
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliSearchService(meiliClient)
}

func NewServer(deps Deps) *Server {
	cfg := deps.Config
	db := deps.DB

	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	search := deps.Search
	if search == nil {
		search = searchService.Disabled()
	}

	credentials := credential.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	users := userRepo.NewUserRepository(db)
	uploads := uploadRepo.NewUploadRepository(db)
	violations := violationRepo.NewViolationRepository(db)
	unitOfWork := uploadRepo.NewUnitOfWork(db)

	authSvc := userService.NewAuthService(users, credentials)
	authHandler := userHttp.NewAuthHandler(authSvc)

	healthSvc := healthService.NewHealthService(users)
	healthHandler := healthHttp.NewHealthHandler(healthSvc)

	var limiterStore redis.Cmdable
	if deps.RedisClient != nil {
		limiterStore = deps.RedisClient
	}
	uploadLimiter := ratelimiter.New(limiterStore, "upload", cfg.UploadRateLimit)
	uploadSvc := uploadService.NewUploadService(unitOfWork, uploads, violations, uploadLimiter, search)
	uploadHandler := uploadHttp.NewUploadHandler(uploadSvc)

	violationSvc := violationService.NewViolationService(violations, search)
	violationHandler := violationHttp.NewViolationHandler(violationSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))

	authMiddleware := middleware.NewAuthMiddleware(users, credentials)

	api := router.Group("/api")

	// Public routes (no auth required)
	api.GET("/health", healthHandler.Health)
	api.GET("/db-test", healthHandler.DBTest)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/upload/json", uploadHandler.UploadJSON)
		protected.GET("/upload", uploadHandler.GetUploads)
		protected.GET("/upload/:id", uploadHandler.GetUpload)

		protected.GET("/violations", violationHandler.GetViolations)
		protected.GET("/violations/stats", violationHandler.GetStats)
		protected.GET("/violations/search", violationHandler.SearchViolations)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/uploads", uploadHandler.GetAllUploads)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: deps.RedisClient,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Close releases the database pool and the redis connection.
func (s *Server) Close() error {
	var errs []error

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	return errors.Join(errs...)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
