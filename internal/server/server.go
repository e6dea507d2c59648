package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/bloodlink/internal/config"
	"anoa.com/bloodlink/internal/entity"
	"anoa.com/bloodlink/internal/middleware"
	"anoa.com/bloodlink/internal/scheduler"
	"anoa.com/bloodlink/pkg/logger"
	"anoa.com/bloodlink/pkg/metrics"
	"anoa.com/bloodlink/pkg/validator"

	alertHttp "anoa.com/bloodlink/internal/modules/alert/delivery/http"
	alertRepo "anoa.com/bloodlink/internal/modules/alert/repository"
	alertService "anoa.com/bloodlink/internal/modules/alert/service"

	pledgeHttp "anoa.com/bloodlink/internal/modules/pledge/delivery/http"
	pledgeRepo "anoa.com/bloodlink/internal/modules/pledge/repository"
	pledgeService "anoa.com/bloodlink/internal/modules/pledge/service"

	profileHttp "anoa.com/bloodlink/internal/modules/profile/delivery/http"
	profileService "anoa.com/bloodlink/internal/modules/profile/service"

	requestHttp "anoa.com/bloodlink/internal/modules/request/delivery/http"
	requestRepo "anoa.com/bloodlink/internal/modules/request/repository"
	requestService "anoa.com/bloodlink/internal/modules/request/service"

	userHttp "anoa.com/bloodlink/internal/modules/user/delivery/http"
	userRepo "anoa.com/bloodlink/internal/modules/user/repository"
	userService "anoa.com/bloodlink/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	validator.RegisterCustomTags()

	userRepository := userRepo.NewUserRepository(db)
	tokenRepository := userRepo.NewTokenRepository(redisClient)

	authSvc := userService.NewAuthService(userRepository, tokenRepository, redisClient, userService.Config{
		Secret:           cfg.JWTSecret,
		TokenTTL:         cfg.JWTTTL,
		LoginMaxAttempts: cfg.LoginMaxAttempts,
		LoginLockout:     cfg.LoginLockout,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileSvc := profileService.NewProfileService(userRepository)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	requestRepository := requestRepo.NewRequestRepository(db)
	requestSvc := requestService.NewRequestService(requestRepository, userRepository, redisClient, cfg.RateLimitRequest)
	requestHandler := requestHttp.NewRequestHandler(requestSvc)

	alertRepository := alertRepo.NewAlertRepository(db)
	alertSvc := alertService.NewAlertService(alertRepository, requestRepository, userRepository)
	alertHandler := alertHttp.NewAlertHandler(alertSvc)

	pledgeRepository := pledgeRepo.NewPledgeRepository(db)
	pledgeSvc := pledgeService.NewPledgeService(pledgeRepository, alertRepository, userRepository, redisClient, cfg.RateLimitPledge)
	pledgeHandler := pledgeHttp.NewPledgeHandler(pledgeSvc)

	jobs := scheduler.NewScheduler()
	if err := jobs.RegisterJob(scheduler.NewCounterReconcileJob(pledgeSvc, cfg.ReconcileSchedule)); err != nil {
		return nil, err
	}

	authLimiter, err := middleware.IPRateLimit(cfg.RateLimitAuth, "auth", redisClient)
	if err != nil {
		return nil, err
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/metrics", "/healthz"},
	}))
	router.Use(metrics.Middleware())

	router.GET("/healthz", healthz(db))
	router.GET("/metrics", metrics.Handler())

	authMiddleware := middleware.NewAuthMiddleware(tokenRepository, cfg.JWTSecret)
	requireDoctor := authMiddleware.RequireRole(entity.RoleDoctor)
	requireBank := authMiddleware.RequireRole(entity.RoleBank)
	requireDonor := authMiddleware.RequireRole(entity.RoleDonor)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	auth.Use(authLimiter)
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)

		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		// Request routes
		protected.POST("/requests", requireDoctor, requestHandler.CreateRequest)
		protected.GET("/requests/me", requireDoctor, requestHandler.GetMyRequests)
		protected.GET("/requests/pending", requireBank, requestHandler.GetPendingRequests)
		protected.GET("/requests/:request_id", requestHandler.GetRequest)
		protected.POST("/requests/:request_id/validate", requireBank, alertHandler.ValidateRequest)

		// Alert routes
		protected.POST("/alerts", requireBank, alertHandler.CreateAlert)
		protected.GET("/alerts", alertHandler.GetActiveAlerts)
		protected.GET("/alerts/:alert_id", alertHandler.GetAlert)
		protected.PUT("/alerts/:alert_id/close", requireBank, alertHandler.CloseAlert)
		protected.POST("/alerts/:alert_id/respond", requireDonor, pledgeHandler.RespondToAlert)
		protected.GET("/alerts/:alert_id/responded", pledgeHandler.HasResponded)
		protected.GET("/alerts/:alert_id/volunteers", requireBank, pledgeHandler.GetVolunteers)

		protected.GET("/donations/history", requireDonor, pledgeHandler.GetDonationHistory)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts background jobs and blocks until the listener stops.
func (s *Server) Run(addr string) error {
	s.scheduler.Start()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("http server listening", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
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
