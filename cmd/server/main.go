// Package main runs the site HTTP server with the capture WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lahiru-voiceai/site/config"
	"github.com/lahiru-voiceai/site/internal/auth"
	"github.com/lahiru-voiceai/site/internal/contacts"
	"github.com/lahiru-voiceai/site/internal/content"
	"github.com/lahiru-voiceai/site/internal/middleware"
	"github.com/lahiru-voiceai/site/internal/pages"
	"github.com/lahiru-voiceai/site/internal/realtime"
	"github.com/lahiru-voiceai/site/internal/roi"
	"github.com/lahiru-voiceai/site/internal/testimonials"
	"github.com/lahiru-voiceai/site/pkg/database"
	"github.com/lahiru-voiceai/site/pkg/metrics"
	"github.com/lahiru-voiceai/site/pkg/queue"
	"github.com/lahiru-voiceai/site/pkg/redis"
	"github.com/lahiru-voiceai/site/pkg/response"
	"github.com/lahiru-voiceai/site/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	site, err := content.Load()
	if err != nil {
		logger.Fatal("site content", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:        10,
		MaxConnLifetime: time.Hour,
		ConnectTimeout:  5 * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Without object storage written testimonials still work; video submissions fail with an upload error.
	var (
		objects   testimonials.ObjectStore
		presigner testimonials.Presigner
	)
	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		Endpoint:             cfg.AWS.Endpoint,
		TestimonialsBucket:   cfg.AWS.TestimonialsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Warn("s3 disabled", zap.Error(err))
	} else {
		objects, presigner = s3Client, s3Client
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Testimonials
	testimonialRepo := testimonials.NewRepository(pool)
	testimonialSvc := testimonials.NewService(objects, testimonialRepo, jobQueue, m, logger)
	testimonialHandler := testimonials.NewHandler(testimonialSvc, presigner, cfg.Capture.MaxUploadBytes, logger)

	// Contacts
	contactRepo := contacts.NewRepository(pool)
	contactHandler := contacts.NewHandler(contactRepo, jobQueue, m, logger)

	// Admin auth
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authHandler := auth.NewHandler(cfg.Admin.PasswordHash, jwtService, logger)
	if cfg.Admin.PasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin login disabled")
	}

	// Shared by POST submissions and websocket submits
	submissions := middleware.NewRateLimiter(cfg.RateLimit.SubmissionsPerMinute, cfg.RateLimit.Burst)

	// Capture bridge
	hub := realtime.NewHub(m, logger)
	bridge := realtime.NewBridge(hub, testimonialSvc, realtime.Options{
		TickInterval:   time.Duration(cfg.Capture.TickMillis) * time.Millisecond,
		MaxClipBytes:   cfg.Capture.MaxClipBytes,
		AllowedOrigins: middleware.ParseOrigins(cfg.Server.CORSAllowedOrigins),
		SubmitLimiter:  submissions,
	}, logger)

	// Pages
	pageHandler := pages.NewHandler(site, testimonialSvc, pages.Options{
		OwnerName:      cfg.Site.OwnerName,
		ContactEmail:   cfg.Site.ContactEmail,
		AudioSource:    cfg.Site.AudioSource,
		MaxUploadBytes: cfg.Capture.MaxUploadBytes,
	}, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			response.ServiceUnavailable(c, "database unavailable")
			return
		}
		if err := rdb.Healthy(c.Request.Context()); err != nil {
			response.ServiceUnavailable(c, "redis unavailable")
			return
		}
		response.OK(c, gin.H{"status": "ok", "active_captures": hub.Count()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Pages
	router.GET("/", pageHandler.Home)
	router.GET("/feedback", pageHandler.Feedback)
	router.GET("/privacy", pageHandler.Privacy)
	router.GET("/terms", pageHandler.Terms)
	router.StaticFS("/static", pages.Static())
	if cfg.Site.AudioSource == content.AudioLocal {
		router.Static("/audio", cfg.Site.AudioDir)
	}

	// Public API
	api := router.Group("/api")
	{
		api.GET("/testimonials", testimonialHandler.ListPublished)
		api.POST("/testimonials", middleware.RateLimit(submissions), testimonialHandler.Submit)
		api.POST("/contact", middleware.RateLimit(submissions), contactHandler.Create)
		api.GET("/roi", roi.Handle)
		api.GET("/capture/:id/preview", bridge.Preview)
		api.POST("/admin/login", middleware.RateLimit(submissions), authHandler.Login)
	}

	// Admin API (JWT required)
	admin := router.Group("/api/admin")
	admin.Use(middleware.JWT(jwtService), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/testimonials", testimonialHandler.ListAll)
		admin.GET("/testimonials/:id/video-url", testimonialHandler.VideoURL)
		admin.GET("/contacts", contactHandler.List)
	}

	// WebSocket capture session (one per feedback page)
	router.GET("/ws/capture", bridge.ServeWs)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
