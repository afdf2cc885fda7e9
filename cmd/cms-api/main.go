package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/yildiz-insaat/cms-api/api/swagger"
	"github.com/yildiz-insaat/cms-api/internal/handler"
	"github.com/yildiz-insaat/cms-api/internal/middleware"
	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/repository"
	"github.com/yildiz-insaat/cms-api/internal/service"
	"github.com/yildiz-insaat/cms-api/internal/token"
	"github.com/yildiz-insaat/cms-api/pkg/cache"
	"github.com/yildiz-insaat/cms-api/pkg/config"
	"github.com/yildiz-insaat/cms-api/pkg/database"
	"github.com/yildiz-insaat/cms-api/pkg/jobs"
	"github.com/yildiz-insaat/cms-api/pkg/logger"
	"github.com/yildiz-insaat/cms-api/pkg/mailer"
	corsmiddleware "github.com/yildiz-insaat/cms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/yildiz-insaat/cms-api/pkg/middleware/requestid"
	"github.com/yildiz-insaat/cms-api/pkg/storage"
)

// @title Yildiz Insaat CMS API
// @version 1.0.0
// @description Content management backend for the corporate site
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and rate limiting degraded", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	fileStore, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessExpiry:  cfg.JWT.AccessExpiry,
		RefreshExpiry: cfg.JWT.RefreshExpiry,
		Issuer:        "cms-api",
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to init token issuer", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	contactRepo := repository.NewContactRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	var contentCache *repository.CacheRepository
	if cfg.Cache.Enabled && redisClient != nil {
		contentCache = repository.NewCacheRepository(redisClient, logr)
	}

	mail := mailer.New(cfg.SMTP, logr)
	var mailQueue *jobs.Queue
	if mail.Enabled() {
		mailQueue = jobs.NewQueue("contact-mail", func(ctx context.Context, job jobs.Job) error {
			msg, ok := job.Payload.(models.ContactMessage)
			if !ok {
				return fmt.Errorf("unexpected payload type %T", job.Payload)
			}
			subject := "Yeni iletişim mesajı: " + msg.Name
			body := fmt.Sprintf("Gönderen: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message)
			return mail.Send(subject, body)
		}, jobs.QueueConfig{Workers: 2, Logger: logr})
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, issuer, auditRepo, validate, logr)
	projectSvc := service.NewProjectService(projectRepo, cacheOrNil(contentCache), cfg.Cache.ContentTTL, validate, logr)
	catalogSvc := service.NewCatalogService(serviceRepo, cacheOrNil(contentCache), cfg.Cache.ContentTTL, validate, logr)
	blogSvc := service.NewBlogService(blogRepo, cacheOrNil(contentCache), cfg.Cache.ContentTTL, validate, logr)
	contactSvc := service.NewContactService(contactRepo, queueOrNil(mailQueue), validate, logr)
	mediaSvc := service.NewMediaService(mediaRepo, fileStore, cfg.Uploads, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, cacheOrNil(contentCache), cfg.Cache.ContentTTL, validate, logr)
	statsSvc := service.NewStatsService(statsRepo, contactRepo, blogRepo, cacheOrNil(contentCache), cfg.Cache.ContentTTL, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	projectHandler := handler.NewProjectHandler(projectSvc)
	serviceHandler := handler.NewServiceHandler(catalogSvc)
	blogHandler := handler.NewBlogHandler(blogSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	mediaHandler := handler.NewMediaHandler(mediaSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	userHandler := handler.NewUserHandler(service.NewUserService(userRepo, validate, logr))
	statsHandler := handler.NewStatsHandler(statsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.GeneralRateLimit(redisClient, metricsSvc, logr, cfg.RateLimit.GeneralLimit, cfg.RateLimit.Window))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/uploads", fileStore.BaseDir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := middleware.Auth(issuer, userRepo)
	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	superAdminOnly := middleware.RequireRoles(models.RoleSuperAdmin)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authRequired, authHandler.Logout)
		auth.GET("/me", authRequired, authHandler.Me)
	}

	public := api.Group("/public")
	{
		public.GET("/projects", projectHandler.ListPublic)
		public.GET("/projects/:slug", projectHandler.GetBySlug)
		public.GET("/services", serviceHandler.ListPublic)
		public.GET("/services/:slug", serviceHandler.GetBySlug)
		public.GET("/blog", blogHandler.ListPublic)
		public.GET("/blog/:slug", blogHandler.GetBySlug)
		public.GET("/settings", settingsHandler.Get)
		public.POST("/contact",
			middleware.ContactRateLimit(redisClient, metricsSvc, logr, cfg.RateLimit.ContactLimit, cfg.RateLimit.Window),
			contactHandler.Submit)
	}

	projects := api.Group("/projects", authRequired)
	{
		projects.GET("", projectHandler.List)
		projects.GET("/:id", projectHandler.Get)
		projects.POST("", middleware.Audit(auditRepo, models.AuditActionCreate, "project"), projectHandler.Create)
		projects.PUT("/:id", middleware.Audit(auditRepo, models.AuditActionUpdate, "project"), projectHandler.Update)
		projects.PATCH("/:id/toggle", middleware.Audit(auditRepo, models.AuditActionUpdate, "project"), projectHandler.ToggleActive)
		projects.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, models.AuditActionDelete, "project"), projectHandler.Delete)
	}

	services := api.Group("/services", authRequired)
	{
		services.GET("", serviceHandler.List)
		services.GET("/:id", serviceHandler.Get)
		services.POST("", middleware.Audit(auditRepo, models.AuditActionCreate, "service"), serviceHandler.Create)
		services.PUT("/:id", middleware.Audit(auditRepo, models.AuditActionUpdate, "service"), serviceHandler.Update)
		services.PATCH("/:id/toggle", middleware.Audit(auditRepo, models.AuditActionUpdate, "service"), serviceHandler.ToggleActive)
		services.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, models.AuditActionDelete, "service"), serviceHandler.Delete)
	}

	blog := api.Group("/blog", authRequired)
	{
		blog.GET("", blogHandler.List)
		blog.GET("/:id", blogHandler.Get)
		blog.POST("", middleware.Audit(auditRepo, models.AuditActionCreate, "blog_post"), blogHandler.Create)
		blog.PUT("/:id", middleware.Audit(auditRepo, models.AuditActionUpdate, "blog_post"), blogHandler.Update)
		blog.PATCH("/:id/toggle", middleware.Audit(auditRepo, models.AuditActionUpdate, "blog_post"), blogHandler.ToggleActive)
		blog.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, models.AuditActionDelete, "blog_post"), blogHandler.Delete)
	}

	contact := api.Group("/contact", authRequired, adminOnly)
	{
		contact.GET("", contactHandler.List)
		contact.GET("/export", contactHandler.Export)
		contact.GET("/:id", contactHandler.Get)
		contact.PATCH("/:id/read", contactHandler.MarkRead)
		contact.DELETE("/:id", middleware.Audit(auditRepo, models.AuditActionDelete, "contact_message"), contactHandler.Delete)
	}

	media := api.Group("/media", authRequired)
	{
		media.GET("", mediaHandler.List)
		media.GET("/:id", mediaHandler.Get)
		media.POST("", middleware.Audit(auditRepo, models.AuditActionCreate, "media"), mediaHandler.Upload)
		media.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, models.AuditActionDelete, "media"), mediaHandler.Delete)
	}

	api.PUT("/settings", authRequired, adminOnly,
		middleware.Audit(auditRepo, models.AuditActionUpdate, "site_settings"), settingsHandler.Update)

	users := api.Group("/users", authRequired, superAdminOnly)
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("", middleware.Audit(auditRepo, models.AuditActionCreate, "user"), userHandler.Create)
		users.PUT("/:id", middleware.Audit(auditRepo, models.AuditActionUpdate, "user"), userHandler.Update)
		users.PUT("/:id/password", middleware.Audit(auditRepo, models.AuditActionUpdate, "user"), userHandler.ResetPassword)
		users.DELETE("/:id", middleware.Audit(auditRepo, models.AuditActionDelete, "user"), userHandler.Delete)
	}

	api.GET("/stats", authRequired, adminOnly, statsHandler.Dashboard)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mailQueue != nil {
		mailQueue.Start(ctx)
		defer mailQueue.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// cacheOrNil avoids a typed-nil interface when caching is disabled.
func cacheOrNil(repo *repository.CacheRepository) service.ContentCache {
	if repo == nil {
		return nil
	}
	return repo
}

func queueOrNil(q *jobs.Queue) service.JobEnqueuer {
	if q == nil {
		return nil
	}
	return q
}
