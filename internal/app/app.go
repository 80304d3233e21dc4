package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "skinmuse/docs"
	"skinmuse/internal/audit"
	"skinmuse/internal/config"
	"skinmuse/internal/handlers"
	"skinmuse/internal/logger"
	"skinmuse/internal/middleware"
	"skinmuse/internal/migrations"
	"skinmuse/internal/pdf"
	"skinmuse/internal/ratelimit"
	"skinmuse/internal/repositories"
	"skinmuse/internal/routes"
	"skinmuse/internal/services"
	"skinmuse/internal/storage"
	"skinmuse/internal/utils"
)

const reportFontPath = "assets/fonts/DejaVuSans.ttf"

func Run() error {
	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("db close failed")
		}
	}()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	log.Info().Msg("postgres connected")

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(ctx, db); err != nil {
			return err
		}
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	// === Audit ===
	sink, err := audit.NewFileSink(cfg.Audit.SecurityLogPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	var auditOpts []audit.Option
	if cfg.Audit.TelegramToken != "" && cfg.Audit.TelegramChatID != 0 {
		alerter, err := audit.NewTelegramAlerter(cfg.Audit.TelegramToken, cfg.Audit.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("telegram alerter disabled")
		} else {
			auditOpts = append(auditOpts, audit.WithAlerter(alerter,
				audit.EventRateLimited,
				audit.EventAccessDenied,
				audit.EventPasswordReset,
				audit.EventAccountDeleted,
			))
		}
	}
	dispatcher := audit.NewDispatcher(activityRepo, sink, cfg.Audit.QueueSize,
		logger.Logger.With().Str("component", "audit").Logger(), auditOpts...)

	// === Rate limit ===
	limiter, closeLimiter, err := newLimiter(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// === External ===
	var captcha utils.CaptchaVerifier
	if !cfg.Captcha.Disabled {
		captcha = utils.NewRecaptchaClient(cfg.Captcha.SecretKey, cfg.Captcha.VerifyURL, cfg.Captcha.Timeout)
	} else {
		log.Warn().Msg("captcha verification disabled")
	}

	avatars, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var fontPath string
	if _, err := os.Stat(reportFontPath); err == nil {
		fontPath = reportFontPath
	}

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.BcryptCost)
	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	sessionService := services.NewSessionService(userRepo, authService, tokenService, emailService, captcha, dispatcher,
		services.SessionConfig{
			OTPTTL:         cfg.Auth.OTPTTL,
			OTPMaxAttempts: cfg.Auth.OTPMaxAttempts,
			OTPMaxResends:  cfg.Auth.OTPMaxResends,
			DefaultAvatar:  cfg.Auth.DefaultAvatar,
		})
	resetService := services.NewPasswordResetService(userRepo, emailService, authService, dispatcher,
		services.PasswordResetConfig{
			TokenTTL:        cfg.Auth.ResetTokenTTL,
			BaseURL:         cfg.Auth.ResetBaseURL,
			HideEnumeration: cfg.Auth.HideResetEnumeration,
		})
	userService := services.NewUserService(userRepo, authService, avatars, dispatcher, cfg.Storage.MaxUploadBytes)
	adminService := services.NewAdminService(activityRepo, pdf.NewDocumentGenerator(fontPath))
	postService := services.NewPostService(postRepo)
	commentService := services.NewCommentService(commentRepo)
	ratingService := services.NewRatingService(ratingRepo)

	// === Handlers ===
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}
	cookies := handlers.CookieConfig{MaxAge: cfg.Auth.CookieMaxAge, Secure: cfg.Auth.CookieSecure}
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(sessionService, dispatcher, cookies),
		Password: handlers.NewPasswordHandler(resetService),
		User:     handlers.NewUserHandler(userService, cookies, cfg.Storage.MaxUploadBytes),
		Admin:    handlers.NewAdminHandler(adminService),
		Post:     handlers.NewPostHandler(postService),
		Comment:  handlers.NewCommentHandler(commentService),
		Rating:   handlers.NewRatingHandler(ratingService),
	}

	// === Gin ===
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router, err := newRouter(cfg)
	if err != nil {
		return err
	}

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, h, routes.Guards{
		Tokens:  tokenService,
		Users:   userService,
		Limiter: limiter,
		Audit:   dispatcher,
		Health:  db.PingContext,
	})

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	// очередь аудита дописываем после остановки HTTP
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit queue not drained")
	}
	log.Info().Msg("server stopped")
	return nil
}

// newLimiter: memory для одного инстанса, redis для общего счётчика на несколько.
func newLimiter(ctx context.Context, cfg config.RateLimitConfig) (ratelimit.Limiter, func(), error) {
	rlCfg := ratelimit.Config{Limit: cfg.Limit, Window: cfg.Window}
	switch cfg.Backend {
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// лимитер fail-open, поэтому не падаем
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
		}
		return ratelimit.NewRedis(rdb, rlCfg), func() { _ = rdb.Close() }, nil
	default:
		m := ratelimit.NewMemory(rlCfg)
		go m.RunSweeper(ctx, time.Minute)
		return m, func() {}, nil
	}
}

// newRouter: gin.Engine с общими middleware. X-Forwarded-For учитывается
// только от прокси из server.trusted_proxies, иначе ClientIP = RemoteAddr.
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()
	var proxies []string
	if len(cfg.Server.TrustedProxies) > 0 {
		proxies = cfg.Server.TrustedProxies
	}
	if err := router.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestContext())
	router.Use(middleware.SecurityHeaders())
	router.MaxMultipartMemory = cfg.Storage.MaxUploadBytes
	return router, nil
}
