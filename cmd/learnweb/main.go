package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/japanesestudent/learn-web/docs"
	"github.com/japanesestudent/learn-web/internal/apiclient"
	"github.com/japanesestudent/learn-web/internal/completion"
	"github.com/japanesestudent/learn-web/internal/config"
	"github.com/japanesestudent/learn-web/internal/handlers"
	"github.com/japanesestudent/learn-web/internal/logger"
	"github.com/japanesestudent/learn-web/internal/middleware"
	"github.com/japanesestudent/learn-web/internal/services"
	"github.com/japanesestudent/learn-web/internal/validate"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const janitorInterval = time.Minute

// @title JapaneseStudent Learn Web API
// @version 1.0
// @description Course page state for the learning frontend: step progress, lesson reading time, step completion and auto-advance
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email shelyahin.mihail@gmail.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting JapaneseStudent Learn Web", zap.String("learn_api", cfg.LearnAPI.BaseURL))

	// Initialize learn API client, shared by all sessions
	client := apiclient.NewClient(cfg.LearnAPI.BaseURL, cfg.LearnAPI.Timeout, logger.Logger)

	// Initialize session registry
	timings := completion.Timings{
		RefreshDelay:  cfg.Completion.RefreshDelay,
		CollapseDelay: cfg.Completion.CollapseDelay,
		AdvanceDelay:  cfg.Completion.AdvanceDelay,
	}
	registry := services.NewRegistry(func(tokens apiclient.TokenSource) services.CourseAPI {
		return client.WithTokens(tokens)
	}, timings, cfg.Session.IdleTimeout, logger.Logger)
	defer registry.Close()

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go registry.RunJanitor(janitorCtx, janitorInterval)

	// Initialize services
	coursePageService := services.NewCoursePageService(logger.Logger)

	// Initialize handlers
	validator := validate.New()
	coursePageHandler := handlers.NewCoursePageHandler(coursePageService, validator, logger.Logger)
	noticeHandler := handlers.NewNoticeHandler(cfg.CORS.AllowedOrigins, logger.Logger)
	preferencesHandler := handlers.NewPreferencesHandler(validator, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(registry, cfg.Session.IdleTimeout))
		r.Use(middleware.TokenMiddleware(logger.Logger))

		coursePageHandler.RegisterRoutes(r)
		noticeHandler.RegisterRoutes(r)
		preferencesHandler.RegisterRoutes(r)
	})

	// Start server. WriteTimeout stays unset so notice websockets are not cut off.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
