package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "portal/api/swagger" // swagger docs
	"portal/internal/config"
	"portal/internal/handler"
	"portal/internal/jobs"
	"portal/internal/logger"
	"portal/internal/metrics"
	"portal/internal/middleware"
	"portal/internal/service"
	"portal/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)
	middleware.SetJWTSecret(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	ledgerService := service.NewLedgerService(st.ledger, st.audit, st.tx)
	requestService := service.NewRequestService(st.requests, st.audit, st.tx, wsHub)
	actionService := service.NewActionService(st.requests, st.audit, st.tx, ledgerService, wsHub)
	auditService := service.NewAuditService(st.audit)
	statisticsService := service.NewStatisticsService(st.stats, st.ledger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	limiter.StartCleanup(cfg.RateLimit.CleanupInterval, ctx.Done())

	requestHandler := handler.NewRequestHandler(requestService, actionService, limiter.Handler())
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	scheduler, err := jobs.NewScheduler(ledgerService, cfg.Ledger.ReconcileSchedule)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := newRouter(cfg, wsHub)
	api := router.Group("")
	requestHandler.RegisterRoutes(api)
	ledgerHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg *config.Config, wsHub *websocket.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), metrics.GinMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	return router
}
