package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"battle-royale-backend/internal/battle"
	"battle-royale-backend/internal/config"
	"battle-royale-backend/internal/database"
	"battle-royale-backend/internal/handlers"
	"battle-royale-backend/internal/logging"
	"battle-royale-backend/internal/middleware"
	"battle-royale-backend/internal/services"
	"battle-royale-backend/internal/ws"

	_ "battle-royale-backend/docs"

	"github.com/decred/slog"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// @title           Battle Royale API
// @version         1.0
// @description     Elimination quiz battles with host management and live websocket events
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logs, err := logging.Stdout(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logs.Logger(logging.Server)

	db, err := database.Connect(cfg, logs.Logger(logging.Database))
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db, logs.Logger(logging.Database)); err != nil {
		return err
	}

	catalog, err := newCatalog(cfg, db, logs.Logger(logging.Catalog))
	if err != nil {
		return err
	}

	hub := ws.NewHub(logs.Logger(logging.Hub))
	audit := services.NewAuditService(services.NewGormAuditStore(db), cfg.AuditBuffer, logs.Logger(logging.Audit))
	registry := battle.NewRegistry(battle.Deps{
		Catalog:        catalog,
		Publisher:      hub,
		Audit:          audit,
		Log:            logs.Logger(logging.Battle),
		CatalogTimeout: cfg.CatalogTimeout,
	}, battle.RegistryConfig{
		CompletedGrace: cfg.CompletedTTL,
		IdleGrace:      cfg.IdleTTL,
		Log:            logs.Logger(logging.Registry),
	})

	authService := services.NewAuthService(db, cfg.JWTSecret)
	quizService := services.NewQuizService(db)

	hostHandler := handlers.NewHostHandler(authService, registry)
	quizHandler := handlers.NewQuizHandler(quizService)
	battleHandler := handlers.NewBattleHandler(registry)
	wsHandler := handlers.NewWSHandler(hub, registry, cfg.SubscriberBuffer, logs.Logger(logging.Hub))

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/battle/:code", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", hostHandler.Register)
			auth.POST("/login", hostHandler.Login)
			auth.GET("/me", middleware.JWTAuth(authService), hostHandler.Me)
		}

		quizzes := api.Group("/quizzes")
		quizzes.Use(middleware.JWTAuth(authService))
		{
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.POST("", quizHandler.CreateQuiz)
			quizzes.GET("/:id", quizHandler.GetQuiz)
			quizzes.DELETE("/:id", quizHandler.DeleteQuiz)
		}

		battles := api.Group("/battles")
		{
			battles.POST("", middleware.JWTAuth(authService), battleHandler.CreateBattle)
			battles.GET("", middleware.JWTAuth(authService), battleHandler.ListBattles)
			battles.GET("/:code", battleHandler.GetBattle)
			battles.GET("/:code/standings", battleHandler.Standings)
			battles.POST("/:code/join", middleware.OptionalAuth(authService), battleHandler.JoinBattle)
			battles.POST("/:code/answer", battleHandler.SubmitAnswer)
			battles.POST("/:code/start", middleware.JWTAuth(authService), battleHandler.StartBattle)
			battles.POST("/:code/end-round", middleware.JWTAuth(authService), battleHandler.EndRound)
			battles.POST("/:code/stop", middleware.JWTAuth(authService), battleHandler.StopBattle)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The audit writer outlives the game loops so records of aborted
	// sessions still reach the database.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditDone := make(chan error, 1)
	go func() { auditDone <- audit.Run(auditCtx) }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return registry.Run(gctx, cfg.SweepInterval)
	})

	err = g.Wait()
	log.Infof("shutting down")
	hub.Shutdown()
	stopAudit()
	<-auditDone
	return err
}

func newCatalog(cfg *config.Config, db *gorm.DB, log slog.Logger) (battle.QuizCatalog, error) {
	if cfg.CatalogFile == "" {
		return services.NewCatalogService(db, log), nil
	}

	f, err := os.Open(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := battle.LoadStaticCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogFile, err)
	}
	log.Infof("serving questions from %s", cfg.CatalogFile)
	return catalog, nil
}
