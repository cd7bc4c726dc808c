package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yaopedia/internal/graph"
	"yaopedia/internal/monster"
	"yaopedia/pkg/database"
	"yaopedia/pkg/graphdb"
	"yaopedia/pkg/utils"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := utils.LoadConfig()

	db := database.MustOpen(database.Config{Path: cfg.DBPath}, logger)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	api := router.Group("/api")

	monsterRepo := monster.NewRepo(db)
	monsterHandler := monster.NewHandler(monsterRepo, logger)
	monsterHandler.RegisterRoutes(api.Group("/monsters"))

	// The graph store is optional at boot: if Neo4j is down the catalog
	// still serves and graph routes report unavailability.
	var graphStore graph.Store
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	driver, err := graphdb.Open(connectCtx, graphdb.Config{
		URI:      cfg.Neo4jURI,
		User:     cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
	})
	cancel()
	if err != nil {
		logger.Warn("graph store unreachable, graph routes disabled", zap.Error(err))
	} else {
		defer driver.Close(context.Background())
		graphStore = graph.NewRepo(driver)
	}
	graphHandler := graph.NewHandler(graphStore, logger)
	graphHandler.RegisterRoutes(api.Group("/graph"))

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
