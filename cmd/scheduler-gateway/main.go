package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	internalhandler "github.com/noah-isme/sma-adp-api/internal/handler"
	"github.com/noah-isme/sma-adp-api/internal/repository"
	"github.com/noah-isme/sma-adp-api/internal/scheduler"
	"github.com/noah-isme/sma-adp-api/pkg/cache"
	"github.com/noah-isme/sma-adp-api/pkg/config"
	"github.com/noah-isme/sma-adp-api/pkg/database"
	"github.com/noah-isme/sma-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-api/pkg/middleware/requestid"
)

// @title SMA ADP Scheduler API
// @version 0.1.0
// @description Constraint-based timetable generator
// @BasePath /
// @schemes http

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
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var lock scheduler.GenerationLock
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, falling back to in-process generation lock", "error", err)
		lock = scheduler.NewMutexGenerationLock()
	} else {
		lock = scheduler.NewRedisGenerationLock(redisClient, cfg.Scheduler.GenerationLockTTL)
	}

	repo := repository.NewSchedulerRepo(db)
	metrics := scheduler.NewMetrics()
	orchestrator := scheduler.NewOrchestrator(repo, lock, metrics, cfg.Scheduler.VariantConfigs, cfg.Scheduler.SolverTimeLimit)
	schedulerHandler := internalhandler.NewSchedulerHandler(orchestrator, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) { c.Status(200) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.POST("/departments/:id/generate", schedulerHandler.Generate)
	api.POST("/timetables/:id/approve", schedulerHandler.Approve)

	addr := ":8080"
	if cfg.Port != 0 {
		addr = fmt.Sprintf(":%d", cfg.Port)
	}
	logr.Sugar().Infow("scheduler-gateway listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server exited", "error", err)
	}
}
