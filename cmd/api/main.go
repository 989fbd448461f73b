package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/core/cache"
	"user-account-service/internal/core/config"
	"user-account-service/internal/core/logger"
	"user-account-service/internal/core/server"
	"user-account-service/internal/repo"
	"user-account-service/internal/service"
	"user-account-service/internal/transport/http/handler"
	mdw "user-account-service/internal/transport/http/middleware"
	"user-account-service/internal/transport/http/router"
	"user-account-service/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		log     *zap.Logger
		cleanup func()
	)
	if cfg.Log.Rotate.Enable {
		r := cfg.Log.Rotate
		log, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   r.Filename,
			MaxSizeMB:  r.MaxSizeMB,
			MaxBackups: r.MaxBackups,
			MaxAgeDays: r.MaxAgeDays,
			Compress:   r.Compress,
		})
	} else {
		log, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, closeStore, err := repo.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.TokenTTL(),
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}
	svc := service.NewUserService(users, utils.NewHasher(), jwter, log)

	var states mdw.StateSource
	if cfg.Auth.EnforceActiveState {
		states = svc
		if cfg.Redis.Addr != "" {
			rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			defer func() { _ = rc.Close() }()
			if err := rc.Ping(ctx); err != nil {
				log.Warn("redis unreachable, state lookups fall through to the store", zap.Error(err))
			}
			cached := service.NewCachedStates(rc, svc, time.Duration(cfg.Redis.StateTTLSec)*time.Second, log)
			svc.SetStateRecorder(cached)
			states = cached
		}
	}

	engine := router.NewAPIEngine(log, router.Deps{
		Users:          handler.NewUserHandler(svc),
		Tokens:         jwter,
		States:         states,
		CORSOrigins:    cfg.App.HTTP.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout(),
		MaxBodyBytes:   cfg.App.HTTP.MaxBodyBytes,
		MaxInFlight:    cfg.App.HTTP.MaxInFlight,
	})

	errLog, err := logger.ToStdLogger(log.Named("http"), zapcore.ErrorLevel)
	if err != nil {
		log.Fatal("http error logger", zap.Error(err))
	}
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, engine,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		errLog,
	)

	log.Info("user account api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.DB.Driver),
		zap.Bool("state_cache", cfg.Redis.Addr != ""),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.StartHTTP(srv, log) }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		log.Warn("graceful shutdown", zap.Error(err))
	}
	log.Info("user account api stopped")
}
