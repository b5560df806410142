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

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/core/config"
	"perfume-catalog/internal/core/database"
	"perfume-catalog/internal/core/logger"
	"perfume-catalog/internal/core/ratelimit"
	"perfume-catalog/internal/core/server"
	"perfume-catalog/internal/core/storage"
	"perfume-catalog/internal/repo"
	"perfume-catalog/internal/service"
	"perfume-catalog/internal/transport/http/handler"
	mdw "perfume-catalog/internal/transport/http/middleware"
	"perfume-catalog/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, cleanup := logger.New(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	// 仓储
	stores := mustOpenStores(cfg, log)

	// 依赖
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
		Leeway: cfg.JWT.Leeway(),
	}
	users := service.NewUserService(stores.Users)
	if cfg.Auth.AdminUsername != "" {
		created, err := users.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminEmail)
		if err != nil {
			log.Fatal("bootstrap admin", zap.Error(err))
		}
		if created {
			log.Info("bootstrap admin created", zap.String("username", cfg.Auth.AdminUsername))
		}
	}

	blobs, err := storage.NewLocal(cfg.Upload.Dir)
	if err != nil {
		log.Fatal("upload dir", zap.Error(err))
	}

	authSvc := service.NewAuthService(stores.Users, jwter, cfg.Auth.DefaultEmailDomain)
	modules := []router.Module{
		&handler.AuthHandler{
			Auth:     authSvc,
			Throttle: mdw.Throttle(newLoginLimiter(cfg, log), "auth", log),
		},
		&handler.CatalogHandler{
			Categories: service.NewCategoryService(stores.Categories),
			Brands:     service.NewBrandService(stores.Brands, stores.Categories),
			Perfumes:   service.NewPerfumeService(stores.Perfumes, stores.Brands),
		},
		&handler.UserHandler{
			Users:     users,
			Dashboard: service.NewDashboardService(stores.Categories, stores.Brands, stores.Perfumes, stores.Users),
		},
		&handler.FileHandler{
			Files: service.NewFileService(blobs, cfg.App.HTTP.BasePath+"/files", cfg.Upload.MaxBytes()),
		},
	}

	mode := gin.DebugMode
	if cfg.App.Env == "prod" {
		mode = gin.ReleaseMode
	}
	r := router.NewAPIEngine(router.Deps{
		Log:         log,
		Parser:      jwter,
		Mode:        mode,
		BasePath:    cfg.App.HTTP.BasePath,
		CorsOrigins: cfg.App.HTTP.CorsOrigins,
		Limits: router.Limits{
			RPS:            cfg.Limits.RPS,
			Burst:          cfg.Limits.Burst,
			MaxInFlight:    int64(cfg.Limits.MaxInFlight),
			RequestTimeout: time.Duration(cfg.Limits.RequestTimeoutSec) * time.Second,
			// 上传走 upload.maxSizeMB，这里取两者较大值
			MaxBodyBytes: max(int64(cfg.Limits.MaxBodyMB)<<20, cfg.Upload.MaxBytes()+1<<20),
		},
		Modules: modules,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("perfume api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("db", cfg.DB.Driver),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+cfg.App.HTTP.BasePath),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("perfume api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("perfume api stopped gracefully")
}

func mustOpenStores(cfg *config.Config, l *zap.Logger) repo.Stores {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory store, data is lost on restart")
		return repo.MemoryStores()
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}
	return repo.GormStores(db)
}

// newLoginLimiter 配了 redis 就多实例共享计数，否则进程内
func newLoginLimiter(cfg *config.Config, l *zap.Logger) ratelimit.Limiter {
	window := time.Duration(cfg.Limits.LoginWindowSec) * time.Second
	if cfg.Redis.Addr == "" {
		return ratelimit.NewMemory(cfg.Limits.LoginMax, window)
	}
	client := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// 限流失败放行，启动不因 redis 不可用而中断
		l.Warn("redis unreachable, login throttle will fail open", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	return ratelimit.NewRedis(client, "perfume:login:", cfg.Limits.LoginMax, window)
}
