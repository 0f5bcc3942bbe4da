package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lingualog/internal/config"
	"github.com/lingualog/internal/db"
	"github.com/lingualog/internal/handler"
	"github.com/lingualog/internal/logger"
	"github.com/lingualog/internal/router"
	"github.com/lingualog/internal/security"
	"github.com/lingualog/internal/service"
	"github.com/lingualog/internal/store"
)

func main() {
	// 本地开发时从 .env 读取配置，文件不存在则忽略
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	// 初始化数据库并按需创建超级管理员
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("failed to initialize database", logger.Error(err))
	}
	if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatal("failed to ensure super root user", logger.Error(err))
	}

	contentStore, err := store.New(cfg.PostsDir, cfg.DraftsDir, cfg.BackupDir, log)
	if err != nil {
		log.Fatal("failed to initialize content store", logger.Error(err))
	}

	csrf := security.CSRFConfig{Secret: cfg.CSRFSecret, Salt: cfg.CSRFSalt}
	defaultLimit := security.RateLimitConfig{MaxRequests: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	mw := security.NewMiddleware(security.NewRateLimiterState(), csrf, defaultLimit, cfg.TrustProxy, log)

	posts := service.NewPostService(contentStore)
	api := handler.NewAPI(db.DB, posts, csrf, cfg.UploadDir, cfg.UploadURLPath, log)

	// 设置并运行 Gin 服务器
	r := router.Setup(api, mw, cfg.SessionSecret)
	log.Info("server listening", logger.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("failed to run server", logger.Error(err))
	}
}
