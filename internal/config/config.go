package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	CSRFSecret        string
	CSRFSalt          string
	GinMode           string
	LogLevel          string
	PrettyLog         bool
	TrustProxy        bool
	PostsDir          string
	DraftsDir         string
	BackupDir         string
	UploadDir         string
	UploadURLPath     string
	SuperRootUserName string
	SuperRootPassword string
	RateLimitMax      int
	RateLimitWindow   time.Duration
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := getenv("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      getenv("DATABASE_PATH", "lingualog.db"),
		SessionSecret:     getenv("SESSION_SECRET", "lingualog-dev-secret"),
		CSRFSecret:        getenv("CSRF_SECRET", "lingualog-dev-csrf-secret"),
		CSRFSalt:          getenv("CSRF_SALT", "lingualog-dev-csrf-salt"),
		GinMode:           getenv("GIN_MODE", "release"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		PrettyLog:         getenvBool("PRETTY_LOG", false),
		TrustProxy:        getenvBool("TRUST_PROXY", true),
		PostsDir:          getenv("POSTS_DIR", "content/posts"),
		DraftsDir:         getenv("DRAFTS_DIR", "content/drafts"),
		BackupDir:         getenv("BACKUP_DIR", "content/backups"),
		UploadDir:         getenv("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:     getenv("UPLOAD_URL_PATH", "/static/uploads"),
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
		RateLimitMax:      getenvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:   getenvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
