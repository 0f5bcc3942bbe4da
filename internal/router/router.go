package router

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/lingualog/internal/handler"
	"github.com/lingualog/internal/security"
)

// Setup 配置 Gin 引擎和路由
func Setup(api *handler.API, mw *security.Middleware, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("lingualog_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	apiGroup := r.Group("/api")

	// 公共读取路由，仅默认限流
	public := apiGroup.Group("")
	public.Use(mw.Apply(security.SecurityConfig{})...)
	{
		public.GET("/content", api.GetPosts)
		public.GET("/content/:slug", api.GetPost)
		public.POST("/content/preview", api.PreviewPost)
		public.GET("/csrf-token", api.CSRFToken)
	}

	// 咨询表单：更严的限流 + CSRF + 输入净化
	contact := apiGroup.Group("")
	contact.Use(mw.Apply(security.SecurityConfig{
		CSRFProtection:    true,
		InputSanitization: true,
		RateLimit:         &security.RateLimitConfig{MaxRequests: 5, Window: time.Hour},
	})...)
	{
		contact.POST("/contact", api.SubmitContact)
	}

	// 登录登出：CSRF 保护
	session := apiGroup.Group("")
	session.Use(mw.Apply(security.SecurityConfig{CSRFProtection: true})...)
	{
		session.POST("/login", api.Login)
		session.POST("/logout", api.Logout)
	}

	// 内容管理：登录 + CSRF。正文是 Markdown 原文，输出端由
	// bluemonday 负责净化，这里不做字符串剥离
	admin := apiGroup.Group("")
	admin.Use(mw.Apply(security.SecurityConfig{CSRFProtection: true})...)
	admin.Use(handler.AuthRequired())
	{
		admin.POST("/content", api.CreatePost)
		admin.PUT("/content/:slug", api.UpdatePost)
		admin.DELETE("/content/:slug", api.DeletePost)
		admin.GET("/contact", api.ListContacts)
	}

	// 上传：登录 + CSRF + 文件校验
	uploads := apiGroup.Group("")
	uploads.Use(mw.Apply(security.SecurityConfig{
		CSRFProtection:     true,
		FileUploadSecurity: true,
	})...)
	uploads.Use(handler.AuthRequired())
	{
		uploads.POST("/uploads", api.UploadFile)
	}

	return r
}
