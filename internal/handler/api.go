package handler

import (
	"github.com/lingualog/internal/logger"
	"github.com/lingualog/internal/security"
	"github.com/lingualog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	posts     *service.PostService
	contacts  *service.ContactService
	csrf      security.CSRFConfig
	uploadDir string
	uploadURL string
	log       logger.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, posts *service.PostService, csrf security.CSRFConfig, uploadDir, uploadURL string, log logger.Logger) *API {
	return &API{
		db:        gdb,
		posts:     posts,
		contacts:  service.NewContactService(gdb),
		csrf:      csrf,
		uploadDir: uploadDir,
		uploadURL: uploadURL,
		log:       log,
	}
}
