package handler

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/gin-gonic/gin"
	"github.com/lingualog/internal/logger"
	"github.com/lingualog/internal/security"
)

// UploadFile 处理文件上传请求
func (a *API) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file in request")
		return
	}

	if err := security.ValidateUpload(file); err != nil {
		respondTypedError(c, err)
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		a.log.Error("create upload dir", logger.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	// 存储文件名随机生成，与用户提交的名字解耦
	newFilename := security.SafeFileName(file.Filename)
	filePath := filepath.Join(a.uploadDir, newFilename)

	if err := c.SaveUploadedFile(file, filePath); err != nil {
		a.log.Error("save upload", logger.String("file", newFilename), logger.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := gin.H{
		"url":      fmt.Sprintf("%s/%s", strings.TrimSuffix(a.uploadURL, "/"), newFilename),
		"filename": newFilename,
	}

	// 图片附带尺寸，便于前端预留封面版位
	if width, height, ok := imageDimensions(filePath); ok {
		response["width"] = width
		response["height"] = height
	}

	c.JSON(http.StatusOK, response)
}

func imageDimensions(path string) (int, int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
