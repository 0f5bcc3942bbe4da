package security

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lingualog/internal/errs"
)

// MaxUploadSize caps uploaded files at 5 MB.
const MaxUploadSize = 5 << 20

// 文件名只允许字母数字、下划线、连字符和单个扩展名
var safeFileNamePattern = regexp.MustCompile(`^[\w-]+\.[A-Za-z0-9]+$`)

// fileSignatures maps each allowed MIME type to its expected leading
// bytes. WebP needs a second probe past the RIFF size field.
var fileSignatures = map[string][][]byte{
	"image/jpeg":      {{0xFF, 0xD8, 0xFF}},
	"image/png":       {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/webp":      {{'R', 'I', 'F', 'F'}},
	"application/pdf": {[]byte("%PDF")},
	"application/msword": {
		{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
	},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {
		{0x50, 0x4B, 0x03, 0x04},
	},
}

// ValidateUpload checks an uploaded file's declared size, MIME type,
// filename shape and leading-byte signature. A declared type whose
// magic number doesn't match is rejected as spoofed.
func ValidateUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxUploadSize {
		return errs.ValidationField("file", "File exceeds the maximum allowed size")
	}

	declared := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	signatures, allowed := fileSignatures[declared]
	if !allowed {
		return errs.ValidationField("file", "File type is not allowed")
	}

	if !safeFileNamePattern.MatchString(fh.Filename) {
		return errs.ValidationField("file", "File name contains unsafe characters")
	}

	file, err := fh.Open()
	if err != nil {
		return errs.FileSystem("could not open uploaded file", err)
	}
	defer file.Close()

	head := make([]byte, 16)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return errs.FileSystem("could not read uploaded file", err)
	}
	head = head[:n]

	if !matchesSignature(declared, signatures, head) {
		return errs.ValidationField("file", "File content does not match its declared type")
	}
	return nil
}

func matchesSignature(declared string, signatures [][]byte, head []byte) bool {
	for _, sig := range signatures {
		if len(head) >= len(sig) && string(head[:len(sig)]) == string(sig) {
			if declared == "image/webp" {
				// RIFF 容器第 8-12 字节必须是 WEBP
				return len(head) >= 12 && string(head[8:12]) == "WEBP"
			}
			return true
		}
	}
	return false
}

// SafeFileName generates a randomized storage name, keeping only the
// original extension. User-supplied names never reach the disk.
func SafeFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
}

// ValidateUploads rejects the request when any file in a multipart form
// fails validation. Non-multipart requests pass through.
func ValidateUploads() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Next()
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed multipart form"})
			return
		}
		for _, files := range form.File {
			for _, fh := range files {
				if err := ValidateUpload(fh); err != nil {
					c.AbortWithStatusJSON(errs.StatusOf(err), gin.H{"error": errs.ClientMessage(err)})
					return
				}
			}
		}
		c.Next()
	}
}
