package security

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	unsafeSchemePattern = regexp.MustCompile(`(?i)(javascript|data)\s*:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	angleBracketPattern = regexp.MustCompile(`[<>]`)
)

// SanitizeString strips angle brackets, javascript:/data: schemes and
// inline event-handler patterns, then trims surrounding whitespace.
// Unrelated characters are preserved.
func SanitizeString(value string) string {
	value = angleBracketPattern.ReplaceAllString(value, "")
	value = unsafeSchemePattern.ReplaceAllString(value, "")
	value = eventHandlerPattern.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}

// SanitizeValue walks a decoded JSON value recursively, scrubbing every
// string while preserving the structure of objects and arrays.
func SanitizeValue(value any) any {
	switch typed := value.(type) {
	case string:
		return SanitizeString(typed)
	case map[string]any:
		for key, inner := range typed {
			typed[key] = SanitizeValue(inner)
		}
		return typed
	case []any:
		for i, inner := range typed {
			typed[i] = SanitizeValue(inner)
		}
		return typed
	default:
		return value
	}
}

// SanitizeInput replaces the request body with a scrubbed copy before
// the route handler sees it. JSON and form bodies are handled; files in
// multipart forms are left to upload validation.
func SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.ContentType()
		switch {
		case strings.HasPrefix(contentType, "application/json"):
			sanitizeJSONBody(c)
		case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
			sanitizeFormBody(c)
		case strings.HasPrefix(contentType, "multipart/form-data"):
			sanitizeMultipartValues(c)
		}
		c.Next()
	}
}

func sanitizeJSONBody(c *gin.Context) {
	if c.Request.Body == nil {
		return
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// 非法 JSON 原样放回，由后续绑定返回 400
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}

	clean, err := json.Marshal(SanitizeValue(decoded))
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(clean))
	c.Request.ContentLength = int64(len(clean))
}

func sanitizeFormBody(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		return
	}
	clean := url.Values{}
	for key, values := range c.Request.PostForm {
		for _, value := range values {
			clean.Add(key, SanitizeString(value))
		}
	}
	encoded := clean.Encode()
	c.Request.PostForm = clean
	c.Request.Body = io.NopCloser(strings.NewReader(encoded))
	c.Request.ContentLength = int64(len(encoded))
}

func sanitizeMultipartValues(c *gin.Context) {
	if _, err := c.MultipartForm(); err != nil {
		return
	}
	for key, values := range c.Request.MultipartForm.Value {
		for i, value := range values {
			values[i] = SanitizeString(value)
		}
		c.Request.MultipartForm.Value[key] = values
	}
}
