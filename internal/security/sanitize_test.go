package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSanitizeStringPreservesSafeInput(t *testing.T) {
	for _, value := range []string{"hello", "Kari Nordmann", "kurs2026", "a-b_c.d"} {
		if got := SanitizeString(value); got != value {
			t.Fatalf("safe value %q changed to %q", value, got)
		}
	}
}

func TestSanitizeStringStripsUnsafeInput(t *testing.T) {
	got := SanitizeString("hello <script>alert(1)</script> world")
	if strings.ContainsAny(got, "<>") {
		t.Fatalf("angle brackets survived: %q", got)
	}
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Fatalf("unrelated characters lost: %q", got)
	}

	got = SanitizeString(`img src=x onerror=alert(1)`)
	if strings.Contains(got, "onerror=") {
		t.Fatalf("event handler survived: %q", got)
	}
	if !strings.Contains(got, "alert(1)") {
		t.Fatalf("unrelated characters lost: %q", got)
	}

	got = SanitizeString("JavaScript:alert(1)")
	if strings.Contains(strings.ToLower(got), "javascript:") {
		t.Fatalf("scheme survived: %q", got)
	}

	got = SanitizeString("data:text/html;base64,xyz")
	if strings.Contains(got, "data:") {
		t.Fatalf("data scheme survived: %q", got)
	}

	if got := SanitizeString("  padded  "); got != "padded" {
		t.Fatalf("whitespace not trimmed: %q", got)
	}
}

func TestSanitizeValueWalksStructure(t *testing.T) {
	input := map[string]any{
		"name":  "<b>Ola</b>",
		"count": float64(3),
		"nested": map[string]any{
			"note": "javascript:alert(1)",
		},
		"list": []any{"ok", "<script>x</script>", float64(7)},
	}

	out, ok := SanitizeValue(input).(map[string]any)
	if !ok {
		t.Fatalf("map shape lost")
	}
	if out["name"] != "bOla/b" {
		t.Fatalf("unexpected sanitized name: %q", out["name"])
	}
	if out["count"] != float64(3) {
		t.Fatalf("non-string value altered: %v", out["count"])
	}
	nested := out["nested"].(map[string]any)
	if strings.Contains(nested["note"].(string), "javascript:") {
		t.Fatalf("nested value not sanitized: %q", nested["note"])
	}
	list := out["list"].([]any)
	if len(list) != 3 || list[2] != float64(7) {
		t.Fatalf("array shape altered: %v", list)
	}
}

func TestSanitizeInputMiddlewareJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SanitizeInput())
	r.POST("/", func(c *gin.Context) {
		var payload struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, payload)
	})

	body := `{"name":"<script>evil()</script>Kari","message":"plain text"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	response := w.Body.String()
	if strings.Contains(response, "<script>") {
		t.Fatalf("script reached the handler: %q", response)
	}
	if !strings.Contains(response, "Kari") || !strings.Contains(response, "plain text") {
		t.Fatalf("safe content lost: %q", response)
	}
}

func TestSanitizeInputMiddlewareForm(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SanitizeInput())
	r.POST("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("comment"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("comment=%3Cscript%3Ehei%3C%2Fscript%3E"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if strings.Contains(w.Body.String(), "<script>") {
		t.Fatalf("script reached the handler: %q", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "hei") {
		t.Fatalf("safe content lost: %q", w.Body.String())
	}
}
