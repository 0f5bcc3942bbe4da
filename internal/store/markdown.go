package store

import (
	"bytes"
	"strings"

	"github.com/lingualog/internal/errs"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = newSanitizerPolicy()
)

// newSanitizerPolicy 在 UGC 基线上补充文章正文允许的结构化属性
func newSanitizerPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class", "id", "style", "width", "height").Globally()
	policy.AllowAttrs("target", "rel").OnElements("a")
	policy.AllowAttrs("title").OnElements("a", "img")
	return policy
}

const frontmatterFence = "---"

// DecodeDocument splits a content file into frontmatter and body and
// decodes the frontmatter into a Post. The markdown body is stored raw
// on Content; rendering happens separately via RenderHTML.
func DecodeDocument(raw []byte) (*Post, error) {
	text := string(raw)
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterFence {
		// 没有 frontmatter 的文件整体视为正文
		post := &Post{Content: text}
		post.PopulateDerivedFields()
		return post, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterFence {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, errs.Parsing("frontmatter is missing its closing fence", nil)
	}

	var post Post
	meta := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(meta), &post); err != nil {
		return nil, errs.Parsing("frontmatter could not be decoded", err)
	}

	body := strings.Join(lines[end+1:], "\n")
	post.Content = strings.TrimPrefix(body, "\n")
	post.PopulateDerivedFields()
	return &post, nil
}

// EncodeDocument renders a post back into frontmatter + body form.
func EncodeDocument(post *Post) ([]byte, error) {
	meta, err := yaml.Marshal(post)
	if err != nil {
		return nil, errs.Parsing("frontmatter could not be encoded", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterFence + "\n")
	buf.Write(meta)
	buf.WriteString(frontmatterFence + "\n\n")
	buf.WriteString(post.Content)
	return buf.Bytes(), nil
}

// RenderHTML converts markdown to HTML and strips script-executing
// constructs while keeping structural formatting.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		return "", errs.Parsing("markdown body could not be rendered", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}
