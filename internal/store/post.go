package store

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// 文章状态，决定文件落在哪个目录
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// DefaultAuthor is used when a post is created without an author.
const DefaultAuthor = "Admin"

// Post 定义了文章模型
type Post struct {
	ID          string     `json:"id" yaml:"id"`
	Slug        string     `json:"slug" yaml:"slug"`
	Title       string     `json:"title" yaml:"title"`
	Excerpt     string     `json:"excerpt" yaml:"excerpt"`
	Content     string     `json:"content" yaml:"-"`
	HTML        string     `json:"html,omitempty" yaml:"-"`
	Author      string     `json:"author" yaml:"author"`
	Categories  []string   `json:"categories" yaml:"categories,flow"`
	Tags        []string   `json:"tags" yaml:"tags,flow"`
	CoverImage  string     `json:"coverImage,omitempty" yaml:"coverImage,omitempty"`
	Status      string     `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`

	// Derived fields, always recomputed from the current content.
	ReadingTime       string `json:"readingTime" yaml:"readingTime"`
	SearchableContent string `json:"-" yaml:"-"`
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	Author     string   `json:"author"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"coverImage"`
	Status     string   `json:"status"`
}

// PostPatch carries a partial update; nil fields are left untouched.
type PostPatch struct {
	Title      *string   `json:"title"`
	Excerpt    *string   `json:"excerpt"`
	Content    *string   `json:"content"`
	Author     *string   `json:"author"`
	Categories *[]string `json:"categories"`
	Tags       *[]string `json:"tags"`
	CoverImage *string   `json:"coverImage"`
	Status     *string   `json:"status"`
}

var (
	slugInvalidChars = regexp.MustCompile(`[^\w\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)
)

// Slugify 由标题生成 URL 安全的 slug
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// PopulateDerivedFields recomputes reading time and searchable content
// from the current title/excerpt/content.
func (p *Post) PopulateDerivedFields() {
	p.ReadingTime = calculateReadingTime(p.Content)
	p.SearchableContent = strings.ToLower(p.Title + " " + p.Excerpt + " " + p.Content)
}

// EffectiveDate returns the publication time, falling back to creation time.
func (p *Post) EffectiveDate() time.Time {
	if p.PublishedAt != nil && !p.PublishedAt.IsZero() {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// HasCategory reports whether the post carries the category, case-insensitively.
func (p *Post) HasCategory(name string) bool {
	return containsFold(p.Categories, name)
}

// HasTag reports whether the post carries the tag, case-insensitively.
func (p *Post) HasTag(name string) bool {
	return containsFold(p.Tags, name)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// calculateReadingTime assumes 200 words per minute and rounds up,
// never reporting less than one minute.
func calculateReadingTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
