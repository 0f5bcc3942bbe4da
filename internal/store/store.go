package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lingualog/internal/errs"
	"github.com/lingualog/internal/logger"
)

// 每个 slug 保留的备份份数
const backupKeep = 5

// Store is the file-backed post repository. Published posts and drafts
// live in separate directories; the directory a file is found in is
// authoritative for its status.
type Store struct {
	postsDir  string
	draftsDir string
	backupDir string
	log       logger.Logger
}

// New creates the repository and ensures its directories exist.
func New(postsDir, draftsDir, backupDir string, log logger.Logger) (*Store, error) {
	for _, dir := range []string{postsDir, draftsDir, backupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.FileSystem("could not create content directory", err)
		}
	}
	return &Store{postsDir: postsDir, draftsDir: draftsDir, backupDir: backupDir, log: log}, nil
}

func (s *Store) dirFor(status string) string {
	if status == StatusPublished {
		return s.postsDir
	}
	return s.draftsDir
}

func (s *Store) pathFor(status, slug string) string {
	return filepath.Join(s.dirFor(status), slug+".md")
}

// Create validates the input, derives a unique slug and writes the new
// document. The exclusive-create flag makes the filesystem the arbiter
// of slug uniqueness, so concurrent creates cannot silently overwrite
// each other.
func (s *Store) Create(input PostInput) (*Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errs.ValidationField("title", "Title is required")
	}

	slug := Slugify(input.Title)
	if slug == "" {
		return nil, errs.ValidationField("title", "Title must contain at least one word character")
	}

	status := input.Status
	if status == "" {
		status = StatusDraft
	}
	if status != StatusDraft && status != StatusPublished {
		return nil, errs.ValidationField("status", "Status must be draft or published")
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = DefaultAuthor
	}

	now := time.Now()
	post := &Post{
		ID:         uuid.NewString(),
		Slug:       slug,
		Title:      input.Title,
		Excerpt:    input.Excerpt,
		Content:    input.Content,
		Author:     author,
		Categories: input.Categories,
		Tags:       input.Tags,
		CoverImage: input.CoverImage,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == StatusPublished {
		publishedAt := now
		post.PublishedAt = &publishedAt
	}
	post.PopulateDerivedFields()

	// slug 在两个目录的并集内必须唯一
	other := StatusDraft
	if status == StatusDraft {
		other = StatusPublished
	}
	if _, err := os.Stat(s.pathFor(other, slug)); err == nil {
		return nil, errs.Validation("Post with this title already exists")
	}

	data, err := EncodeDocument(post)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(s.pathFor(status, slug), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, errs.Validation("Post with this title already exists")
		}
		s.log.Error("create post", logger.String("slug", slug), logger.Error(err))
		return nil, errs.FileSystem("could not write post file", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		s.log.Error("create post", logger.String("slug", slug), logger.Error(err))
		return nil, errs.FileSystem("could not write post file", err)
	}

	if post.HTML, err = RenderHTML(post.Content); err != nil {
		return nil, err
	}
	return post, nil
}

// GetBySlug looks in the published directory first and falls back to
// drafts. The directory the file was found in decides the status, not
// whatever the frontmatter claims.
func (s *Store) GetBySlug(slug string) (*Post, error) {
	for _, status := range []string{StatusPublished, StatusDraft} {
		path := s.pathFor(status, slug)
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			s.log.Error("read post", logger.String("slug", slug), logger.Error(err))
			return nil, errs.FileSystem("could not read post file", err)
		}

		post, err := DecodeDocument(raw)
		if err != nil {
			s.log.Error("parse post", logger.String("slug", slug), logger.Error(err))
			return nil, err
		}
		post.Slug = slug
		post.Status = status
		if post.HTML, err = RenderHTML(post.Content); err != nil {
			return nil, err
		}
		return post, nil
	}
	return nil, errs.NotFound("Post not found")
}

// Update merges a patch over the stored document. The previous file is
// backed up first; a status change writes the new location before the
// old one is removed, so a crash mid-move duplicates rather than loses.
func (s *Store) Update(slug string, patch PostPatch) (*Post, error) {
	existing, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	oldStatus := existing.Status

	if err := s.backup(slug, s.pathFor(oldStatus, slug)); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		existing.Title = *patch.Title
	}
	if patch.Excerpt != nil {
		existing.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		existing.Content = *patch.Content
	}
	if patch.Author != nil {
		existing.Author = *patch.Author
	}
	if patch.Categories != nil {
		existing.Categories = *patch.Categories
	}
	if patch.Tags != nil {
		existing.Tags = *patch.Tags
	}
	if patch.CoverImage != nil {
		existing.CoverImage = *patch.CoverImage
	}
	if patch.Status != nil {
		if *patch.Status != StatusDraft && *patch.Status != StatusPublished {
			return nil, errs.ValidationField("status", "Status must be draft or published")
		}
		existing.Status = *patch.Status
	}

	existing.UpdatedAt = time.Now()
	// publishedAt 只在第一次发布时写入，之后不再变动
	if existing.Status == StatusPublished && existing.PublishedAt == nil {
		publishedAt := existing.UpdatedAt
		existing.PublishedAt = &publishedAt
	}
	existing.PopulateDerivedFields()

	data, err := EncodeDocument(existing)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(s.pathFor(existing.Status, slug), data, 0o644); err != nil {
		s.log.Error("update post", logger.String("slug", slug), logger.Error(err))
		return nil, errs.FileSystem("could not write post file", err)
	}

	if existing.Status != oldStatus {
		if err := os.Remove(s.pathFor(oldStatus, slug)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("remove old post location", logger.String("slug", slug), logger.Error(err))
			return nil, errs.FileSystem("could not remove old post file", err)
		}
	}

	if existing.HTML, err = RenderHTML(existing.Content); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete backs up and removes a document.
func (s *Store) Delete(slug string) error {
	for _, status := range []string{StatusPublished, StatusDraft} {
		path := s.pathFor(status, slug)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errs.FileSystem("could not stat post file", err)
		}

		if err := s.backup(slug, path); err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			s.log.Error("delete post", logger.String("slug", slug), logger.Error(err))
			return errs.FileSystem("could not delete post file", err)
		}
		return nil
	}
	return errs.NotFound("Post not found")
}

// ListAll returns every document from both directories, most recently
// published (or created) first.
func (s *Store) ListAll() ([]*Post, error) {
	var posts []*Post
	for _, status := range []string{StatusPublished, StatusDraft} {
		dir := s.dirFor(status)
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.log.Error("list posts", logger.String("dir", dir), logger.Error(err))
			return nil, errs.FileSystem("could not list content directory", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, errs.FileSystem("could not read post file", err)
			}
			post, err := DecodeDocument(raw)
			if err != nil {
				s.log.Error("parse post", logger.String("file", entry.Name()), logger.Error(err))
				return nil, err
			}
			post.Slug = strings.TrimSuffix(entry.Name(), ".md")
			post.Status = status
			posts = append(posts, post)
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].EffectiveDate().After(posts[j].EffectiveDate())
	})
	return posts, nil
}

// backup snapshots the current file contents before a mutation, then
// prunes older snapshots beyond the retention count.
func (s *Store) backup(slug, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errs.FileSystem("could not read post file for backup", err)
	}

	millis := time.Now().UnixMilli()
	name := fmt.Sprintf("%s_%d.md", slug, millis)
	for {
		if _, err := os.Stat(filepath.Join(s.backupDir, name)); errors.Is(err, fs.ErrNotExist) {
			break
		}
		// 同一毫秒内多次备份时向后顺延，避免覆盖
		millis++
		name = fmt.Sprintf("%s_%d.md", slug, millis)
	}

	if err := os.WriteFile(filepath.Join(s.backupDir, name), raw, 0o644); err != nil {
		s.log.Error("backup post", logger.String("slug", slug), logger.Error(err))
		return errs.FileSystem("could not write backup file", err)
	}
	return s.pruneBackups(slug)
}

func (s *Store) pruneBackups(slug string) error {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return errs.FileSystem("could not list backup directory", err)
	}

	// slug 里允许下划线，前缀之后必须是纯数字时间戳，否则会把
	// foo_bar 的备份算进 foo 的配额
	prefix := slug + "_"
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".md") {
			continue
		}
		if isMillisStamp(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".md")) {
			names = append(names, name)
		}
	}
	if len(names) <= backupKeep {
		return nil
	}

	// 文件名里的时间戳等宽有序，字典序即时间序
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, name := range names[backupKeep:] {
		if err := os.Remove(filepath.Join(s.backupDir, name)); err != nil {
			s.log.Error("prune backup", logger.String("file", name), logger.Error(err))
			return errs.FileSystem("could not prune backup file", err)
		}
	}
	return nil
}

func isMillisStamp(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
