package service

import (
	"sort"
	"strings"

	"github.com/lingualog/internal/store"
)

// PostService wraps repository access and runs search queries over the
// in-memory collection.
type PostService struct {
	store *store.Store
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Query     string
	Category  string
	Tag       string
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// PostListResult aggregates paginated list data and counters.
type PostListResult struct {
	Posts      []*store.Post
	Total      int
	TotalPages int
	Page       int
	PerPage    int
}

// NewPostService creates a PostService instance.
func NewPostService(st *store.Store) *PostService {
	return &PostService{store: st}
}

// Get fetches a single post by slug.
func (s *PostService) Get(slug string) (*store.Post, error) {
	return s.store.GetBySlug(slug)
}

// Create persists a new post.
func (s *PostService) Create(input store.PostInput) (*store.Post, error) {
	return s.store.Create(input)
}

// Update applies a partial patch to an existing post.
func (s *PostService) Update(slug string, patch store.PostPatch) (*store.Post, error) {
	return s.store.Update(slug, patch)
}

// Delete removes a post by slug.
func (s *PostService) Delete(slug string) error {
	return s.store.Delete(slug)
}

// Preview renders markdown to sanitized HTML without persisting anything.
func (s *PostService) Preview(content string) (string, error) {
	return store.RenderHTML(content)
}

// List loads the full collection, applies every provided filter as a
// conjunction, sorts and slices the requested page. Total always counts
// the filtered set before pagination.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 10
	}

	posts, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}

	filtered := make([]*store.Post, 0, len(posts))
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	for _, post := range posts {
		if query != "" && !strings.Contains(post.SearchableContent, query) {
			continue
		}
		if filter.Category != "" && !post.HasCategory(filter.Category) {
			continue
		}
		if filter.Tag != "" && !post.HasTag(filter.Tag) {
			continue
		}
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		filtered = append(filtered, post)
	}

	sortPosts(filtered, filter.SortBy, filter.SortOrder)

	result.Total = len(filtered)
	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = (result.Total + result.PerPage - 1) / result.PerPage
	}

	start := (result.Page - 1) * result.PerPage
	if start >= len(filtered) {
		result.Posts = []*store.Post{}
		return result, nil
	}
	end := start + result.PerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	result.Posts = filtered[start:end]
	return result, nil
}

// sortPosts 默认按日期倒序（最新在前）
func sortPosts(posts []*store.Post, sortBy, sortOrder string) {
	asc := strings.EqualFold(sortOrder, "asc")

	var less func(a, b *store.Post) bool
	switch strings.ToLower(sortBy) {
	case "title":
		less = func(a, b *store.Post) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case "author":
		less = func(a, b *store.Post) bool {
			return strings.ToLower(a.Author) < strings.ToLower(b.Author)
		}
	default:
		less = func(a, b *store.Post) bool {
			return a.EffectiveDate().Before(b.EffectiveDate())
		}
	}

	if asc {
		sort.SliceStable(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
	} else {
		sort.SliceStable(posts, func(i, j int) bool { return less(posts[j], posts[i]) })
	}
}
