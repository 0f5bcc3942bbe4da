package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lingualog/internal/logger"
	"github.com/lingualog/internal/service"
	"github.com/lingualog/internal/store"
)

// GetPosts 按查询参数搜索文章并分页返回
func (a *API) GetPosts(c *gin.Context) {
	filter := service.PostFilter{
		Query:     strings.TrimSpace(c.Query("query")),
		Category:  strings.TrimSpace(c.Query("category")),
		Tag:       strings.TrimSpace(c.Query("tag")),
		Status:    strings.TrimSpace(c.Query("status")),
		SortBy:    c.DefaultQuery("sortBy", "date"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
		Page:      parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:   parsePositiveInt(c.DefaultQuery("limit", "10"), 10),
	}

	result, err := a.posts.List(filter)
	if err != nil {
		a.log.Error("search posts", logger.String("query", filter.Query), logger.Error(err))
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      result.Posts,
		"total":      result.Total,
		"page":       result.Page,
		"totalPages": result.TotalPages,
	})
}

// GetPost 获取单篇文章
func (a *API) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := a.posts.Get(slug)
	if err != nil {
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var input store.PostInput
	if !bindJSON(c, &input, "Malformed post payload") {
		return
	}

	post, err := a.posts.Create(input)
	if err != nil {
		a.log.Error("create post", logger.String("title", input.Title), logger.Error(err))
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// UpdatePost 对现有文章做部分更新
func (a *API) UpdatePost(c *gin.Context) {
	slug := c.Param("slug")

	var patch store.PostPatch
	if !bindJSON(c, &patch, "Malformed post payload") {
		return
	}

	post, err := a.posts.Update(slug, patch)
	if err != nil {
		a.log.Error("update post", logger.String("slug", slug), logger.Error(err))
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost 删除文章
func (a *API) DeletePost(c *gin.Context) {
	slug := c.Param("slug")

	if err := a.posts.Delete(slug); err != nil {
		a.log.Error("delete post", logger.String("slug", slug), logger.Error(err))
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// PreviewPost 渲染正文为净化后的 HTML，不落盘
func (a *API) PreviewPost(c *gin.Context) {
	var payload struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &payload, "Malformed preview payload") {
		return
	}

	html, err := a.posts.Preview(payload.Content)
	if err != nil {
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"html": html})
}
