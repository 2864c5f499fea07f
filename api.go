package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// apiPost is the public JSON shape of a post; raw markdown stays out.
type apiPost struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
	Excerpt     string     `json:"excerpt"`
	HTML        string     `json:"html"`
}

func publicAPIPost(post *Post) apiPost {
	return apiPost{
		Slug:        post.Slug,
		Title:       post.Title,
		Tags:        post.Tags,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
		PublishedAt: post.PublishedAt,
		Excerpt:     post.Excerpt,
		HTML:        post.HTML,
	}
}

func (a *App) APIListPosts(c *gin.Context) {
	posts, err := a.store.List(c.Request.Context(), ListOptions{
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
	})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (a *App) APIGetPost(c *gin.Context) {
	post, err := a.store.GetBySlug(c.Request.Context(), c.Param("slug"), false)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": publicAPIPost(post)})
}

func (a *App) APIGetPostRaw(c *gin.Context) {
	post, err := a.store.GetBySlug(c.Request.Context(), c.Param("slug"), false)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(post.Markdown))
}

func (a *App) APITags(c *gin.Context) {
	tags, err := a.store.CollectTags(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Admin API

func (a *App) APIAdminListPosts(c *gin.Context) {
	posts, err := a.store.List(c.Request.Context(), ListOptions{
		IncludeDrafts: true,
		Search:        c.Query("search"),
	})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	if status := c.Query("status"); status == StatusDraft || status == StatusPublished {
		filtered := posts[:0]
		for _, post := range posts {
			if post.Status == status {
				filtered = append(filtered, post)
			}
		}
		posts = filtered
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (a *App) APIAdminGetPost(c *gin.Context) {
	post, err := a.store.GetBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

type createPostRequest struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Markdown string   `json:"markdown"`
	Status   string   `json:"status"`
	Tags     []string `json:"tags"`
}

func (a *App) APIAdminCreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errValidation("invalid post payload"))
		c.Abort()
		return
	}
	if req.Title == "" || req.Markdown == "" {
		c.Error(errValidation("title and markdown required"))
		c.Abort()
		return
	}

	post, err := a.store.Create(c.Request.Context(), PostInput{
		Title:    req.Title,
		Slug:     req.Slug,
		Markdown: req.Markdown,
		Status:   req.Status,
		Tags:     normalizeTags(req.Tags),
	})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

type updatePostRequest struct {
	Title    *string   `json:"title"`
	Slug     *string   `json:"slug"`
	Markdown *string   `json:"markdown"`
	Status   *string   `json:"status"`
	Tags     *[]string `json:"tags"`
}

func (a *App) APIAdminUpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errValidation("invalid post payload"))
		c.Abort()
		return
	}

	post, err := a.store.Update(c.Request.Context(), c.Param("slug"), PostPatch{
		Title:    req.Title,
		Slug:     req.Slug,
		Markdown: req.Markdown,
		Status:   req.Status,
		Tags:     req.Tags,
	})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (a *App) APIAdminDeletePost(c *gin.Context) {
	if err := a.store.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) APIRender(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errValidation("invalid render payload"))
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": renderMarkdown(req.Markdown)})
}
