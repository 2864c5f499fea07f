package main

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

func splitByStatus(posts []PostSummary) (published, drafts []PostSummary) {
	for _, post := range posts {
		if post.Status == StatusPublished {
			published = append(published, post)
		} else {
			drafts = append(drafts, post)
		}
	}
	return published, drafts
}

func (a *App) AdminLogin(c *gin.Context) {
	if a.isAuthenticated(c) {
		c.Redirect(http.StatusFound, "/admin/posts")
		return
	}
	c.HTML(http.StatusOK, "admin_login.html", gin.H{
		"Title":     "Login · " + a.cfg.BlogTitle,
		"BlogTitle": a.cfg.BlogTitle,
	})
}

func (a *App) AdminPosts(c *gin.Context) {
	posts, err := a.store.List(c.Request.Context(), ListOptions{IncludeDrafts: true})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	published, drafts := splitByStatus(posts)
	c.HTML(http.StatusOK, "admin_posts.html", gin.H{
		"Title":     "Posts · " + a.cfg.BlogTitle,
		"BlogTitle": a.cfg.BlogTitle,
		"Published": published,
		"Drafts":    drafts,
	})
}

func (a *App) NewPost(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_edit.html", gin.H{
		"Title":     "New Post · " + a.cfg.BlogTitle,
		"BlogTitle": a.cfg.BlogTitle,
	})
}

func (a *App) EditPost(c *gin.Context) {
	post, err := a.store.GetBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if post == nil {
		c.Error(errNotFound("post not found"))
		c.Abort()
		return
	}
	c.HTML(http.StatusOK, "admin_edit.html", gin.H{
		"Title":       "Edit " + post.Title + " · " + a.cfg.BlogTitle,
		"BlogTitle":   a.cfg.BlogTitle,
		"Post":        post,
		"PreviewHTML": post.HTML,
		"Message":     c.Query("message"),
	})
}

type previewRequest struct {
	Markdown string `json:"markdown"`
}

func (a *App) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errValidation("invalid preview payload"))
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": renderMarkdown(req.Markdown)})
}

func (a *App) UploadMedia(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.Error(errValidation("no image provided"))
		c.Abort()
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.Error(errPayloadTooLarge("image exceeds the 5 MB upload limit"))
		c.Abort()
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	result, err := a.uploader.Save(data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	name := fileHeader.Filename
	if name == "" {
		name = "image"
	}
	c.JSON(http.StatusOK, gin.H{
		"url":      result.URL,
		"key":      result.Key,
		"markdown": "![" + name + "](" + result.URL + ")",
	})
}

// SavePost handles both create and update from the editor form. An
// "action" of publish forces published status; otherwise the status
// field decides (defaulting to draft).
func (a *App) SavePost(c *gin.Context) {
	originalSlug := c.PostForm("originalSlug")
	title := c.PostForm("title")
	desiredSlug := c.PostForm("slug")
	tags := parseTagList(c.PostForm("tags"))
	markdown := c.PostForm("markdown")

	status := normalizeStatus(c.PostForm("status"))
	if c.PostForm("action") == "publish" {
		status = StatusPublished
	}

	var (
		saved *Post
		err   error
	)
	if originalSlug == "" {
		saved, err = a.store.Create(c.Request.Context(), PostInput{
			Title:    title,
			Slug:     desiredSlug,
			Markdown: markdown,
			Tags:     tags,
			Status:   status,
		})
	} else {
		saved, err = a.store.Update(c.Request.Context(), originalSlug, PostPatch{
			Title:    &title,
			Slug:     &desiredSlug,
			Markdown: &markdown,
			Tags:     &tags,
			Status:   &status,
		})
	}
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	message := "Draft saved"
	if status == StatusPublished {
		message = "Post published"
	}
	c.Redirect(http.StatusFound, "/admin/posts/"+saved.Slug+"/edit?message="+url.QueryEscape(message))
}

func (a *App) DeletePost(c *gin.Context) {
	if err := a.store.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.Redirect(http.StatusFound, "/admin/posts")
}

func (a *App) SaveSettings(c *gin.Context) {
	if err := a.settings.Set(c.Request.Context(), introSettingKey, c.PostForm("intro")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.Redirect(http.StatusFound, "/admin/posts?message="+url.QueryEscape("Settings saved"))
}
