package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

const introSettingKey = "intro"

func (a *App) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) Landing(c *gin.Context) {
	intro, err := a.settings.Get(c.Request.Context(), introSettingKey)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.HTML(http.StatusOK, "landing.html", gin.H{
		"Title":     a.cfg.BlogTitle,
		"BlogTitle": a.cfg.BlogTitle,
		"Intro":     intro,
	})
}

func (a *App) Blogs(c *gin.Context) {
	posts, err := a.store.List(c.Request.Context(), ListOptions{
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
	})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     a.cfg.BlogTitle,
		"BlogTitle": a.cfg.BlogTitle,
		"Posts":     posts,
	})
}

func (a *App) BlogPost(c *gin.Context) {
	post, err := a.store.GetBySlug(c.Request.Context(), c.Param("slug"), false)
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
	c.HTML(http.StatusOK, "post.html", gin.H{
		"Title":     post.Title,
		"BlogTitle": a.cfg.BlogTitle,
		"Post":      post,
	})
}

func (a *App) Portfolio(c *gin.Context) {
	c.HTML(http.StatusOK, "portfolio.html", gin.H{
		"Title":     "Portfolio · " + a.cfg.BlogTitle,
		"BlogTitle": a.cfg.BlogTitle,
	})
}

func (a *App) Resume(c *gin.Context) {
	path := filepath.Join("public", "resume", "resume.pdf")
	if _, err := os.Stat(path); err != nil {
		c.Error(errNotFound("resume not found"))
		c.Abort()
		return
	}
	c.FileAttachment(path, "resume.pdf")
}

// RSSFeed hydrates every published post (the feed carries full HTML
// bodies) and serializes them in list order.
func (a *App) RSSFeed(c *gin.Context) {
	ctx := c.Request.Context()
	summaries, err := a.store.List(ctx, ListOptions{})
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	var posts []Post
	for _, summary := range summaries {
		post, err := a.store.GetBySlug(ctx, summary.Slug, false)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		if post != nil {
			posts = append(posts, *post)
		}
	}

	xml := buildRSSFeed(a.cfg.SiteURL, a.cfg.BlogTitle, "", posts)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(xml))
}
