package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"go.mongodb.org/mongo-driver/mongo"
)

// importFrontMatter is the metadata block accepted at the top of a
// markdown source file.
type importFrontMatter struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Tags        []string  `yaml:"tags"`
	CreatedAt   time.Time `yaml:"createdAt"`
	UpdatedAt   time.Time `yaml:"updatedAt"`
	PublishedAt time.Time `yaml:"publishedAt"`
	Excerpt     string    `yaml:"excerpt"`
	HeroImage   string    `yaml:"heroImage"`
}

// readImportDir parses every *.md file in dir into a post document with
// the given status. A missing directory is not an error.
func readImportDir(dir, status string) ([]postDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var docs []postDocument
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		var meta importFrontMatter
		body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
		if err != nil {
			return nil, fmt.Errorf("parsing front matter of %s: %w", entry.Name(), err)
		}

		baseSlug := meta.Slug
		if baseSlug == "" {
			baseSlug = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}

		markdown := strings.TrimSpace(string(body))
		now := time.Now().UTC()
		createdAt := now
		if !meta.CreatedAt.IsZero() {
			createdAt = meta.CreatedAt
		}
		updatedAt := createdAt
		if !meta.UpdatedAt.IsZero() {
			updatedAt = meta.UpdatedAt
		}

		var publishedAt *time.Time
		if status == StatusPublished {
			at := createdAt
			if !meta.PublishedAt.IsZero() {
				at = meta.PublishedAt
			}
			publishedAt = &at
		}

		title := meta.Title
		if title == "" {
			title = baseSlug
		}
		excerpt := meta.Excerpt
		if excerpt == "" {
			excerpt = buildExcerpt(markdown)
		}

		docs = append(docs, postDocument{
			Slug:        computeSlug(title, baseSlug),
			Title:       title,
			Markdown:    markdown,
			Tags:        normalizeTags(meta.Tags),
			Status:      status,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
			PublishedAt: publishedAt,
			Excerpt:     excerpt,
			HeroImage:   meta.HeroImage,
		})
	}
	return docs, nil
}

// importFromFilesystem seeds the posts collection from content/posts
// (published) and content/drafts (draft) markdown files, but only when
// the collection is empty.
func importFromFilesystem(ctx context.Context, coll *mongo.Collection, contentDir string) error {
	count, err := coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return fmt.Errorf("counting posts: %w", err)
	}
	if count > 0 {
		return nil
	}

	published, err := readImportDir(filepath.Join(contentDir, "posts"), StatusPublished)
	if err != nil {
		return err
	}
	drafts, err := readImportDir(filepath.Join(contentDir, "drafts"), StatusDraft)
	if err != nil {
		return err
	}

	docs := append(published, drafts...)
	if len(docs) == 0 {
		return nil
	}

	payload := make([]any, 0, len(docs))
	for _, doc := range docs {
		payload = append(payload, doc)
	}
	if _, err := coll.InsertMany(ctx, payload); err != nil {
		return fmt.Errorf("importing posts: %w", err)
	}

	log.Printf("[rawdog-blog] imported %d markdown posts from filesystem", len(docs))
	return nil
}
