package main

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memPostStore is an in-memory postStore for handler tests. It mirrors
// the repository's semantics (slug conflicts, patch rules, publish
// timestamps, sort order) without needing a database.
type memPostStore struct {
	mu    sync.Mutex
	now   func() time.Time
	posts map[string]postDocument
}

var _ postStore = (*memPostStore)(nil)

func newMemPostStore() *memPostStore {
	return &memPostStore{
		now:   func() time.Time { return time.Now().UTC() },
		posts: make(map[string]postDocument),
	}
}

func (s *memPostStore) List(_ context.Context, opts ListOptions) ([]PostSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []postDocument
	for _, doc := range s.posts {
		if !opts.IncludeDrafts && doc.Status != StatusPublished {
			continue
		}
		if opts.Tag != "" && !containsTag(doc.Tags, strings.ToLower(opts.Tag)) {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		pi, pj := docs[i].PublishedAt, docs[j].PublishedAt
		switch {
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.After(*pj)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})

	summaries := make([]PostSummary, 0, len(docs))
	for _, doc := range docs {
		summary := summaryFromDocument(doc)
		if opts.Search != "" && !matchesSearch(summary, opts.Search) {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *memPostStore) GetBySlug(_ context.Context, postSlug string, includeDrafts bool) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.posts[strings.ToLower(strings.TrimSpace(postSlug))]
	if !ok {
		return nil, nil
	}
	if !includeDrafts && doc.Status != StatusPublished {
		return nil, nil
	}
	return postFromDocument(doc), nil
}

func (s *memPostStore) Create(_ context.Context, in PostInput) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	postSlug := computeSlug(in.Title, in.Slug)
	if postSlug == "" {
		return nil, errValidation("a title or slug is required")
	}
	if _, exists := s.posts[postSlug]; exists {
		return nil, errConflict("slug %q already exists", postSlug)
	}

	now := s.now()
	status := normalizeStatus(in.Status)
	var publishedAt *time.Time
	if status == StatusPublished {
		publishedAt = &now
	}

	s.posts[postSlug] = postDocument{
		Slug:        postSlug,
		Title:       in.Title,
		Markdown:    in.Markdown,
		Tags:        normalizeTags(in.Tags),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: publishedAt,
		Excerpt:     buildExcerpt(in.Markdown),
		HeroImage:   in.HeroImage,
		Attachments: in.Attachments,
	}
	return postFromDocument(s.posts[postSlug]), nil
}

func (s *memPostStore) Update(_ context.Context, originalSlug string, patch PostPatch) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := strings.ToLower(strings.TrimSpace(originalSlug))
	existing, ok := s.posts[normalized]
	if !ok {
		return nil, errNotFound("post with slug %q not found", originalSlug)
	}

	title := existing.Title
	if patch.Title != nil && *patch.Title != "" {
		title = *patch.Title
	}
	desiredSlug := existing.Slug
	if patch.Slug != nil && *patch.Slug != "" {
		desiredSlug = *patch.Slug
	}
	nextSlug := computeSlug(title, desiredSlug)

	if patch.Markdown != nil {
		existing.Markdown = *patch.Markdown
	}
	if patch.Tags != nil {
		existing.Tags = normalizeTags(*patch.Tags)
	}
	if patch.Status != nil && (*patch.Status == StatusPublished || *patch.Status == StatusDraft) {
		existing.Status = *patch.Status
	}
	if patch.HeroImage != nil {
		existing.HeroImage = *patch.HeroImage
	}
	if patch.Attachments != nil {
		existing.Attachments = *patch.Attachments
	}

	now := s.now()
	if existing.Status == StatusPublished {
		if existing.PublishedAt == nil {
			existing.PublishedAt = &now
		}
	} else {
		existing.PublishedAt = nil
	}

	if nextSlug != existing.Slug {
		if _, taken := s.posts[nextSlug]; taken {
			return nil, errConflict("slug %q already exists", nextSlug)
		}
		delete(s.posts, existing.Slug)
	}

	existing.Slug = nextSlug
	existing.Title = title
	existing.UpdatedAt = now
	existing.Excerpt = buildExcerpt(existing.Markdown)
	s.posts[nextSlug] = existing
	return postFromDocument(existing), nil
}

func (s *memPostStore) Delete(_ context.Context, postSlug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := strings.ToLower(strings.TrimSpace(postSlug))
	if _, ok := s.posts[normalized]; !ok {
		return errNotFound("post with slug %q not found", postSlug)
	}
	delete(s.posts, normalized)
	return nil
}

func (s *memPostStore) CollectTags(_ context.Context) ([]TagCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, doc := range s.posts {
		for _, tag := range doc.Tags {
			counts[tag]++
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}

type memSettingsStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ settingsStore = (*memSettingsStore)(nil)

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{values: make(map[string]string)}
}

func (s *memSettingsStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *memSettingsStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
