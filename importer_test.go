package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeImportFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestReadImportDirMissingDirectory(t *testing.T) {
	docs, err := readImportDir(filepath.Join(t.TempDir(), "nope"), StatusPublished)
	if err != nil {
		t.Fatalf("expected missing dir to be tolerated, got %v", err)
	}
	if docs != nil {
		t.Errorf("expected nil docs, got %v", docs)
	}
}

func TestReadImportDirWithFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeImportFile(t, dir, "first-post.md", `---
title: First Post
slug: custom-slug
tags: [Go, Web]
createdAt: 2024-05-01T00:00:00Z
publishedAt: 2024-05-02T00:00:00Z
excerpt: A hand-written excerpt.
---

# First

Body text here.
`)

	docs, err := readImportDir(dir, StatusPublished)
	if err != nil {
		t.Fatalf("reading import dir: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(docs))
	}

	doc := docs[0]
	if doc.Slug != "custom-slug" {
		t.Errorf("expected slug custom-slug, got %q", doc.Slug)
	}
	if doc.Title != "First Post" {
		t.Errorf("expected title from front matter, got %q", doc.Title)
	}
	if !reflect.DeepEqual(doc.Tags, []string{"go", "web"}) {
		t.Errorf("expected normalized tags, got %v", doc.Tags)
	}
	if doc.Excerpt != "A hand-written excerpt." {
		t.Errorf("expected excerpt from front matter, got %q", doc.Excerpt)
	}
	if doc.Status != StatusPublished {
		t.Errorf("expected published status, got %q", doc.Status)
	}
	wantPublished := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	if doc.PublishedAt == nil || !doc.PublishedAt.Equal(wantPublished) {
		t.Errorf("expected publishedAt %v, got %v", wantPublished, doc.PublishedAt)
	}
	if !doc.CreatedAt.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected createdAt %v", doc.CreatedAt)
	}
	if doc.Markdown != "# First\n\nBody text here." {
		t.Errorf("unexpected markdown body %q", doc.Markdown)
	}
}

func TestReadImportDirWithoutFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeImportFile(t, dir, "plain-notes.md", "Just some plain markdown.\n")

	docs, err := readImportDir(dir, StatusDraft)
	if err != nil {
		t.Fatalf("reading import dir: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(docs))
	}

	doc := docs[0]
	if doc.Slug != "plain-notes" {
		t.Errorf("expected slug from filename, got %q", doc.Slug)
	}
	if doc.Title != "plain-notes" {
		t.Errorf("expected title fallback to slug, got %q", doc.Title)
	}
	if doc.Status != StatusDraft {
		t.Errorf("expected draft status, got %q", doc.Status)
	}
	if doc.PublishedAt != nil {
		t.Errorf("expected nil publishedAt on draft, got %v", doc.PublishedAt)
	}
	if doc.Excerpt == "" {
		t.Error("expected excerpt derived from body")
	}
}

func TestReadImportDirSkipsNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeImportFile(t, dir, "ignore.txt", "not markdown")
	writeImportFile(t, dir, "keep.md", "kept")
	if err := os.Mkdir(filepath.Join(dir, "sub.md"), 0o755); err != nil {
		t.Fatalf("creating subdir: %v", err)
	}

	docs, err := readImportDir(dir, StatusDraft)
	if err != nil {
		t.Fatalf("reading import dir: %v", err)
	}
	if len(docs) != 1 || docs[0].Slug != "keep" {
		t.Errorf("expected only keep.md imported, got %v", docs)
	}
}
