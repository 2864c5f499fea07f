package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

// postStore is the seam route handlers talk through, so tests can swap
// in an in-memory implementation.
type postStore interface {
	List(ctx context.Context, opts ListOptions) ([]PostSummary, error)
	GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*Post, error)
	Create(ctx context.Context, in PostInput) (*Post, error)
	Update(ctx context.Context, originalSlug string, patch PostPatch) (*Post, error)
	Delete(ctx context.Context, slug string) error
	CollectTags(ctx context.Context) ([]TagCount, error)
}

type ListOptions struct {
	IncludeDrafts bool
	Search        string
	Tag           string
}

func parseTagList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	return normalizeTags(strings.Split(input, ","))
}

func normalizeTags(raw []string) []string {
	var tags []string
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// computeSlug prefers an explicit slug; if slugification leaves nothing
// usable it falls back to the title-derived slug.
func computeSlug(title, desired string) string {
	if desired != "" {
		if s := slug.Make(desired); s != "" {
			return s
		}
	}
	return slug.Make(title)
}

func normalizeStatus(status string) string {
	if status == StatusPublished {
		return StatusPublished
	}
	return StatusDraft
}

// PostRepository is the Mongo-backed post store.
type PostRepository struct {
	coll *mongo.Collection
}

var _ postStore = (*PostRepository)(nil)

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{coll: db.Collection(postsCollection)}
}

func (r *PostRepository) ensureSlugAvailable(ctx context.Context, postSlug string, excludeID *primitive.ObjectID) error {
	filter := bson.M{"slug": postSlug}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	err := r.coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return errConflict("slug %q already exists", postSlug)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("checking slug availability: %w", err)
}

func summaryFromDocument(doc postDocument) PostSummary {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		Slug:        doc.Slug,
		Title:       doc.Title,
		Status:      doc.Status,
		Tags:        tags,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		PublishedAt: doc.PublishedAt,
		Excerpt:     doc.Excerpt,
		HeroImage:   doc.HeroImage,
	}
}

func postFromDocument(doc postDocument) *Post {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Post{
		Slug:        doc.Slug,
		Title:       doc.Title,
		Status:      doc.Status,
		Tags:        tags,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		PublishedAt: doc.PublishedAt,
		Excerpt:     doc.Excerpt,
		Markdown:    doc.Markdown,
		HTML:        renderMarkdown(doc.Markdown),
		HeroImage:   doc.HeroImage,
		Attachments: doc.Attachments,
	}
}

// matchesSearch is a case-insensitive substring match over title and
// excerpt, applied in memory after the query.
func matchesSearch(summary PostSummary, search string) bool {
	lowered := strings.ToLower(search)
	return strings.Contains(strings.ToLower(summary.Title), lowered) ||
		strings.Contains(strings.ToLower(summary.Excerpt), lowered)
}

func (r *PostRepository) List(ctx context.Context, opts ListOptions) ([]PostSummary, error) {
	filter := bson.M{}
	if !opts.IncludeDrafts {
		filter["status"] = StatusPublished
	}
	if opts.Tag != "" {
		filter["tags"] = strings.ToLower(opts.Tag)
	}

	findOpts := options.Find().
		SetProjection(bson.M{"markdown": 0}).
		SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "updatedAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding posts: %w", err)
	}

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

func (r *PostRepository) GetBySlug(ctx context.Context, postSlug string, includeDrafts bool) (*Post, error) {
	normalized := strings.ToLower(strings.TrimSpace(postSlug))
	filter := bson.M{"slug": normalized}
	if !includeDrafts {
		filter["status"] = StatusPublished
	}

	var doc postDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %q: %w", normalized, err)
	}
	return postFromDocument(doc), nil
}

func (r *PostRepository) Create(ctx context.Context, in PostInput) (*Post, error) {
	postSlug := computeSlug(in.Title, in.Slug)
	if postSlug == "" {
		return nil, errValidation("a title or slug is required")
	}
	if err := r.ensureSlugAvailable(ctx, postSlug, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := normalizeStatus(in.Status)
	var publishedAt *time.Time
	if status == StatusPublished {
		publishedAt = &now
	}

	doc := postDocument{
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

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		// The unique index backstops the check-then-insert race.
		if mongo.IsDuplicateKeyError(err) {
			return nil, errConflict("slug %q already exists", postSlug)
		}
		return nil, fmt.Errorf("inserting post: %w", err)
	}

	return r.GetBySlug(ctx, postSlug, true)
}

func (r *PostRepository) Update(ctx context.Context, originalSlug string, patch PostPatch) (*Post, error) {
	normalized := strings.ToLower(strings.TrimSpace(originalSlug))

	var existing postDocument
	err := r.coll.FindOne(ctx, bson.M{"slug": normalized}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNotFound("post with slug %q not found", originalSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("loading post %q: %w", originalSlug, err)
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

	markdown := existing.Markdown
	if patch.Markdown != nil {
		markdown = *patch.Markdown
	}

	tags := existing.Tags
	if patch.Tags != nil {
		tags = normalizeTags(*patch.Tags)
	}

	status := existing.Status
	if patch.Status != nil && (*patch.Status == StatusPublished || *patch.Status == StatusDraft) {
		status = *patch.Status
	}

	heroImage := existing.HeroImage
	if patch.HeroImage != nil {
		heroImage = *patch.HeroImage
	}

	attachments := existing.Attachments
	if patch.Attachments != nil {
		attachments = *patch.Attachments
	}

	now := time.Now().UTC()
	// First publish stamps publishedAt; later edits keep it. Reverting
	// to draft clears it, so a re-publish gets a fresh timestamp.
	var publishedAt *time.Time
	if status == StatusPublished {
		publishedAt = existing.PublishedAt
		if publishedAt == nil {
			publishedAt = &now
		}
	}

	if nextSlug != existing.Slug {
		if err := r.ensureSlugAvailable(ctx, nextSlug, &existing.ID); err != nil {
			return nil, err
		}
	}

	update := bson.M{"$set": bson.M{
		"slug":        nextSlug,
		"title":       title,
		"markdown":    markdown,
		"tags":        tags,
		"status":      status,
		"updatedAt":   now,
		"publishedAt": publishedAt,
		"excerpt":     buildExcerpt(markdown),
		"heroImage":   heroImage,
		"attachments": attachments,
	}}

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": existing.ID}, update); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errConflict("slug %q already exists", nextSlug)
		}
		return nil, fmt.Errorf("updating post %q: %w", originalSlug, err)
	}

	return r.GetBySlug(ctx, nextSlug, true)
}

func (r *PostRepository) Delete(ctx context.Context, postSlug string) error {
	normalized := strings.ToLower(strings.TrimSpace(postSlug))
	result, err := r.coll.DeleteOne(ctx, bson.M{"slug": normalized})
	if err != nil {
		return fmt.Errorf("deleting post %q: %w", postSlug, err)
	}
	if result.DeletedCount == 0 {
		return errNotFound("post with slug %q not found", postSlug)
	}
	return nil
}

func (r *PostRepository) CollectTags(ctx context.Context) ([]TagCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$tags"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("collecting tags: %w", err)
	}

	var rows []struct {
		Tag   string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}

	tags := make([]TagCount, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, TagCount{Tag: row.Tag, Count: row.Count})
	}
	return tags, nil
}
