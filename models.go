package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Post is the full hydrated record returned to views and the JSON API.
// HTML is derived from Markdown at read time and never persisted.
type Post struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
	Excerpt     string     `json:"excerpt"`
	Markdown    string     `json:"markdown"`
	HTML        string     `json:"html"`
	HeroImage   string     `json:"heroImage,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`
}

// PostSummary is a listing row; raw markdown is excluded.
type PostSummary struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
	Excerpt     string     `json:"excerpt"`
	HeroImage   string     `json:"heroImage,omitempty"`
}

// PostInput carries the full field set for a create.
type PostInput struct {
	Title       string
	Slug        string
	Markdown    string
	Status      string
	Tags        []string
	HeroImage   string
	Attachments []string
}

// PostPatch is a partial update; nil fields mean "leave unchanged".
type PostPatch struct {
	Title       *string
	Slug        *string
	Markdown    *string
	Status      *string
	Tags        *[]string
	HeroImage   *string
	Attachments *[]string
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type Session struct {
	Token     string
	ExpiresAt time.Time
}

// postDocument is the stored shape of a post.
type postDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Slug        string             `bson:"slug"`
	Title       string             `bson:"title"`
	Markdown    string             `bson:"markdown"`
	Tags        []string           `bson:"tags"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
	PublishedAt *time.Time         `bson:"publishedAt"`
	Excerpt     string             `bson:"excerpt"`
	HeroImage   string             `bson:"heroImage,omitempty"`
	Attachments []string           `bson:"attachments,omitempty"`
}
