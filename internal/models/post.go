// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog article. Publication and promotion are two independent
// flags: a post may be featured while unpublished, but it is only shown
// publicly once published.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	FeaturedImage *string   `json:"featured_image,omitempty"` // media reference, not a URL
	Thumbnail     *string   `json:"thumbnail,omitempty"`      // media reference, not a URL
	Views         int64     `json:"views"`
	Likes         int64     `json:"likes"`
	IsFeatured    bool      `json:"is_featured"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Populated by store methods that load associations.
	Categories []Term `json:"categories"`
	Tags       []Term `json:"tags"`
}

// PubliclyFeatured reports whether the post belongs in the public featured
// listing: both flags must hold.
func (p *Post) PubliclyFeatured() bool {
	return p.IsFeatured && p.Published
}

// Term is the compact form of a category or tag attached to a post.
type Term struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}
