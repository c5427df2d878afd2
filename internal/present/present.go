// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package present maps stored entities to the JSON shapes the API returns:
// nested category and tag objects, absolute media URLs, rendered post
// bodies and paginated envelopes with next/previous links.
package present

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogify/internal/cache"
	"blogify/internal/markdown"
	"blogify/internal/models"
	"blogify/internal/query"
)

// FileURLer resolves a stored media key to a public URL.
type FileURLer interface {
	FileURL(key string) string
}

// HTMLCache stores rendered post bodies.
type HTMLCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

// Presenter builds response views. files and html may be nil when S3 or
// Valkey are not configured; pass an untyped nil in that case.
type Presenter struct {
	files    FileURLer
	mediaURL string
	html     HTMLCache
}

// New creates a Presenter. mediaURL is the path prefix joined to the
// request origin when no object storage is configured.
func New(files FileURLer, mediaURL string, html HTMLCache) *Presenter {
	if mediaURL == "" {
		mediaURL = "/media/"
	}
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	return &Presenter{files: files, mediaURL: mediaURL, html: html}
}

// PostView is the wire form of a post.
type PostView struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content"`
	ContentHTML   string        `json:"content_html,omitempty"`
	Excerpt       string        `json:"excerpt"`
	Author        string        `json:"author"`
	FeaturedImage *string       `json:"featured_image"`
	Thumbnail     *string       `json:"thumbnail"`
	Views         int64         `json:"views"`
	Likes         int64         `json:"likes"`
	IsFeatured    bool          `json:"is_featured"`
	Published     bool          `json:"published"`
	Categories    []models.Term `json:"categories"`
	Tags          []models.Term `json:"tags"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Post returns the detail view of p, including the rendered body.
func (pr *Presenter) Post(r *http.Request, p *models.Post) PostView {
	v := pr.summary(r, p)
	v.ContentHTML = pr.renderHTML(r.Context(), p)
	return v
}

// Posts returns list views, which omit the rendered body.
func (pr *Presenter) Posts(r *http.Request, posts []models.Post) []PostView {
	out := make([]PostView, len(posts))
	for i := range posts {
		out[i] = pr.summary(r, &posts[i])
	}
	return out
}

func (pr *Presenter) summary(r *http.Request, p *models.Post) PostView {
	return PostView{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       markdown.Excerpt(p.Content, markdown.ExcerptLen),
		Author:        p.Author,
		FeaturedImage: pr.mediaRef(r, p.FeaturedImage),
		Thumbnail:     pr.mediaRef(r, p.Thumbnail),
		Views:         p.Views,
		Likes:         p.Likes,
		IsFeatured:    p.IsFeatured,
		Published:     p.Published,
		Categories:    nonNilTerms(p.Categories),
		Tags:          nonNilTerms(p.Tags),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// renderHTML converts the body to HTML, reusing a cached rendering of the
// same revision when one exists.
func (pr *Presenter) renderHTML(ctx context.Context, p *models.Post) string {
	if p.Content == "" {
		return ""
	}
	key := cache.PostHTMLKey(p.ID, p.UpdatedAt)
	if pr.html != nil {
		if b, ok := pr.html.Get(ctx, key); ok {
			return string(b)
		}
	}
	out, err := markdown.ToHTML(p.Content)
	if err != nil {
		slog.Warn("markdown render failed", "post", p.ID, "error", err)
		return ""
	}
	if pr.html != nil {
		pr.html.Set(ctx, key, []byte(out))
	}
	return out
}

func nonNilTerms(t []models.Term) []models.Term {
	if t == nil {
		return []models.Term{}
	}
	return t
}

// CategoryView is the wire form of a category.
type CategoryView struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	PostCount   int        `json:"post_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CategoryNode is a category with its subcategories.
type CategoryNode struct {
	CategoryView
	Depth    int            `json:"depth"`
	Children []CategoryNode `json:"children"`
}

// Category returns the view of c.
func Category(c *models.Category) CategoryView {
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		PostCount:   c.PostCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Categories returns flat views.
func Categories(cs []models.Category) []CategoryView {
	out := make([]CategoryView, len(cs))
	for i := range cs {
		out[i] = Category(&cs[i])
	}
	return out
}

// CategoryTree returns nested views of an already nested category list.
func CategoryTree(roots []models.Category) []CategoryNode {
	out := make([]CategoryNode, len(roots))
	for i := range roots {
		out[i] = CategoryNode{
			CategoryView: Category(&roots[i]),
			Depth:        roots[i].Depth,
			Children:     CategoryTree(roots[i].Children),
		}
	}
	return out
}

// TagView is the wire form of a tag.
type TagView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag returns the view of t.
func Tag(t *models.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: t.CreatedAt}
}

// Tags returns views of ts.
func Tags(ts []models.Tag) []TagView {
	out := make([]TagView, len(ts))
	for i := range ts {
		out[i] = Tag(&ts[i])
	}
	return out
}

// SearchLogView is the wire form of a search log entry.
type SearchLogView struct {
	ID         int64     `json:"id"`
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}

// SearchLogs returns views of entries.
func SearchLogs(entries []models.SearchLog) []SearchLogView {
	out := make([]SearchLogView, len(entries))
	for i, e := range entries {
		out[i] = SearchLogView{ID: e.ID, Query: e.Query, SearchedAt: e.SearchedAt}
	}
	return out
}

// Page is the paginated envelope every listing returns.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage wraps results for page out of total matches. The links repeat
// the request's other query parameters.
func NewPage[T any](r *http.Request, total, page int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	if page < 1 {
		page = 1
	}
	p := Page[T]{Count: total, Results: results}
	if page*query.PageSize < total {
		p.Next = pageLink(r, page+1)
	}
	if page > 1 {
		p.Previous = pageLink(r, page-1)
	}
	return p
}

// pageLink returns the absolute URL of the current request at page. The
// first page carries no page parameter.
func pageLink(r *http.Request, page int) *string {
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	s := Origin(r) + u.String()
	return &s
}
