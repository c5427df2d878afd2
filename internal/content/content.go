// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content governs what happens to posts, categories and tags
// between the HTTP layer and the store: validation, slug assignment, term
// resolution, read-triggered counters, the category delete policy and
// cache invalidation.
package content

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"blogify/internal/config"
	"blogify/internal/models"
	"blogify/internal/query"
	"blogify/internal/store"
)

const (
	// FeaturedLimit caps the featured-posts listing.
	FeaturedLimit = 5

	// RelatedLimit caps the related-posts listing.
	RelatedLimit = 3
)

var (
	// ErrNotFound is returned when the addressed entity does not exist or
	// is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write is refused because of the
	// current state of other rows.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries per-field messages for a rejected write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors collects validation messages; the first message per field
// wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// invalid is shorthand for a single-field ValidationError.
func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// PostRepo is the post persistence the service needs.
type PostRepo interface {
	List(ctx context.Context, f query.Filter) ([]models.Post, int, error)
	Featured(ctx context.Context, limit int) ([]models.Post, error)
	Related(ctx context.Context, postID uuid.UUID, limit int) ([]models.Post, error)
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Post, error)
	IncrementViews(ctx context.Context, slug string) (*models.Post, error)
	IncrementLikes(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *models.Post, terms store.TermIDs) (*models.Post, error)
	Update(ctx context.Context, p *models.Post, terms store.TermIDs) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryRepo is the category persistence the service needs.
type CategoryRepo interface {
	List(ctx context.Context, limit, offset int) ([]models.Category, int, error)
	Tree(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID, policy config.DeletePolicy) (bool, error)
}

// TagRepo is the tag persistence the service needs.
type TagRepo interface {
	List(ctx context.Context, limit, offset int) ([]models.Tag, int, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, t *models.Tag) (*models.Tag, error)
	Update(ctx context.Context, t *models.Tag) (*models.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// SearchLogRepo is the search log persistence the service needs.
type SearchLogRepo interface {
	Append(ctx context.Context, q string) (*models.SearchLog, error)
	Log(ctx context.Context, q string)
	List(ctx context.Context, limit, offset int) ([]models.SearchLog, int, error)
}

// MediaChecker reports whether an uploaded media object exists.
type MediaChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Invalidator drops cached responses whose keys start with prefix.
type Invalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Service applies the content rules on top of the stores.
type Service struct {
	posts        PostRepo
	categories   CategoryRepo
	tags         TagRepo
	searches     SearchLogRepo
	media        MediaChecker
	cache        Invalidator
	deletePolicy config.DeletePolicy
}

// NewService creates a Service. media and cache may be nil when S3 or the
// response cache are not configured; pass an untyped nil in that case.
func NewService(posts PostRepo, categories CategoryRepo, tags TagRepo, searches SearchLogRepo, media MediaChecker, cache Invalidator, policy config.DeletePolicy) *Service {
	if !policy.Valid() {
		policy = config.DeleteDetach
	}
	return &Service{
		posts:        posts,
		categories:   categories,
		tags:         tags,
		searches:     searches,
		media:        media,
		cache:        cache,
		deletePolicy: policy,
	}
}

// DeletePolicy returns the category delete policy in effect.
func (s *Service) DeletePolicy() config.DeletePolicy {
	return s.deletePolicy
}

// invalidate clears a cache prefix on a best-effort basis.
func (s *Service) invalidate(ctx context.Context, prefix string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
		slog.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}

// Page is one page of a listing with the total match count.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
}

// pageOffset turns a 1-based page number into limit and offset.
func pageOffset(page int) (int, int) {
	if page < 1 {
		page = 1
	}
	return query.PageSize, (page - 1) * query.PageSize
}
