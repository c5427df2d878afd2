// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogify/internal/config"
	"blogify/internal/models"
	"blogify/internal/query"
	"blogify/internal/store"
)

// fakePosts is an in-memory PostRepo keyed by slug.
type fakePosts struct {
	mu       sync.Mutex
	bySlug   map[string]*models.Post
	terms    map[uuid.UUID]store.TermIDs
	lastList query.Filter
	err      error
	// steal makes the next Create for this slug lose to another writer.
	steal string
}

func newFakePosts() *fakePosts {
	return &fakePosts{bySlug: map[string]*models.Post{}, terms: map[uuid.UUID]store.TermIDs{}}
}

func (f *fakePosts) List(_ context.Context, q query.Filter) ([]models.Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = q
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []models.Post
	for _, p := range f.bySlug {
		if q.Published != nil && p.Published != *q.Published {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakePosts) Featured(_ context.Context, limit int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, p := range f.bySlug {
		if p.PubliclyFeatured() && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePosts) Related(_ context.Context, id uuid.UUID, limit int) ([]models.Post, error) {
	return nil, nil
}

func (f *fakePosts) FindBySlug(_ context.Context, slug string, publishedOnly bool) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.bySlug[slug]
	if !ok || (publishedOnly && !p.Published) {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) bump(slug string, field func(*models.Post)) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.bySlug[slug]
	if !ok || !p.Published {
		return nil, nil
	}
	field(p)
	cp := *p
	return &cp, nil
}

func (f *fakePosts) IncrementViews(_ context.Context, slug string) (*models.Post, error) {
	return f.bump(slug, func(p *models.Post) { p.Views++ })
}

func (f *fakePosts) IncrementLikes(_ context.Context, slug string) (*models.Post, error) {
	return f.bump(slug, func(p *models.Post) { p.Likes++ })
}

func (f *fakePosts) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.bySlug[slug]
	return ok, nil
}

func (f *fakePosts) Create(_ context.Context, p *models.Post, terms store.TermIDs) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.steal != "" && f.steal == p.Slug {
		f.steal = ""
		f.bySlug[p.Slug] = &models.Post{ID: uuid.New(), Slug: p.Slug}
		return nil, store.ErrSlugTaken
	}
	if _, ok := f.bySlug[p.Slug]; ok {
		return nil, store.ErrSlugTaken
	}
	cp := *p
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.bySlug[cp.Slug] = &cp
	f.terms[cp.ID] = terms
	out := cp
	return &out, nil
}

func (f *fakePosts) Update(_ context.Context, p *models.Post, terms store.TermIDs) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for slug, existing := range f.bySlug {
		if existing.ID == p.ID {
			delete(f.bySlug, slug)
			cp := *p
			cp.UpdatedAt = time.Now()
			f.bySlug[cp.Slug] = &cp
			prev := f.terms[cp.ID]
			if terms.Categories != nil {
				prev.Categories = terms.Categories
			}
			if terms.Tags != nil {
				prev.Tags = terms.Tags
			}
			f.terms[cp.ID] = prev
			out := cp
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for slug, p := range f.bySlug {
		if p.ID == id {
			delete(f.bySlug, slug)
			return true, nil
		}
	}
	return false, nil
}

// fakeCategories is an in-memory CategoryRepo.
type fakeCategories struct {
	items      map[string]*models.Category
	cycle      bool
	inUse      bool
	lastPolicy config.DeletePolicy
	err        error
	steal      string
}

func newFakeCategories(slugs ...string) *fakeCategories {
	f := &fakeCategories{items: map[string]*models.Category{}}
	for _, s := range slugs {
		f.items[s] = &models.Category{ID: uuid.New(), Name: s, Slug: s}
	}
	return f
}

func (f *fakeCategories) List(_ context.Context, limit, offset int) ([]models.Category, int, error) {
	var out []models.Category
	for _, c := range f.items {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeCategories) Tree(context.Context) ([]models.Category, error) { return nil, nil }

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.items[slug]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) FindBySlugs(_ context.Context, slugs []string) ([]models.Category, error) {
	var out []models.Category
	for _, s := range slugs {
		if c, ok := f.items[s]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategories) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := f.items[slug]
	return ok, nil
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	if _, ok := f.items[c.Slug]; ok {
		return nil, store.ErrSlugTaken
	}
	if f.steal != "" && f.steal == c.Slug {
		f.steal = ""
		f.items[c.Slug] = &models.Category{ID: uuid.New(), Slug: c.Slug}
		return nil, store.ErrSlugTaken
	}
	cp := *c
	cp.ID = uuid.New()
	f.items[cp.Slug] = &cp
	out := cp
	return &out, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	if f.cycle {
		return nil, store.ErrCategoryCycle
	}
	for slug, existing := range f.items {
		if existing.ID == c.ID {
			delete(f.items, slug)
			cp := *c
			f.items[cp.Slug] = &cp
			out := cp
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Delete(_ context.Context, id uuid.UUID, policy config.DeletePolicy) (bool, error) {
	f.lastPolicy = policy
	if policy == config.DeleteRestrict && f.inUse {
		return false, store.ErrCategoryInUse
	}
	for slug, c := range f.items {
		if c.ID == id {
			delete(f.items, slug)
			return true, nil
		}
	}
	return false, nil
}

// fakeTags is an in-memory TagRepo.
type fakeTags struct {
	items map[string]*models.Tag
	err   error
	steal string
}

func newFakeTags(slugs ...string) *fakeTags {
	f := &fakeTags{items: map[string]*models.Tag{}}
	for _, s := range slugs {
		f.items[s] = &models.Tag{ID: uuid.New(), Name: s, Slug: s}
	}
	return f
}

func (f *fakeTags) List(_ context.Context, limit, offset int) ([]models.Tag, int, error) {
	var out []models.Tag
	for _, t := range f.items {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (f *fakeTags) FindBySlug(_ context.Context, slug string) (*models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.items[slug]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTags) FindBySlugs(_ context.Context, slugs []string) ([]models.Tag, error) {
	var out []models.Tag
	for _, s := range slugs {
		if t, ok := f.items[s]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTags) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := f.items[slug]
	return ok, nil
}

func (f *fakeTags) Create(_ context.Context, t *models.Tag) (*models.Tag, error) {
	if _, ok := f.items[t.Slug]; ok {
		return nil, store.ErrSlugTaken
	}
	if f.steal != "" && f.steal == t.Slug {
		f.steal = ""
		f.items[t.Slug] = &models.Tag{ID: uuid.New(), Slug: t.Slug}
		return nil, store.ErrSlugTaken
	}
	cp := *t
	cp.ID = uuid.New()
	f.items[cp.Slug] = &cp
	out := cp
	return &out, nil
}

func (f *fakeTags) Update(_ context.Context, t *models.Tag) (*models.Tag, error) {
	for slug, existing := range f.items {
		if existing.ID == t.ID {
			delete(f.items, slug)
			cp := *t
			f.items[cp.Slug] = &cp
			out := cp
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeTags) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	for slug, t := range f.items {
		if t.ID == id {
			delete(f.items, slug)
			return true, nil
		}
	}
	return false, nil
}

// fakeSearches records appended and logged queries.
type fakeSearches struct {
	mu     sync.Mutex
	logged []string
}

func (f *fakeSearches) Append(_ context.Context, q string) (*models.SearchLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, q)
	return &models.SearchLog{ID: int64(len(f.logged)), Query: q, SearchedAt: time.Now()}, nil
}

func (f *fakeSearches) Log(ctx context.Context, q string) { f.Append(ctx, q) }

func (f *fakeSearches) List(_ context.Context, limit, offset int) ([]models.SearchLog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SearchLog
	for i, q := range f.logged {
		out = append(out, models.SearchLog{ID: int64(i + 1), Query: q})
	}
	return out, len(out), nil
}

// fakeMedia reports keys in its set as existing.
type fakeMedia map[string]bool

func (f fakeMedia) Exists(_ context.Context, key string) (bool, error) {
	return f[key], nil
}

// fakeCache records invalidated prefixes.
type fakeCache struct {
	prefixes []string
}

func (f *fakeCache) InvalidatePrefix(_ context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	return nil
}

// testService bundles a Service with its fakes.
type testService struct {
	*Service
	posts      *fakePosts
	categories *fakeCategories
	tags       *fakeTags
	searches   *fakeSearches
	cache      *fakeCache
}

func newTestService(policy config.DeletePolicy) *testService {
	ts := &testService{
		posts:      newFakePosts(),
		categories: newFakeCategories("tech", "food"),
		tags:       newFakeTags("go", "rust"),
		searches:   &fakeSearches{},
		cache:      &fakeCache{},
	}
	ts.Service = NewService(ts.posts, ts.categories, ts.tags, ts.searches,
		fakeMedia{"uploads/cover.png": true}, ts.cache, policy)
	return ts
}

func ptr[T any](v T) *T { return &v }
