// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"blogify/internal/cache"
	"blogify/internal/models"
	"blogify/internal/query"
	"blogify/internal/store"
)

// ListPosts returns a page of published posts matching f. Whatever f says
// about publication, drafts stay hidden.
func (s *Service) ListPosts(ctx context.Context, f query.Filter) (Page[models.Post], error) {
	return s.listPosts(ctx, f.Public())
}

// EditorListPosts returns a page of posts matching f, drafts included
// unless f filters on publication.
func (s *Service) EditorListPosts(ctx context.Context, f query.Filter) (Page[models.Post], error) {
	return s.listPosts(ctx, f)
}

// Search is ListPosts that also records a non-empty free-text query in the
// search log. Logging failures never fail the search.
func (s *Service) Search(ctx context.Context, f query.Filter) (Page[models.Post], error) {
	if f.Text != "" {
		s.searches.Log(ctx, f.Text)
	}
	return s.ListPosts(ctx, f)
}

func (s *Service) listPosts(ctx context.Context, f query.Filter) (Page[models.Post], error) {
	posts, total, err := s.posts.List(ctx, f)
	if err != nil {
		return Page[models.Post]{}, err
	}
	return Page[models.Post]{Items: posts, Total: total, Page: f.PageNumber()}, nil
}

// ViewPost is the public detail read: it adds one view to a published post
// atomically and returns the post with the new count.
func (s *Service) ViewPost(ctx context.Context, slug string) (*models.Post, error) {
	if !lookupSlug(slug) {
		return nil, ErrNotFound
	}
	p, err := s.posts.IncrementViews(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// LikePost adds one like to a published post atomically.
func (s *Service) LikePost(ctx context.Context, slug string) (*models.Post, error) {
	if !lookupSlug(slug) {
		return nil, ErrNotFound
	}
	p, err := s.posts.IncrementLikes(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// EditorPost returns any post by slug without touching its counters.
func (s *Service) EditorPost(ctx context.Context, slug string) (*models.Post, error) {
	return s.findPost(ctx, slug, false)
}

// RelatedPosts returns published posts sharing a category or tag with the
// published post at slug.
func (s *Service) RelatedPosts(ctx context.Context, slug string) ([]models.Post, error) {
	p, err := s.findPost(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	return s.posts.Related(ctx, p.ID, RelatedLimit)
}

// FeaturedPosts returns the newest published, featured posts, at most
// FeaturedLimit of them. Featured drafts are never included.
func (s *Service) FeaturedPosts(ctx context.Context) ([]models.Post, error) {
	return s.posts.Featured(ctx, FeaturedLimit)
}

// CreatePost validates in, assigns a slug when none is given and stores
// the post with its categories and tags.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	errs := fieldErrors{}
	checkText(errs, "title", in.Title, true, maxTitleLen)
	checkText(errs, "content", in.Content, false, maxContentLen)
	checkText(errs, "author", in.Author, false, maxAuthorLen)

	p := &models.Post{}
	if err := s.applyMedia(ctx, errs, in, p); err != nil {
		return nil, err
	}
	terms, err := s.resolveTerms(ctx, errs, in)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	p.Title = *in.Title
	p.Content = deref(in.Content)
	p.Author = deref(in.Author)
	p.IsFeatured = in.IsFeatured != nil && *in.IsFeatured
	p.Published = in.Published != nil && *in.Published

	p.Slug, err = assignSlug(ctx, "post", in.Slug, p.Title, maxSlugLen, s.posts.SlugExists)
	if err != nil {
		return nil, err
	}

	created, err := s.posts.Create(ctx, p, terms)
	if errors.Is(err, store.ErrSlugTaken) && derivedSlug(in.Slug) {
		// A concurrent writer took the derived slug after the check.
		if p.Slug, err = assignSlug(ctx, "post", nil, p.Title, maxSlugLen, s.posts.SlugExists); err != nil {
			return nil, err
		}
		created, err = s.posts.Create(ctx, p, terms)
	}
	if errors.Is(err, store.ErrSlugTaken) {
		return nil, slugTaken("post")
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdatePost applies the fields present in in to the post at slug. A title
// change never regenerates the slug; only an explicit slug does.
func (s *Service) UpdatePost(ctx context.Context, slug string, in PostInput) (*models.Post, error) {
	p, err := s.findPost(ctx, slug, false)
	if err != nil {
		return nil, err
	}

	// Absent fields are left alone; a present title may still not be blank.
	errs := fieldErrors{}
	checkText(errs, "title", in.Title, in.Title != nil, maxTitleLen)
	checkText(errs, "content", in.Content, false, maxContentLen)
	checkText(errs, "author", in.Author, false, maxAuthorLen)
	if err := s.applyMedia(ctx, errs, in, p); err != nil {
		return nil, err
	}
	terms, err := s.resolveTerms(ctx, errs, in)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if in.Slug != nil {
		if p.Slug, err = explicitSlug(ctx, "post", *in.Slug, p.Slug, maxSlugLen, s.posts.SlugExists); err != nil {
			return nil, err
		}
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Author != nil {
		p.Author = *in.Author
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Published != nil {
		p.Published = *in.Published
	}

	updated, err := s.posts.Update(ctx, p, terms)
	if errors.Is(err, store.ErrSlugTaken) {
		return nil, slugTaken("post")
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.invalidate(ctx, cache.PostHTMLPrefix(p.ID))
	return updated, nil
}

// DeletePost removes the post at slug.
func (s *Service) DeletePost(ctx context.Context, slug string) error {
	p, err := s.findPost(ctx, slug, false)
	if err != nil {
		return err
	}
	ok, err := s.posts.Delete(ctx, p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.invalidate(ctx, cache.PostHTMLPrefix(p.ID))
	return nil
}

func (s *Service) findPost(ctx context.Context, slug string, publishedOnly bool) (*models.Post, error) {
	if !lookupSlug(slug) {
		return nil, ErrNotFound
	}
	p, err := s.posts.FindBySlug(ctx, slug, publishedOnly)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// applyMedia validates the media references present in in and copies them
// onto p. An empty string clears the reference like null does.
func (s *Service) applyMedia(ctx context.Context, errs fieldErrors, in PostInput, p *models.Post) error {
	fields := []struct {
		name string
		val  Nullable[string]
		dst  **string
	}{
		{"featured_image", in.FeaturedImage, &p.FeaturedImage},
		{"thumbnail", in.Thumbnail, &p.Thumbnail},
	}
	for _, f := range fields {
		if !f.val.Set {
			continue
		}
		ref := strings.TrimSpace(f.val.Value)
		if f.val.Null || ref == "" {
			*f.dst = nil
			continue
		}
		if utf8.RuneCountInString(ref) > maxMediaRefLen {
			errs.add(f.name, fmt.Sprintf("ensure this field has no more than %d characters", maxMediaRefLen))
			continue
		}
		if s.media != nil && !isAbsoluteURL(ref) {
			ok, err := s.media.Exists(ctx, ref)
			if err != nil {
				return fmt.Errorf("check %s: %w", f.name, err)
			}
			if !ok {
				errs.add(f.name, "no uploaded file with this key")
				continue
			}
		}
		*f.dst = &ref
	}
	return nil
}

// resolveTerms maps the category and tag slugs in in to ids. Unknown slugs
// become field errors. A nil list in in stays nil.
func (s *Service) resolveTerms(ctx context.Context, errs fieldErrors, in PostInput) (store.TermIDs, error) {
	var terms store.TermIDs

	if in.Categories != nil {
		want := normaliseSlugs(*in.Categories)
		found, err := s.categories.FindBySlugs(ctx, want)
		if err != nil {
			return terms, err
		}
		ids := make(map[string]uuid.UUID, len(found))
		for _, c := range found {
			ids[c.Slug] = c.ID
		}
		terms.Categories = collectIDs(errs, "categories", "category", want, ids)
	}

	if in.Tags != nil {
		want := normaliseSlugs(*in.Tags)
		found, err := s.tags.FindBySlugs(ctx, want)
		if err != nil {
			return terms, err
		}
		ids := make(map[string]uuid.UUID, len(found))
		for _, t := range found {
			ids[t.Slug] = t.ID
		}
		terms.Tags = collectIDs(errs, "tags", "tag", want, ids)
	}
	return terms, nil
}

// collectIDs returns the ids for want in order, recording the first
// unknown slug as a field error. The result is non-nil so an empty list
// clears the association.
func collectIDs(errs fieldErrors, field, kind string, want []string, ids map[string]uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(want))
	for _, slug := range want {
		id, ok := ids[slug]
		if !ok {
			errs.add(field, fmt.Sprintf("unknown %s %q", kind, slug))
			continue
		}
		out = append(out, id)
	}
	return out
}

// normaliseSlugs trims, lowercases and de-duplicates slugs, keeping order.
func normaliseSlugs(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
