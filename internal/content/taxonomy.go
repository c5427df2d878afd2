// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogify/internal/cache"
	"blogify/internal/models"
	"blogify/internal/store"
)

// ListCategories returns a page of categories, busiest first, each with a
// post count computed by the query.
func (s *Service) ListCategories(ctx context.Context, page int) (Page[models.Category], error) {
	limit, offset := pageOffset(page)
	items, total, err := s.categories.List(ctx, limit, offset)
	if err != nil {
		return Page[models.Category]{}, err
	}
	return Page[models.Category]{Items: items, Total: total, Page: max(page, 1)}, nil
}

// CategoryTree returns every category nested under its parent.
func (s *Service) CategoryTree(ctx context.Context) ([]models.Category, error) {
	return s.categories.Tree(ctx)
}

// Category returns one category with its post count.
func (s *Service) Category(ctx context.Context, slug string) (*models.Category, error) {
	if !lookupSlug(slug) {
		return nil, ErrNotFound
	}
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// CreateCategory validates in, assigns a slug and stores the category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	errs := fieldErrors{}
	checkText(errs, "name", in.Name, true, maxCategoryNameLen)
	checkText(errs, "description", in.Description, false, maxDescriptionLen)

	c := &models.Category{}
	if err := s.applyParent(ctx, errs, in.Parent, c); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	c.Name = *in.Name
	c.Description = deref(in.Description)

	var err error
	c.Slug, err = assignSlug(ctx, "category", in.Slug, c.Name, maxCategorySlugLen, s.categories.SlugExists)
	if err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, c)
	if errors.Is(err, store.ErrSlugTaken) && derivedSlug(in.Slug) {
		if c.Slug, err = assignSlug(ctx, "category", nil, c.Name, maxCategorySlugLen, s.categories.SlugExists); err != nil {
			return nil, err
		}
		created, err = s.categories.Create(ctx, c)
	}
	if errors.Is(err, store.ErrSlugTaken) {
		return nil, slugTaken("category")
	}
	return created, err
}

// UpdateCategory applies the fields present in in. A new parent may not be
// the category itself or any of its descendants.
func (s *Service) UpdateCategory(ctx context.Context, slug string, in CategoryInput) (*models.Category, error) {
	c, err := s.Category(ctx, slug)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	checkText(errs, "name", in.Name, in.Name != nil, maxCategoryNameLen)
	checkText(errs, "description", in.Description, false, maxDescriptionLen)
	if err := s.applyParent(ctx, errs, in.Parent, c); err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if in.Slug != nil {
		if c.Slug, err = explicitSlug(ctx, "category", *in.Slug, c.Slug, maxCategorySlugLen, s.categories.SlugExists); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}

	updated, err := s.categories.Update(ctx, c)
	switch {
	case errors.Is(err, store.ErrSlugTaken):
		return nil, slugTaken("category")
	case errors.Is(err, store.ErrCategoryCycle):
		return nil, invalid("parent", "a category cannot be moved under itself or one of its descendants")
	case err != nil:
		return nil, err
	case updated == nil:
		return nil, ErrNotFound
	}
	return updated, nil
}

// DeleteCategory removes the category at slug and its subtree according
// to the configured delete policy.
func (s *Service) DeleteCategory(ctx context.Context, slug string) error {
	c, err := s.Category(ctx, slug)
	if err != nil {
		return err
	}
	ok, err := s.categories.Delete(ctx, c.ID, s.deletePolicy)
	if errors.Is(err, store.ErrCategoryInUse) {
		return fmt.Errorf("%w: category %q or one of its subcategories still has posts", ErrConflict, slug)
	}
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// applyParent resolves a parent slug onto c.ParentID.
func (s *Service) applyParent(ctx context.Context, errs fieldErrors, parent Nullable[string], c *models.Category) error {
	if !parent.Set {
		return nil
	}
	ref := strings.ToLower(strings.TrimSpace(parent.Value))
	if parent.Null || ref == "" {
		c.ParentID = nil
		return nil
	}
	p, err := s.categories.FindBySlug(ctx, ref)
	if err != nil {
		return err
	}
	if p == nil {
		errs.add("parent", fmt.Sprintf("unknown category %q", ref))
		return nil
	}
	if p.ID == c.ID {
		errs.add("parent", "a category cannot be its own parent")
		return nil
	}
	id := p.ID
	c.ParentID = &id
	return nil
}

// ListTags returns a page of tags ordered by name.
func (s *Service) ListTags(ctx context.Context, page int) (Page[models.Tag], error) {
	limit, offset := pageOffset(page)
	items, total, err := s.tags.List(ctx, limit, offset)
	if err != nil {
		return Page[models.Tag]{}, err
	}
	return Page[models.Tag]{Items: items, Total: total, Page: max(page, 1)}, nil
}

// Tag returns one tag.
func (s *Service) Tag(ctx context.Context, slug string) (*models.Tag, error) {
	if !lookupSlug(slug) {
		return nil, ErrNotFound
	}
	t, err := s.tags.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// CreateTag validates in, assigns a slug and stores the tag.
func (s *Service) CreateTag(ctx context.Context, in TagInput) (*models.Tag, error) {
	errs := fieldErrors{}
	checkText(errs, "name", in.Name, true, maxTagNameLen)
	if err := errs.err(); err != nil {
		return nil, err
	}

	t := &models.Tag{Name: *in.Name}
	var err error
	t.Slug, err = assignSlug(ctx, "tag", in.Slug, t.Name, maxTagSlugLen, s.tags.SlugExists)
	if err != nil {
		return nil, err
	}

	created, err := s.tags.Create(ctx, t)
	if errors.Is(err, store.ErrSlugTaken) && derivedSlug(in.Slug) {
		if t.Slug, err = assignSlug(ctx, "tag", nil, t.Name, maxTagSlugLen, s.tags.SlugExists); err != nil {
			return nil, err
		}
		created, err = s.tags.Create(ctx, t)
	}
	if errors.Is(err, store.ErrSlugTaken) {
		return nil, slugTaken("tag")
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.TagsPrefix)
	return created, nil
}

// UpdateTag applies the fields present in in.
func (s *Service) UpdateTag(ctx context.Context, slug string, in TagInput) (*models.Tag, error) {
	t, err := s.Tag(ctx, slug)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	checkText(errs, "name", in.Name, in.Name != nil, maxTagNameLen)
	if err := errs.err(); err != nil {
		return nil, err
	}
	if in.Slug != nil {
		if t.Slug, err = explicitSlug(ctx, "tag", *in.Slug, t.Slug, maxTagSlugLen, s.tags.SlugExists); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		t.Name = *in.Name
	}

	updated, err := s.tags.Update(ctx, t)
	if errors.Is(err, store.ErrSlugTaken) {
		return nil, slugTaken("tag")
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.invalidate(ctx, cache.TagsPrefix)
	return updated, nil
}

// DeleteTag removes the tag at slug; its posts keep their other tags.
func (s *Service) DeleteTag(ctx context.Context, slug string) error {
	t, err := s.Tag(ctx, slug)
	if err != nil {
		return err
	}
	ok, err := s.tags.Delete(ctx, t.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.invalidate(ctx, cache.TagsPrefix)
	return nil
}
