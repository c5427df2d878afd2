// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation limits, matching the column widths in the migrations.
const (
	maxTitleLen        = 250
	maxSlugLen         = 300
	maxAuthorLen       = 250
	maxContentLen      = 200_000
	maxMediaRefLen     = 1_000
	maxCategoryNameLen = 100
	maxCategorySlugLen = 120
	maxDescriptionLen  = 2_000
	maxTagNameLen      = 50
	maxTagSlugLen      = 60
	maxSearchQueryLen  = 200
)

// Nullable is a JSON field that tells an absent key apart from an explicit
// null. Set is true whenever the key was present.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON records presence and nullness.
func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Null = true
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// Of returns a present, non-null value.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: v}
}

// Null returns a present null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

// PostInput is the editable part of a post. Nil pointers and unset
// Nullables leave the stored value unchanged on update.
type PostInput struct {
	Title         *string          `json:"title"`
	Slug          *string          `json:"slug"`
	Content       *string          `json:"content"`
	Author        *string          `json:"author"`
	FeaturedImage Nullable[string] `json:"featured_image"`
	Thumbnail     Nullable[string] `json:"thumbnail"`
	IsFeatured    *bool            `json:"is_featured"`
	Published     *bool            `json:"published"`
	Categories    *[]string        `json:"categories"`
	Tags          *[]string        `json:"tags"`
}

// CategoryInput is the editable part of a category. Parent is a category
// slug; null moves the category to the root.
type CategoryInput struct {
	Name        *string          `json:"name"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	Parent      Nullable[string] `json:"parent"`
}

// TagInput is the editable part of a tag.
type TagInput struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// checkText trims *v in place and records a length or presence problem.
func checkText(errs fieldErrors, field string, v *string, required bool, limit int) {
	if v == nil {
		if required {
			errs.add(field, "this field is required")
		}
		return
	}
	*v = strings.TrimSpace(*v)
	if required && *v == "" {
		errs.add(field, "this field may not be blank")
		return
	}
	if utf8.RuneCountInString(*v) > limit {
		errs.add(field, "ensure this field has no more than "+strconv.Itoa(limit)+" characters")
	}
}
