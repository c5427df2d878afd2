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

	"blogify/internal/slug"
)

// suffixRoom leaves space for a "-NNNN" collision suffix.
const suffixRoom = 5

// assignSlug returns the slug for a new entity. An explicit slug is
// normalised and must be free; otherwise one is derived from name and
// suffixed until unique. kind names the entity in messages.
func assignSlug(ctx context.Context, kind string, explicit *string, name string, maxLen int, exists slug.ExistsFunc) (string, error) {
	if !derivedSlug(explicit) {
		return explicitSlug(ctx, kind, *explicit, "", maxLen, exists)
	}

	base := slug.Truncate(slug.Generate(name), maxLen-suffixRoom)
	s, err := slug.Unique(ctx, base, exists)
	if errors.Is(err, slug.ErrEmpty) {
		return "", invalid("slug", "could not derive a slug from the name; supply one")
	}
	if err != nil {
		return "", fmt.Errorf("assign %s slug: %w", kind, err)
	}
	return s, nil
}

// explicitSlug normalises a caller-supplied slug and checks it is free.
// current is the entity's own slug on update and is always acceptable.
func explicitSlug(ctx context.Context, kind, raw, current string, maxLen int, exists slug.ExistsFunc) (string, error) {
	s := slug.Generate(raw)
	if s == "" {
		return "", invalid("slug", "enter a valid slug consisting of letters, numbers or hyphens")
	}
	if len(s) > maxLen {
		return "", invalid("slug", fmt.Sprintf("ensure this field has no more than %d characters", maxLen))
	}
	if s == current {
		return s, nil
	}
	taken, err := exists(ctx, s)
	if err != nil {
		return "", fmt.Errorf("check %s slug: %w", kind, err)
	}
	if taken {
		return "", slugTaken(kind)
	}
	return s, nil
}

func slugTaken(kind string) error {
	return invalid("slug", fmt.Sprintf("%s with this slug already exists", kind))
}

// derivedSlug reports whether a new entity's slug comes from its name
// rather than from the caller.
func derivedSlug(explicit *string) bool {
	return explicit == nil || strings.TrimSpace(*explicit) == ""
}

// lookupSlug reports whether slug can name a stored entity. Path segments
// that are not UTF-8 never match and the database rejects them outright.
func lookupSlug(slug string) bool {
	return utf8.ValidString(slug)
}
