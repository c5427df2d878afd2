// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query turns listing parameters into a single SQL predicate over
// posts. Parameter groups are combined with AND; the values inside a
// multi-value group (category=a,b) are combined with OR. Association
// filters use EXISTS sub-selects so a post matching several values is
// still returned once.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// PageSize is the fixed number of items per listing page.
const PageSize = 10

// MaxPage keeps the row offset inside a 32-bit integer.
const MaxPage = math.MaxInt32 / PageSize

// orderColumns maps the public ordering names to post columns.
var orderColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"views":      "views",
	"likes":      "likes",
}

// Error reports malformed filter values, keyed by parameter name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid filter: " + strings.Join(parts, "; ")
}

// Filter is the parsed set of recognised listing parameters. The zero
// value lists everything, newest first, first page.
type Filter struct {
	Text       string
	Categories []string
	Tags       []string
	Published  *bool
	Featured   *bool
	Ordering   string // "" means -created_at
	Page       int    // 1-based; 0 is treated as 1
}

// Parse reads a Filter from request query parameters. Unknown parameters
// are ignored; malformed known ones produce an *Error.
func Parse(v url.Values) (Filter, error) {
	var f Filter
	fields := map[string]string{}

	f.Text = strings.TrimSpace(first(v, "q", "search"))
	if !utf8.ValidString(f.Text) {
		fields["q"] = "must be valid UTF-8"
	}
	f.Categories = splitSlugs(v.Get("category"))
	if !validSlugs(f.Categories) {
		fields["category"] = "must be valid UTF-8"
	}
	f.Tags = splitSlugs(v.Get("tag"))
	if !validSlugs(f.Tags) {
		fields["tag"] = "must be valid UTF-8"
	}

	if raw := v.Get("published"); raw != "" {
		b, err := parseBool(raw)
		if err != nil {
			fields["published"] = err.Error()
		} else {
			f.Published = &b
		}
	}

	if raw := first(v, "is_featured", "featured_article"); raw != "" {
		b, err := parseBool(raw)
		if err != nil {
			fields["is_featured"] = err.Error()
		} else {
			f.Featured = &b
		}
	}

	if raw := strings.TrimSpace(v.Get("ordering")); raw != "" {
		if _, ok := orderColumns[strings.TrimPrefix(raw, "-")]; !ok {
			fields["ordering"] = fmt.Sprintf("unsupported ordering %q", raw)
		} else {
			f.Ordering = raw
		}
	}

	if raw := v.Get("page"); raw != "" {
		n, err := parsePage(raw)
		if err != nil {
			fields["page"] = err.Error()
		} else {
			f.Page = n
		}
	}

	if len(fields) > 0 {
		return Filter{}, &Error{Fields: fields}
	}
	return f, nil
}

// ParsePage reads only the page parameter, for listings that take no
// post filters.
func ParsePage(v url.Values) (int, error) {
	raw := v.Get("page")
	if raw == "" {
		return 1, nil
	}
	n, err := parsePage(raw)
	if err != nil {
		return 0, &Error{Fields: map[string]string{"page": err.Error()}}
	}
	return n, nil
}

func parsePage(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	if n > MaxPage {
		return 0, fmt.Errorf("must be at most %d", MaxPage)
	}
	return n, nil
}

func validSlugs(slugs []string) bool {
	for _, s := range slugs {
		if !utf8.ValidString(s) {
			return false
		}
	}
	return true
}

// Public returns a copy restricted to published posts, whatever the
// caller asked for.
func (f Filter) Public() Filter {
	t := true
	f.Published = &t
	return f
}

// Empty reports whether no filtering parameter is set. Ordering and
// page do not count as filters.
func (f Filter) Empty() bool {
	return f.Text == "" && len(f.Categories) == 0 && len(f.Tags) == 0 &&
		f.Published == nil && f.Featured == nil
}

// Where builds the WHERE clause (including the keyword, or "" when there
// is nothing to filter) for a posts table aliased as alias, with
// positional parameters starting at $1.
func (f Filter) Where(alias string) (string, []any) {
	var b builder

	if f.Published != nil {
		b.add(fmt.Sprintf("%s.published = %s", alias, b.arg(*f.Published)))
	}
	if f.Featured != nil {
		b.add(fmt.Sprintf("%s.is_featured = %s", alias, b.arg(*f.Featured)))
	}
	if f.Text != "" {
		p := b.arg("%" + escapeLike(f.Text) + "%")
		b.add(fmt.Sprintf("(%s.title ILIKE %s OR %s.content ILIKE %s)", alias, p, alias, p))
	}
	if len(f.Categories) > 0 {
		b.add(fmt.Sprintf(`EXISTS (
			SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = %s.id AND c.slug = ANY(%s))`, alias, b.arg(f.Categories)))
	}
	if len(f.Tags) > 0 {
		b.add(fmt.Sprintf(`EXISTS (
			SELECT 1 FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = %s.id AND t.slug = ANY(%s))`, alias, b.arg(f.Tags)))
	}

	if len(b.preds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(b.preds, " AND "), b.args
}

// OrderBy returns the ORDER BY clause. The id tie-breaker keeps pages
// stable when sort keys collide.
func (f Filter) OrderBy(alias string) string {
	field, dir := "created_at", "DESC"
	if f.Ordering != "" {
		field, dir = strings.TrimPrefix(f.Ordering, "-"), "ASC"
		if strings.HasPrefix(f.Ordering, "-") {
			dir = "DESC"
		}
	}
	col := orderColumns[field]
	return fmt.Sprintf("ORDER BY %s.%s %s, %s.id %s", alias, col, dir, alias, dir)
}

// PageNumber returns the 1-based page.
func (f Filter) PageNumber() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

// Limit returns the page size.
func (f Filter) Limit() int { return PageSize }

// Offset returns the row offset of the requested page.
func (f Filter) Offset() int { return (f.PageNumber() - 1) * PageSize }

// builder accumulates predicates and their positional arguments.
type builder struct {
	preds []string
	args  []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) add(pred string) {
	b.preds = append(b.preds, pred)
}

// first returns the first non-empty value among the given keys.
func first(v url.Values, keys ...string) string {
	for _, k := range keys {
		if s := v.Get(k); s != "" {
			return s
		}
	}
	return ""
}

// splitSlugs parses "a, b,,a" into ["a", "b"]: trimmed, lowercased,
// de-duplicated, order preserved.
func splitSlugs(raw string) []string {
	if raw == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		s := strings.ToLower(strings.TrimSpace(part))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// parseBool accepts the spellings browsers and the JS client send.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected a boolean, got %q", raw)
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
