// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"blogify/internal/models"
	"blogify/internal/query"
)

// postColumns lists all post columns for a posts table aliased as p.
const postColumns = `p.id, p.title, p.slug, p.content, p.author, p.featured_image,
	p.thumbnail, p.views, p.likes, p.is_featured, p.published, p.created_at, p.updated_at`

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// TermIDs lists the categories and tags a write attaches to a post. On
// update a nil slice leaves that association untouched; an empty non-nil
// slice clears it.
type TermIDs struct {
	Categories []uuid.UUID
	Tags       []uuid.UUID
}

// scanPost scans a row selected with postColumns.
func scanPost(sc scanner) (*models.Post, error) {
	var p models.Post
	err := sc.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Author, &p.FeaturedImage,
		&p.Thumbnail, &p.Views, &p.Likes, &p.IsFeatured, &p.Published,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of posts matching the filter together with the
// total number of matches. Categories and tags are loaded for each post.
func (s *PostStore) List(ctx context.Context, f query.Filter) ([]models.Post, int, error) {
	where, args := f.Where("p")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	n := len(args)
	q := fmt.Sprintf(`SELECT %s FROM posts p %s %s LIMIT $%d OFFSET $%d`,
		postColumns, where, f.OrderBy("p"), n+1, n+2)
	posts, err := s.queryPosts(ctx, q, append(args, f.Limit(), f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// Featured returns up to limit published, featured posts, newest first.
func (s *PostStore) Featured(ctx context.Context, limit int) ([]models.Post, error) {
	posts, err := s.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.published AND p.is_featured
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured posts: %w", err)
	}
	return posts, nil
}

// Related returns up to limit published posts that share at least one
// category or tag with the given post, newest first.
func (s *PostStore) Related(ctx context.Context, postID uuid.UUID, limit int) ([]models.Post, error) {
	posts, err := s.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.published AND p.id <> $1
		  AND (
		    EXISTS (SELECT 1 FROM post_categories a
		            JOIN post_categories b ON b.category_id = a.category_id
		            WHERE a.post_id = p.id AND b.post_id = $1)
		    OR EXISTS (SELECT 1 FROM post_tags a
		               JOIN post_tags b ON b.tag_id = a.tag_id
		               WHERE a.post_id = p.id AND b.post_id = $1)
		  )
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2
	`, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("list related posts: %w", err)
	}
	return posts, nil
}

// FindBySlug retrieves a post by slug with its terms. When publishedOnly
// is set, drafts are treated as missing. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts p WHERE p.slug = $1`
	if publishedOnly {
		q += ` AND p.published`
	}
	return s.findOne(ctx, "find post by slug", q, slug)
}

// FindByID retrieves a post by id with its terms. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "find post by id",
		`SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
}

// IncrementViews adds one view to a published post in a single statement
// and returns the post as stored after the increment. Returns nil if no
// published post has that slug.
func (s *PostStore) IncrementViews(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "increment post views", `
		UPDATE posts AS p SET views = p.views + 1
		WHERE p.slug = $1 AND p.published
		RETURNING `+postColumns, slug)
}

// IncrementLikes adds one like to a published post in a single statement.
// Returns nil if no published post has that slug.
func (s *PostStore) IncrementLikes(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "increment post likes", `
		UPDATE posts AS p SET likes = p.likes + 1
		WHERE p.slug = $1 AND p.published
		RETURNING `+postColumns, slug)
}

// SlugExists reports whether any post, published or not, uses slug.
func (s *PostStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// Create inserts a post and its associations in one transaction and
// returns the stored post. Returns ErrSlugTaken on a slug collision.
func (s *PostStore) Create(ctx context.Context, p *models.Post, terms TermIDs) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, author, featured_image, thumbnail,
		                   is_featured, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Title, p.Slug, p.Content, p.Author, p.FeaturedImage, p.Thumbnail,
		p.IsFeatured, p.Published,
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := replaceTerms(ctx, tx, id, terms); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update writes the editable fields of p and, where requested, replaces
// its associations. Counters are never written here. Returns nil if the
// post no longer exists and ErrSlugTaken on a slug collision.
func (s *PostStore) Update(ctx context.Context, p *models.Post, terms TermIDs) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, content = $3, author = $4,
			featured_image = $5, thumbnail = $6, is_featured = $7,
			published = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Slug, p.Content, p.Author, p.FeaturedImage, p.Thumbnail,
		p.IsFeatured, p.Published, p.ID,
	)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}

	if err := replaceTerms(ctx, tx, p.ID, terms); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}
	return s.FindByID(ctx, p.ID)
}

// Delete removes a post by id. Reports whether a row was removed.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// replaceTerms rewrites the association rows for the non-nil lists.
func replaceTerms(ctx context.Context, tx *sql.Tx, postID uuid.UUID, terms TermIDs) error {
	if terms.Categories != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("clear post categories: %w", err)
		}
		if len(terms.Categories) > 0 {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO post_categories (post_id, category_id)
				SELECT $1, unnest($2::uuid[])
				ON CONFLICT DO NOTHING
			`, postID, uuidStrings(terms.Categories))
			if err != nil {
				return fmt.Errorf("attach post categories: %w", err)
			}
		}
	}
	if terms.Tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("clear post tags: %w", err)
		}
		if len(terms.Tags) > 0 {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO post_tags (post_id, tag_id)
				SELECT $1, unnest($2::uuid[])
				ON CONFLICT DO NOTHING
			`, postID, uuidStrings(terms.Tags))
			if err != nil {
				return fmt.Errorf("attach post tags: %w", err)
			}
		}
	}
	return nil
}

// findOne runs a single-row post query and loads its terms.
func (s *PostStore) findOne(ctx context.Context, op, q string, args ...any) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	posts := []models.Post{*p}
	if err := s.loadTerms(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// queryPosts runs a multi-row post query and loads terms for the result.
func (s *PostStore) queryPosts(ctx context.Context, q string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadTerms(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// loadTerms fills Categories and Tags for every post with one query per
// association, run concurrently.
func (s *PostStore) loadTerms(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var cats, tags map[uuid.UUID][]models.Term
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = s.termsByPost(gctx, `
			SELECT pc.post_id, c.id, c.name, c.slug
			FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = ANY($1::uuid[])
			ORDER BY c.name
		`, ids)
		if err != nil {
			return fmt.Errorf("load post categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tags, err = s.termsByPost(gctx, `
			SELECT pt.post_id, t.id, t.name, t.slug
			FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = ANY($1::uuid[])
			ORDER BY t.name
		`, ids)
		if err != nil {
			return fmt.Errorf("load post tags: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range posts {
		posts[i].Categories = nonNil(cats[posts[i].ID])
		posts[i].Tags = nonNil(tags[posts[i].ID])
	}
	return nil
}

func (s *PostStore) termsByPost(ctx context.Context, q string, ids []uuid.UUID) (map[uuid.UUID][]models.Term, error) {
	rows, err := s.db.QueryContext(ctx, q, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.Term)
	for rows.Next() {
		var postID uuid.UUID
		var t models.Term
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], t)
	}
	return out, rows.Err()
}

// nonNil keeps empty associations rendering as [] rather than null.
func nonNil(terms []models.Term) []models.Term {
	if terms == nil {
		return []models.Term{}
	}
	return terms
}
