// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogify/internal/config"
	"blogify/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// categoryCounted selects a category with its live post count. The count
// covers every attached post, published or not.
const categoryCounted = `
	SELECT c.id, c.name, c.slug, c.description, c.parent_id,
	       c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM post_categories pc WHERE pc.category_id = c.id) AS post_count
	FROM categories c`

// scanCategory scans a row selected with categoryCounted.
func scanCategory(sc scanner) (*models.Category, error) {
	var c models.Category
	err := sc.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt, &c.PostCount,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns one page of categories ordered by post count (highest
// first) then name, and the total number of categories.
func (s *CategoryStore) List(ctx context.Context, limit, offset int) ([]models.Category, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	items, err := s.query(ctx, categoryCounted+`
		ORDER BY post_count DESC, c.name, c.id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return items, total, nil
}

// Tree returns all categories nested under their parents, ordered by name
// at every level.
func (s *CategoryStore) Tree(ctx context.Context) ([]models.Category, error) {
	flat, err := s.query(ctx, categoryCounted+` ORDER BY c.name, c.id`)
	if err != nil {
		return nil, fmt.Errorf("list category tree: %w", err)
	}
	return buildTree(flat, nil, 0), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Category, parentID *uuid.UUID, depth int) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Depth = depth
			c.Children = buildTree(flat, &c.ID, depth+1)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, categoryCounted+` WHERE c.slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// FindByID retrieves a category by id. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, categoryCounted+` WHERE c.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlugs returns the categories whose slugs appear in slugs. Unknown
// slugs are simply absent from the result.
func (s *CategoryStore) FindBySlugs(ctx context.Context, slugs []string) ([]models.Category, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	items, err := s.query(ctx, categoryCounted+` WHERE c.slug = ANY($1) ORDER BY c.name`, slugs)
	if err != nil {
		return nil, fmt.Errorf("find categories by slug: %w", err)
	}
	return items, nil
}

// SlugExists reports whether a category already uses slug.
func (s *CategoryStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new category and returns it. A new row has no
// descendants, so any existing parent is acceptable.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Name, c.Slug, c.Description, c.ParentID).Scan(&id)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update modifies an existing category. The parent is checked against the
// category's current subtree inside the same serializable transaction, so
// two concurrent re-parentings cannot close a loop between them. Returns
// nil if the category no longer exists.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if c.ParentID != nil {
		if *c.ParentID == c.ID {
			return nil, ErrCategoryCycle
		}
		var cycle bool
		err := tx.QueryRowContext(ctx, `
			WITH RECURSIVE subtree(id) AS (
				SELECT id FROM categories WHERE id = $1
				UNION
				SELECT ch.id FROM categories ch JOIN subtree st ON ch.parent_id = st.id
			)
			SELECT EXISTS (SELECT 1 FROM subtree WHERE id = $2)
		`, c.ID, *c.ParentID).Scan(&cycle)
		if err != nil {
			return nil, fmt.Errorf("check category cycle: %w", err)
		}
		if cycle {
			return nil, ErrCategoryCycle
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4, updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.Slug, c.Description, c.ParentID, c.ID)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit category: %w", err)
	}
	return s.FindByID(ctx, c.ID)
}

// Delete removes a category and its whole subtree, applying policy to the
// posts attached anywhere in that subtree:
//
//   - detach: posts stay and lose the association.
//   - restrict: nothing is deleted and ErrCategoryInUse is returned if any
//     post is attached.
//   - cascade: the attached posts are deleted first.
//
// Reports whether the category existed.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID, policy config.DeletePolicy) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const subtree = `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM categories WHERE id = $1
			UNION
			SELECT ch.id FROM categories ch JOIN subtree st ON ch.parent_id = st.id
		)`

	switch policy {
	case config.DeleteRestrict:
		var inUse bool
		err := tx.QueryRowContext(ctx, subtree+`
			SELECT EXISTS (SELECT 1 FROM post_categories WHERE category_id IN (SELECT id FROM subtree))
		`, id).Scan(&inUse)
		if err != nil {
			return false, fmt.Errorf("check category posts: %w", err)
		}
		if inUse {
			return false, ErrCategoryInUse
		}
	case config.DeleteCascade:
		_, err := tx.ExecContext(ctx, subtree+`
			DELETE FROM posts WHERE id IN (
				SELECT post_id FROM post_categories WHERE category_id IN (SELECT id FROM subtree)
			)
		`, id)
		if err != nil {
			return false, fmt.Errorf("delete category posts: %w", err)
		}
	}

	// Children and join rows follow through ON DELETE CASCADE.
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit category delete: %w", err)
	}
	return true, nil
}

func (s *CategoryStore) query(ctx context.Context, q string, args ...any) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
