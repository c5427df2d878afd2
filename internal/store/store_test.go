// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"blogify/internal/database"
	"blogify/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogify")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogify")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// uniq returns a short random suffix so parallel test runs sharing one
// database never collide on slugs.
func uniq() string {
	return uuid.NewString()[:8]
}

// mustPost creates a post and registers its removal.
func mustPost(t *testing.T, db *sql.DB, p models.Post, terms TermIDs) *models.Post {
	t.Helper()
	if p.Slug == "" {
		p.Slug = "post-" + uniq()
	}
	if p.Title == "" {
		p.Title = p.Slug
	}
	created, err := NewPostStore(db).Create(context.Background(), &p, terms)
	if err != nil {
		t.Fatalf("create post %s: %v", p.Slug, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", created.ID) })
	return created
}

// mustCategory creates a category and registers its removal.
func mustCategory(t *testing.T, db *sql.DB, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{
		Name:     name,
		Slug:     "cat-" + uniq(),
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// mustTag creates a tag and registers its removal.
func mustTag(t *testing.T, db *sql.DB, name string) *models.Tag {
	t.Helper()
	tag, err := NewTagStore(db).Create(context.Background(), &models.Tag{Name: name, Slug: "tag-" + uniq()})
	if err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM tags WHERE id = $1", tag.ID) })
	return tag
}

// slugsOf returns the slugs of posts in order.
func slugsOf(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}
