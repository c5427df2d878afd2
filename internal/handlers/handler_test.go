// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"blogify/internal/cache"
	"blogify/internal/config"
	"blogify/internal/content"
	"blogify/internal/database"
	"blogify/internal/middleware"
	"blogify/internal/present"
	"blogify/internal/session"
	"blogify/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogify")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogify")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "blogify:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Valkey   *redis.Client
	Cache    *cache.Cache
	Sessions *session.Store
	Users    *store.UserStore
	API      *API
	Auth     *Auth
}

// newTestEnv wires the handlers against real stores, without S3.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	c := cache.New(vk, time.Minute)
	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)

	svc := content.NewService(
		store.NewPostStore(db),
		store.NewCategoryStore(db),
		store.NewTagStore(db),
		store.NewSearchLogStore(db),
		nil,
		c,
		config.DeleteDetach,
	)
	pr := present.New(nil, "/media/", c)

	return &testEnv{
		DB:       db,
		Valkey:   vk,
		Cache:    c,
		Sessions: sessions,
		Users:    users,
		API:      NewAPI(svc, pr, c),
		Auth:     NewAuth(sessions, users),
	}
}

// uniq returns a short random suffix so parallel runs never collide.
func uniq() string {
	return uuid.NewString()[:8]
}

// editorSession is a logged-in editor for handlers behind RequireEditor.
func editorSession() *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "editor@blogify.local",
		DisplayName: "Test Editor",
		Role:        "editor",
	}
}

// newRequest builds a request with an optional JSON body, chi slug param
// and session.
func newRequest(t *testing.T, method, target string, body any, slug string, sess *session.Data) *http.Request {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, target, rd)
	ctx := r.Context()
	if slug != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("slug", slug)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if sess != nil {
		ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	}
	return r.WithContext(ctx)
}

// decode unmarshals a recorded JSON response into a value of type T.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// cleanPosts removes test posts by slug.
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", s)
	}
}
