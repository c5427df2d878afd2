// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router wires the API routes and their middleware chains.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"blogify/internal/handlers"
	"blogify/internal/middleware"
)

// Options carries the router's non-handler settings.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool

	// Sessions loads the request's editor session.
	Sessions middleware.SessionGetter

	// LikeLimiter and LoginLimiter throttle the two endpoints anonymous
	// clients can hammer. Nil disables the limit.
	LikeLimiter  *middleware.RateLimiter
	LoginLimiter *middleware.RateLimiter
}

// New returns the configured chi router.
func New(opts Options, api *handlers.API, auth *handlers.Auth) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))
	r.Use(middleware.LoadSession(opts.Sessions))
	r.Use(middleware.CSRF(opts.SecureCookies))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limit(opts.LoginLimiter)).Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)
		})

		// Public reads.
		r.Get("/posts", api.ListPosts)
		r.Get("/posts/{slug}", api.GetPost)
		r.Get("/posts/{slug}/related", api.RelatedPosts)
		r.With(limit(opts.LikeLimiter)).Post("/posts/{slug}/like", api.LikePost)
		r.Get("/featured-posts", api.FeaturedPosts)
		r.Get("/search", api.Search)
		r.Post("/search", api.LogSearch)
		r.Get("/categories", api.ListCategories)
		r.Get("/categories/{slug}", api.GetCategory)
		r.Get("/category-tree", api.CategoryTree)
		r.Get("/tags", api.ListTags)
		r.Get("/tags/{slug}", api.GetTag)

		// Editor writes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEditor)

			r.Post("/posts", api.CreatePost)
			r.Patch("/posts/{slug}", api.UpdatePost)
			r.Delete("/posts/{slug}", api.DeletePost)

			r.Post("/categories", api.CreateCategory)
			r.Patch("/categories/{slug}", api.UpdateCategory)
			r.Delete("/categories/{slug}", api.DeleteCategory)

			r.Post("/tags", api.CreateTag)
			r.Patch("/tags/{slug}", api.UpdateTag)
			r.Delete("/tags/{slug}", api.DeleteTag)

			r.Get("/editor/posts", api.EditorListPosts)
			r.Get("/editor/posts/{slug}", api.EditorGetPost)
			r.Get("/editor/search-logs", api.SearchLogs)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"method not allowed"}`))
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
