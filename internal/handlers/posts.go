// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogify/internal/content"
	"blogify/internal/models"
	"blogify/internal/present"
	"blogify/internal/query"
)

// JSONCache is the response cache the API reads through. Nil disables it.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any)
}

// API groups the content endpoints.
type API struct {
	content *content.Service
	present *present.Presenter
	cache   JSONCache
}

// NewAPI creates the content handler group. cache may be nil; pass an
// untyped nil in that case.
func NewAPI(svc *content.Service, pr *present.Presenter, cache JSONCache) *API {
	return &API{content: svc, present: pr, cache: cache}
}

// ListPosts serves GET /api/posts/: published posts, filtered.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	a.listPosts(w, r, a.content.ListPosts)
}

// EditorListPosts serves GET /api/editor/posts/: drafts included.
func (a *API) EditorListPosts(w http.ResponseWriter, r *http.Request) {
	a.listPosts(w, r, a.content.EditorListPosts)
}

// Search serves GET /api/search/ and logs the free-text query.
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	a.listPosts(w, r, a.content.Search)
}

func (a *API) listPosts(w http.ResponseWriter, r *http.Request, list func(context.Context, query.Filter) (content.Page[models.Post], error)) {
	f, err := query.Parse(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := list(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.NewPage(r, page.Total, page.Page, a.present.Posts(r, page.Items)))
}

// GetPost serves GET /api/posts/{slug}/ and counts one view.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := a.content.ViewPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.present.Post(r, p))
}

// EditorGetPost serves GET /api/editor/posts/{slug}/ without counting.
func (a *API) EditorGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := a.content.EditorPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.present.Post(r, p))
}

// RelatedPosts serves GET /api/posts/{slug}/related/.
func (a *API) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.content.RelatedPosts(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.present.Posts(r, posts))
}

// LikePost serves POST /api/posts/{slug}/like/.
func (a *API) LikePost(w http.ResponseWriter, r *http.Request) {
	p, err := a.content.LikePost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slug": p.Slug, "likes": p.Likes})
}

// FeaturedPosts serves GET /api/featured-posts/.
func (a *API) FeaturedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.content.FeaturedPosts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.present.Posts(r, posts))
}

// CreatePost serves POST /api/posts/.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in content.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := a.content.CreatePost(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.present.Post(r, p))
}

// UpdatePost serves PATCH /api/posts/{slug}/.
func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var in content.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := a.content.UpdatePost(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.present.Post(r, p))
}

// DeletePost serves DELETE /api/posts/{slug}/.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := a.content.DeletePost(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchRequest is the body of POST /api/search/.
type searchRequest struct {
	Query *string `json:"query"`
}

// LogSearch serves POST /api/search/: records a submitted query.
func (a *API) LogSearch(w http.ResponseWriter, r *http.Request) {
	var in searchRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	entry, err := a.content.LogSearch(r.Context(), in.Query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, present.SearchLogs([]models.SearchLog{*entry})[0])
}

// SearchLogs serves GET /api/editor/search-logs/.
func (a *API) SearchLogs(w http.ResponseWriter, r *http.Request) {
	n, err := query.ParsePage(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := a.content.SearchLogs(r.Context(), n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.NewPage(r, page.Total, page.Page, present.SearchLogs(page.Items)))
}
