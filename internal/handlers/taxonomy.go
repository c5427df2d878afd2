// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogify/internal/cache"
	"blogify/internal/content"
	"blogify/internal/models"
	"blogify/internal/present"
	"blogify/internal/query"
)

// ListCategories serves GET /api/categories/.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	n, err := query.ParsePage(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := a.content.ListCategories(r.Context(), n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.NewPage(r, page.Total, page.Page, present.Categories(page.Items)))
}

// CategoryTree serves GET /api/category-tree/.
func (a *API) CategoryTree(w http.ResponseWriter, r *http.Request) {
	roots, err := a.content.CategoryTree(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.CategoryTree(roots))
}

// GetCategory serves GET /api/categories/{slug}/.
func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := a.content.Category(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.Category(c))
}

// CreateCategory serves POST /api/categories/.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in content.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := a.content.CreateCategory(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, present.Category(c))
}

// UpdateCategory serves PATCH /api/categories/{slug}/.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in content.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := a.content.UpdateCategory(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.Category(c))
}

// DeleteCategory serves DELETE /api/categories/{slug}/.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := a.content.DeleteCategory(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags serves GET /api/tags/. Pages are cached until a tag changes.
func (a *API) ListTags(w http.ResponseWriter, r *http.Request) {
	n, err := query.ParsePage(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var page content.Page[models.Tag]
	key := cache.TagListKey(n)
	if a.cache == nil || !a.cache.GetJSON(r.Context(), key, &page) {
		page, err = a.content.ListTags(r.Context(), n)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if a.cache != nil {
			a.cache.SetJSON(r.Context(), key, page)
		}
	}
	writeJSON(w, http.StatusOK, present.NewPage(r, page.Total, page.Page, present.Tags(page.Items)))
}

// GetTag serves GET /api/tags/{slug}/.
func (a *API) GetTag(w http.ResponseWriter, r *http.Request) {
	t, err := a.content.Tag(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.Tag(t))
}

// CreateTag serves POST /api/tags/.
func (a *API) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in content.TagInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := a.content.CreateTag(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, present.Tag(t))
}

// UpdateTag serves PATCH /api/tags/{slug}/.
func (a *API) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var in content.TagInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := a.content.UpdateTag(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.Tag(t))
}

// DeleteTag serves DELETE /api/tags/{slug}/.
func (a *API) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := a.content.DeleteTag(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
