// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"blogify/internal/session"
)

func TestCSRF(t *testing.T) {
	const token = "tok123"

	tests := []struct {
		name    string
		method  string
		session bool   // send the session cookie
		bearer  bool   // send an Authorization header
		header  string // X-CSRF-Token value
		want    int
	}{
		{"safe method", http.MethodGet, true, false, "", http.StatusOK},
		{"no session cookie", http.MethodPost, false, false, "", http.StatusOK},
		{"bearer request", http.MethodPost, true, true, "", http.StatusOK},
		{"cookie session matching token", http.MethodPatch, true, false, token, http.StatusOK},
		{"cookie session missing token", http.MethodDelete, true, false, "", http.StatusForbidden},
		{"cookie session wrong token", http.MethodPost, true, false, "other", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(tt.method, "/api/posts/", nil)
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
			if tt.session {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sess"})
			}
			if tt.bearer {
				req.Header.Set("Authorization", "Bearer sess")
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestCSRFIssuesCookie(t *testing.T) {
	handler := CSRF(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var got *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			got = c
		}
	}
	if got == nil {
		t.Fatal("CSRF cookie not set")
	}
	if len(got.Value) != csrfTokenLength*2 || !got.Secure || got.HttpOnly {
		t.Errorf("cookie = %+v", got)
	}
}
