// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package present

import (
	"net/http"
	"strings"
)

// MediaURL resolves a stored media reference to an absolute URL. Absolute
// references pass through; keys go to object storage when configured and
// to the request origin plus the media prefix otherwise.
func (pr *Presenter) MediaURL(r *http.Request, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	key := strings.TrimLeft(ref, "/")
	if pr.files != nil {
		return pr.files.FileURL(key)
	}
	return Origin(r) + pr.mediaURL + key
}

func (pr *Presenter) mediaRef(r *http.Request, ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	u := pr.MediaURL(r, *ref)
	return &u
}

// Origin returns scheme://host for the request, honouring the
// X-Forwarded-Proto header set by a TLS-terminating proxy. Values other
// than http and https are ignored.
func Origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		switch fwd := strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0])); fwd {
		case "http", "https":
			scheme = fwd
		}
	}
	return scheme + "://" + r.Host
}
