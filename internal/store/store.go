// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all blog entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
// Lookups of a single row return (nil, nil) when the row does not exist.
package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSlugTaken is returned when an insert or update collides with an
	// existing slug.
	ErrSlugTaken = errors.New("slug already in use")

	// ErrCategoryCycle is returned when a parent assignment would make a
	// category its own ancestor.
	ErrCategoryCycle = errors.New("category parent would create a cycle")

	// ErrCategoryInUse is returned by the restrict delete policy when the
	// category subtree still has posts.
	ErrCategoryInUse = errors.New("category still has posts")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// uuidStrings renders ids for a $n::uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
