// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// search_log.go records visitor search queries. The log is append-only:
// rows are never updated or deleted by the application.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"blogify/internal/models"
)

// maxQueryLen matches the search_logs.query column width.
const maxQueryLen = 200

// SearchLogStore handles search log operations.
type SearchLogStore struct {
	db *sql.DB
}

// NewSearchLogStore creates a new SearchLogStore.
func NewSearchLogStore(db *sql.DB) *SearchLogStore {
	return &SearchLogStore{db: db}
}

// Append stores a query and returns the new row. Queries longer than the
// column are truncated on a rune boundary.
func (s *SearchLogStore) Append(ctx context.Context, q string) (*models.SearchLog, error) {
	var l models.SearchLog
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO search_logs (query) VALUES ($1)
		RETURNING id, query, searched_at
	`, truncate(q, maxQueryLen)).Scan(&l.ID, &l.Query, &l.SearchedAt)
	if err != nil {
		return nil, fmt.Errorf("append search log: %w", err)
	}
	return &l, nil
}

// Log records a query on a best-effort basis; failures are logged and
// otherwise ignored so a search never fails because of its log entry.
func (s *SearchLogStore) Log(ctx context.Context, q string) {
	if _, err := s.Append(ctx, q); err != nil {
		slog.Warn("failed to record search query", "query", q, "error", err)
	}
}

// List returns one page of the log, newest first, and the total count.
func (s *SearchLogStore) List(ctx context.Context, limit, offset int) ([]models.SearchLog, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search logs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, searched_at
		FROM search_logs
		ORDER BY searched_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list search logs: %w", err)
	}
	defer rows.Close()

	var items []models.SearchLog
	for rows.Next() {
		var l models.SearchLog
		if err := rows.Scan(&l.ID, &l.Query, &l.SearchedAt); err != nil {
			return nil, 0, fmt.Errorf("scan search log: %w", err)
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
