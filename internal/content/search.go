// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"

	"blogify/internal/models"
)

// LogSearch records an explicitly submitted search query.
func (s *Service) LogSearch(ctx context.Context, q *string) (*models.SearchLog, error) {
	errs := fieldErrors{}
	checkText(errs, "query", q, true, maxSearchQueryLen)
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s.searches.Append(ctx, *q)
}

// SearchLogs returns a page of the search log, newest first.
func (s *Service) SearchLogs(ctx context.Context, page int) (Page[models.SearchLog], error) {
	limit, offset := pageOffset(page)
	items, total, err := s.searches.List(ctx, limit, offset)
	if err != nil {
		return Page[models.SearchLog]{}, err
	}
	return Page[models.SearchLog]{Items: items, Total: total, Page: max(page, 1)}, nil
}
