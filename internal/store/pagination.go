package store

import "context"

// PageResult carries one page of records plus enough metadata for clients
// to render pagers.
type PageResult[T any] struct {
	Items      []*T `json:"items"`
	PageNumber int  `json:"page_number"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	HasMore    bool `json:"has_more"`
}

// PageOf fetches one page of a collection plus the collection total.
func PageOf[T any](ctx context.Context, e *Entity[T], pageNumber, pageSize int) (*PageResult[T], error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	items, err := e.Page(ctx, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := e.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &PageResult[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		Total:      total,
		HasMore:    pageNumber*pageSize < total,
	}, nil
}
