package platform

import (
	"context"
	"iter"
)

// PageFunc fetches the page that starts after the given cursor. An empty
// cursor fetches the first page.
type PageFunc[T any] func(ctx context.Context, after string) (*ListResponse[T], error)

// Pages returns a lazy sequence of pages starting after the given cursor.
// Each page is fetched only when the consumer asks for it, and ranging over
// the sequence again restarts from the same cursor. Iteration stops after the
// first error.
func Pages[T any](ctx context.Context, fetch PageFunc[T], after string) iter.Seq2[*ListResponse[T], error] {
	return func(yield func(*ListResponse[T], error) bool) {
		cursor := after
		for {
			page, err := fetch(ctx, cursor)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if page.Cursor == "" {
				return
			}
			cursor = page.Cursor
		}
	}
}

// listAll returns the first page, or with AutoPage the concatenation of every
// page in order.
func listAll[T any](ctx context.Context, opts ListOptions, fetch PageFunc[T]) (*ListResponse[T], error) {
	if !opts.AutoPage {
		return fetch(ctx, opts.After)
	}

	items := make([]T, 0)
	for page, err := range Pages(ctx, fetch, opts.After) {
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return &ListResponse[T]{Items: items}, nil
}
