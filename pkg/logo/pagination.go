package logo

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
)

// Lister is anything that returns one page of T for the given options.
type Lister[T any] interface {
	GetAll(ctx context.Context, opts *QueryOptions) (*ListResponse[T], error)
}

// PaginationOptions bound a multi-page fetch.
type PaginationOptions struct {
	// PageSize is used when the query options carry no limit.
	PageSize int
	// MaxPages stops the fetch after this many pages; 0 means no bound.
	MaxPages int
}

// DefaultPaginationOptions returns the defaults used by FetchAll.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.LargePageSize,
		MaxPages: constants.MaxPages,
	}
}

// PaginationIterator walks a collection page by page, advancing offset by the
// page size.
type PaginationIterator[T any] struct {
	ctx    context.Context
	lister Lister[T]
	opts   *QueryOptions
	limit  int
	offset int
	items  []T
	index  int
	err    error
	more   bool
	pages  int
	max    int
}

// NewPaginationIterator creates an iterator. opts is copied; its Limit is the page
// size (DefaultPageSize when unset) and its Offset the starting point.
func NewPaginationIterator[T any](ctx context.Context, lister Lister[T], opts *QueryOptions) *PaginationIterator[T] {
	return newPaginationIterator(ctx, lister, opts, nil)
}

func newPaginationIterator[T any](ctx context.Context, lister Lister[T], opts *QueryOptions, pagination *PaginationOptions) *PaginationIterator[T] {
	opts = opts.Clone()

	limit := constants.DefaultPageSize
	if pagination != nil && pagination.PageSize > 0 {
		limit = pagination.PageSize
	}

	if opts.Limit != nil && *opts.Limit > 0 {
		limit = *opts.Limit
	}

	offset := 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}

	it := &PaginationIterator[T]{
		ctx:    ctx,
		lister: lister,
		opts:   opts,
		limit:  limit,
		offset: offset,
		more:   true,
	}

	if pagination != nil {
		it.max = pagination.MaxPages
	}

	return it
}

// HasNext reports whether Next will return an item. It fetches the next page when
// the current one is used up; fetch errors surface from Next.
func (it *PaginationIterator[T]) HasNext() bool {
	if it.index < len(it.items) {
		return true
	}

	if !it.more {
		return false
	}

	it.err = it.fetch()
	if it.err != nil {
		return true
	}

	return it.index < len(it.items)
}

// Next returns the next item.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if it.err != nil {
		err := it.err
		it.err = nil

		return zero, err
	}

	if it.index >= len(it.items) {
		if !it.more {
			return zero, ErrNoMoreItems
		}

		err := it.fetch()
		if err != nil {
			return zero, err
		}

		if it.index >= len(it.items) {
			return zero, ErrNoMoreItems
		}
	}

	item := it.items[it.index]
	it.index++

	return item, nil
}

// fetch loads the page at the current offset.
func (it *PaginationIterator[T]) fetch() error {
	if it.max > 0 && it.pages >= it.max {
		it.more = false
		it.items, it.index = nil, 0

		return nil
	}

	page := it.opts.Clone().WithLimit(it.limit).WithOffset(it.offset)

	resp, err := it.lister.GetAll(it.ctx, page)
	if err != nil {
		it.more = false

		return fmt.Errorf("fetching page at offset %d: %w", it.offset, err)
	}

	it.pages++
	it.items = resp.Items
	it.index = 0
	it.more = morePages(resp, it.offset, it.limit)
	it.offset += len(resp.Items)

	return nil
}

func morePages[T any](resp *ListResponse[T], offset, limit int) bool {
	switch {
	case resp == nil || len(resp.Items) == 0:
		return false
	case resp.Next != nil && resp.Next.Href != "":
		return true
	case resp.Count > 0:
		return offset+len(resp.Items) < resp.Count
	default:
		return len(resp.Items) >= limit
	}
}

// All collects the remaining items.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return all, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach calls fn for every remaining item, stopping at the first error.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// FetchAll collects every page. Nil pagination uses DefaultPaginationOptions.
func FetchAll[T any](ctx context.Context, lister Lister[T], opts *QueryOptions, pagination *PaginationOptions) ([]T, error) {
	if pagination == nil {
		pagination = DefaultPaginationOptions()
	}

	return newPaginationIterator(ctx, lister, opts, pagination).All()
}

// PageResult is one page delivered by StreamPages.
type PageResult[T any] struct {
	Items  []T
	Offset int
	Err    error
}

// StreamPages fetches pages in a goroutine and sends them on the returned channel,
// which is closed after the last page, an error, or ctx cancellation.
func StreamPages[T any](ctx context.Context, lister Lister[T], opts *QueryOptions, pagination *PaginationOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		it := newPaginationIterator(ctx, lister, opts, pagination)

		for it.more {
			offset := it.offset

			err := it.fetch()
			if err == nil && len(it.items) == 0 {
				return
			}

			page := PageResult[T]{Items: it.items, Offset: offset, Err: err}
			if err != nil {
				page.Items = nil
			}

			select {
			case results <- page:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}

			it.index = len(it.items)
		}
	}()

	return results
}
