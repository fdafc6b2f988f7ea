package logo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Code string
}

var errBackendDown = errors.New("backend down")

// fakeLister serves records from memory and records each page request.
type fakeLister struct {
	records   []testRecord
	withCount bool
	failAt    int
	requests  []string
}

func newFakeLister(n int) *fakeLister {
	records := make([]testRecord, n)
	for i := range records {
		records[i] = testRecord{Code: string(rune('A' + i))}
	}

	return &fakeLister{records: records, failAt: -1}
}

func (f *fakeLister) GetAll(_ context.Context, opts *logo.QueryOptions) (*logo.ListResponse[testRecord], error) {
	f.requests = append(f.requests, opts.Encode())

	offset, limit := 0, len(f.records)
	if opts.Offset != nil {
		offset = *opts.Offset
	}

	if opts.Limit != nil {
		limit = *opts.Limit
	}

	if f.failAt >= 0 && offset >= f.failAt {
		return nil, errBackendDown
	}

	end := offset + limit
	if end > len(f.records) {
		end = len(f.records)
	}

	resp := &logo.ListResponse[testRecord]{Offset: offset, Limit: limit, Items: []testRecord{}}
	if offset < end {
		resp.Items = f.records[offset:end]
	}

	if f.withCount {
		resp.Count = len(f.records)
	}

	return resp, nil
}

func codes(records []testRecord) string {
	out := ""
	for _, r := range records {
		out += r.Code
	}

	return out
}

func TestPaginationIterator(t *testing.T) {
	t.Parallel()

	t.Run("walks every page", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(5)
		it := logo.NewPaginationIterator[testRecord](context.Background(), lister, logo.NewQueryOptions().WithLimit(2))

		var got []testRecord

		for it.HasNext() {
			item, err := it.Next()
			require.NoError(t, err)

			got = append(got, item)
		}

		assert.Equal(t, "ABCDE", codes(got))
		assert.Equal(t, []string{"limit=2&offset=0", "limit=2&offset=2", "limit=2&offset=4"}, lister.requests)

		_, err := it.Next()
		require.ErrorIs(t, err, logo.ErrNoMoreItems)
	})

	t.Run("stops on count without an extra request", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(4)
		lister.withCount = true

		items, err := logo.NewPaginationIterator[testRecord](context.Background(), lister, logo.NewQueryOptions().WithLimit(2)).All()
		require.NoError(t, err)

		assert.Equal(t, "ABCD", codes(items))
		assert.Len(t, lister.requests, 2)
	})

	t.Run("short page ends the walk", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(3)

		items, err := logo.NewPaginationIterator[testRecord](context.Background(), lister, logo.NewQueryOptions().WithLimit(2)).All()
		require.NoError(t, err)

		assert.Equal(t, "ABC", codes(items))
		assert.Len(t, lister.requests, 2)
	})

	t.Run("keeps filter and starting offset", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(4)
		opts := logo.NewQueryOptions().WithLimit(3).WithOffset(1).WithQ("STATUS eq 1")

		items, err := logo.NewPaginationIterator[testRecord](context.Background(), lister, opts).All()
		require.NoError(t, err)

		assert.Equal(t, "BCD", codes(items))
		assert.Equal(t, "limit=3&offset=1&q=STATUS%20eq%201", lister.requests[0])
		assert.Equal(t, 1, *opts.Offset)
	})

	t.Run("surfaces fetch errors from Next", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(5)
		lister.failAt = 2

		it := logo.NewPaginationIterator[testRecord](context.Background(), lister, logo.NewQueryOptions().WithLimit(2))

		items, err := it.All()
		require.ErrorIs(t, err, errBackendDown)
		assert.Equal(t, "AB", codes(items))
		assert.False(t, it.HasNext())
	})

	t.Run("ForEach stops at callback error", func(t *testing.T) {
		t.Parallel()

		stop := errors.New("stop")
		seen := 0

		err := logo.NewPaginationIterator[testRecord](context.Background(), newFakeLister(5), nil).ForEach(func(testRecord) error {
			seen++
			if seen == 3 {
				return stop
			}

			return nil
		})

		require.ErrorIs(t, err, stop)
		assert.Equal(t, 3, seen)
	})
}

func TestFetchAll(t *testing.T) {
	t.Parallel()

	t.Run("uses page size when options carry no limit", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(5)

		items, err := logo.FetchAll[testRecord](context.Background(), lister, nil, &logo.PaginationOptions{PageSize: 2})
		require.NoError(t, err)

		assert.Equal(t, "ABCDE", codes(items))
		assert.Equal(t, "limit=2&offset=0", lister.requests[0])
	})

	t.Run("max pages bounds the fetch", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(10)

		items, err := logo.FetchAll[testRecord](context.Background(), lister, nil, &logo.PaginationOptions{PageSize: 2, MaxPages: 2})
		require.NoError(t, err)

		assert.Equal(t, "ABCD", codes(items))
		assert.Len(t, lister.requests, 2)
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()

		items, err := logo.FetchAll[testRecord](context.Background(), newFakeLister(0), nil, nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	t.Run("delivers pages in order", func(t *testing.T) {
		t.Parallel()

		var (
			offsets []int
			all     []testRecord
		)

		for page := range logo.StreamPages[testRecord](context.Background(), newFakeLister(5), nil, &logo.PaginationOptions{PageSize: 2}) {
			require.NoError(t, page.Err)

			offsets = append(offsets, page.Offset)
			all = append(all, page.Items...)
		}

		assert.Equal(t, []int{0, 2, 4}, offsets)
		assert.Equal(t, "ABCDE", codes(all))
	})

	t.Run("ends with the error", func(t *testing.T) {
		t.Parallel()

		lister := newFakeLister(5)
		lister.failAt = 2

		var pages []logo.PageResult[testRecord]
		for page := range logo.StreamPages[testRecord](context.Background(), lister, nil, &logo.PaginationOptions{PageSize: 2}) {
			pages = append(pages, page)
		}

		require.Len(t, pages, 2)
		require.NoError(t, pages[0].Err)
		require.ErrorIs(t, pages[1].Err, errBackendDown)
	})
}

func TestListResponse_HasMore(t *testing.T) {
	t.Parallel()

	var nilList *logo.ListResponse[testRecord]
	assert.False(t, nilList.HasMore())

	assert.True(t, (&logo.ListResponse[testRecord]{Next: &logo.Link{Href: "/api/v1/items?offset=2"}}).HasMore())
	assert.True(t, (&logo.ListResponse[testRecord]{Items: make([]testRecord, 2), Count: 5}).HasMore())
	assert.False(t, (&logo.ListResponse[testRecord]{Items: make([]testRecord, 2), Offset: 3, Count: 5}).HasMore())
	assert.False(t, (&logo.ListResponse[testRecord]{Items: make([]testRecord, 2)}).HasMore())
}

func TestActionResult_Decode(t *testing.T) {
	t.Parallel()

	var order struct {
		Number string `json:"NUMBER"`
	}

	result := &logo.ActionResult{Body: []byte(`{"NUMBER": "SO-001"}`)}
	require.NoError(t, result.Decode(&order))
	assert.Equal(t, "SO-001", order.Number)

	require.NoError(t, (&logo.ActionResult{}).Decode(&order))
}
