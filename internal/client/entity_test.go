package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	internalhttp "github.com/fivetwenty-io/logo-objects-client/internal/http"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listServer answers every request with an empty page and hands the request to
// inspect.
func listServer(t *testing.T, inspect func(r *http.Request)) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inspect(r)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": []interface{}{}, "count": 42})
	}))
	t.Cleanup(server.Close)

	return server
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestEntityClient_QueryBuilding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		call      func(ctx context.Context, c *ItemsClient) error
		wantPath  string
		wantQuery string
		wantQ     string
	}{
		{
			name: "search by code",
			call: func(ctx context.Context, c *ItemsClient) error {
				_, err := c.SearchByCode(ctx, "test", nil)

				return err
			},
			wantPath:  "/api/v1/items",
			wantQuery: "q=CODE%20like%20%27test*%27",
			wantQ:     "CODE like 'test*'",
		},
		{
			name: "search by name keeps options",
			call: func(ctx context.Context, c *ItemsClient) error {
				_, err := c.SearchByName(ctx, "Vida", logo.NewQueryOptions().WithLimit(5))

				return err
			},
			wantPath:  "/api/v1/items",
			wantQuery: "limit=5&q=NAME%20like%20%27Vida*%27",
			wantQ:     "NAME like 'Vida*'",
		},
		{
			name: "build query",
			call: func(ctx context.Context, c *ItemsClient) error {
				_, err := c.BuildQuery(ctx, []string{"CODE eq 'ABC'", "STATUS eq 1"}, nil)

				return err
			},
			wantPath:  "/api/v1/items",
			wantQuery: "q=CODE%20eq%20%27ABC%27%20and%20STATUS%20eq%201",
			wantQ:     "CODE eq 'ABC' and STATUS eq 1",
		},
		{
			name: "build query without conditions sends no filter",
			call: func(ctx context.Context, c *ItemsClient) error {
				_, err := c.BuildQuery(ctx, nil, logo.NewQueryOptions().WithLimit(10))

				return err
			},
			wantPath:  "/api/v1/items",
			wantQuery: "limit=10",
		},
		{
			name: "search compiles criteria",
			call: func(ctx context.Context, c *ItemsClient) error {
				criteria := logo.NewCriteria().
					Set("code", logo.Like(logo.String("AB*"))).
					Set("cardType", logo.AnyOf{logo.Int(1), logo.Int(2)})

				_, err := c.Search(ctx, criteria, logo.NewQueryOptions().WithSort(logo.SortBy("CODE")))

				return err
			},
			wantPath:  "/api/v1/items",
			wantQuery: "sort=CODE&q=CODE%20like%20%27AB*%27%20and%20%28CARD_TYPE%20eq%201%20or%20CARD_TYPE%20eq%202%29",
			wantQ:     "CODE like 'AB*' and (CARD_TYPE eq 1 or CARD_TYPE eq 2)",
		},
		{
			name: "search with empty criteria drops q",
			call: func(ctx context.Context, c *ItemsClient) error {
				_, err := c.Search(ctx, logo.NewCriteria(), logo.NewQueryOptions().WithQ("CODE eq 'X'"))

				return err
			},
			wantPath:  "/api/v1/items",
			wantQuery: "",
		},
		{
			name: "get all with paging",
			call: func(ctx context.Context, c *ItemsClient) error {
				opts := logo.NewQueryOptions().WithLimit(10).WithOffset(0).WithSort(logo.SortBy("ITEMREF"))
				_, err := c.GetAll(ctx, opts)

				return err
			},
			wantPath:  "/api/v1/items",
			wantQuery: "limit=10&offset=0&sort=ITEMREF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := listServer(t, func(r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				assert.Equal(t, tt.wantQ, r.URL.Query().Get("q"))
			})

			items := NewItemsClient(internalhttp.NewClient(server.URL, nil))
			require.NoError(t, tt.call(context.Background(), items))
		})
	}
}

func TestEntityClient_SearchDoesNotMutateOptions(t *testing.T) {
	t.Parallel()

	server := listServer(t, func(r *http.Request) {})
	items := NewItemsClient(internalhttp.NewClient(server.URL, nil))

	opts := logo.NewQueryOptions().WithLimit(20)

	_, err := items.SearchByCode(context.Background(), "A", opts)
	require.NoError(t, err)
	assert.Empty(t, opts.Q)
}

func TestEntityClient_Count(t *testing.T) {
	t.Parallel()

	server := listServer(t, func(r *http.Request) {
		assert.Equal(t, "limit=0&q=STATUS%20eq%201&count=true", r.URL.RawQuery)
	})

	opportunities := NewOpportunitiesClient(internalhttp.NewClient(server.URL, nil))

	count, err := opportunities.Count(context.Background(), logo.NewCriteria().Set("status", logo.Int(1)))
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestEntityClient_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	items := NewItemsClient(internalhttp.NewClient("http://127.0.0.1:1", nil))

	_, err := items.GetAll(context.Background(), logo.NewQueryOptions().WithLimit(-1))
	require.ErrorIs(t, err, logo.ErrInvalidQueryOption)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestEntityClient_CRUD(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/Arps/5":
			_ = json.NewEncoder(w).Encode(logo.Arp{Resource: logo.Resource{InternalReference: 5}, Code: "120.01"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/Arps/404":
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"Message": "Record not found"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/Arps":
			var arp logo.Arp
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&arp))
			arp.InternalReference = 77

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(arp)
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/Arps/77":
			var arp logo.Arp
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&arp))
			_ = json.NewEncoder(w).Encode(arp)
		case r.Method == http.MethodPatch && r.URL.Path == "/api/v1/Arps/77":
			var fields map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
			_ = json.NewEncoder(w).Encode(logo.Arp{Resource: logo.Resource{InternalReference: 77}, City: fields["CITY"].(string)})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/Arps/77":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	arps := NewArpsClient(internalhttp.NewClient(server.URL, nil))
	ctx := context.Background()

	arp, err := arps.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "120.01", arp.Code)

	_, err = arps.Get(ctx, 404)
	require.Error(t, err)
	assert.True(t, logo.IsNotFound(err))

	created, err := arps.Create(ctx, &logo.Arp{Code: "120.02", Title: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 77, created.Ref())

	updated, err := arps.Update(ctx, 77, &logo.Arp{Code: "120.02", Title: "Acme Ltd"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Title)

	patched, err := arps.Patch(ctx, 77, map[string]interface{}{"CITY": "Istanbul"})
	require.NoError(t, err)
	assert.Equal(t, "Istanbul", patched.City)

	require.NoError(t, arps.Delete(ctx, 77))
}

func TestVariantsClient_ListForItem(t *testing.T) {
	t.Parallel()

	server := listServer(t, func(r *http.Request) {
		assert.Equal(t, "/api/v1/variants", r.URL.Path)
		assert.Equal(t, "ITEMREF eq 31", r.URL.Query().Get("q"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
	})

	variants := NewVariantsClient(internalhttp.NewClient(server.URL, nil))

	list, err := variants.ListForItem(context.Background(), 31, logo.NewQueryOptions().WithLimit(25))
	require.NoError(t, err)
	assert.Equal(t, 42, list.Count)
}

func TestOpportunitiesClient_ConvertToOrder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/opportunities/convertToOrder", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"INTERNAL_REFERENCE": 9}`, string(body))

		_, _ = w.Write([]byte(`{"NUMBER": "SO-0009"}`))
	}))
	defer server.Close()

	opportunities := NewOpportunitiesClient(internalhttp.NewClient(server.URL, nil))

	result, err := opportunities.ConvertToOrder(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)

	var order logo.SalesOrder
	require.NoError(t, result.Decode(&order))
	assert.Equal(t, "SO-0009", order.Number)
}
