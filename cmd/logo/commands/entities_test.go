package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method        string
	path          string
	rawQuery      string
	authorization string
	body          string
}

// fakeService answers every request with body and records what it received.
func fakeService(t *testing.T, body string) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)

		mu.Lock()
		requests = append(requests, recordedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			rawQuery:      r.URL.RawQuery,
			authorization: r.Header.Get("Authorization"),
			body:          string(payload),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()

		return append([]recordedRequest(nil), requests...)
	}
}

func TestNewItemsCommand(t *testing.T) {
	cmd := NewItemsCommand()
	assert.Equal(t, "items", cmd.Use)

	for _, name := range []string{"list", "get", "search", "count"} {
		assert.NotNil(t, findSubcommand(cmd, name), name)
	}

	list := findSubcommand(cmd, "list")
	for _, flag := range []string{"limit", "offset", "sort", "desc", "fields", "where", "q", "all", "filter"} {
		assert.NotNil(t, list.Flags().Lookup(flag), flag)
	}

	assert.NotNil(t, findSubcommand(NewVariantsCommand(), "for-item"))
	assert.NotNil(t, findSubcommand(NewOpportunitiesCommand(), "convert"))
	assert.NotNil(t, findSubcommand(NewArpsCommand(), "list"))
	assert.NotNil(t, findSubcommand(NewSalesOrdersCommand(), "list"))
}

func TestItemsList(t *testing.T) {
	useTempConfig(t)

	server, requests := fakeService(t, `{"items": [{"INTERNAL_REFERENCE": 1, "CODE": "A1", "NAME": "Bolt"}], "count": 1}`)
	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")
	viper.Set(keyOutput, constants.FormatJSON)

	out, _, err := run(NewItemsCommand(), "", "list", "--where", "code~A*", "--limit", "5", "--sort", "code")
	require.NoError(t, err)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "A1", items[0]["CODE"])

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, "/api/v1/items", got[0].path)
	assert.Equal(t, "limit=5&sort=CODE&q=CODE%20like%20%27A*%27", got[0].rawQuery)
	assert.Equal(t, "Bearer stored-token", got[0].authorization)
}

func TestItemsList_TableOutput(t *testing.T) {
	useTempConfig(t)

	server, _ := fakeService(t, `{"items": [{"INTERNAL_REFERENCE": 1, "CODE": "A1", "NAME": "Bolt"}]}`)
	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")

	out, _, err := run(NewItemsCommand(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "A1")
	assert.Contains(t, out, "Bolt")
}

func TestArpsGet(t *testing.T) {
	useTempConfig(t)

	server, requests := fakeService(t, `{"INTERNAL_REFERENCE": 12, "CODE": "C-12", "TITLE": "Acme"}`)
	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")
	viper.Set(keyOutput, constants.FormatYAML)

	out, _, err := run(NewArpsCommand(), "", "get", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Acme")

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, "/api/v1/Arps/12", got[0].path)
}

func TestItemsGet_SeveralReferences(t *testing.T) {
	useTempConfig(t)

	server, requests := fakeService(t, `{"INTERNAL_REFERENCE": 4, "CODE": "M-4"}`)
	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")
	viper.Set(keyOutput, constants.FormatJSON)

	out, _, err := run(NewItemsCommand(), "", "get", "4", "5", "6", "--concurrency", "2")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 3)

	paths := make([]string, 0, 3)
	for _, req := range requests() {
		paths = append(paths, req.path)
	}

	assert.ElementsMatch(t, []string{"/api/v1/items/4", "/api/v1/items/5", "/api/v1/items/6"}, paths)
}

func TestItemsGet_ReportsMissingReferences(t *testing.T) {
	useTempConfig(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/api/v1/items/8" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"Message": "Record not found"}`))

			return
		}

		_, _ = w.Write([]byte(`{"INTERNAL_REFERENCE": 7, "CODE": "M-7"}`))
	}))
	t.Cleanup(server.Close)

	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")
	viper.Set(keyOutput, constants.FormatJSON)

	out, stderr, err := run(NewItemsCommand(), "", "get", "7", "8")
	require.ErrorIs(t, err, constants.ErrPartialFailure)
	assert.Contains(t, stderr, "failed to get 8")
	assert.Contains(t, out, `"M-7"`)
}

func TestItemsGet_InvalidReference(t *testing.T) {
	useTempConfig(t)

	_, _, err := run(NewItemsCommand(), "", "get", "abc")
	require.ErrorIs(t, err, constants.ErrInvalidReference)
}

func TestItemsSearch(t *testing.T) {
	useTempConfig(t)

	server, requests := fakeService(t, `{"items": []}`)
	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")
	viper.Set(keyOutput, constants.FormatJSON)

	out, _, err := run(NewItemsCommand(), "", "search", "test")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	_, _, err = run(NewItemsCommand(), "", "search", "Bol", "--by", "name", "--limit", "3")
	require.NoError(t, err)

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, "q=CODE%20like%20%27test*%27", got[0].rawQuery)
	assert.Equal(t, "limit=3&q=NAME%20like%20%27Bol*%27", got[1].rawQuery)
}

func TestItemsCount(t *testing.T) {
	useTempConfig(t)

	server, requests := fakeService(t, `{"items": [], "count": 42}`)
	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")

	out, _, err := run(NewItemsCommand(), "", "count", "--where", "status=1")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, "limit=0&q=STATUS%20eq%201&count=true", got[0].rawQuery)
}

func TestOpportunitiesConvert(t *testing.T) {
	useTempConfig(t)

	server, requests := fakeService(t, `{"INTERNAL_REFERENCE": 900, "NUMBER": "SO-001"}`)
	viper.Set(keyURL, server.URL)
	viper.Set(keyToken, "stored-token")
	viper.Set(keyOutput, constants.FormatJSON)

	out, _, err := run(NewOpportunitiesCommand(), "", "convert", "5")
	require.NoError(t, err)
	assert.Contains(t, out, `"NUMBER": "SO-001"`)

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "/api/v1/opportunities/convertToOrder", got[0].path)
	assert.JSONEq(t, `{"INTERNAL_REFERENCE": 5}`, got[0].body)
}

func TestCreateClient_Errors(t *testing.T) {
	t.Run("no url", func(t *testing.T) {
		useTempConfig(t)

		_, _, err := run(NewItemsCommand(), "", "list")
		require.ErrorIs(t, err, constants.ErrNoURLConfigured)
	})

	t.Run("no credentials", func(t *testing.T) {
		useTempConfig(t)
		viper.Set(keyURL, "https://erp.example.com")

		_, _, err := run(NewItemsCommand(), "", "list")
		require.ErrorIs(t, err, constants.ErrNotAuthenticated)
	})
}
