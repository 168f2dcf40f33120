package source_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/source"
)

func TestRESTClient_FetchRange(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/purchase_orders", r.URL.Path)
		assert.Equal(t, "po_number,cost", r.URL.Query().Get("select"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "items", r.Header.Get("Range-Unit"))
		assert.Equal(t, "0-99", r.Header.Get("Range"))

		w.WriteHeader(http.StatusPartialContent)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"po_number": "PO-1", "cost": "125.50"},
			{"po_number": "PO-2", "cost": nil},
		})
	}))
	defer srv.Close()

	c := source.NewRESTClient(srv.URL, "test-key")

	rows, err := c.FetchRange(context.Background(), source.Query{
		Table:   "purchase_orders",
		Columns: []string{"po_number", "cost"},
	}, 0, 100)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PO-1", rows[0]["po_number"])
	assert.Equal(t, "125.50", rows[0]["cost"])
	assert.Nil(t, rows[1]["cost"])
}

func TestRESTClient_RangeHeaderAdvances(t *testing.T) {
	t.Parallel()

	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := source.NewRESTClient(srv.URL, "k")

	_, err := c.FetchRange(context.Background(), source.Query{Table: "t"}, 5000, 5000)
	require.NoError(t, err)
	assert.Equal(t, "5000-9999", gotRange)
}

func TestRESTClient_DefaultsToSelectStar(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := source.NewRESTClient(srv.URL+"/", "k")

	rows, err := c.FetchRange(context.Background(), source.Query{Table: "t"}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRESTClient_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"relation does not exist"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := source.NewRESTClient(srv.URL, "k")

	_, err := c.FetchRange(context.Background(), source.Query{Table: "missing"}, 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestRESTClient_MalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := source.NewRESTClient(srv.URL, "k")

	_, err := c.FetchRange(context.Background(), source.Query{Table: "t"}, 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing range response")
}

func TestRESTClient_InvalidLimit(t *testing.T) {
	t.Parallel()

	c := source.NewRESTClient("http://localhost:9", "k")

	_, err := c.FetchRange(context.Background(), source.Query{Table: "t"}, 0, 0)
	require.Error(t, err)
}

// Fetcher and RESTClient together against a ranged HTTP fixture.
func TestFetcher_AgainstRESTServer(t *testing.T) {
	t.Parallel()

	const total = 23

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.Header.Get("Range"), "-", 2)
		require.Len(t, parts, 2)
		from, err := strconv.Atoi(parts[0])
		require.NoError(t, err)
		to, err := strconv.Atoi(parts[1])
		require.NoError(t, err)

		var rows []map[string]any
		for i := from; i <= to && i < total; i++ {
			rows = append(rows, map[string]any{"id": i})
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	f := source.NewFetcher(
		source.NewRESTClient(srv.URL, "k"),
		source.WithPageSize(10),
	)

	result, err := f.FetchAll(context.Background(), source.Query{Table: "t"})

	require.NoError(t, err)
	assert.Len(t, result.Rows, total)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, "end_of_data", result.StoppedAt)
}
