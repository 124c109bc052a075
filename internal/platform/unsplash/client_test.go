package unsplash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{httpClient: srv.Client(), accessKey: "test-key", baseURL: srv.URL}
}

func TestSearchFoodReturnsFirstResult(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"urls":{"regular":"https://images.example/pasta.jpg"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	url, err := testClient(srv).SearchFood(context.Background(), "Carbonara")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/pasta.jpg", url)
	assert.Equal(t, "Client-ID test-key", gotAuth)
	assert.Equal(t, "Carbonara food dish meal", gotQuery)
}

func TestSearchFoodFallsBackToGenericQuery(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		queries = append(queries, q)
		w.Header().Set("Content-Type", "application/json")
		if len(queries) == 1 {
			w.Write([]byte(`{"results":[]}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"results":[{"urls":{"regular":"https://images.example/generic.jpg"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	url, err := testClient(srv).SearchFood(context.Background(), "Zxqwv Stew")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/generic.jpg", url)
	require.Len(t, queries, 2)
	assert.Equal(t, "delicious food plated", queries[1])
}

func TestSearchFoodNoResultsAnywhere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := testClient(srv).SearchFood(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestSearchFoodBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv).SearchFood(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoImage)
}
