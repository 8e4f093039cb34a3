package greenhouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"
)

func testFetcher(srv *httptest.Server) *Fetcher {
	f := New(ats.NewClient(5*time.Second, nil, 1, 0))
	f.APIBase = srv.URL
	return f
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/boards/acme/jobs", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("content"))
		w.Write([]byte(`{"jobs":[
			{"id":1,"title":"Intern","absolute_url":"https://boards.greenhouse.io/acme/jobs/1","created_at":"2024-01-01T00:00:00Z"},
			{"id":2,"title":"Engineer","absolute_url":"https://boards.greenhouse.io/acme/jobs/2","location":{"name":"NYC"}}
		]}`))
	}))
	defer srv.Close()

	got, err := testFetcher(srv).FetchAll(context.Background(), resolve.Params{Slug: "acme"})
	require.NoError(t, err)
	assert.Zero(t, got.PagesFailed)
	require.Len(t, got.Jobs, 2)

	first := got.Jobs[0]
	assert.Equal(t, domain.PlatformGreenhouse, first.Platform)
	require.NotNil(t, first.Greenhouse)
	assert.Equal(t, int64(1), first.Greenhouse.ID)
	assert.Equal(t, "Intern", first.Greenhouse.Title)
	assert.Contains(t, string(first.Payload), `"absolute_url"`)

	assert.Equal(t, "NYC", got.Jobs[1].Greenhouse.Location.Name)
}

func TestFetchAll_EmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs":[]}`))
	}))
	defer srv.Close()

	got, err := testFetcher(srv).FetchAll(context.Background(), resolve.Params{Slug: "acme"})
	require.NoError(t, err)
	assert.Empty(t, got.Jobs)
}

func TestFetchAll_ErrorIsFirstPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher(srv).FetchAll(context.Background(), resolve.Params{Slug: "gone"})
	require.Error(t, err)
	assert.True(t, ats.IsFirstPage(err))
}
