package workday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"
)

func TestRemainingOffsets(t *testing.T) {
	assert.Empty(t, RemainingOffsets(0))
	assert.Empty(t, RemainingOffsets(20))
	assert.Equal(t, []int{20, 40}, RemainingOffsets(45))
	assert.Equal(t, []int{20}, RemainingOffsets(21))
	assert.Equal(t, []int{20, 40, 60, 80}, RemainingOffsets(100))
}

func testParams(t *testing.T, srv *httptest.Server) resolve.Params {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return resolve.Params{
		Platform: domain.PlatformWorkday,
		Scheme:   u.Scheme,
		Host:     u.Host,
		Tenant:   "acme",
		Site:     "careers",
		Locale:   "en-US",
	}
}

func pageBody(t *testing.T, total, offset, count int) []byte {
	t.Helper()
	postings := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		postings = append(postings, map[string]any{
			"title":        fmt.Sprintf("Engineer %d", offset+i),
			"externalPath": fmt.Sprintf("/job/NYC/Engineer_R%05d", offset+i),
			"jobReqId":     fmt.Sprintf("R%05d", offset+i),
		})
	}
	b, err := json.Marshal(map[string]any{"total": total, "jobPostings": postings})
	require.NoError(t, err)
	return b
}

func TestFetchAll_ReassemblesInOffsetOrder(t *testing.T) {
	const total = 45

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wday/cxs/acme/careers/jobs", r.URL.Path)

		var body struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, PageLimit, body.Limit)

		// Make the earlier offset the slower one so arrival order and
		// offset order disagree.
		if body.Offset == 20 {
			time.Sleep(50 * time.Millisecond)
		}
		count := PageLimit
		if body.Offset+count > total {
			count = total - body.Offset
		}
		w.Write(pageBody(t, total, body.Offset, count))
	}))
	defer srv.Close()

	f := New(ats.NewClient(5*time.Second, nil, 1, 0), 3)
	got, err := f.FetchAll(context.Background(), testParams(t, srv))
	require.NoError(t, err)
	assert.Zero(t, got.PagesFailed)
	require.Len(t, got.Jobs, total)

	for i, j := range got.Jobs {
		require.NotNil(t, j.Workday)
		assert.Equal(t, fmt.Sprintf("R%05d", i), j.Workday.JobReqID, "position %d", i)
	}
}

func TestFetchAll_FirstPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(ats.NewClient(5*time.Second, nil, 1, 0), 2)
	_, err := f.FetchAll(context.Background(), testParams(t, srv))
	require.Error(t, err)
	assert.True(t, ats.IsFirstPage(err))
}

func TestFetchAll_LaterPageFailureIsPartial(t *testing.T) {
	const total = 60

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Offset int `json:"offset"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Offset == 20 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Write(pageBody(t, total, body.Offset, PageLimit))
	}))
	defer srv.Close()

	f := New(ats.NewClient(5*time.Second, nil, 1, 0), 2)
	got, err := f.FetchAll(context.Background(), testParams(t, srv))
	require.NoError(t, err)
	assert.Equal(t, 1, got.PagesFailed)
	// Page at offset 20 is missing, the rest kept their order.
	require.Len(t, got.Jobs, 40)
	assert.Equal(t, "R00000", got.Jobs[0].Workday.JobReqID)
	assert.Equal(t, "R00040", got.Jobs[20].Workday.JobReqID)
}
