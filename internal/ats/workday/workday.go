// Package workday fetches one employer's postings through Workday's CXS
// jobs endpoint. The platform caps each response at 20 postings, so past
// the first page all remaining offsets go out in bounded parallel batches
// and are reassembled in offset order.
package workday

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/batch"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"
)

// PageLimit is Workday's hard per-request cap; asking for more silently
// returns 20 anyway.
const PageLimit = 20

type request struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type response struct {
	Total       int               `json:"total"`
	JobPostings []json.RawMessage `json:"jobPostings"`
}

type Fetcher struct {
	client *ats.Client

	// PageConcurrency bounds parallel offset requests within one employer.
	PageConcurrency int
}

func New(client *ats.Client, pageConcurrency int) *Fetcher {
	if pageConcurrency < 1 {
		pageConcurrency = 1
	}
	return &Fetcher{client: client, PageConcurrency: pageConcurrency}
}

func (f *Fetcher) Platform() domain.Platform { return domain.PlatformWorkday }

func endpoint(p resolve.Params) string {
	return fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", p.Origin(), p.Tenant, p.Site)
}

// RemainingOffsets lists every offset after the first page, given the total
// the first response reported.
func RemainingOffsets(total int) []int {
	var offs []int
	for off := PageLimit; off < total; off += PageLimit {
		offs = append(offs, off)
	}
	return offs
}

func (f *Fetcher) FetchAll(ctx context.Context, p resolve.Params) (ats.Batch, error) {
	url := endpoint(p)

	first, err := f.fetchPage(ctx, p, url, 0)
	if err != nil {
		return ats.Batch{}, &ats.FirstPageError{Err: fmt.Errorf("workday offset 0: %w", err)}
	}

	jobs := postingsToRaw(first.JobPostings)

	offsets := RemainingOffsets(first.Total)
	if len(offsets) == 0 {
		return ats.Batch{Jobs: jobs}, nil
	}

	tasks := make([]func(context.Context) ([]json.RawMessage, error), len(offsets))
	for i, off := range offsets {
		off := off
		tasks[i] = func(ctx context.Context) ([]json.RawMessage, error) {
			resp, err := f.fetchPage(ctx, p, url, off)
			if err != nil {
				return nil, err
			}
			return resp.JobPostings, nil
		}
	}

	results, err := batch.Run(ctx, f.PageConcurrency, tasks)
	if err != nil {
		return ats.Batch{Jobs: jobs}, err
	}

	failed := 0
	// results are index-ordered, which is offset order.
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("[ats:workday] tenant=%s site=%s offset=%d abandoned: %v",
				p.Tenant, p.Site, offsets[res.Index], res.Err)
			continue
		}
		jobs = append(jobs, postingsToRaw(res.Value)...)
	}

	return ats.Batch{Jobs: jobs, PagesFailed: failed}, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, p resolve.Params, url string, offset int) (response, error) {
	body := request{
		AppliedFacets: map[string]any{},
		Limit:         PageLimit,
		Offset:        offset,
		SearchText:    "",
	}

	var resp response
	err := f.client.DoJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", p.Origin())
		if p.Locale != "" {
			req.Header.Set("Accept-Language", p.Locale)
		} else {
			req.Header.Set("Accept-Language", "en-US")
		}
		return req, nil
	}, &resp)
	return resp, err
}

func postingsToRaw(postings []json.RawMessage) []ats.RawJob {
	out := make([]ats.RawJob, 0, len(postings))
	for _, raw := range postings {
		var wp ats.WorkdayPosting
		if err := json.Unmarshal(raw, &wp); err != nil {
			continue
		}
		out = append(out, ats.RawJob{
			Platform: domain.PlatformWorkday,
			Payload:  raw,
			Workday:  &wp,
		})
	}
	return out
}
