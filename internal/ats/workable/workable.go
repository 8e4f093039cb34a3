// Package workable fetches one employer's jobs from the public Workable
// accounts API, falling back to the __NEXT_DATA__ blob embedded in the
// rendered board when the API is blocked.
package workable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"

	"github.com/PuerkitoBio/goquery"
)

const defaultAPIBase = "https://apply.workable.com"

type Fetcher struct {
	client *ats.Client

	APIBase string
}

func New(client *ats.Client) *Fetcher {
	return &Fetcher{client: client, APIBase: defaultAPIBase}
}

func (f *Fetcher) Platform() domain.Platform { return domain.PlatformWorkable }

func (f *Fetcher) FetchAll(ctx context.Context, p resolve.Params) (ats.Batch, error) {
	url := fmt.Sprintf("%s/api/v3/accounts/%s/jobs", f.APIBase, p.Slug)

	var resp struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	err := f.client.GetJSON(ctx, url, &resp)
	if err == nil {
		return ats.Batch{Jobs: toRaw(resp.Jobs)}, nil
	}

	log.Printf("[ats:workable] slug=%s api blocked (%v), trying board html", p.Slug, err)

	jobs, htmlErr := f.fetchFromBoardHTML(ctx, p)
	if htmlErr != nil {
		return ats.Batch{}, &ats.FirstPageError{Err: fmt.Errorf("workable api (%v) and board html: %w", err, htmlErr)}
	}
	return ats.Batch{Jobs: jobs}, nil
}

func (f *Fetcher) fetchFromBoardHTML(ctx context.Context, p resolve.Params) ([]ats.RawJob, error) {
	boardURL := fmt.Sprintf("%s/%s/", f.APIBase, p.Slug)

	body, err := f.client.GetRaw(ctx, boardURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse board html: %w", err)
	}

	blob := doc.Find("script#__NEXT_DATA__").First().Text()
	if blob == "" {
		return nil, fmt.Errorf("no __NEXT_DATA__ in board html")
	}

	var next struct {
		Props struct {
			PageProps struct {
				Jobs []json.RawMessage `json:"jobs"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(blob), &next); err != nil {
		return nil, fmt.Errorf("decode __NEXT_DATA__: %w", err)
	}
	if len(next.Props.PageProps.Jobs) == 0 {
		return nil, fmt.Errorf("__NEXT_DATA__ carries no jobs")
	}
	return toRaw(next.Props.PageProps.Jobs), nil
}

func toRaw(items []json.RawMessage) []ats.RawJob {
	out := make([]ats.RawJob, 0, len(items))
	for _, raw := range items {
		var wp ats.WorkablePosting
		if err := json.Unmarshal(raw, &wp); err != nil {
			continue
		}
		out = append(out, ats.RawJob{
			Platform: domain.PlatformWorkable,
			Payload:  raw,
			Workable: &wp,
		})
	}
	return out
}
