// Package lever fetches one employer's postings from the public Lever list
// endpoint. Single-shot, like Greenhouse.
package lever

import (
	"context"
	"encoding/json"
	"fmt"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"
)

const defaultAPIBase = "https://api.lever.co"

type Fetcher struct {
	client *ats.Client

	APIBase string
}

func New(client *ats.Client) *Fetcher {
	return &Fetcher{client: client, APIBase: defaultAPIBase}
}

func (f *Fetcher) Platform() domain.Platform { return domain.PlatformLever }

func (f *Fetcher) FetchAll(ctx context.Context, p resolve.Params) (ats.Batch, error) {
	url := fmt.Sprintf("%s/v0/postings/%s?mode=json", f.APIBase, p.Slug)

	var postings []json.RawMessage
	if err := f.client.GetJSON(ctx, url, &postings); err != nil {
		return ats.Batch{}, &ats.FirstPageError{Err: fmt.Errorf("lever list: %w", err)}
	}

	jobs := make([]ats.RawJob, 0, len(postings))
	for _, raw := range postings {
		var lp ats.LeverPosting
		if err := json.Unmarshal(raw, &lp); err != nil {
			continue
		}
		jobs = append(jobs, ats.RawJob{
			Platform: domain.PlatformLever,
			Payload:  raw,
			Lever:    &lp,
		})
	}
	return ats.Batch{Jobs: jobs}, nil
}
