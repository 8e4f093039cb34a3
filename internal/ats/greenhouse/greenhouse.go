// Package greenhouse fetches one employer's jobs from the public Greenhouse
// board API. The whole list comes back in a single page, so a failure here
// is always a first-page failure.
package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"
)

const defaultAPIBase = "https://boards-api.greenhouse.io"

type Fetcher struct {
	client *ats.Client

	// APIBase is swappable for tests; production leaves the default.
	APIBase string
}

func New(client *ats.Client) *Fetcher {
	return &Fetcher{client: client, APIBase: defaultAPIBase}
}

func (f *Fetcher) Platform() domain.Platform { return domain.PlatformGreenhouse }

func (f *Fetcher) FetchAll(ctx context.Context, p resolve.Params) (ats.Batch, error) {
	url := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", f.APIBase, p.Slug)

	var resp struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := f.client.GetJSON(ctx, url, &resp); err != nil {
		return ats.Batch{}, &ats.FirstPageError{Err: fmt.Errorf("greenhouse list: %w", err)}
	}

	jobs := make([]ats.RawJob, 0, len(resp.Jobs))
	for _, raw := range resp.Jobs {
		var gj ats.GreenhouseJob
		if err := json.Unmarshal(raw, &gj); err != nil {
			continue
		}
		jobs = append(jobs, ats.RawJob{
			Platform:   domain.PlatformGreenhouse,
			Payload:    raw,
			Greenhouse: &gj,
		})
	}
	return ats.Batch{Jobs: jobs}, nil
}
