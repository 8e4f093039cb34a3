// Package icims walks an iCIMS tenant's hosted search pages. iCIMS has no
// public JSON list endpoint, so jobs come out of the board HTML itself:
// links shaped like /jobs/{id}/{slug}/job, paged with the pr query param.
package icims

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/ats/util"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"

	"github.com/PuerkitoBio/goquery"
)

var jobLinkRe = regexp.MustCompile(`/jobs/(\d+)/[^/?#]*/job`)

type Fetcher struct {
	client *ats.Client

	MaxPages int
}

func New(client *ats.Client) *Fetcher {
	return &Fetcher{client: client, MaxPages: 50}
}

func (f *Fetcher) Platform() domain.Platform { return domain.PlatformICIMS }

func (f *Fetcher) FetchAll(ctx context.Context, p resolve.Params) (ats.Batch, error) {
	var (
		jobs   []ats.RawJob
		failed int
		seen   = map[string]bool{}
	)

	for page := 0; page < f.MaxPages; page++ {
		url := fmt.Sprintf("%s/jobs/search?ss=1&in_iframe=1&pr=%d", p.Origin(), page)

		body, err := f.client.GetRaw(ctx, url)
		if err != nil {
			if page == 0 {
				return ats.Batch{}, &ats.FirstPageError{Err: fmt.Errorf("icims page 0: %w", err)}
			}
			failed++
			log.Printf("[ats:icims] host=%s page=%d abandoned: %v", p.Host, page, err)
			break
		}

		pageJobs, err := parseSearchPage(body, p)
		if err != nil {
			if page == 0 {
				return ats.Batch{}, &ats.FirstPageError{Err: err}
			}
			failed++
			break
		}

		added := 0
		for _, rj := range pageJobs {
			if seen[rj.ICIMS.ID] {
				continue
			}
			seen[rj.ICIMS.ID] = true
			jobs = append(jobs, rj)
			added++
		}
		// A page that adds nothing new means we ran off the end (iCIMS
		// repeats the last page rather than 404ing).
		if added == 0 {
			break
		}
	}

	return ats.Batch{Jobs: jobs, PagesFailed: failed}, nil
}

func parseSearchPage(body []byte, p resolve.Params) ([]ats.RawJob, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("icims parse html: %w", err)
	}

	var out []ats.RawJob
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := jobLinkRe.FindStringSubmatch(href)
		if m == nil {
			return
		}

		title := util.CleanText(a.Text())
		if title == "" {
			title = util.CleanText(a.AttrOr("title", ""))
		}

		detail := href
		if strings.HasPrefix(detail, "/") {
			detail = p.Origin() + detail
		}

		// The row container usually carries a labeled location under the link.
		location := ""
		if row := a.Closest(".row, .iCIMS_JobsTableRow, li, tr"); row.Length() > 0 {
			location = util.ExtractLabeledLocation(row.Text())
			if location == "" {
				location = util.CleanText(row.Find(".glyphicons-map-marker").Parent().Text())
			}
		}

		job := ats.ICIMSJob{
			ID:        m[1],
			Title:     title,
			Location:  util.NormalizeLocation(location),
			DetailURL: detail,
		}
		payload, _ := json.Marshal(job)
		out = append(out, ats.RawJob{
			Platform: domain.PlatformICIMS,
			Payload:  payload,
			ICIMS:    &job,
		})
	})

	return out, nil
}
