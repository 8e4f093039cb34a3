// Package taleo fetches one employer's requisitions from Taleo's career
// section REST search. The response shape is tenant-dependent: some return
// {"requisitionList": [...]}, others a bare array. Anything else is a fetch
// error, never a guess.
package taleo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/ats/util"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"
)

type Fetcher struct {
	client *ats.Client

	// MaxPages guards against a tenant that keeps echoing the same page.
	MaxPages int
}

func New(client *ats.Client) *Fetcher {
	return &Fetcher{client: client, MaxPages: 50}
}

func (f *Fetcher) Platform() domain.Platform { return domain.PlatformTaleo }

type searchBody struct {
	MultilineEnabled bool `json:"multilineEnabled"`
	PageNo           int  `json:"pageNo"`
	FieldData        struct {
		Fields struct {
			Keyword  string `json:"KEYWORD"`
			Location string `json:"LOCATION"`
		} `json:"fields"`
		Valid bool `json:"valid"`
	} `json:"fieldData"`
}

func searchURL(p resolve.Params, withPortal bool) string {
	u := fmt.Sprintf("%s/careersection/rest/jobboard/searchjobs?lang=en", p.Origin())
	if withPortal && p.PortalID != "" {
		u += "&portal=" + p.PortalID
	}
	return u
}

func (f *Fetcher) FetchAll(ctx context.Context, p resolve.Params) (ats.Batch, error) {
	withPortal := p.PortalID != ""

	var (
		jobs   []ats.RawJob
		failed int
		seen   = map[string]bool{}
	)

	for page := 1; page <= f.MaxPages; page++ {
		reqs, err := f.fetchPage(ctx, p, page, withPortal)

		// The portal-scoped endpoint 404s/401s on some tenants; fall back
		// to the plain one once, on the first page only.
		if err != nil && page == 1 && withPortal && isDeniedOrMissing(err) {
			withPortal = false
			log.Printf("[ats:taleo] host=%s portal=%s rejected, falling back to plain endpoint", p.Host, p.PortalID)
			reqs, err = f.fetchPage(ctx, p, page, withPortal)
		}

		if err != nil {
			if page == 1 {
				return ats.Batch{}, &ats.FirstPageError{Err: fmt.Errorf("taleo page 1: %w", err)}
			}
			failed++
			log.Printf("[ats:taleo] host=%s page=%d abandoned: %v", p.Host, page, err)
			break
		}

		added := 0
		for _, rj := range reqs {
			key := util.FirstNonEmpty(rj.Taleo.ContestNo, rj.Taleo.JobID, rj.Taleo.Title)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			jobs = append(jobs, rj)
			added++
		}
		if added == 0 {
			break
		}
	}

	return ats.Batch{Jobs: jobs, PagesFailed: failed}, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, p resolve.Params, page int, withPortal bool) ([]ats.RawJob, error) {
	body := searchBody{PageNo: page}
	body.FieldData.Valid = true

	var raw json.RawMessage
	if err := f.client.PostJSON(ctx, searchURL(p, withPortal), body, &raw); err != nil {
		return nil, err
	}

	list, err := requisitionList(raw)
	if err != nil {
		return nil, err
	}

	out := make([]ats.RawJob, 0, len(list))
	for _, item := range list {
		req, ok := parseRequisition(item, p)
		if !ok {
			continue
		}
		out = append(out, ats.RawJob{
			Platform: domain.PlatformTaleo,
			Payload:  item,
			Taleo:    &req,
		})
	}
	return out, nil
}

// requisitionList structurally detects which of the known response shapes
// the tenant uses.
func requisitionList(raw json.RawMessage) ([]json.RawMessage, error) {
	var wrapped struct {
		RequisitionList []json.RawMessage `json:"requisitionList"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.RequisitionList != nil {
		return wrapped.RequisitionList, nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	return nil, &ats.FetchError{Err: fmt.Errorf("unrecognized taleo response shape: %s", util.Truncate(string(raw), 120))}
}

// parseRequisition tolerates the field-name drift across tenants.
func parseRequisition(item json.RawMessage, p resolve.Params) (ats.TaleoRequisition, bool) {
	var m map[string]any
	if err := json.Unmarshal(item, &m); err != nil {
		return ats.TaleoRequisition{}, false
	}

	req := ats.TaleoRequisition{
		ContestNo:   strField(m, "contestNo", "requisitionNo", "jobNumber"),
		JobID:       strField(m, "jobId", "id"),
		Title:       strField(m, "title", "requisitionTitle", "jobTitle"),
		Location:    strField(m, "location", "primaryLocation", "locations"),
		PostedDate:  strField(m, "postedDate", "postingDate", "datePosted"),
		Description: strField(m, "description", "externalDescription"),
	}

	// Column-oriented tenants pack title/location/date/contestNo into a
	// "column" array, in that order.
	if cols, ok := m["column"].([]any); ok {
		get := func(i int) string {
			if i < len(cols) {
				if s, ok := cols[i].(string); ok {
					return util.CleanText(s)
				}
			}
			return ""
		}
		if req.Title == "" {
			req.Title = get(0)
		}
		if req.Location == "" {
			req.Location = get(1)
		}
		if req.PostedDate == "" {
			req.PostedDate = get(2)
		}
		if req.ContestNo == "" {
			req.ContestNo = get(3)
		}
	}

	if req.ContestNo == "" && req.JobID == "" {
		return ats.TaleoRequisition{}, false
	}

	id := util.FirstNonEmpty(req.ContestNo, req.JobID)
	req.DetailURL = fmt.Sprintf("%s/careersection/%s/jobdetail.ftl?job=%s&lang=en", p.Origin(), p.Section, id)
	return req, true
}

func strField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case string:
				if s := util.CleanText(t); s != "" {
					return s
				}
			case float64:
				return fmt.Sprintf("%.0f", t)
			}
		}
	}
	return ""
}

func isDeniedOrMissing(err error) bool {
	var fe *ats.FetchError
	if errors.As(err, &fe) {
		return fe.Status == 401 || fe.Status == 403 || fe.Status == 404
	}
	return false
}
