// Package ats holds the shared contract between the platform fetchers and
// the normalizer: a tagged-union raw job, the fetch batch shape, and the
// fetch error taxonomy. One variant per supported platform; the normalizer
// dispatches on the tag instead of sniffing structure.
package ats

import (
	"encoding/json"

	"jobradar-engine/internal/domain"
)

// RawJob is one untransformed posting as a platform returned it. Exactly one
// of the variant pointers is set, matching Platform. Payload retains the
// original response fragment for persistence and reprocessing.
type RawJob struct {
	Platform domain.Platform
	Payload  json.RawMessage

	Greenhouse *GreenhouseJob
	Lever      *LeverPosting
	Workday    *WorkdayPosting
	Taleo      *TaleoRequisition
	Workable   *WorkablePosting
	ICIMS      *ICIMSJob
}

// Batch is everything one employer's fetch produced. PagesFailed counts
// pages abandoned after the retry budget; the first page failing is not a
// Batch at all but a FirstPageError.
type Batch struct {
	Jobs        []RawJob
	PagesFailed int
}

type GreenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

type LeverPosting struct {
	ID          string `json:"id"`
	Text        string `json:"text"` // title
	HostedURL   string `json:"hostedUrl"`
	ApplyURL    string `json:"applyUrl"`
	CreatedAt   int64  `json:"createdAt"` // ms epoch
	Description string `json:"description"`
	Categories  struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	Lists []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	} `json:"lists"`
}

type WorkdayPosting struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`     // free text, e.g. "Posted 3 Days Ago"
	PostedOnDate  string   `json:"postedOnDate"` // structured when present
	StartDate     string   `json:"startDate"`
	JobReqID      string   `json:"jobReqId"`
	BulletFields  []string `json:"bulletFields"`
}

// TaleoRequisition is the common denominator of Taleo's tenant-dependent
// response shapes; the fetcher maps either shape into it.
type TaleoRequisition struct {
	ContestNo   string
	JobID       string
	Title       string
	Location    string
	PostedDate  string
	Description string
	DetailURL   string
}

type WorkablePosting struct {
	Title     string `json:"title"`
	Shortcode string `json:"shortcode"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Created   string `json:"created_at"`
	Remote    bool   `json:"remote"`
	Location  struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Workplace  string `json:"workplace"` // remote | hybrid | on_site
	Department string `json:"department"`
}

type ICIMSJob struct {
	ID        string
	Title     string
	Location  string
	DetailURL string
	PostedOn  string
}
