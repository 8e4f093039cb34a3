// Package normalize maps each platform's raw posting onto the canonical job
// record. A record that yields no stable external id or no title is dropped
// outright; a synthetic identity would just duplicate itself next crawl.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/ats/util"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/resolve"
)

// Normalize returns the canonical job for raw, or nil when the record lacks
// a derivable identity or title (a skip, not an error).
func Normalize(emp domain.Employer, p resolve.Params, raw ats.RawJob) *domain.Job {
	var j *domain.Job

	switch raw.Platform {
	case domain.PlatformGreenhouse:
		j = fromGreenhouse(raw.Greenhouse)
	case domain.PlatformLever:
		j = fromLever(raw.Lever)
	case domain.PlatformWorkday:
		j = fromWorkday(p, raw.Workday)
	case domain.PlatformTaleo:
		j = fromTaleo(raw.Taleo)
	case domain.PlatformWorkable:
		j = fromWorkable(p, raw.Workable)
	case domain.PlatformICIMS:
		j = fromICIMS(raw.ICIMS)
	default:
		return nil
	}

	if j == nil {
		return nil
	}
	if j.ExternalID == "" || strings.TrimSpace(j.Title) == "" {
		return nil
	}

	j.EmployerID = emp.ID
	j.Platform = raw.Platform
	j.Title = util.CleanText(j.Title)
	j.Location = util.NormalizeLocation(j.Location)
	j.LocationType = inferLocationType(j.Location, j.Title, j.DescriptionText)
	j.EmploymentType = EmploymentTypeFromTitle(j.Title)
	j.RawPayload = raw.Payload
	return j
}

func fromGreenhouse(g *ats.GreenhouseJob) *domain.Job {
	if g == nil || g.ID == 0 {
		return nil
	}
	loc := g.Location.Name
	if loc == "" {
		loc = util.ExtractLabeledLocation(g.Content)
	}
	return &domain.Job{
		ExternalID:      strconv.FormatInt(g.ID, 10),
		Title:           g.Title,
		Location:        loc,
		JobURL:          g.AbsoluteURL,
		DescriptionText: g.Content,
		PostedAt:        firstDate(g.CreatedAt, g.UpdatedAt),
	}
}

func fromLever(l *ats.LeverPosting) *domain.Job {
	if l == nil || l.ID == "" {
		return nil
	}
	var posted *time.Time
	if l.CreatedAt > 0 {
		t := time.UnixMilli(l.CreatedAt).UTC()
		posted = &t
	}

	var reqs []string
	for _, list := range l.Lists {
		if strings.Contains(strings.ToLower(list.Text), "requirement") ||
			strings.Contains(strings.ToLower(list.Text), "qualification") {
			reqs = append(reqs, list.Content)
		}
	}

	return &domain.Job{
		ExternalID:       l.ID,
		Title:            l.Text,
		Location:         l.Categories.Location,
		JobURL:           l.HostedURL,
		ApplyURL:         l.ApplyURL,
		DescriptionText:  l.Description,
		RequirementsText: strings.Join(reqs, "\n"),
		PostedAt:         posted,
	}
}

func fromWorkday(p resolve.Params, w *ats.WorkdayPosting) *domain.Job {
	if w == nil {
		return nil
	}
	loc := w.LocationsText
	if loc == "" {
		loc = labeledBullet(w.BulletFields)
	}
	return &domain.Job{
		ExternalID: WorkdayExternalID(w.JobReqID, w.ExternalPath),
		Title:      w.Title,
		Location:   loc,
		JobURL:     workdayJobURL(p, w.ExternalPath),
		PostedAt:   firstDate(w.PostedOnDate, w.PostedOn),
	}
}

func fromTaleo(t *ats.TaleoRequisition) *domain.Job {
	if t == nil {
		return nil
	}
	return &domain.Job{
		ExternalID:      util.FirstNonEmpty(t.ContestNo, t.JobID),
		Title:           t.Title,
		Location:        t.Location,
		JobURL:          t.DetailURL,
		DescriptionText: t.Description,
		PostedAt:        firstDate(t.PostedDate),
	}
}

func fromWorkable(p resolve.Params, w *ats.WorkablePosting) *domain.Job {
	if w == nil || w.Shortcode == "" {
		return nil
	}
	jobURL := w.URL
	if jobURL == "" {
		jobURL = fmt.Sprintf("https://apply.workable.com/%s/j/%s/", p.Slug, w.Shortcode)
	}

	var locParts []string
	for _, s := range []string{w.Location.City, w.Location.Region, w.Location.Country} {
		if s = util.CleanText(s); s != "" {
			locParts = append(locParts, s)
		}
	}
	loc := strings.Join(locParts, ", ")
	if w.Remote && loc == "" {
		loc = "Remote"
	}

	return &domain.Job{
		ExternalID: w.Shortcode,
		Title:      w.Title,
		Location:   loc,
		JobURL:     jobURL,
		PostedAt:   firstDate(w.Published, w.Created),
	}
}

func fromICIMS(i *ats.ICIMSJob) *domain.Job {
	if i == nil || i.ID == "" {
		return nil
	}
	return &domain.Job{
		ExternalID: i.ID,
		Title:      i.Title,
		Location:   i.Location,
		JobURL:     i.DetailURL,
		PostedAt:   firstDate(i.PostedOn),
	}
}

// firstDate parses candidates in order and keeps the first that parses.
// Nothing parseable means a nil postedAt, never "now".
func firstDate(candidates ...string) *time.Time {
	for _, c := range candidates {
		if t := util.ParseDate(c); t != nil {
			return t
		}
	}
	return nil
}

// labeledBullet scans generic "Label: value" bullet fields for a location.
func labeledBullet(bullets []string) string {
	for _, b := range bullets {
		if loc := util.ExtractLabeledLocation(b); loc != "" {
			return loc
		}
	}
	return ""
}

func inferLocationType(location, title, desc string) domain.LocationType {
	blob := strings.ToLower(strings.Join([]string{location, title, desc}, " "))

	switch {
	case strings.Contains(blob, "remote"):
		return domain.LocationRemote
	case strings.Contains(blob, "hybrid"):
		return domain.LocationHybrid
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") || strings.Contains(blob, "on site"):
		return domain.LocationOnsite
	case strings.TrimSpace(location) != "":
		return domain.LocationOnsite
	default:
		return domain.LocationUnknown
	}
}

// EmploymentTypeFromTitle is a deterministic title-keyword classifier.
func EmploymentTypeFromTitle(title string) domain.EmploymentType {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "intern") && !strings.Contains(t, "internal"),
		strings.Contains(t, "co-op"), strings.Contains(t, "coop"):
		return domain.EmploymentIntern
	case strings.Contains(t, "new grad"), strings.Contains(t, "new graduate"),
		strings.Contains(t, "university grad"), strings.Contains(t, "early career"),
		strings.Contains(t, "entry level"), strings.Contains(t, "entry-level"):
		return domain.EmploymentNewGrad
	case strings.Contains(t, "contract"), strings.Contains(t, "part-time"),
		strings.Contains(t, "part time"), strings.Contains(t, "temporary"):
		return domain.EmploymentUnknown
	default:
		return domain.EmploymentFullTime
	}
}
