package resolve

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"jobradar-engine/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// Workday detail links look like /{locale}/{site}/job/... or
// /{locale}/{site}/details/...; the locale segment is optional.
var (
	wdDetailLinkRe = regexp.MustCompile(`^/(?:([a-z]{2}-[A-Z]{2})/)?([A-Za-z0-9_-]+)/(?:job|details)(?:/|$)`)
	wdSiteIDRe     = regexp.MustCompile(`"(?:siteId|careerSiteId)"\s*:\s*"([^"]+)"`)
)

// workdayParams derives tenant/site/locale from the board URL itself when
// possible, and only then falls back to fetching the board HTML.
func (r *Resolver) workdayParams(ctx context.Context, boardURL string, u *url.URL) (Params, error) {
	host := strings.ToLower(u.Host)
	if !strings.HasSuffix(host, "myworkdayjobs.com") && !strings.HasSuffix(host, "myworkdaysite.com") {
		return Params{}, &DiscoveryError{BoardURL: boardURL, Reason: fmt.Sprintf("host %q is not a workday board", u.Host)}
	}

	parts := strings.Split(u.Host, ".")
	if len(parts) < 3 {
		return Params{}, &DiscoveryError{BoardURL: boardURL, Reason: fmt.Sprintf("unexpected workday host %q", u.Host)}
	}
	tenant := parts[0]
	// wd5-impl hosts carry the tenant in the path instead.
	if strings.HasPrefix(tenant, "wd") && len(pathSegments(u)) >= 2 {
		tenant = pathSegments(u)[0]
	}

	p := Params{
		Platform: domain.PlatformWorkday,
		Scheme:   u.Scheme,
		Host:     u.Host,
		Tenant:   tenant,
	}

	segs := pathSegments(u)
	if len(segs) > 0 {
		if looksLikeLocale(segs[0]) {
			p.Locale = normalizeLocale(segs[0])
			segs = segs[1:]
		}
		if len(segs) > 0 && segs[len(segs)-1] != "" {
			p.Site = segs[len(segs)-1]
		}
	}
	if p.Site != "" {
		return p, nil
	}

	// No site slug in the path; inspect the board page.
	site, locale, err := r.workdaySiteFromHTML(ctx, boardURL)
	if err != nil {
		return Params{}, err
	}
	p.Site = site
	if p.Locale == "" {
		p.Locale = locale
	}
	return p, nil
}

func (r *Resolver) workdaySiteFromHTML(ctx context.Context, boardURL string) (site, locale string, err error) {
	body, err := r.client.GetRaw(ctx, boardURL)
	if err != nil {
		return "", "", fmt.Errorf("workday board page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if m := wdDetailLinkRe.FindStringSubmatch(strings.TrimSpace(href)); m != nil {
				locale = m[1]
				site = m[2]
				return false
			}
			return true
		})
	}
	if site != "" {
		return site, locale, nil
	}

	if m := wdSiteIDRe.FindSubmatch(body); m != nil {
		return string(m[1]), locale, nil
	}

	return "", "", &DiscoveryError{BoardURL: boardURL, Reason: "no site slug in path or board html"}
}

func looksLikeLocale(s string) bool {
	// accepts en-US, en-us, etc.
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	return isAlpha(s[0:2]) && isAlpha(s[3:5])
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		return strings.ToLower(s[0:2]) + "-" + strings.ToUpper(s[3:5])
	}
	return s
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}
