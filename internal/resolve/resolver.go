// Package resolve turns an employer's board URL into the concrete parameters
// its platform fetcher needs. Greenhouse, Lever, Workable, and iCIMS resolve
// from the URL alone; Workday and Taleo may need a look at the board HTML.
package resolve

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/domain"
)

// Params is everything a fetcher needs to talk to one employer's board.
// Which fields are set depends on the platform.
type Params struct {
	Platform domain.Platform
	Scheme   string
	Host     string

	Slug     string // greenhouse / lever / workable board slug
	Tenant   string // workday
	Site     string // workday career site slug
	Locale   string // workday, e.g. en-US
	Section  string // taleo career section path segment
	PortalID string // taleo numeric portal id, optional
}

func (p Params) Origin() string {
	return fmt.Sprintf("%s://%s", p.Scheme, p.Host)
}

// DiscoveryError means the board page was reachable but yielded no usable
// parameters. Not retried within a run; the employer is skipped.
type DiscoveryError struct {
	BoardURL string
	Reason   string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery %s: %s", e.BoardURL, e.Reason)
}

// Resolver caches successful resolutions by board URL for the lifetime of
// the process. Failures are not cached so the next crawl may retry.
type Resolver struct {
	client *ats.Client

	mu    sync.Mutex
	cache map[string]Params
}

func New(client *ats.Client) *Resolver {
	return &Resolver{
		client: client,
		cache:  make(map[string]Params),
	}
}

func (r *Resolver) Resolve(ctx context.Context, emp domain.Employer) (Params, error) {
	r.mu.Lock()
	if p, ok := r.cache[emp.BoardURL]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	p, err := r.resolve(ctx, emp)
	if err != nil {
		return Params{}, err
	}

	r.mu.Lock()
	r.cache[emp.BoardURL] = p
	r.mu.Unlock()

	log.Printf("[resolve] employer=%q platform=%s host=%s site=%q slug=%q portal=%q",
		emp.Name, p.Platform, p.Host, p.Site, p.Slug, p.PortalID)
	return p, nil
}

func (r *Resolver) resolve(ctx context.Context, emp domain.Employer) (Params, error) {
	u, err := parseBoardURL(emp.BoardURL)
	if err != nil {
		return Params{}, &DiscoveryError{BoardURL: emp.BoardURL, Reason: err.Error()}
	}

	switch emp.Platform {
	case domain.PlatformGreenhouse:
		return slugParams(emp.Platform, u, "greenhouse.io")
	case domain.PlatformLever:
		return slugParams(emp.Platform, u, "lever.co")
	case domain.PlatformWorkable:
		return workableParams(u)
	case domain.PlatformICIMS:
		return icimsParams(u)
	case domain.PlatformWorkday:
		return r.workdayParams(ctx, emp.BoardURL, u)
	case domain.PlatformTaleo:
		return r.taleoParams(ctx, emp.BoardURL, u)
	default:
		return Params{}, &DiscoveryError{BoardURL: emp.BoardURL, Reason: fmt.Sprintf("unsupported platform %q", emp.Platform)}
	}
}

func parseBoardURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", raw)
	}
	return u, nil
}

// slugParams handles boards whose path is just /{slug}: Greenhouse
// (boards.greenhouse.io/acme) and Lever (jobs.lever.co/acme).
func slugParams(platform domain.Platform, u *url.URL, wantDomain string) (Params, error) {
	if !strings.HasSuffix(strings.ToLower(u.Host), wantDomain) {
		return Params{}, &DiscoveryError{BoardURL: u.String(), Reason: fmt.Sprintf("host %q is not a %s board", u.Host, platform)}
	}
	segs := pathSegments(u)
	if len(segs) == 0 {
		return Params{}, &DiscoveryError{BoardURL: u.String(), Reason: "no board slug in path"}
	}
	return Params{
		Platform: platform,
		Scheme:   u.Scheme,
		Host:     u.Host,
		Slug:     segs[0],
	}, nil
}

// workableParams accepts apply.workable.com/{slug} and {slug}.workable.com.
func workableParams(u *url.URL) (Params, error) {
	host := strings.ToLower(u.Host)
	if !strings.HasSuffix(host, "workable.com") {
		return Params{}, &DiscoveryError{BoardURL: u.String(), Reason: fmt.Sprintf("host %q is not a workable board", u.Host)}
	}

	slug := ""
	if segs := pathSegments(u); len(segs) > 0 {
		slug = segs[0]
	}
	if slug == "" {
		if sub := strings.TrimSuffix(host, ".workable.com"); sub != "" && sub != "apply" && sub != "www" {
			slug = sub
		}
	}
	if slug == "" {
		return Params{}, &DiscoveryError{BoardURL: u.String(), Reason: "no account slug in workable url"}
	}
	return Params{
		Platform: domain.PlatformWorkable,
		Scheme:   u.Scheme,
		Host:     u.Host,
		Slug:     slug,
	}, nil
}

// icimsParams keeps the tenant origin; the fetcher pages through the
// board's own /jobs/search surface.
func icimsParams(u *url.URL) (Params, error) {
	host := strings.ToLower(u.Host)
	if !strings.Contains(host, "icims.com") {
		return Params{}, &DiscoveryError{BoardURL: u.String(), Reason: fmt.Sprintf("host %q is not an icims board", u.Host)}
	}
	slug := strings.SplitN(host, ".", 2)[0]
	return Params{
		Platform: domain.PlatformICIMS,
		Scheme:   u.Scheme,
		Host:     u.Host,
		Slug:     slug,
	}, nil
}

func pathSegments(u *url.URL) []string {
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
