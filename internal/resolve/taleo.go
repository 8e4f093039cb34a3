package resolve

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"jobradar-engine/internal/domain"
)

var taleoPortalRe = regexp.MustCompile(`(?:portal=|careerSectionId=)(\d+)`)

// taleoParams pulls the tenant subdomain and career-section segment from the
// URL, then tries to recover a numeric portal id from the board HTML. The
// portal id is optional; some endpoints answer without it.
func (r *Resolver) taleoParams(ctx context.Context, boardURL string, u *url.URL) (Params, error) {
	host := strings.ToLower(u.Host)
	if !strings.HasSuffix(host, "taleo.net") {
		return Params{}, &DiscoveryError{BoardURL: boardURL, Reason: fmt.Sprintf("host %q is not a taleo board", u.Host)}
	}

	p := Params{
		Platform: domain.PlatformTaleo,
		Scheme:   u.Scheme,
		Host:     u.Host,
	}

	segs := pathSegments(u)
	for i, s := range segs {
		if s == "careersection" && i+1 < len(segs) {
			p.Section = segs[i+1]
			break
		}
	}
	if p.Section == "" && len(segs) > 0 {
		p.Section = segs[0]
	}

	// Already in the URL? No fetch needed.
	if m := taleoPortalRe.FindStringSubmatch(boardURL); m != nil {
		p.PortalID = m[1]
		return p, nil
	}

	body, err := r.client.GetRaw(ctx, boardURL)
	if err != nil {
		// Portal id is best-effort; a dead board page still is an error
		// because we learned nothing we didn't already have.
		if p.Section != "" {
			return p, nil
		}
		return Params{}, fmt.Errorf("taleo board page: %w", err)
	}
	if m := taleoPortalRe.FindSubmatch(body); m != nil {
		p.PortalID = string(m[1])
	}

	if p.Section == "" && p.PortalID == "" {
		return Params{}, &DiscoveryError{BoardURL: boardURL, Reason: "no career section or portal id recoverable"}
	}
	return p, nil
}
