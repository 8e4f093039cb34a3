package normalize

import (
	"regexp"
	"strings"

	"jobradar-engine/internal/resolve"
)

// Canonical requisition tokens: R25_00123 style first, then plain R12345.
var wdReqTokenRe = regexp.MustCompile(`R\d{2}_\d+|R\d+`)

// WorkdayExternalID prefers the explicit jobReqId, then a requisition token
// from the detail path's last segment, then the raw path itself. Empty only
// when the posting carries neither.
func WorkdayExternalID(jobReqID, externalPath string) string {
	if id := strings.TrimSpace(jobReqID); id != "" {
		return id
	}

	path := strings.Trim(strings.TrimSpace(externalPath), "/")
	if path == "" {
		return ""
	}

	segs := strings.Split(path, "/")
	last := segs[len(segs)-1]
	if m := wdReqTokenRe.FindString(last); m != "" {
		return m
	}
	return externalPath
}

// workdayJobURL joins the board origin with the posting's relative detail
// path. Paths that already carry the locale/site segments are kept as-is;
// bare /job/... paths get them prepended.
func workdayJobURL(p resolve.Params, externalPath string) string {
	path := strings.TrimSpace(externalPath)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	hasPrefix := len(segs) > 0 && (segs[0] == p.Site || (p.Locale != "" && segs[0] == p.Locale))

	prefix := ""
	if !hasPrefix && p.Site != "" {
		if p.Locale != "" {
			prefix = "/" + p.Locale
		}
		prefix += "/" + p.Site
	}
	return p.Origin() + prefix + path
}
