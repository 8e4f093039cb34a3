package domain

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformTaleo      Platform = "taleo"
	PlatformWorkable   Platform = "workable"
	PlatformICIMS      Platform = "icims"
)

// Platforms lists every ATS the engine knows how to crawl.
var Platforms = []Platform{
	PlatformGreenhouse,
	PlatformLever,
	PlatformWorkday,
	PlatformTaleo,
	PlatformWorkable,
	PlatformICIMS,
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Employer is one crawled board. Name is the natural key for imports;
// the crawler treats employers as read-only input.
type Employer struct {
	ID       int64
	Name     string
	Platform Platform
	BoardURL string
}
