package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobradar-engine/internal/resolve"
)

func TestWorkdayExternalID(t *testing.T) {
	// Explicit jobReqId wins over anything in the path.
	assert.Equal(t, "JR-900", WorkdayExternalID(" JR-900 ", "/job/New-York/Software-Engineer_R25_00123"))

	// Requisition token extracted from the last path segment.
	assert.Equal(t, "R25_00123", WorkdayExternalID("", "/job/New-York/Software-Engineer_R25_00123"))
	assert.Equal(t, "R12345", WorkdayExternalID("", "/job/Remote/Data-Analyst_R12345"))

	// No token anywhere, fall back to the raw path.
	assert.Equal(t, "/job/Austin/Staff-Chef", WorkdayExternalID("", "/job/Austin/Staff-Chef"))

	assert.Equal(t, "", WorkdayExternalID("", ""))
	assert.Equal(t, "", WorkdayExternalID("   ", "/"))
}

func TestWorkdayJobURL(t *testing.T) {
	p := resolve.Params{
		Scheme: "https",
		Host:   "acme.wd5.myworkdayjobs.com",
		Site:   "AcmeCareers",
		Locale: "en-US",
	}

	// Bare detail path gets locale and site prepended.
	assert.Equal(t,
		"https://acme.wd5.myworkdayjobs.com/en-US/AcmeCareers/job/NYC/Engineer_R1",
		workdayJobURL(p, "/job/NYC/Engineer_R1"))

	// Path already rooted at the site keeps its shape.
	assert.Equal(t,
		"https://acme.wd5.myworkdayjobs.com/AcmeCareers/job/NYC/Engineer_R1",
		workdayJobURL(p, "/AcmeCareers/job/NYC/Engineer_R1"))
	assert.Equal(t,
		"https://acme.wd5.myworkdayjobs.com/en-US/AcmeCareers/job/NYC/Engineer_R1",
		workdayJobURL(p, "/en-US/AcmeCareers/job/NYC/Engineer_R1"))

	// Absolute URLs pass through untouched.
	assert.Equal(t, "https://elsewhere/job/1", workdayJobURL(p, "https://elsewhere/job/1"))

	assert.Equal(t, "", workdayJobURL(p, ""))

	// Locale-less boards omit the locale segment.
	noLocale := resolve.Params{Scheme: "https", Host: "acme.wd5.myworkdayjobs.com", Site: "careers"}
	assert.Equal(t,
		"https://acme.wd5.myworkdayjobs.com/careers/job/NYC/Engineer_R1",
		workdayJobURL(noLocale, "/job/NYC/Engineer_R1"))
}
