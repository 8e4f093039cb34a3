package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string // RFC3339, "" for nil
	}{
		{"2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z"},
		{"2024-03-05", "2024-03-05T00:00:00Z"},
		{"2024/03/05", "2024-03-05T00:00:00Z"},
		{"Mar 5, 2024", "2024-03-05T00:00:00Z"},
		{"March 5, 2024", "2024-03-05T00:00:00Z"},
		{"03/05/2024", "2024-03-05T00:00:00Z"},
		{"1704067200000", "2024-01-01T00:00:00Z"}, // epoch ms
		{"1704067200", "2024-01-01T00:00:00Z"},    // epoch s
		{"Posted 3 Days Ago", ""},
		{"", ""},
		{"  ", ""},
	}
	for _, c := range cases {
		got := ParseDate(c.in)
		if c.want == "" {
			assert.Nil(t, got, "input %q", c.in)
			continue
		}
		require.NotNil(t, got, "input %q", c.in)
		assert.Equal(t, c.want, got.UTC().Format(time.RFC3339), "input %q", c.in)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c "))
	assert.Equal(t, "", CleanText("   "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
	assert.Equal(t, "a b", Truncate("a\nb", 10))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Austin, TX", NormalizeLocation("Location:  Austin,  TX"))
	// Duplicate segments collapse (Workday repeats city across locales).
	assert.Equal(t, "Austin, TX", NormalizeLocation("Austin, TX, Austin"))
	assert.Equal(t, "", NormalizeLocation("  "))
}

func TestExtractLabeledLocation(t *testing.T) {
	assert.Equal(t, "Omaha, NE", ExtractLabeledLocation("Nurse\nJob Location: Omaha, NE\nFull time"))
	assert.Equal(t, "Remote", ExtractLabeledLocation("Location: Remote | Full-time"))
	assert.Equal(t, "", ExtractLabeledLocation("no label here"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", " "))
}

func TestHostLimiter_IndependentPerHost(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	ctx := context.Background()

	// Each host has its own bucket, so a fresh host never waits.
	start := time.Now()
	require.NoError(t, hl.WaitURL(ctx, "https://a.example.com/x"))
	require.NoError(t, hl.WaitURL(ctx, "https://b.example.com/x"))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// The same host's second request waits for the refill.
	start = time.Now()
	require.NoError(t, hl.WaitURL(ctx, "https://a.example.com/y"))
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}
