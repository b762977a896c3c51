package store

import (
	"testing"
	"time"
)

func TestFmtTime_LexicalOrderMatchesChronological(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	// Pairs chosen to break under trimmed fractional seconds: a whole
	// second against a fraction in the same second, and fractions of
	// differing printed width.
	pairs := [][2]time.Time{
		{base, base.Add(500 * time.Millisecond)},
		{base.Add(120 * time.Microsecond), base.Add(123 * time.Microsecond)},
		{base.Add(100 * time.Millisecond), base.Add(time.Second)},
	}
	for _, p := range pairs {
		a, b := fmtTime(p[0]), fmtTime(p[1])
		if !(a < b) {
			t.Errorf("fmtTime(%v) = %q not lexically before fmtTime(%v) = %q", p[0], a, p[1], b)
		}
	}
}

func TestFmtTime_RoundTrip(t *testing.T) {
	in := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.FixedZone("UTC+5", 5*3600))
	got, err := parseTime(fmtTime(in))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(in) {
		t.Errorf("round trip drift: %v -> %v", in, got)
	}
}

func TestParseTime_Malformed(t *testing.T) {
	if _, err := parseTime("yesterday at noon"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}
