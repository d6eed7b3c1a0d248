package timeutil

import (
	"testing"
	"time"

	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/testkit"
)

func TestParseSessionDate_Canonical(t *testing.T) {
	t.Parallel()

	got, err := ParseSessionDate("2026-03-15")
	if err != nil {
		t.Fatalf("ParseSessionDate err: %v", err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseSessionDate_LegacySlash(t *testing.T) {
	t.Parallel()

	got, err := ParseSessionDate("03/15/2026")
	if err != nil {
		t.Fatalf("ParseSessionDate err: %v", err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseSessionDate_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	got, err := ParseSessionDate("  2026-01-02 ")
	if err != nil {
		t.Fatalf("ParseSessionDate err: %v", err)
	}
	if FormatSessionDate(got) != "2026-01-02" {
		t.Fatalf("got %q", FormatSessionDate(got))
	}
}

func TestParseSessionDate_Invalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "2026-13-01", "15/03/2026", "next tuesday"} {
		_, err := ParseSessionDate(s)
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("expected validation code for %q, got %v", s, err)
		}
	}
}

func TestTruncate_DropsTimeAndZone(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("plus9", 9*3600)
	in := time.Date(2026, 6, 1, 3, 4, 5, 6, loc)
	got := Truncate(in)
	// 03:04 at +09:00 is the previous UTC day
	want := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestToday_UsesClockSeam(t *testing.T) {
	testkit.Serial(t)

	fixed := time.Date(2026, 8, 24, 17, 45, 0, 0, time.UTC)
	testkit.Swap(t, &nowFunc, func() time.Time { return fixed })

	got := Today()
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Today got %v want %v", got, want)
	}
}

func TestFileDate(t *testing.T) {
	t.Parallel()

	d := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	if got := FileDate(d); got != "2026_02_03" {
		t.Fatalf("FileDate got %q", got)
	}
}

func TestWaterline_OneYearBack(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	got := Waterline(today)
	want := time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Waterline got %v want %v", got, want)
	}

	// a pairing exactly at the waterline is not strictly older
	if want.Before(got) {
		t.Fatalf("waterline must not admit itself")
	}
}

func TestWaterline_LeapDay(t *testing.T) {
	t.Parallel()

	today := time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)
	got := Waterline(today)
	// Go normalizes Feb 29 minus one year to Mar 1
	want := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Waterline got %v want %v", got, want)
	}
}
