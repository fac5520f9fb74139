package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/service-booking/internal/apperr"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	r, err := ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}

func TestNewDateRange_RejectsInvertedRange(t *testing.T) {
	_, err := NewDateRange(day(t, "2024-01-10"), day(t, "2024-01-05"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidRange))
}

func TestNewDateRange_SingleDayIsValid(t *testing.T) {
	r, err := NewDateRange(day(t, "2024-01-10"), day(t, "2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Nights())
}

func TestNewDateRange_TruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	start := time.Date(2024, 1, 10, 1, 30, 0, 0, loc) // 2024-01-09 22:30 UTC
	r, err := NewDateRange(start, start.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), r.End)
}

func TestParseDateRange_RejectsMalformedDates(t *testing.T) {
	for _, tc := range []struct{ start, end string }{
		{"not-a-date", "2024-01-10"},
		{"2024-01-10", "10/01/2024"},
		{"", "2024-01-10"},
	} {
		_, err := ParseDateRange(tc.start, tc.end)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidRange))
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    DateRange
		b    DateRange
		want bool
	}{
		{
			name: "disjoint ranges",
			a:    mustRange(t, "2024-01-01", "2024-01-05"),
			b:    mustRange(t, "2024-01-10", "2024-01-15"),
			want: false,
		},
		{
			name: "identical ranges",
			a:    mustRange(t, "2024-01-01", "2024-01-05"),
			b:    mustRange(t, "2024-01-01", "2024-01-05"),
			want: true,
		},
		{
			name: "partial overlap",
			a:    mustRange(t, "2024-01-01", "2024-01-05"),
			b:    mustRange(t, "2024-01-03", "2024-01-08"),
			want: true,
		},
		{
			name: "containment",
			a:    mustRange(t, "2024-01-01", "2024-01-31"),
			b:    mustRange(t, "2024-01-10", "2024-01-15"),
			want: true,
		},
		{
			name: "shared boundary day counts as overlap",
			a:    mustRange(t, "2024-01-01", "2024-01-05"),
			b:    mustRange(t, "2024-01-05", "2024-01-10"),
			want: true,
		},
		{
			name: "adjacent without shared day",
			a:    mustRange(t, "2024-01-01", "2024-01-05"),
			b:    mustRange(t, "2024-01-06", "2024-01-10"),
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "Overlaps must be symmetric")
		})
	}
}

func TestContains(t *testing.T) {
	r := mustRange(t, "2024-01-01", "2024-01-05")
	assert.True(t, r.Contains(day(t, "2024-01-01")))
	assert.True(t, r.Contains(day(t, "2024-01-05")))
	assert.False(t, r.Contains(day(t, "2024-01-06")))
	assert.False(t, r.Contains(day(t, "2023-12-31")))
}

func TestNights(t *testing.T) {
	assert.Equal(t, 4, mustRange(t, "2024-01-01", "2024-01-05").Nights())
}

func TestInvalidRangeErrorUnwrapsAsAppError(t *testing.T) {
	_, err := ParseDateRange("2024-01-10", "2024-01-05")
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindInvalidRange, appErr.Kind)
}
