package booking

import (
	"fmt"
	"time"

	"github.com/staynest/service-booking/internal/apperr"
)

// dateLayout is the wire format for stay dates. Day granularity only.
const dateLayout = "2006-01-02"

// DateRange is an inclusive calendar date range [Start, End]. Both bounds are
// UTC midnights; a range of a single day has Start == End.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewDateRange builds a DateRange, truncating both bounds to UTC midnight.
// Fails if start is after end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: toDay(start), End: toDay(end)}
	if r.Start.After(r.End) {
		return DateRange{}, apperr.NewInvalidRange(
			fmt.Sprintf("start date %s is after end date %s", r.Start.Format(dateLayout), r.End.Format(dateLayout)),
		)
	}
	return r, nil
}

// ParseDateRange builds a DateRange from two YYYY-MM-DD strings.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, apperr.NewInvalidRange(fmt.Sprintf("invalid start date: %s", start))
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateRange{}, apperr.NewInvalidRange(fmt.Sprintf("invalid end date: %s", end))
	}
	return NewDateRange(s, e)
}

// Overlaps reports whether two inclusive ranges share at least one calendar
// day. A stay ending on day N overlaps a stay starting on day N; the checkout
// day is not treated as free.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// Contains reports whether the given day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := toDay(day)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Nights returns the number of nights between Start and End.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// String renders the range as "YYYY-MM-DD..YYYY-MM-DD".
func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + ".." + r.End.Format(dateLayout)
}

func toDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
