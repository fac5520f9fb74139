package booking

// FindConflicting returns every booking in existing whose status is one of
// statuses and whose stay overlaps candidate. Pure function over its inputs;
// the result is empty (never nil checks required) when nothing conflicts.
//
// Admission checks scan Confirmed and Pending bookings; cascade cancellation
// scans Pending only.
func FindConflicting(candidate DateRange, existing []*Booking, statuses ...Status) []*Booking {
	var conflicts []*Booking
	for _, bk := range existing {
		if !statusIn(bk.Status(), statuses) {
			continue
		}
		if candidate.Overlaps(bk.Stay()) {
			conflicts = append(conflicts, bk)
		}
	}
	return conflicts
}

// HasConflict reports whether any booking in existing with one of the given
// statuses overlaps candidate.
func HasConflict(candidate DateRange, existing []*Booking, statuses ...Status) bool {
	return len(FindConflicting(candidate, existing, statuses...)) > 0
}

func statusIn(s Status, statuses []Status) bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}
