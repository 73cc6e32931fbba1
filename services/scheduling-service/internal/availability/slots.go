package availability

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval from a start time and a duration.
func NewInterval(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports open-range overlap. Touching intervals (one ends exactly
// where the other starts) do not overlap, so back-to-back bookings are allowed.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Conflicts reports whether the candidate overlaps any of the busy intervals.
// Used as a fast yes/no path before any free-slot computation.
func Conflicts(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// Merge returns the busy intervals coalesced into non-overlapping blocks,
// sorted by start ascending. Two intervals merge when one starts at or before
// the other's end, so back-to-back blocks become a single block. The input
// slice is not modified; callers may pass unsorted data.
func Merge(busy []Interval) []Interval {
	if len(busy) == 0 {
		return nil
	}

	sorted := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if b.End.After(b.Start) {
			sorted = append(sorted, b)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var merged []Interval
	for _, b := range sorted {
		if len(merged) == 0 {
			merged = append(merged, b)
			continue
		}
		last := &merged[len(merged)-1]
		if !b.Start.After(last.End) {
			if b.End.After(last.End) {
				last.End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

// FreeSlots returns the maximal free gaps of at least minLen within
// [windowStart, windowEnd), after merging the busy intervals. Gaps shorter
// than minLen are dropped. The result is ordered by start ascending.
//
// All times are expected to be in the same location (timezone).
func FreeSlots(windowStart, windowEnd time.Time, busy []Interval, minLen time.Duration) []Interval {
	if minLen <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}

	var slots []Interval
	cursor := windowStart
	for _, b := range Merge(busy) {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(windowEnd) {
			break
		}
		if b.Start.After(cursor) {
			gapEnd := b.Start
			if gapEnd.After(windowEnd) {
				gapEnd = windowEnd
			}
			if gapEnd.Sub(cursor) >= minLen {
				slots = append(slots, Interval{Start: cursor, End: gapEnd})
			}
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(windowEnd) && windowEnd.Sub(cursor) >= minLen {
		slots = append(slots, Interval{Start: cursor, End: windowEnd})
	}
	return slots
}
