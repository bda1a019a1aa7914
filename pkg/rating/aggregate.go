// Package rating computes per-store rating summaries.
package rating

import "math"

const (
	MinValue = 1
	MaxValue = 5
)

// Entry is one user's stored rating for a store.
type Entry struct {
	UserID uint
	Value  int
}

// Summary is the aggregate view of a store's ratings.
// Average is nil when the store has no ratings; CallerValue is nil when
// the caller has not rated the store (or no caller was given).
type Summary struct {
	Count       int
	Sum         int
	Average     *float64
	CallerValue *int
}

// ValidValue reports whether v is an accepted rating value.
func ValidValue(v int) bool {
	return v >= MinValue && v <= MaxValue
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Summarize aggregates entries. callerID of 0 means no caller.
func Summarize(entries []Entry, callerID uint) Summary {
	var s Summary
	for _, e := range entries {
		s.Count++
		s.Sum += e.Value
		if callerID != 0 && e.UserID == callerID {
			v := e.Value
			s.CallerValue = &v
		}
	}
	if s.Count > 0 {
		avg := Round2(float64(s.Sum) / float64(s.Count))
		s.Average = &avg
	}
	return s
}

// SummarizeByStore groups entries per store id and summarizes each group.
// Stores without entries are absent from the result; callers treat a missing
// key as an empty Summary.
func SummarizeByStore(entries map[uint][]Entry, callerID uint) map[uint]Summary {
	out := make(map[uint]Summary, len(entries))
	for storeID, group := range entries {
		out[storeID] = Summarize(group, callerID)
	}
	return out
}
