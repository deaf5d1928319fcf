// Package schedule owns all recurring-date arithmetic so the lifecycle
// engine has a single call site instead of ad hoc branching per frequency.
package schedule

import (
	"sort"
	"time"

	errors "github.com/debtflow/collections/internal"
)

type Frequency string

const (
	FrequencyOneTime       Frequency = "one_time"
	FrequencyWeekly        Frequency = "weekly"
	FrequencyBiWeekly      Frequency = "bi_weekly"
	FrequencyMonthly       Frequency = "monthly"
	FrequencySpecificDates Frequency = "specific_dates"
)

func ValidFrequency(f string) bool {
	switch Frequency(f) {
	case FrequencyOneTime, FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencySpecificDates:
		return true
	default:
		return false
	}
}

// IsRecurring reports whether the frequency produces forward occurrences on
// its own. specific_dates series are fully materialized at intake instead.
func (f Frequency) IsRecurring() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// NextOccurrence returns the date following anchor for the frequency, or nil
// when the frequency has no forward pointer. Monthly preserves the
// day-of-month, clamping to the last day of shorter months.
func NextOccurrence(anchor time.Time, frequency Frequency) *time.Time {
	anchor = truncateToDate(anchor)

	switch frequency {
	case FrequencyWeekly:
		next := anchor.AddDate(0, 0, 7)
		return &next
	case FrequencyBiWeekly:
		next := anchor.AddDate(0, 0, 14)
		return &next
	case FrequencyMonthly:
		next := addCalendarMonth(anchor)
		return &next
	default:
		return nil
	}
}

// MaterializeExplicitDates validates, deduplicates and sorts a caller-chosen
// date set. Any date strictly before today is rejected outright; the intake
// UI must not offer past dates.
func MaterializeExplicitDates(dates []time.Time, today time.Time) ([]time.Time, error) {
	if len(dates) == 0 {
		return nil, errors.NewValidationError("at least one payment date is required", errors.ErrCodeInvalidDate)
	}

	today = truncateToDate(today)
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))

	for _, d := range dates {
		day := truncateToDate(d)
		if day.Before(today) {
			return nil, errors.NewValidationError(
				"payment dates cannot be in the past", errors.ErrCodePastDate)
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// addCalendarMonth avoids time.AddDate's month-overflow normalization
// (Jan 31 + 1 month must be the last day of February, not March 2/3).
func addCalendarMonth(anchor time.Time) time.Time {
	year, month, day := anchor.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, anchor.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, anchor.Location())
}

func truncateToDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
