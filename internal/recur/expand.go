// Package recur expands a transaction's anchor date and frequency into the
// finite, ordered set of occurrence dates it implies. Expansion is pure: no
// clock reads, no I/O, the same inputs always produce the same dates.
package recur

import (
	"errors"
	"fmt"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

var (
	ErrInvalidAnchor    = errors.New("invalid anchor date")
	ErrUnknownFrequency = errors.New("unknown frequency")
)

// horizon is the hard ceiling on expansion. Iteration never walks past it,
// so a pathological window end cannot produce unbounded work.
var horizon = core.NewDate(2030, 12, 31)

// Expand returns every occurrence the given anchor and frequency produce up
// to windowEnd, ascending and without duplicates.
//
// A once transaction always yields its single anchor occurrence even when it
// lies beyond windowEnd; interval filtering is the caller's job. All other
// frequencies stop at windowEnd. Monthly and twice-monthly occurrences keep
// the anchor's day-of-month clamped to the length of each target month;
// yearly anchors on Feb 29 clamp to Feb 28 in non-leap years.
//
// Invalid anchors and unrecognized frequencies are reported as errors rather
// than guessed at: the caller decides whether to skip the record, so one bad
// row never fabricates a phantom occurrence or aborts a whole report.
func Expand(anchor core.Date, freq core.Frequency, windowEnd core.Date) ([]core.Date, error) {
	if err := anchor.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnchor, anchor)
	}
	end := windowEnd
	if end.IsZero() || end.After(horizon) {
		end = horizon
	}

	switch freq {
	case core.Once:
		return []core.Date{anchor}, nil
	case core.Biweekly:
		return expandBiweekly(anchor, end), nil
	case core.Monthly:
		return expandMonthly(anchor, end), nil
	case core.TwiceMonthly:
		return expandTwiceMonthly(anchor, end), nil
	case core.Yearly:
		return expandYearly(anchor, end), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
}

// expandBiweekly steps 14 calendar days at a time with no month-boundary
// special-casing.
func expandBiweekly(anchor, end core.Date) []core.Date {
	var out []core.Date
	for cur := anchor; !cur.After(end); cur = cur.AddDays(14) {
		out = append(out, cur)
	}
	return out
}

// expandMonthly walks month by month from the anchor's month, clamping the
// anchor's day-of-month to the length of each target month (an anchor on the
// 31st lands on Feb 28/29, Apr 30, and so on). Clamped candidates in the
// anchor's own month that precede the anchor are not occurrences.
func expandMonthly(anchor, end core.Date) []core.Date {
	var out []core.Date
	year, month := anchor.Year, anchor.Month
	for {
		first := core.NewDate(year, month, 1)
		if first.After(end) {
			break
		}
		cand := core.NewDate(year, month, clampDay(anchor.Day, year, month))
		if !cand.Before(anchor) && !cand.After(end) {
			out = append(out, cand)
		}
		year, month = nextMonth(year, month)
	}
	return out
}

// expandTwiceMonthly emits two occurrences per month: the anchor's day and
// the day fifteen later, both clamped to the month's length. In months short
// enough that the two clamp to the same day, only one occurrence is emitted.
func expandTwiceMonthly(anchor, end core.Date) []core.Date {
	var out []core.Date
	year, month := anchor.Year, anchor.Month
	for {
		first := core.NewDate(year, month, 1)
		if first.After(end) {
			break
		}
		d1 := clampDay(anchor.Day, year, month)
		d2 := clampDay(anchor.Day+15, year, month)
		for _, day := range []int{d1, d2} {
			cand := core.NewDate(year, month, day)
			if cand.Before(anchor) || cand.After(end) {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Equal(cand) {
				continue
			}
			out = append(out, cand)
		}
		year, month = nextMonth(year, month)
	}
	return out
}

// expandYearly steps one year at a time. Feb 29 anchors clamp to Feb 28 in
// non-leap years, consistent with the monthly clamping policy.
func expandYearly(anchor, end core.Date) []core.Date {
	var out []core.Date
	for year := anchor.Year; ; year++ {
		cand := core.NewDate(year, anchor.Month, clampDay(anchor.Day, year, anchor.Month))
		if cand.After(end) {
			break
		}
		if !cand.Before(anchor) {
			out = append(out, cand)
		}
	}
	return out
}

func clampDay(day, year, month int) int {
	if last := core.DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
