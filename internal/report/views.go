package report

import (
	"fmt"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

// MonthInterval returns the full-calendar-month window for year/month. The
// "monthly view" is exactly a range view snapped to month bounds; the
// aggregator itself never distinguishes the two.
func MonthInterval(year, month int) (Interval, error) {
	if month < 1 || month > 12 {
		return Interval{}, fmt.Errorf("%w: month %d", core.ErrInvalidDate, month)
	}
	return Interval{
		Start: core.NewDate(year, month, 1),
		End:   core.NewDate(year, month, core.DaysInMonth(year, month)),
	}, nil
}

// YearInterval returns the window covering the whole calendar year.
func YearInterval(year int) Interval {
	return Interval{
		Start: core.NewDate(year, 1, 1),
		End:   core.NewDate(year, 12, 31),
	}
}

// RangeInterval validates an arbitrary start/end pair.
func RangeInterval(start, end core.Date) (Interval, error) {
	if err := start.Validate(); err != nil {
		return Interval{}, fmt.Errorf("start: %w", err)
	}
	if err := end.Validate(); err != nil {
		return Interval{}, fmt.Errorf("end: %w", err)
	}
	if end.Before(start) {
		return Interval{}, fmt.Errorf("%w: end %v before start %v", core.ErrInvalidDate, end, start)
	}
	return Interval{Start: start, End: end}, nil
}

// MonthBucket is one month's slice of an annual report.
type MonthBucket struct {
	Month    int    `json:"month"`
	Expenses Totals `json:"expenses"`
	Incomes  Totals `json:"incomes"`
	Balance  Totals `json:"balance"`
}

// Annual is the twelve-bucket year view plus year totals.
type Annual struct {
	Year        int           `json:"year"`
	GeneratedOn core.Date     `json:"generatedOn"`
	Months      []MonthBucket `json:"months"`
	Expenses    Totals        `json:"expenseTotals"`
	Incomes     Totals        `json:"incomeTotals"`
	Balance     Totals        `json:"balance"`
	Skipped     []Skip        `json:"skipped,omitempty"`
}

// AggregateAnnual folds the records month by month across a calendar year.
// Each bucket is an independent aggregation, so the per-month figures match
// what the monthly view would report for that month.
func AggregateAnnual(expenses []core.Expense, incomes []core.Income, year int, generatedOn core.Date) Annual {
	annual := Annual{Year: year, GeneratedOn: generatedOn, Months: make([]MonthBucket, 0, 12)}
	skipSeen := make(map[Kind]map[int64]bool)

	for month := 1; month <= 12; month++ {
		iv, _ := MonthInterval(year, month)
		res := Aggregate(expenses, incomes, iv, generatedOn)

		bucket := MonthBucket{
			Month:    month,
			Expenses: res.ExpenseTot,
			Incomes:  res.IncomeTot,
			Balance:  res.Balance,
		}
		annual.Months = append(annual.Months, bucket)

		annual.Expenses.Incurred = annual.Expenses.Incurred.Add(res.ExpenseTot.Incurred)
		annual.Expenses.Pending = annual.Expenses.Pending.Add(res.ExpenseTot.Pending)
		annual.Expenses.Total = annual.Expenses.Total.Add(res.ExpenseTot.Total)
		annual.Incomes.Incurred = annual.Incomes.Incurred.Add(res.IncomeTot.Incurred)
		annual.Incomes.Pending = annual.Incomes.Pending.Add(res.IncomeTot.Pending)
		annual.Incomes.Total = annual.Incomes.Total.Add(res.IncomeTot.Total)

		// A bad record skips in every bucket; report it once.
		for _, sk := range res.Skipped {
			if skipSeen[sk.Kind] == nil {
				skipSeen[sk.Kind] = make(map[int64]bool)
			}
			if !skipSeen[sk.Kind][sk.ID] {
				skipSeen[sk.Kind][sk.ID] = true
				annual.Skipped = append(annual.Skipped, sk)
			}
		}
	}

	annual.Balance = Totals{
		Incurred: annual.Incomes.Incurred.Sub(annual.Expenses.Incurred),
		Pending:  annual.Incomes.Pending.Sub(annual.Expenses.Pending),
		Total:    annual.Incomes.Total.Sub(annual.Expenses.Total),
	}
	return annual
}
