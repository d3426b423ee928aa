// Package report filters, classifies and sums the occurrences produced by
// the recurrence expander into period totals, category groupings and balance
// figures. Aggregation is deterministic and side-effect free: the same
// records, interval and generation date always fold to the same result.
package report

import (
	"log/slog"
	"sort"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
	"github.com/majdishami/BudgetBuddy-V2/internal/log"
	"github.com/majdishami/BudgetBuddy-V2/internal/recur"
)

// Interval is a reporting window, inclusive on both ends.
type Interval struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// Contains reports whether d falls inside the interval.
func (iv Interval) Contains(d core.Date) bool {
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Kind tags a line or skip diagnostic as expense or income.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Occurrence is one calendar instance of a transaction inside the queried
// window. Occurrences are derived per call and never persisted or cached.
type Occurrence struct {
	Date    core.Date  `json:"date"`
	Amount  core.Money `json:"amount"`
	Pending bool       `json:"isPending"`
}

// Totals is an incurred/pending/total triple in cents.
type Totals struct {
	Incurred core.Money `json:"incurred"`
	Pending  core.Money `json:"pending"`
	Total    core.Money `json:"total"`
}

func (t *Totals) add(amount core.Money, pending bool) {
	if pending {
		t.Pending = t.Pending.Add(amount)
	} else {
		t.Incurred = t.Incurred.Add(amount)
	}
	t.Total = t.Total.Add(amount)
}

// Line is the per-record report entry: the record's retained occurrences and
// their sums. Records with no occurrence in the window produce no Line.
type Line struct {
	ID          int64          `json:"id"`
	Kind        Kind           `json:"kind"`
	Name        string         `json:"name"`
	Frequency   core.Frequency `json:"frequency"`
	CategoryID  int64          `json:"categoryId,omitempty"`
	Source      string         `json:"source,omitempty"`
	Occurrences []Occurrence   `json:"occurrences"`
	Totals      Totals         `json:"totals"`
}

// Skip is the diagnostic emitted for a record whose expansion failed. The
// record is left out of the totals instead of aborting the report or
// fabricating an occurrence at some fallback date.
type Skip struct {
	ID     int64  `json:"id"`
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the full aggregation output consumed by report renderers.
type Result struct {
	Interval    Interval  `json:"interval"`
	GeneratedOn core.Date `json:"generatedOn"`
	Expenses    []Line    `json:"expenses"`
	Incomes     []Line    `json:"incomes"`
	ExpenseTot  Totals    `json:"expenseTotals"`
	IncomeTot   Totals    `json:"incomeTotals"`
	Balance     Totals    `json:"balance"`
	Skipped     []Skip    `json:"skipped,omitempty"`
}

// CategoryTotal is one row of the category-grouped view.
type CategoryTotal struct {
	Category core.Category `json:"category"`
	Totals   Totals        `json:"totals"`
}

// Aggregate expands every record against the interval end, filters the
// occurrences to the interval, classifies each against generatedOn and folds
// the sums. An occurrence dated on generatedOn itself counts as pending: a
// same-day transaction is not incurred until the day has passed.
func Aggregate(expenses []core.Expense, incomes []core.Income, interval Interval, generatedOn core.Date) Result {
	res := Result{Interval: interval, GeneratedOn: generatedOn}

	for _, e := range expenses {
		line, skip := buildLine(e, KindExpense, interval, generatedOn)
		if skip != nil {
			res.Skipped = append(res.Skipped, *skip)
			continue
		}
		if line == nil {
			continue
		}
		line.CategoryID = e.CategoryID
		res.Expenses = append(res.Expenses, *line)
		res.ExpenseTot.Incurred = res.ExpenseTot.Incurred.Add(line.Totals.Incurred)
		res.ExpenseTot.Pending = res.ExpenseTot.Pending.Add(line.Totals.Pending)
		res.ExpenseTot.Total = res.ExpenseTot.Total.Add(line.Totals.Total)
	}

	for _, in := range incomes {
		line, skip := buildLine(in, KindIncome, interval, generatedOn)
		if skip != nil {
			res.Skipped = append(res.Skipped, *skip)
			continue
		}
		if line == nil {
			continue
		}
		line.Source = in.Source
		res.Incomes = append(res.Incomes, *line)
		res.IncomeTot.Incurred = res.IncomeTot.Incurred.Add(line.Totals.Incurred)
		res.IncomeTot.Pending = res.IncomeTot.Pending.Add(line.Totals.Pending)
		res.IncomeTot.Total = res.IncomeTot.Total.Add(line.Totals.Total)
	}

	res.Balance = Totals{
		Incurred: res.IncomeTot.Incurred.Sub(res.ExpenseTot.Incurred),
		Pending:  res.IncomeTot.Pending.Sub(res.ExpenseTot.Pending),
		Total:    res.IncomeTot.Total.Sub(res.ExpenseTot.Total),
	}
	return res
}

// buildLine expands one record and folds its retained occurrences. It
// returns (nil, nil) when the record has no occurrence in the interval and
// (nil, skip) when expansion failed.
func buildLine(tx core.Transaction, kind Kind, interval Interval, generatedOn core.Date) (*Line, *Skip) {
	expanded, err := recur.Expand(tx.Anchor(), tx.Repeats(), interval.End)
	if err != nil {
		slog.Warn("Skipping record in report",
			log.FieldComponent, log.ComponentReport,
			log.FieldRecordKind, string(kind),
			log.FieldRecordID, tx.Key(),
			log.FieldFrequency, string(tx.Repeats()),
			log.FieldError, err)
		return nil, &Skip{ID: tx.Key(), Kind: kind, Name: tx.Label(), Reason: err.Error()}
	}

	line := Line{
		ID:        tx.Key(),
		Kind:      kind,
		Name:      tx.Label(),
		Frequency: tx.Repeats(),
	}
	for _, d := range expanded {
		if !interval.Contains(d) {
			continue
		}
		pending := !d.Before(generatedOn)
		line.Occurrences = append(line.Occurrences, Occurrence{Date: d, Amount: tx.Money(), Pending: pending})
		line.Totals.add(tx.Money(), pending)
	}
	if len(line.Occurrences) == 0 {
		return nil, nil
	}
	return &line, nil
}

// GroupByCategory rolls the result's expense lines up per category, sorted
// descending by total amount (ties broken by name for determinism).
// Categories with no matching expense in the window are excluded. The sum of
// the returned totals equals the result's expense grand total whenever every
// expense line carries a known category.
func GroupByCategory(res Result, categories []core.Category) []CategoryTotal {
	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	sums := make(map[int64]*Totals)
	for _, line := range res.Expenses {
		t, ok := sums[line.CategoryID]
		if !ok {
			t = &Totals{}
			sums[line.CategoryID] = t
		}
		t.Incurred = t.Incurred.Add(line.Totals.Incurred)
		t.Pending = t.Pending.Add(line.Totals.Pending)
		t.Total = t.Total.Add(line.Totals.Total)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for id, t := range sums {
		cat, ok := byID[id]
		if !ok {
			// Dangling category reference: keep the money visible rather
			// than dropping it from the grouped view.
			cat = core.Category{ID: id, Name: "Uncategorized"}
		}
		out = append(out, CategoryTotal{Category: cat, Totals: *t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Totals.Total.Cents != out[j].Totals.Total.Cents {
			return out[i].Totals.Total.Cents > out[j].Totals.Total.Cents
		}
		return out[i].Category.Name < out[j].Category.Name
	})
	return out
}
