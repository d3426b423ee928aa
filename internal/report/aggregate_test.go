package report

import (
	"encoding/json"
	"testing"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

func monthlyExpense(id int64, name string, cents int64, anchor core.Date, categoryID int64) core.Expense {
	return core.Expense{
		ID:         id,
		Name:       name,
		Amount:     core.Money{Cents: cents},
		AnchorDate: anchor,
		Frequency:  core.Monthly,
		CategoryID: categoryID,
	}
}

func TestAggregateRentExample(t *testing.T) {
	// Monthly rent anchored 2025-01-01, March window, generated mid-March:
	// single occurrence on 2025-03-01, incurred.
	rent := monthlyExpense(1, "Rent", 375000, core.NewDate(2025, 1, 1), 1)
	iv := Interval{Start: core.NewDate(2025, 3, 1), End: core.NewDate(2025, 3, 31)}

	res := Aggregate([]core.Expense{rent}, nil, iv, core.NewDate(2025, 3, 15))

	if len(res.Expenses) != 1 {
		t.Fatalf("expected 1 line, got %d", len(res.Expenses))
	}
	line := res.Expenses[0]
	if len(line.Occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %v", line.Occurrences)
	}
	occ := line.Occurrences[0]
	if !occ.Date.Equal(core.NewDate(2025, 3, 1)) || occ.Pending {
		t.Fatalf("expected incurred occurrence on 2025-03-01, got %+v", occ)
	}
	if line.Totals.Incurred.Cents != 375000 || line.Totals.Pending.Cents != 0 || line.Totals.Total.Cents != 375000 {
		t.Fatalf("wrong totals: %+v", line.Totals)
	}
}

func TestAggregateBiweeklyIncomeExample(t *testing.T) {
	salary := core.Income{
		ID:         7,
		Name:       "Paycheck",
		Amount:     core.Money{Cents: 216800},
		AnchorDate: core.NewDate(2025, 1, 10),
		Frequency:  core.Biweekly,
		Source:     "Employer",
	}
	iv := Interval{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}

	res := Aggregate(nil, []core.Income{salary}, iv, core.NewDate(2025, 1, 20))

	if len(res.Incomes) != 1 {
		t.Fatalf("expected 1 line, got %d", len(res.Incomes))
	}
	occs := res.Incomes[0].Occurrences
	if len(occs) != 2 {
		t.Fatalf("expected occurrences on Jan 10 and Jan 24, got %v", occs)
	}
	if !occs[0].Date.Equal(core.NewDate(2025, 1, 10)) || occs[0].Pending {
		t.Fatalf("Jan 10 should be incurred: %+v", occs[0])
	}
	if !occs[1].Date.Equal(core.NewDate(2025, 1, 24)) || !occs[1].Pending {
		t.Fatalf("Jan 24 should be pending: %+v", occs[1])
	}
	tot := res.IncomeTot
	if tot.Incurred.Cents != 216800 || tot.Pending.Cents != 216800 || tot.Total.Cents != 433600 {
		t.Fatalf("wrong income totals: %+v", tot)
	}
	if res.Incomes[0].Source != "Employer" {
		t.Fatalf("source not carried: %+v", res.Incomes[0])
	}
}

func TestAggregatePendingBoundary(t *testing.T) {
	// An occurrence dated exactly on the generation date is pending.
	e := monthlyExpense(1, "Gym", 5000, core.NewDate(2025, 3, 15), 1)
	iv := Interval{Start: core.NewDate(2025, 3, 1), End: core.NewDate(2025, 3, 31)}

	res := Aggregate([]core.Expense{e}, nil, iv, core.NewDate(2025, 3, 15))
	if occ := res.Expenses[0].Occurrences[0]; !occ.Pending {
		t.Fatalf("same-day occurrence must be pending: %+v", occ)
	}

	res = Aggregate([]core.Expense{e}, nil, iv, core.NewDate(2025, 3, 16))
	if occ := res.Expenses[0].Occurrences[0]; occ.Pending {
		t.Fatalf("day-after occurrence must be incurred: %+v", occ)
	}
}

func TestAggregateDropsZeroOccurrenceRecords(t *testing.T) {
	// A once expense outside the window contributes nothing and must not
	// appear as a line item.
	past := core.Expense{
		ID: 2, Name: "Old", Amount: core.Money{Cents: 100},
		AnchorDate: core.NewDate(2024, 5, 1), Frequency: core.Once, CategoryID: 1,
	}
	iv := Interval{Start: core.NewDate(2025, 3, 1), End: core.NewDate(2025, 3, 31)}

	res := Aggregate([]core.Expense{past}, nil, iv, core.NewDate(2025, 3, 15))
	if len(res.Expenses) != 0 || res.ExpenseTot.Total.Cents != 0 {
		t.Fatalf("zero-occurrence record leaked into result: %+v", res)
	}
}

func TestAggregateSkipsBadRecords(t *testing.T) {
	good := monthlyExpense(1, "Rent", 375000, core.NewDate(2025, 1, 1), 1)
	badDate := core.Expense{
		ID: 2, Name: "Broken", Amount: core.Money{Cents: 100},
		AnchorDate: core.Date{}, Frequency: core.Monthly, CategoryID: 1,
	}
	badFreq := core.Expense{
		ID: 3, Name: "Weird", Amount: core.Money{Cents: 100},
		AnchorDate: core.NewDate(2025, 3, 1), Frequency: "weekly", CategoryID: 1,
	}
	iv := Interval{Start: core.NewDate(2025, 3, 1), End: core.NewDate(2025, 3, 31)}

	res := Aggregate([]core.Expense{good, badDate, badFreq}, nil, iv, core.NewDate(2025, 3, 15))

	if len(res.Expenses) != 1 || res.Expenses[0].ID != 1 {
		t.Fatalf("good record should survive: %+v", res.Expenses)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("expected 2 skip diagnostics, got %+v", res.Skipped)
	}
	if res.ExpenseTot.Total.Cents != 375000 {
		t.Fatalf("bad records must not contribute: %+v", res.ExpenseTot)
	}
}

func TestAggregateEmptyInputs(t *testing.T) {
	iv := Interval{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}
	res := Aggregate(nil, nil, iv, core.NewDate(2025, 1, 15))
	if len(res.Expenses) != 0 || len(res.Incomes) != 0 || len(res.Skipped) != 0 {
		t.Fatalf("unexpected content: %+v", res)
	}
	if res.ExpenseTot.Total.Cents != 0 || res.IncomeTot.Total.Cents != 0 || res.Balance.Total.Cents != 0 {
		t.Fatalf("empty aggregation must be all zero: %+v", res)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	expenses := []core.Expense{
		monthlyExpense(1, "Rent", 375000, core.NewDate(2025, 1, 1), 1),
		monthlyExpense(2, "Internet", 8000, core.NewDate(2025, 1, 20), 2),
	}
	incomes := []core.Income{{
		ID: 1, Name: "Paycheck", Amount: core.Money{Cents: 216800},
		AnchorDate: core.NewDate(2025, 1, 10), Frequency: core.Biweekly,
	}}
	iv := Interval{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 3, 31)}
	gen := core.NewDate(2025, 2, 14)

	a := Aggregate(expenses, incomes, iv, gen)
	b := Aggregate(expenses, incomes, iv, gen)

	aj, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	bj, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(aj) != string(bj) {
		t.Fatalf("aggregation not idempotent:\n%s\n%s", aj, bj)
	}
}

func TestAggregateBalance(t *testing.T) {
	expenses := []core.Expense{monthlyExpense(1, "Rent", 100000, core.NewDate(2025, 1, 1), 1)}
	incomes := []core.Income{{
		ID: 1, Name: "Salary", Amount: core.Money{Cents: 300000},
		AnchorDate: core.NewDate(2025, 1, 5), Frequency: core.Monthly,
	}}
	iv := Interval{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}

	res := Aggregate(expenses, incomes, iv, core.NewDate(2025, 2, 1))
	if res.Balance.Total.Cents != 200000 || res.Balance.Incurred.Cents != 200000 {
		t.Fatalf("wrong balance: %+v", res.Balance)
	}
}

func TestGroupByCategoryRollup(t *testing.T) {
	categories := []core.Category{
		{ID: 1, Name: "Housing", Color: "#1f77b4", Icon: "home"},
		{ID: 2, Name: "Utilities", Color: "#ff7f0e", Icon: "bolt"},
		{ID: 3, Name: "Travel", Color: "#2ca02c", Icon: "plane"},
	}
	expenses := []core.Expense{
		monthlyExpense(1, "Rent", 375000, core.NewDate(2025, 1, 1), 1),
		monthlyExpense(2, "Internet", 8000, core.NewDate(2025, 1, 20), 2),
		monthlyExpense(3, "Electricity", 12000, core.NewDate(2025, 1, 25), 2),
	}
	iv := Interval{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}
	res := Aggregate(expenses, nil, iv, core.NewDate(2025, 1, 15))

	groups := GroupByCategory(res, categories)

	// Travel has no activity and must not appear.
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", groups)
	}
	// Sorted descending by total: Housing (3750.00) then Utilities (200.00).
	if groups[0].Category.Name != "Housing" || groups[1].Category.Name != "Utilities" {
		t.Fatalf("wrong order: %+v", groups)
	}

	var sum int64
	for _, g := range groups {
		sum += g.Totals.Total.Cents
	}
	if sum != res.ExpenseTot.Total.Cents {
		t.Fatalf("category rollup %d != expense grand total %d", sum, res.ExpenseTot.Total.Cents)
	}
}

func TestGroupByCategoryDanglingReference(t *testing.T) {
	expenses := []core.Expense{monthlyExpense(1, "Mystery", 5000, core.NewDate(2025, 1, 1), 99)}
	iv := Interval{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}
	res := Aggregate(expenses, nil, iv, core.NewDate(2025, 2, 1))

	groups := GroupByCategory(res, nil)
	if len(groups) != 1 || groups[0].Category.Name != "Uncategorized" {
		t.Fatalf("dangling category should surface as Uncategorized: %+v", groups)
	}
	if groups[0].Totals.Total.Cents != 5000 {
		t.Fatalf("money lost in grouped view: %+v", groups)
	}
}
