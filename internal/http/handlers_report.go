package http

import (
	"net/http"
	"time"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
	"github.com/majdishami/BudgetBuddy-V2/internal/report"
)

// loadRecords fetches the raw expense and income lists a report is built
// from. The aggregation itself always runs fresh: occurrence expansion
// depends on the generation date and is never cached.
func (s *Server) loadRecords(r *http.Request) ([]core.Expense, []core.Income, error) {
	expenses, err := s.storage.ListExpenses(r.Context())
	if err != nil {
		return nil, nil, err
	}
	incomes, err := s.storage.ListIncomes(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return expenses, incomes, nil
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	now := time.Now()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	iv, err := report.MonthInterval(year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	genOn, err := generatedOn(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	expenses, incomes, err := s.loadRecords(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Aggregate(expenses, incomes, iv, genOn))
}

func (s *Server) handleRangeReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	start, err := queryDate(r, "start", core.Date{})
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	end, err := queryDate(r, "end", core.Date{})
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if start.IsZero() || end.IsZero() {
		badRequest(w, "start and end are required")
		return
	}

	iv, err := report.RangeInterval(start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	genOn, err := generatedOn(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	expenses, incomes, err := s.loadRecords(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Aggregate(expenses, incomes, iv, genOn))
}

func (s *Server) handleAnnualReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	year, err := queryInt(r, "year", time.Now().Year())
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	genOn, err := generatedOn(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	expenses, incomes, err := s.loadRecords(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.AggregateAnnual(expenses, incomes, year, genOn))
}

// categoryReportResponse pairs the rollup with the window it covers.
type categoryReportResponse struct {
	Interval    report.Interval        `json:"interval"`
	GeneratedOn core.Date              `json:"generatedOn"`
	Categories  []report.CategoryTotal `json:"categories"`
	Skipped     []report.Skip          `json:"skipped,omitempty"`
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	// Window: explicit start/end wins, otherwise a year/month pair.
	var iv report.Interval
	start, err := queryDate(r, "start", core.Date{})
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	end, err := queryDate(r, "end", core.Date{})
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if !start.IsZero() || !end.IsZero() {
		iv, err = report.RangeInterval(start, end)
		if err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		now := time.Now()
		year, err := queryInt(r, "year", now.Year())
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		month, err := queryInt(r, "month", int(now.Month()))
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		iv, err = report.MonthInterval(year, month)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	genOn, err := generatedOn(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	expenses, incomes, err := s.loadRecords(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := s.storage.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := report.Aggregate(expenses, incomes, iv, genOn)
	writeJSON(w, http.StatusOK, categoryReportResponse{
		Interval:    res.Interval,
		GeneratedOn: res.GeneratedOn,
		Categories:  report.GroupByCategory(res, cats),
		Skipped:     res.Skipped,
	})
}
