package http

import (
	"encoding/json"
	"net/http"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

type expensePayload struct {
	Name       *string `json:"name"`
	Amount     *string `json:"amount"`
	AnchorDate *string `json:"anchorDate"`
	Frequency  *string `json:"frequency"`
	CategoryID *int64  `json:"categoryId"`
}

// apply copies the provided fields onto e, parsing amount, date and
// frequency at the boundary so the domain type only ever holds valid values.
func (p expensePayload) apply(e *core.Expense) error {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Amount != nil {
		amount, err := core.ParseMoney(*p.Amount)
		if err != nil {
			return err
		}
		e.Amount = amount
	}
	if p.AnchorDate != nil {
		d, err := core.ParseDate(*p.AnchorDate)
		if err != nil {
			return err
		}
		e.AnchorDate = d
	}
	if p.Frequency != nil {
		f, err := core.ParseFrequency(*p.Frequency)
		if err != nil {
			return err
		}
		e.Frequency = f
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	return e.Validate()
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.expenseCache.Get(expensesCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	expenses, err := s.storage.ListExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	s.expenseCache.Set(expensesCacheKey, expenses)
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var p expensePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	var e core.Expense
	if err := p.apply(&e); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.storage.GetCategory(r.Context(), e.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.txService.CreateExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		e, err := s.storage.GetExpense(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)

	case http.MethodPatch:
		s.updateExpense(w, r, id)

	case http.MethodDelete:
		if err := s.storage.DeleteExpense(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateLists()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PATCH, DELETE")
	}
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request, id int64) {
	existing, err := s.storage.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var p expensePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := p.apply(&existing); err != nil {
		writeError(w, r, err)
		return
	}
	if p.CategoryID != nil {
		if _, err := s.storage.GetCategory(r.Context(), existing.CategoryID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := s.storage.UpdateExpense(r.Context(), existing); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()
	writeJSON(w, http.StatusOK, existing)
}
