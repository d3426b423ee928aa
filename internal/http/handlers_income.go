package http

import (
	"encoding/json"
	"net/http"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

type incomePayload struct {
	Name       *string `json:"name"`
	Amount     *string `json:"amount"`
	AnchorDate *string `json:"anchorDate"`
	Frequency  *string `json:"frequency"`
	Source     *string `json:"source"`
}

func (p incomePayload) apply(in *core.Income) error {
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Amount != nil {
		amount, err := core.ParseMoney(*p.Amount)
		if err != nil {
			return err
		}
		in.Amount = amount
	}
	if p.AnchorDate != nil {
		d, err := core.ParseDate(*p.AnchorDate)
		if err != nil {
			return err
		}
		in.AnchorDate = d
	}
	if p.Frequency != nil {
		f, err := core.ParseFrequency(*p.Frequency)
		if err != nil {
			return err
		}
		in.Frequency = f
	}
	if p.Source != nil {
		in.Source = *p.Source
	}
	return in.Validate()
}

func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listIncomes(w, r)
	case http.MethodPost:
		s.createIncome(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listIncomes(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.incomeCache.Get(incomesCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	incomes, err := s.storage.ListIncomes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if incomes == nil {
		incomes = []core.Income{}
	}
	s.incomeCache.Set(incomesCacheKey, incomes)
	writeJSON(w, http.StatusOK, incomes)
}

func (s *Server) createIncome(w http.ResponseWriter, r *http.Request) {
	var p incomePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	var in core.Income
	if err := p.apply(&in); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.txService.CreateIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleIncomeByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		in, err := s.storage.GetIncome(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, in)

	case http.MethodPatch:
		s.updateIncome(w, r, id)

	case http.MethodDelete:
		if err := s.storage.DeleteIncome(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateLists()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PATCH, DELETE")
	}
}

func (s *Server) updateIncome(w http.ResponseWriter, r *http.Request, id int64) {
	existing, err := s.storage.GetIncome(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var p incomePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := p.apply(&existing); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.storage.UpdateIncome(r.Context(), existing); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()
	writeJSON(w, http.StatusOK, existing)
}
