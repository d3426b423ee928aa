package http

import (
	"encoding/json"
	"net/http"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

type categoryPayload struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listCategories(w, r)
	case http.MethodPost:
		s.createCategory(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.categoryCache.Get(categoriesCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	cats, err := s.storage.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	s.categoryCache.Set(categoriesCacheKey, cats)
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	c := core.Category{}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if err := c.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.storage.CreateCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		cat, err := s.storage.GetCategory(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cat)

	case http.MethodPatch:
		s.updateCategory(w, r, id)

	case http.MethodDelete:
		if err := s.storage.DeleteCategory(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateLists()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PATCH, DELETE")
	}
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request, id int64) {
	existing, err := s.storage.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var p categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if p.Name != nil {
		existing.Name = *p.Name
	}
	if p.Color != nil {
		existing.Color = *p.Color
	}
	if p.Icon != nil {
		existing.Icon = *p.Icon
	}
	if err := existing.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.storage.UpdateCategory(r.Context(), existing); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()
	writeJSON(w, http.StatusOK, existing)
}
