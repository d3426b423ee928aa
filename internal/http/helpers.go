package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/majdishami/BudgetBuddy-V2/internal/core"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// queryInt parses an integer query parameter, falling back when absent.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// queryDate parses an ISO date query parameter, falling back when absent.
func queryDate(r *http.Request, name string, fallback core.Date) (core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid %s %q", name, raw)
	}
	return d, nil
}

// generatedOn resolves the report generation date: today unless the request
// pins it explicitly, which keeps report output reproducible.
func generatedOn(r *http.Request) (core.Date, error) {
	return queryDate(r, "generatedOn", core.Today())
}
