package http

import (
	"io"
	"net/http"

	"github.com/majdishami/BudgetBuddy-V2/internal/backup"
	"github.com/majdishami/BudgetBuddy-V2/internal/log"
)

// maxSnapshotBytes bounds uploaded restore payloads.
const maxSnapshotBytes = 32 << 20

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	if err := s.storage.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()

	log.FromContext(r.Context()).InfoContext(r.Context(), "All data cleared via API",
		log.FieldOperation, log.OpDelete)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	path, err := s.backups.Create(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Backup created via API",
		log.FieldOperation, log.OpBackup,
		log.FieldBackupFile, path)
	writeJSON(w, http.StatusCreated, map[string]string{"file": path})
}

// handleRestore accepts a snapshot JSON document as the request body and
// replaces the entire dataset with it.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		badRequest(w, "cannot read request body")
		return
	}

	snap, err := backup.Parse(data)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.backups.Restore(r.Context(), snap); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateLists()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Dataset restored via API",
		log.FieldOperation, log.OpRestore,
		"categories", len(snap.Categories),
		"expenses", len(snap.Expenses),
		"incomes", len(snap.Incomes))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "restored",
		"categories": len(snap.Categories),
		"expenses":   len(snap.Expenses),
		"incomes":    len(snap.Incomes),
	})
}
