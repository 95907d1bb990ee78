package http

import (
	"errors"
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.List(r.Context())
	if err != nil {
		writeInternalError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		rejectBody(w, r, applog.OpCreate, err)
		return
	}

	tx, err := s.svc.Create(r.Context(), in)
	if err != nil {
		writeInternalError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, tx)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		rejectBody(w, r, applog.OpUpdate, err)
		return
	}

	id, ok := parseID(r.PathValue("id"))
	if !ok {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Unparsable transaction id",
			applog.FieldOperation, applog.OpParse,
			applog.FieldErrorType, applog.ErrorTypeNotFound,
			"raw_id", r.PathValue("id"))
		writeMessage(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	tx, err := s.svc.Update(r.Context(), id, in)
	switch {
	case errors.Is(err, core.ErrNotFound):
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Transaction to update not found",
			applog.FieldOperation, applog.OpUpdate,
			applog.FieldErrorType, applog.ErrorTypeNotFound,
			applog.FieldTxID, id)
		writeMessage(w, r, http.StatusNotFound, msgNotFound)
	case err != nil:
		writeInternalError(w, r, applog.OpUpdate, err)
	default:
		writeJSON(w, r, http.StatusOK, tx)
	}
}

// handleDelete answers 200 whether or not the id existed.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if id, ok := parseID(r.PathValue("id")); ok {
		if err := s.svc.Delete(r.Context(), id); err != nil {
			writeInternalError(w, r, applog.OpDelete, err)
			return
		}
	}
	writeMessage(w, r, http.StatusOK, msgDeleted)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rev := s.svc.Revision()
	if sum, ok := s.summaries.Get(rev); ok {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Summary served from cache",
			applog.FieldRevision, rev)
		writeJSON(w, r, http.StatusOK, sum)
		return
	}

	sum, err := s.svc.Summary(r.Context())
	if err != nil {
		writeInternalError(w, r, applog.OpSummary, err)
		return
	}
	s.summaries.Set(rev, sum)
	writeJSON(w, r, http.StatusOK, sum)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}
