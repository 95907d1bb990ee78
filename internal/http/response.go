package http

import (
	"encoding/json"
	"net/http"

	applog "budget/internal/log"
)

// Fixed response messages.
const (
	msgNotFound      = "Transaction not found"
	msgDeleted       = "Transaction deleted"
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal server error"
	msgRateLimited   = "Rate limit exceeded"
)

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response",
			applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeInternal)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"` + msgInternalError + `"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, messageBody{Message: msg})
}

// rejectBody logs a malformed request body and answers 400.
func rejectBody(w http.ResponseWriter, r *http.Request, op string, err error) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected transaction body",
		applog.FieldOperation, op,
		applog.FieldErrorType, applog.ErrorTypeValidation,
		applog.FieldError, err)
	writeMessage(w, r, http.StatusBadRequest, msgInvalidBody)
}

// writeInternalError logs err and answers a generic 500.
func writeInternalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogError(r.Context(), "Request failed", err, applog.ErrorTypeDatabase, op, nil)
	writeMessage(w, r, http.StatusInternalServerError, msgInternalError)
}
