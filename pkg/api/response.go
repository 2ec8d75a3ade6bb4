package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/storage"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError classifies err and writes it with the matching status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, storage.ErrNotFound) {
		err = errors.Wrap(errors.ErrCodeDocumentNotFound, err, "no archived run with that id")
	}
	err = errors.Classify(err)
	status := errors.HTTPStatus(err)

	msg := errors.UserMessage(err)
	if status < http.StatusInternalServerError {
		// Client errors carry the detail needed to fix the request.
		var coded *errors.Error
		if stderrors.As(err, &coded) && coded.Cause != nil {
			msg += ": " + coded.Cause.Error()
		}
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: errors.GetCode(err), Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func badRequest(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}

func notFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}
