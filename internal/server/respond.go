package server

import (
	"encoding/json"
	"errors"
	"net/http"

	rerr "github.com/recall-oss/recall/internal/errors"
)

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// statusForError maps domain error codes to HTTP statuses. Pure
// translation; no business state is inspected here.
func statusForError(err error) int {
	switch rerr.AsCode(err) {
	case rerr.CodeValidation:
		return http.StatusBadRequest
	case rerr.CodeNotFound:
		return http.StatusNotFound
	case rerr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a structured error body. The top-level message is
// reported without the wrapped cause, so backing-engine details never
// reach clients.
func respondError(w http.ResponseWriter, err error) {
	msg := "internal server error"
	var re *rerr.RecallError
	if errors.As(err, &re) {
		msg = re.Message
	}
	jsonError(w, statusForError(err), msg)
}
