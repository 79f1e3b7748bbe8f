package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hamstergame/platform/internal/domain"
)

const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes {"ok":false,"code","message",...details}. Causes of
// internal errors are never rendered.
func RespondError(w http.ResponseWriter, err error) {
	appErr, ok := domain.AsAppError(err)
	if !ok || appErr.Code == domain.CodeInternal {
		RespondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":      false,
			"code":    domain.CodeInternal,
			"message": "internal server error",
		})
		return
	}

	body := make(map[string]interface{}, len(appErr.Details)+3)
	for k, v := range appErr.Details {
		body[k] = v
	}
	body["ok"] = false
	body["code"] = appErr.Code
	body["message"] = appErr.Message
	RespondJSON(w, appErr.Status, body)
}

// DecodeJSON reads and decodes a JSON request body into dst. Bodies over
// 1 MiB are rejected.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(dst)
}

func invalidBody(w http.ResponseWriter) {
	RespondError(w, domain.ErrValidation("invalid request body"))
}
