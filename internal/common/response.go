package common

import (
	"encoding/json"
	"net/http"

	"tangle_backend/internal/platform/logger"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the plain acknowledgement body, {"msg": "..."}.
type MessageResponse struct {
	Msg string `json:"msg"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithServiceError maps err to a status code, logs server-side failures
// and writes the error body.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError {
		logger.WithRequestID(chiMiddleware.GetReqID(r.Context())).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		}).Error("request failed")
	}
	RespondWithError(w, code, PublicMessage(err))
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
