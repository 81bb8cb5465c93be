// Package api provides HTTP handlers, middleware, and routing for the settings screen service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CreativeUnicorns/sharedprefs"
	"github.com/CreativeUnicorns/sharedprefs/screen"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, screen.ErrResourceNotFound),
		errors.Is(err, screen.ErrContainerNotFound),
		errors.Is(err, screen.ErrFieldNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharedprefs.ErrInvalidKey),
		errors.Is(err, sharedprefs.ErrInvalidKind),
		errors.Is(err, sharedprefs.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, sharedprefs.ErrTypeMismatch):
		return http.StatusConflict
	case errors.Is(err, sharedprefs.ErrClosed),
		errors.Is(err, sharedprefs.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError is a helper to send JSON error responses.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	}
	if err != nil {
		resp["error"].(map[string]string)["details"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("API client error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	}
	respondWithJSONRaw(w, status, resp)
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondWithJSONRaw is a lower-level helper, useful when payload is already a map for error responses.
func respondWithJSONRaw(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// decodeBody reads a JSON request body of at most 1MB into v. Numbers are kept
// as json.Number so that longs survive intact.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	return decoder.Decode(v)
}
