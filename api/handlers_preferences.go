package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/sharedprefs"
)

// handleListPreferences returns every entry of a namespace, pending writes included.
func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := sharedprefs.For(r.Context(), chi.URLParam(r, "namespace"))
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "No preference store", err)
		return
	}

	entries, err := prefs.All(r.Context())
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to list preferences", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, entries)
}
