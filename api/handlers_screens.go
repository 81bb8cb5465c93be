package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/sharedprefs/screen"
)

type showRequest struct {
	ResourceID screen.ResourceID `json:"resource_id"`
}

type setFieldRequest struct {
	Value any `json:"value"`
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.host.Table().Resources())
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "resourceID"))
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid resource id", err)
		return
	}
	resource, err := s.host.Table().Lookup(screen.ResourceID(id))
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "Resource not found", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, resource)
}

// handleShow attaches a resource to a container and responds with its first render.
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	containerID, ok := s.containerID(w, r)
	if !ok {
		return
	}

	var req showRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := s.host.Show(containerID, req.ResourceID); err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to show resource", err)
		return
	}
	s.render(w, r, containerID, http.StatusCreated)
}

func (s *Server) handleGetContainer(w http.ResponseWriter, r *http.Request) {
	containerID, ok := s.containerID(w, r)
	if !ok {
		return
	}
	s.render(w, r, containerID, http.StatusOK)
}

func (s *Server) handleDismissContainer(w http.ResponseWriter, r *http.Request) {
	containerID, ok := s.containerID(w, r)
	if !ok {
		return
	}
	if err := s.host.Dismiss(containerID); err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to dismiss screen", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetField writes one field and responds with the updated render.
func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	containerID, ok := s.containerID(w, r)
	if !ok {
		return
	}
	sc, err := s.host.Screen(containerID)
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "No screen shown", err)
		return
	}

	var req setFieldRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := sc.Set(r.Context(), chi.URLParam(r, "key"), req.Value); err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to set field", err)
		return
	}
	s.render(w, r, containerID, http.StatusOK)
}

func (s *Server) handleResetField(w http.ResponseWriter, r *http.Request) {
	containerID, ok := s.containerID(w, r)
	if !ok {
		return
	}
	sc, err := s.host.Screen(containerID)
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "No screen shown", err)
		return
	}
	if err := sc.Reset(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to reset field", err)
		return
	}
	s.render(w, r, containerID, http.StatusOK)
}

func (s *Server) containerID(w http.ResponseWriter, r *http.Request) (screen.ContainerID, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "containerID"))
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid container id", err)
		return 0, false
	}
	return screen.ContainerID(id), true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, containerID screen.ContainerID, status int) {
	sc, err := s.host.Screen(containerID)
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "No screen shown", err)
		return
	}
	view, err := sc.Render(r.Context())
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to render screen", err)
		return
	}
	s.respondWithJSON(w, r, status, view)
}
