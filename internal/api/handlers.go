package api

import (
	"net/http"

	"github.com/easybuydubai/leadflow/internal/models"
)

// Version is the API version reported by the root and health endpoints.
const Version = "1.0.0"

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{
		"status":  "healthy",
		"version": Version,
	}))
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	// The catch-all pattern matches every unregistered path; anything but the
	// exact root is a 404.
	if r.URL.Path != "/" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{
		"message": "EasyBuy Dubai Property Assistant API",
		"version": Version,
		"status":  "running",
	}))
}
