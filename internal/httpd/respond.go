package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voxauth/voxauth/pkg/voiceauth"
	"github.com/voxauth/voxauth/pkg/voiceid/store"
)

// envelope is the standard response body for all endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

func respondErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// respondError maps service errors onto HTTP statuses.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voiceauth.ErrBadRequest),
		errors.Is(err, voiceauth.ErrInvalidAudio):
		respondErrorMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrExists):
		respondErrorMsg(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondErrorMsg(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error().Err(err).Msg("internal error")
		respondErrorMsg(w, http.StatusInternalServerError, "internal server error")
	}
}
