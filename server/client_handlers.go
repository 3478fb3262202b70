package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/stbcloud/smarthome-auth/clients"
)

type registerClientRequest struct {
	DisplayName string `json:"display_name"`
}

type registerClientResponse struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// RegisterClientHandler issues credentials for a client application
// (POST /clients). Registering the same display name twice returns the
// existing credentials.
func (s *Server) RegisterClientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Form fallback for browser submissions
			if err := r.ParseForm(); err != nil {
				writeJSONError(w, "invalid_request", "failed to parse request body", http.StatusBadRequest)
				return
			}
			req.DisplayName = r.FormValue("display_name")
		}

		client, err := s.registry.Register(req.DisplayName)
		if err != nil {
			if errors.Is(err, clients.ErrDisplayNameRequired) {
				writeJSONError(w, "invalid_request", "display_name is required", http.StatusBadRequest)
				return
			}
			log.Err(err).Msg("client registration failed")
			writeJSONError(w, "server_error", "registration failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, registerClientResponse{
			ClientID:     client.ID,
			ClientSecret: client.Secret,
		})
	}
}
