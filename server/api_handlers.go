package server

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/stbcloud/smarthome-auth/gate"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/skill"
	"github.com/stbcloud/smarthome-auth/token"
)

// APIHandler is the token-gated device command endpoint (GET /api). The
// acknowledgement does not depend on relay delivery; that is the relay's
// contract.
func (s *Server) APIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		accessToken := q.Get("access_token")
		deviceID := q.Get("device_id")
		command := q.Get("command")
		value := q.Get("value")

		if accessToken == "" || deviceID == "" || command == "" {
			writeJSONError(w, "invalid_request", "access_token, device_id and command are required", http.StatusBadRequest)
			return
		}

		err := s.gate.AuthorizeAndDispatch(r.Context(), accessToken, deviceID, command, value)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrInvalidToken):
				writeJSONError(w, "invalid_token", "access token is invalid or expired", http.StatusUnauthorized)
			case errors.Is(err, gate.ErrUnknownResource):
				writeJSONError(w, "unknown_resource", "token is not bound to a known resource", http.StatusUnauthorized)
			case errors.Is(err, resources.ErrNoSuchDevice):
				writeJSONError(w, "no_such_device", "device does not belong to this account", http.StatusNotFound)
			default:
				log.Err(err).Msg("command dispatch failed")
				writeJSONError(w, "server_error", "command dispatch failed", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// SkillHandler accepts a voice-platform directive envelope (POST /skill)
// and answers with the platform's response envelope.
func (s *Server) SkillHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.dispatcher == nil {
			writeJSONError(w, "unavailable", "skill dispatcher not configured", http.StatusServiceUnavailable)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, "invalid_request", "failed to read request body", http.StatusBadRequest)
			return
		}

		response, err := s.dispatcher.Handle(r.Context(), body)
		if err != nil {
			switch {
			case errors.Is(err, skill.ErrUnsupportedDirective):
				writeJSONError(w, "invalid_request", "unsupported directive", http.StatusBadRequest)
			case errors.Is(err, resources.ErrNoSuchDevice):
				writeJSONError(w, "no_such_device", "endpoint does not belong to this account", http.StatusNotFound)
			default:
				log.Err(err).Msg("directive handling failed")
				writeJSONError(w, "server_error", "directive handling failed", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, response)
	}
}
