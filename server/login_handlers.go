package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/stbcloud/smarthome-auth/auth"
	"github.com/stbcloud/smarthome-auth/server/loginsession"
)

const contentTypeHTML = "text/html; charset=utf-8"

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Params *auth.Parameters
	Error  string
}

// LoginPageHandler displays the login page (GET /login). The pending
// authorization parameters arrive as query parameters and are carried
// forward as hidden form fields so they survive the round trip.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl, err := parseTemplate("login.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse login template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			Params: auth.ParametersFromValues(r.URL.Query()),
			Error:  r.URL.Query().Get("error"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form (POST /login). The two
// credential failures are reported as distinguishable statuses; on success
// an authenticated session is established and the browser is sent back to
// the authorize step with the original parameters intact.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "invalid form data", http.StatusBadRequest)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")
		if username == "" || password == "" {
			writeJSONError(w, "invalid_request", "username and password are required", http.StatusBadRequest)
			return
		}

		if err := s.auth.Login(username, password); err != nil {
			switch {
			case errors.Is(err, auth.ErrUserNotFound):
				writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "no such user"})
			case errors.Is(err, auth.ErrInvalidPassword):
				writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "password error"})
			default:
				log.Err(err).Msg("login failed")
				writeJSONError(w, "server_error", "login failed", http.StatusInternalServerError)
			}
			return
		}

		sessionID := uuid.New().String()
		if err := s.loginSessions.Upsert(sessionID, loginsession.Session{
			Username:  username,
			CreatedAt: time.Now(),
		}); err != nil {
			log.Err(err).Msg("failed to store login session")
			writeJSONError(w, "server_error", "login failed", http.StatusInternalServerError)
			return
		}
		s.setLoginSessionCookie(w, sessionID)

		// Re-enter the authorize step with the original parameters
		// propagated through the form, not a stored draft.
		params := auth.ParametersFromValues(r.PostForm)
		http.Redirect(w, r, RouteAuthorize+"?"+params.Values().Encode(), http.StatusFound)
	}
}
