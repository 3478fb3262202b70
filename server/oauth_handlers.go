package server

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/stbcloud/smarthome-auth/auth"
	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/grants"
)

// ConsentPageData contains data for rendering the consent page
type ConsentPageData struct {
	ClientName string
	Params     *auth.Parameters
}

// AuthorizePageHandler begins the authorization flow (GET /authorize).
// Without an authenticated session the browser is redirected to the login
// step with all original parameters preserved; an unknown client is
// reported to the caller's own redirect target with an error parameter.
func (s *Server) AuthorizePageHandler() http.HandlerFunc {
	consentTmpl, err := parseTemplate("consent.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse consent template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		params := auth.ParametersFromValues(r.URL.Query())
		username := s.sessionUsername(r)

		loginRedirect := func() {
			http.Redirect(w, r, RouteLogin+"?"+params.Values().Encode(), http.StatusFound)
		}

		errorRedirect := func(redirectURI, status string) {
			http.Redirect(w, r, appendQuery(redirectURI, "error="+url.QueryEscape(status)), http.StatusFound)
		}

		consentPrompt := func(client *clients.ClientApp) {
			data := ConsentPageData{
				ClientName: client.DisplayName,
				Params:     params,
			}
			w.Header().Set("Content-Type", contentTypeHTML)
			if err := consentTmpl.Execute(w, data); err != nil {
				log.Err(err).Msg("Failed to render consent template")
				http.Error(w, "Failed to render consent page", http.StatusInternalServerError)
			}
		}

		if err := s.auth.Authorize(params, username, loginRedirect, consentPrompt, errorRedirect); err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		}
	}
}

// ConsentDecisionHandler records the resource owner's decision
// (POST /authorize). Denial ends the flow with a user-visible refusal and
// no grant; approval redirects to the client with the code and the original
// state echoed back.
func (s *Server) ConsentDecisionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "invalid form data", http.StatusBadRequest)
			return
		}

		username := s.sessionUsername(r)
		if username == "" {
			writeJSONError(w, "access_denied", "no authenticated session", http.StatusUnauthorized)
			return
		}

		if r.FormValue("confirm") != "yes" {
			w.Header().Set("Content-Type", contentTypeHTML)
			_, _ = w.Write([]byte("User refused authorization."))
			return
		}

		params := auth.ParametersFromValues(r.PostForm)
		redirect := func(redirectURI, code, state string) {
			target := appendQuery(redirectURI, "code="+url.QueryEscape(code))
			if state != "" {
				target += "&state=" + url.QueryEscape(state)
			}
			http.Redirect(w, r, target, http.StatusFound)
		}

		if err := s.auth.Approve(params, username, redirect); err != nil {
			log.Err(err).Msg("consent approval failed")
			writeJSONError(w, "server_error", "failed to issue authorization code", http.StatusInternalServerError)
		}
	}
}

// TokenHandler exchanges an authorization code for a token pair
// (POST /token).
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "failed to parse form data", http.StatusBadRequest)
			return
		}

		clientID := r.FormValue("client_id")
		code := r.FormValue("code")
		if clientID == "" || code == "" {
			writeJSONError(w, "invalid_request", "client_id and code are required", http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.auth.Exchange(clientID, code)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUnknownClient):
				writeJSONError(w, "unknown_client", "client not registered", http.StatusBadRequest)
			case errors.Is(err, grants.ErrInvalidGrant):
				writeJSONError(w, "invalid_grant", "code is invalid, expired or already used", http.StatusBadRequest)
			default:
				log.Err(err).Msg("token exchange failed")
				writeJSONError(w, "server_error", "token exchange failed", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, tokenResponse)
	}
}
