package server

import "net/http"

const loginSessionCookieName = "auth_session"

// sessionUsername resolves the authenticated resource username from the
// session cookie, or "" when no authenticated session exists.
func (s *Server) sessionUsername(r *http.Request) string {
	cookie, err := r.Cookie(loginSessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	session, err := s.loginSessions.Get(cookie.Value)
	if err != nil {
		return ""
	}
	return session.Username
}

func (s *Server) setLoginSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     loginSessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
