package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/stbcloud/smarthome-auth/auth"
	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/gate"
	"github.com/stbcloud/smarthome-auth/internal/config"
	"github.com/stbcloud/smarthome-auth/server/loginsession"
	"github.com/stbcloud/smarthome-auth/skill"
)

// Server is the HTTP transport in front of the authorization core and the
// resource gate.
type Server struct {
	env           string // Environment (e.g., "DEV", "production")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	auth          *auth.AuthorizationService
	registry      *clients.Registry
	gate          *gate.Gate
	dispatcher    *skill.Dispatcher
	loginSessions loginsession.Repo
}

func New(
	cfg config.Config,
	authService *auth.AuthorizationService,
	registry *clients.Registry,
	deviceGate *gate.Gate,
	dispatcher *skill.Dispatcher,
	loginSessionRepo loginsession.Repo,
) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[server.New] authorization service is required")
	}
	if registry == nil {
		return nil, errors.New("[server.New] client registry is required")
	}
	if deviceGate == nil {
		return nil, errors.New("[server.New] resource gate is required")
	}
	if loginSessionRepo == nil {
		return nil, errors.New("[server.New] login session repo is required")
	}

	s := &Server{
		env:           cfg.Env,
		mux:           http.NewServeMux(),
		config:        cfg,
		auth:          authService,
		registry:      registry,
		gate:          deviceGate,
		dispatcher:    dispatcher,
		loginSessions: loginSessionRepo,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Info().Str("route", route).Msg("registered")
	}
}
