package server

const (
	RouteClients   = "/clients"
	RouteLogin     = "/login"
	RouteAuthorize = "/authorize"
	RouteToken     = "/token"
	RouteAPI       = "/api"
	RouteSkill     = "/skill"
)

func (s *Server) initRoutes() {
	// Client registration
	s.RegisterRouteFunc("POST "+RouteClients, s.RegisterClientHandler())

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginPageHandler())
	s.RegisterRouteFunc("POST "+RouteLogin, s.LoginSubmissionHandler())

	// Authorization flow
	s.RegisterRouteFunc("GET "+RouteAuthorize, s.AuthorizePageHandler())
	s.RegisterRouteFunc("POST "+RouteAuthorize, s.ConsentDecisionHandler())
	s.RegisterRouteFunc("POST "+RouteToken, s.TokenHandler())

	// Token-gated device commands
	s.RegisterRouteFunc("GET "+RouteAPI, s.APIHandler())
	s.RegisterRouteFunc("POST "+RouteSkill, s.SkillHandler())
}
