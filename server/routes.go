package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteFunc("GET "+RouteAuthGoogle, ChainMiddleware(s.AuthURLHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthStatus, ChainMiddleware(s.AuthStatusHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteFunc("GET "+RouteAuthUser, ChainMiddleware(s.CurrentUserHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// PHOTOS
	s.RegisterRouteFunc("GET "+RoutePhotos, ChainMiddleware(s.ListPhotosHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteFunc("GET "+RoutePhotosSearch, ChainMiddleware(s.SearchPhotosHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteFunc("POST "+RoutePhotosSearch, ChainMiddleware(s.SearchPhotosHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteFunc("GET "+RoutePhotoItem, ChainMiddleware(s.GetPhotoHandler(), s.APIMiddleware(s.SessionMiddleware)...))

	// CORS preflight for every route
	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
}
