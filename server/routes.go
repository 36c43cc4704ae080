package server

func (s *Server) initRoutes() {
	// Sessions
	s.RegisterRouteHandler("POST "+RouteSessions, ChainMiddleware(s.SignInHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), s.APIMiddleware()...))

	// Users
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteUsers, ChainMiddleware(s.UpdateUserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteAvatar, ChainMiddleware(s.UpdateAvatarHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Catalogue
	s.RegisterRouteHandler("GET "+RouteGroups, ChainMiddleware(s.GroupsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteExercisesByGroup, ChainMiddleware(s.ExercisesByGroupHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteExercise, ChainMiddleware(s.ExerciseHandler(), s.APIMiddleware(s.RequireAuth())...))

	// History
	s.RegisterRouteHandler("POST "+RouteHistory, ChainMiddleware(s.RegisterHistoryHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteHistory, ChainMiddleware(s.HistoryHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Media is public so image views can load it without headers
	s.RegisterRouteHandler("GET "+RouteAvatarFile, ChainMiddleware(s.AvatarFileHandler(), s.MediaMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteExerciseMedia, ChainMiddleware(s.ExerciseMediaHandler(), s.MediaMiddleware()...))
}
