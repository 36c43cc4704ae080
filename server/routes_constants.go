package server

import (
	"github.com/jrsteele09/go-gym-client/exercises"
	"github.com/jrsteele09/go-gym-client/history"
	"github.com/jrsteele09/go-gym-client/sessions"
	"github.com/jrsteele09/go-gym-client/users"
)

// Route path constants. The client packages own the paths; the stub serves the same ones.
const (
	// Sessions
	RouteSessions     = sessions.RouteSessions
	RouteRefreshToken = sessions.RouteRefreshToken

	// Users
	RouteUsers  = users.RouteUsers
	RouteAvatar = users.RouteAvatar

	// Catalogue
	RouteGroups           = exercises.RouteGroups
	RouteExercisesByGroup = exercises.RouteExercisesByGroup + "{group}"
	RouteExercise         = exercises.RouteExercises + "{id}"

	// History
	RouteHistory = history.RouteHistory

	// Media (patterns)
	RouteAvatarFile    = "/avatar/{file}"
	RouteExerciseMedia = "/exercise/{kind}/{file}"
)
