// Package servertest starts the stub gym API on a loopback address for tests.
package servertest

import (
	"net/http/httptest"
	"testing"

	fakeexerciserepo "github.com/jrsteele09/go-gym-client/exercises/repofake"
	fakehistoryrepo "github.com/jrsteele09/go-gym-client/history/repofake"
	"github.com/jrsteele09/go-gym-client/internal/config"
	"github.com/jrsteele09/go-gym-client/server"
	refreshrepofake "github.com/jrsteele09/go-gym-client/server/refreshtokens/repofake"
	fakeuserrepo "github.com/jrsteele09/go-gym-client/users/repofake"
	"github.com/stretchr/testify/require"
)

// Credentials of the account every stub starts with
const (
	DemoEmail    = "a@b.com"
	DemoPassword = "secret1"
)

// Stub is a running stub API
type Stub struct {
	*httptest.Server
	API   *server.Server
	Repos server.Repos
}

// New starts a stub API seeded with the demo account and the exercise catalogue. It is
// closed when the test ends.
func New(t testing.TB, options ...server.ServerOption) *Stub {
	t.Helper()

	repos := server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Exercises:     fakeexerciserepo.NewSeededExerciseRepo(),
		History:       fakehistoryrepo.NewFakeHistoryRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}
	options = append([]server.ServerOption{server.WithDemoUser(DemoEmail, DemoPassword)}, options...)

	api, err := server.New(config.New(), repos, options...)
	require.NoError(t, err)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return &Stub{Server: srv, API: api, Repos: repos}
}
