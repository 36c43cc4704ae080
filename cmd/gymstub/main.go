package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	fakeexerciserepo "github.com/jrsteele09/go-gym-client/exercises/repofake"
	fakehistoryrepo "github.com/jrsteele09/go-gym-client/history/repofake"
	"github.com/jrsteele09/go-gym-client/internal/config"
	"github.com/jrsteele09/go-gym-client/internal/logging"
	"github.com/jrsteele09/go-gym-client/server"
	refreshrepofake "github.com/jrsteele09/go-gym-client/server/refreshtokens/repofake"
	fakeuserrepo "github.com/jrsteele09/go-gym-client/users/repofake"
	"github.com/rs/zerolog"
)

const (
	demoEmailVar    = "STUB_DEMO_EMAIL"
	demoPasswordVar = "STUB_DEMO_PASSWORD"
	shutdownTimeout = 5 * time.Second
)

func main() {
	c := config.New()
	logger := logging.New(c.GetLogLevel(), c.GetEnv())

	if err := run(c, logger); err != nil {
		logger.Fatal().Err(err).Msg("stub server failed")
	}
	logger.Info().Msg("Server stopped")
}

func run(c config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName() + " stub")

	repos := server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Exercises:     fakeexerciserepo.NewSeededExerciseRepo(),
		History:       fakehistoryrepo.NewFakeHistoryRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}
	api, err := server.New(c, repos,
		server.WithLogger(logger),
		server.WithMedia(os.DirFS(filepath.Join(c.GetDataFolder(), "media"))),
		server.WithDemoUser(config.GetEnv(demoEmailVar, "demo@gym.local"), config.GetEnv(demoPasswordVar, "demo123")),
	)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: api, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv, logger)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(srv *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
