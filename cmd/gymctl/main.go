package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/go-gym-client/apperr"
	"github.com/jrsteele09/go-gym-client/auth"
	"github.com/jrsteele09/go-gym-client/credentials"
	"github.com/jrsteele09/go-gym-client/credentials/filestore"
	"github.com/jrsteele09/go-gym-client/credentials/redisstore"
	"github.com/jrsteele09/go-gym-client/exercises"
	"github.com/jrsteele09/go-gym-client/history"
	"github.com/jrsteele09/go-gym-client/internal/config"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/internal/logging"
	"github.com/jrsteele09/go-gym-client/internal/metrics"
	"github.com/jrsteele09/go-gym-client/internal/observability"
	"github.com/jrsteele09/go-gym-client/transport"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	release = "gymctl@dev"

	msgNotSignedIn = "Not signed in. Run: gymctl signin -email <e-mail> -password <password>"
)

// app is everything a command needs, built once per invocation
type app struct {
	cfg       config.Config
	logger    zerolog.Logger
	out       io.Writer
	client    *transport.Client
	creds     *credentials.Manager
	manager   *auth.SessionManager
	exercises *exercises.Client
	history   *history.Client
	registry  *prometheus.Registry
	closers   []func() error
}

func main() {
	metricsFile := flag.String("metrics-file", os.Getenv("METRICS_FILE"), "Write Prometheus metrics to this file when the command ends")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	c := config.New()
	logger := logging.New(c.GetLogLevel(), c.GetEnv())

	if err := observability.InitSentry(c.GetSentryDSN(), c.GetEnv(), release); err != nil {
		logger.Warn().Err(err).Msg("sentry disabled")
	}

	os.Exit(run(c, logger, os.Stdout, *metricsFile, flag.Args()))
}

// run executes one command and returns the process exit code. Reported events are flushed
// before it returns since main exits without running deferred calls.
func run(c config.Config, logger zerolog.Logger, out io.Writer, metricsFile string, args []string) (code int) {
	command := args[0]
	defer observability.CapturePanic(command)
	defer observability.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, c, logger, out)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		observability.CaptureError(err, command)
		return 1
	}
	defer a.close()

	if err := a.execute(ctx, command, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		logger.Debug().Err(err).Str("command", command).Msg("command failed")
		message, expected := describe(err)
		if !expected {
			observability.CaptureError(err, command)
		}
		fmt.Fprintln(os.Stderr, message)
		code = 1
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, a.registry); err != nil {
			logger.Warn().Err(err).Str("file", metricsFile).Msg("failed to write metrics")
		}
	}
	return code
}

// describe returns what to tell the user about err and whether it is an outcome the user
// can act on rather than a fault worth reporting
func describe(err error) (string, bool) {
	switch {
	case apperr.IsAppError(err):
		return apperr.MessageOf(err), true
	case errors.Is(err, auth.ErrNotAuthenticated):
		return msgNotSignedIn, true
	case errors.Is(err, gymerrors.ErrInvalidRequest):
		return err.Error(), true
	default:
		return apperr.MessageOf(err), false
	}
}

func newApp(ctx context.Context, c config.Config, logger zerolog.Logger, out io.Writer) (*app, error) {
	a := &app{cfg: c, logger: logger, out: out, registry: prometheus.NewRegistry()}
	m := metrics.New(a.registry)

	client, err := transport.New(c.GetBaseURL(),
		transport.WithTimeout(c.GetRequestTimeout()),
		transport.WithLogger(logger),
		transport.WithMetrics(m),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] transport")
	}
	a.client = client

	repo, err := a.credentialRepo()
	if err != nil {
		return nil, err
	}
	a.creds = credentials.NewManager(repo)

	a.manager, err = auth.NewSessionManager(client, a.creds, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.manager.Close)
	if err := a.manager.Start(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.exercises = exercises.NewClient(client, exercises.WithConcurrency(c.GetCatalogConcurrency()))
	a.history = history.NewClient(client)
	return a, nil
}

func (a *app) credentialRepo() (credentials.Repo, error) {
	switch backend := a.cfg.GetCredentialBackend(); backend {
	case config.CredentialBackendFile:
		return filestore.New(a.cfg.GetCredentialFile(), filestore.WithPassphrase(a.cfg.GetCredentialPassphrase()))
	case config.CredentialBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.GetRedisAddr(),
			Password: a.cfg.GetRedisPassword(),
		})
		a.closers = append(a.closers, rdb.Close)
		return redisstore.New(rdb, a.cfg.GetRedisPrefix())
	default:
		return nil, fmt.Errorf("[newApp] unknown credential backend %q", backend)
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Debug().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: gymctl [-metrics-file file] <command> [flags]

Commands:
  signin    -email -password       sign in and store the session
  signup    -name -email -password create an account
  signout                          forget the stored session
  whoami                           show the signed-in user
  groups                           list muscle groups
  exercises -group                 list the exercises of a group
  exercise  -id                    show one exercise
  catalog                          list every group with its exercises
  done      -id                    record an exercise as done now
  history                          show the history by day
  profile   -name [-password -old-password]
  avatar    -file                  upload a new avatar image
`)
}
