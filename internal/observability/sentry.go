// Package observability reports errors to Sentry when a DSN is configured.
package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// InitSentry is a no-op without a DSN
func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(flushTimeout)
}

// CaptureError sends err with the command it came from as a tag
func CaptureError(err error, command string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("command", command)
		sentry.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value and re-panics
func CapturePanic(command string) {
	if rec := recover(); rec != nil {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("command", command)
			scope.SetExtra("panic", rec)
			sentry.CaptureMessage("panic in command")
		})
		FlushSentry()
		panic(rec)
	}
}
