package utils

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/cenkalti/backoff/v4"
)

// LiveChecker checks if a service dependency is reachable
type LiveChecker interface {
	Live(ctx context.Context) error
}

// WaitForReady blocks until the dependency answers or the backoff gives up.
// Used at service startup - migrations or the db container may still be coming up.
func WaitForReady(ctx context.Context, lc LiveChecker) error {
	bo := backoff.WithContext(newStartupBackoff(), ctx)
	return backoff.RetryNotify(func() error {
		return lc.Live(ctx)
	}, bo, func(err error, d time.Duration) {
		goapp.Log.Warn().Err(err).Dur("after", d).Msg("dependency not ready, retry")
	})
}

func newStartupBackoff() backoff.BackOff {
	res := backoff.NewExponentialBackOff()
	res.InitialInterval = time.Second
	res.MaxInterval = time.Second * 10
	res.MaxElapsedTime = time.Minute * 2
	return res
}
