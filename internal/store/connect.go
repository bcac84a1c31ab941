// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"math"
	"time"
)

// ConnectBaseDelay is the first backoff between connection attempts. It
// doubles after each failed attempt. Tests override it to avoid real sleeps.
var ConnectBaseDelay = 500 * time.Millisecond

const defaultConnectRetries = 4

type pinger interface {
	PingContext(ctx context.Context) error
}

// pingWithRetry pings db until it answers, retrying with exponential backoff
// so a database server that is still starting does not fail the run. When
// retries is 0 the default is used; a negative value disables retrying. The
// last ping error is returned once retries are exhausted, or ctx.Err() if
// ctx ends during a backoff wait.
func pingWithRetry(ctx context.Context, db pinger, retries int) error {
	if retries == 0 {
		retries = defaultConnectRetries
	}

	for attempt := 0; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if attempt >= retries || ctx.Err() != nil {
			return err
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * ConnectBaseDelay
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
