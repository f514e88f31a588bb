package crawler

import (
	"context"
	"time"
)

// Fetcher performs a single HTTP GET. Transport failures are returned as
// errors; any HTTP status, including redirects and errors, is a response.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Pauser blocks for a delay or until the context is done.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration) error
}

// Limiter gates outgoing requests per host.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
