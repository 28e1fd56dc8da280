// Package inbox maintains the locally cached view of events visible to
// the active ingestion credential.
package inbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/relay-events/relay-cli/internal/client"
	"github.com/relay-events/relay-cli/internal/logging"
)

// Fetcher retrieves the authoritative event sequence from the server.
type Fetcher interface {
	FetchInbox(ctx context.Context, token string) ([]client.Event, error)
}

// Reconciler owns the inbox cache. Each successful refresh replaces the
// cache wholesale; the server is authoritative, so there is no merge and
// no de-duplication. Refreshes are not serialized against each other:
// when responses arrive out of order the later completion wins, which is
// an accepted race. Callers needing strict freshness must sequence their
// own refreshes.
type Reconciler struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu     sync.Mutex
	events []client.Event
}

func New(fetcher Fetcher, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reconciler{
		fetcher: fetcher,
		logger:  logger,
		events:  []client.Event{},
	}
}

// Refresh fetches the current event set and replaces the cache. Without
// a credential it is a no-op, not an error: no network access is
// attempted and the prior cache is returned. On a transport or
// authorization failure the cache keeps its prior value. A malformed
// response replaces the cache with an empty sequence and returns the
// non-fatal client.ErrMalformedInbox signal alongside it.
func (r *Reconciler) Refresh(ctx context.Context, token string) ([]client.Event, error) {
	if token == "" {
		return r.Snapshot(), nil
	}

	events, err := r.fetcher.FetchInbox(ctx, token)
	if err != nil {
		if errors.Is(err, client.ErrMalformedInbox) {
			r.replace([]client.Event{})
			return r.Snapshot(), err
		}
		return r.Snapshot(), err
	}

	r.replace(events)
	return r.Snapshot(), nil
}

// Snapshot returns a copy of the cached event sequence in server order.
func (r *Reconciler) Snapshot() []client.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]client.Event, len(r.events))
	copy(out, r.events)
	return out
}

// ScheduleRefresh runs a refresh after the given delay. It is
// best-effort: a failure is logged, never surfaced to the scheduler. The
// returned channel closes when the refresh attempt has completed, so
// one-shot callers can wait for the cache to settle before rendering.
func (r *Reconciler) ScheduleRefresh(token string, delay time.Duration) <-chan struct{} {
	done := make(chan struct{})
	time.AfterFunc(delay, func() {
		defer close(done)
		if _, err := r.Refresh(context.Background(), token); err != nil {
			r.logger.Warn("scheduled inbox refresh failed", logging.Error(err))
		}
	})
	return done
}

func (r *Reconciler) replace(events []client.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = events
}
