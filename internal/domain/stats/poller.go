package stats

import "context"

// Fetcher is the gateway operation the poller depends on.
type Fetcher interface {
	CheckinStats(ctx context.Context, eventActivityID int64) (CheckinStats, error)
}

// Poller performs on-demand snapshot fetches of check-in counts. It holds
// no timer and no cache: the host decides the refresh cadence (typically
// on view focus) and each fetch replaces the previous snapshot wholesale.
type Poller struct {
	fetcher Fetcher
}

// NewPoller builds a poller over the given gateway.
func NewPoller(fetcher Fetcher) *Poller {
	return &Poller{fetcher: fetcher}
}

// Fetch returns a fresh snapshot for the event activity.
func (p *Poller) Fetch(ctx context.Context, eventActivityID int64) (CheckinStats, error) {
	return p.fetcher.CheckinStats(ctx, eventActivityID)
}
