// Package poller keeps a room snapshot fresh by polling at a pace set by the room status.
package poller

import (
	"context"
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/logging"
	"sync"
	"sync/atomic"
	"time"
)

// Intervals per room status. Closed rooms are not polled.
type Intervals struct {
	Waiting time.Duration
	Voting  time.Duration
}

var DefaultIntervals = Intervals{Waiting: 3 * time.Second, Voting: 2 * time.Second}

// For returns the delay before the next fetch. ok is false once the room is closed.
// Unknown statuses, including "no data yet", poll at the waiting pace.
func (iv Intervals) For(status string) (time.Duration, bool) {
	switch status {
	case "closed":
		return 0, false
	case "voting":
		return iv.Voting, true
	default:
		return iv.Waiting, true
	}
}

func IntervalFor(status string) (time.Duration, bool) {
	return DefaultIntervals.For(status)
}

type Fetcher interface {
	GetRoom(ctx context.Context, roomID string) (*models.RoomDetailResponse, error)
}

type Option func(*Poller)

func WithIntervals(iv Intervals) Option {
	return func(p *Poller) { p.intervals = iv }
}

// OnUpdate is called with every snapshot that is applied.
func OnUpdate(fn func(*models.RoomDetailResponse)) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

// OnError is called for failed fetches. Polling keeps going.
func OnError(fn func(error)) Option {
	return func(p *Poller) { p.onError = fn }
}

// Poller tags each fetch with a sequence number. A response is applied only when it is newer
// than the last applied one, so a slow early request cannot overwrite a fresher snapshot.
type Poller struct {
	fetch     Fetcher
	roomID    string
	intervals Intervals
	onUpdate  func(*models.RoomDetailResponse)
	onError   func(error)

	nextSeq atomic.Uint64
	refresh chan struct{}

	mu         sync.RWMutex
	appliedSeq uint64
	latest     *models.RoomDetailResponse
	lastErr    error
}

func New(fetch Fetcher, roomID string, opts ...Option) *Poller {
	p := &Poller{
		fetch:     fetch,
		roomID:    roomID,
		intervals: DefaultIntervals,
		refresh:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Latest returns the newest applied snapshot.
func (p *Poller) Latest() (*models.RoomDetailResponse, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.latest != nil
}

// Err returns the error of the most recent failed fetch, cleared by the next success.
func (p *Poller) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Refresh asks Run for an immediate fetch. Requests made while one is pending collapse into one.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Fetch performs one fetch outside the timer and applies it unless something newer landed first.
func (p *Poller) Fetch(ctx context.Context) (*models.RoomDetailResponse, error) {
	seq := p.nextSeq.Add(1)
	detail, err := p.fetch.GetRoom(ctx, p.roomID)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		logging.Log.Warnf("POLL: fetch %d of room %s failed: %v", seq, p.roomID, err)
		if p.onError != nil {
			p.onError(err)
		}
		return nil, err
	}

	p.mu.Lock()
	if seq <= p.appliedSeq {
		p.mu.Unlock()
		logging.Log.Debugf("POLL: discarded stale response %d (applied %d)", seq, p.appliedSeq)
		latest, _ := p.Latest()
		return latest, nil
	}
	p.appliedSeq = seq
	p.latest = detail
	p.lastErr = nil
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(detail)
	}
	return detail, nil
}

func (p *Poller) status() string {
	latest, ok := p.Latest()
	if !ok {
		return ""
	}
	return latest.Room.Status
}

// Run fetches immediately, then on the status interval and on every Refresh.
// It returns nil once a closed room has been applied, or the context error.
func (p *Poller) Run(ctx context.Context) error {
	delay := time.Duration(0)
	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-p.refresh:
			timer.Stop()
		}

		_, _ = p.Fetch(ctx)

		next, ok := p.intervals.For(p.status())
		if !ok {
			logging.Log.Debugf("POLL: room %s closed, stopping", p.roomID)
			return nil
		}
		delay = next
	}
}
