package sos

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// Source delivers externally originated SOS alerts, e.g. mobile panic-button
// events. The channel closes when the source has nothing more to deliver.
// Tests inject channel-backed sources instead of waiting on wall clocks.
type Source interface {
	Alerts() <-chan NewAlert
}

// ConsumeFeed ingests every alert the source delivers until the source
// closes or the context is cancelled. Ingestion failures are logged and the
// loop continues; one bad event must not stall the feed.
func (c *Coordinator) ConsumeFeed(ctx context.Context, src Source) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-src.Alerts():
			if !ok {
				return
			}
			if _, err := c.Ingest(ctx, n); err != nil {
				c.logger.Error(ctx, err, "feed ingest failed", "location", n.Location.Description)
			}
		}
	}
}

// SimSource emits one synthetic alert after a fixed delay, standing in for
// the mobile feed in demos and local development.
type SimSource struct {
	delay  time.Duration
	ch     chan NewAlert
	logger log.Logger
}

// NewSimSource creates a simulated source. Run must be called to arm it.
func NewSimSource(delay time.Duration, logger log.Logger) *SimSource {
	if logger == nil {
		logger = log.Nop()
	}
	return &SimSource{
		delay:  delay,
		ch:     make(chan NewAlert, 1),
		logger: logger,
	}
}

// Alerts returns the simulated alert channel.
func (s *SimSource) Alerts() <-chan NewAlert {
	return s.ch
}

// Run delivers the synthetic alert after the configured delay, then closes
// the channel. It returns early if the context is cancelled.
func (s *SimSource) Run(ctx context.Context) {
	defer close(s.ch)

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.delay):
	}

	s.ch <- NewAlert{
		UserID:    "user-999",
		UserName:  "Michael Brown",
		Timestamp: time.Now(),
		Location: Location{
			Lat:         6.8957,
			Lng:         3.7142,
			Description: "Campus Gym",
		},
	}
	s.logger.Info(ctx, "simulated sos alert emitted", "delay", s.delay.String())
}
