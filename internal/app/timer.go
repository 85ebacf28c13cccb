package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ieee-quiz/internal/domain"
)

const (
	// DefaultTickInterval is the time between two tick events.
	DefaultTickInterval = time.Second
	// DefaultGraceDelay is the pause after the countdown expires before auto-advancing.
	DefaultGraceDelay = 2 * time.Second
)

// TimerDriver injects tick events into a store while its quiz is active and
// moves on automatically once the countdown for a question has expired.
type TimerDriver struct {
	store    *Store
	interval time.Duration
	grace    time.Duration
	logger   *zap.Logger
}

// NewTimerDriver builds a driver for store. Non-positive durations use the defaults.
func NewTimerDriver(store *Store, interval, grace time.Duration, logger *zap.Logger) *TimerDriver {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if grace <= 0 {
		grace = DefaultGraceDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimerDriver{store: store, interval: interval, grace: grace, logger: logger}
}

// Run drives the timer until ctx is cancelled or the store is closed.
// The ticker and the grace timer never outlive Run.
func (d *TimerDriver) Run(ctx context.Context) error {
	updates, cancel := d.store.Subscribe()
	defer cancel()

	var (
		ticker    *time.Ticker
		tickC     <-chan time.Time
		grace     *time.Timer
		graceC    <-chan time.Time
		lastIndex = -1
	)

	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	stopGrace := func() {
		if grace != nil {
			grace.Stop()
			grace, graceC = nil, nil
		}
	}
	defer func() {
		stopTicker()
		stopGrace()
	}()

	reconcile := func(state domain.State) {
		switch {
		case state.Status != domain.StatusActive:
			stopTicker()
			stopGrace()
			lastIndex = -1
		case state.SecondsRemaining > 0:
			stopGrace()
			if ticker == nil {
				ticker = time.NewTicker(d.interval)
				tickC = ticker.C
			} else if state.Index != lastIndex {
				ticker.Reset(d.interval)
			}
			lastIndex = state.Index
		default:
			stopTicker()
			if grace == nil {
				d.logger.Debug("question timed out",
					zap.String("session_id", d.store.ID()),
					zap.Int("index", state.Index),
				)
				grace = time.NewTimer(d.grace)
				graceC = grace.C
			}
			lastIndex = state.Index
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			reconcile(state)
		case <-tickC:
			if d.store.State().Status == domain.StatusActive {
				d.store.Dispatch(domain.Tick{})
			}
		case <-graceC:
			grace, graceC = nil, nil
			d.advance()
		}
	}
}

// advance moves past an expired question. The state is checked again so a
// question the player already left is never skipped.
func (d *TimerDriver) advance() {
	state := d.store.State()
	if state.Status != domain.StatusActive || state.SecondsRemaining > 0 {
		return
	}
	if state.Index >= len(state.Questions)-1 {
		d.store.Dispatch(domain.Finish{})
		return
	}
	d.store.Dispatch(domain.NextQuestion{})
}
