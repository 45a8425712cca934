package taskqueue

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	leaseBatch   = 50
	maxAttempts  = 3
	retryBackoff = 30 * time.Second
)

// Dispatcher polls for due tasks and fires each one at its target.
// Delivery is HTTP: the stored method, headers and body are replayed
// against the stored URL, and any 2xx counts as delivered.
type Dispatcher struct {
	store      Store
	httpClient *http.Client
	poll       time.Duration
}

func NewDispatcher(store Store, poll time.Duration) *Dispatcher {
	return &Dispatcher{
		store:      store,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		poll:       poll,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *Dispatcher) runOnce(ctx context.Context) {
	due, err := d.store.LeaseDue(ctx, time.Now(), leaseBatch)
	if err != nil {
		log.Error().Err(err).Msg("failed to lease due tasks")
		return
	}
	for _, rec := range due {
		d.deliver(ctx, rec)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, rec Record) {
	err := d.fire(ctx, rec)
	if err == nil {
		if err := d.store.MarkDelivered(ctx, rec.Name); err != nil {
			log.Error().Err(err).Str("task", rec.Name).Msg("failed to mark task delivered")
		}
		log.Info().Str("task", rec.Name).Msg("task delivered")
		return
	}

	// linear backoff per attempt already made
	nextFireAt := time.Now().Add(time.Duration(rec.Attempts+1) * retryBackoff).Unix()
	if markErr := d.store.MarkFailed(ctx, rec.Name, err.Error(), nextFireAt, maxAttempts); markErr != nil {
		log.Error().Err(markErr).Str("task", rec.Name).Msg("failed to mark task failed")
	}
	log.Error().Err(err).
		Str("task", rec.Name).
		Int("attempt", rec.Attempts+1).
		Msg("task delivery failed")
}

func (d *Dispatcher) fire(ctx context.Context, rec Record) error {
	req, err := http.NewRequestWithContext(ctx, rec.Method, rec.URL, bytes.NewReader(rec.Body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range rec.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("target returned %d", resp.StatusCode)
	}
	return nil
}
