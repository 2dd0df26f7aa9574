package records

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/pkg/logger"
	"github.com/ougirez/regstat/internal/pkg/store"
)

type RecordLister interface {
	ListRecords(ctx context.Context, opts store.ListRecordsOpts) ([]*domain.Record, error)
}

// Poller keeps a Feed in sync with the record store.
type Poller struct {
	store    RecordLister
	feed     *Feed
	interval time.Duration
}

func NewPoller(store RecordLister, feed *Feed, interval time.Duration) *Poller {
	return &Poller{store: store, feed: feed, interval: interval}
}

// Refresh loads the collection once and publishes it if it changed.
func (p *Poller) Refresh(ctx context.Context) (bool, error) {
	rows, err := p.store.ListRecords(ctx, store.ListRecordsOpts{})
	if err != nil {
		return false, fmt.Errorf("store.ListRecords: %w", err)
	}

	snapshot := make([]domain.Record, 0, len(rows))
	for _, r := range rows {
		snapshot = append(snapshot, *r)
	}

	if sameSnapshot(p.feed.Latest(), snapshot) {
		return false, nil
	}

	p.feed.Publish(snapshot)
	logger.Debugf(ctx, "feed: published %d records", len(snapshot))
	return true, nil
}

// LoadInitial retries the first load until the store answers or ctx ends.
func (p *Poller) LoadInitial(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Minute

	return backoff.Retry(
		func() error {
			_, err := p.Refresh(ctx)
			if err != nil {
				logger.Warnf(ctx, "initial load: %s", err.Error())
			}
			return err
		},
		backoff.WithContext(b, ctx),
	)
}

// Run refreshes every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := p.Refresh(ctx); err != nil {
				logger.Errorf(ctx, "poller.Refresh: %s", err.Error())
			}
		}
	}
}

func sameSnapshot(a, b []domain.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].UpdatedAt.Equal(b[i].UpdatedAt) {
			return false
		}
	}
	return true
}
