package records

import (
	"slices"
	"sync"

	"github.com/ougirez/regstat/internal/domain"
)

type Source interface {
	Subscribe() *Subscription
}

// Feed fans record snapshots out to subscribers. Snapshots are never
// mutated after Publish, so subscribers may share them.
type Feed struct {
	mx     sync.Mutex
	latest []domain.Record
	subs   map[*Subscription]struct{}
}

func NewFeed() *Feed {
	return &Feed{
		latest: []domain.Record{},
		subs:   make(map[*Subscription]struct{}),
	}
}

func (f *Feed) Publish(snapshot []domain.Record) {
	snapshot = slices.Clone(snapshot)
	if snapshot == nil {
		snapshot = []domain.Record{}
	}

	f.mx.Lock()
	defer f.mx.Unlock()

	f.latest = snapshot
	for sub := range f.subs {
		sub.deliver(snapshot)
	}
}

func (f *Feed) Latest() []domain.Record {
	f.mx.Lock()
	defer f.mx.Unlock()

	return f.latest
}

// Subscribe returns a subscription primed with the current snapshot.
func (f *Feed) Subscribe() *Subscription {
	f.mx.Lock()
	defer f.mx.Unlock()

	sub := &Subscription{
		feed:    f,
		latest:  f.latest,
		updates: make(chan []domain.Record, 1),
	}
	f.subs[sub] = struct{}{}
	return sub
}

func (f *Feed) unsubscribe(sub *Subscription) {
	f.mx.Lock()
	defer f.mx.Unlock()

	if _, ok := f.subs[sub]; ok {
		delete(f.subs, sub)
		close(sub.updates)
	}
}

// Subscription yields the latest snapshot. A slow reader of Updates skips
// intermediate snapshots but always sees the newest one.
type Subscription struct {
	feed    *Feed
	mx      sync.Mutex
	latest  []domain.Record
	updates chan []domain.Record
}

func (s *Subscription) Latest() []domain.Record {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.latest
}

func (s *Subscription) Updates() <-chan []domain.Record {
	return s.updates
}

func (s *Subscription) Close() {
	s.feed.unsubscribe(s)
}

// deliver is called with the feed lock held.
func (s *Subscription) deliver(snapshot []domain.Record) {
	s.mx.Lock()
	s.latest = snapshot
	s.mx.Unlock()

	select {
	case s.updates <- snapshot:
	default:
		select {
		case <-s.updates:
		default:
		}
		s.updates <- snapshot
	}
}
