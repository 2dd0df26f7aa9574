package records

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(years ...domain.Year) []domain.Record {
	out := make([]domain.Record, 0, len(years))
	for _, y := range years {
		out = append(out, domain.Record{ID: uuid.New(), Year: y})
	}
	return out
}

func TestFeed_SubscribeGetsLatest(t *testing.T) {
	feed := NewFeed()
	assert.NotNil(t, feed.Latest())
	assert.Empty(t, feed.Latest())

	first := snapshotOf(2020)
	feed.Publish(first)

	sub := feed.Subscribe()
	defer sub.Close()
	assert.Equal(t, first, sub.Latest())
}

func TestFeed_SlowSubscriberSeesNewest(t *testing.T) {
	feed := NewFeed()
	sub := feed.Subscribe()
	defer sub.Close()

	feed.Publish(snapshotOf(2019))
	feed.Publish(snapshotOf(2020))
	last := snapshotOf(2021)
	feed.Publish(last)

	got := <-sub.Updates()
	assert.Equal(t, last, got)
	assert.Equal(t, last, sub.Latest())

	select {
	case extra := <-sub.Updates():
		t.Fatalf("unexpected extra snapshot: %v", extra)
	default:
	}
}

func TestFeed_PublishCopiesInput(t *testing.T) {
	feed := NewFeed()
	in := snapshotOf(2020, 2021)
	feed.Publish(in)

	in[0].Year = 1999
	assert.Equal(t, 2020, feed.Latest()[0].Year)
}

func TestFeed_PublishNil(t *testing.T) {
	feed := NewFeed()
	feed.Publish(snapshotOf(2020))
	feed.Publish(nil)

	require.NotNil(t, feed.Latest())
	assert.Empty(t, feed.Latest())
}

func TestSubscription_Close(t *testing.T) {
	feed := NewFeed()
	sub := feed.Subscribe()

	sub.Close()
	sub.Close()

	_, ok := <-sub.Updates()
	assert.False(t, ok)

	feed.Publish(snapshotOf(2020))
}
