package records

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/domain/dto"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mx    sync.Mutex
	rows  []*domain.Record
	err   error
	calls int
}

func (f *fakeLister) ListRecords(context.Context, store.ListRecordsOpts) ([]*domain.Record, error) {
	f.mx.Lock()
	defer f.mx.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeLister) set(rows []*domain.Record, err error) {
	f.mx.Lock()
	defer f.mx.Unlock()

	f.rows, f.err = rows, err
}

func TestPoller_Refresh(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	rec := &domain.Record{ID: uuid.New(), RegencyName: "Bandung", Year: 2020, UpdatedAt: now}

	lister := &fakeLister{rows: []*domain.Record{rec}}
	feed := NewFeed()
	p := NewPoller(lister, feed, time.Hour)

	changed, err := p.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, feed.Latest(), 1)
	assert.Equal(t, "Bandung", feed.Latest()[0].RegencyName)

	changed, err = p.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	updated := *rec
	updated.UpdatedAt = now.Add(time.Second)
	lister.set([]*domain.Record{&updated}, nil)

	changed, err = p.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestPoller_RefreshError(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}
	feed := NewFeed()

	_, err := NewPoller(lister, feed, time.Hour).Refresh(context.Background())
	assert.ErrorContains(t, err, "db down")
	assert.Empty(t, feed.Latest())
}

func TestPoller_Run(t *testing.T) {
	lister := &fakeLister{}
	feed := NewFeed()
	sub := feed.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewPoller(lister, feed, 5*time.Millisecond).Run(ctx) }()

	lister.set([]*domain.Record{{ID: uuid.New(), Year: 2022}}, nil)

	select {
	case snapshot := <-sub.Updates():
		require.Len(t, snapshot, 1)
		assert.Equal(t, 2022, snapshot[0].Year)
	case <-time.After(time.Second):
		t.Fatal("poller did not publish")
	}

	cancel()
	assert.NoError(t, <-done)
}

type fakeReader struct {
	fakeLister
	record   *domain.Record
	province *string
}

func (f *fakeReader) ListRecords(ctx context.Context, opts store.ListRecordsOpts) ([]*domain.Record, error) {
	f.province = opts.ProvinceCode
	return f.fakeLister.ListRecords(ctx, opts)
}

func (f *fakeReader) GetRecord(_ context.Context, id uuid.UUID) (*domain.Record, error) {
	if f.record == nil || f.record.ID != id {
		return nil, constants.ErrDBNotFound
	}
	return f.record, nil
}

func TestService_Get(t *testing.T) {
	rec := &domain.Record{ID: uuid.New(), RegencyName: "Bogor"}
	svc := NewRecordsService(&fakeReader{record: rec}, NewFeed())

	got, err := svc.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bogor", got.RegencyName)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	feed := NewFeed()
	feed.Publish([]domain.Record{
		{ID: uuid.New(), ProvinceName: "Jawa Barat", RegencyName: "Bandung", Year: 2020},
		{ID: uuid.New(), ProvinceName: "Jawa Timur", RegencyName: "Surabaya", Year: 2021},
	})
	reader := &fakeReader{}
	svc := NewRecordsService(reader, feed)

	year := 2020
	view, err := svc.List(ctx, dto.ListRecordsRequest{Query: "JAWA", Year: &year})
	require.NoError(t, err)
	require.Len(t, view.Records, 1)
	assert.Equal(t, "Bandung", view.Records[0].RegencyName)
	assert.Equal(t, []domain.Year{2021, 2020}, view.AvailableYears)

	other := 2021
	view, err = svc.List(ctx, dto.ListRecordsRequest{Query: "bandung", Year: &other})
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Zero(t, reader.calls)
}

func TestService_List_ByProvince(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{}
	reader.set([]*domain.Record{
		{ID: uuid.New(), ProvinceCode: "51", ProvinceName: "Bali", RegencyName: "Badung", Year: 2019},
		{ID: uuid.New(), ProvinceCode: "51", ProvinceName: "Bali", RegencyName: "Gianyar", Year: 2022},
	}, nil)
	svc := NewRecordsService(reader, NewFeed())

	view, err := svc.List(ctx, dto.ListRecordsRequest{Query: "gianyar", ProvinceCode: "51"})
	require.NoError(t, err)
	require.NotNil(t, reader.province)
	assert.Equal(t, "51", *reader.province)
	require.Len(t, view.Records, 1)
	assert.Equal(t, "Gianyar", view.Records[0].RegencyName)
	assert.Equal(t, []domain.Year{2022, 2019}, view.AvailableYears)

	reader.set(nil, errors.New("db down"))
	_, err = svc.List(ctx, dto.ListRecordsRequest{ProvinceCode: "51"})
	assert.ErrorContains(t, err, "db down")
}
