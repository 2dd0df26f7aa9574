package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/domain/dto"
	"github.com/ougirez/regstat/internal/pkg/store"
	"github.com/ougirez/regstat/internal/service/filter"
)

type RecordReader interface {
	RecordLister
	GetRecord(ctx context.Context, id uuid.UUID) (*domain.Record, error)
}

type Service struct {
	store RecordReader
	feed  *Feed
}

func NewRecordsService(store RecordReader, feed *Feed) *Service {
	return &Service{store: store, feed: feed}
}

// List filters the current snapshot without creating a screen. With a
// province code the collection is read from the store for that province
// only, and the year facet covers that province.
func (s *Service) List(ctx context.Context, req dto.ListRecordsRequest) (domain.View, error) {
	state := domain.FilterState{
		SearchQuery:  req.Query,
		SelectedYear: req.Year,
	}

	if req.ProvinceCode == "" {
		return filter.Apply(s.feed.Latest(), state), nil
	}

	rows, err := s.store.ListRecords(ctx, store.ListRecordsOpts{ProvinceCode: &req.ProvinceCode})
	if err != nil {
		return domain.View{}, fmt.Errorf("store.ListRecords, province-%s: %w", req.ProvinceCode, err)
	}

	snapshot := make([]domain.Record, 0, len(rows))
	for _, r := range rows {
		snapshot = append(snapshot, *r)
	}

	return filter.Apply(snapshot, state), nil
}

// Get reads one record from the store, bypassing the feed, so an edit
// target always sees the stored values.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	record, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("store.GetRecord, id-%s: %w", id, err)
	}

	return record, nil
}
