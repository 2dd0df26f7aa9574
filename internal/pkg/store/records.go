package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/pkg/logger"
)

// ListRecordsOpts narrows the listing in the database. Year is left to the
// in-process filter so the year facet always sees every year.
type ListRecordsOpts struct {
	ProvinceCode *string
}

var recordColumns = []string{
	"id", "province_name", "province_code", "regency_name", "regency_code",
	"total", "unit", "year", "created_at", "updated_at",
}

// UpsertRecords inserts records, updating the existing row for the same
// (province_code, regency_code, year, unit). Records without an ID get one.
func (s *store) UpsertRecords(ctx context.Context, records []*domain.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := builder().Insert(tableRecords).
		Columns(recordColumns[:8]...)

	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		query = query.Values(r.ID, r.ProvinceName, r.ProvinceCode, r.RegencyName, r.RegencyCode, r.Total, r.Unit, r.Year)
	}

	query = query.Suffix(`
on conflict (province_code, regency_code, year, unit)
do update
set
	province_name = excluded.province_name,
	regency_name = excluded.regency_name,
	total = excluded.total,
	updated_at = now()`)

	affected, err := s.pool.Execx(ctx, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return 0, fmt.Errorf("upsert %d records: %w", len(records), err)
	}

	return affected, nil
}

func (s *store) ListRecords(ctx context.Context, opts ListRecordsOpts) ([]*domain.Record, error) {
	query := builder().Select(recordColumns...).
		From(tableRecords).
		OrderBy("province_name", "regency_name", "year desc", "id")

	if opts.ProvinceCode != nil {
		query = query.Where(sq.Eq{"province_code": *opts.ProvinceCode})
	}

	selected := make([]*domain.Record, 0)
	err := s.pool.Selectx(ctx, &selected, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	return selected, nil
}

func (s *store) GetRecord(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	query := builder().Select(recordColumns...).
		From(tableRecords).
		Where(sq.Eq{"id": id})

	var selected domain.Record
	err := s.pool.Getx(ctx, &selected, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}
