package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	UpsertRecords(ctx context.Context, records []*domain.Record) (int64, error)
	ListRecords(ctx context.Context, opts ListRecordsOpts) ([]*domain.Record, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*domain.Record, error)
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
