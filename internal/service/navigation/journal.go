package navigation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/pkg/logger"
)

type Navigator interface {
	Navigate(ctx context.Context, req domain.NavigationRequest) error
}

// Journal keeps the most recent requests of every screen so the client
// can pick them up and perform the actual transition.
type Journal struct {
	limit   int
	mx      sync.Mutex
	entries map[uuid.UUID][]domain.NavigationRequest
}

func NewJournal(limit int) *Journal {
	if limit <= 0 {
		limit = 1
	}
	return &Journal{
		limit:   limit,
		entries: make(map[uuid.UUID][]domain.NavigationRequest),
	}
}

func (j *Journal) Navigate(ctx context.Context, req domain.NavigationRequest) error {
	j.mx.Lock()
	defer j.mx.Unlock()

	list := append(j.entries[req.ScreenID], req)
	if len(list) > j.limit {
		list = list[len(list)-j.limit:]
	}
	j.entries[req.ScreenID] = list

	if req.RecordID != nil {
		logger.Infof(ctx, "navigation: screen-%s intent-%s record-%s", req.ScreenID, req.Intent, req.RecordID)
	} else {
		logger.Infof(ctx, "navigation: screen-%s intent-%s", req.ScreenID, req.Intent)
	}

	return nil
}

// History returns the requests of a screen, oldest first.
func (j *Journal) History(screenID uuid.UUID) []domain.NavigationRequest {
	j.mx.Lock()
	defer j.mx.Unlock()

	out := make([]domain.NavigationRequest, len(j.entries[screenID]))
	copy(out, j.entries[screenID])
	return out
}

func (j *Journal) Forget(screenID uuid.UUID) {
	j.mx.Lock()
	defer j.mx.Unlock()

	delete(j.entries, screenID)
}
