package screen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/pkg/logger"
	"github.com/ougirez/regstat/internal/service/navigation"
	"github.com/ougirez/regstat/internal/service/records"
)

type forgetter interface {
	Forget(screenID uuid.UUID)
}

// Registry tracks the screens that are currently entered. Screens that are
// not accessed for idleTTL are exited by Sweep. The navigation history of an
// exited screen is kept for another idleTTL.
type Registry struct {
	source    records.Source
	navigator navigation.Navigator
	idleTTL   time.Duration
	now       func() time.Time

	mx      sync.RWMutex
	screens map[uuid.UUID]*Screen
	exited  map[uuid.UUID]time.Time
}

func NewRegistry(source records.Source, navigator navigation.Navigator, idleTTL time.Duration) *Registry {
	return &Registry{
		source:    source,
		navigator: navigator,
		idleTTL:   idleTTL,
		now:       time.Now,
		screens:   make(map[uuid.UUID]*Screen),
		exited:    make(map[uuid.UUID]time.Time),
	}
}

// Enter creates a screen with a default FilterState.
func (r *Registry) Enter(ctx context.Context) *Screen {
	s := newScreen(r.source.Subscribe(), r.navigator, r.now)

	r.mx.Lock()
	r.screens[s.id] = s
	r.mx.Unlock()

	logger.Debugf(ctx, "screen entered: %s", s.id)
	return s
}

// Get returns a live screen and marks it as accessed.
func (r *Registry) Get(id uuid.UUID) (*Screen, error) {
	r.mx.RLock()
	s, ok := r.screens[id]
	r.mx.RUnlock()

	if !ok {
		return nil, fmt.Errorf("screen-%s: %w", id, constants.ErrScreenNotFound)
	}

	s.touch()
	return s, nil
}

// Known reports whether the screen is live or was exited recently enough
// for its navigation history to be kept.
func (r *Registry) Known(id uuid.UUID) error {
	r.mx.RLock()
	defer r.mx.RUnlock()

	if _, ok := r.screens[id]; ok {
		return nil
	}
	if _, ok := r.exited[id]; ok {
		return nil
	}
	return fmt.Errorf("screen-%s: %w", id, constants.ErrScreenNotFound)
}

// Back issues the back request for the screen and discards it.
func (r *Registry) Back(ctx context.Context, id uuid.UUID) (domain.NavigationRequest, error) {
	s, err := r.Get(id)
	if err != nil {
		return domain.NavigationRequest{}, err
	}

	req, err := s.back(ctx)
	if err != nil {
		return domain.NavigationRequest{}, err
	}

	r.Exit(ctx, id)
	return req, nil
}

// Exit discards the screen and its FilterState. Unknown ids are ignored.
func (r *Registry) Exit(ctx context.Context, id uuid.UUID) {
	r.mx.Lock()
	s, ok := r.screens[id]
	if ok {
		delete(r.screens, id)
		r.exited[id] = r.now()
	}
	r.mx.Unlock()

	if !ok {
		return
	}

	s.close()
	logger.Debugf(ctx, "screen exited: %s", id)
}

// Sweep exits screens idle for longer than idleTTL and forgets the history
// of screens exited before that. It returns the number of expired screens.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mx.RLock()
	var idle []uuid.UUID
	for id, s := range r.screens {
		if s.idleSince(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mx.RUnlock()

	for _, id := range idle {
		r.Exit(ctx, id)
	}

	r.mx.Lock()
	var stale []uuid.UUID
	for id, at := range r.exited {
		if at.Before(cutoff) {
			stale = append(stale, id)
			delete(r.exited, id)
		}
	}
	r.mx.Unlock()

	if f, ok := r.navigator.(forgetter); ok {
		for _, id := range stale {
			f.Forget(id)
		}
	}

	if len(idle) > 0 {
		logger.Infof(ctx, "screens expired: %d", len(idle))
	}
	return len(idle)
}

// Run sweeps every half idleTTL until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(r.idleTTL/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

func (r *Registry) Len() int {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return len(r.screens)
}
