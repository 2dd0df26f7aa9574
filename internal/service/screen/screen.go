// Package screen holds the per-visit state of the record list screen and
// turns user actions into filter changes and navigation requests.
package screen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/service/filter"
	"github.com/ougirez/regstat/internal/service/navigation"
	"github.com/ougirez/regstat/internal/service/records"
)

// Screen is one entered instance of the list screen. Its FilterState lives
// exactly as long as the Screen.
type Screen struct {
	id        uuid.UUID
	sub       *records.Subscription
	navigator navigation.Navigator
	now       func() time.Time

	// unix nanos of the last access; open watchers keep the screen alive
	lastSeen atomic.Int64
	watchers atomic.Int32

	mx    sync.Mutex
	state domain.FilterState
}

func newScreen(sub *records.Subscription, navigator navigation.Navigator, now func() time.Time) *Screen {
	s := &Screen{
		id:        uuid.New(),
		sub:       sub,
		navigator: navigator,
		now:       now,
	}
	s.touch()
	return s
}

func (s *Screen) touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

func (s *Screen) idleSince(cutoff time.Time) bool {
	return s.watchers.Load() == 0 && s.lastSeen.Load() < cutoff.UnixNano()
}

func (s *Screen) ID() uuid.UUID {
	return s.id
}

func (s *Screen) State() domain.FilterState {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.state
}

func (s *Screen) View() domain.ScreenView {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.viewLocked(s.sub.Latest())
}

func (s *Screen) viewLocked(snapshot []domain.Record) domain.ScreenView {
	state := s.state
	if state.SelectedYear != nil {
		year := *state.SelectedYear
		state.SelectedYear = &year
	}

	return domain.ScreenView{
		ScreenID:    s.id,
		FilterState: state,
		View:        filter.Apply(snapshot, s.state),
	}
}

func (s *Screen) SetQuery(query string) domain.ScreenView {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.state.SearchQuery = query
	return s.viewLocked(s.sub.Latest())
}

func (s *Screen) OpenFacetPanel() domain.ScreenView {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.state.FacetPanelVisible = true
	return s.viewLocked(s.sub.Latest())
}

func (s *Screen) DismissFacetPanel() domain.ScreenView {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.state.FacetPanelVisible = false
	return s.viewLocked(s.sub.Latest())
}

// SelectYear narrows the list to one year and closes the facet panel.
func (s *Screen) SelectYear(year domain.Year) domain.ScreenView {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.state.SelectedYear = &year
	s.state.FacetPanelVisible = false
	return s.viewLocked(s.sub.Latest())
}

// ClearYear returns to "all years" and closes the facet panel.
func (s *Screen) ClearYear() domain.ScreenView {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.state.SelectedYear = nil
	s.state.FacetPanelVisible = false
	return s.viewLocked(s.sub.Latest())
}

func (s *Screen) Edit(ctx context.Context, recordID uuid.UUID) (domain.NavigationRequest, error) {
	return s.navigateToRecord(ctx, domain.NavigationEdit, recordID)
}

func (s *Screen) Delete(ctx context.Context, recordID uuid.UUID) (domain.NavigationRequest, error) {
	return s.navigateToRecord(ctx, domain.NavigationDelete, recordID)
}

func (s *Screen) navigateToRecord(ctx context.Context, intent domain.NavigationIntent, recordID uuid.UUID) (domain.NavigationRequest, error) {
	s.mx.Lock()
	visible := filter.ComputeVisible(s.sub.Latest(), s.state.SearchQuery, s.state.SelectedYear)
	s.mx.Unlock()

	found := false
	for _, r := range visible {
		if r.ID == recordID {
			found = true
			break
		}
	}
	if !found {
		return domain.NavigationRequest{}, fmt.Errorf("%s record-%s: %w", intent, recordID, constants.ErrRecordNotVisible)
	}

	req := domain.NavigationRequest{
		Intent:   intent,
		ScreenID: s.id,
		RecordID: &recordID,
		IssuedAt: s.now(),
	}
	if err := s.navigator.Navigate(ctx, req); err != nil {
		return domain.NavigationRequest{}, fmt.Errorf("navigator.Navigate: %w", err)
	}

	return req, nil
}

func (s *Screen) back(ctx context.Context) (domain.NavigationRequest, error) {
	req := domain.NavigationRequest{
		Intent:   domain.NavigationBack,
		ScreenID: s.id,
		IssuedAt: s.now(),
	}
	if err := s.navigator.Navigate(ctx, req); err != nil {
		return domain.NavigationRequest{}, fmt.Errorf("navigator.Navigate: %w", err)
	}

	return req, nil
}

// Watch calls onChange with a fresh view for every new record snapshot
// until ctx is done, the screen is exited or onChange fails. A watched
// screen never expires.
func (s *Screen) Watch(ctx context.Context, onChange func(domain.ScreenView) error) error {
	s.watchers.Add(1)
	defer func() {
		s.touch()
		s.watchers.Add(-1)
	}()

	updates := s.sub.Updates()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, ok := <-updates:
			if !ok {
				return nil
			}
			s.mx.Lock()
			view := s.viewLocked(snapshot)
			s.mx.Unlock()

			if err := onChange(view); err != nil {
				return err
			}
		}
	}
}

func (s *Screen) close() {
	s.sub.Close()
}
