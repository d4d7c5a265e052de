package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerline/internal/core"
	"ledgerline/internal/modes"
	"ledgerline/internal/repository"
)

// ProgressPoint is one recorded progress change.
type ProgressPoint struct {
	Timestamp time.Time
	Progress  int
}

// Dashboard gathers everything known about one mode of one user.
type Dashboard struct {
	Record   core.ModeRecord
	History  []core.HistoryEvent // newest first
	Current  core.Result
	Progress []ProgressPoint // newest first, progress events only
	Tips     []string
}

// EventsFor returns userID's history newest first. With a mode name only that
// mode's events are returned; an unrecognized name yields no events.
func (s *ModeService) EventsFor(ctx context.Context, userID int64, mode ...string) ([]core.HistoryEvent, error) {
	var name core.ModeName
	if len(mode) > 0 && mode[0] != "" {
		var ok bool
		if name, ok = core.ParseModeName(mode[0]); !ok {
			return nil, nil
		}
	}
	evs, err := s.store.ListHistory(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("list history for user %d: %w", userID, err)
	}
	return evs, nil
}

// HistoryByMode groups userID's history per mode, newest first inside each.
func (s *ModeService) HistoryByMode(ctx context.Context, userID int64) (map[core.ModeName][]core.HistoryEvent, error) {
	evs, err := s.EventsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[core.ModeName][]core.HistoryEvent)
	for _, ev := range evs {
		grouped[ev.Mode] = append(grouped[ev.Mode], ev)
	}
	return grouped, nil
}

// Dashboard returns nil without error when name is not a mode or userID has
// no record for it yet.
func (s *ModeService) Dashboard(ctx context.Context, userID int64, name string) (*Dashboard, error) {
	mode, ok := core.ParseModeName(name)
	if !ok {
		return nil, nil
	}

	rec, err := s.store.GetMode(ctx, userID, mode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mode %s for user %d: %w", mode, userID, err)
	}

	history, err := s.store.ListHistory(ctx, userID, mode)
	if err != nil {
		return nil, fmt.Errorf("list %s history for user %d: %w", mode, userID, err)
	}

	eval, err := s.cachedEvaluation(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, _ := eval.Result(mode)

	d := &Dashboard{
		Record:  rec,
		History: history,
		Current: current,
		Tips:    modes.Tips(mode.String()),
	}
	for _, ev := range history {
		if ev.StatusChange == core.StatusProgress {
			d.Progress = append(d.Progress, ProgressPoint{Timestamp: ev.Timestamp, Progress: ev.Progress})
		}
	}
	return d, nil
}
