package coach

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jbrinkw/coachbyte/internal/models"
)

// SetTimer starts the rest countdown. Negative durations are clamped to 0;
// durations over MaxTimerSeconds are rejected.
func (s *Service) SetTimer(ctx context.Context, seconds int) (*models.TimerStatus, error) {
	if seconds > MaxTimerSeconds {
		return nil, invalid("seconds must be at most %d, got %d", MaxTimerSeconds, seconds)
	}
	if seconds < 0 {
		seconds = 0
	}
	now := s.now()
	end := now.Add(time.Duration(seconds) * time.Second)
	if err := s.store.SetTimer(ctx, end); err != nil {
		return nil, fmt.Errorf("setting timer: %w", err)
	}
	status := StatusAt(&end, now)
	return &status, nil
}

// SetTimerMinutes starts a countdown of 1 to MaxTimerMinutes minutes.
func (s *Service) SetTimerMinutes(ctx context.Context, minutes int) (*models.TimerStatus, error) {
	if minutes < 1 || minutes > MaxTimerMinutes {
		return nil, invalid("minutes must be between 1 and %d, got %d", MaxTimerMinutes, minutes)
	}
	return s.SetTimer(ctx, minutes*60)
}

// TimerStatus reports the rest timer state.
func (s *Service) TimerStatus(ctx context.Context) (*models.TimerStatus, error) {
	end, err := s.store.Timer(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading timer: %w", err)
	}
	status := StatusAt(end, s.now())
	return &status, nil
}

// StatusAt derives the timer state at now for a timer ending at end.
// Remaining time is rounded up to whole seconds.
func StatusAt(end *time.Time, now time.Time) models.TimerStatus {
	if end == nil {
		return models.TimerStatus{State: models.TimerNone}
	}
	e := *end
	remaining := e.Sub(now)
	if remaining > 0 {
		return models.TimerStatus{
			State:            models.TimerRunning,
			RemainingSeconds: int(math.Ceil(remaining.Seconds())),
			EndsAt:           &e,
		}
	}
	return models.TimerStatus{
		State:          models.TimerExpired,
		ExpiredSeconds: int(-remaining / time.Second),
		EndsAt:         &e,
	}
}
