// Package ledger owns the clock-in/clock-out state machine.
//
// Each transition validates against the store, captures a best-effort
// location and persists all of its writes in one store call. The open time
// log in the store is the clock state; the observers read it on every call,
// so every process sharing the store sees the same state.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/location"
	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
)

// Store is the persistence surface the ledger needs
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetOpenTimeLog(ctx context.Context, userID string) (*models.TimeLog, error)
	OpenTimeLog(ctx context.Context, log *models.TimeLog) error
	CloseTimeLog(ctx context.Context, log *models.TimeLog) (float64, error)
	ListUsers(ctx context.Context, companyID string) ([]models.User, error)
	ListOpenTimeLogs(ctx context.Context) ([]models.TimeLog, error)
	ListUserTimeLogs(ctx context.Context, userID string, limit int) ([]models.TimeLog, error)
}

// Ledger tracks clock state and time logs for every user
type Ledger struct {
	store    Store
	provider location.Provider
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates a ledger over store
func New(store Store, provider location.Provider, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		provider: provider,
		logger:   logger.Named("ledger"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Refresh reads the stored clock state at startup. Users whose clock fields
// disagree with their open log are reported; the open log wins.
func (l *Ledger) Refresh(ctx context.Context) error {
	users, err := l.store.ListUsers(ctx, "")
	if err != nil {
		return storeError("list users", err)
	}

	open, err := l.store.ListOpenTimeLogs(ctx)
	if err != nil {
		return storeError("list open time logs", err)
	}

	openByUser := make(map[string]models.TimeLog, len(open))
	for _, log := range open {
		openByUser[log.UserID] = log
	}

	mismatched := 0
	for i := range users {
		log, isOpen := openByUser[users[i].ID]
		state := users[i].ClockState()
		if state.IsClockedIn == isOpen &&
			(!isOpen || (state.CurrentProjectID != nil && *state.CurrentProjectID == log.ProjectID)) {
			continue
		}
		mismatched++
		l.logger.Warn("User clock state disagrees with open time log",
			zap.String("user_id", users[i].ID),
			zap.Bool("user_clocked_in", state.IsClockedIn),
			zap.Bool("has_open_log", isOpen))
	}

	l.logger.Info("Ledger loaded",
		zap.Int("users", len(users)),
		zap.Int("open_time_logs", len(open)),
		zap.Int("mismatched_users", mismatched))
	return nil
}

// ClockIn opens a time log for userID on projectID.
//
// Returns ErrInvalidTransition if the user already has an open log.
func (l *Ledger) ClockIn(ctx context.Context, userID, projectID string) (*models.TimeLog, error) {
	locCh := l.requestLocation(ctx)

	user, err := l.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, l.fail(transitionClockIn, userID, storeError("get user", err))
	}
	if user == nil {
		return nil, l.fail(transitionClockIn, userID, ErrUserNotFound)
	}

	project, err := l.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, l.fail(transitionClockIn, userID, storeError("get project", err))
	}
	if project == nil {
		return nil, l.fail(transitionClockIn, userID, ErrProjectNotFound)
	}

	open, err := l.store.GetOpenTimeLog(ctx, userID)
	if err != nil {
		return nil, l.fail(transitionClockIn, userID, storeError("get open time log", err))
	}
	if open != nil {
		return nil, l.fail(transitionClockIn, userID,
			fmt.Errorf("user %s is already clocked in on project %s: %w", userID, open.ProjectID, ErrInvalidTransition))
	}

	loc := <-locCh
	now := l.timestamp()

	log := &models.TimeLog{
		UserID:          userID,
		ProjectID:       projectID,
		ClockIn:         now,
		ClockInLocation: loc,
	}

	if err := l.store.OpenTimeLog(ctx, log); err != nil {
		if errors.Is(err, repository.ErrOpenLogExists) {
			err = fmt.Errorf("user %s is already clocked in: %w", userID, ErrInvalidTransition)
		} else {
			err = storeError("open time log", err)
		}
		return nil, l.fail(transitionClockIn, userID, err)
	}

	transitionsTotal.WithLabelValues(transitionClockIn, resultOK).Inc()
	l.logger.Info("Clocked in",
		zap.String("user_id", userID),
		zap.String("project_id", projectID),
		zap.String("time_log_id", log.ID),
		zap.Bool("has_location", loc != nil))

	result := *log
	return &result, nil
}

// ClockOut closes the user's open time log, fixing its duration and cost and
// adding the cost to the project's spend.
//
// Returns ErrInvalidTransition if the user has no open log.
func (l *Ledger) ClockOut(ctx context.Context, userID string) (*models.TimeLog, error) {
	locCh := l.requestLocation(ctx)

	user, err := l.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, l.fail(transitionClockOut, userID, storeError("get user", err))
	}
	if user == nil {
		return nil, l.fail(transitionClockOut, userID, ErrUserNotFound)
	}

	open, err := l.store.GetOpenTimeLog(ctx, userID)
	if err != nil {
		return nil, l.fail(transitionClockOut, userID, storeError("get open time log", err))
	}
	if open == nil {
		return nil, l.fail(transitionClockOut, userID,
			fmt.Errorf("user %s is not clocked in: %w", userID, ErrInvalidTransition))
	}

	loc := <-locCh
	now := l.timestamp()
	if now.Before(open.ClockIn) {
		now = open.ClockIn
	}

	durationMs := ComputeDurationMs(open.ClockIn, now)
	cost := ComputeCost(durationMs, user.HourlyRate)

	closed := *open
	closed.ClockOut = &now
	closed.DurationMs = &durationMs
	closed.Cost = &cost
	closed.ClockOutLocation = loc

	spend, err := l.store.CloseTimeLog(ctx, &closed)
	if err != nil {
		if errors.Is(err, repository.ErrLogAlreadyClosed) {
			err = fmt.Errorf("time log %s was already closed: %w", open.ID, ErrInvalidTransition)
		} else {
			err = storeError("close time log", err)
		}
		return nil, l.fail(transitionClockOut, userID, err)
	}

	transitionsTotal.WithLabelValues(transitionClockOut, resultOK).Inc()
	loggedCostTotal.Add(cost)
	loggedHours.Observe(float64(durationMs) / msPerHour)
	l.logger.Info("Clocked out",
		zap.String("user_id", userID),
		zap.String("project_id", closed.ProjectID),
		zap.String("time_log_id", closed.ID),
		zap.Int64("duration_ms", durationMs),
		zap.Float64("cost", cost),
		zap.Float64("project_spend", spend),
		zap.Bool("has_location", loc != nil))

	return &closed, nil
}

// IsClockedIn reports whether the user has an open time log
func (l *Ledger) IsClockedIn(ctx context.Context, userID string) (bool, error) {
	open, err := l.OpenLogFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return open != nil, nil
}

// OpenLogFor returns the user's open time log, or nil if they are clocked out
func (l *Ledger) OpenLogFor(ctx context.Context, userID string) (*models.TimeLog, error) {
	open, err := l.store.GetOpenTimeLog(ctx, userID)
	if err != nil {
		return nil, storeError("get open time log", err)
	}
	return open, nil
}

// RecentLogsFor returns up to limit of the user's time logs, most recent
// clock-in first. A limit of zero or less returns all of them.
func (l *Ledger) RecentLogsFor(ctx context.Context, userID string, limit int) ([]models.TimeLog, error) {
	logs, err := l.store.ListUserTimeLogs(ctx, userID, limit)
	if err != nil {
		return nil, storeError("list time logs", err)
	}
	if logs == nil {
		logs = []models.TimeLog{}
	}
	return logs, nil
}

// requestLocation starts the location lookup in the background. The channel
// always receives exactly one value.
func (l *Ledger) requestLocation(ctx context.Context) <-chan *models.Location {
	ch := make(chan *models.Location, 1)
	go func() {
		ch <- l.provider.CurrentLocation(ctx)
	}()
	return ch
}

// timestamp is the transition time: UTC at millisecond precision, which is
// what every store keeps
func (l *Ledger) timestamp() time.Time {
	return l.now().UTC().Truncate(time.Millisecond)
}

func (l *Ledger) fail(transition, userID string, err error) error {
	result := resultStoreError
	switch {
	case errors.Is(err, ErrInvalidTransition):
		result = resultInvalidTransition
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrProjectNotFound):
		result = resultNotFound
	}
	transitionsTotal.WithLabelValues(transition, result).Inc()

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		l.logger.Error("Clock transition failed",
			zap.String("transition", transition),
			zap.String("user_id", userID),
			zap.String("op", storeErr.Op),
			zap.Error(storeErr.Err))
	} else {
		l.logger.Info("Clock transition rejected",
			zap.String("transition", transition),
			zap.String("user_id", userID),
			zap.Error(err))
	}
	return err
}
