package service

import (
	"context"

	"github.com/rongwang/sitecrew-server/internal/location"
	"github.com/rongwang/sitecrew-server/internal/models"
)

// Time tracking methods. Ledger errors are returned unwrapped so callers can
// match ErrInvalidTransition and StoreError directly.
func (s *DefaultService) ClockIn(ctx context.Context, userID string, req models.ClockInRequest) (*models.TimeLogResponse, error) {
	ctx = location.WithReported(ctx, req.Location)

	log, err := s.clock.ClockIn(ctx, userID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	return &models.TimeLogResponse{
		Status:  "success",
		TimeLog: *log,
	}, nil
}

func (s *DefaultService) ClockOut(ctx context.Context, userID string, req models.ClockOutRequest) (*models.TimeLogResponse, error) {
	ctx = location.WithReported(ctx, req.Location)

	log, err := s.clock.ClockOut(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.TimeLogResponse{
		Status:  "success",
		TimeLog: *log,
	}, nil
}

func (s *DefaultService) ClockStatus(ctx context.Context, userID string) (*models.ClockStatusResponse, error) {
	open, err := s.clock.OpenLogFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ClockStatusResponse{
		Status:      "success",
		UserID:      userID,
		IsClockedIn: open != nil,
		OpenLog:     open,
	}, nil
}

func (s *DefaultService) TimeLogs(ctx context.Context, userID string, limit int) (*models.TimeLogsResponse, error) {
	logs, err := s.clock.RecentLogsFor(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return &models.TimeLogsResponse{
		Status:   "success",
		UserID:   userID,
		TimeLogs: logs,
	}, nil
}
