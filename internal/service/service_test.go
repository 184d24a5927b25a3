package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rongwang/sitecrew-server/internal/config"
	"github.com/rongwang/sitecrew-server/internal/ledger"
	"github.com/rongwang/sitecrew-server/internal/location"
	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
	"github.com/rongwang/sitecrew-server/internal/testutils"
)

type MockClock struct {
	mock.Mock
}

func (m *MockClock) ClockIn(ctx context.Context, userID, projectID string) (*models.TimeLog, error) {
	args := m.Called(ctx, userID, projectID)
	l, _ := args.Get(0).(*models.TimeLog)
	return l, args.Error(1)
}

func (m *MockClock) ClockOut(ctx context.Context, userID string) (*models.TimeLog, error) {
	args := m.Called(ctx, userID)
	l, _ := args.Get(0).(*models.TimeLog)
	return l, args.Error(1)
}

func (m *MockClock) OpenLogFor(ctx context.Context, userID string) (*models.TimeLog, error) {
	args := m.Called(ctx, userID)
	l, _ := args.Get(0).(*models.TimeLog)
	return l, args.Error(1)
}

func (m *MockClock) RecentLogsFor(ctx context.Context, userID string, limit int) ([]models.TimeLog, error) {
	args := m.Called(ctx, userID, limit)
	l, _ := args.Get(0).([]models.TimeLog)
	return l, args.Error(1)
}

func newTestService(t *testing.T, clock Clock) (Service, repository.Repository) {
	t.Helper()
	repo := repository.NewSQLRepository(testutils.NewSQLiteDB(t))
	svc := NewDefaultService(repo, clock, config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour})
	return svc, repo
}

func TestClockIn_PassesReportedLocation(t *testing.T) {
	clock := new(MockClock)
	svc, _ := newTestService(t, clock)

	site := &models.Location{Lat: 48.85, Lng: 2.35}
	provider := location.NewProvider(config.LocationConfig{Timeout: time.Second}, zap.NewNop())

	clock.On("ClockIn", mock.MatchedBy(func(ctx context.Context) bool {
		loc := provider.CurrentLocation(ctx)
		return loc != nil && *loc == *site
	}), "u1", "p1").Return(&models.TimeLog{ID: "log1", ClockInLocation: site}, nil)

	resp, err := svc.ClockIn(context.Background(), "u1", models.ClockInRequest{ProjectID: "p1", Location: site})
	require.NoError(t, err)
	assert.Equal(t, "log1", resp.TimeLog.ID)
	clock.AssertExpectations(t)
}

func TestClockStatus(t *testing.T) {
	clock := new(MockClock)
	svc, _ := newTestService(t, clock)

	open := &models.TimeLog{ID: "log1", UserID: "u1"}
	clock.On("OpenLogFor", mock.Anything, "u1").Return(open, nil)
	clock.On("OpenLogFor", mock.Anything, "u2").Return(nil, nil)
	clock.On("OpenLogFor", mock.Anything, "u3").Return(nil, &ledger.StoreError{Op: "get open time log", Err: errors.New("connection refused")})

	resp, err := svc.ClockStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, resp.IsClockedIn)
	assert.Equal(t, "log1", resp.OpenLog.ID)

	resp, err = svc.ClockStatus(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, resp.IsClockedIn)
	assert.Nil(t, resp.OpenLog)

	_, err = svc.ClockStatus(context.Background(), "u3")
	var storeErr *ledger.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestTimeLogs_PassesLimit(t *testing.T) {
	clock := new(MockClock)
	svc, _ := newTestService(t, clock)

	clock.On("RecentLogsFor", mock.Anything, "u1", 25).Return([]models.TimeLog{{ID: "log2"}, {ID: "log1"}}, nil)

	resp, err := svc.TimeLogs(context.Background(), "u1", 25)
	require.NoError(t, err)
	require.Len(t, resp.TimeLogs, 2)
	assert.Equal(t, "log2", resp.TimeLogs[0].ID)
	clock.AssertExpectations(t)
}

func TestCreateUser_HashesPin(t *testing.T) {
	svc, repo := newTestService(t, new(MockClock))
	ctx := context.Background()

	rate := 31.0
	user, err := svc.CreateUser(ctx, models.CreateUserRequest{Name: "Dana", Role: "Carpenter", HourlyRate: &rate, Pin: "2468"})
	require.NoError(t, err)
	assert.False(t, user.IsClockedIn)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PinHash)
	assert.NotEqual(t, "2468", *stored.PinHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PinHash), []byte("2468")))

	_, err = svc.CreateSession(ctx, models.CreateSessionRequest{UserID: user.ID, Pin: "1357"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.CreateUser(ctx, models.CreateUserRequest{Name: "Lee", Role: "Labourer", HourlyRate: &rate, CompanyID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProject_Dates(t *testing.T) {
	svc, _ := newTestService(t, new(MockClock))
	ctx := context.Background()

	req := models.CreateProjectRequest{
		Name:      "Harbour Tower",
		Address:   "1 Wharf St",
		Type:      models.ProjectTypeDemolition,
		Status:    models.ProjectStatusOnHold,
		StartDate: "2026-04-01",
		EndDate:   "2026-05-01",
	}

	project, err := svc.CreateProject(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), project.StartDate)
	assert.Equal(t, 0.0, project.CurrentSpend)

	req.StartDate = "04/01/2026"
	_, err = svc.CreateProject(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateTaskStatus_Unknown(t *testing.T) {
	svc, _ := newTestService(t, new(MockClock))

	err := svc.UpdateTaskStatus(context.Background(), "t1", models.TaskStatus("Blocked"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.UpdateTaskStatus(context.Background(), "t1", models.TaskStatusDone)
	assert.ErrorIs(t, err, ErrNotFound)
}
