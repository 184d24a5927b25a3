package api_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/api/testutils"
	"github.com/rongwang/sitecrew-server/internal/config"
	"github.com/rongwang/sitecrew-server/internal/ledger"
	"github.com/rongwang/sitecrew-server/internal/location"
	"github.com/rongwang/sitecrew-server/internal/models"
)

func TestClockInClockOut(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)
	site := &models.Location{Lat: -33.8688, Lng: 151.2093}

	// Test case 1: Clock-out before clocking in is rejected
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-out", nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")

	// Test case 2: Clock in with a device location
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{ProjectID: testCtx.TestProjectID, Location: site}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var clockIn models.TimeLogResponse
	testutils.DecodeJSON(t, w, &clockIn)
	assert.Equal(t, testCtx.TestUserID, clockIn.TimeLog.UserID)
	assert.Nil(t, clockIn.TimeLog.ClockOut)
	require.NotNil(t, clockIn.TimeLog.ClockInLocation)
	assert.Equal(t, *site, *clockIn.TimeLog.ClockInLocation)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/status", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.ClockStatusResponse
	testutils.DecodeJSON(t, w, &status)
	assert.True(t, status.IsClockedIn)
	require.NotNil(t, status.OpenLog)
	assert.Equal(t, clockIn.TimeLog.ID, status.OpenLog.ID)

	// Test case 3: Second clock-in is rejected
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{ProjectID: testCtx.TestProjectID}, headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 4: Clock out without a location
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-out", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var clockOut models.TimeLogResponse
	testutils.DecodeJSON(t, w, &clockOut)
	assert.Equal(t, clockIn.TimeLog.ID, clockOut.TimeLog.ID)
	require.NotNil(t, clockOut.TimeLog.ClockOut)
	require.NotNil(t, clockOut.TimeLog.DurationMs)
	require.NotNil(t, clockOut.TimeLog.Cost)
	assert.Nil(t, clockOut.TimeLog.ClockOutLocation)
	assert.GreaterOrEqual(t, *clockOut.TimeLog.DurationMs, int64(0))
	assert.Equal(t,
		clockOut.TimeLog.ClockOut.Sub(clockOut.TimeLog.ClockIn).Milliseconds(),
		*clockOut.TimeLog.DurationMs)

	// Test case 5: Spend and user state were persisted with the log
	project, err := testCtx.Repository.GetProject(context.Background(), testCtx.TestProjectID)
	require.NoError(t, err)
	assert.InDelta(t, *clockOut.TimeLog.Cost, project.CurrentSpend, 1e-9)

	user, err := testCtx.Repository.GetUserByID(context.Background(), testCtx.TestUserID)
	require.NoError(t, err)
	assert.False(t, user.IsClockedIn)
	assert.Nil(t, user.ClockInTime)

	// Test case 6: The closed log is listed
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/logs", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var logs models.TimeLogsResponse
	testutils.DecodeJSON(t, w, &logs)
	require.Len(t, logs.TimeLogs, 1)
	assert.NotNil(t, logs.TimeLogs[0].ClockOut)
}

func TestClockIn_Validation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{ProjectID: "missing"}, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A token for a user that no longer exists
	ghost := testutils.GenerateToken(t, testCtx.JWTSecret, "ghost", time.Hour)
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{ProjectID: testCtx.TestProjectID}, testutils.AuthHeaders(ghost))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/status", nil, headers)
	var status models.ClockStatusResponse
	testutils.DecodeJSON(t, w, &status)
	assert.False(t, status.IsClockedIn)
}

func TestClockIn_UsersAreIndependent(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	otherID, otherJWT := testCtx.CreateUser(t, "Other User", 30)

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{ProjectID: testCtx.TestProjectID}, testutils.AuthHeaders(testCtx.TestUserJWT))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{ProjectID: testCtx.TestProjectID}, testutils.AuthHeaders(otherJWT))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-out", nil,
		testutils.AuthHeaders(otherJWT))
	require.Equal(t, http.StatusOK, w.Code)

	ctx := context.Background()
	clockedIn, err := testCtx.Ledger.IsClockedIn(ctx, testCtx.TestUserID)
	require.NoError(t, err)
	assert.True(t, clockedIn)

	clockedIn, err = testCtx.Ledger.IsClockedIn(ctx, otherID)
	require.NoError(t, err)
	assert.False(t, clockedIn)

	logs, err := testCtx.Ledger.RecentLogsFor(ctx, otherID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestClockStatus_ReflectsOtherWriters(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)
	ctx := context.Background()

	// A second ledger on the same database, as the sitecrew CLI would open
	logger := zap.NewNop()
	other := ledger.New(testCtx.Repository,
		location.NewProvider(config.LocationConfig{Timeout: time.Second}, logger), logger)

	opened, err := other.ClockIn(ctx, testCtx.TestUserID, testCtx.TestProjectID)
	require.NoError(t, err)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/status", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.ClockStatusResponse
	testutils.DecodeJSON(t, w, &status)
	assert.True(t, status.IsClockedIn)
	require.NotNil(t, status.OpenLog)
	assert.Equal(t, opened.ID, status.OpenLog.ID)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/logs", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	var logs models.TimeLogsResponse
	testutils.DecodeJSON(t, w, &logs)
	require.Len(t, logs.TimeLogs, 1)
	assert.Equal(t, opened.ID, logs.TimeLogs[0].ID)

	// The server closes the shift the other ledger opened
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-out", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	clockedIn, err := other.IsClockedIn(ctx, testCtx.TestUserID)
	require.NoError(t, err)
	assert.False(t, clockedIn)

	_, err = other.ClockOut(ctx, testCtx.TestUserID)
	assert.ErrorIs(t, err, ledger.ErrInvalidTransition)
}

func TestTimeLogs_Limit(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	for i := 0; i < 3; i++ {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
			models.ClockInRequest{ProjectID: testCtx.TestProjectID}, headers)
		require.Equal(t, http.StatusOK, w.Code)
		w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-out", nil, headers)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/logs?limit=2", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	var logs models.TimeLogsResponse
	testutils.DecodeJSON(t, w, &logs)
	assert.Len(t, logs.TimeLogs, 2)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/logs?limit=0", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/logs?limit=-1", nil, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/time/logs?limit=abc", nil, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConcurrentClockIn(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	const numGoroutines = 10

	codes := make(chan int, numGoroutines)
	var wg sync.WaitGroup

	// Simulate a double-tap from several devices at once
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
				models.ClockInRequest{ProjectID: testCtx.TestProjectID}, headers)
			codes <- w.Code
		}()
	}

	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for code := range codes {
		counts[code]++
	}

	assert.Equal(t, 1, counts[http.StatusOK])
	assert.Equal(t, numGoroutines-1, counts[http.StatusConflict])

	open, err := testCtx.Repository.GetOpenTimeLog(context.Background(), testCtx.TestUserID)
	require.NoError(t, err)
	require.NotNil(t, open)

	logs, err := testCtx.Repository.ListUserTimeLogs(context.Background(), testCtx.TestUserID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRateChangeDoesNotAlterRecordedCost(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-in",
		models.ClockInRequest{ProjectID: testCtx.TestProjectID}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/time/clock-out",
		models.ClockOutRequest{}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var closed models.TimeLogResponse
	testutils.DecodeJSON(t, w, &closed)

	rate := 500.0
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, "/api/users/"+testCtx.TestUserID,
		models.UpdateUserRequest{HourlyRate: &rate}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	logs, err := testCtx.Repository.ListUserTimeLogs(context.Background(), testCtx.TestUserID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, *closed.TimeLog.Cost, *logs[0].Cost)
}
