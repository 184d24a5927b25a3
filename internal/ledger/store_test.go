package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
)

// memoryStore is an in-memory Store with the same transition semantics as
// the SQL repository
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	projects map[string]models.Project
	logs     []models.TimeLog
}

var _ Store = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[string]models.User),
		projects: make(map[string]models.Project),
	}
}

func (s *memoryStore) addUser(name string, rate float64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: uuid.New().String(), Name: name, Role: "Carpenter", HourlyRate: rate}
	s.users[u.ID] = u
	return u
}

func (s *memoryStore) addProject(name string, spend float64) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Project{ID: uuid.New().String(), Name: name, CurrentSpend: spend}
	s.projects[p.ID] = p
	return p
}

func (s *memoryStore) setRate(userID string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	u.HourlyRate = rate
	s.users[userID] = u
}

func (s *memoryStore) spend(projectID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects[projectID].CurrentSpend
}

func (s *memoryStore) openCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.logs {
		if l.UserID == userID && l.IsOpen() {
			n++
		}
	}
	return n
}

type storeSnapshot struct {
	Users    map[string]models.User
	Projects map[string]models.Project
	Logs     []models.TimeLog
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		Users:    make(map[string]models.User, len(s.users)),
		Projects: make(map[string]models.Project, len(s.projects)),
		Logs:     append([]models.TimeLog(nil), s.logs...),
	}
	for k, v := range s.users {
		snap.Users[k] = v
	}
	for k, v := range s.projects {
		snap.Projects[k] = v
	}
	return snap
}

func (s *memoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *memoryStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memoryStore) GetOpenTimeLog(ctx context.Context, userID string) (*models.TimeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.UserID == userID && l.IsOpen() {
			log := l
			return &log, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) OpenTimeLog(ctx context.Context, log *models.TimeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.UserID == log.UserID && l.IsOpen() {
			return repository.ErrOpenLogExists
		}
	}
	u, ok := s.users[log.UserID]
	if !ok {
		return repository.ErrNotFound
	}

	log.ID = uuid.New().String()
	log.CreatedAt = time.Now().UTC()
	log.UpdatedAt = log.CreatedAt
	s.logs = append(s.logs, *log)

	clockIn := log.ClockIn
	projectID := log.ProjectID
	u.SetClockState(models.ClockState{IsClockedIn: true, ClockInTime: &clockIn, CurrentProjectID: &projectID})
	s.users[u.ID] = u
	return nil
}

func (s *memoryStore) CloseTimeLog(ctx context.Context, log *models.TimeLog) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, l := range s.logs {
		if l.ID == log.ID && l.IsOpen() {
			idx = i
		}
	}
	if idx < 0 {
		return 0, repository.ErrLogAlreadyClosed
	}
	p, ok := s.projects[log.ProjectID]
	if !ok {
		return 0, repository.ErrNotFound
	}

	s.logs[idx] = *log
	u := s.users[log.UserID]
	u.SetClockState(models.ClockState{})
	s.users[u.ID] = u
	p.CurrentSpend += *log.Cost
	s.projects[p.ID] = p
	return p.CurrentSpend, nil
}

func (s *memoryStore) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *memoryStore) ListOpenTimeLogs(ctx context.Context) ([]models.TimeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := []models.TimeLog{}
	for _, l := range s.logs {
		if l.IsOpen() {
			logs = append(logs, l)
		}
	}
	sortLogs(logs)
	return logs, nil
}

func (s *memoryStore) ListUserTimeLogs(ctx context.Context, userID string, limit int) ([]models.TimeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := []models.TimeLog{}
	for _, l := range s.logs {
		if l.UserID == userID {
			logs = append(logs, l)
		}
	}
	sortLogs(logs)
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// allLogs returns every stored log, most recent clock-in first
func (s *memoryStore) allLogs() []models.TimeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := append([]models.TimeLog{}, s.logs...)
	sortLogs(logs)
	return logs
}

func sortLogs(logs []models.TimeLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].ClockIn.After(logs[j].ClockIn)
	})
}

// MockStore is a testify mock for failure injection
type MockStore struct {
	mock.Mock
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *MockStore) GetOpenTimeLog(ctx context.Context, userID string) (*models.TimeLog, error) {
	args := m.Called(ctx, userID)
	l, _ := args.Get(0).(*models.TimeLog)
	return l, args.Error(1)
}

func (m *MockStore) OpenTimeLog(ctx context.Context, log *models.TimeLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockStore) CloseTimeLog(ctx context.Context, log *models.TimeLog) (float64, error) {
	args := m.Called(ctx, log)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	args := m.Called(ctx, companyID)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

func (m *MockStore) ListOpenTimeLogs(ctx context.Context) ([]models.TimeLog, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]models.TimeLog)
	return l, args.Error(1)
}

func (m *MockStore) ListUserTimeLogs(ctx context.Context, userID string, limit int) ([]models.TimeLog, error) {
	args := m.Called(ctx, userID, limit)
	l, _ := args.Get(0).([]models.TimeLog)
	return l, args.Error(1)
}
