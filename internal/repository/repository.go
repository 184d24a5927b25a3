package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rongwang/sitecrew-server/internal/models"
)

var (
	// ErrNotFound is returned by updates that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrOpenLogExists is returned when a user already has an open time log
	ErrOpenLogExists = errors.New("user already has an open time log")
	// ErrLogAlreadyClosed is returned when closing a log that is no longer open
	ErrLogAlreadyClosed = errors.New("time log is already closed")
)

// Repository interface defines the methods that any repository implementation must satisfy.
// Reads return nil, nil when the record does not exist.
type Repository interface {
	// Company operations
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, companyID string) ([]models.User, error)
	UpdateUserProfile(ctx context.Context, user *models.User) error

	// Project operations
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, companyID string) ([]models.Project, error)

	// Task operations
	CreateTask(ctx context.Context, task *models.Task) error
	ListProjectTasks(ctx context.Context, projectID string) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) error

	// Punch list operations
	CreatePunchListItem(ctx context.Context, item *models.PunchListItem) error
	ListPunchListItems(ctx context.Context, projectID string) ([]models.PunchListItem, error)
	TogglePunchListItem(ctx context.Context, projectID, itemID string) (*models.PunchListItem, error)

	// Photo log operations
	CreateProjectPhoto(ctx context.Context, photo *models.ProjectPhoto) error
	ListProjectPhotos(ctx context.Context, projectID string) ([]models.ProjectPhoto, error)

	// Time log operations
	GetOpenTimeLog(ctx context.Context, userID string) (*models.TimeLog, error)
	ListOpenTimeLogs(ctx context.Context) ([]models.TimeLog, error)
	ListUserTimeLogs(ctx context.Context, userID string, limit int) ([]models.TimeLog, error)
	OpenTimeLog(ctx context.Context, log *models.TimeLog) error
	CloseTimeLog(ctx context.Context, log *models.TimeLog) (float64, error)

	Ping(ctx context.Context) error
}

// SQLRepository implements the Repository interface on top of sqlx.
// Queries are written with ? placeholders and rebound for the driver in use,
// so the same code serves PostgreSQL and SQLite.
type SQLRepository struct {
	db *sqlx.DB
}

// Ensure SQLRepository implements Repository
var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a new repository over an open connection
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *SQLRepository) GetDB() *sqlx.DB {
	return r.db
}

// Ping checks that the database is reachable
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) q(query string) string {
	return r.db.Rebind(query)
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either supported driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
	}

	return false
}
