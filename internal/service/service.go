package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rongwang/sitecrew-server/internal/config"
	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
)

var (
	// ErrNotFound is wrapped by every lookup of a missing record
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for an unknown user or a wrong PIN
	ErrInvalidCredentials = errors.New("invalid user or PIN")
	// ErrInvalidInput is returned for requests that pass binding but not business rules
	ErrInvalidInput = errors.New("invalid input")
)

// dateLayout is the wire format of project and task dates
const dateLayout = "2006-01-02"

// Service defines all the business logic operations
type Service interface {
	// Sessions
	CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.SessionResponse, error)

	// Companies
	CreateCompany(ctx context.Context, req models.CreateCompanyRequest) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)

	// Team members
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	ListUsers(ctx context.Context, companyID string) ([]models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error)

	// Projects
	CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error)
	ListProjects(ctx context.Context, companyID string) ([]models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)

	// Tasks
	CreateTask(ctx context.Context, projectID string, req models.CreateTaskRequest) (*models.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) error

	// Punch list
	AddPunchListItem(ctx context.Context, projectID string, req models.AddPunchListItemRequest) (*models.PunchListItem, error)
	TogglePunchListItem(ctx context.Context, projectID, itemID string) (*models.PunchListItem, error)

	// Photo log
	AddPhoto(ctx context.Context, projectID string, req models.AddPhotoRequest) (*models.ProjectPhoto, error)
	ListPhotos(ctx context.Context, projectID string) ([]models.ProjectPhoto, error)

	// Time tracking
	ClockIn(ctx context.Context, userID string, req models.ClockInRequest) (*models.TimeLogResponse, error)
	ClockOut(ctx context.Context, userID string, req models.ClockOutRequest) (*models.TimeLogResponse, error)
	ClockStatus(ctx context.Context, userID string) (*models.ClockStatusResponse, error)
	TimeLogs(ctx context.Context, userID string, limit int) (*models.TimeLogsResponse, error)
}

// Clock is the time-tracking ledger as seen by the service
type Clock interface {
	ClockIn(ctx context.Context, userID, projectID string) (*models.TimeLog, error)
	ClockOut(ctx context.Context, userID string) (*models.TimeLog, error)
	OpenLogFor(ctx context.Context, userID string) (*models.TimeLog, error)
	RecentLogsFor(ctx context.Context, userID string, limit int) ([]models.TimeLog, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	clock         Clock
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, clock Clock, auth config.AuthConfig) Service {
	tokenDuration := auth.TokenTTL
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}

	return &DefaultService{
		repo:          repo,
		clock:         clock,
		jwtSecret:     []byte(auth.JWTSecret),
		tokenDuration: tokenDuration,
	}
}

// Session methods
func (s *DefaultService) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.SessionResponse, error) {
	user, err := s.repo.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Users without a PIN can be switched to freely
	if user.PinHash != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PinHash), []byte(req.Pin)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.SessionResponse{
		Status:    "success",
		UserID:    user.ID,
		Name:      user.Name,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": user.ID, // subject
		"exp": expirationTime.Unix(),
		"iat": time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func hashPin(pin string) (*string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing PIN: %w", err)
	}
	h := string(hashed)
	return &h, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a YYYY-MM-DD date: %w", field, ErrInvalidInput)
	}
	return t, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
