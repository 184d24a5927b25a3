package models

import (
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// Valid reports whether s is one of the known task states
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Project types offered by the project form
const (
	ProjectTypeNewConstruction = "New Construction"
	ProjectTypeRenovation      = "Renovation"
	ProjectTypeDemolition      = "Demolition"
	ProjectTypeInteriorFitOut  = "Interior Fit-Out"
)

// Project statuses
const (
	ProjectStatusInProgress = "In Progress"
	ProjectStatusCompleted  = "Completed"
	ProjectStatusOnHold     = "On Hold"
)

// Location is a best-effort latitude/longitude fix
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Company groups users and projects
type Company struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// User represents a crew member who can clock in and out.
//
// IsClockedIn is true if and only if ClockInTime and CurrentProjectID are set.
type User struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Role             string     `db:"role" json:"role"`
	HourlyRate       float64    `db:"hourly_rate" json:"hourlyRate"`
	AvatarURL        string     `db:"avatar_url" json:"avatarUrl"`
	CompanyID        *string    `db:"company_id" json:"companyId,omitempty"`
	PinHash          *string    `db:"pin_hash" json:"-"` // bcrypt hash, never returned in JSON
	IsClockedIn      bool       `db:"is_clocked_in" json:"isClockedIn"`
	ClockInTime      *time.Time `db:"clock_in_time" json:"clockInTime,omitempty"`
	CurrentProjectID *string    `db:"current_project_id" json:"currentProjectId,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// ClockState is the clock portion of a user row
type ClockState struct {
	IsClockedIn      bool
	ClockInTime      *time.Time
	CurrentProjectID *string
}

// ClockState returns the user's current clock fields
func (u *User) ClockState() ClockState {
	return ClockState{
		IsClockedIn:      u.IsClockedIn,
		ClockInTime:      u.ClockInTime,
		CurrentProjectID: u.CurrentProjectID,
	}
}

// SetClockState overwrites the user's clock fields
func (u *User) SetClockState(state ClockState) {
	u.IsClockedIn = state.IsClockedIn
	u.ClockInTime = state.ClockInTime
	u.CurrentProjectID = state.CurrentProjectID
}

// Project is a construction job with a budget and a running spend total
type Project struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Address      string          `db:"address" json:"address"`
	Type         string          `db:"type" json:"type"`
	Status       string          `db:"status" json:"status"`
	StartDate    time.Time       `db:"start_date" json:"startDate"`
	EndDate      time.Time       `db:"end_date" json:"endDate"`
	Budget       float64         `db:"budget" json:"budget"`
	CurrentSpend float64         `db:"current_spend" json:"currentSpend"`
	CompanyID    *string         `db:"company_id" json:"companyId,omitempty"`
	PunchList    []PunchListItem `db:"-" json:"punchList"`
	Photos       []ProjectPhoto  `db:"-" json:"photos"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// Task is a unit of work on a project assigned to a user
type Task struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	ProjectID   string     `db:"project_id" json:"projectId"`
	AssigneeID  *string    `db:"assignee_id" json:"assigneeId,omitempty"`
	DueDate     time.Time  `db:"due_date" json:"dueDate"`
	Status      TaskStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// PunchListItem is an outstanding item that must be fixed before handover
type PunchListItem struct {
	ID         string    `db:"id" json:"id"`
	ProjectID  string    `db:"project_id" json:"projectId"`
	Text       string    `db:"text" json:"text"`
	IsComplete bool      `db:"is_complete" json:"isComplete"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ProjectPhoto is an entry in a project's photo log
type ProjectPhoto struct {
	ID           string    `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"projectId"`
	ImageDataURL string    `db:"image_data_url" json:"imageDataUrl"`
	Description  string    `db:"description" json:"description"`
	DateAdded    time.Time `db:"date_added" json:"dateAdded"`
}

// TimeLog is one clock-in/clock-out span for a user on a project.
//
// A log is open while ClockOut is nil. It is closed exactly once, at which
// point DurationMs and Cost are fixed.
type TimeLog struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	ProjectID        string     `json:"projectId"`
	ClockIn          time.Time  `json:"clockIn"`
	ClockOut         *time.Time `json:"clockOut,omitempty"`
	DurationMs       *int64     `json:"durationMs,omitempty"`
	Cost             *float64   `json:"cost,omitempty"`
	ClockInLocation  *Location  `json:"clockInLocation,omitempty"`
	ClockOutLocation *Location  `json:"clockOutLocation,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// IsOpen reports whether the log has not been clocked out yet
func (l *TimeLog) IsOpen() bool {
	return l.ClockOut == nil
}
