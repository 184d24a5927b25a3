package models

// Request models
type CreateSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
	Pin    string `json:"pin"`
}

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateUserRequest struct {
	Name       string   `json:"name" binding:"required"`
	Role       string   `json:"role" binding:"required"`
	HourlyRate *float64 `json:"hourlyRate" binding:"required,gte=0"`
	CompanyID  string   `json:"companyId"`
	Pin        string   `json:"pin" binding:"omitempty,min=4,max=12,numeric"`
}

type UpdateUserRequest struct {
	Name       *string  `json:"name" binding:"omitempty,min=1"`
	Role       *string  `json:"role" binding:"omitempty,min=1"`
	HourlyRate *float64 `json:"hourlyRate" binding:"omitempty,gte=0"`
	Pin        *string  `json:"pin" binding:"omitempty,min=4,max=12,numeric"`
}

type CreateProjectRequest struct {
	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address" binding:"required"`
	Type      string  `json:"type" binding:"required,oneof='New Construction' Renovation Demolition 'Interior Fit-Out'"`
	Status    string  `json:"status" binding:"required,oneof='In Progress' Completed 'On Hold'"`
	StartDate string  `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string  `json:"endDate" binding:"required,datetime=2006-01-02"`
	Budget    float64 `json:"budget" binding:"gte=0"`
	CompanyID string  `json:"companyId"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AssigneeID  string `json:"assigneeId"`
	DueDate     string `json:"dueDate" binding:"required,datetime=2006-01-02"`
}

type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status" binding:"required,oneof='To Do' 'In Progress' Done"`
}

type AddPunchListItemRequest struct {
	Text string `json:"text" binding:"required"`
}

type AddPhotoRequest struct {
	ImageDataURL string `json:"imageDataUrl" binding:"required,startswith=data:image/"`
	Description  string `json:"description"`
}

type ClockInRequest struct {
	ProjectID string    `json:"projectId" binding:"required"`
	Location  *Location `json:"location"`
}

type ClockOutRequest struct {
	Location *Location `json:"location"`
}

// TimeLogsQuery pages the time log list; zero means the server default
type TimeLogsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// Response models
type SessionResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type ClockStatusResponse struct {
	Status      string   `json:"status"`
	UserID      string   `json:"userId"`
	IsClockedIn bool     `json:"isClockedIn"`
	OpenLog     *TimeLog `json:"openLog,omitempty"`
}

type TimeLogResponse struct {
	Status  string  `json:"status"`
	TimeLog TimeLog `json:"timeLog"`
}

type TimeLogsResponse struct {
	Status   string    `json:"status"`
	UserID   string    `json:"userId"`
	TimeLogs []TimeLog `json:"timeLogs"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
