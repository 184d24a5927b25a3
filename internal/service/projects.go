package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
)

// Project methods
func (s *DefaultService) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	startDate, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("endDate is before startDate: %w", ErrInvalidInput)
	}

	if req.CompanyID != "" {
		if err := s.requireCompany(ctx, req.CompanyID); err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		Name:         req.Name,
		Address:      req.Address,
		Type:         req.Type,
		Status:       req.Status,
		StartDate:    startDate,
		EndDate:      endDate,
		Budget:       req.Budget,
		CurrentSpend: 0, // Only closed time logs add to spend
		CompanyID:    optional(req.CompanyID),
		PunchList:    []models.PunchListItem{},
		Photos:       []models.ProjectPhoto{},
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}

	return project, nil
}

func (s *DefaultService) ListProjects(ctx context.Context, companyID string) ([]models.Project, error) {
	projects, err := s.repo.ListProjects(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}

	for i := range projects {
		projects[i].PunchList = []models.PunchListItem{}
		projects[i].Photos = []models.ProjectPhoto{}
	}
	return projects, nil
}

// GetProject returns the project with its punch list and photo log
func (s *DefaultService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.requireProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	project.PunchList, err = s.repo.ListPunchListItems(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error getting punch list: %w", err)
	}

	project.Photos, err = s.repo.ListProjectPhotos(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error getting photos: %w", err)
	}

	return project, nil
}

// Task methods
func (s *DefaultService) CreateTask(ctx context.Context, projectID string, req models.CreateTaskRequest) (*models.Task, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	dueDate, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return nil, err
	}

	if req.AssigneeID != "" {
		assignee, err := s.repo.GetUserByID(ctx, req.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("error getting assignee: %w", err)
		}
		if assignee == nil {
			return nil, fmt.Errorf("assignee %s: %w", req.AssigneeID, ErrNotFound)
		}
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   projectID,
		AssigneeID:  optional(req.AssigneeID),
		DueDate:     dueDate,
		Status:      models.TaskStatusToDo,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	return task, nil
}

func (s *DefaultService) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListProjectTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *DefaultService) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown task status %q: %w", status, ErrInvalidInput)
	}

	if err := s.repo.UpdateTaskStatus(ctx, taskID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		return fmt.Errorf("error updating task status: %w", err)
	}

	return nil
}

// Punch list methods
func (s *DefaultService) AddPunchListItem(ctx context.Context, projectID string, req models.AddPunchListItemRequest) (*models.PunchListItem, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	item := &models.PunchListItem{
		ProjectID:  projectID,
		Text:       req.Text,
		IsComplete: false,
	}

	if err := s.repo.CreatePunchListItem(ctx, item); err != nil {
		return nil, fmt.Errorf("error adding punch list item: %w", err)
	}

	return item, nil
}

func (s *DefaultService) TogglePunchListItem(ctx context.Context, projectID, itemID string) (*models.PunchListItem, error) {
	item, err := s.repo.TogglePunchListItem(ctx, projectID, itemID)
	if err != nil {
		return nil, fmt.Errorf("error toggling punch list item: %w", err)
	}

	if item == nil {
		return nil, fmt.Errorf("punch list item %s: %w", itemID, ErrNotFound)
	}

	return item, nil
}

// Photo log methods
func (s *DefaultService) AddPhoto(ctx context.Context, projectID string, req models.AddPhotoRequest) (*models.ProjectPhoto, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	photo := &models.ProjectPhoto{
		ProjectID:    projectID,
		ImageDataURL: req.ImageDataURL,
		Description:  req.Description,
	}

	if err := s.repo.CreateProjectPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("error adding photo: %w", err)
	}

	return photo, nil
}

func (s *DefaultService) ListPhotos(ctx context.Context, projectID string) ([]models.ProjectPhoto, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	photos, err := s.repo.ListProjectPhotos(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error listing photos: %w", err)
	}
	return photos, nil
}

func (s *DefaultService) requireProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error getting project: %w", err)
	}

	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	return project, nil
}
