package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rongwang/sitecrew-server/internal/models"
)

const taskColumns = `id, title, description, project_id, assignee_id, due_date, status, created_at, updated_at`

// Task repository methods
func (r *SQLRepository) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.q(query),
		task.ID, task.Title, task.Description, task.ProjectID, task.AssigneeID,
		task.DueDate, string(task.Status), task.CreatedAt, task.UpdatedAt)

	return err
}

func (r *SQLRepository) ListProjectTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY created_at DESC`

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, r.q(query), projectID); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *SQLRepository) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) error {
	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.q(query), string(status), time.Now().UTC(), taskID)
	if err != nil {
		return err
	}

	return expectAffected(res)
}
