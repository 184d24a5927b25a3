package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rongwang/sitecrew-server/internal/models"
)

const projectColumns = `id, name, address, type, status, start_date, end_date,
	budget, current_spend, company_id, created_at, updated_at`

// Project repository methods
func (r *SQLRepository) CreateProject(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Generate a new UUID if not provided
	if project.ID == "" {
		project.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.q(query),
		project.ID, project.Name, project.Address, project.Type, project.Status,
		project.StartDate, project.EndDate, project.Budget, project.CurrentSpend,
		project.CompanyID, project.CreatedAt, project.UpdatedAt)

	return err
}

// GetProject returns the project without its punch list or photos
func (r *SQLRepository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	var project models.Project
	err := r.db.GetContext(ctx, &project, r.q(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Project not found
		}
		return nil, err
	}

	normalizeProject(&project)
	return &project, nil
}

// ListProjects returns projects newest first, optionally restricted to one company
func (r *SQLRepository) ListProjects(ctx context.Context, companyID string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []interface{}{}

	if companyID != "" {
		query += ` WHERE company_id = ?`
		args = append(args, companyID)
	}

	query += ` ORDER BY created_at DESC`

	projects := []models.Project{}
	if err := r.db.SelectContext(ctx, &projects, r.q(query), args...); err != nil {
		return nil, err
	}

	for i := range projects {
		normalizeProject(&projects[i])
	}
	return projects, nil
}

func normalizeProject(p *models.Project) {
	p.StartDate = p.StartDate.UTC()
	p.EndDate = p.EndDate.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
}
