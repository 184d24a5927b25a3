package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rongwang/sitecrew-server/internal/models"
)

// Company repository methods
func (r *SQLRepository) CreateCompany(ctx context.Context, company *models.Company) error {
	query := `INSERT INTO companies (id, name, created_at) VALUES (?, ?, ?)`

	// Generate a new UUID if not provided
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	company.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.q(query), company.ID, company.Name, company.CreatedAt)
	return err
}

func (r *SQLRepository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	query := `SELECT id, name, created_at FROM companies WHERE id = ?`

	var company models.Company
	err := r.db.GetContext(ctx, &company, r.q(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Company not found
		}
		return nil, err
	}

	return &company, nil
}

func (r *SQLRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	query := `SELECT id, name, created_at FROM companies ORDER BY created_at DESC`

	companies := []models.Company{}
	if err := r.db.SelectContext(ctx, &companies, r.q(query)); err != nil {
		return nil, err
	}

	return companies, nil
}
