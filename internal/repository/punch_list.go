package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rongwang/sitecrew-server/internal/models"
)

// Punch list repository methods
func (r *SQLRepository) CreatePunchListItem(ctx context.Context, item *models.PunchListItem) error {
	query := `
		INSERT INTO punch_list_items (id, project_id, text, is_complete, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.q(query),
		item.ID, item.ProjectID, item.Text, item.IsComplete, item.CreatedAt)

	return err
}

func (r *SQLRepository) ListPunchListItems(ctx context.Context, projectID string) ([]models.PunchListItem, error) {
	query := `
		SELECT id, project_id, text, is_complete, created_at
		FROM punch_list_items WHERE project_id = ? ORDER BY created_at ASC
	`

	items := []models.PunchListItem{}
	if err := r.db.SelectContext(ctx, &items, r.q(query), projectID); err != nil {
		return nil, err
	}

	return items, nil
}

// TogglePunchListItem flips the completion flag in place and returns the updated item.
// Returns nil, nil if the item does not belong to the project.
func (r *SQLRepository) TogglePunchListItem(ctx context.Context, projectID, itemID string) (*models.PunchListItem, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE punch_list_items SET is_complete = NOT is_complete WHERE id = ? AND project_id = ?`),
		itemID, projectID)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var item models.PunchListItem
	err = tx.GetContext(ctx, &item,
		tx.Rebind(`SELECT id, project_id, text, is_complete, created_at FROM punch_list_items WHERE id = ?`),
		itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &item, nil
}
