package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rongwang/sitecrew-server/internal/models"
)

// Photo log repository methods
func (r *SQLRepository) CreateProjectPhoto(ctx context.Context, photo *models.ProjectPhoto) error {
	query := `
		INSERT INTO project_photos (id, project_id, image_data_url, description, date_added)
		VALUES (?, ?, ?, ?, ?)
	`

	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.DateAdded.IsZero() {
		photo.DateAdded = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, r.q(query),
		photo.ID, photo.ProjectID, photo.ImageDataURL, photo.Description, photo.DateAdded)

	return err
}

// ListProjectPhotos returns the photo log newest first
func (r *SQLRepository) ListProjectPhotos(ctx context.Context, projectID string) ([]models.ProjectPhoto, error) {
	query := `
		SELECT id, project_id, image_data_url, description, date_added
		FROM project_photos WHERE project_id = ? ORDER BY date_added DESC
	`

	photos := []models.ProjectPhoto{}
	if err := r.db.SelectContext(ctx, &photos, r.q(query), projectID); err != nil {
		return nil, err
	}

	return photos, nil
}
