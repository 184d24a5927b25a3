package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rongwang/sitecrew-server/internal/models"
)

const userColumns = `id, name, role, hourly_rate, avatar_url, company_id, pin_hash,
	is_clocked_in, clock_in_time, current_project_id, created_at, updated_at`

// User repository methods
func (r *SQLRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.q(query),
		user.ID, user.Name, user.Role, user.HourlyRate, user.AvatarURL, user.CompanyID, user.PinHash,
		user.IsClockedIn, user.ClockInTime, user.CurrentProjectID, user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *SQLRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	var user models.User
	err := r.db.GetContext(ctx, &user, r.q(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	normalizeUser(&user)
	return &user, nil
}

// ListUsers returns users newest first, optionally restricted to one company
func (r *SQLRepository) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}

	if companyID != "" {
		query += ` WHERE company_id = ?`
		args = append(args, companyID)
	}

	query += ` ORDER BY created_at DESC`

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, r.q(query), args...); err != nil {
		return nil, err
	}

	for i := range users {
		normalizeUser(&users[i])
	}
	return users, nil
}

// UpdateUserProfile writes the editable profile fields. Clock state is owned
// by the time log transitions and is never written here.
func (r *SQLRepository) UpdateUserProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET name = ?, role = ?, hourly_rate = ?, pin_hash = ?, updated_at = ?
		WHERE id = ?
	`

	user.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, r.q(query),
		user.Name, user.Role, user.HourlyRate, user.PinHash, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func normalizeUser(u *models.User) {
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	if u.ClockInTime != nil {
		t := u.ClockInTime.UTC()
		u.ClockInTime = &t
	}
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
