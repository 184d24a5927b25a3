package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rongwang/sitecrew-server/internal/models"
)

const timeLogColumns = `id, user_id, project_id, clock_in, clock_out, duration_ms, cost,
	clock_in_lat, clock_in_lng, clock_out_lat, clock_out_lng, created_at, updated_at`

// timeLogRow is the flat column layout of time_logs
type timeLogRow struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	ProjectID   string          `db:"project_id"`
	ClockIn     time.Time       `db:"clock_in"`
	ClockOut    sql.NullTime    `db:"clock_out"`
	DurationMs  sql.NullInt64   `db:"duration_ms"`
	Cost        sql.NullFloat64 `db:"cost"`
	ClockInLat  sql.NullFloat64 `db:"clock_in_lat"`
	ClockInLng  sql.NullFloat64 `db:"clock_in_lng"`
	ClockOutLat sql.NullFloat64 `db:"clock_out_lat"`
	ClockOutLng sql.NullFloat64 `db:"clock_out_lng"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (row *timeLogRow) toModel() models.TimeLog {
	log := models.TimeLog{
		ID:               row.ID,
		UserID:           row.UserID,
		ProjectID:        row.ProjectID,
		ClockIn:          row.ClockIn.UTC(),
		ClockInLocation:  toLocation(row.ClockInLat, row.ClockInLng),
		ClockOutLocation: toLocation(row.ClockOutLat, row.ClockOutLng),
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if row.ClockOut.Valid {
		t := row.ClockOut.Time.UTC()
		log.ClockOut = &t
	}
	if row.DurationMs.Valid {
		d := row.DurationMs.Int64
		log.DurationMs = &d
	}
	if row.Cost.Valid {
		c := row.Cost.Float64
		log.Cost = &c
	}
	return log
}

func toLocation(lat, lng sql.NullFloat64) *models.Location {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &models.Location{Lat: lat.Float64, Lng: lng.Float64}
}

func locationArgs(loc *models.Location) (interface{}, interface{}) {
	if loc == nil {
		return nil, nil
	}
	return loc.Lat, loc.Lng
}

func (r *SQLRepository) selectTimeLogs(ctx context.Context, query string, args ...interface{}) ([]models.TimeLog, error) {
	var rows []timeLogRow
	if err := r.db.SelectContext(ctx, &rows, r.q(query), args...); err != nil {
		return nil, err
	}

	logs := make([]models.TimeLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].toModel())
	}
	return logs, nil
}

// GetOpenTimeLog returns the user's open log, or nil, nil if they have none
func (r *SQLRepository) GetOpenTimeLog(ctx context.Context, userID string) (*models.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE user_id = ? AND clock_out IS NULL`

	var row timeLogRow
	err := r.db.GetContext(ctx, &row, r.q(query), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	log := row.toModel()
	return &log, nil
}

// ListOpenTimeLogs returns every open log, most recent clock-in first
func (r *SQLRepository) ListOpenTimeLogs(ctx context.Context) ([]models.TimeLog, error) {
	return r.selectTimeLogs(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs WHERE clock_out IS NULL ORDER BY clock_in DESC`)
}

// ListUserTimeLogs returns one user's logs, most recent first. A limit of
// zero or less returns all of them.
func (r *SQLRepository) ListUserTimeLogs(ctx context.Context, userID string, limit int) ([]models.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE user_id = ? ORDER BY clock_in DESC, id`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.selectTimeLogs(ctx, query, args...)
}

// OpenTimeLog inserts a new open log and marks the user clocked in, atomically.
// Returns ErrOpenLogExists if the user already has an open log and ErrNotFound
// if the user row does not exist.
func (r *SQLRepository) OpenTimeLog(ctx context.Context, log *models.TimeLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	lat, lng := locationArgs(log.ClockInLocation)
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO time_logs (id, user_id, project_id, clock_in, clock_in_lat, clock_in_lng, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), log.ID, log.UserID, log.ProjectID, log.ClockIn, lat, lng, log.CreatedAt, log.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrOpenLogExists
		}
		return err
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE users SET is_clocked_in = ?, clock_in_time = ?, current_project_id = ?, updated_at = ?
		WHERE id = ?
	`), true, log.ClockIn, log.ProjectID, now, log.UserID)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// CloseTimeLog fixes the log's clock-out fields, clears the user's clock state
// and adds the log's cost to the project spend, atomically. It returns the
// project's new spend.
//
// Returns ErrLogAlreadyClosed if the log is no longer open and ErrNotFound if
// the user or project row is missing.
func (r *SQLRepository) CloseTimeLog(ctx context.Context, log *models.TimeLog) (float64, error) {
	if log.ClockOut == nil || log.DurationMs == nil || log.Cost == nil {
		return 0, errors.New("closing a time log requires clock-out, duration and cost")
	}

	now := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	lat, lng := locationArgs(log.ClockOutLocation)
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE time_logs
		SET clock_out = ?, duration_ms = ?, cost = ?, clock_out_lat = ?, clock_out_lng = ?, updated_at = ?
		WHERE id = ? AND clock_out IS NULL
	`), *log.ClockOut, *log.DurationMs, *log.Cost, lat, lng, now, log.ID)
	if err != nil {
		return 0, err
	}
	if err := expectAffected(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrLogAlreadyClosed
		}
		return 0, err
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE users SET is_clocked_in = ?, clock_in_time = NULL, current_project_id = NULL, updated_at = ?
		WHERE id = ?
	`), false, now, log.UserID)
	if err != nil {
		return 0, err
	}
	if err := expectAffected(res); err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE projects SET current_spend = current_spend + ?, updated_at = ? WHERE id = ?
	`), *log.Cost, now, log.ProjectID)
	if err != nil {
		return 0, err
	}
	if err := expectAffected(res); err != nil {
		return 0, err
	}

	var spend float64
	if err := tx.GetContext(ctx, &spend, tx.Rebind(`SELECT current_spend FROM projects WHERE id = ?`), log.ProjectID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	log.UpdatedAt = now
	return spend, nil
}
