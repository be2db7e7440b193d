package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service"
)

const sessionColumns = `
	id,
	location_id,
	clock_in,
	clock_out,
	duration_minutes,
	tracking_method,
	state,
	pending_exit_at,
	exit_accuracy,
	checkin_accuracy,
	is_short,
	created_at,
	updated_at`

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) service.SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*models.TrackingSession, error) {
	s := &models.TrackingSession{}
	err := row.Scan(
		&s.ID,
		&s.LocationID,
		&s.ClockIn,
		&s.ClockOut,
		&s.DurationMinutes,
		&s.TrackingMethod,
		&s.State,
		&s.PendingExitAt,
		&s.ExitAccuracy,
		&s.CheckinAccuracy,
		&s.IsShort,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create сохраняет новую сессию
func (r *SessionRepository) Create(ctx context.Context, session *models.TrackingSession) error {
	query := `
		INSERT INTO tracking_sessions
			(location_id, clock_in, clock_out, duration_minutes, tracking_method, state,
			 pending_exit_at, exit_accuracy, checkin_accuracy, is_short)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		session.LocationID,
		session.ClockIn,
		session.ClockOut,
		session.DurationMinutes,
		session.TrackingMethod,
		session.State,
		session.PendingExitAt,
		session.ExitAccuracy,
		session.CheckinAccuracy,
		session.IsShort,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tracking session: %w", err)
	}
	return nil
}

// Update перезаписывает изменяемые поля сессии
func (r *SessionRepository) Update(ctx context.Context, session *models.TrackingSession) error {
	query := `
		UPDATE tracking_sessions SET
			clock_in = $1,
			clock_out = $2,
			duration_minutes = $3,
			state = $4,
			pending_exit_at = $5,
			exit_accuracy = $6,
			is_short = $7,
			updated_at = NOW()
		WHERE id = $8;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		session.ClockIn,
		session.ClockOut,
		session.DurationMinutes,
		session.State,
		session.PendingExitAt,
		session.ExitAccuracy,
		session.IsShort,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tracking session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("tracking session with id %s not found for update", session.ID)
	}
	return nil
}

// GetByID возвращает сессию по её UUID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrackingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM tracking_sessions WHERE id = $1;`
	s, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tracking session %s: %w", id, service.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to get tracking session by id: %w", err)
	}
	return s, nil
}

// Delete безвозвратно удаляет сессию
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tracking_sessions WHERE id = $1;`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tracking session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("tracking session %s: %w", id, service.ErrSessionNotFound)
	}
	return nil
}

// GetOpenByLocation возвращает открытую сессию локации
// (active или pending_exit). Если такой нет - (nil, nil).
// Уникальный частичный индекс в бд гарантирует не более одной.
func (r *SessionRepository) GetOpenByLocation(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM tracking_sessions
		WHERE location_id = $1 AND state IN ('active', 'pending_exit')
		LIMIT 1;
	`
	s, err := scanSession(r.db.QueryRow(ctx, query, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open session for location: %w", err)
	}
	return s, nil
}

// FindStalePending возвращает сессии, чей незавершённый выход старше
// порога. Их должна была закрыть поэтапная проверка, но её пробуждения
// могли никогда не выполниться.
func (r *SessionRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]*models.TrackingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM tracking_sessions
		WHERE state = 'pending_exit' AND pending_exit_at < $1;
	`
	rows, err := r.db.Query(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale pending sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.TrackingSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stale pending row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error stale pending iteration: %w", err)
	}
	return sessions, nil
}

// FindOverlapping возвращает кандидатов пересечения интервала
// [start, end) среди сессий локации. Открытая сессия считается
// продолжающейся до +бесконечности. Окончательное решение о
// пересечении принимает сервис тем же полуоткрытым предикатом.
func (r *SessionRepository) FindOverlapping(ctx context.Context, locationID uuid.UUID, start, end time.Time) ([]*models.TrackingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM tracking_sessions
		WHERE location_id = $1
		  AND clock_in < $3
		  AND (clock_out IS NULL OR clock_out > $2);
	`
	rows, err := r.db.Query(ctx, query, locationID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.TrackingSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overlapping row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error overlapping iteration: %w", err)
	}
	return sessions, nil
}

// ListHistory возвращает завершённые сессии локации, свежие первыми.
// Фильтры по датам опциональны (нулевое время - без фильтра).
func (r *SessionRepository) ListHistory(ctx context.Context, locationID uuid.UUID, from, to time.Time, limit int) ([]*models.TrackingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM tracking_sessions
		WHERE location_id = $1
		  AND state = 'completed'
		  AND ($2::timestamptz IS NULL OR clock_in >= $2)
		  AND ($3::timestamptz IS NULL OR clock_in <= $3)
		ORDER BY clock_in DESC
		LIMIT $4;
	`
	var fromArg, toArg *time.Time
	if !from.IsZero() {
		fromArg = &from
	}
	if !to.IsZero() {
		toArg = &to
	}
	rows, err := r.db.Query(ctx, query, locationID, fromArg, toArg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list session history: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.TrackingSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error history iteration: %w", err)
	}
	return sessions, nil
}

// GetTrackingStats возвращает количество завершённых сессий и суммарные
// минуты за окно времени
func (r *SessionRepository) GetTrackingStats(ctx context.Context, minutes int) (int, int, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0)
		FROM tracking_sessions
		WHERE state = 'completed'
		  AND clock_in >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count, total int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("failed to get tracking stats: %w", err)
	}
	return count, total, nil
}
