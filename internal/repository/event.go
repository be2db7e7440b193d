package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service"
)

type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) service.EventRepository {
	return &EventRepository{db: db}
}

// Create добавляет запись о сыром сигнале в журнал.
// Журнал append-only: событий не обновляет и не удаляет никто.
func (r *EventRepository) Create(ctx context.Context, event *models.GeofenceEvent) error {
	query := `
		INSERT INTO geofence_events
			(location_id, event_type, event_timestamp, position, accuracy, accuracy_source, ignored, ignore_reason)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6, $7, $8, $9)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		event.LocationID,
		event.EventType,
		event.Timestamp,
		event.Longitude,
		event.Latitude,
		event.Accuracy,
		event.AccuracySource,
		event.Ignored,
		event.IgnoreReason,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create geofence event: %w", err)
	}
	return nil
}

// GetLatestByLocation возвращает самое свежее залогированное OS-событие
// для локации (включая проигнорированные - дебаунс сравнивает со всеми).
// Показания проверок не учитываются: дебаунс гасит осцилляцию именно
// OS-колбэков. Если событий ещё не было, возвращает (nil, nil).
func (r *EventRepository) GetLatestByLocation(ctx context.Context, locationID uuid.UUID) (*models.GeofenceEvent, error) {
	event := &models.GeofenceEvent{}
	query := `
		SELECT
			id,
			location_id,
			event_type,
			event_timestamp,
			ST_Y(position::geometry) as latitude,
			ST_X(position::geometry) as longitude,
			accuracy,
			accuracy_source,
			ignored,
			ignore_reason,
			created_at
		FROM geofence_events
		WHERE location_id = $1 AND accuracy_source = 'os_callback'
		ORDER BY event_timestamp DESC
		LIMIT 1;
	`
	err := r.db.QueryRow(ctx, query, locationID).Scan(
		&event.ID,
		&event.LocationID,
		&event.EventType,
		&event.Timestamp,
		&event.Latitude,
		&event.Longitude,
		&event.Accuracy,
		&event.AccuracySource,
		&event.Ignored,
		&event.IgnoreReason,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest geofence event: %w", err)
	}
	return event, nil
}

// CountIgnoredByReason возвращает распределение причин игнорирования за
// окно времени. Используется для подстройки порогов фильтрации.
func (r *EventRepository) CountIgnoredByReason(ctx context.Context, minutes int) (map[string]int, error) {
	query := `
		SELECT ignore_reason, COUNT(*)
		FROM geofence_events
		WHERE ignored = TRUE
		  AND created_at >= NOW() - ($1 * INTERVAL '1 minute')
		GROUP BY ignore_reason;
	`
	rows, err := r.db.Query(ctx, query, minutes)
	if err != nil {
		return nil, fmt.Errorf("failed to count ignored events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ignored count row: %w", err)
		}
		counts[reason] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error ignored count iteration: %w", err)
	}
	return counts, nil
}
