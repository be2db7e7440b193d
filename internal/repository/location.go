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

type LocationRepository struct {
	db *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) service.LocationRepository {
	return &LocationRepository{db: db}
}

// Create регистрирует новую рабочую локацию (геозабор)
func (r *LocationRepository) Create(ctx context.Context, loc *models.WorkLocation) error {
	query := `
		INSERT INTO work_locations (name, center, radius_meters)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4) RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		loc.Name,
		loc.Longitude,
		loc.Latitude,
		loc.RadiusMeters,
	).Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create work location: %w", err)
	}
	return nil
}

// GetByID возвращает локацию по её UUID
func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkLocation, error) {
	loc := &models.WorkLocation{}
	query := `
		SELECT
			id,
			name,
			ST_Y(center::geometry) as latitude,
			ST_X(center::geometry) as longitude,
			radius_meters,
			created_at,
			updated_at
		FROM work_locations
		WHERE id = $1;
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&loc.ID,
		&loc.Name,
		&loc.Latitude,
		&loc.Longitude,
		&loc.RadiusMeters,
		&loc.CreatedAt,
		&loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("work location %s: %w", id, service.ErrLocationNotFound)
		}
		return nil, fmt.Errorf("failed to get work location by id: %w", err)
	}
	return loc, nil
}

// List возвращает все зарегистрированные локации. Используется при
// холодном старте для перерегистрации регионов в мониторе.
func (r *LocationRepository) List(ctx context.Context) ([]*models.WorkLocation, error) {
	query := `
		SELECT
			id,
			name,
			ST_Y(center::geometry) as latitude,
			ST_X(center::geometry) as longitude,
			radius_meters,
			created_at,
			updated_at
		FROM work_locations
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list work locations: %w", err)
	}
	defer rows.Close()

	locations := make([]*models.WorkLocation, 0)
	for rows.Next() {
		loc := &models.WorkLocation{}
		err := rows.Scan(
			&loc.ID,
			&loc.Name,
			&loc.Latitude,
			&loc.Longitude,
			&loc.RadiusMeters,
			&loc.CreatedAt,
			&loc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work location row: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return locations, nil
}

// Delete снимает локацию с мониторинга
func (r *LocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM work_locations WHERE id = $1;`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete work location: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("work location %s: %w", id, service.ErrLocationNotFound)
	}
	return nil
}
