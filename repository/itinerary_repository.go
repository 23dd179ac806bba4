package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type ItineraryRepository interface {
	GetByID(ctx context.Context, id string) (*models.ItineraryItem, error)
	GetByGroupID(ctx context.Context, groupID string) ([]models.ItineraryItem, error)
	Create(ctx context.Context, item *models.ItineraryItem) error
	Update(ctx context.Context, item *models.ItineraryItem) error
	Delete(ctx context.Context, id string) error
	MaxPositionForDay(ctx context.Context, groupID string, day string) (int, error)
	WithTx(tx database.Querier) ItineraryRepository
}

type itineraryRepository struct {
	db *database.DB
	tx database.Querier
}

func NewItineraryRepository(db *database.DB) ItineraryRepository {
	return &itineraryRepository{db: db}
}

func (r *itineraryRepository) WithTx(tx database.Querier) ItineraryRepository {
	return &itineraryRepository{db: r.db, tx: tx}
}

func (r *itineraryRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *itineraryRepository) GetByID(ctx context.Context, id string) (*models.ItineraryItem, error) {
	var item models.ItineraryItem
	query := `SELECT id, group_id, day, start_time, title, location, position, created_by, created_at
	          FROM itinerary_items WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&item.ID, &item.GroupID, &item.Day, &item.StartTime, &item.Title,
		&item.Location, &item.Position, &item.CreatedBy, &item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting itinerary item by id: %w", err)
	}
	return &item, nil
}

func (r *itineraryRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.ItineraryItem, error) {
	query := `SELECT id, group_id, day, start_time, title, location, position, created_by, created_at
	          FROM itinerary_items WHERE group_id = $1
	          ORDER BY day, position, start_time NULLS LAST`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting itinerary by group id: %w", err)
	}
	defer rows.Close()

	var items []models.ItineraryItem
	for rows.Next() {
		var item models.ItineraryItem
		if err := rows.Scan(&item.ID, &item.GroupID, &item.Day, &item.StartTime, &item.Title,
			&item.Location, &item.Position, &item.CreatedBy, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning itinerary item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *itineraryRepository) Create(ctx context.Context, item *models.ItineraryItem) error {
	query := `INSERT INTO itinerary_items (id, group_id, day, start_time, title, location, position, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		item.ID, item.GroupID, item.Day, item.StartTime, item.Title,
		item.Location, item.Position, item.CreatedBy,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating itinerary item: %w", err)
	}
	return nil
}

func (r *itineraryRepository) Update(ctx context.Context, item *models.ItineraryItem) error {
	query := `UPDATE itinerary_items SET day = $2, start_time = $3, title = $4, location = $5, position = $6
	          WHERE id = $1`

	tag, err := r.getQuerier().Exec(ctx, query,
		item.ID, item.Day, item.StartTime, item.Title, item.Location, item.Position,
	)
	if err != nil {
		return fmt.Errorf("updating itinerary item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating itinerary item: no rows affected")
	}
	return nil
}

func (r *itineraryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM itinerary_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting itinerary item: %w", err)
	}
	return nil
}

func (r *itineraryRepository) MaxPositionForDay(ctx context.Context, groupID string, day string) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(position), -1) FROM itinerary_items WHERE group_id = $1 AND day = $2`

	if err := r.getQuerier().QueryRow(ctx, query, groupID, day).Scan(&max); err != nil {
		return 0, fmt.Errorf("getting max itinerary position: %w", err)
	}
	return max, nil
}
