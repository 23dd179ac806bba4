package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*models.TripTask, error)
	GetByGroupID(ctx context.Context, groupID string) ([]models.TripTask, error)
	Create(ctx context.Context, task *models.TripTask) error
	Update(ctx context.Context, task *models.TripTask) error
	Delete(ctx context.Context, id string) error
	MaxPosition(ctx context.Context, groupID string) (int, error)
	ShiftPositions(ctx context.Context, groupID string, from, to int, delta int) error
	SetPosition(ctx context.Context, id string, position int) error
	WithTx(tx database.Querier) TaskRepository
}

type taskRepository struct {
	db *database.DB
	tx database.Querier
}

func NewTaskRepository(db *database.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx database.Querier) TaskRepository {
	return &taskRepository{db: r.db, tx: tx}
}

func (r *taskRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.TripTask, error) {
	var task models.TripTask
	query := `SELECT id, group_id, title, assigned_to, is_done, position, created_by, created_at, updated_at
	          FROM trip_tasks WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&task.ID, &task.GroupID, &task.Title, &task.AssignedTo, &task.IsDone,
		&task.Position, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting task by id: %w", err)
	}
	return &task, nil
}

func (r *taskRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.TripTask, error) {
	query := `SELECT id, group_id, title, assigned_to, is_done, position, created_by, created_at, updated_at
	          FROM trip_tasks WHERE group_id = $1
	          ORDER BY position`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting tasks by group id: %w", err)
	}
	defer rows.Close()

	var tasks []models.TripTask
	for rows.Next() {
		var task models.TripTask
		if err := rows.Scan(&task.ID, &task.GroupID, &task.Title, &task.AssignedTo, &task.IsDone,
			&task.Position, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *models.TripTask) error {
	query := `INSERT INTO trip_tasks (id, group_id, title, assigned_to, is_done, position, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	err := r.getQuerier().QueryRow(ctx, query,
		task.ID, task.GroupID, task.Title, task.AssignedTo, task.IsDone, task.Position, task.CreatedBy,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.TripTask) error {
	query := `UPDATE trip_tasks SET title = $2, assigned_to = $3, is_done = $4, updated_at = NOW()
	          WHERE id = $1`

	tag, err := r.getQuerier().Exec(ctx, query, task.ID, task.Title, task.AssignedTo, task.IsDone)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating task: no rows affected")
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM trip_tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func (r *taskRepository) MaxPosition(ctx context.Context, groupID string) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(position), -1) FROM trip_tasks WHERE group_id = $1`

	if err := r.getQuerier().QueryRow(ctx, query, groupID).Scan(&max); err != nil {
		return 0, fmt.Errorf("getting max task position: %w", err)
	}
	return max, nil
}

// ShiftPositions moves every task whose position lies in [from, to] by delta.
// Used inside a transaction when reordering.
func (r *taskRepository) ShiftPositions(ctx context.Context, groupID string, from, to int, delta int) error {
	query := `UPDATE trip_tasks SET position = position + $4, updated_at = NOW()
	          WHERE group_id = $1 AND position >= $2 AND position <= $3`

	if _, err := r.getQuerier().Exec(ctx, query, groupID, from, to, delta); err != nil {
		return fmt.Errorf("shifting task positions: %w", err)
	}
	return nil
}

func (r *taskRepository) SetPosition(ctx context.Context, id string, position int) error {
	query := `UPDATE trip_tasks SET position = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.getQuerier().Exec(ctx, query, id, position); err != nil {
		return fmt.Errorf("setting task position: %w", err)
	}
	return nil
}
