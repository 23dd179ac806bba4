package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type PoolRepository interface {
	GetByID(ctx context.Context, id string) (*models.Pool, error)
	GetByGroupID(ctx context.Context, groupID string) ([]models.Pool, error)
	Create(ctx context.Context, pool *models.Pool) error
	Delete(ctx context.Context, id string) error

	CreateContribution(ctx context.Context, c *models.PoolContribution) error
	GetContributionByID(ctx context.Context, id string) (*models.PoolContribution, error)
	GetContributions(ctx context.Context, poolID string) ([]models.PoolContribution, error)
	ReviewContribution(ctx context.Context, id string, status models.ContributionStatus, reviewedBy string) error

	WithTx(tx database.Querier) PoolRepository
}

type poolRepository struct {
	db *database.DB
	tx database.Querier
}

func NewPoolRepository(db *database.DB) PoolRepository {
	return &poolRepository{db: db}
}

func (r *poolRepository) WithTx(tx database.Querier) PoolRepository {
	return &poolRepository{db: r.db, tx: tx}
}

func (r *poolRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *poolRepository) GetByID(ctx context.Context, id string) (*models.Pool, error) {
	var pool models.Pool
	query := `SELECT p.id, p.group_id, p.name, p.target_amount, p.member_target, p.created_by, p.created_at,
	          COALESCE((SELECT SUM(pc.amount) FROM pool_contributions pc
	                    WHERE pc.pool_id = p.id AND pc.status = 'CONFIRMED'), 0)
	          FROM pools p WHERE p.id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&pool.ID, &pool.GroupID, &pool.Name, &pool.TargetAmount, &pool.MemberTarget,
		&pool.CreatedBy, &pool.CreatedAt, &pool.ConfirmedTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("getting pool by id: %w", err)
	}

	contributions, err := r.GetContributions(ctx, id)
	if err != nil {
		return nil, err
	}
	pool.Contributions = contributions
	return &pool, nil
}

func (r *poolRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.Pool, error) {
	query := `SELECT p.id, p.group_id, p.name, p.target_amount, p.member_target, p.created_by, p.created_at,
	          COALESCE((SELECT SUM(pc.amount) FROM pool_contributions pc
	                    WHERE pc.pool_id = p.id AND pc.status = 'CONFIRMED'), 0)
	          FROM pools p WHERE p.group_id = $1
	          ORDER BY p.created_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting pools by group id: %w", err)
	}
	defer rows.Close()

	var pools []models.Pool
	for rows.Next() {
		var pool models.Pool
		if err := rows.Scan(&pool.ID, &pool.GroupID, &pool.Name, &pool.TargetAmount,
			&pool.MemberTarget, &pool.CreatedBy, &pool.CreatedAt, &pool.ConfirmedTotal); err != nil {
			return nil, fmt.Errorf("scanning pool: %w", err)
		}
		pools = append(pools, pool)
	}
	return pools, rows.Err()
}

func (r *poolRepository) Create(ctx context.Context, pool *models.Pool) error {
	query := `INSERT INTO pools (id, group_id, name, target_amount, member_target, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		pool.ID, pool.GroupID, pool.Name, pool.TargetAmount, pool.MemberTarget, pool.CreatedBy,
	).Scan(&pool.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}
	return nil
}

func (r *poolRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM pools WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting pool: %w", err)
	}
	return nil
}

func (r *poolRepository) CreateContribution(ctx context.Context, c *models.PoolContribution) error {
	query := `INSERT INTO pool_contributions (id, pool_id, user_id, amount, status)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query, c.ID, c.PoolID, c.UserID, c.Amount, c.Status).
		Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating pool contribution: %w", err)
	}
	return nil
}

func (r *poolRepository) GetContributionByID(ctx context.Context, id string) (*models.PoolContribution, error) {
	var c models.PoolContribution
	query := `SELECT id, pool_id, user_id, amount, status, reviewed_by, reviewed_at, created_at
	          FROM pool_contributions WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PoolID, &c.UserID, &c.Amount, &c.Status, &c.ReviewedBy, &c.ReviewedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting contribution by id: %w", err)
	}
	return &c, nil
}

func (r *poolRepository) GetContributions(ctx context.Context, poolID string) ([]models.PoolContribution, error) {
	query := `SELECT id, pool_id, user_id, amount, status, reviewed_by, reviewed_at, created_at
	          FROM pool_contributions WHERE pool_id = $1
	          ORDER BY created_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("getting pool contributions: %w", err)
	}
	defer rows.Close()

	var contributions []models.PoolContribution
	for rows.Next() {
		var c models.PoolContribution
		if err := rows.Scan(&c.ID, &c.PoolID, &c.UserID, &c.Amount, &c.Status,
			&c.ReviewedBy, &c.ReviewedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pool contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

// ReviewContribution only transitions contributions still in PENDING; a second
// review of the same contribution affects zero rows.
func (r *poolRepository) ReviewContribution(ctx context.Context, id string, status models.ContributionStatus, reviewedBy string) error {
	query := `UPDATE pool_contributions
	          SET status = $2, reviewed_by = $3, reviewed_at = NOW()
	          WHERE id = $1 AND status = 'PENDING'`

	tag, err := r.getQuerier().Exec(ctx, query, id, status, reviewedBy)
	if err != nil {
		return fmt.Errorf("reviewing pool contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reviewing pool contribution: no rows affected")
	}
	return nil
}
