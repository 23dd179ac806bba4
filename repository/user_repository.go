package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	WithTx(tx database.Querier) UserRepository
}

type userRepository struct {
	db *database.DB
	tx database.Querier
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx database.Querier) UserRepository {
	return &userRepository{db: r.db, tx: tx}
}

func (r *userRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, name, avatar_url, created_at, updated_at FROM users WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, name, avatar_url, created_at, updated_at FROM users WHERE email = $1`

	err := r.getQuerier().QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `SELECT id, email, name, avatar_url, created_at, updated_at FROM users WHERE id = ANY($1)`
	rows, err := r.getQuerier().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("getting users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

// Upsert keeps the local user row in sync with the identity provider claims.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, name)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (id) DO UPDATE SET
	              email = EXCLUDED.email,
	              name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE users.name END,
	              updated_at = NOW()`

	if _, err := r.getQuerier().Exec(ctx, query, user.ID, user.Email, user.Name); err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}
