package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type PollRepository interface {
	GetByID(ctx context.Context, id string) (*models.Poll, error)
	GetByGroupID(ctx context.Context, groupID string) ([]models.Poll, error)
	Create(ctx context.Context, poll *models.Poll) error
	Delete(ctx context.Context, id string) error

	CreateOption(ctx context.Context, option *models.PollOption) error
	GetOptions(ctx context.Context, pollID string) ([]models.PollOption, error)

	UpsertVote(ctx context.Context, vote *models.PollVote) error
	DeleteVotesByUser(ctx context.Context, pollID, userID string) error
	GetVotes(ctx context.Context, pollID string) ([]models.PollVote, error)

	CreateLotteryResult(ctx context.Context, result *models.LotteryResult) error
	GetLotteryResult(ctx context.Context, pollID string) (*models.LotteryResult, error)

	WithTx(tx database.Querier) PollRepository
}

type pollRepository struct {
	db *database.DB
	tx database.Querier
}

func NewPollRepository(db *database.DB) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) WithTx(tx database.Querier) PollRepository {
	return &pollRepository{db: r.db, tx: tx}
}

func (r *pollRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*models.Poll, error) {
	var poll models.Poll
	query := `SELECT id, group_id, question, poll_type, created_by, created_at FROM polls WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&poll.ID, &poll.GroupID, &poll.Question, &poll.Type, &poll.CreatedBy, &poll.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting poll by id: %w", err)
	}

	options, err := r.GetOptions(ctx, id)
	if err != nil {
		return nil, err
	}
	poll.Options = options
	return &poll, nil
}

func (r *pollRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.Poll, error) {
	query := `SELECT id, group_id, question, poll_type, created_by, created_at
	          FROM polls WHERE group_id = $1
	          ORDER BY created_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting polls by group id: %w", err)
	}
	defer rows.Close()

	var polls []models.Poll
	for rows.Next() {
		var poll models.Poll
		if err := rows.Scan(&poll.ID, &poll.GroupID, &poll.Question, &poll.Type,
			&poll.CreatedBy, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating polls: %w", err)
	}

	for i := range polls {
		options, err := r.GetOptions(ctx, polls[i].ID)
		if err != nil {
			return nil, err
		}
		polls[i].Options = options
	}
	return polls, nil
}

func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) error {
	query := `INSERT INTO polls (id, group_id, question, poll_type, created_by)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		poll.ID, poll.GroupID, poll.Question, poll.Type, poll.CreatedBy,
	).Scan(&poll.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating poll: %w", err)
	}
	return nil
}

func (r *pollRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM polls WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting poll: %w", err)
	}
	return nil
}

func (r *pollRepository) CreateOption(ctx context.Context, option *models.PollOption) error {
	query := `INSERT INTO poll_options (id, poll_id, label, event_date, position)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.getQuerier().Exec(ctx, query,
		option.ID, option.PollID, option.Label, option.EventDate, option.Position,
	)
	if err != nil {
		return fmt.Errorf("creating poll option: %w", err)
	}
	return nil
}

func (r *pollRepository) GetOptions(ctx context.Context, pollID string) ([]models.PollOption, error) {
	query := `SELECT id, poll_id, label, event_date, position
	          FROM poll_options WHERE poll_id = $1
	          ORDER BY position`

	rows, err := r.getQuerier().Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("getting poll options: %w", err)
	}
	defer rows.Close()

	var options []models.PollOption
	for rows.Next() {
		var option models.PollOption
		if err := rows.Scan(&option.ID, &option.PollID, &option.Label,
			&option.EventDate, &option.Position); err != nil {
			return nil, fmt.Errorf("scanning poll option: %w", err)
		}
		options = append(options, option)
	}
	return options, rows.Err()
}

// UpsertVote replaces the voter's previous vote on the same option, so
// re-voting changes the ballot instead of duplicating it.
func (r *pollRepository) UpsertVote(ctx context.Context, vote *models.PollVote) error {
	query := `INSERT INTO poll_votes (id, poll_id, option_id, user_id, rank, availability)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (option_id, user_id) DO UPDATE SET
	              rank = EXCLUDED.rank,
	              availability = EXCLUDED.availability,
	              created_at = NOW()
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		vote.ID, vote.PollID, vote.OptionID, vote.UserID, vote.Rank, vote.Availability,
	).Scan(&vote.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting poll vote: %w", err)
	}
	return nil
}

func (r *pollRepository) DeleteVotesByUser(ctx context.Context, pollID, userID string) error {
	query := `DELETE FROM poll_votes WHERE poll_id = $1 AND user_id = $2`

	if _, err := r.getQuerier().Exec(ctx, query, pollID, userID); err != nil {
		return fmt.Errorf("deleting poll votes: %w", err)
	}
	return nil
}

func (r *pollRepository) GetVotes(ctx context.Context, pollID string) ([]models.PollVote, error) {
	query := `SELECT id, poll_id, option_id, user_id, rank, availability, created_at
	          FROM poll_votes WHERE poll_id = $1
	          ORDER BY created_at`

	rows, err := r.getQuerier().Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("getting poll votes: %w", err)
	}
	defer rows.Close()

	var votes []models.PollVote
	for rows.Next() {
		var vote models.PollVote
		if err := rows.Scan(&vote.ID, &vote.PollID, &vote.OptionID, &vote.UserID,
			&vote.Rank, &vote.Availability, &vote.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning poll vote: %w", err)
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}

// CreateLotteryResult relies on the unique poll_id constraint to guarantee a
// single draw per lottery even under concurrent requests.
func (r *pollRepository) CreateLotteryResult(ctx context.Context, result *models.LotteryResult) error {
	query := `INSERT INTO lottery_results (id, poll_id, option_id, drawn_by)
	          VALUES ($1, $2, $3, $4)
	          RETURNING drawn_at`

	err := r.getQuerier().QueryRow(ctx, query,
		result.ID, result.PollID, result.OptionID, result.DrawnBy,
	).Scan(&result.DrawnAt)
	if err != nil {
		return fmt.Errorf("creating lottery result: %w", err)
	}
	return nil
}

func (r *pollRepository) GetLotteryResult(ctx context.Context, pollID string) (*models.LotteryResult, error) {
	var result models.LotteryResult
	query := `SELECT id, poll_id, option_id, drawn_by, drawn_at FROM lottery_results WHERE poll_id = $1`

	err := r.getQuerier().QueryRow(ctx, query, pollID).Scan(
		&result.ID, &result.PollID, &result.OptionID, &result.DrawnBy, &result.DrawnAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting lottery result: %w", err)
	}
	return &result, nil
}
