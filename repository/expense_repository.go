package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

// UnsettledSplitRow pairs an unsettled split with the payer of its expense.
// The balance computation in the service layer works entirely off these rows.
type UnsettledSplitRow struct {
	PayerID string
	UserID  *string
	GuestID *string
	Amount  float64
}

type ExpenseRepository interface {
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	GetByGroupID(ctx context.Context, groupID string) ([]models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id string) error

	GetSplits(ctx context.Context, expenseID string) ([]models.ExpenseSplit, error)
	GetSplitsByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseSplit, error)
	GetSplitByID(ctx context.Context, id string) (*models.ExpenseSplit, error)
	CreateSplit(ctx context.Context, split *models.ExpenseSplit) error
	DeleteSplits(ctx context.Context, expenseID string) error
	SetSplitSettled(ctx context.Context, splitID string, settled bool, settledBy string) error
	SettlePairInGroup(ctx context.Context, groupID, userA, userB, settledBy string) (int64, error)

	GetUnsettledSplitsByGroupID(ctx context.Context, groupID string) ([]UnsettledSplitRow, error)

	CreateGuest(ctx context.Context, guest *models.ExpenseGuest) error
	GetGuestsByGroupID(ctx context.Context, groupID string) ([]models.ExpenseGuest, error)
	GetGuestByID(ctx context.Context, id string) (*models.ExpenseGuest, error)
	CountSplitsByGuestID(ctx context.Context, guestID string) (int, error)
	DeleteGuest(ctx context.Context, id string) error

	WithTx(tx database.Querier) ExpenseRepository
}

type expenseRepository struct {
	db *database.DB
	tx database.Querier
}

func NewExpenseRepository(db *database.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) WithTx(tx database.Querier) ExpenseRepository {
	return &expenseRepository{db: r.db, tx: tx}
}

func (r *expenseRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	var expense models.Expense
	query := `SELECT id, group_id, description, amount, currency, paid_by, split_type,
	          category, expense_date, receipt_image_url, created_at, updated_at
	          FROM expenses WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.Currency,
		&expense.PaidBy, &expense.SplitType, &expense.Category, &expense.ExpenseDate,
		&expense.ReceiptImageURL, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting expense by id: %w", err)
	}

	splits, err := r.GetSplits(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Splits = splits
	return &expense, nil
}

func (r *expenseRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.Expense, error) {
	query := `SELECT id, group_id, description, amount, currency, paid_by, split_type,
	          category, expense_date, receipt_image_url, created_at, updated_at
	          FROM expenses WHERE group_id = $1
	          ORDER BY expense_date DESC, created_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting expenses by group id: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	expenseIDs := make([]string, 0)
	for rows.Next() {
		var expense models.Expense
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount,
			&expense.Currency, &expense.PaidBy, &expense.SplitType, &expense.Category,
			&expense.ExpenseDate, &expense.ReceiptImageURL, &expense.CreatedAt, &expense.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		expenses = append(expenses, expense)
		expenseIDs = append(expenseIDs, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expenses: %w", err)
	}

	splitsByExpense, err := r.GetSplitsByExpenseIDs(ctx, expenseIDs)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].Splits = splitsByExpense[expenses[i].ID]
	}
	return expenses, nil
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	query := `INSERT INTO expenses (id, group_id, description, amount, currency, paid_by,
	          split_type, category, expense_date, receipt_image_url)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING created_at, updated_at`

	err := r.getQuerier().QueryRow(ctx, query,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Currency,
		expense.PaidBy, expense.SplitType, expense.Category, expense.ExpenseDate, expense.ReceiptImageURL,
	).Scan(&expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}
	return nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	query := `UPDATE expenses SET description = $2, amount = $3, currency = $4, paid_by = $5,
	          split_type = $6, category = $7, expense_date = $8, receipt_image_url = $9,
	          updated_at = NOW()
	          WHERE id = $1`

	tag, err := r.getQuerier().Exec(ctx, query,
		expense.ID, expense.Description, expense.Amount, expense.Currency, expense.PaidBy,
		expense.SplitType, expense.Category, expense.ExpenseDate, expense.ReceiptImageURL,
	)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating expense: no rows affected")
	}
	return nil
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	return nil
}

func (r *expenseRepository) GetSplits(ctx context.Context, expenseID string) ([]models.ExpenseSplit, error) {
	query := `SELECT id, expense_id, user_id, guest_id, amount, percentage,
	          is_settled, settled_at, settled_by, created_at
	          FROM expense_splits WHERE expense_id = $1
	          ORDER BY created_at`

	rows, err := r.getQuerier().Query(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("getting expense splits: %w", err)
	}
	defer rows.Close()

	var splits []models.ExpenseSplit
	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &split.GuestID,
			&split.Amount, &split.Percentage, &split.IsSettled, &split.SettledAt,
			&split.SettledBy, &split.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense split: %w", err)
		}
		splits = append(splits, split)
	}
	return splits, rows.Err()
}

func (r *expenseRepository) GetSplitsByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseSplit, error) {
	result := make(map[string][]models.ExpenseSplit, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return result, nil
	}

	query := `SELECT id, expense_id, user_id, guest_id, amount, percentage,
	          is_settled, settled_at, settled_by, created_at
	          FROM expense_splits WHERE expense_id = ANY($1)
	          ORDER BY created_at`

	rows, err := r.getQuerier().Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("getting splits by expense ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &split.GuestID,
			&split.Amount, &split.Percentage, &split.IsSettled, &split.SettledAt,
			&split.SettledBy, &split.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense split: %w", err)
		}
		result[split.ExpenseID] = append(result[split.ExpenseID], split)
	}
	return result, rows.Err()
}

func (r *expenseRepository) GetSplitByID(ctx context.Context, id string) (*models.ExpenseSplit, error) {
	var split models.ExpenseSplit
	query := `SELECT id, expense_id, user_id, guest_id, amount, percentage,
	          is_settled, settled_at, settled_by, created_at
	          FROM expense_splits WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&split.ID, &split.ExpenseID, &split.UserID, &split.GuestID, &split.Amount,
		&split.Percentage, &split.IsSettled, &split.SettledAt, &split.SettledBy, &split.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting split by id: %w", err)
	}
	return &split, nil
}

func (r *expenseRepository) CreateSplit(ctx context.Context, split *models.ExpenseSplit) error {
	query := `INSERT INTO expense_splits (id, expense_id, user_id, guest_id, amount, percentage,
	          is_settled, settled_at, settled_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		split.ID, split.ExpenseID, split.UserID, split.GuestID, split.Amount, split.Percentage,
		split.IsSettled, split.SettledAt, split.SettledBy,
	).Scan(&split.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense split: %w", err)
	}
	return nil
}

func (r *expenseRepository) DeleteSplits(ctx context.Context, expenseID string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, expenseID); err != nil {
		return fmt.Errorf("deleting expense splits: %w", err)
	}
	return nil
}

func (r *expenseRepository) SetSplitSettled(ctx context.Context, splitID string, settled bool, settledBy string) error {
	var query string
	var err error
	if settled {
		query = `UPDATE expense_splits SET is_settled = TRUE, settled_at = NOW(), settled_by = $2 WHERE id = $1`
		_, err = r.getQuerier().Exec(ctx, query, splitID, settledBy)
	} else {
		query = `UPDATE expense_splits SET is_settled = FALSE, settled_at = NULL, settled_by = NULL WHERE id = $1`
		_, err = r.getQuerier().Exec(ctx, query, splitID)
	}
	if err != nil {
		return fmt.Errorf("updating split settlement: %w", err)
	}
	return nil
}

// SettlePairInGroup marks every unsettled split between two members as settled,
// in both directions, in one statement. Returns the number of splits settled.
func (r *expenseRepository) SettlePairInGroup(ctx context.Context, groupID, userA, userB, settledBy string) (int64, error) {
	query := `UPDATE expense_splits s
	          SET is_settled = TRUE, settled_at = NOW(), settled_by = $4
	          FROM expenses e
	          WHERE e.id = s.expense_id
	            AND e.group_id = $1
	            AND s.is_settled = FALSE
	            AND ((e.paid_by = $2 AND s.user_id = $3) OR (e.paid_by = $3 AND s.user_id = $2))`

	tag, err := r.getQuerier().Exec(ctx, query, groupID, userA, userB, settledBy)
	if err != nil {
		return 0, fmt.Errorf("settling pair in group: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *expenseRepository) GetUnsettledSplitsByGroupID(ctx context.Context, groupID string) ([]UnsettledSplitRow, error) {
	query := `SELECT e.paid_by, s.user_id, s.guest_id, s.amount
	          FROM expense_splits s
	          JOIN expenses e ON e.id = s.expense_id
	          WHERE e.group_id = $1 AND s.is_settled = FALSE`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting unsettled splits: %w", err)
	}
	defer rows.Close()

	var result []UnsettledSplitRow
	for rows.Next() {
		var row UnsettledSplitRow
		if err := rows.Scan(&row.PayerID, &row.UserID, &row.GuestID, &row.Amount); err != nil {
			return nil, fmt.Errorf("scanning unsettled split: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *expenseRepository) CreateGuest(ctx context.Context, guest *models.ExpenseGuest) error {
	query := `INSERT INTO expense_guests (id, group_id, name, created_by) VALUES ($1, $2, $3, $4)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query, guest.ID, guest.GroupID, guest.Name, guest.CreatedBy).
		Scan(&guest.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense guest: %w", err)
	}
	return nil
}

func (r *expenseRepository) GetGuestsByGroupID(ctx context.Context, groupID string) ([]models.ExpenseGuest, error) {
	query := `SELECT id, group_id, name, created_by, created_at
	          FROM expense_guests WHERE group_id = $1
	          ORDER BY created_at`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting guests by group id: %w", err)
	}
	defer rows.Close()

	var guests []models.ExpenseGuest
	for rows.Next() {
		var guest models.ExpenseGuest
		if err := rows.Scan(&guest.ID, &guest.GroupID, &guest.Name, &guest.CreatedBy, &guest.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense guest: %w", err)
		}
		guests = append(guests, guest)
	}
	return guests, rows.Err()
}

func (r *expenseRepository) GetGuestByID(ctx context.Context, id string) (*models.ExpenseGuest, error) {
	var guest models.ExpenseGuest
	query := `SELECT id, group_id, name, created_by, created_at FROM expense_guests WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&guest.ID, &guest.GroupID, &guest.Name, &guest.CreatedBy, &guest.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting guest by id: %w", err)
	}
	return &guest, nil
}

func (r *expenseRepository) CountSplitsByGuestID(ctx context.Context, guestID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM expense_splits WHERE guest_id = $1`

	if err := r.getQuerier().QueryRow(ctx, query, guestID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting splits by guest id: %w", err)
	}
	return count, nil
}

func (r *expenseRepository) DeleteGuest(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM expense_guests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting expense guest: %w", err)
	}
	return nil
}
