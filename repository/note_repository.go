package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type NoteRepository interface {
	GetNoteByID(ctx context.Context, id string) (*models.SharedNote, error)
	GetNotesByGroupID(ctx context.Context, groupID string) ([]models.SharedNote, error)
	CreateNote(ctx context.Context, note *models.SharedNote) error
	UpdateNote(ctx context.Context, note *models.SharedNote) error
	DeleteNote(ctx context.Context, id string) error

	GetBringListByID(ctx context.Context, id string) (*models.BringList, error)
	GetBringListsByGroupID(ctx context.Context, groupID string) ([]models.BringList, error)
	CreateBringList(ctx context.Context, list *models.BringList) error
	DeleteBringList(ctx context.Context, id string) error

	GetBringItemByID(ctx context.Context, id string) (*models.BringItem, error)
	CreateBringItem(ctx context.Context, item *models.BringItem) error
	SetBringItemClaim(ctx context.Context, itemID string, claimedBy *string) error
	DeleteBringItem(ctx context.Context, id string) error

	WithTx(tx database.Querier) NoteRepository
}

type noteRepository struct {
	db *database.DB
	tx database.Querier
}

func NewNoteRepository(db *database.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) WithTx(tx database.Querier) NoteRepository {
	return &noteRepository{db: r.db, tx: tx}
}

func (r *noteRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *noteRepository) GetNoteByID(ctx context.Context, id string) (*models.SharedNote, error) {
	var note models.SharedNote
	query := `SELECT id, group_id, title, content, created_by, created_at, updated_at
	          FROM shared_notes WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&note.ID, &note.GroupID, &note.Title, &note.Content,
		&note.CreatedBy, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting note by id: %w", err)
	}
	return &note, nil
}

func (r *noteRepository) GetNotesByGroupID(ctx context.Context, groupID string) ([]models.SharedNote, error) {
	query := `SELECT id, group_id, title, content, created_by, created_at, updated_at
	          FROM shared_notes WHERE group_id = $1
	          ORDER BY updated_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting notes by group id: %w", err)
	}
	defer rows.Close()

	var notes []models.SharedNote
	for rows.Next() {
		var note models.SharedNote
		if err := rows.Scan(&note.ID, &note.GroupID, &note.Title, &note.Content,
			&note.CreatedBy, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepository) CreateNote(ctx context.Context, note *models.SharedNote) error {
	query := `INSERT INTO shared_notes (id, group_id, title, content, created_by)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`

	err := r.getQuerier().QueryRow(ctx, query,
		note.ID, note.GroupID, note.Title, note.Content, note.CreatedBy,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating note: %w", err)
	}
	return nil
}

func (r *noteRepository) UpdateNote(ctx context.Context, note *models.SharedNote) error {
	query := `UPDATE shared_notes SET title = $2, content = $3, updated_at = NOW() WHERE id = $1`

	tag, err := r.getQuerier().Exec(ctx, query, note.ID, note.Title, note.Content)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating note: no rows affected")
	}
	return nil
}

func (r *noteRepository) DeleteNote(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM shared_notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}

func (r *noteRepository) GetBringListByID(ctx context.Context, id string) (*models.BringList, error) {
	var list models.BringList
	query := `SELECT id, group_id, name, created_by, created_at FROM bring_lists WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&list.ID, &list.GroupID, &list.Name, &list.CreatedBy, &list.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting bring list by id: %w", err)
	}

	items, err := r.getBringItems(ctx, id)
	if err != nil {
		return nil, err
	}
	list.Items = items
	return &list, nil
}

func (r *noteRepository) GetBringListsByGroupID(ctx context.Context, groupID string) ([]models.BringList, error) {
	query := `SELECT id, group_id, name, created_by, created_at
	          FROM bring_lists WHERE group_id = $1
	          ORDER BY created_at`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting bring lists by group id: %w", err)
	}
	defer rows.Close()

	var lists []models.BringList
	for rows.Next() {
		var list models.BringList
		if err := rows.Scan(&list.ID, &list.GroupID, &list.Name, &list.CreatedBy, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bring list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bring lists: %w", err)
	}

	for i := range lists {
		items, err := r.getBringItems(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}
	return lists, nil
}

func (r *noteRepository) getBringItems(ctx context.Context, listID string) ([]models.BringItem, error) {
	query := `SELECT id, list_id, name, quantity, claimed_by, created_at
	          FROM bring_items WHERE list_id = $1
	          ORDER BY created_at`

	rows, err := r.getQuerier().Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("getting bring items: %w", err)
	}
	defer rows.Close()

	var items []models.BringItem
	for rows.Next() {
		var item models.BringItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.Name, &item.Quantity,
			&item.ClaimedBy, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bring item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *noteRepository) CreateBringList(ctx context.Context, list *models.BringList) error {
	query := `INSERT INTO bring_lists (id, group_id, name, created_by) VALUES ($1, $2, $3, $4)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query, list.ID, list.GroupID, list.Name, list.CreatedBy).
		Scan(&list.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating bring list: %w", err)
	}
	return nil
}

func (r *noteRepository) DeleteBringList(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM bring_lists WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting bring list: %w", err)
	}
	return nil
}

func (r *noteRepository) GetBringItemByID(ctx context.Context, id string) (*models.BringItem, error) {
	var item models.BringItem
	query := `SELECT id, list_id, name, quantity, claimed_by, created_at FROM bring_items WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity, &item.ClaimedBy, &item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting bring item by id: %w", err)
	}
	return &item, nil
}

func (r *noteRepository) CreateBringItem(ctx context.Context, item *models.BringItem) error {
	query := `INSERT INTO bring_items (id, list_id, name, quantity) VALUES ($1, $2, $3, $4)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query, item.ID, item.ListID, item.Name, item.Quantity).
		Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating bring item: %w", err)
	}
	return nil
}

func (r *noteRepository) SetBringItemClaim(ctx context.Context, itemID string, claimedBy *string) error {
	query := `UPDATE bring_items SET claimed_by = $2 WHERE id = $1`

	tag, err := r.getQuerier().Exec(ctx, query, itemID, claimedBy)
	if err != nil {
		return fmt.Errorf("updating bring item claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating bring item claim: no rows affected")
	}
	return nil
}

func (r *noteRepository) DeleteBringItem(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM bring_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting bring item: %w", err)
	}
	return nil
}
