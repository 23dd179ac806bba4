package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error

	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	GetMembers(ctx context.Context, groupID string) ([]models.User, error)
	GetMemberIDs(ctx context.Context, groupID string) ([]string, error)

	CreateInvitation(ctx context.Context, inv *models.Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error)
	GetInvitationsByGroupID(ctx context.Context, groupID string) ([]models.Invitation, error)
	UpdateInvitationStatus(ctx context.Context, id string, status models.InvitationStatus) error

	CreateDependent(ctx context.Context, dep *models.Dependent) error
	GetDependentsByGroupID(ctx context.Context, groupID string) ([]models.Dependent, error)
	GetDependentByID(ctx context.Context, id string) (*models.Dependent, error)
	DeleteDependent(ctx context.Context, id string) error

	WithTx(tx database.Querier) GroupRepository
}

type groupRepository struct {
	db *database.DB
	tx database.Querier
}

func NewGroupRepository(db *database.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) WithTx(tx database.Querier) GroupRepository {
	return &groupRepository{db: r.db, tx: tx}
}

func (r *groupRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	query := `SELECT g.id, g.name, g.currency, g.created_by, g.created_at, g.updated_at,
	          (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id)
	          FROM groups g WHERE g.id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&group.ID, &group.Name, &group.Currency, &group.CreatedBy,
		&group.CreatedAt, &group.UpdatedAt, &group.MemberCount,
	)
	if err != nil {
		return nil, fmt.Errorf("getting group by id: %w", err)
	}
	return &group, nil
}

func (r *groupRepository) GetByUserID(ctx context.Context, userID string) ([]models.Group, error) {
	query := `SELECT g.id, g.name, g.currency, g.created_by, g.created_at, g.updated_at,
	          (SELECT COUNT(*) FROM group_members gm2 WHERE gm2.group_id = g.id)
	          FROM groups g
	          JOIN group_members gm ON gm.group_id = g.id
	          WHERE gm.user_id = $1
	          ORDER BY g.created_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("getting groups by user id: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.Currency, &group.CreatedBy,
			&group.CreatedAt, &group.UpdatedAt, &group.MemberCount); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `INSERT INTO groups (id, name, currency, created_by) VALUES ($1, $2, $3, $4)
	          RETURNING created_at, updated_at`

	err := r.getQuerier().QueryRow(ctx, query, group.ID, group.Name, group.Currency, group.CreatedBy).
		Scan(&group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating group: %w", err)
	}
	return nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	query := `UPDATE groups SET name = $2, currency = $3, updated_at = NOW() WHERE id = $1`

	tag, err := r.getQuerier().Exec(ctx, query, group.ID, group.Name, group.Currency)
	if err != nil {
		return fmt.Errorf("updating group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating group: no rows affected")
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	return nil
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`

	if err := r.getQuerier().QueryRow(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking group membership: %w", err)
	}
	return exists, nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	query := `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	if _, err := r.getQuerier().Exec(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("adding group member: %w", err)
	}
	return nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	if _, err := r.getQuerier().Exec(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("removing group member: %w", err)
	}
	return nil
}

func (r *groupRepository) GetMembers(ctx context.Context, groupID string) ([]models.User, error) {
	query := `SELECT u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
	          FROM users u
	          JOIN group_members gm ON gm.user_id = u.id
	          WHERE gm.group_id = $1
	          ORDER BY gm.joined_at`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting group members: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL,
			&user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning group member: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *groupRepository) GetMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	query := `SELECT user_id FROM group_members WHERE group_id = $1`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting group member ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *groupRepository) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	query := `INSERT INTO group_invitations (id, group_id, invited_by, email, token, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		inv.ID, inv.GroupID, inv.InvitedBy, inv.Email, inv.Token, inv.Status,
	).Scan(&inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invitation: %w", err)
	}
	return nil
}

func (r *groupRepository) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var inv models.Invitation
	query := `SELECT id, group_id, invited_by, email, token, status, created_at
	          FROM group_invitations WHERE token = $1`

	err := r.getQuerier().QueryRow(ctx, query, token).Scan(
		&inv.ID, &inv.GroupID, &inv.InvitedBy, &inv.Email, &inv.Token, &inv.Status, &inv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting invitation by token: %w", err)
	}
	return &inv, nil
}

func (r *groupRepository) GetInvitationsByGroupID(ctx context.Context, groupID string) ([]models.Invitation, error) {
	query := `SELECT id, group_id, invited_by, email, token, status, created_at
	          FROM group_invitations WHERE group_id = $1
	          ORDER BY created_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting invitations by group id: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.GroupID, &inv.InvitedBy, &inv.Email,
			&inv.Token, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *groupRepository) UpdateInvitationStatus(ctx context.Context, id string, status models.InvitationStatus) error {
	query := `UPDATE group_invitations SET status = $2 WHERE id = $1`

	tag, err := r.getQuerier().Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("updating invitation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating invitation status: no rows affected")
	}
	return nil
}

func (r *groupRepository) CreateDependent(ctx context.Context, dep *models.Dependent) error {
	query := `INSERT INTO group_dependents (id, group_id, responsible_member_id, name, age_group)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		dep.ID, dep.GroupID, dep.ResponsibleMemberID, dep.Name, dep.AgeGroup,
	).Scan(&dep.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating dependent: %w", err)
	}
	return nil
}

func (r *groupRepository) GetDependentsByGroupID(ctx context.Context, groupID string) ([]models.Dependent, error) {
	query := `SELECT id, group_id, responsible_member_id, name, age_group, created_at
	          FROM group_dependents WHERE group_id = $1
	          ORDER BY created_at`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting dependents by group id: %w", err)
	}
	defer rows.Close()

	var dependents []models.Dependent
	for rows.Next() {
		var dep models.Dependent
		if err := rows.Scan(&dep.ID, &dep.GroupID, &dep.ResponsibleMemberID,
			&dep.Name, &dep.AgeGroup, &dep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning dependent: %w", err)
		}
		dependents = append(dependents, dep)
	}
	return dependents, rows.Err()
}

func (r *groupRepository) GetDependentByID(ctx context.Context, id string) (*models.Dependent, error) {
	var dep models.Dependent
	query := `SELECT id, group_id, responsible_member_id, name, age_group, created_at
	          FROM group_dependents WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&dep.ID, &dep.GroupID, &dep.ResponsibleMemberID, &dep.Name, &dep.AgeGroup, &dep.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting dependent by id: %w", err)
	}
	return &dep, nil
}

func (r *groupRepository) DeleteDependent(ctx context.Context, id string) error {
	if _, err := r.getQuerier().Exec(ctx, `DELETE FROM group_dependents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting dependent: %w", err)
	}
	return nil
}
