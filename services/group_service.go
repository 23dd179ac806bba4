package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripmate-backend/database"
	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

type CreateGroupRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type AddDependentRequest struct {
	Name                string          `json:"name"`
	AgeGroup            models.AgeGroup `json:"age_group"`
	ResponsibleMemberID string          `json:"responsible_member_id,omitempty"`
}

type GroupService interface {
	SyncUser(ctx context.Context, userID, email, name string) error

	CreateGroup(ctx context.Context, userID string, req CreateGroupRequest) (*models.Group, error)
	GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error)
	ListMyGroups(ctx context.Context, userID string) ([]models.Group, error)
	UpdateGroup(ctx context.Context, userID, groupID string, req CreateGroupRequest) (*models.Group, error)
	DeleteGroup(ctx context.Context, userID, groupID string) error
	LeaveGroup(ctx context.Context, userID, groupID string) error
	RemoveMember(ctx context.Context, userID, groupID, memberID string) error

	InviteMember(ctx context.Context, userID, userName, groupID, email string) (*models.Invitation, error)
	ListInvitations(ctx context.Context, userID, groupID string) ([]models.Invitation, error)
	RevokeInvitation(ctx context.Context, userID, token string) error
	AcceptInvitation(ctx context.Context, userID, userEmail, token string) (*models.Group, error)

	AddDependent(ctx context.Context, userID, groupID string, req AddDependentRequest) (*models.Dependent, error)
	ListDependents(ctx context.Context, userID, groupID string) ([]models.Dependent, error)
	DeleteDependent(ctx context.Context, userID, dependentID string) error
}

type groupService struct {
	db         *database.DB
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	notifier   Notifier
	mailer     Mailer
	appBaseURL string
}

func NewGroupService(
	db *database.DB,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	mailer Mailer,
	appBaseURL string,
) GroupService {
	return &groupService{
		db:         db,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		mailer:     mailer,
		appBaseURL: strings.TrimSuffix(appBaseURL, "/"),
	}
}

// SyncUser mirrors the identity provider's claims into the local users table.
// Called on every authenticated request that needs a user row to exist.
func (s *groupService) SyncUser(ctx context.Context, userID, email, name string) error {
	user := &models.User{ID: userID, Email: email, Name: name}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return apperrors.DatabaseError("syncing user", err)
	}
	return nil
}

func (s *groupService) CreateGroup(ctx context.Context, userID string, req CreateGroupRequest) (*models.Group, error) {
	if req.Name == "" {
		return nil, apperrors.MissingRequiredField("name")
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	group := &models.Group{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Currency:  currency,
		CreatedBy: userID,
	}

	err := s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.groupRepo.WithTx(tx)
		if err := txRepo.Create(ctx, group); err != nil {
			return apperrors.DatabaseError("creating group", err)
		}
		if err := txRepo.AddMember(ctx, group.ID, userID); err != nil {
			return apperrors.DatabaseError("adding creator to group", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	group.MemberCount = 1
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.GroupNotFound()
		}
		return nil, apperrors.DatabaseError("getting group", err)
	}

	members, err := s.groupRepo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting group members", err)
	}
	group.Members = members
	return group, nil
}

func (s *groupService) ListMyGroups(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.groupRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing groups", err)
	}
	return groups, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, userID, groupID string, req CreateGroupRequest) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.GroupNotFound()
		}
		return nil, apperrors.DatabaseError("getting group", err)
	}
	if group.CreatedBy != userID {
		return nil, apperrors.NotOwner("group")
	}
	if req.Name != "" {
		group.Name = req.Name
	}
	if req.Currency != "" {
		group.Currency = req.Currency
	}
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, apperrors.DatabaseError("updating group", err)
	}
	return group, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.GroupNotFound()
		}
		return apperrors.DatabaseError("getting group", err)
	}
	if group.CreatedBy != userID {
		return apperrors.NotOwner("group")
	}
	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return apperrors.DatabaseError("deleting group", err)
	}
	return nil
}

func (s *groupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.GroupNotFound()
		}
		return apperrors.DatabaseError("getting group", err)
	}
	if group.CreatedBy == userID {
		return apperrors.BusinessError("The group creator cannot leave. Delete the group instead.")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return err
	}
	if err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		return apperrors.DatabaseError("leaving group", err)
	}
	return nil
}

func (s *groupService) RemoveMember(ctx context.Context, userID, groupID, memberID string) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.GroupNotFound()
		}
		return apperrors.DatabaseError("getting group", err)
	}
	if group.CreatedBy != userID {
		return apperrors.NotOwner("group")
	}
	if memberID == userID {
		return apperrors.InvalidRequest("Use leave instead of removing yourself.")
	}
	if err := s.groupRepo.RemoveMember(ctx, groupID, memberID); err != nil {
		return apperrors.DatabaseError("removing member", err)
	}
	return nil
}

func (s *groupService) InviteMember(ctx context.Context, userID, userName, groupID, email string) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.MissingRequiredField("email")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting group", err)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		isMember, err := s.groupRepo.IsMember(ctx, groupID, existing.ID)
		if err != nil {
			return nil, apperrors.DatabaseError("checking membership", err)
		}
		if isMember {
			return nil, apperrors.AlreadyMember()
		}
	} else if !apperrors.IsNotFoundError(err) {
		return nil, apperrors.DatabaseError("looking up invitee", err)
	}

	inv := &models.Invitation{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		InvitedBy: userID,
		Email:     email,
		Token:     uuid.NewString(),
		Status:    models.InvitationPending,
	}
	if err := s.groupRepo.CreateInvitation(ctx, inv); err != nil {
		return nil, apperrors.DatabaseError("creating invitation", err)
	}

	inviteURL := fmt.Sprintf("%s/invites/%s", s.appBaseURL, inv.Token)
	inviterName := userName
	if inviterName == "" {
		inviterName = "A fellow traveler"
	}
	if err := s.mailer.SendInvitation(email, inviterName, group.Name, inviteURL); err != nil {
		// The invitation stays usable through its link even if mail fails.
		zap.L().Warn("Failed to send invitation email",
			zap.String("invitation_id", inv.ID), zap.Error(err))
	}
	return inv, nil
}

func (s *groupService) ListInvitations(ctx context.Context, userID, groupID string) ([]models.Invitation, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	invitations, err := s.groupRepo.GetInvitationsByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing invitations", err)
	}
	return invitations, nil
}

func (s *groupService) RevokeInvitation(ctx context.Context, userID, token string) error {
	inv, err := s.groupRepo.GetInvitationByToken(ctx, token)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.InvitationNotFound()
		}
		return apperrors.DatabaseError("getting invitation", err)
	}
	if inv.Status != models.InvitationPending {
		return apperrors.Conflict("Only pending invitations can be revoked.")
	}

	group, err := s.groupRepo.GetByID(ctx, inv.GroupID)
	if err != nil {
		return apperrors.DatabaseError("getting group", err)
	}
	if inv.InvitedBy != userID && group.CreatedBy != userID {
		return apperrors.NotOwner("invitation")
	}

	if err := s.groupRepo.UpdateInvitationStatus(ctx, inv.ID, models.InvitationRevoked); err != nil {
		return apperrors.DatabaseError("revoking invitation", err)
	}
	return nil
}

func (s *groupService) AcceptInvitation(ctx context.Context, userID, userEmail, token string) (*models.Group, error) {
	inv, err := s.groupRepo.GetInvitationByToken(ctx, token)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.InvitationNotFound()
		}
		return nil, apperrors.DatabaseError("getting invitation", err)
	}
	if inv.Status != models.InvitationPending {
		return nil, apperrors.InvitationNotFound()
	}
	if !strings.EqualFold(inv.Email, userEmail) {
		return nil, apperrors.Unauthorized("This invitation was sent to a different email address.")
	}

	isMember, err := s.groupRepo.IsMember(ctx, inv.GroupID, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("checking membership", err)
	}
	if isMember {
		return nil, apperrors.AlreadyMember()
	}

	err = s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.groupRepo.WithTx(tx)
		if err := txRepo.AddMember(ctx, inv.GroupID, userID); err != nil {
			return apperrors.DatabaseError("adding member", err)
		}
		if err := txRepo.UpdateInvitationStatus(ctx, inv.ID, models.InvitationAccepted); err != nil {
			return apperrors.DatabaseError("accepting invitation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	group, err := s.GetGroup(ctx, userID, inv.GroupID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		joinedName := userEmail
		if err == nil && user.Name != "" {
			joinedName = user.Name
		}
		var recipients []string
		for _, m := range group.Members {
			if m.ID != userID {
				recipients = append(recipients, m.ID)
			}
		}
		s.notifier.Notify(ctx, recipients, group.ID, models.NotificationMemberJoined,
			fmt.Sprintf("%s joined %q.", joinedName, group.Name))
	}
	return group, nil
}

func (s *groupService) AddDependent(ctx context.Context, userID, groupID string, req AddDependentRequest) (*models.Dependent, error) {
	if req.Name == "" {
		return nil, apperrors.MissingRequiredField("name")
	}
	if _, ok := defaultAgeMultipliers[req.AgeGroup]; !ok {
		return nil, apperrors.InvalidRequest("age_group must be ADULT, TEEN, CHILD or INFANT.")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	responsibleID := req.ResponsibleMemberID
	if responsibleID == "" {
		responsibleID = userID
	} else if responsibleID != userID {
		isMember, err := s.groupRepo.IsMember(ctx, groupID, responsibleID)
		if err != nil {
			return nil, apperrors.DatabaseError("checking responsible member", err)
		}
		if !isMember {
			return nil, apperrors.InvalidRequest("The responsible member must belong to the group.")
		}
	}

	dep := &models.Dependent{
		ID:                  uuid.NewString(),
		GroupID:             groupID,
		ResponsibleMemberID: responsibleID,
		Name:                req.Name,
		AgeGroup:            req.AgeGroup,
	}
	if err := s.groupRepo.CreateDependent(ctx, dep); err != nil {
		return nil, apperrors.DatabaseError("creating dependent", err)
	}
	return dep, nil
}

func (s *groupService) ListDependents(ctx context.Context, userID, groupID string) ([]models.Dependent, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	dependents, err := s.groupRepo.GetDependentsByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing dependents", err)
	}
	return dependents, nil
}

func (s *groupService) DeleteDependent(ctx context.Context, userID, dependentID string) error {
	dep, err := s.groupRepo.GetDependentByID(ctx, dependentID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.NotFound("Dependent")
		}
		return apperrors.DatabaseError("getting dependent", err)
	}

	group, err := s.groupRepo.GetByID(ctx, dep.GroupID)
	if err != nil {
		return apperrors.DatabaseError("getting group", err)
	}
	if dep.ResponsibleMemberID != userID && group.CreatedBy != userID {
		return apperrors.NotOwner("dependent")
	}

	if err := s.groupRepo.DeleteDependent(ctx, dependentID); err != nil {
		return apperrors.DatabaseError("deleting dependent", err)
	}
	return nil
}
