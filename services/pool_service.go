package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

type CreatePoolRequest struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"target_amount"`
	MemberTarget float64 `json:"member_target"`
}

type PoolService interface {
	CreatePool(ctx context.Context, userID, groupID string, req CreatePoolRequest) (*models.Pool, error)
	GetPool(ctx context.Context, userID, poolID string) (*models.Pool, error)
	ListPools(ctx context.Context, userID, groupID string) ([]models.Pool, error)
	DeletePool(ctx context.Context, userID, poolID string) error

	Contribute(ctx context.Context, userID, poolID string, amount float64) (*models.PoolContribution, error)
	ReviewContribution(ctx context.Context, userID, contributionID string, approve bool) (*models.PoolContribution, error)
}

type poolService struct {
	poolRepo  repository.PoolRepository
	groupRepo repository.GroupRepository
	notifier  Notifier
}

func NewPoolService(
	poolRepo repository.PoolRepository,
	groupRepo repository.GroupRepository,
	notifier Notifier,
) PoolService {
	return &poolService{poolRepo: poolRepo, groupRepo: groupRepo, notifier: notifier}
}

func (s *poolService) CreatePool(ctx context.Context, userID, groupID string, req CreatePoolRequest) (*models.Pool, error) {
	if req.Name == "" {
		return nil, apperrors.MissingRequiredField("name")
	}
	if req.TargetAmount < 0 || req.MemberTarget < 0 {
		return nil, apperrors.InvalidAmount("Pool targets cannot be negative.")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	pool := &models.Pool{
		ID:           uuid.NewString(),
		GroupID:      groupID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		MemberTarget: req.MemberTarget,
		CreatedBy:    userID,
	}
	if err := s.poolRepo.Create(ctx, pool); err != nil {
		return nil, apperrors.DatabaseError("creating pool", err)
	}
	return pool, nil
}

func (s *poolService) GetPool(ctx context.Context, userID, poolID string) (*models.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NotFound("Pool")
		}
		return nil, apperrors.DatabaseError("getting pool", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, pool.GroupID, userID); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *poolService) ListPools(ctx context.Context, userID, groupID string) ([]models.Pool, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	pools, err := s.poolRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing pools", err)
	}
	return pools, nil
}

func (s *poolService) DeletePool(ctx context.Context, userID, poolID string) error {
	pool, err := s.GetPool(ctx, userID, poolID)
	if err != nil {
		return err
	}
	if pool.CreatedBy != userID {
		return apperrors.NotOwner("pool")
	}
	if err := s.poolRepo.Delete(ctx, poolID); err != nil {
		return apperrors.DatabaseError("deleting pool", err)
	}
	return nil
}

// Contribute logs a claimed payment into the pool. It stays PENDING until the
// pool's creator confirms they actually received the money.
func (s *poolService) Contribute(ctx context.Context, userID, poolID string, amount float64) (*models.PoolContribution, error) {
	if amount <= 0 {
		return nil, apperrors.InvalidAmount("Contribution amount must be greater than zero.")
	}
	pool, err := s.GetPool(ctx, userID, poolID)
	if err != nil {
		return nil, err
	}

	contribution := &models.PoolContribution{
		ID:     uuid.NewString(),
		PoolID: poolID,
		UserID: userID,
		Amount: amount,
		Status: models.ContributionPending,
	}
	if err := s.poolRepo.CreateContribution(ctx, contribution); err != nil {
		return nil, apperrors.DatabaseError("creating contribution", err)
	}

	if s.notifier != nil && pool.CreatedBy != userID {
		s.notifier.Notify(ctx, []string{pool.CreatedBy}, pool.GroupID, models.NotificationContributionReviewed,
			fmt.Sprintf("A contribution of %.2f to %q is waiting for your confirmation.", amount, pool.Name))
	}
	return contribution, nil
}

func (s *poolService) ReviewContribution(ctx context.Context, userID, contributionID string, approve bool) (*models.PoolContribution, error) {
	contribution, err := s.poolRepo.GetContributionByID(ctx, contributionID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NotFound("Contribution")
		}
		return nil, apperrors.DatabaseError("getting contribution", err)
	}

	pool, err := s.poolRepo.GetByID(ctx, contribution.PoolID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting pool", err)
	}
	if pool.CreatedBy != userID {
		return nil, apperrors.NotOwner("pool")
	}
	if contribution.Status != models.ContributionPending {
		return nil, apperrors.Conflict("This contribution has already been reviewed.")
	}

	status := models.ContributionRejected
	if approve {
		status = models.ContributionConfirmed
	}
	if err := s.poolRepo.ReviewContribution(ctx, contributionID, status, userID); err != nil {
		return nil, apperrors.DatabaseError("reviewing contribution", err)
	}

	updated, err := s.poolRepo.GetContributionByID(ctx, contributionID)
	if err != nil {
		return nil, apperrors.DatabaseError("reloading contribution", err)
	}

	if s.notifier != nil {
		verdict := "rejected"
		if approve {
			verdict = "confirmed"
		}
		s.notifier.Notify(ctx, []string{contribution.UserID}, pool.GroupID, models.NotificationContributionReviewed,
			fmt.Sprintf("Your contribution of %.2f to %q was %s.", contribution.Amount, pool.Name, verdict))
	}
	return updated, nil
}
