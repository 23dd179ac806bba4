package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripmate-backend/database"
	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
	"tripmate-backend/storage"
)

type SplitInput struct {
	UserID     *string  `json:"user_id,omitempty"`
	GuestID    *string  `json:"guest_id,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
}

type CreateExpenseRequest struct {
	GroupID         string           `json:"group_id"`
	Description     string           `json:"description"`
	Amount          float64          `json:"amount"`
	Currency        string           `json:"currency"`
	SplitType       models.SplitType `json:"split_type"`
	Category        string           `json:"category"`
	ExpenseDate     string           `json:"expense_date"`
	ReceiptImageURL *string          `json:"receipt_image_url,omitempty"`
	Participants    []SplitInput     `json:"participants"`
}

// AgeSplitPreviewRequest selects the people to price. A nil multiplier table
// uses the default one.
type AgeSplitPreviewRequest struct {
	BasePrice    float64                     `json:"base_price"`
	PricingMode  PricingMode                 `json:"pricing_mode"`
	Multipliers  map[models.AgeGroup]float64 `json:"multipliers,omitempty"`
	MemberIDs    []string                    `json:"member_ids"`
	DependentIDs []string                    `json:"dependent_ids"`
}

type UpdateExpenseRequest struct {
	Description     string           `json:"description"`
	Amount          float64          `json:"amount"`
	Currency        string           `json:"currency"`
	SplitType       models.SplitType `json:"split_type"`
	Category        string           `json:"category"`
	ExpenseDate     string           `json:"expense_date"`
	ReceiptImageURL *string          `json:"receipt_image_url,omitempty"`
	Participants    []SplitInput     `json:"participants"`
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (*models.Expense, error)
	GetExpense(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	ListGroupExpenses(ctx context.Context, userID, groupID string) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, req UpdateExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error

	CreateGuest(ctx context.Context, userID, groupID, name string) (*models.ExpenseGuest, error)
	ListGuests(ctx context.Context, userID, groupID string) ([]models.ExpenseGuest, error)
	DeleteGuest(ctx context.Context, userID, guestID string) error

	PreviewAgeSplit(ctx context.Context, userID, groupID string, req AgeSplitPreviewRequest) (*AgeSplitPreview, error)
}

type expenseService struct {
	db          *database.DB
	expenseRepo repository.ExpenseRepository
	groupRepo   repository.GroupRepository
	notifier    Notifier
	store       storage.Storage
	receiptsBkt string
}

func NewExpenseService(
	db *database.DB,
	expenseRepo repository.ExpenseRepository,
	groupRepo repository.GroupRepository,
	notifier Notifier,
	store storage.Storage,
	receiptsBucket string,
) ExpenseService {
	return &expenseService{
		db:          db,
		expenseRepo: expenseRepo,
		groupRepo:   groupRepo,
		notifier:    notifier,
		store:       store,
		receiptsBkt: receiptsBucket,
	}
}

func (s *expenseService) CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (*models.Expense, error) {
	if req.Description == "" {
		return nil, apperrors.MissingRequiredField("description")
	}
	if req.Amount <= 0 {
		return nil, apperrors.InvalidAmount("Amount must be greater than zero.")
	}
	if len(req.Participants) == 0 {
		return nil, apperrors.InvalidRequest("At least one participant is required.")
	}

	if err := RequireGroupMembership(ctx, s.groupRepo, req.GroupID, userID); err != nil {
		return nil, err
	}

	expenseDate, err := parseExpenseDate(req.ExpenseDate)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		group, err := s.groupRepo.GetByID(ctx, req.GroupID)
		if err != nil {
			if apperrors.IsNotFoundError(err) {
				return nil, apperrors.GroupNotFound()
			}
			return nil, apperrors.DatabaseError("getting group", err)
		}
		currency = group.Currency
	}

	amounts, err := s.resolveSplitAmounts(ctx, req.GroupID, req.Amount, req.SplitType, req.Participants)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = "GENERAL"
	}

	expense := &models.Expense{
		ID:              uuid.NewString(),
		GroupID:         req.GroupID,
		Description:     req.Description,
		Amount:          req.Amount,
		Currency:        currency,
		PaidBy:          userID,
		SplitType:       req.SplitType,
		Category:        category,
		ExpenseDate:     expenseDate,
		ReceiptImageURL: req.ReceiptImageURL,
	}

	err = s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.expenseRepo.WithTx(tx)
		if err := txRepo.Create(ctx, expense); err != nil {
			return apperrors.DatabaseError("creating expense", err)
		}
		splits, err := buildSplits(expense, req.Participants, amounts)
		if err != nil {
			return err
		}
		for i := range splits {
			if err := txRepo.CreateSplit(ctx, &splits[i]); err != nil {
				return apperrors.DatabaseError("creating expense split", err)
			}
		}
		expense.Splits = splits
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, expense, userID)
	return expense, nil
}

// buildSplits turns participant inputs plus resolved amounts into split rows.
// The payer's own share is born settled: they cannot owe themselves.
func buildSplits(expense *models.Expense, participants []SplitInput, amounts []float64) ([]models.ExpenseSplit, error) {
	now := time.Now()
	splits := make([]models.ExpenseSplit, len(participants))
	for i, p := range participants {
		split := models.ExpenseSplit{
			ID:         uuid.NewString(),
			ExpenseID:  expense.ID,
			UserID:     p.UserID,
			GuestID:    p.GuestID,
			Amount:     amounts[i],
			Percentage: p.Percentage,
		}
		if p.UserID != nil && *p.UserID == expense.PaidBy {
			split.IsSettled = true
			split.SettledAt = &now
			settledBy := expense.PaidBy
			split.SettledBy = &settledBy
		}
		splits[i] = split
	}
	return splits, nil
}

// resolveSplitAmounts validates participants and produces the per-participant
// amount for the requested split policy.
func (s *expenseService) resolveSplitAmounts(ctx context.Context, groupID string, total float64, splitType models.SplitType, participants []SplitInput) ([]float64, error) {
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if (p.UserID == nil) == (p.GuestID == nil) {
			return nil, apperrors.InvalidRequest("Each participant must reference exactly one of user_id or guest_id.")
		}
		if p.UserID != nil {
			if seen["u:"+*p.UserID] {
				return nil, apperrors.InvalidRequest("Duplicate participant in split.")
			}
			seen["u:"+*p.UserID] = true
			isMember, err := s.groupRepo.IsMember(ctx, groupID, *p.UserID)
			if err != nil {
				return nil, apperrors.DatabaseError("checking participant membership", err)
			}
			if !isMember {
				return nil, apperrors.InvalidRequest("All user participants must be members of the group.")
			}
		} else {
			if seen["g:"+*p.GuestID] {
				return nil, apperrors.InvalidRequest("Duplicate participant in split.")
			}
			seen["g:"+*p.GuestID] = true
			guest, err := s.expenseRepo.GetGuestByID(ctx, *p.GuestID)
			if err != nil {
				if apperrors.IsNotFoundError(err) {
					return nil, apperrors.NotFound("Guest")
				}
				return nil, apperrors.DatabaseError("getting guest", err)
			}
			if guest.GroupID != groupID {
				return nil, apperrors.InvalidRequest("Guest does not belong to this group.")
			}
		}
	}

	switch splitType {
	case models.SplitTypeEqual:
		return allocateEqual(total, len(participants)), nil

	case models.SplitTypeCustom:
		amounts := make([]float64, len(participants))
		for i, p := range participants {
			if p.Amount == nil {
				return nil, apperrors.InvalidRequest("Custom splits require an amount for every participant.")
			}
			amounts[i] = *p.Amount
		}
		if err := validateCustomAmounts(total, amounts); err != nil {
			return nil, err
		}
		return amounts, nil

	case models.SplitTypePercentage:
		percentages := make([]float64, len(participants))
		for i, p := range participants {
			if p.Percentage == nil {
				return nil, apperrors.InvalidRequest("Percentage splits require a percentage for every participant.")
			}
			percentages[i] = *p.Percentage
		}
		return amountsFromPercentages(total, percentages)

	default:
		return nil, apperrors.InvalidRequest(fmt.Sprintf("Unknown split type %q.", splitType))
	}
}

func (s *expenseService) GetExpense(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.ExpenseNotFound()
		}
		return nil, apperrors.DatabaseError("getting expense", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, expense.GroupID, userID); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) ListGroupExpenses(ctx context.Context, userID, groupID string) ([]models.Expense, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing expenses", err)
	}
	return expenses, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, userID, expenseID string, req UpdateExpenseRequest) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.ExpenseNotFound()
		}
		return nil, apperrors.DatabaseError("getting expense", err)
	}
	if expense.PaidBy != userID {
		return nil, apperrors.NotOwner("expense")
	}
	if req.Description == "" {
		return nil, apperrors.MissingRequiredField("description")
	}
	if req.Amount <= 0 {
		return nil, apperrors.InvalidAmount("Amount must be greater than zero.")
	}
	if len(req.Participants) == 0 {
		return nil, apperrors.InvalidRequest("At least one participant is required.")
	}

	expenseDate, err := parseExpenseDate(req.ExpenseDate)
	if err != nil {
		return nil, err
	}

	amounts, err := s.resolveSplitAmounts(ctx, expense.GroupID, req.Amount, req.SplitType, req.Participants)
	if err != nil {
		return nil, err
	}

	expense.Description = req.Description
	expense.Amount = req.Amount
	if req.Currency != "" {
		expense.Currency = req.Currency
	}
	expense.SplitType = req.SplitType
	if req.Category != "" {
		expense.Category = req.Category
	}
	expense.ExpenseDate = expenseDate
	if req.ReceiptImageURL != nil {
		expense.ReceiptImageURL = req.ReceiptImageURL
	}

	// Editing an expense replaces its splits; any prior settlement on the
	// replaced splits is discarded along with them.
	err = s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.expenseRepo.WithTx(tx)
		if err := txRepo.Update(ctx, expense); err != nil {
			return apperrors.DatabaseError("updating expense", err)
		}
		if err := txRepo.DeleteSplits(ctx, expenseID); err != nil {
			return apperrors.DatabaseError("deleting old splits", err)
		}
		splits, err := buildSplits(expense, req.Participants, amounts)
		if err != nil {
			return err
		}
		for i := range splits {
			if err := txRepo.CreateSplit(ctx, &splits[i]); err != nil {
				return apperrors.DatabaseError("creating expense split", err)
			}
		}
		expense.Splits = splits
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.ExpenseNotFound()
		}
		return apperrors.DatabaseError("getting expense", err)
	}
	if expense.PaidBy != userID {
		return apperrors.NotOwner("expense")
	}

	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		return apperrors.DatabaseError("deleting expense", err)
	}

	// Best effort: orphaned receipt images are not worth failing the delete.
	if expense.ReceiptImageURL != nil && s.store != nil {
		if objectPath, ok := storage.ObjectPathFromURL(*expense.ReceiptImageURL, s.receiptsBkt); ok {
			if err := s.store.Delete(ctx, s.receiptsBkt, objectPath); err != nil {
				zap.L().Warn("Failed to delete receipt image",
					zap.String("expense_id", expenseID), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *expenseService) CreateGuest(ctx context.Context, userID, groupID, name string) (*models.ExpenseGuest, error) {
	if name == "" {
		return nil, apperrors.MissingRequiredField("name")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	guest := &models.ExpenseGuest{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Name:      name,
		CreatedBy: userID,
	}
	if err := s.expenseRepo.CreateGuest(ctx, guest); err != nil {
		return nil, apperrors.DatabaseError("creating guest", err)
	}
	return guest, nil
}

func (s *expenseService) ListGuests(ctx context.Context, userID, groupID string) ([]models.ExpenseGuest, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	guests, err := s.expenseRepo.GetGuestsByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing guests", err)
	}
	return guests, nil
}

func (s *expenseService) DeleteGuest(ctx context.Context, userID, guestID string) error {
	guest, err := s.expenseRepo.GetGuestByID(ctx, guestID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.NotFound("Guest")
		}
		return apperrors.DatabaseError("getting guest", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, guest.GroupID, userID); err != nil {
		return err
	}

	count, err := s.expenseRepo.CountSplitsByGuestID(ctx, guestID)
	if err != nil {
		return apperrors.DatabaseError("counting guest splits", err)
	}
	if count > 0 {
		return apperrors.GuestInUse()
	}

	if err := s.expenseRepo.DeleteGuest(ctx, guestID); err != nil {
		return apperrors.DatabaseError("deleting guest", err)
	}
	return nil
}

// PreviewAgeSplit prices the selected members and dependents. Members are
// priced as adults; dependents use their recorded age group and roll up to
// their responsible member.
func (s *expenseService) PreviewAgeSplit(ctx context.Context, userID, groupID string, req AgeSplitPreviewRequest) (*AgeSplitPreview, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	if len(req.MemberIDs)+len(req.DependentIDs) == 0 {
		return nil, apperrors.InvalidRequest("At least one person must be selected.")
	}

	members, err := s.groupRepo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting group members", err)
	}
	membersByID := make(map[string]models.User, len(members))
	for _, m := range members {
		membersByID[m.ID] = m
	}
	dependents, err := s.groupRepo.GetDependentsByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting dependents", err)
	}
	dependentsByID := make(map[string]models.Dependent, len(dependents))
	for _, d := range dependents {
		dependentsByID[d.ID] = d
	}

	participants := make([]AgeParticipant, 0, len(req.MemberIDs)+len(req.DependentIDs))
	for _, id := range req.MemberIDs {
		m, ok := membersByID[id]
		if !ok {
			return nil, apperrors.InvalidRequest("Selected person is not a member of this group.")
		}
		participants = append(participants, AgeParticipant{
			Name:                m.Name,
			AgeGroup:            models.AgeGroupAdult,
			ResponsibleMemberID: m.ID,
		})
	}
	for _, id := range req.DependentIDs {
		d, ok := dependentsByID[id]
		if !ok {
			return nil, apperrors.InvalidRequest("Selected dependent does not belong to this group.")
		}
		participants = append(participants, AgeParticipant{
			Name:                d.Name,
			AgeGroup:            d.AgeGroup,
			ResponsibleMemberID: d.ResponsibleMemberID,
		})
	}

	return ComputeAgeBasedShares(req.BasePrice, req.PricingMode, req.Multipliers, participants)
}

func (s *expenseService) notifyParticipants(ctx context.Context, expense *models.Expense, actorID string) {
	if s.notifier == nil {
		return
	}
	var recipients []string
	for _, split := range expense.Splits {
		if split.UserID != nil && *split.UserID != actorID {
			recipients = append(recipients, *split.UserID)
		}
	}
	message := fmt.Sprintf("New expense %q (%.2f %s) was added.", expense.Description, expense.Amount, expense.Currency)
	s.notifier.Notify(ctx, recipients, expense.GroupID, models.NotificationExpenseCreated, message)
}

func parseExpenseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperrors.InvalidRequest("expense_date must be in YYYY-MM-DD format.")
	}
	return t, nil
}
