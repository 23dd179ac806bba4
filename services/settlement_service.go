package services

import (
	"context"
	"math"
	"sort"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

// SettlementSuggestion is one proposed repayment in a minimal set of
// transfers that would zero out a group's balances.
type SettlementSuggestion struct {
	FromUserID string  `json:"from_user_id"`
	ToUserID   string  `json:"to_user_id"`
	Amount     float64 `json:"amount"`
}

type SettlementService interface {
	SettleSplit(ctx context.Context, userID, splitID string) (*models.ExpenseSplit, error)
	UnsettleSplit(ctx context.Context, userID, splitID string) (*models.ExpenseSplit, error)
	SettleUpWithMember(ctx context.Context, userID, groupID, otherUserID string) (int64, error)
	GetGroupBalances(ctx context.Context, userID, groupID string) (*models.GroupBalances, error)
	SuggestSettlements(ctx context.Context, userID, groupID string) ([]SettlementSuggestion, error)
}

type settlementService struct {
	expenseRepo repository.ExpenseRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
}

func NewSettlementService(
	expenseRepo repository.ExpenseRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
) SettlementService {
	return &settlementService{
		expenseRepo: expenseRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
	}
}

// loadSplitForSettlement fetches a split with its expense and checks the
// caller may change its settlement state: the payer always can, a member can
// for their own share.
func (s *settlementService) loadSplitForSettlement(ctx context.Context, userID, splitID string) (*models.ExpenseSplit, *models.Expense, error) {
	split, err := s.expenseRepo.GetSplitByID(ctx, splitID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, nil, apperrors.SplitNotFound()
		}
		return nil, nil, apperrors.DatabaseError("getting split", err)
	}

	expense, err := s.expenseRepo.GetByID(ctx, split.ExpenseID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, nil, apperrors.ExpenseNotFound()
		}
		return nil, nil, apperrors.DatabaseError("getting expense", err)
	}

	if err := RequireGroupMembership(ctx, s.groupRepo, expense.GroupID, userID); err != nil {
		return nil, nil, err
	}

	allowed := expense.PaidBy == userID || (split.UserID != nil && *split.UserID == userID)
	if !allowed {
		return nil, nil, apperrors.NotOwner("expense split")
	}
	return split, expense, nil
}

func (s *settlementService) SettleSplit(ctx context.Context, userID, splitID string) (*models.ExpenseSplit, error) {
	split, _, err := s.loadSplitForSettlement(ctx, userID, splitID)
	if err != nil {
		return nil, err
	}
	if split.IsSettled {
		return nil, apperrors.Conflict("This split is already settled.")
	}

	if err := s.expenseRepo.SetSplitSettled(ctx, splitID, true, userID); err != nil {
		return nil, apperrors.DatabaseError("settling split", err)
	}

	updated, err := s.expenseRepo.GetSplitByID(ctx, splitID)
	if err != nil {
		return nil, apperrors.DatabaseError("reloading split", err)
	}
	return updated, nil
}

func (s *settlementService) UnsettleSplit(ctx context.Context, userID, splitID string) (*models.ExpenseSplit, error) {
	split, expense, err := s.loadSplitForSettlement(ctx, userID, splitID)
	if err != nil {
		return nil, err
	}
	if !split.IsSettled {
		return nil, apperrors.Conflict("This split is not settled.")
	}
	// The payer's own share never reverts to owing.
	if split.UserID != nil && *split.UserID == expense.PaidBy {
		return nil, apperrors.BusinessError("The payer's own share cannot be unsettled.")
	}

	if err := s.expenseRepo.SetSplitSettled(ctx, splitID, false, ""); err != nil {
		return nil, apperrors.DatabaseError("unsettling split", err)
	}

	updated, err := s.expenseRepo.GetSplitByID(ctx, splitID)
	if err != nil {
		return nil, apperrors.DatabaseError("reloading split", err)
	}
	return updated, nil
}

// SettleUpWithMember clears every unsettled split between the caller and one
// other member in a single statement, in both directions. Returns the number
// of splits settled.
func (s *settlementService) SettleUpWithMember(ctx context.Context, userID, groupID, otherUserID string) (int64, error) {
	if userID == otherUserID {
		return 0, apperrors.InvalidRequest("Cannot settle up with yourself.")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return 0, err
	}
	isMember, err := s.groupRepo.IsMember(ctx, groupID, otherUserID)
	if err != nil {
		return 0, apperrors.DatabaseError("checking member", err)
	}
	if !isMember {
		return 0, apperrors.NotGroupMember()
	}

	settled, err := s.expenseRepo.SettlePairInGroup(ctx, groupID, userID, otherUserID, userID)
	if err != nil {
		return 0, apperrors.DatabaseError("settling up", err)
	}
	return settled, nil
}

func (s *settlementService) GetGroupBalances(ctx context.Context, userID, groupID string) (*models.GroupBalances, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	rows, err := s.expenseRepo.GetUnsettledSplitsByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting unsettled splits", err)
	}

	balances := computeBalances(rows, userID)

	memberIDs := make([]string, 0, len(balances.Members))
	for _, mb := range balances.Members {
		memberIDs = append(memberIDs, mb.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, apperrors.DatabaseError("getting member names", err)
	}
	for i := range balances.Members {
		if u, ok := users[balances.Members[i].UserID]; ok {
			balances.Members[i].Name = u.Name
		}
	}
	return balances, nil
}

// computeBalances derives the caller's position from unsettled splits.
// Guest shares count toward the payer's owed total but never produce a
// member line, since guests cannot repay through the app.
func computeBalances(rows []repository.UnsettledSplitRow, userID string) *models.GroupBalances {
	balances := &models.GroupBalances{}
	pairwise := make(map[string]float64)

	for _, row := range rows {
		switch {
		case row.UserID != nil && *row.UserID == userID && row.PayerID != userID:
			balances.Balance.YouOwe = roundCents(balances.Balance.YouOwe + row.Amount)
			pairwise[row.PayerID] = roundCents(pairwise[row.PayerID] - row.Amount)
		case row.PayerID == userID && row.UserID != nil && *row.UserID != userID:
			balances.Balance.YouAreOwed = roundCents(balances.Balance.YouAreOwed + row.Amount)
			pairwise[*row.UserID] = roundCents(pairwise[*row.UserID] + row.Amount)
		case row.PayerID == userID && row.GuestID != nil:
			balances.Balance.YouAreOwed = roundCents(balances.Balance.YouAreOwed + row.Amount)
		}
	}
	balances.Balance.NetBalance = roundCents(balances.Balance.YouAreOwed - balances.Balance.YouOwe)

	memberIDs := make([]string, 0, len(pairwise))
	for id := range pairwise {
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	for _, id := range memberIDs {
		net := pairwise[id]
		if math.Abs(net) < BalanceThreshold {
			continue
		}
		mb := models.MemberBalance{UserID: id, Amount: roundCents(math.Abs(net))}
		if net > 0 {
			mb.Direction = models.DirectionOwesYou
		} else {
			mb.Direction = models.DirectionYouOwe
		}
		balances.Members = append(balances.Members, mb)
	}
	return balances
}

func (s *settlementService) SuggestSettlements(ctx context.Context, userID, groupID string) ([]SettlementSuggestion, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	rows, err := s.expenseRepo.GetUnsettledSplitsByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting unsettled splits", err)
	}
	return suggestSettlements(rows), nil
}

// suggestSettlements greedily matches the largest debtor with the largest
// creditor until all member balances are below the reporting threshold. Guest
// shares are excluded: they do not repay through the app.
func suggestSettlements(rows []repository.UnsettledSplitRow) []SettlementSuggestion {
	net := make(map[string]float64)
	for _, row := range rows {
		if row.UserID == nil || *row.UserID == row.PayerID {
			continue
		}
		net[row.PayerID] = roundCents(net[row.PayerID] + row.Amount)
		net[*row.UserID] = roundCents(net[*row.UserID] - row.Amount)
	}

	type bal struct {
		userID string
		amount float64
	}
	var creditors, debtors []bal
	for id, amount := range net {
		if amount > BalanceThreshold {
			creditors = append(creditors, bal{id, amount})
		} else if amount < -BalanceThreshold {
			debtors = append(debtors, bal{id, -amount})
		}
	}
	sort.Slice(creditors, func(i, j int) bool {
		if creditors[i].amount != creditors[j].amount {
			return creditors[i].amount > creditors[j].amount
		}
		return creditors[i].userID < creditors[j].userID
	})
	sort.Slice(debtors, func(i, j int) bool {
		if debtors[i].amount != debtors[j].amount {
			return debtors[i].amount > debtors[j].amount
		}
		return debtors[i].userID < debtors[j].userID
	})

	var suggestions []SettlementSuggestion
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := math.Min(debtors[i].amount, creditors[j].amount)
		amount = roundCents(amount)
		if amount >= BalanceThreshold {
			suggestions = append(suggestions, SettlementSuggestion{
				FromUserID: debtors[i].userID,
				ToUserID:   creditors[j].userID,
				Amount:     amount,
			})
		}
		debtors[i].amount = roundCents(debtors[i].amount - amount)
		creditors[j].amount = roundCents(creditors[j].amount - amount)
		if debtors[i].amount < BalanceThreshold {
			i++
		}
		if creditors[j].amount < BalanceThreshold {
			j++
		}
	}
	return suggestions
}

func roundCents(v float64) float64 {
	return math.Round(v*RoundingFactor) / RoundingFactor
}
