package services

import (
	"context"
	"errors"

	"tripmate-backend/database"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

var errNoRows = errors.New("no rows in result set")

type mockExpenseRepo struct {
	rows     []repository.UnsettledSplitRow
	expenses map[string]*models.Expense
	splits   map[string]*models.ExpenseSplit
	guests   map[string]*models.ExpenseGuest

	settledSplits   map[string]bool
	settlePairCount int64
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	if e, ok := m.expenses[id]; ok {
		return e, nil
	}
	return nil, errNoRows
}
func (m *mockExpenseRepo) GetByGroupID(ctx context.Context, groupID string) ([]models.Expense, error) {
	return nil, nil
}
func (m *mockExpenseRepo) Create(ctx context.Context, expense *models.Expense) error { return nil }
func (m *mockExpenseRepo) Update(ctx context.Context, expense *models.Expense) error { return nil }
func (m *mockExpenseRepo) Delete(ctx context.Context, id string) error               { return nil }
func (m *mockExpenseRepo) GetSplits(ctx context.Context, expenseID string) ([]models.ExpenseSplit, error) {
	return nil, nil
}
func (m *mockExpenseRepo) GetSplitsByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseSplit, error) {
	return nil, nil
}
func (m *mockExpenseRepo) GetSplitByID(ctx context.Context, id string) (*models.ExpenseSplit, error) {
	if s, ok := m.splits[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, errNoRows
}
func (m *mockExpenseRepo) CreateSplit(ctx context.Context, split *models.ExpenseSplit) error {
	return nil
}
func (m *mockExpenseRepo) DeleteSplits(ctx context.Context, expenseID string) error { return nil }
func (m *mockExpenseRepo) SetSplitSettled(ctx context.Context, splitID string, settled bool, settledBy string) error {
	if m.settledSplits == nil {
		m.settledSplits = make(map[string]bool)
	}
	m.settledSplits[splitID] = settled
	if s, ok := m.splits[splitID]; ok {
		s.IsSettled = settled
	}
	return nil
}
func (m *mockExpenseRepo) SettlePairInGroup(ctx context.Context, groupID, userA, userB, settledBy string) (int64, error) {
	return m.settlePairCount, nil
}
func (m *mockExpenseRepo) GetUnsettledSplitsByGroupID(ctx context.Context, groupID string) ([]repository.UnsettledSplitRow, error) {
	return m.rows, nil
}
func (m *mockExpenseRepo) CreateGuest(ctx context.Context, guest *models.ExpenseGuest) error {
	return nil
}
func (m *mockExpenseRepo) GetGuestsByGroupID(ctx context.Context, groupID string) ([]models.ExpenseGuest, error) {
	return nil, nil
}
func (m *mockExpenseRepo) GetGuestByID(ctx context.Context, id string) (*models.ExpenseGuest, error) {
	if g, ok := m.guests[id]; ok {
		return g, nil
	}
	return nil, errNoRows
}
func (m *mockExpenseRepo) CountSplitsByGuestID(ctx context.Context, guestID string) (int, error) {
	return 0, nil
}
func (m *mockExpenseRepo) DeleteGuest(ctx context.Context, id string) error { return nil }

func (m *mockExpenseRepo) WithTx(tx database.Querier) repository.ExpenseRepository { return m }

// mockGroupRepo treats everyone as a member unless they are listed in
// nonMembers.
type mockGroupRepo struct {
	nonMembers map[string]bool
	memberIDs  []string
	members    []models.User
	dependents []models.Dependent
}

func (m *mockGroupRepo) GetByID(ctx context.Context, id string) (*models.Group, error) {
	return nil, errNoRows
}
func (m *mockGroupRepo) GetByUserID(ctx context.Context, userID string) ([]models.Group, error) {
	return nil, nil
}
func (m *mockGroupRepo) Create(ctx context.Context, group *models.Group) error { return nil }
func (m *mockGroupRepo) Update(ctx context.Context, group *models.Group) error { return nil }
func (m *mockGroupRepo) Delete(ctx context.Context, id string) error           { return nil }
func (m *mockGroupRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return !m.nonMembers[userID], nil
}
func (m *mockGroupRepo) AddMember(ctx context.Context, groupID, userID string) error    { return nil }
func (m *mockGroupRepo) RemoveMember(ctx context.Context, groupID, userID string) error { return nil }
func (m *mockGroupRepo) GetMembers(ctx context.Context, groupID string) ([]models.User, error) {
	return m.members, nil
}
func (m *mockGroupRepo) GetMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return m.memberIDs, nil
}
func (m *mockGroupRepo) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	return nil
}
func (m *mockGroupRepo) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return nil, errNoRows
}
func (m *mockGroupRepo) GetInvitationsByGroupID(ctx context.Context, groupID string) ([]models.Invitation, error) {
	return nil, nil
}
func (m *mockGroupRepo) UpdateInvitationStatus(ctx context.Context, id string, status models.InvitationStatus) error {
	return nil
}
func (m *mockGroupRepo) CreateDependent(ctx context.Context, dep *models.Dependent) error {
	return nil
}
func (m *mockGroupRepo) GetDependentsByGroupID(ctx context.Context, groupID string) ([]models.Dependent, error) {
	return m.dependents, nil
}
func (m *mockGroupRepo) GetDependentByID(ctx context.Context, id string) (*models.Dependent, error) {
	return nil, errNoRows
}
func (m *mockGroupRepo) DeleteDependent(ctx context.Context, id string) error { return nil }

func (m *mockGroupRepo) WithTx(tx database.Querier) repository.GroupRepository { return m }

type mockUserRepo struct {
	users map[string]models.User
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, errNoRows
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errNoRows
}
func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}
func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) error { return nil }

func (m *mockUserRepo) WithTx(tx database.Querier) repository.UserRepository { return m }

type mockPollRepo struct {
	polls   map[string]*models.Poll
	votes   []models.PollVote
	lottery *models.LotteryResult

	createdLottery *models.LotteryResult
}

func (m *mockPollRepo) GetByID(ctx context.Context, id string) (*models.Poll, error) {
	if p, ok := m.polls[id]; ok {
		return p, nil
	}
	return nil, errNoRows
}
func (m *mockPollRepo) GetByGroupID(ctx context.Context, groupID string) ([]models.Poll, error) {
	return nil, nil
}
func (m *mockPollRepo) Create(ctx context.Context, poll *models.Poll) error { return nil }
func (m *mockPollRepo) Delete(ctx context.Context, id string) error         { return nil }
func (m *mockPollRepo) CreateOption(ctx context.Context, option *models.PollOption) error {
	return nil
}
func (m *mockPollRepo) GetOptions(ctx context.Context, pollID string) ([]models.PollOption, error) {
	return nil, nil
}
func (m *mockPollRepo) UpsertVote(ctx context.Context, vote *models.PollVote) error { return nil }
func (m *mockPollRepo) DeleteVotesByUser(ctx context.Context, pollID, userID string) error {
	return nil
}
func (m *mockPollRepo) GetVotes(ctx context.Context, pollID string) ([]models.PollVote, error) {
	return m.votes, nil
}
func (m *mockPollRepo) CreateLotteryResult(ctx context.Context, result *models.LotteryResult) error {
	m.createdLottery = result
	return nil
}
func (m *mockPollRepo) GetLotteryResult(ctx context.Context, pollID string) (*models.LotteryResult, error) {
	if m.lottery != nil {
		return m.lottery, nil
	}
	return nil, errNoRows
}

func (m *mockPollRepo) WithTx(tx database.Querier) repository.PollRepository { return m }

type mockNoteRepo struct {
	notes map[string]*models.SharedNote
	lists map[string]*models.BringList
	items map[string]*models.BringItem
}

func (m *mockNoteRepo) GetNoteByID(ctx context.Context, id string) (*models.SharedNote, error) {
	if n, ok := m.notes[id]; ok {
		return n, nil
	}
	return nil, errNoRows
}
func (m *mockNoteRepo) GetNotesByGroupID(ctx context.Context, groupID string) ([]models.SharedNote, error) {
	return nil, nil
}
func (m *mockNoteRepo) CreateNote(ctx context.Context, note *models.SharedNote) error { return nil }
func (m *mockNoteRepo) UpdateNote(ctx context.Context, note *models.SharedNote) error { return nil }
func (m *mockNoteRepo) DeleteNote(ctx context.Context, id string) error               { return nil }
func (m *mockNoteRepo) GetBringListByID(ctx context.Context, id string) (*models.BringList, error) {
	if l, ok := m.lists[id]; ok {
		return l, nil
	}
	return nil, errNoRows
}
func (m *mockNoteRepo) GetBringListsByGroupID(ctx context.Context, groupID string) ([]models.BringList, error) {
	return nil, nil
}
func (m *mockNoteRepo) CreateBringList(ctx context.Context, list *models.BringList) error {
	return nil
}
func (m *mockNoteRepo) DeleteBringList(ctx context.Context, id string) error { return nil }
func (m *mockNoteRepo) GetBringItemByID(ctx context.Context, id string) (*models.BringItem, error) {
	if i, ok := m.items[id]; ok {
		copied := *i
		return &copied, nil
	}
	return nil, errNoRows
}
func (m *mockNoteRepo) CreateBringItem(ctx context.Context, item *models.BringItem) error {
	return nil
}
func (m *mockNoteRepo) SetBringItemClaim(ctx context.Context, itemID string, claimedBy *string) error {
	if i, ok := m.items[itemID]; ok {
		i.ClaimedBy = claimedBy
	}
	return nil
}
func (m *mockNoteRepo) DeleteBringItem(ctx context.Context, id string) error { return nil }

func (m *mockNoteRepo) WithTx(tx database.Querier) repository.NoteRepository { return m }

type sentNotification struct {
	userIDs []string
	kind    models.NotificationKind
	message string
}

type mockNotifier struct {
	sent []sentNotification
}

func (m *mockNotifier) Notify(ctx context.Context, userIDs []string, groupID string, kind models.NotificationKind, message string) {
	m.sent = append(m.sent, sentNotification{userIDs: userIDs, kind: kind, message: message})
}
