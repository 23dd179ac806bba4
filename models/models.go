package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Group struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Currency    string    `json:"currency" db:"currency"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	MemberCount int       `json:"member_count,omitempty"`
	Members     []User    `json:"members,omitempty"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRevoked  InvitationStatus = "REVOKED"
)

type Invitation struct {
	ID        string           `json:"id" db:"id"`
	GroupID   string           `json:"group_id" db:"group_id"`
	InvitedBy string           `json:"invited_by" db:"invited_by"`
	Email     string           `json:"email" db:"email"`
	Token     string           `json:"token" db:"token"`
	Status    InvitationStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type AgeGroup string

const (
	AgeGroupAdult  AgeGroup = "ADULT"
	AgeGroupTeen   AgeGroup = "TEEN"
	AgeGroupChild  AgeGroup = "CHILD"
	AgeGroupInfant AgeGroup = "INFANT"
)

// Dependent is a non-member person (a child, a tag-along friend) attached to
// a responsible group member for trip and expense purposes.
type Dependent struct {
	ID                  string    `json:"id" db:"id"`
	GroupID             string    `json:"group_id" db:"group_id"`
	ResponsibleMemberID string    `json:"responsible_member_id" db:"responsible_member_id"`
	Name                string    `json:"name" db:"name"`
	AgeGroup            AgeGroup  `json:"age_group" db:"age_group"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// ExpenseGuest is a named placeholder for someone without an account.
// Guests can participate in splits but never pay.
type ExpenseGuest struct {
	ID        string    `json:"id" db:"id"`
	GroupID   string    `json:"group_id" db:"group_id"`
	Name      string    `json:"name" db:"name"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeCustom     SplitType = "CUSTOM"
	SplitTypePercentage SplitType = "PERCENTAGE"
)

type Expense struct {
	ID              string         `json:"id" db:"id"`
	GroupID         string         `json:"group_id" db:"group_id"`
	Description     string         `json:"description" db:"description"`
	Amount          float64        `json:"amount" db:"amount"`
	Currency        string         `json:"currency" db:"currency"`
	PaidBy          string         `json:"paid_by" db:"paid_by"`
	SplitType       SplitType      `json:"split_type" db:"split_type"`
	Category        string         `json:"category" db:"category"`
	ExpenseDate     time.Time      `json:"expense_date" db:"expense_date"`
	ReceiptImageURL *string        `json:"receipt_image_url,omitempty" db:"receipt_image_url"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
	Splits          []ExpenseSplit `json:"splits,omitempty"`
}

// ExpenseSplit is one participant's share of an expense. Exactly one of
// UserID/GuestID is set.
type ExpenseSplit struct {
	ID         string     `json:"id" db:"id"`
	ExpenseID  string     `json:"expense_id" db:"expense_id"`
	UserID     *string    `json:"user_id,omitempty" db:"user_id"`
	GuestID    *string    `json:"guest_id,omitempty" db:"guest_id"`
	Amount     float64    `json:"amount" db:"amount"`
	Percentage *float64   `json:"percentage,omitempty" db:"percentage"`
	IsSettled  bool       `json:"is_settled" db:"is_settled"`
	SettledAt  *time.Time `json:"settled_at,omitempty" db:"settled_at"`
	SettledBy  *string    `json:"settled_by,omitempty" db:"settled_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Balance is the caller's derived position in a group, computed from
// unsettled splits only. Never stored.
type Balance struct {
	YouOwe     float64 `json:"you_owe"`
	YouAreOwed float64 `json:"you_are_owed"`
	NetBalance float64 `json:"net_balance"`
}

type BalanceDirection string

const (
	DirectionOwesYou BalanceDirection = "OWES_YOU"
	DirectionYouOwe  BalanceDirection = "YOU_OWE"
)

type MemberBalance struct {
	UserID    string           `json:"user_id"`
	Name      string           `json:"name,omitempty"`
	Amount    float64          `json:"amount"`
	Direction BalanceDirection `json:"direction"`
}

type GroupBalances struct {
	Balance Balance         `json:"balance"`
	Members []MemberBalance `json:"members"`
}

type PollType string

const (
	PollTypeMultipleChoice PollType = "MULTIPLE_CHOICE"
	PollTypeRanking        PollType = "RANKING"
	PollTypeDatePicker     PollType = "DATE_PICKER"
	PollTypeLottery        PollType = "LOTTERY"
)

type Poll struct {
	ID        string       `json:"id" db:"id"`
	GroupID   string       `json:"group_id" db:"group_id"`
	Question  string       `json:"question" db:"question"`
	Type      PollType     `json:"poll_type" db:"poll_type"`
	CreatedBy string       `json:"created_by" db:"created_by"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	Options   []PollOption `json:"options,omitempty"`
}

type PollOption struct {
	ID        string     `json:"id" db:"id"`
	PollID    string     `json:"poll_id" db:"poll_id"`
	Label     string     `json:"label" db:"label"`
	EventDate *time.Time `json:"event_date,omitempty" db:"event_date"`
	Position  int        `json:"position" db:"position"`
	Votes     []PollVote `json:"votes,omitempty"`
}

type Availability string

const (
	AvailabilityAvailable   Availability = "AVAILABLE"
	AvailabilityMaybe       Availability = "MAYBE"
	AvailabilityUnavailable Availability = "UNAVAILABLE"
)

type PollVote struct {
	ID           string        `json:"id" db:"id"`
	PollID       string        `json:"poll_id" db:"poll_id"`
	OptionID     string        `json:"option_id" db:"option_id"`
	UserID       string        `json:"user_id" db:"user_id"`
	Rank         *int          `json:"rank,omitempty" db:"rank"`
	Availability *Availability `json:"availability,omitempty" db:"availability"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

type LotteryResult struct {
	ID       string    `json:"id" db:"id"`
	PollID   string    `json:"poll_id" db:"poll_id"`
	OptionID string    `json:"option_id" db:"option_id"`
	DrawnBy  string    `json:"drawn_by" db:"drawn_by"`
	DrawnAt  time.Time `json:"drawn_at" db:"drawn_at"`
}

type ChoiceResult struct {
	OptionID   string  `json:"option_id"`
	Label      string  `json:"label"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type RankingResult struct {
	OptionID    string  `json:"option_id"`
	Label       string  `json:"label"`
	AverageRank float64 `json:"average_rank"`
	VoteCount   int     `json:"vote_count"`
}

type DateResult struct {
	OptionID    string     `json:"option_id"`
	Label       string     `json:"label"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	Available   int        `json:"available"`
	Maybe       int        `json:"maybe"`
	Unavailable int        `json:"unavailable"`
}

type PollResults struct {
	PollID     string          `json:"poll_id"`
	Type       PollType        `json:"poll_type"`
	TotalVotes int             `json:"total_votes"`
	Choices    []ChoiceResult  `json:"choices,omitempty"`
	Rankings   []RankingResult `json:"rankings,omitempty"`
	Dates      []DateResult    `json:"dates,omitempty"`
	Lottery    *LotteryResult  `json:"lottery,omitempty"`
}

type TripTask struct {
	ID         string    `json:"id" db:"id"`
	GroupID    string    `json:"group_id" db:"group_id"`
	Title      string    `json:"title" db:"title"`
	AssignedTo *string   `json:"assigned_to,omitempty" db:"assigned_to"`
	IsDone     bool      `json:"is_done" db:"is_done"`
	Position   int       `json:"position" db:"position"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type ItineraryItem struct {
	ID        string    `json:"id" db:"id"`
	GroupID   string    `json:"group_id" db:"group_id"`
	Day       time.Time `json:"day" db:"day"`
	StartTime *string   `json:"start_time,omitempty" db:"start_time"`
	Title     string    `json:"title" db:"title"`
	Location  *string   `json:"location,omitempty" db:"location"`
	Position  int       `json:"position" db:"position"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SharedNote struct {
	ID        string    `json:"id" db:"id"`
	GroupID   string    `json:"group_id" db:"group_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type BringList struct {
	ID        string      `json:"id" db:"id"`
	GroupID   string      `json:"group_id" db:"group_id"`
	Name      string      `json:"name" db:"name"`
	CreatedBy string      `json:"created_by" db:"created_by"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	Items     []BringItem `json:"items,omitempty"`
}

type BringItem struct {
	ID        string    `json:"id" db:"id"`
	ListID    string    `json:"list_id" db:"list_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	ClaimedBy *string   `json:"claimed_by,omitempty" db:"claimed_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "PENDING"
	ContributionConfirmed ContributionStatus = "CONFIRMED"
	ContributionRejected  ContributionStatus = "REJECTED"
)

// Pool is a shared fundraising goal with per-member targets. Contributions
// are logged by members and confirmed or rejected by the pool's creator.
type Pool struct {
	ID             string             `json:"id" db:"id"`
	GroupID        string             `json:"group_id" db:"group_id"`
	Name           string             `json:"name" db:"name"`
	TargetAmount   float64            `json:"target_amount" db:"target_amount"`
	MemberTarget   float64            `json:"member_target" db:"member_target"`
	CreatedBy      string             `json:"created_by" db:"created_by"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	ConfirmedTotal float64            `json:"confirmed_total"`
	Contributions  []PoolContribution `json:"contributions,omitempty"`
}

type PoolContribution struct {
	ID         string             `json:"id" db:"id"`
	PoolID     string             `json:"pool_id" db:"pool_id"`
	UserID     string             `json:"user_id" db:"user_id"`
	Amount     float64            `json:"amount" db:"amount"`
	Status     ContributionStatus `json:"status" db:"status"`
	ReviewedBy *string            `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt *time.Time         `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
}

type NotificationKind string

const (
	NotificationExpenseCreated       NotificationKind = "EXPENSE_CREATED"
	NotificationPollCreated          NotificationKind = "POLL_CREATED"
	NotificationLotteryDrawn         NotificationKind = "LOTTERY_DRAWN"
	NotificationTaskAssigned         NotificationKind = "TASK_ASSIGNED"
	NotificationContributionReviewed NotificationKind = "CONTRIBUTION_REVIEWED"
	NotificationMemberJoined         NotificationKind = "MEMBER_JOINED"
)

type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	GroupID   string           `json:"group_id" db:"group_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type ReceiptParseResult struct {
	Items    []ReceiptItemData `json:"items"`
	Subtotal float64           `json:"subtotal"`
	Tax      float64           `json:"tax"`
	Total    float64           `json:"total"`
}

type ReceiptItemData struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
