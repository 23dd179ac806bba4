package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"tripmate-backend/database"
	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

type PollOptionInput struct {
	Label     string `json:"label"`
	EventDate string `json:"event_date,omitempty"`
}

type CreatePollRequest struct {
	GroupID  string            `json:"group_id"`
	Question string            `json:"question"`
	Type     models.PollType   `json:"poll_type"`
	Options  []PollOptionInput `json:"options"`
}

type VoteInput struct {
	OptionID     string               `json:"option_id"`
	Rank         *int                 `json:"rank,omitempty"`
	Availability *models.Availability `json:"availability,omitempty"`
}

type CastVoteRequest struct {
	Votes []VoteInput `json:"votes"`
}

type PollService interface {
	CreatePoll(ctx context.Context, userID string, req CreatePollRequest) (*models.Poll, error)
	GetPoll(ctx context.Context, userID, pollID string) (*models.Poll, error)
	ListGroupPolls(ctx context.Context, userID, groupID string) ([]models.Poll, error)
	DeletePoll(ctx context.Context, userID, pollID string) error
	CastVote(ctx context.Context, userID, pollID string, req CastVoteRequest) error
	GetResults(ctx context.Context, userID, pollID string) (*models.PollResults, error)
	DrawLottery(ctx context.Context, userID, pollID string) (*models.LotteryResult, error)
}

type pollService struct {
	db        *database.DB
	pollRepo  repository.PollRepository
	groupRepo repository.GroupRepository
	notifier  Notifier
}

func NewPollService(
	db *database.DB,
	pollRepo repository.PollRepository,
	groupRepo repository.GroupRepository,
	notifier Notifier,
) PollService {
	return &pollService{db: db, pollRepo: pollRepo, groupRepo: groupRepo, notifier: notifier}
}

func validPollType(t models.PollType) bool {
	switch t {
	case models.PollTypeMultipleChoice, models.PollTypeRanking, models.PollTypeDatePicker, models.PollTypeLottery:
		return true
	}
	return false
}

func (s *pollService) CreatePoll(ctx context.Context, userID string, req CreatePollRequest) (*models.Poll, error) {
	if req.Question == "" {
		return nil, apperrors.MissingRequiredField("question")
	}
	if !validPollType(req.Type) {
		return nil, apperrors.InvalidRequest(fmt.Sprintf("Unknown poll type %q.", req.Type))
	}
	if len(req.Options) < 2 {
		return nil, apperrors.InvalidRequest("A poll needs at least two options.")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, req.GroupID, userID); err != nil {
		return nil, err
	}

	options := make([]models.PollOption, len(req.Options))
	for i, in := range req.Options {
		if in.Label == "" {
			return nil, apperrors.InvalidRequest("Every option needs a label.")
		}
		option := models.PollOption{
			ID:       uuid.NewString(),
			Label:    in.Label,
			Position: i,
		}
		if req.Type == models.PollTypeDatePicker {
			if in.EventDate == "" {
				return nil, apperrors.InvalidRequest("Date picker options need an event_date.")
			}
			day, err := time.Parse("2006-01-02", in.EventDate)
			if err != nil {
				return nil, apperrors.InvalidRequest("event_date must be in YYYY-MM-DD format.")
			}
			option.EventDate = &day
		}
		options[i] = option
	}

	poll := &models.Poll{
		ID:        uuid.NewString(),
		GroupID:   req.GroupID,
		Question:  req.Question,
		Type:      req.Type,
		CreatedBy: userID,
	}

	err := s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.pollRepo.WithTx(tx)
		if err := txRepo.Create(ctx, poll); err != nil {
			return apperrors.DatabaseError("creating poll", err)
		}
		for i := range options {
			options[i].PollID = poll.ID
			if err := txRepo.CreateOption(ctx, &options[i]); err != nil {
				return apperrors.DatabaseError("creating poll option", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	poll.Options = options

	s.notifyGroup(ctx, poll.GroupID, userID, models.NotificationPollCreated,
		fmt.Sprintf("New poll: %s", poll.Question))
	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, userID, pollID string) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.PollNotFound()
		}
		return nil, apperrors.DatabaseError("getting poll", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, poll.GroupID, userID); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *pollService) ListGroupPolls(ctx context.Context, userID, groupID string) ([]models.Poll, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	polls, err := s.pollRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing polls", err)
	}
	return polls, nil
}

func (s *pollService) DeletePoll(ctx context.Context, userID, pollID string) error {
	poll, err := s.GetPoll(ctx, userID, pollID)
	if err != nil {
		return err
	}
	if poll.CreatedBy != userID {
		return apperrors.NotOwner("poll")
	}
	if err := s.pollRepo.Delete(ctx, pollID); err != nil {
		return apperrors.DatabaseError("deleting poll", err)
	}
	return nil
}

func (s *pollService) CastVote(ctx context.Context, userID, pollID string, req CastVoteRequest) error {
	poll, err := s.GetPoll(ctx, userID, pollID)
	if err != nil {
		return err
	}
	if len(req.Votes) == 0 {
		return apperrors.InvalidRequest("At least one vote is required.")
	}

	optionIDs := make(map[string]bool, len(poll.Options))
	for _, o := range poll.Options {
		optionIDs[o.ID] = true
	}
	for _, v := range req.Votes {
		if !optionIDs[v.OptionID] {
			return apperrors.InvalidRequest("Vote references an option that is not part of this poll.")
		}
	}

	switch poll.Type {
	case models.PollTypeMultipleChoice:
		return s.castChoiceVote(ctx, poll, userID, req.Votes)
	case models.PollTypeRanking:
		return s.castRankingVote(ctx, poll, userID, req.Votes)
	case models.PollTypeDatePicker:
		return s.castDateVote(ctx, poll, userID, req.Votes)
	case models.PollTypeLottery:
		return apperrors.BusinessError("Lottery polls are decided by a draw, not by voting.")
	default:
		return apperrors.InvalidRequest("Unknown poll type.")
	}
}

func (s *pollService) castChoiceVote(ctx context.Context, poll *models.Poll, userID string, votes []VoteInput) error {
	if len(votes) != 1 {
		return apperrors.InvalidRequest("Multiple choice polls accept exactly one vote.")
	}
	return s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.pollRepo.WithTx(tx)
		if err := txRepo.DeleteVotesByUser(ctx, poll.ID, userID); err != nil {
			return apperrors.DatabaseError("clearing previous vote", err)
		}
		vote := &models.PollVote{
			ID:       uuid.NewString(),
			PollID:   poll.ID,
			OptionID: votes[0].OptionID,
			UserID:   userID,
		}
		if err := txRepo.UpsertVote(ctx, vote); err != nil {
			return apperrors.DatabaseError("recording vote", err)
		}
		return nil
	})
}

func (s *pollService) castRankingVote(ctx context.Context, poll *models.Poll, userID string, votes []VoteInput) error {
	if len(votes) != len(poll.Options) {
		return apperrors.InvalidRequest("Ranking votes must rank every option.")
	}
	seenRanks := make(map[int]bool, len(votes))
	seenOptions := make(map[string]bool, len(votes))
	for _, v := range votes {
		if v.Rank == nil {
			return apperrors.InvalidRequest("Ranking votes require a rank for every option.")
		}
		if *v.Rank < 1 || *v.Rank > len(poll.Options) {
			return apperrors.InvalidRequest(fmt.Sprintf("Ranks must be between 1 and %d.", len(poll.Options)))
		}
		if seenRanks[*v.Rank] || seenOptions[v.OptionID] {
			return apperrors.InvalidRequest("Each option must get exactly one distinct rank.")
		}
		seenRanks[*v.Rank] = true
		seenOptions[v.OptionID] = true
	}

	return s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.pollRepo.WithTx(tx)
		if err := txRepo.DeleteVotesByUser(ctx, poll.ID, userID); err != nil {
			return apperrors.DatabaseError("clearing previous ranking", err)
		}
		for _, v := range votes {
			vote := &models.PollVote{
				ID:       uuid.NewString(),
				PollID:   poll.ID,
				OptionID: v.OptionID,
				UserID:   userID,
				Rank:     v.Rank,
			}
			if err := txRepo.UpsertVote(ctx, vote); err != nil {
				return apperrors.DatabaseError("recording ranking vote", err)
			}
		}
		return nil
	})
}

// castDateVote upserts per option, so members can report availability for
// dates one at a time.
func (s *pollService) castDateVote(ctx context.Context, poll *models.Poll, userID string, votes []VoteInput) error {
	for _, v := range votes {
		if v.Availability == nil {
			return apperrors.InvalidRequest("Date picker votes require availability for each option.")
		}
		switch *v.Availability {
		case models.AvailabilityAvailable, models.AvailabilityMaybe, models.AvailabilityUnavailable:
		default:
			return apperrors.InvalidRequest("Availability must be AVAILABLE, MAYBE or UNAVAILABLE.")
		}
	}

	return s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.pollRepo.WithTx(tx)
		for _, v := range votes {
			vote := &models.PollVote{
				ID:           uuid.NewString(),
				PollID:       poll.ID,
				OptionID:     v.OptionID,
				UserID:       userID,
				Availability: v.Availability,
			}
			if err := txRepo.UpsertVote(ctx, vote); err != nil {
				return apperrors.DatabaseError("recording availability", err)
			}
		}
		return nil
	})
}

func (s *pollService) GetResults(ctx context.Context, userID, pollID string) (*models.PollResults, error) {
	poll, err := s.GetPoll(ctx, userID, pollID)
	if err != nil {
		return nil, err
	}
	votes, err := s.pollRepo.GetVotes(ctx, pollID)
	if err != nil {
		return nil, apperrors.DatabaseError("getting poll votes", err)
	}

	results := &models.PollResults{
		PollID:     poll.ID,
		Type:       poll.Type,
		TotalVotes: len(votes),
	}

	switch poll.Type {
	case models.PollTypeMultipleChoice:
		results.Choices = tallyChoices(poll.Options, votes)
	case models.PollTypeRanking:
		results.Rankings = tallyRankings(poll.Options, votes)
	case models.PollTypeDatePicker:
		results.Dates = tallyDates(poll.Options, votes)
	case models.PollTypeLottery:
		lottery, err := s.pollRepo.GetLotteryResult(ctx, pollID)
		if err != nil && !apperrors.IsNotFoundError(err) {
			return nil, apperrors.DatabaseError("getting lottery result", err)
		}
		results.Lottery = lottery
	}
	return results, nil
}

func tallyChoices(options []models.PollOption, votes []models.PollVote) []models.ChoiceResult {
	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.OptionID]++
	}

	results := make([]models.ChoiceResult, len(options))
	for i, o := range options {
		result := models.ChoiceResult{OptionID: o.ID, Label: o.Label, Votes: counts[o.ID]}
		if len(votes) > 0 {
			result.Percentage = roundCents(float64(counts[o.ID]) / float64(len(votes)) * 100)
		}
		results[i] = result
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Votes > results[b].Votes
	})
	return results
}

// tallyRankings orders options by average rank, best first. Options nobody
// ranked sort last with a zero average.
func tallyRankings(options []models.PollOption, votes []models.PollVote) []models.RankingResult {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, v := range votes {
		if v.Rank == nil {
			continue
		}
		sums[v.OptionID] += *v.Rank
		counts[v.OptionID]++
	}

	results := make([]models.RankingResult, len(options))
	sortKeys := make(map[string]float64, len(options))
	for i, o := range options {
		result := models.RankingResult{OptionID: o.ID, Label: o.Label, VoteCount: counts[o.ID]}
		if counts[o.ID] > 0 {
			result.AverageRank = float64(sums[o.ID]) / float64(counts[o.ID])
			sortKeys[o.ID] = result.AverageRank
		} else {
			sortKeys[o.ID] = math.Inf(1)
		}
		results[i] = result
	}
	sort.SliceStable(results, func(a, b int) bool {
		return sortKeys[results[a].OptionID] < sortKeys[results[b].OptionID]
	})
	return results
}

func tallyDates(options []models.PollOption, votes []models.PollVote) []models.DateResult {
	type counts struct{ available, maybe, unavailable int }
	perOption := make(map[string]*counts)
	for _, v := range votes {
		if v.Availability == nil {
			continue
		}
		c := perOption[v.OptionID]
		if c == nil {
			c = &counts{}
			perOption[v.OptionID] = c
		}
		switch *v.Availability {
		case models.AvailabilityAvailable:
			c.available++
		case models.AvailabilityMaybe:
			c.maybe++
		case models.AvailabilityUnavailable:
			c.unavailable++
		}
	}

	results := make([]models.DateResult, len(options))
	for i, o := range options {
		result := models.DateResult{OptionID: o.ID, Label: o.Label, EventDate: o.EventDate}
		if c := perOption[o.ID]; c != nil {
			result.Available = c.available
			result.Maybe = c.maybe
			result.Unavailable = c.unavailable
		}
		results[i] = result
	}
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Available != results[b].Available {
			return results[a].Available > results[b].Available
		}
		return results[a].Maybe > results[b].Maybe
	})
	return results
}

// DrawLottery picks a uniformly random option and records it. The unique
// constraint on the result table makes the draw happen at most once even if
// two members draw at the same moment.
func (s *pollService) DrawLottery(ctx context.Context, userID, pollID string) (*models.LotteryResult, error) {
	poll, err := s.GetPoll(ctx, userID, pollID)
	if err != nil {
		return nil, err
	}
	if poll.Type != models.PollTypeLottery {
		return nil, apperrors.BusinessError("Only lottery polls can be drawn.")
	}
	if len(poll.Options) == 0 {
		return nil, apperrors.BusinessError("This lottery has no options to draw from.")
	}

	if _, err := s.pollRepo.GetLotteryResult(ctx, pollID); err == nil {
		return nil, apperrors.AlreadyDrawn()
	} else if !apperrors.IsNotFoundError(err) {
		return nil, apperrors.DatabaseError("checking lottery result", err)
	}

	winner := poll.Options[rand.Intn(len(poll.Options))]
	result := &models.LotteryResult{
		ID:       uuid.NewString(),
		PollID:   pollID,
		OptionID: winner.ID,
		DrawnBy:  userID,
	}
	if err := s.pollRepo.CreateLotteryResult(ctx, result); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.AlreadyDrawn()
		}
		return nil, apperrors.DatabaseError("recording lottery result", err)
	}

	s.notifyGroup(ctx, poll.GroupID, userID, models.NotificationLotteryDrawn,
		fmt.Sprintf("The lottery %q was drawn: %s", poll.Question, winner.Label))
	return result, nil
}

func (s *pollService) notifyGroup(ctx context.Context, groupID, actorID string, kind models.NotificationKind, message string) {
	if s.notifier == nil {
		return
	}
	memberIDs, err := s.groupRepo.GetMemberIDs(ctx, groupID)
	if err != nil {
		return
	}
	recipients := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != actorID {
			recipients = append(recipients, id)
		}
	}
	s.notifier.Notify(ctx, recipients, groupID, kind, message)
}
