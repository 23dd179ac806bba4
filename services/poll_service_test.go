package services

import (
	"context"
	"math"
	"testing"

	"tripmate-backend/models"
)

func intPtr(i int) *int { return &i }

func availPtr(a models.Availability) *models.Availability { return &a }

func TestTallyChoices(t *testing.T) {
	options := []models.PollOption{
		{ID: "opt-a", Label: "Beach"},
		{ID: "opt-b", Label: "Mountains"},
		{ID: "opt-c", Label: "City"},
	}
	votes := []models.PollVote{
		{OptionID: "opt-b", UserID: "u1"},
		{OptionID: "opt-b", UserID: "u2"},
		{OptionID: "opt-a", UserID: "u3"},
		{OptionID: "opt-b", UserID: "u4"},
	}

	results := tallyChoices(options, votes)

	if results[0].OptionID != "opt-b" || results[0].Votes != 3 {
		t.Errorf("expected opt-b first with 3 votes, got %s with %d", results[0].OptionID, results[0].Votes)
	}
	if math.Abs(results[0].Percentage-75.0) > AmountTolerance {
		t.Errorf("expected 75%%, got %.2f", results[0].Percentage)
	}
	if results[2].OptionID != "opt-c" || results[2].Votes != 0 {
		t.Errorf("expected opt-c last with 0 votes, got %s with %d", results[2].OptionID, results[2].Votes)
	}
}

func TestTallyChoicesNoVotes(t *testing.T) {
	options := []models.PollOption{{ID: "opt-a", Label: "A"}, {ID: "opt-b", Label: "B"}}

	results := tallyChoices(options, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Votes != 0 || r.Percentage != 0 {
			t.Errorf("expected zero votes and percentage, got %d / %.2f", r.Votes, r.Percentage)
		}
	}
}

func TestTallyRankings(t *testing.T) {
	options := []models.PollOption{
		{ID: "opt-a", Label: "Hostel"},
		{ID: "opt-b", Label: "Hotel"},
		{ID: "opt-c", Label: "Camping"},
	}
	// u1 ranks a=2, b=1, c=3; u2 ranks a=1, b=2 and skips c.
	votes := []models.PollVote{
		{OptionID: "opt-a", UserID: "u1", Rank: intPtr(2)},
		{OptionID: "opt-b", UserID: "u1", Rank: intPtr(1)},
		{OptionID: "opt-c", UserID: "u1", Rank: intPtr(3)},
		{OptionID: "opt-a", UserID: "u2", Rank: intPtr(1)},
		{OptionID: "opt-b", UserID: "u2", Rank: intPtr(2)},
	}

	results := tallyRankings(options, votes)

	if results[0].OptionID != "opt-a" && results[0].OptionID != "opt-b" {
		t.Fatalf("expected a ranked option first, got %s", results[0].OptionID)
	}
	// Both averaged 1.5; input order breaks the tie.
	if results[0].OptionID != "opt-a" {
		t.Errorf("expected opt-a first on tie, got %s", results[0].OptionID)
	}
	if math.Abs(results[0].AverageRank-1.5) > AmountTolerance {
		t.Errorf("expected average rank 1.5, got %.2f", results[0].AverageRank)
	}
	if results[2].OptionID != "opt-c" {
		t.Errorf("expected opt-c last, got %s", results[2].OptionID)
	}
	if math.Abs(results[2].AverageRank-3.0) > AmountTolerance {
		t.Errorf("expected opt-c average 3.0, got %.2f", results[2].AverageRank)
	}
}

func TestTallyRankingsUnrankedSortLast(t *testing.T) {
	options := []models.PollOption{
		{ID: "opt-a", Label: "A"},
		{ID: "opt-b", Label: "B"},
	}
	votes := []models.PollVote{
		{OptionID: "opt-b", UserID: "u1", Rank: intPtr(2)},
	}

	results := tallyRankings(options, votes)

	if results[0].OptionID != "opt-b" {
		t.Errorf("expected ranked option first, got %s", results[0].OptionID)
	}
	if results[1].OptionID != "opt-a" {
		t.Errorf("expected unranked option last, got %s", results[1].OptionID)
	}
	if results[1].AverageRank != 0 {
		t.Errorf("unranked option should report zero average, got %.2f", results[1].AverageRank)
	}
}

func TestTallyDates(t *testing.T) {
	options := []models.PollOption{
		{ID: "jun-1", Label: "June 1"},
		{ID: "jun-8", Label: "June 8"},
		{ID: "jun-15", Label: "June 15"},
	}
	votes := []models.PollVote{
		{OptionID: "jun-1", UserID: "u1", Availability: availPtr(models.AvailabilityAvailable)},
		{OptionID: "jun-1", UserID: "u2", Availability: availPtr(models.AvailabilityUnavailable)},
		{OptionID: "jun-8", UserID: "u1", Availability: availPtr(models.AvailabilityAvailable)},
		{OptionID: "jun-8", UserID: "u2", Availability: availPtr(models.AvailabilityMaybe)},
		{OptionID: "jun-15", UserID: "u1", Availability: availPtr(models.AvailabilityAvailable)},
		{OptionID: "jun-15", UserID: "u2", Availability: availPtr(models.AvailabilityAvailable)},
	}

	results := tallyDates(options, votes)

	if results[0].OptionID != "jun-15" || results[0].Available != 2 {
		t.Errorf("expected jun-15 first with 2 available, got %s with %d", results[0].OptionID, results[0].Available)
	}
	// jun-1 and jun-8 both have one available; jun-8 wins on maybes.
	if results[1].OptionID != "jun-8" {
		t.Errorf("expected jun-8 second, got %s", results[1].OptionID)
	}
	if results[2].Unavailable != 1 {
		t.Errorf("expected jun-1 to report 1 unavailable, got %d", results[2].Unavailable)
	}
}

func newPollFixture(pollType models.PollType) (*mockPollRepo, *mockNotifier, PollService) {
	pollRepo := &mockPollRepo{
		polls: map[string]*models.Poll{
			"poll-1": {
				ID:        "poll-1",
				GroupID:   "group-1",
				Question:  "Where to?",
				Type:      pollType,
				CreatedBy: "alice",
				Options: []models.PollOption{
					{ID: "opt-a", PollID: "poll-1", Label: "A"},
					{ID: "opt-b", PollID: "poll-1", Label: "B"},
				},
			},
		},
	}
	notifier := &mockNotifier{}
	groupRepo := &mockGroupRepo{memberIDs: []string{"alice", "bob", "carol"}}
	s := NewPollService(nil, pollRepo, groupRepo, notifier)
	return pollRepo, notifier, s
}

func TestCastVoteValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown Option Rejected", func(t *testing.T) {
		_, _, s := newPollFixture(models.PollTypeMultipleChoice)

		err := s.CastVote(ctx, "bob", "poll-1", CastVoteRequest{
			Votes: []VoteInput{{OptionID: "opt-z"}},
		})
		if err == nil {
			t.Error("expected error for a vote on a foreign option")
		}
	})

	t.Run("Multiple Choice Accepts Exactly One Vote", func(t *testing.T) {
		_, _, s := newPollFixture(models.PollTypeMultipleChoice)

		err := s.CastVote(ctx, "bob", "poll-1", CastVoteRequest{
			Votes: []VoteInput{{OptionID: "opt-a"}, {OptionID: "opt-b"}},
		})
		if err == nil {
			t.Error("expected error for two votes on a multiple choice poll")
		}
	})

	t.Run("Ranking Requires Every Option", func(t *testing.T) {
		_, _, s := newPollFixture(models.PollTypeRanking)

		err := s.CastVote(ctx, "bob", "poll-1", CastVoteRequest{
			Votes: []VoteInput{{OptionID: "opt-a", Rank: intPtr(1)}},
		})
		if err == nil {
			t.Error("expected error for a partial ranking")
		}
	})

	t.Run("Ranking Requires Distinct Ranks", func(t *testing.T) {
		_, _, s := newPollFixture(models.PollTypeRanking)

		err := s.CastVote(ctx, "bob", "poll-1", CastVoteRequest{
			Votes: []VoteInput{
				{OptionID: "opt-a", Rank: intPtr(1)},
				{OptionID: "opt-b", Rank: intPtr(1)},
			},
		})
		if err == nil {
			t.Error("expected error for duplicate ranks")
		}
	})

	t.Run("Date Vote Requires Valid Availability", func(t *testing.T) {
		_, _, s := newPollFixture(models.PollTypeDatePicker)

		bad := models.Availability("BUSY")
		err := s.CastVote(ctx, "bob", "poll-1", CastVoteRequest{
			Votes: []VoteInput{{OptionID: "opt-a", Availability: &bad}},
		})
		if err == nil {
			t.Error("expected error for an unknown availability value")
		}
	})

	t.Run("Lottery Polls Cannot Be Voted On", func(t *testing.T) {
		_, _, s := newPollFixture(models.PollTypeLottery)

		err := s.CastVote(ctx, "bob", "poll-1", CastVoteRequest{
			Votes: []VoteInput{{OptionID: "opt-a"}},
		})
		if err == nil {
			t.Error("expected error when voting on a lottery poll")
		}
	})

	t.Run("Non-Members Cannot Vote", func(t *testing.T) {
		pollRepo, _, _ := newPollFixture(models.PollTypeMultipleChoice)
		groupRepo := &mockGroupRepo{nonMembers: map[string]bool{"mallory": true}}
		s := NewPollService(nil, pollRepo, groupRepo, &mockNotifier{})

		err := s.CastVote(ctx, "mallory", "poll-1", CastVoteRequest{
			Votes: []VoteInput{{OptionID: "opt-a"}},
		})
		if err == nil {
			t.Error("expected error for a non-member vote")
		}
	})
}

func TestDrawLottery(t *testing.T) {
	ctx := context.Background()

	t.Run("Draw Picks An Option And Notifies", func(t *testing.T) {
		pollRepo, notifier, s := newPollFixture(models.PollTypeLottery)

		result, err := s.DrawLottery(ctx, "bob", "poll-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.OptionID != "opt-a" && result.OptionID != "opt-b" {
			t.Errorf("winner %q is not one of the poll's options", result.OptionID)
		}
		if result.DrawnBy != "bob" {
			t.Errorf("expected drawn_by bob, got %s", result.DrawnBy)
		}
		if pollRepo.createdLottery == nil {
			t.Error("expected the draw to be persisted")
		}
		if len(notifier.sent) != 1 {
			t.Fatalf("expected one notification batch, got %d", len(notifier.sent))
		}
		for _, id := range notifier.sent[0].userIDs {
			if id == "bob" {
				t.Error("the drawer should not be notified about their own draw")
			}
		}
	})

	t.Run("Second Draw Rejected", func(t *testing.T) {
		pollRepo, _, s := newPollFixture(models.PollTypeLottery)
		pollRepo.lottery = &models.LotteryResult{ID: "lot-1", PollID: "poll-1", OptionID: "opt-a", DrawnBy: "alice"}

		if _, err := s.DrawLottery(ctx, "bob", "poll-1"); err == nil {
			t.Error("expected error for a second draw")
		}
	})

	t.Run("Only Lottery Polls Can Be Drawn", func(t *testing.T) {
		_, _, s := newPollFixture(models.PollTypeMultipleChoice)

		if _, err := s.DrawLottery(ctx, "bob", "poll-1"); err == nil {
			t.Error("expected error when drawing a non-lottery poll")
		}
	})
}

func TestGetResultsMultipleChoice(t *testing.T) {
	pollRepo, _, s := newPollFixture(models.PollTypeMultipleChoice)
	pollRepo.votes = []models.PollVote{
		{OptionID: "opt-a", UserID: "u1"},
		{OptionID: "opt-a", UserID: "u2"},
		{OptionID: "opt-b", UserID: "u3"},
	}

	results, err := s.GetResults(context.Background(), "bob", "poll-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.TotalVotes != 3 {
		t.Errorf("expected 3 total votes, got %d", results.TotalVotes)
	}
	if len(results.Choices) != 2 || results.Choices[0].OptionID != "opt-a" {
		t.Errorf("expected opt-a to lead the results, got %+v", results.Choices)
	}
}
