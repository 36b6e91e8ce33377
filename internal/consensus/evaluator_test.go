package consensus

import (
	"testing"

	"github.com/splitplan/splitplan/internal/models"
)

func proposalSet(n int) []models.Proposal {
	proposals := make([]models.Proposal, n)
	for i := range proposals {
		proposals[i] = models.Proposal{
			ID:       string(rune('a' + i)),
			Position: i,
		}
	}
	return proposals
}

func eligibleSet(ids ...string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		numPeople  int
		proposals  []models.Proposal
		votes      []models.Vote
		eligible   map[string]bool
		wantStatus string
		wantWinner string
		wantVoters int
	}{
		{
			name:       "no votes stays voting",
			numPeople:  3,
			proposals:  proposalSet(3),
			eligible:   eligibleSet("p1", "p2", "p3"),
			wantStatus: models.StatusVoting,
			wantVoters: 0,
		},
		{
			name:      "below quorum stays voting",
			numPeople: 3,
			proposals: proposalSet(3),
			votes: []models.Vote{
				{ParticipantID: "p1", ProposalID: "a", Score: 1},
				{ParticipantID: "p2", ProposalID: "b", Score: 1},
			},
			eligible:   eligibleSet("p1", "p2", "p3"),
			wantStatus: models.StatusVoting,
			wantVoters: 2,
		},
		{
			name:      "quorum met selects highest sum",
			numPeople: 3,
			proposals: proposalSet(3),
			votes: []models.Vote{
				{ParticipantID: "p1", ProposalID: "a", Score: 1},
				{ParticipantID: "p2", ProposalID: "b", Score: 2},
				{ParticipantID: "p3", ProposalID: "b", Score: 1},
			},
			eligible:   eligibleSet("p1", "p2", "p3"),
			wantStatus: models.StatusConsensusReached,
			wantWinner: "b",
			wantVoters: 3,
		},
		{
			name:      "tie goes to earliest created",
			numPeople: 2,
			proposals: proposalSet(3),
			votes: []models.Vote{
				{ParticipantID: "p1", ProposalID: "b", Score: 2},
				{ParticipantID: "p2", ProposalID: "a", Score: 2},
				{ParticipantID: "p2", ProposalID: "c", Score: 1},
			},
			eligible:   eligibleSet("p1", "p2"),
			wantStatus: models.StatusConsensusReached,
			wantWinner: "a",
			wantVoters: 2,
		},
		{
			name:      "multi-proposal voter counts once toward quorum",
			numPeople: 2,
			proposals: proposalSet(2),
			votes: []models.Vote{
				{ParticipantID: "p1", ProposalID: "a", Score: 1},
				{ParticipantID: "p1", ProposalID: "b", Score: 1},
			},
			eligible:   eligibleSet("p1", "p2"),
			wantStatus: models.StatusVoting,
			wantVoters: 1,
		},
		{
			name:      "inactive voter does not count toward quorum",
			numPeople: 2,
			proposals: proposalSet(2),
			votes: []models.Vote{
				{ParticipantID: "p1", ProposalID: "a", Score: 1},
				{ParticipantID: "gone", ProposalID: "a", Score: 1},
			},
			eligible:   eligibleSet("p1", "p2"),
			wantStatus: models.StatusVoting,
			wantVoters: 1,
		},
		{
			name:      "inactive voter scores still count in sums",
			numPeople: 2,
			proposals: proposalSet(2),
			votes: []models.Vote{
				{ParticipantID: "p1", ProposalID: "a", Score: 1},
				{ParticipantID: "p2", ProposalID: "a", Score: 1},
				{ParticipantID: "gone", ProposalID: "b", Score: 5},
			},
			eligible:   eligibleSet("p1", "p2"),
			wantStatus: models.StatusConsensusReached,
			wantWinner: "b",
			wantVoters: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.numPeople, tt.proposals, NewLedger(tt.votes), tt.eligible)
			if result.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", result.Status, tt.wantStatus)
			}
			if result.Voters != tt.wantVoters {
				t.Errorf("voters = %v, want %v", result.Voters, tt.wantVoters)
			}
			if tt.wantWinner == "" {
				if result.Winner != nil {
					t.Errorf("winner = %v, want nil", result.Winner.ID)
				}
			} else if result.Winner == nil || result.Winner.ID != tt.wantWinner {
				t.Errorf("winner = %v, want %v", result.Winner, tt.wantWinner)
			}
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	proposals := proposalSet(3)
	votes := []models.Vote{
		{ParticipantID: "p1", ProposalID: "c", Score: 2},
		{ParticipantID: "p2", ProposalID: "b", Score: 2},
	}
	eligible := eligibleSet("p1", "p2")

	first := Evaluate(2, proposals, NewLedger(votes), eligible)
	for i := 0; i < 50; i++ {
		again := Evaluate(2, proposals, NewLedger(votes), eligible)
		if again.Status != first.Status || again.Winner.ID != first.Winner.ID {
			t.Fatalf("evaluation %d diverged: got %v/%v, want %v/%v",
				i, again.Status, again.Winner.ID, first.Status, first.Winner.ID)
		}
	}
	if first.Winner.ID != "b" {
		t.Errorf("winner = %v, want b (earlier position wins the tie)", first.Winner.ID)
	}
}

func TestLedgerUpsert(t *testing.T) {
	ledger := NewLedger(nil)
	ledger.Upsert("p1", "a", 1)
	ledger.Upsert("p1", "a", 4)

	scores := ledger.ScoresFor("a")
	if len(scores) != 1 {
		t.Fatalf("expected one stored vote, got %d", len(scores))
	}
	if scores[0] != 4 {
		t.Errorf("score = %d, want 4 (last write wins)", scores[0])
	}
	if voters := ledger.VotedParticipants(); len(voters) != 1 {
		t.Errorf("voters = %d, want 1", len(voters))
	}
}
