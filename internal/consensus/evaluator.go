package consensus

import (
	"sort"

	"github.com/splitplan/splitplan/internal/models"
)

// Result is the outcome of evaluating a trip's voting state.
type Result struct {
	// Status is StatusVoting while quorum has not been reached, otherwise
	// StatusConsensusReached.
	Status string

	// Winner is the selected proposal, nil while Status is StatusVoting.
	Winner *models.Proposal

	// Voters is the number of distinct eligible participants who have
	// voted on at least one proposal of the trip.
	Voters int
}

// Evaluate decides whether the trip has reached consensus and, if so, which
// proposal won. It is a pure function of its inputs and may be called
// repeatedly; it never mutates the ledger or the proposals.
//
// Quorum is counted per trip: a participant counts once they have voted on
// any proposal, and only participants in eligible (the trip's active
// participants) count. Score sums include every stored vote, so a removed
// participant's historical votes still weigh on the outcome.
//
// Ties on the maximum score sum go to the proposal with the lowest creation
// order, which makes re-evaluation with identical inputs deterministic.
func Evaluate(numPeople int, proposals []models.Proposal, ledger *Ledger, eligible map[string]bool) Result {
	voters := 0
	for id := range ledger.VotedParticipants() {
		if eligible[id] {
			voters++
		}
	}

	if voters < numPeople || len(proposals) == 0 {
		return Result{Status: models.StatusVoting, Voters: voters}
	}

	ordered := make([]models.Proposal, len(proposals))
	copy(ordered, proposals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	// Strict > over creation order: the earliest proposal wins ties.
	winner := 0
	bestSum := ledger.SumFor(ordered[0].ID)
	for i := 1; i < len(ordered); i++ {
		if sum := ledger.SumFor(ordered[i].ID); sum > bestSum {
			bestSum = sum
			winner = i
		}
	}

	return Result{
		Status: models.StatusConsensusReached,
		Winner: &ordered[winner],
		Voters: voters,
	}
}
