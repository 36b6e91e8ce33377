// Package consensus implements the vote ledger and the decision rule that
// turns independent proposal votes into a single binding choice.
package consensus

import "github.com/splitplan/splitplan/internal/models"

type voteKey struct {
	participantID string
	proposalID    string
}

// Ledger is an in-memory view of all votes cast within one trip. It holds at
// most one score per (participant, proposal) pair; upserting replaces any
// prior score (last write wins, no history).
type Ledger struct {
	votes map[voteKey]int
}

// NewLedger builds a ledger from stored votes. Later duplicates for the same
// (participant, proposal) pair overwrite earlier ones.
func NewLedger(votes []models.Vote) *Ledger {
	l := &Ledger{votes: make(map[voteKey]int, len(votes))}
	for _, v := range votes {
		l.Upsert(v.ParticipantID, v.ProposalID, v.Score)
	}
	return l
}

// Upsert records a vote, replacing any prior vote by the same participant
// for the same proposal.
func (l *Ledger) Upsert(participantID, proposalID string, score int) {
	l.votes[voteKey{participantID, proposalID}] = score
}

// ScoresFor returns all scores cast for the given proposal, one per voter.
// Order is unspecified.
func (l *Ledger) ScoresFor(proposalID string) []int {
	var scores []int
	for k, s := range l.votes {
		if k.proposalID == proposalID {
			scores = append(scores, s)
		}
	}
	return scores
}

// SumFor returns the total score cast for the given proposal. Proposals
// nobody voted on sum to 0.
func (l *Ledger) SumFor(proposalID string) int {
	sum := 0
	for k, s := range l.votes {
		if k.proposalID == proposalID {
			sum += s
		}
	}
	return sum
}

// VotedParticipants returns the set of participants who have cast at least
// one vote on any proposal in the ledger.
func (l *Ledger) VotedParticipants() map[string]bool {
	voters := make(map[string]bool)
	for k := range l.votes {
		voters[k.participantID] = true
	}
	return voters
}
