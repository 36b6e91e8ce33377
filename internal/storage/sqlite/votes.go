package sqlite

import (
	"context"
	"fmt"

	"github.com/splitplan/splitplan/internal/models"
)

// UpsertVote stores a vote. The (participant, proposal) primary key plus the
// ON CONFLICT clause make re-votes last-write-wins with no history.
func (s *SQLiteStore) UpsertVote(ctx context.Context, vote *models.Vote) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO votes (participant_id, proposal_id, score) VALUES (?, ?, ?)
		 ON CONFLICT (participant_id, proposal_id) DO UPDATE SET score = excluded.score`,
		vote.ParticipantID, vote.ProposalID, vote.Score,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

// VotesByTrip returns all votes cast on the trip's proposals.
func (s *SQLiteStore) VotesByTrip(ctx context.Context, tripID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.participant_id, v.proposal_id, v.score
		 FROM votes v JOIN proposals p ON v.proposal_id = p.id
		 WHERE p.trip_id = ?`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	var votes []models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ParticipantID, &v.ProposalID, &v.Score); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return votes, nil
}
