package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitplan/splitplan/internal/models"
)

// ReplaceProposals atomically swaps a trip's proposal batch. Prior proposals
// are deleted (votes cascade with them) and the trip moves to VOTING.
func (s *SQLiteStore) ReplaceProposals(ctx context.Context, tripID string, proposals []*models.Proposal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM proposals WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to delete prior proposals: %w", err)
	}

	now := time.Now().Unix()
	for i, p := range proposals {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.TripID = tripID
		p.Position = i
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO proposals (id, trip_id, destination, destination_iata, description,
			 price_estimate, image_url, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.TripID, p.Destination, p.DestinationIATA, p.Description,
			p.PriceEstimate, p.ImageURL, p.Position, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert proposal: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE trips SET status = ? WHERE id = ?", models.StatusVoting, tripID,
	); err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ProposalsByTrip returns a trip's proposals in creation order.
func (s *SQLiteStore) ProposalsByTrip(ctx context.Context, tripID string) ([]models.Proposal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, destination, destination_iata, description,
		 price_estimate, image_url, position, created_at
		 FROM proposals WHERE trip_id = ? ORDER BY position`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.TripID, &p.Destination, &p.DestinationIATA, &p.Description,
			&p.PriceEstimate, &p.ImageURL, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate proposals: %w", err)
	}
	return proposals, nil
}
