package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitplan/splitplan/internal/models"
	"github.com/splitplan/splitplan/internal/storage"
)

func insertParticipant(ctx context.Context, tx *sql.Tx, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO participants (id, trip_id, name, account_id, is_organizer, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TripID, p.Name, p.AccountID, p.Organizer, p.Active, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// AddParticipants persists new participants.
func (s *SQLiteStore) AddParticipants(ctx context.Context, participants []*models.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range participants {
		if err := insertParticipant(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ParticipantsByTrip returns all participants of a trip in creation order.
func (s *SQLiteStore) ParticipantsByTrip(ctx context.Context, tripID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, name, account_id, is_organizer, active, created_at
		 FROM participants WHERE trip_id = ? ORDER BY created_at, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.TripID, &p.Name, &p.AccountID, &p.Organizer, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// ParticipantByAccount returns the trip participant linked to the account.
func (s *SQLiteStore) ParticipantByAccount(ctx context.Context, tripID, accountID string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, name, account_id, is_organizer, active, created_at
		 FROM participants WHERE trip_id = ? AND account_id = ?`,
		tripID, accountID,
	).Scan(&p.ID, &p.TripID, &p.Name, &p.AccountID, &p.Organizer, &p.Active, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("participant: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// DeactivateParticipant soft-removes a participant. The row stays so that
// historical votes and expenses keep resolving.
func (s *SQLiteStore) DeactivateParticipant(ctx context.Context, participantID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET active = 0 WHERE id = ?", participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read deactivate result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	return nil
}
