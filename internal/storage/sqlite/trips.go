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

const tripColumns = `id, name, trip_type, status, num_people, base_currency,
	destination, destination_iata, winning_proposal_id,
	start_date, end_date, budget_per_person, created_at`

// CreateTrip persists a trip and its initial participants in one transaction.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip, participants []*models.Participant) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}
	if trip.Status == "" {
		trip.Status = models.StatusPlanning
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trips (`+tripColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.ID, trip.Name, trip.TripType, trip.Status, trip.NumPeople, trip.BaseCurrency,
		trip.Destination, trip.DestinationIATA, trip.WinningProposalID,
		trip.StartDate, trip.EndDate, trip.BudgetPerPerson, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	for _, p := range participants {
		p.TripID = trip.ID
		if err := insertParticipant(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	err := s.db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = ?`, tripID,
	).Scan(
		&trip.ID, &trip.Name, &trip.TripType, &trip.Status, &trip.NumPeople, &trip.BaseCurrency,
		&trip.Destination, &trip.DestinationIATA, &trip.WinningProposalID,
		&trip.StartDate, &trip.EndDate, &trip.BudgetPerPerson, &trip.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// ListTripsByAccount returns all trips the account participates in.
func (s *SQLiteStore) ListTripsByAccount(ctx context.Context, accountID string) ([]models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips
		 WHERE id IN (SELECT trip_id FROM participants WHERE account_id = ?)
		 ORDER BY created_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		if err := rows.Scan(
			&trip.ID, &trip.Name, &trip.TripType, &trip.Status, &trip.NumPeople, &trip.BaseCurrency,
			&trip.Destination, &trip.DestinationIATA, &trip.WinningProposalID,
			&trip.StartDate, &trip.EndDate, &trip.BudgetPerPerson, &trip.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// CommitWinner records the winning proposal and flips the trip to BOOKED.
// The status guard in the WHERE clause makes concurrent commits race safely:
// exactly one caller observes committed=true, the rest no-op.
func (s *SQLiteStore) CommitWinner(ctx context.Context, tripID string, winner *models.Proposal) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE trips
		 SET winning_proposal_id = ?, destination = ?, destination_iata = ?, status = ?
		 WHERE id = ? AND status != ?`,
		winner.ID, winner.Destination, winner.DestinationIATA, models.StatusBooked,
		tripID, models.StatusBooked,
	)
	if err != nil {
		return false, fmt.Errorf("failed to commit winner: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read commit result: %w", err)
	}
	return affected > 0, nil
}
