// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitplan/splitplan/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for trip storage operations. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
type Store interface {
	// CreateAccount persists a new account. The ID and CreatedAt fields
	// are populated by the store.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccountByEmail retrieves an account by email.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountByID retrieves an account by ID.
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)

	// CreateTrip persists a trip together with its initial participants
	// (the organizer first) in one transaction.
	CreateTrip(ctx context.Context, trip *models.Trip, participants []*models.Participant) error

	// GetTrip retrieves a trip by ID.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsByAccount returns all trips the account participates in,
	// newest first.
	ListTripsByAccount(ctx context.Context, accountID string) ([]models.Trip, error)

	// CommitWinner atomically records the winning proposal on the trip and
	// flips its status to BOOKED. It is a conditional update keyed on the
	// current status: when the trip is already BOOKED nothing changes and
	// committed is false, which resolves concurrent commit races.
	CommitWinner(ctx context.Context, tripID string, winner *models.Proposal) (committed bool, err error)

	// AddParticipants persists new participants for a trip.
	AddParticipants(ctx context.Context, participants []*models.Participant) error

	// ParticipantsByTrip returns all participants of a trip, active and
	// inactive, in creation order.
	ParticipantsByTrip(ctx context.Context, tripID string) ([]models.Participant, error)

	// ParticipantByAccount returns the trip participant linked to the
	// given account, or ErrNotFound.
	ParticipantByAccount(ctx context.Context, tripID, accountID string) (*models.Participant, error)

	// DeactivateParticipant soft-removes a participant from future
	// consensus and settlement rounds.
	DeactivateParticipant(ctx context.Context, participantID string) error

	// ReplaceProposals deletes all existing proposals for the trip (their
	// votes cascade) and inserts the new batch with sequential positions,
	// moving the trip to VOTING, all in one transaction.
	ReplaceProposals(ctx context.Context, tripID string, proposals []*models.Proposal) error

	// ProposalsByTrip returns a trip's proposals in creation order.
	ProposalsByTrip(ctx context.Context, tripID string) ([]models.Proposal, error)

	// UpsertVote stores a vote, replacing any prior vote by the same
	// participant for the same proposal.
	UpsertVote(ctx context.Context, vote *models.Vote) error

	// VotesByTrip returns all votes cast on the trip's proposals.
	VotesByTrip(ctx context.Context, tripID string) ([]models.Vote, error)

	// CreateExpense persists a new expense. ID and CreatedAt are
	// populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ExpensesByTrip returns a trip's expenses, newest date first.
	ExpensesByTrip(ctx context.Context, tripID string) ([]models.Expense, error)

	// DeleteExpense removes an expense from all future balance
	// computations.
	DeleteExpense(ctx context.Context, expenseID string) error

	// Close releases any resources held by the store.
	Close() error
}
