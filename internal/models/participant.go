package models

// Account represents a registered login identity.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// Email is the login email (unique).
	Email string

	// Name is the display name.
	Name string

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// Participant is a person within one trip. Participants may exist without an
// account (the organizer adds them by name); an account holder who joins a
// trip gets a participant row linked via AccountID.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// TripID is the trip this participant belongs to.
	TripID string

	// Name is the display name within the trip.
	Name string

	// AccountID links to an Account, empty for name-only participants.
	AccountID string

	// Organizer marks the trip creator.
	Organizer bool

	// Active is false for soft-removed participants. Inactive participants
	// are excluded from new consensus and settlement rounds but their
	// stored votes and expenses remain.
	Active bool

	// CreatedAt is the Unix timestamp when the participant was added.
	CreatedAt int64
}
