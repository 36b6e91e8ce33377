package models

// Trip status values. Transitions are one-directional within this service:
// PLANNING -> VOTING -> BOOKED. CONSENSUS_REACHED is reported to callers at
// the moment quorum is detected but the stored status jumps straight to
// BOOKED once the winner is committed.
const (
	StatusPlanning         = "PLANNING"
	StatusVoting           = "VOTING"
	StatusConsensusReached = "CONSENSUS_REACHED"
	StatusBooked           = "BOOKED"
)

// Trip types.
const (
	TripTypeGroup = "GROUP"
	TripTypeSolo  = "SOLO"
)

// Trip represents one shared trip being planned by a group.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the human-readable trip name.
	Name string

	// TripType is GROUP or SOLO. SOLO trips always have NumPeople = 1.
	TripType string

	// Status is one of the Status* constants above.
	Status string

	// NumPeople is the number of distinct voters required to reach
	// consensus (the quorum).
	NumPeople int

	// BaseCurrency is the ISO 4217 code all expenses are normalized into.
	BaseCurrency string

	// Destination and DestinationIATA are copied from the winning proposal
	// when consensus is committed. Empty until then.
	Destination     string
	DestinationIATA string

	// WinningProposalID is the committed proposal, empty until BOOKED.
	WinningProposalID string

	StartDate       string
	EndDate         string
	BudgetPerPerson float64

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// Booked reports whether the trip has already committed a winning proposal.
func (t *Trip) Booked() bool {
	return t.Status == StatusBooked
}
