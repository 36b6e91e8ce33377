package models

// Proposal is a candidate destination for a trip. Proposals are created in
// batches; regenerating proposals deletes the whole prior batch and its
// votes.
type Proposal struct {
	// ID is the unique identifier for the proposal (UUID format).
	ID string

	// TripID is the trip this proposal belongs to.
	TripID string

	// Destination is the candidate destination label (e.g. "Kyoto, Japan").
	Destination string

	// DestinationIATA is the airport code for flight logistics, may be empty.
	DestinationIATA string

	// Description is the pitch text supplied by the proposal generator.
	Description string

	// PriceEstimate is the estimated total cost for this option.
	PriceEstimate float64

	// ImageURL is an optional illustration, supplied by the generator.
	ImageURL string

	// Position is the creation-order index within the batch, starting at 0.
	// Ties in vote totals are broken by the lowest position.
	Position int

	// CreatedAt is the Unix timestamp when the proposal batch was created.
	CreatedAt int64
}

// Vote is one participant's score for one proposal. At most one vote exists
// per (participant, proposal) pair; re-voting overwrites the score.
type Vote struct {
	ParticipantID string
	ProposalID    string

	// Score is a small non-negative integer. The upper bound is a policy
	// constant validated at the service boundary, not here.
	Score int
}
