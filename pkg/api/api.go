// Package api defines the request and response messages for the SplitPlan
// Connect services. The services run with a JSON codec, so these are plain
// structs rather than generated protobuf types.
package api

// Account is the public view of a registered account.
type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Trip is the public view of a trip.
type Trip struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	TripType          string  `json:"trip_type"`
	Status            string  `json:"status"`
	NumPeople         int     `json:"num_people"`
	BaseCurrency      string  `json:"base_currency"`
	Destination       string  `json:"destination,omitempty"`
	DestinationIATA   string  `json:"destination_iata,omitempty"`
	WinningProposalID string  `json:"winning_proposal_id,omitempty"`
	StartDate         string  `json:"start_date,omitempty"`
	EndDate           string  `json:"end_date,omitempty"`
	BudgetPerPerson   float64 `json:"budget_per_person,omitempty"`
	CreatedAt         int64   `json:"created_at"`
}

// Participant is the public view of a trip participant.
type Participant struct {
	ID        string `json:"id"`
	TripID    string `json:"trip_id"`
	Name      string `json:"name"`
	Organizer bool   `json:"organizer"`
	Active    bool   `json:"active"`
}

// Proposal is the public view of a proposal, including its running tally.
type Proposal struct {
	ID              string  `json:"id"`
	TripID          string  `json:"trip_id"`
	Destination     string  `json:"destination"`
	DestinationIATA string  `json:"destination_iata,omitempty"`
	Description     string  `json:"description"`
	PriceEstimate   float64 `json:"price_estimate"`
	ImageURL        string  `json:"image_url,omitempty"`
	Position        int     `json:"position"`
	VoteCount       int     `json:"vote_count"`
	ScoreSum        int     `json:"score_sum"`
}

// ProposalDraft is the input for one proposal in a regeneration batch. The
// drafts come from an external generator; this service only stores them.
type ProposalDraft struct {
	Destination     string  `json:"destination"`
	DestinationIATA string  `json:"destination_iata,omitempty"`
	Description     string  `json:"description"`
	PriceEstimate   float64 `json:"price_estimate"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// Expense is the public view of an expense.
type Expense struct {
	ID               string  `json:"id"`
	TripID           string  `json:"trip_id"`
	PayerID          string  `json:"payer_id"`
	Title            string  `json:"title"`
	Category         string  `json:"category"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	NormalizedAmount float64 `json:"normalized_amount"`
	ExchangeRate     float64 `json:"exchange_rate"`
	Converted        bool    `json:"converted"`
	Date             string  `json:"date"`
}

// Balance is one participant's net position in the trip base currency.
type Balance struct {
	ParticipantID   string  `json:"participant_id"`
	ParticipantName string  `json:"participant_name"`
	Net             float64 `json:"net"`
}

// Transfer is one settlement payment.
type Transfer struct {
	DebtorID     string  `json:"debtor_id"`
	DebtorName   string  `json:"debtor_name"`
	CreditorID   string  `json:"creditor_id"`
	CreditorName string  `json:"creditor_name"`
	Amount       float64 `json:"amount"`
}

// --- AccountService ---

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}

// --- TripService ---

type CreateTripRequest struct {
	Name            string   `json:"name"`
	TripType        string   `json:"trip_type"`
	NumPeople       int      `json:"num_people"`
	BaseCurrency    string   `json:"base_currency"`
	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	BudgetPerPerson float64  `json:"budget_per_person,omitempty"`
	Participants    []string `json:"participants,omitempty"`
}

type CreateTripResponse struct {
	Trip      *Trip        `json:"trip"`
	Organizer *Participant `json:"organizer"`
}

type GetTripRequest struct {
	TripID string `json:"trip_id"`
}

type GetTripResponse struct {
	Trip *Trip `json:"trip"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []Trip `json:"trips"`
}

type AddParticipantsRequest struct {
	TripID string   `json:"trip_id"`
	Names  []string `json:"names"`
}

type AddParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}

type ListParticipantsRequest struct {
	TripID string `json:"trip_id"`
}

type ListParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}

type RemoveParticipantRequest struct {
	TripID        string `json:"trip_id"`
	ParticipantID string `json:"participant_id"`
}

type RemoveParticipantResponse struct{}

type ReplaceProposalsRequest struct {
	TripID    string          `json:"trip_id"`
	Proposals []ProposalDraft `json:"proposals"`
}

type ReplaceProposalsResponse struct {
	TripStatus string     `json:"trip_status"`
	Proposals  []Proposal `json:"proposals"`
}

type ListProposalsRequest struct {
	TripID string `json:"trip_id"`
}

type ListProposalsResponse struct {
	Proposals []Proposal `json:"proposals"`
}

type SubmitVoteRequest struct {
	TripID        string `json:"trip_id"`
	ParticipantID string `json:"participant_id"`
	ProposalID    string `json:"proposal_id"`
	Score         int    `json:"score"`
}

type SubmitVoteResponse struct {
	TripStatus        string `json:"trip_status"`
	VotersCount       int    `json:"votes_count"`
	RequiredVoters    int    `json:"required"`
	WinningProposalID string `json:"winning_proposal_id,omitempty"`
}

// --- ExpenseService ---

type RecordExpenseRequest struct {
	TripID   string  `json:"trip_id"`
	PayerID  string  `json:"payer_id"`
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Date     string  `json:"date,omitempty"`
}

type RecordExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	TripID string `json:"trip_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	TripID    string `json:"trip_id"`
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ComputeSettlementRequest struct {
	TripID string `json:"trip_id"`
}

type ComputeSettlementResponse struct {
	Balances  []Balance  `json:"balances"`
	Transfers []Transfer `json:"transfers"`
}
