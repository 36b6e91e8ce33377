package models

// Expense represents money paid by one participant on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// PayerID is the participant who paid.
	PayerID string

	// Title is a short description (e.g. "Dinner", "Taxi").
	Title string

	// Category groups expenses for display (default "General").
	Category string

	// Amount is the amount in the original currency.
	Amount float64

	// Currency is the ISO 4217 code the expense was paid in.
	Currency string

	// NormalizedAmount is Amount converted into the trip's base currency,
	// rounded to 2 decimal places. Balance computations use this value.
	NormalizedAmount float64

	// ExchangeRate is the rate used for normalization: units of Currency
	// per one unit of the base currency. 1 when no conversion was needed.
	ExchangeRate float64

	// Converted is false when the rate table was unavailable and
	// NormalizedAmount degraded to the original Amount unchanged.
	Converted bool

	// Date is the expense date in ISO 8601 format.
	Date string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Transfer is a directed settlement payment from one participant to another.
// Transfers are derived from the current expense set and never persisted.
type Transfer struct {
	// DebtorID owes the money.
	DebtorID string

	// CreditorID receives the money.
	CreditorID string

	// Amount is the payment amount in the trip base currency, rounded to
	// 2 decimal places, always positive.
	Amount float64
}
