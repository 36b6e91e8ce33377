package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"connectrpc.com/connect"

	"github.com/splitplan/splitplan/internal/currency"
	"github.com/splitplan/splitplan/internal/models"
	"github.com/splitplan/splitplan/pkg/api"
)

// stubRates is a fixed-table RateProvider for expense tests.
type stubRates struct {
	rates map[string]float64
	err   error
}

func (p stubRates) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.rates, nil
}

// expenseHarness wires a trip with organizer Alice and name-only Bob and
// Charlie, plus an ExpenseService over the given rate table.
type expenseHarness struct {
	trips    *TripService
	expenses *ExpenseService
	ctx      context.Context
	tripID   string
	ids      map[string]string
}

func newExpenseHarness(t *testing.T, provider currency.RateProvider) *expenseHarness {
	t.Helper()

	store := newTestStore(t)
	trips := NewTripService(store, nil, 5)
	expenses := NewExpenseService(store, currency.NewConverter(provider, 0))
	_, ctx := newTestAccount(t, store, "alice@example.com", "Alice")

	created, err := trips.CreateTrip(ctx, connect.NewRequest(&api.CreateTripRequest{
		Name:         "Expense Trip",
		NumPeople:    3,
		BaseCurrency: "EUR",
		Participants: []string{"Bob", "Charlie"},
	}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	list, err := trips.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{TripID: created.Msg.Trip.ID}))
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	ids := make(map[string]string, len(list.Msg.Participants))
	for _, p := range list.Msg.Participants {
		ids[p.Name] = p.ID
	}

	return &expenseHarness{
		trips:    trips,
		expenses: expenses,
		ctx:      ctx,
		tripID:   created.Msg.Trip.ID,
		ids:      ids,
	}
}

func (h *expenseHarness) record(t *testing.T, payer, title string, amount float64, cur string) *api.Expense {
	t.Helper()
	resp, err := h.expenses.RecordExpense(h.ctx, connect.NewRequest(&api.RecordExpenseRequest{
		TripID:   h.tripID,
		PayerID:  payer,
		Title:    title,
		Amount:   amount,
		Currency: cur,
	}))
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func TestRecordExpense(t *testing.T) {
	h := newExpenseHarness(t, stubRates{rates: map[string]float64{"JPY": 150}})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := h.expenses.RecordExpense(h.ctx, connect.NewRequest(&api.RecordExpenseRequest{
			TripID: h.tripID, Title: "Free lunch", Amount: 0,
		}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		_, err := h.expenses.RecordExpense(h.ctx, connect.NewRequest(&api.RecordExpenseRequest{
			TripID: h.tripID, Amount: 10,
		}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("rejects unknown payer", func(t *testing.T) {
		_, err := h.expenses.RecordExpense(h.ctx, connect.NewRequest(&api.RecordExpenseRequest{
			TripID: h.tripID, PayerID: "no-such-participant", Title: "Taxi", Amount: 10,
		}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("defaults payer to caller and currency to trip base", func(t *testing.T) {
		expense := h.record(t, "", "Dinner", 90, "")
		if expense.PayerID != h.ids["Alice"] {
			t.Errorf("payer = %s, want Alice %s", expense.PayerID, h.ids["Alice"])
		}
		if expense.Currency != "EUR" {
			t.Errorf("currency = %s, want EUR", expense.Currency)
		}
		if !expense.Converted || expense.ExchangeRate != 1 || expense.NormalizedAmount != 90 {
			t.Errorf("same-currency conversion wrong: %+v", expense)
		}
	})

	t.Run("normalizes foreign currency", func(t *testing.T) {
		expense := h.record(t, h.ids["Bob"], "Ryokan", 1500, "JPY")
		if !expense.Converted {
			t.Fatalf("expected converted expense, got %+v", expense)
		}
		if math.Abs(expense.NormalizedAmount-10.0) > 0.01 {
			t.Errorf("normalized = %v, want 10.0", expense.NormalizedAmount)
		}
		if expense.ExchangeRate != 150 {
			t.Errorf("rate = %v, want 150", expense.ExchangeRate)
		}
	})
}

func TestRecordExpenseRateFailureDegrades(t *testing.T) {
	h := newExpenseHarness(t, stubRates{err: errors.New("rate service down")})

	expense := h.record(t, "", "Dinner", 5000, "JPY")
	if expense.Converted {
		t.Fatalf("expected degraded conversion, got %+v", expense)
	}
	if expense.NormalizedAmount != 5000 {
		t.Errorf("normalized = %v, want original 5000", expense.NormalizedAmount)
	}

	// Degraded expenses still feed settlement with their stored amount.
	resp, err := h.expenses.ComputeSettlement(h.ctx, connect.NewRequest(&api.ComputeSettlementRequest{TripID: h.tripID}))
	if err != nil {
		t.Fatalf("ComputeSettlement failed: %v", err)
	}
	var aliceNet float64
	for _, b := range resp.Msg.Balances {
		if b.ParticipantName == "Alice" {
			aliceNet = b.Net
		}
	}
	want := 5000 - 5000.0/3
	if math.Abs(aliceNet-want) > 0.01 {
		t.Errorf("Alice net = %v, want %v", aliceNet, want)
	}
}

func TestDeleteExpensePermissions(t *testing.T) {
	h := newExpenseHarness(t, stubRates{rates: map[string]float64{}})
	store := h.trips.store

	// Dana joins with a linked account so she can call the service herself.
	dana, danaCtx := newTestAccount(t, store, "dana@example.com", "Dana")
	danaParticipant := &models.Participant{TripID: h.tripID, Name: "Dana", AccountID: dana.ID, Active: true}
	if err := store.AddParticipants(context.Background(), []*models.Participant{danaParticipant}); err != nil {
		t.Fatalf("AddParticipants failed: %v", err)
	}

	aliceExpense := h.record(t, "", "Hotel", 300, "")
	danaExpense := h.record(t, danaParticipant.ID, "Taxi", 30, "")

	t.Run("payer cannot delete someone else's expense", func(t *testing.T) {
		_, err := h.expenses.DeleteExpense(danaCtx, connect.NewRequest(&api.DeleteExpenseRequest{
			TripID: h.tripID, ExpenseID: aliceExpense.ID,
		}))
		wantCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("payer deletes own expense", func(t *testing.T) {
		_, err := h.expenses.DeleteExpense(danaCtx, connect.NewRequest(&api.DeleteExpenseRequest{
			TripID: h.tripID, ExpenseID: danaExpense.ID,
		}))
		if err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
	})

	t.Run("organizer deletes any expense", func(t *testing.T) {
		other := h.record(t, h.ids["Charlie"], "Snacks", 12, "")
		_, err := h.expenses.DeleteExpense(h.ctx, connect.NewRequest(&api.DeleteExpenseRequest{
			TripID: h.tripID, ExpenseID: other.ID,
		}))
		if err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}

		list, err := h.expenses.ListExpenses(h.ctx, connect.NewRequest(&api.ListExpensesRequest{TripID: h.tripID}))
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		for _, e := range list.Msg.Expenses {
			if e.ID == other.ID || e.ID == danaExpense.ID {
				t.Errorf("deleted expense %s still listed", e.ID)
			}
		}
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		_, err := h.expenses.DeleteExpense(h.ctx, connect.NewRequest(&api.DeleteExpenseRequest{
			TripID: h.tripID, ExpenseID: danaExpense.ID,
		}))
		wantCode(t, err, connect.CodeNotFound)
	})
}

func TestComputeSettlement(t *testing.T) {
	h := newExpenseHarness(t, stubRates{rates: map[string]float64{"USD": 1.25}})

	// Alice pays 90 EUR, Bob pays 25 USD (20 EUR normalized). Total 110,
	// share 36.67 each: Alice +53.33, Bob -16.67, Charlie -36.67.
	h.record(t, "", "Dinner", 90, "EUR")
	h.record(t, h.ids["Bob"], "Museum", 25, "USD")

	resp, err := h.expenses.ComputeSettlement(h.ctx, connect.NewRequest(&api.ComputeSettlementRequest{TripID: h.tripID}))
	if err != nil {
		t.Fatalf("ComputeSettlement failed: %v", err)
	}

	nets := make(map[string]float64, len(resp.Msg.Balances))
	for _, b := range resp.Msg.Balances {
		nets[b.ParticipantName] = b.Net
	}
	for name, want := range map[string]float64{"Alice": 53.33, "Bob": -16.67, "Charlie": -36.67} {
		if math.Abs(nets[name]-want) > 0.01 {
			t.Errorf("%s net = %v, want %v", name, nets[name], want)
		}
	}

	if len(resp.Msg.Transfers) != 2 {
		t.Fatalf("got %d transfers, want 2", len(resp.Msg.Transfers))
	}
	for _, tr := range resp.Msg.Transfers {
		if tr.CreditorName != "Alice" {
			t.Errorf("transfer creditor = %s, want Alice", tr.CreditorName)
		}
		if tr.Amount <= 0 {
			t.Errorf("non-positive transfer: %+v", tr)
		}
		if tr.DebtorName == "" || tr.DebtorID == "" {
			t.Errorf("transfer missing debtor identity: %+v", tr)
		}
	}
}
