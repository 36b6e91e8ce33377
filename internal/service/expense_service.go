package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"connectrpc.com/connect"

	"github.com/splitplan/splitplan/internal/currency"
	"github.com/splitplan/splitplan/internal/metrics"
	"github.com/splitplan/splitplan/internal/models"
	"github.com/splitplan/splitplan/internal/settlement"
	"github.com/splitplan/splitplan/internal/storage"
	"github.com/splitplan/splitplan/pkg/api"
)

// ExpenseService implements expense recording and settlement computation.
type ExpenseService struct {
	store     storage.Store
	converter *currency.Converter
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, converter *currency.Converter) *ExpenseService {
	return &ExpenseService{store: store, converter: converter}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:               e.ID,
		TripID:           e.TripID,
		PayerID:          e.PayerID,
		Title:            e.Title,
		Category:         e.Category,
		Amount:           e.Amount,
		Currency:         e.Currency,
		NormalizedAmount: e.NormalizedAmount,
		ExchangeRate:     e.ExchangeRate,
		Converted:        e.Converted,
		Date:             e.Date,
	}
}

// RecordExpense validates, normalizes and stores an expense. When the rate
// table is unavailable the amount is kept unchanged and the stored expense
// carries converted=false so callers know the conversion degraded.
func (s *ExpenseService) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	actor, err := requireParticipant(ctx, s.store, trip.ID)
	if err != nil {
		return nil, err
	}

	if req.Msg.Amount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount must be positive"))
	}
	if req.Msg.Title == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("title required"))
	}

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = actor.ID
	}
	if err := s.checkPayer(ctx, trip.ID, payerID); err != nil {
		return nil, err
	}

	cur := strings.ToUpper(req.Msg.Currency)
	if cur == "" {
		cur = trip.BaseCurrency
	}
	conv := s.converter.ToBase(ctx, req.Msg.Amount, cur, trip.BaseCurrency)

	expense := &models.Expense{
		TripID:           trip.ID,
		PayerID:          payerID,
		Title:            req.Msg.Title,
		Category:         req.Msg.Category,
		Amount:           req.Msg.Amount,
		Currency:         cur,
		NormalizedAmount: conv.Amount,
		ExchangeRate:     conv.Rate,
		Converted:        conv.Converted,
		Date:             req.Msg.Date,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("RecordExpense failed", "trip_id", trip.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	metrics.ExpensesRecorded.Inc()

	slog.Info("Expense recorded",
		"trip_id", trip.ID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"currency", expense.Currency,
		"normalized", expense.NormalizedAmount,
		"converted", expense.Converted,
	)
	return connect.NewResponse(&api.RecordExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

func (s *ExpenseService) checkPayer(ctx context.Context, tripID, payerID string) error {
	participants, err := s.store.ParticipantsByTrip(ctx, tripID)
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}
	for _, p := range participants {
		if p.ID == payerID {
			if !p.Active {
				return connect.NewError(connect.CodePermissionDenied, fmt.Errorf("payer is no longer active"))
			}
			return nil
		}
	}
	return connect.NewError(connect.CodeNotFound, fmt.Errorf("payer not found in trip"))
}

// ListExpenses returns a trip's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if _, err := requireParticipant(ctx, s.store, trip.ID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ExpensesByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	out := make([]api.Expense, len(expenses))
	for i := range expenses {
		out[i] = *toAPIExpense(&expenses[i])
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense from all future balance computations.
// Only the payer or the organizer may delete.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	actor, err := requireParticipant(ctx, s.store, expense.TripID)
	if err != nil {
		return nil, err
	}
	if actor.ID != expense.PayerID && !actor.Organizer {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("only the payer or organizer can delete an expense"))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, notFoundOrInternal(err)
	}
	slog.Info("Expense deleted", "trip_id", expense.TripID, "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ComputeSettlement nets the trip's current expenses into balances and a
// minimal transfer list. The result is derived on demand and never stored.
func (s *ExpenseService) ComputeSettlement(ctx context.Context, req *connect.Request[api.ComputeSettlementRequest]) (*connect.Response[api.ComputeSettlementResponse], error) {
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if _, err := requireParticipant(ctx, s.store, trip.ID); err != nil {
		return nil, err
	}

	participants, err := s.store.ParticipantsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	expenses, err := s.store.ExpensesByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}

	balances := settlement.ComputeBalances(participants, expenses)
	transfers := settlement.Settle(balances)
	metrics.SettlementsComputed.Inc()

	outBalances := make([]api.Balance, 0, len(balances))
	for id, net := range balances {
		outBalances = append(outBalances, api.Balance{
			ParticipantID:   id,
			ParticipantName: names[id],
			Net:             net,
		})
	}
	sort.Slice(outBalances, func(i, j int) bool {
		return outBalances[i].ParticipantName < outBalances[j].ParticipantName
	})

	outTransfers := make([]api.Transfer, len(transfers))
	for i, t := range transfers {
		outTransfers[i] = api.Transfer{
			DebtorID:     t.DebtorID,
			DebtorName:   names[t.DebtorID],
			CreditorID:   t.CreditorID,
			CreditorName: names[t.CreditorID],
			Amount:       t.Amount,
		}
	}

	slog.Info("Settlement computed",
		"trip_id", trip.ID,
		"expenses", len(expenses),
		"transfers", len(outTransfers),
	)
	return connect.NewResponse(&api.ComputeSettlementResponse{
		Balances:  outBalances,
		Transfers: outTransfers,
	}), nil
}
