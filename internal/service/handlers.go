package service

import (
	"net/http"

	"connectrpc.com/connect"
)

// Procedure names, in the Connect "/package.Service/Method" form.
const (
	AccountServicePrefix     = "/splitplan.v1.AccountService/"
	AccountRegisterProcedure = AccountServicePrefix + "Register"
	AccountLoginProcedure    = AccountServicePrefix + "Login"

	TripServicePrefix          = "/splitplan.v1.TripService/"
	TripCreateProcedure        = TripServicePrefix + "CreateTrip"
	TripGetProcedure           = TripServicePrefix + "GetTrip"
	TripListProcedure          = TripServicePrefix + "ListTrips"
	AddParticipantsProcedure   = TripServicePrefix + "AddParticipants"
	ListParticipantsProcedure  = TripServicePrefix + "ListParticipants"
	RemoveParticipantProcedure = TripServicePrefix + "RemoveParticipant"
	ReplaceProposalsProcedure  = TripServicePrefix + "ReplaceProposals"
	ListProposalsProcedure     = TripServicePrefix + "ListProposals"
	SubmitVoteProcedure        = TripServicePrefix + "SubmitVote"

	ExpenseServicePrefix       = "/splitplan.v1.ExpenseService/"
	RecordExpenseProcedure     = ExpenseServicePrefix + "RecordExpense"
	ListExpensesProcedure      = ExpenseServicePrefix + "ListExpenses"
	DeleteExpenseProcedure     = ExpenseServicePrefix + "DeleteExpense"
	ComputeSettlementProcedure = ExpenseServicePrefix + "ComputeSettlement"
)

// NewAccountServiceHandler returns the path prefix and handler for the
// account service.
func NewAccountServiceHandler(svc *AccountService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(AccountRegisterProcedure, connect.NewUnaryHandler(AccountRegisterProcedure, svc.Register, opts...))
	mux.Handle(AccountLoginProcedure, connect.NewUnaryHandler(AccountLoginProcedure, svc.Login, opts...))
	return AccountServicePrefix, mux
}

// NewTripServiceHandler returns the path prefix and handler for the trip
// service.
func NewTripServiceHandler(svc *TripService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(TripCreateProcedure, connect.NewUnaryHandler(TripCreateProcedure, svc.CreateTrip, opts...))
	mux.Handle(TripGetProcedure, connect.NewUnaryHandler(TripGetProcedure, svc.GetTrip, opts...))
	mux.Handle(TripListProcedure, connect.NewUnaryHandler(TripListProcedure, svc.ListTrips, opts...))
	mux.Handle(AddParticipantsProcedure, connect.NewUnaryHandler(AddParticipantsProcedure, svc.AddParticipants, opts...))
	mux.Handle(ListParticipantsProcedure, connect.NewUnaryHandler(ListParticipantsProcedure, svc.ListParticipants, opts...))
	mux.Handle(RemoveParticipantProcedure, connect.NewUnaryHandler(RemoveParticipantProcedure, svc.RemoveParticipant, opts...))
	mux.Handle(ReplaceProposalsProcedure, connect.NewUnaryHandler(ReplaceProposalsProcedure, svc.ReplaceProposals, opts...))
	mux.Handle(ListProposalsProcedure, connect.NewUnaryHandler(ListProposalsProcedure, svc.ListProposals, opts...))
	mux.Handle(SubmitVoteProcedure, connect.NewUnaryHandler(SubmitVoteProcedure, svc.SubmitVote, opts...))
	return TripServicePrefix, mux
}

// NewExpenseServiceHandler returns the path prefix and handler for the
// expense service.
func NewExpenseServiceHandler(svc *ExpenseService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(RecordExpenseProcedure, connect.NewUnaryHandler(RecordExpenseProcedure, svc.RecordExpense, opts...))
	mux.Handle(ListExpensesProcedure, connect.NewUnaryHandler(ListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(DeleteExpenseProcedure, connect.NewUnaryHandler(DeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ComputeSettlementProcedure, connect.NewUnaryHandler(ComputeSettlementProcedure, svc.ComputeSettlement, opts...))
	return ExpenseServicePrefix, mux
}
