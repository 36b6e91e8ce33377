package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/splitplan/splitplan/internal/middleware"
	"github.com/splitplan/splitplan/internal/models"
	"github.com/splitplan/splitplan/internal/notify"
	"github.com/splitplan/splitplan/internal/storage"
	"github.com/splitplan/splitplan/pkg/api"
)

// TripService implements trip lifecycle, participants, proposals and the
// vote-to-consensus orchestration.
type TripService struct {
	store        storage.Store
	notifier     notify.Notifier
	maxVoteScore int
}

// NewTripService creates a new TripService. maxVoteScore is the inclusive
// upper bound of the accepted score domain [0, maxVoteScore].
func NewTripService(store storage.Store, notifier notify.Notifier, maxVoteScore int) *TripService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &TripService{
		store:        store,
		notifier:     notifier,
		maxVoteScore: maxVoteScore,
	}
}

func toAPITrip(trip *models.Trip) *api.Trip {
	return &api.Trip{
		ID:                trip.ID,
		Name:              trip.Name,
		TripType:          trip.TripType,
		Status:            trip.Status,
		NumPeople:         trip.NumPeople,
		BaseCurrency:      trip.BaseCurrency,
		Destination:       trip.Destination,
		DestinationIATA:   trip.DestinationIATA,
		WinningProposalID: trip.WinningProposalID,
		StartDate:         trip.StartDate,
		EndDate:           trip.EndDate,
		BudgetPerPerson:   trip.BudgetPerPerson,
		CreatedAt:         trip.CreatedAt,
	}
}

func toAPIParticipant(p *models.Participant) *api.Participant {
	return &api.Participant{
		ID:        p.ID,
		TripID:    p.TripID,
		Name:      p.Name,
		Organizer: p.Organizer,
		Active:    p.Active,
	}
}

// notFoundOrInternal maps storage errors to Connect codes.
func notFoundOrInternal(err error) *connect.Error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// requireParticipant resolves the calling account to its participant in the
// trip. Accounts outside the trip get CodePermissionDenied.
func requireParticipant(ctx context.Context, store storage.Store, tripID string) (*models.Participant, error) {
	accountID := middleware.GetAccountID(ctx)
	if accountID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	participant, err := store.ParticipantByAccount(ctx, tripID, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("not a participant of this trip"))
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return participant, nil
}

// CreateTrip creates a trip with the caller as organizer participant.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	accountID := middleware.GetAccountID(ctx)
	if accountID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("trip name required"))
	}

	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}

	tripType := req.Msg.TripType
	if tripType == "" {
		tripType = models.TripTypeGroup
	}
	numPeople := req.Msg.NumPeople
	if tripType == models.TripTypeSolo {
		numPeople = 1
	}
	if numPeople < 1 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("num_people must be at least 1"))
	}
	baseCurrency := strings.ToUpper(req.Msg.BaseCurrency)
	if baseCurrency == "" {
		baseCurrency = "EUR"
	}

	trip := &models.Trip{
		Name:            req.Msg.Name,
		TripType:        tripType,
		Status:          models.StatusPlanning,
		NumPeople:       numPeople,
		BaseCurrency:    baseCurrency,
		StartDate:       req.Msg.StartDate,
		EndDate:         req.Msg.EndDate,
		BudgetPerPerson: req.Msg.BudgetPerPerson,
	}

	organizer := &models.Participant{
		Name:      account.Name,
		AccountID: account.ID,
		Organizer: true,
		Active:    true,
	}
	participants := []*models.Participant{organizer}
	for _, name := range req.Msg.Participants {
		if name == "" || name == account.Name {
			continue
		}
		participants = append(participants, &models.Participant{Name: name, Active: true})
	}

	if err := s.store.CreateTrip(ctx, trip, participants); err != nil {
		slog.Error("CreateTrip failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Trip created", "trip_id", trip.ID, "num_people", trip.NumPeople)
	return connect.NewResponse(&api.CreateTripResponse{
		Trip:      toAPITrip(trip),
		Organizer: toAPIParticipant(organizer),
	}), nil
}

// GetTrip retrieves a trip. Only participants may read it.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if _, err := requireParticipant(ctx, s.store, trip.ID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetTripResponse{Trip: toAPITrip(trip)}), nil
}

// ListTrips returns the trips the calling account participates in.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	accountID := middleware.GetAccountID(ctx)
	if accountID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}

	trips, err := s.store.ListTripsByAccount(ctx, accountID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]api.Trip, len(trips))
	for i := range trips {
		out[i] = *toAPITrip(&trips[i])
	}
	return connect.NewResponse(&api.ListTripsResponse{Trips: out}), nil
}

// AddParticipants adds named participants to a trip. Organizer only. Names
// already present in the trip are skipped.
func (s *TripService) AddParticipants(ctx context.Context, req *connect.Request[api.AddParticipantsRequest]) (*connect.Response[api.AddParticipantsResponse], error) {
	if _, err := s.store.GetTrip(ctx, req.Msg.TripID); err != nil {
		return nil, notFoundOrInternal(err)
	}
	actor, err := requireParticipant(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}
	if !actor.Organizer {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("only the organizer can add participants"))
	}

	existing, err := s.store.ParticipantsByTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Name] = true
	}

	var added []*models.Participant
	for _, name := range req.Msg.Names {
		if name == "" || known[name] {
			continue
		}
		known[name] = true
		added = append(added, &models.Participant{TripID: req.Msg.TripID, Name: name, Active: true})
	}
	if len(added) > 0 {
		if err := s.store.AddParticipants(ctx, added); err != nil {
			slog.Error("AddParticipants failed", "trip_id", req.Msg.TripID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	out := make([]api.Participant, len(added))
	for i, p := range added {
		out[i] = *toAPIParticipant(p)
	}
	slog.Info("Participants added", "trip_id", req.Msg.TripID, "count", len(added))
	return connect.NewResponse(&api.AddParticipantsResponse{Participants: out}), nil
}

// ListParticipants returns all participants of a trip.
func (s *TripService) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	if _, err := s.store.GetTrip(ctx, req.Msg.TripID); err != nil {
		return nil, notFoundOrInternal(err)
	}
	if _, err := requireParticipant(ctx, s.store, req.Msg.TripID); err != nil {
		return nil, err
	}

	participants, err := s.store.ParticipantsByTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	out := make([]api.Participant, len(participants))
	for i := range participants {
		out[i] = *toAPIParticipant(&participants[i])
	}
	return connect.NewResponse(&api.ListParticipantsResponse{Participants: out}), nil
}

// RemoveParticipant soft-removes a participant. Organizer only; the
// participant's historical votes and expenses remain.
func (s *TripService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	if _, err := s.store.GetTrip(ctx, req.Msg.TripID); err != nil {
		return nil, notFoundOrInternal(err)
	}
	actor, err := requireParticipant(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}
	if !actor.Organizer {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("only the organizer can remove participants"))
	}
	if actor.ID == req.Msg.ParticipantID {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("organizer cannot remove themselves"))
	}

	if err := s.store.DeactivateParticipant(ctx, req.Msg.ParticipantID); err != nil {
		return nil, notFoundOrInternal(err)
	}
	slog.Info("Participant removed", "trip_id", req.Msg.TripID, "participant_id", req.Msg.ParticipantID)
	return connect.NewResponse(&api.RemoveParticipantResponse{}), nil
}
