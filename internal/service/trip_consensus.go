package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/splitplan/splitplan/internal/consensus"
	"github.com/splitplan/splitplan/internal/metrics"
	"github.com/splitplan/splitplan/internal/models"
	"github.com/splitplan/splitplan/pkg/api"
)

func toAPIProposal(p *models.Proposal, ledger *consensus.Ledger) api.Proposal {
	out := api.Proposal{
		ID:              p.ID,
		TripID:          p.TripID,
		Destination:     p.Destination,
		DestinationIATA: p.DestinationIATA,
		Description:     p.Description,
		PriceEstimate:   p.PriceEstimate,
		ImageURL:        p.ImageURL,
		Position:        p.Position,
	}
	if ledger != nil {
		scores := ledger.ScoresFor(p.ID)
		out.VoteCount = len(scores)
		out.ScoreSum = ledger.SumFor(p.ID)
	}
	return out
}

// ReplaceProposals atomically replaces a trip's proposal batch with
// externally generated drafts, discarding all prior proposals and their
// votes, and moves the trip to VOTING. Regenerating after the trip is
// BOOKED is an idempotent no-op.
func (s *TripService) ReplaceProposals(ctx context.Context, req *connect.Request[api.ReplaceProposalsRequest]) (*connect.Response[api.ReplaceProposalsResponse], error) {
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if _, err := requireParticipant(ctx, s.store, trip.ID); err != nil {
		return nil, err
	}

	if trip.Booked() {
		slog.Info("ReplaceProposals ignored, trip already booked", "trip_id", trip.ID)
		return s.listProposalsResponse(ctx, trip)
	}

	if len(req.Msg.Proposals) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("at least one proposal required"))
	}
	proposals := make([]*models.Proposal, len(req.Msg.Proposals))
	for i, draft := range req.Msg.Proposals {
		if draft.Destination == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("proposal %d: destination required", i))
		}
		proposals[i] = &models.Proposal{
			Destination:     draft.Destination,
			DestinationIATA: draft.DestinationIATA,
			Description:     draft.Description,
			PriceEstimate:   draft.PriceEstimate,
			ImageURL:        draft.ImageURL,
		}
	}

	if err := s.store.ReplaceProposals(ctx, trip.ID, proposals); err != nil {
		slog.Error("ReplaceProposals failed", "trip_id", trip.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]api.Proposal, len(proposals))
	for i, p := range proposals {
		out[i] = toAPIProposal(p, nil)
	}
	slog.Info("Proposals replaced", "trip_id", trip.ID, "count", len(proposals))
	return connect.NewResponse(&api.ReplaceProposalsResponse{
		TripStatus: models.StatusVoting,
		Proposals:  out,
	}), nil
}

func (s *TripService) listProposalsResponse(ctx context.Context, trip *models.Trip) (*connect.Response[api.ReplaceProposalsResponse], error) {
	proposals, err := s.store.ProposalsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	votes, err := s.store.VotesByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	ledger := consensus.NewLedger(votes)

	out := make([]api.Proposal, len(proposals))
	for i := range proposals {
		out[i] = toAPIProposal(&proposals[i], ledger)
	}
	return connect.NewResponse(&api.ReplaceProposalsResponse{
		TripStatus: trip.Status,
		Proposals:  out,
	}), nil
}

// ListProposals returns a trip's proposals with their running vote tallies.
func (s *TripService) ListProposals(ctx context.Context, req *connect.Request[api.ListProposalsRequest]) (*connect.Response[api.ListProposalsResponse], error) {
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if _, err := requireParticipant(ctx, s.store, trip.ID); err != nil {
		return nil, err
	}

	resp, err := s.listProposalsResponse(ctx, trip)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ListProposalsResponse{Proposals: resp.Msg.Proposals}), nil
}

// SubmitVote records a vote and re-evaluates consensus. When the vote causes
// quorum to be reached, the winning proposal is committed exactly once: the
// conditional store update arbitrates concurrent submissions, and whichever
// caller loses the race observes the already-booked trip and no-ops.
// Votes arriving after the trip is BOOKED are accepted as no-op successes.
func (s *TripService) SubmitVote(ctx context.Context, req *connect.Request[api.SubmitVoteRequest]) (*connect.Response[api.SubmitVoteResponse], error) {
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	actor, err := requireParticipant(ctx, s.store, trip.ID)
	if err != nil {
		return nil, err
	}

	if req.Msg.Score < 0 || req.Msg.Score > s.maxVoteScore {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("score must be between 0 and %d", s.maxVoteScore))
	}

	participants, err := s.store.ParticipantsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	voter, err := s.resolveVoter(actor, participants, req.Msg.ParticipantID)
	if err != nil {
		return nil, err
	}

	proposals, err := s.store.ProposalsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if !proposalInTrip(proposals, req.Msg.ProposalID) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("proposal not found in trip"))
	}

	eligible := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.Active {
			eligible[p.ID] = true
		}
	}

	if trip.Booked() {
		// Idempotent: late votes succeed without changing the decision.
		votes, err := s.store.VotesByTrip(ctx, trip.ID)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		result := consensus.Evaluate(trip.NumPeople, proposals, consensus.NewLedger(votes), eligible)
		return connect.NewResponse(&api.SubmitVoteResponse{
			TripStatus:        trip.Status,
			VotersCount:       result.Voters,
			RequiredVoters:    trip.NumPeople,
			WinningProposalID: trip.WinningProposalID,
		}), nil
	}

	vote := &models.Vote{
		ParticipantID: voter.ID,
		ProposalID:    req.Msg.ProposalID,
		Score:         req.Msg.Score,
	}
	if err := s.store.UpsertVote(ctx, vote); err != nil {
		slog.Error("UpsertVote failed", "trip_id", trip.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	metrics.VotesSubmitted.Inc()

	votes, err := s.store.VotesByTrip(ctx, trip.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	result := consensus.Evaluate(trip.NumPeople, proposals, consensus.NewLedger(votes), eligible)

	resp := &api.SubmitVoteResponse{
		TripStatus:     result.Status,
		VotersCount:    result.Voters,
		RequiredVoters: trip.NumPeople,
	}

	if result.Status == models.StatusConsensusReached {
		committed, err := s.store.CommitWinner(ctx, trip.ID, result.Winner)
		if err != nil {
			slog.Error("CommitWinner failed", "trip_id", trip.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}

		// Both the commit winner and any racer that lost report the same
		// final state.
		booked, err := s.store.GetTrip(ctx, trip.ID)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		resp.TripStatus = booked.Status
		resp.WinningProposalID = booked.WinningProposalID

		if committed {
			metrics.ConsensusCommits.Inc()
			slog.Info("Consensus reached",
				"trip_id", trip.ID,
				"winner", result.Winner.Destination,
				"voters", result.Voters,
			)
			s.notifier.TripBooked(ctx, booked, result.Winner)
		}
	}

	return connect.NewResponse(resp), nil
}

// resolveVoter determines which participant the vote is cast for. By default
// it is the caller's own participant. The organizer may also cast votes on
// behalf of name-only participants (people without linked accounts); voting
// for anyone else's linked participant is rejected.
func (s *TripService) resolveVoter(actor *models.Participant, participants []models.Participant, participantID string) (*models.Participant, error) {
	if participantID == "" || participantID == actor.ID {
		if !actor.Active {
			return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("participant is no longer active"))
		}
		return actor, nil
	}

	for i := range participants {
		p := &participants[i]
		if p.ID != participantID {
			continue
		}
		if !p.Active {
			return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("participant is no longer active"))
		}
		if p.AccountID == "" && actor.Organizer {
			return p, nil
		}
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("cannot vote for another participant"))
	}
	return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("participant not found in trip"))
}

func proposalInTrip(proposals []models.Proposal, proposalID string) bool {
	for _, p := range proposals {
		if p.ID == proposalID {
			return true
		}
	}
	return false
}
