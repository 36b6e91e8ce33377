package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"connectrpc.com/connect"

	"github.com/splitplan/splitplan/internal/middleware"
	"github.com/splitplan/splitplan/internal/models"
	"github.com/splitplan/splitplan/internal/storage"
	"github.com/splitplan/splitplan/internal/storage/sqlite"
	"github.com/splitplan/splitplan/pkg/api"
)

// recordingNotifier captures booked-trip notifications for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	booked []string
}

func (n *recordingNotifier) TripBooked(ctx context.Context, trip *models.Trip, winner *models.Proposal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked = append(n.booked, trip.ID)
}

func (n *recordingNotifier) bookedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.booked)
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitplan-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// newTestAccount inserts an account and returns a context authenticated as it.
func newTestAccount(t *testing.T, store storage.Store, email, name string) (*models.Account, context.Context) {
	t.Helper()

	account := &models.Account{Email: email, Name: name, PasswordHash: "test-hash"}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account, middleware.WithAccount(context.Background(), account.ID, account.Email)
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("error code = %v, want %v (err: %v)", got, code, err)
	}
}

func TestCreateTrip(t *testing.T) {
	store := newTestStore(t)
	svc := NewTripService(store, nil, 5)
	_, ctx := newTestAccount(t, store, "alice@example.com", "Alice")

	t.Run("requires authentication", func(t *testing.T) {
		_, err := svc.CreateTrip(context.Background(), connect.NewRequest(&api.CreateTripRequest{Name: "Trip"}))
		wantCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := svc.CreateTrip(ctx, connect.NewRequest(&api.CreateTripRequest{NumPeople: 2}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("creates trip with organizer and named participants", func(t *testing.T) {
		resp, err := svc.CreateTrip(ctx, connect.NewRequest(&api.CreateTripRequest{
			Name:         "Summer Trip",
			NumPeople:    3,
			Participants: []string{"Bob", "Charlie", "Alice", ""},
		}))
		if err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		trip := resp.Msg.Trip
		if trip.Status != models.StatusPlanning {
			t.Errorf("status = %s, want %s", trip.Status, models.StatusPlanning)
		}
		if trip.BaseCurrency != "EUR" {
			t.Errorf("base currency = %s, want EUR default", trip.BaseCurrency)
		}
		if !resp.Msg.Organizer.Organizer {
			t.Error("expected organizer flag on creator")
		}

		list, err := svc.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{TripID: trip.ID}))
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		// Alice (organizer, deduped from the named list) + Bob + Charlie.
		if len(list.Msg.Participants) != 3 {
			t.Errorf("got %d participants, want 3", len(list.Msg.Participants))
		}
	})

	t.Run("solo trip forces quorum of one", func(t *testing.T) {
		resp, err := svc.CreateTrip(ctx, connect.NewRequest(&api.CreateTripRequest{
			Name:      "Solo Escape",
			TripType:  models.TripTypeSolo,
			NumPeople: 4,
		}))
		if err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if resp.Msg.Trip.NumPeople != 1 {
			t.Errorf("num_people = %d, want 1 for SOLO", resp.Msg.Trip.NumPeople)
		}
	})
}

func TestGetTripAccess(t *testing.T) {
	store := newTestStore(t)
	svc := NewTripService(store, nil, 5)
	_, aliceCtx := newTestAccount(t, store, "alice@example.com", "Alice")
	_, eveCtx := newTestAccount(t, store, "eve@example.com", "Eve")

	created, err := svc.CreateTrip(aliceCtx, connect.NewRequest(&api.CreateTripRequest{
		Name: "Private Trip", NumPeople: 1,
	}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	tripID := created.Msg.Trip.ID

	if _, err := svc.GetTrip(aliceCtx, connect.NewRequest(&api.GetTripRequest{TripID: tripID})); err != nil {
		t.Errorf("participant read failed: %v", err)
	}

	_, err = svc.GetTrip(eveCtx, connect.NewRequest(&api.GetTripRequest{TripID: tripID}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = svc.GetTrip(aliceCtx, connect.NewRequest(&api.GetTripRequest{TripID: "no-such-trip"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestAddAndRemoveParticipants(t *testing.T) {
	store := newTestStore(t)
	svc := NewTripService(store, nil, 5)
	_, aliceCtx := newTestAccount(t, store, "alice@example.com", "Alice")
	bob, bobCtx := newTestAccount(t, store, "bob@example.com", "Bob")

	created, err := svc.CreateTrip(aliceCtx, connect.NewRequest(&api.CreateTripRequest{
		Name: "Group Trip", NumPeople: 2,
	}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	tripID := created.Msg.Trip.ID
	organizerID := created.Msg.Organizer.ID

	// Bob joins via a direct participant row, as an account-linked member.
	err = store.AddParticipants(context.Background(), []*models.Participant{
		{TripID: tripID, Name: "Bob", AccountID: bob.ID, Active: true},
	})
	if err != nil {
		t.Fatalf("AddParticipants failed: %v", err)
	}

	t.Run("non-organizer cannot add", func(t *testing.T) {
		_, err := svc.AddParticipants(bobCtx, connect.NewRequest(&api.AddParticipantsRequest{
			TripID: tripID, Names: []string{"Mallory"},
		}))
		wantCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("organizer adds with name dedup", func(t *testing.T) {
		resp, err := svc.AddParticipants(aliceCtx, connect.NewRequest(&api.AddParticipantsRequest{
			TripID: tripID, Names: []string{"Charlie", "Bob", "Charlie", ""},
		}))
		if err != nil {
			t.Fatalf("AddParticipants failed: %v", err)
		}
		if len(resp.Msg.Participants) != 1 || resp.Msg.Participants[0].Name != "Charlie" {
			t.Errorf("got %+v, want only Charlie added", resp.Msg.Participants)
		}
	})

	t.Run("non-organizer cannot remove", func(t *testing.T) {
		_, err := svc.RemoveParticipant(bobCtx, connect.NewRequest(&api.RemoveParticipantRequest{
			TripID: tripID, ParticipantID: organizerID,
		}))
		wantCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("organizer cannot remove themselves", func(t *testing.T) {
		_, err := svc.RemoveParticipant(aliceCtx, connect.NewRequest(&api.RemoveParticipantRequest{
			TripID: tripID, ParticipantID: organizerID,
		}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("organizer soft-removes a member", func(t *testing.T) {
		list, err := svc.ListParticipants(aliceCtx, connect.NewRequest(&api.ListParticipantsRequest{TripID: tripID}))
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		var bobID string
		for _, p := range list.Msg.Participants {
			if p.Name == "Bob" {
				bobID = p.ID
			}
		}
		if bobID == "" {
			t.Fatal("Bob not found in participants")
		}

		_, err = svc.RemoveParticipant(aliceCtx, connect.NewRequest(&api.RemoveParticipantRequest{
			TripID: tripID, ParticipantID: bobID,
		}))
		if err != nil {
			t.Fatalf("RemoveParticipant failed: %v", err)
		}

		list, err = svc.ListParticipants(aliceCtx, connect.NewRequest(&api.ListParticipantsRequest{TripID: tripID}))
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		for _, p := range list.Msg.Participants {
			if p.Name == "Bob" && p.Active {
				t.Error("expected Bob inactive after removal")
			}
		}
	})
}

func TestReplaceProposals(t *testing.T) {
	store := newTestStore(t)
	svc := NewTripService(store, nil, 5)
	_, ctx := newTestAccount(t, store, "alice@example.com", "Alice")

	created, err := svc.CreateTrip(ctx, connect.NewRequest(&api.CreateTripRequest{
		Name: "Voting Trip", NumPeople: 1,
	}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	tripID := created.Msg.Trip.ID

	t.Run("requires at least one proposal", func(t *testing.T) {
		_, err := svc.ReplaceProposals(ctx, connect.NewRequest(&api.ReplaceProposalsRequest{TripID: tripID}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("requires destinations", func(t *testing.T) {
		_, err := svc.ReplaceProposals(ctx, connect.NewRequest(&api.ReplaceProposalsRequest{
			TripID:    tripID,
			Proposals: []api.ProposalDraft{{Description: "no destination"}},
		}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("stores batch and moves trip to voting", func(t *testing.T) {
		resp, err := svc.ReplaceProposals(ctx, connect.NewRequest(&api.ReplaceProposalsRequest{
			TripID: tripID,
			Proposals: []api.ProposalDraft{
				{Destination: "Kyoto, Japan", DestinationIATA: "KIX", PriceEstimate: 1200},
				{Destination: "Lisbon, Portugal", DestinationIATA: "LIS", PriceEstimate: 800},
			},
		}))
		if err != nil {
			t.Fatalf("ReplaceProposals failed: %v", err)
		}
		if resp.Msg.TripStatus != models.StatusVoting {
			t.Errorf("trip status = %s, want %s", resp.Msg.TripStatus, models.StatusVoting)
		}
		if len(resp.Msg.Proposals) != 2 {
			t.Fatalf("got %d proposals, want 2", len(resp.Msg.Proposals))
		}
		if resp.Msg.Proposals[0].Position != 0 || resp.Msg.Proposals[1].Position != 1 {
			t.Errorf("positions not sequential: %+v", resp.Msg.Proposals)
		}
	})

	t.Run("regeneration replaces the whole batch", func(t *testing.T) {
		list, err := svc.ListProposals(ctx, connect.NewRequest(&api.ListProposalsRequest{TripID: tripID}))
		if err != nil {
			t.Fatalf("ListProposals failed: %v", err)
		}
		first := list.Msg.Proposals[0].ID

		resp, err := svc.ReplaceProposals(ctx, connect.NewRequest(&api.ReplaceProposalsRequest{
			TripID:    tripID,
			Proposals: []api.ProposalDraft{{Destination: "Oslo, Norway"}},
		}))
		if err != nil {
			t.Fatalf("ReplaceProposals failed: %v", err)
		}
		for _, p := range resp.Msg.Proposals {
			if p.ID == first {
				t.Error("prior proposal survived regeneration")
			}
			if p.VoteCount != 0 {
				t.Errorf("fresh proposal carries %d votes", p.VoteCount)
			}
		}
	})
}
