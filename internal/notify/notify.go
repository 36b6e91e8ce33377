// Package notify defines the hook fired when a trip books its destination.
package notify

import (
	"context"
	"log/slog"

	"github.com/splitplan/splitplan/internal/models"
)

// Notifier is invoked exactly once per trip, at the moment its winning
// proposal is committed and the trip transitions to BOOKED. Implementations
// trigger downstream work such as itinerary generation; this service never
// generates that content itself.
type Notifier interface {
	TripBooked(ctx context.Context, trip *models.Trip, winner *models.Proposal)
}

// LogNotifier is the default Notifier; it only records the transition.
type LogNotifier struct{}

// TripBooked logs the commit.
func (LogNotifier) TripBooked(ctx context.Context, trip *models.Trip, winner *models.Proposal) {
	slog.Info("Trip booked",
		"trip_id", trip.ID,
		"destination", winner.Destination,
		"proposal_id", winner.ID,
	)
}
