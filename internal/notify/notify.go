package notify

import (
	"context"
	"fmt"

	"github.com/n3on404/loauj-local-node-sub001/internal/kafka"
)

// DashboardNotifier renders station events for the staff displays. It is
// the last hop of the fire-and-forget pipeline; a lost update is repaired
// by the next queue_changed for the same destination.
type DashboardNotifier struct{}

func NewDashboardNotifier() *DashboardNotifier {
	return &DashboardNotifier{}
}

func (n *DashboardNotifier) Notify(ctx context.Context, event kafka.StationEvent) error {
	switch event.Type {
	case kafka.EventQueueChanged:
		fmt.Printf("dashboard: queue for %s changed\n", event.DestinationID)
	case kafka.EventBookingCreated:
		fmt.Printf("dashboard: booking %s, %d seat(s) to %s\n", event.VerificationCode, event.SeatsBooked, event.DestinationID)
	case kafka.EventVehicleReady:
		fmt.Printf("dashboard: vehicle %s ready to depart for %s\n", event.LicensePlate, event.DestinationID)
	case kafka.EventOvernightTransfer:
		fmt.Printf("dashboard: %d overnight vehicle(s) moved to the %s queue\n", event.TransferredCount, event.DestinationID)
	default:
		fmt.Printf("dashboard: %s event for %s\n", event.Type, event.DestinationID)
	}
	return nil
}
