package domain

type Route struct {
	DestinationID   string
	DestinationName string
	BasePriceCents  int64
}

// StationContext identifies the local node and carries the per-request
// limits every service needs. It is built once from config and passed to
// constructors; nothing in the engine reads process-wide state.
type StationContext struct {
	StationID          string
	StationName        string
	MaxSeatsPerBooking int
}
