package domain

type AuthorizedDestination struct {
	StationID   string
	StationName string
	Priority    int
	IsDefault   bool
}

type Vehicle struct {
	ID                     int64
	LicensePlate           string
	Capacity               int
	IsActive               bool
	IsAvailable            bool
	DefaultDestinationID   string
	AuthorizedDestinations []AuthorizedDestination
}

// QueueEligible reports whether the vehicle may join any queue at this
// station: it must be active, available, and authorized for at least one
// destination other than the station itself.
func (v *Vehicle) QueueEligible(stationID string) bool {
	if !v.IsActive || !v.IsAvailable {
		return false
	}
	for _, d := range v.AuthorizedDestinations {
		if d.StationID != stationID {
			return true
		}
	}
	return false
}

func (v *Vehicle) AuthorizedFor(destinationID string) bool {
	for _, d := range v.AuthorizedDestinations {
		if d.StationID == destinationID {
			return true
		}
	}
	return false
}
