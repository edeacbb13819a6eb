package booking

import (
	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

// Allocate splits a seat request across vehicles greedily, first fit in
// the order given (overnight ahead of regular, position ascending). The
// policy is all or nothing: if the vehicles cannot cover the request, no
// partial allocation is returned.
func Allocate(vehicles []domain.QueueEntry, seatsRequested int) ([]domain.SeatAllocation, error) {
	if seatsRequested <= 0 {
		return nil, domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}

	remaining := seatsRequested
	allocations := make([]domain.SeatAllocation, 0, 1)
	for _, v := range vehicles {
		if remaining == 0 {
			break
		}
		if v.AvailableSeats <= 0 {
			continue
		}
		take := v.AvailableSeats
		if take > remaining {
			take = remaining
		}
		allocations = append(allocations, domain.SeatAllocation{
			QueueID:        v.ID,
			SeatsToBook:    take,
			BasePriceCents: v.BasePriceCents,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, domain.ErrInsufficientSeats
	}
	return allocations, nil
}

// priceCash prices each allocation at the queue entry's base price.
func priceCash(allocations []domain.SeatAllocation) int64 {
	var total int64
	for i := range allocations {
		allocations[i].AmountCents = int64(allocations[i].SeatsToBook) * allocations[i].BasePriceCents
		total += allocations[i].AmountCents
	}
	return total
}

// apportion distributes the central server's authoritative total across
// allocations in proportion to seats booked, correcting rounding by
// largest remainder so the per-vehicle amounts sum exactly to the total.
func apportion(totalCents int64, allocations []domain.SeatAllocation) {
	var seats int
	for _, a := range allocations {
		seats += a.SeatsToBook
	}
	if seats == 0 {
		return
	}

	type rem struct {
		idx int
		rem int64
	}
	var assigned int64
	remainders := make([]rem, 0, len(allocations))
	for i := range allocations {
		share := totalCents * int64(allocations[i].SeatsToBook)
		allocations[i].AmountCents = share / int64(seats)
		assigned += allocations[i].AmountCents
		remainders = append(remainders, rem{idx: i, rem: share % int64(seats)})
	}

	// Hand the leftover cents to the largest remainders, earliest vehicle
	// first on ties.
	for left := totalCents - assigned; left > 0; left-- {
		best := 0
		for j := 1; j < len(remainders); j++ {
			if remainders[j].rem > remainders[best].rem {
				best = j
			}
		}
		allocations[remainders[best].idx].AmountCents++
		remainders[best].rem = -1
	}
}
