package allocation

// Candidate is a table as seen by the shared-seating selector:
// its fixed capacity and the seats still unclaimed by active
// reservations.
type Candidate struct {
    TableID        uint64
    Seats          int
    AvailableSeats int
}

// Allocation is the outcome of shared-seating selection: the chosen
// table, how many seats to record on the reservation, and the price.
type Allocation struct {
    TableID         uint64
    TableSeats      int
    SeatsToAllocate int
    Cost            int
}

// evaluate prices a single candidate for a party of people with the
// given adjusted size.  Rules are tried in priority order; the first
// match wins.  A candidate that cannot seat the raw party, or that
// matches no rule, is rejected.
func evaluate(c Candidate, people, adjusted, seatCost int) (seats, cost int, ok bool) {
    if c.AvailableSeats < people {
        return 0, 0, false
    }
    switch {
    case c.Seats == people:
        // Party exactly fills the whole table: full-table discount.
        return people, (people - 1) * seatCost, true
    case c.AvailableSeats == people:
        // Party exactly fills what is left: per-seat pricing, no
        // rounding waste.
        return people, people * seatCost, true
    case c.Seats == adjusted:
        // Adjusted size fills the whole table: discount at the
        // adjusted size.
        return adjusted, (adjusted - 1) * seatCost, true
    case c.AvailableSeats >= adjusted:
        return adjusted, adjusted * seatCost, true
    }
    return 0, 0, false
}

// ChooseShared picks the cheapest valid allocation for a party of
// people across the given candidates.  Ties on cost are broken by
// the tightest remaining fit (lowest available seats), then by table
// ID so that selection is deterministic for a fixed pool state.  The
// boolean result is false when no table can host the party.
func ChooseShared(cands []Candidate, people, seatCost int) (Allocation, bool) {
    adjusted := AdjustSeats(PolicyShared, people)
    var (
        best      Allocation
        bestAvail int
        found     bool
    )
    for _, c := range cands {
        seats, cost, ok := evaluate(c, people, adjusted, seatCost)
        if !ok {
            continue
        }
        better := !found ||
            cost < best.Cost ||
            (cost == best.Cost && c.AvailableSeats < bestAvail) ||
            (cost == best.Cost && c.AvailableSeats == bestAvail && c.TableID < best.TableID)
        if better {
            best = Allocation{
                TableID:         c.TableID,
                TableSeats:      c.Seats,
                SeatsToAllocate: seats,
                Cost:            cost,
            }
            bestAvail = c.AvailableSeats
            found = true
        }
    }
    return best, found
}
