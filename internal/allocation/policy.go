// Package allocation implements the table allocation policies: seat
// adjustment of raw party sizes, cost computation, and candidate
// selection for shared seating.  Everything here is pure; persistence
// and locking live in the repository and service layers.
package allocation

// Policy identifies the occupancy model a deployment runs with.  The
// two models are mutually exclusive: a table is either wholly owned
// by one reservation (exclusive) or its capacity is split across
// several (shared).
type Policy string

const (
    // PolicyExclusive marks a table fully occupied by a single
    // reservation via the is_reserved flag.
    PolicyExclusive Policy = "exclusive"
    // PolicyShared lets several reservations coexist on one table as
    // long as their seat totals never exceed its capacity.
    PolicyShared Policy = "shared"
)

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
    return p == PolicyExclusive || p == PolicyShared
}

// AdjustSeats normalizes a raw party size into the seat count used
// for table matching.  The two policies round differently:
//
// Exclusive keeps the original rule: parties of four or more fill
// tables as requested, small odd parties are rounded up to the
// smallest standard table size (4), small even parties stay as-is.
//
// Shared rounds any odd party up to the next even count, because its
// candidate pricing rules compare the adjusted size against both
// table capacity and remaining seats.
func AdjustSeats(policy Policy, people int) int {
    if policy == PolicyShared {
        if people%2 == 1 {
            return people + 1
        }
        return people
    }
    if people >= 4 {
        return people
    }
    if people%2 == 1 {
        return 4
    }
    return people
}

// Cost prices a reservation of adjustedSeats on a table of
// tableSeats capacity.  A party that exactly fills its table gets
// the full-table discount of one free seat; everyone else pays per
// allocated seat.
func Cost(adjustedSeats, tableSeats, seatCost int) int {
    if adjustedSeats == tableSeats {
        return (tableSeats - 1) * seatCost
    }
    return adjustedSeats * seatCost
}
