package allocation

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const seatCost = 100

func TestChooseSharedNoCandidates(t *testing.T) {
    _, ok := ChooseShared(nil, 2, seatCost)
    assert.False(t, ok)

    // A table with fewer free seats than the raw party is not a candidate.
    _, ok = ChooseShared([]Candidate{{TableID: 1, Seats: 6, AvailableSeats: 2}}, 3, seatCost)
    assert.False(t, ok)
}

func TestChooseSharedExactTableFill(t *testing.T) {
    // A party that exactly fills an empty table gets one seat free.
    got, ok := ChooseShared([]Candidate{{TableID: 1, Seats: 4, AvailableSeats: 4}}, 4, seatCost)
    require.True(t, ok)
    assert.Equal(t, uint64(1), got.TableID)
    assert.Equal(t, 4, got.SeatsToAllocate)
    assert.Equal(t, 300, got.Cost)
}

func TestChooseSharedExactRemainderFill(t *testing.T) {
    // A 7-seat table with 4 seats taken leaves exactly 3; a party of
    // 3 takes the remainder at per-seat pricing, without rounding up.
    got, ok := ChooseShared([]Candidate{{TableID: 2, Seats: 7, AvailableSeats: 3}}, 3, seatCost)
    require.True(t, ok)
    assert.Equal(t, uint64(2), got.TableID)
    assert.Equal(t, 3, got.SeatsToAllocate)
    assert.Equal(t, 300, got.Cost)
}

func TestChooseSharedAdjustedTableFill(t *testing.T) {
    // A party of 3 rounds up to 4; on an empty 4-seat table the
    // adjusted size fills the table, so the discount applies.
    got, ok := ChooseShared([]Candidate{{TableID: 3, Seats: 4, AvailableSeats: 4}}, 3, seatCost)
    require.True(t, ok)
    assert.Equal(t, 4, got.SeatsToAllocate)
    assert.Equal(t, 300, got.Cost)
}

func TestChooseSharedPartialAllocation(t *testing.T) {
    // On a larger table the adjusted size is allocated at full
    // per-seat price.
    got, ok := ChooseShared([]Candidate{{TableID: 4, Seats: 8, AvailableSeats: 8}}, 3, seatCost)
    require.True(t, ok)
    assert.Equal(t, 4, got.SeatsToAllocate)
    assert.Equal(t, 400, got.Cost)
}

func TestChooseSharedPicksCheapest(t *testing.T) {
    cands := []Candidate{
        {TableID: 1, Seats: 8, AvailableSeats: 8}, // 4 seats at 400
        {TableID: 2, Seats: 4, AvailableSeats: 4}, // discount, 300
        {TableID: 3, Seats: 7, AvailableSeats: 3}, // exact remainder, 300
    }
    // Both table 2 and table 3 price at 300; table 3 wins on the
    // tighter remaining fit.
    got, ok := ChooseShared(cands, 3, seatCost)
    require.True(t, ok)
    assert.Equal(t, uint64(3), got.TableID)
    assert.Equal(t, 3, got.SeatsToAllocate)
    assert.Equal(t, 300, got.Cost)
}

func TestChooseSharedTieBreakByAvailability(t *testing.T) {
    cands := []Candidate{
        {TableID: 1, Seats: 10, AvailableSeats: 8},
        {TableID: 2, Seats: 10, AvailableSeats: 6}, // same cost, tighter fit
    }
    got, ok := ChooseShared(cands, 4, seatCost)
    require.True(t, ok)
    assert.Equal(t, uint64(2), got.TableID)
    assert.Equal(t, 400, got.Cost)
}

func TestChooseSharedTieBreakByTableID(t *testing.T) {
    cands := []Candidate{
        {TableID: 9, Seats: 8, AvailableSeats: 6},
        {TableID: 4, Seats: 8, AvailableSeats: 6},
    }
    got, ok := ChooseShared(cands, 2, seatCost)
    require.True(t, ok)
    assert.Equal(t, uint64(4), got.TableID)
}

func TestChooseSharedDeterministic(t *testing.T) {
    cands := []Candidate{
        {TableID: 1, Seats: 4, AvailableSeats: 4},
        {TableID: 2, Seats: 6, AvailableSeats: 6},
        {TableID: 3, Seats: 8, AvailableSeats: 5},
    }
    first, ok := ChooseShared(cands, 5, seatCost)
    require.True(t, ok)
    for i := 0; i < 10; i++ {
        again, ok := ChooseShared(cands, 5, seatCost)
        require.True(t, ok)
        assert.Equal(t, first, again)
    }
}
