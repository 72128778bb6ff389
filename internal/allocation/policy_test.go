package allocation

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestPolicyValid(t *testing.T) {
    assert.True(t, PolicyExclusive.Valid())
    assert.True(t, PolicyShared.Valid())
    assert.False(t, Policy("").Valid())
    assert.False(t, Policy("EXCLUSIVE").Valid())
}

func TestAdjustSeatsExclusive(t *testing.T) {
    cases := []struct {
        people, want int
    }{
        {1, 4},  // small odd party rounds up to a standard table
        {2, 2},  // small even party stays as-is
        {3, 4},  // small odd party rounds up
        {4, 4},  // four and above keep the raw size
        {5, 5},
        {7, 7},
        {11, 11},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, AdjustSeats(PolicyExclusive, tc.people), "people=%d", tc.people)
    }
}

func TestAdjustSeatsShared(t *testing.T) {
    cases := []struct {
        people, want int
    }{
        {1, 2}, // any odd party rounds up to the next even count
        {2, 2},
        {3, 4},
        {4, 4},
        {5, 6},
        {6, 6},
        {7, 8},
        {11, 12},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, AdjustSeats(PolicyShared, tc.people), "people=%d", tc.people)
    }
}

func TestCost(t *testing.T) {
    const seatCost = 100

    // Exact fill earns the full-table discount of one free seat.
    assert.Equal(t, 300, Cost(4, 4, seatCost))
    assert.Equal(t, 700, Cost(8, 8, seatCost))
    assert.Equal(t, 0, Cost(1, 1, seatCost))

    // Otherwise pricing is per allocated seat.
    assert.Equal(t, 400, Cost(4, 6, seatCost))
    assert.Equal(t, 200, Cost(2, 4, seatCost))

    // The configured seat cost scales linearly.
    assert.Equal(t, 150, Cost(4, 4, 50))
    assert.Equal(t, 200, Cost(4, 6, 50))
}
