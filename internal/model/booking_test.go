package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(startHour, endHour int) Interval {
	day := time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestIntervalOverlaps(t *testing.T) {
	base := iv(10, 16)

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"abutting after", iv(16, 18), false},
		{"abutting before", iv(8, 10), false},
		{"overlapping tail", iv(15, 17), true},
		{"overlapping head", iv(9, 11), true},
		{"contained", iv(11, 12), true},
		{"containing", iv(9, 17), true},
		{"identical", iv(10, 16), true},
		{"disjoint", iv(18, 20), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestIntervalValidAndHours(t *testing.T) {
	assert.True(t, iv(10, 12).Valid())
	assert.False(t, iv(12, 12).Valid())
	assert.False(t, iv(12, 10).Valid())

	half := Interval{Start: iv(10, 0).Start, End: iv(10, 0).Start.Add(90 * time.Minute)}
	assert.InDelta(t, 1.5, half.Hours(), 1e-9)
}

func TestParseBookingStatus(t *testing.T) {
	st, err := ParseBookingStatus(" approved ")
	require.NoError(t, err)
	assert.Equal(t, BookingApproved, st)

	_, err = ParseBookingStatus("CONFIRMED")
	assert.Error(t, err)
	_, err = ParseBookingStatus("")
	assert.Error(t, err)
}

func TestBookingStatusFlags(t *testing.T) {
	for _, s := range BlockingStatuses {
		assert.True(t, s.Blocking(), s)
		assert.False(t, s.Terminal(), s)
	}
	for _, s := range []BookingStatus{BookingRejected, BookingCancelled, BookingCompleted} {
		assert.False(t, s.Blocking(), s)
		assert.True(t, s.Terminal(), s)
	}
}
