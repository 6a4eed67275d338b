package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocation_DistanceKm(t *testing.T) {
	alexandria := NewLocation(31.2001, 29.9187)
	cairo := NewLocation(30.0444, 31.2357)

	t.Run("distance to self is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, alexandria.DistanceKm(alexandria))
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		assert.InDelta(t, alexandria.DistanceKm(cairo), cairo.DistanceKm(alexandria), 1e-9)
	})

	t.Run("known distance between cities", func(t *testing.T) {
		// Alexandria to Cairo is roughly 180 km great-circle.
		d := alexandria.DistanceKm(cairo)
		assert.InDelta(t, 180, d, 5)
	})

	t.Run("short distance within a city", func(t *testing.T) {
		a := NewLocation(31.2001, 29.9187)
		b := NewLocation(31.2101, 29.9187)
		assert.InDelta(t, 1.112, a.DistanceKm(b), 0.01)
	})
}

func TestLocation_EstimateTravelMinutes(t *testing.T) {
	t.Run("zero distance keeps the loading buffer", func(t *testing.T) {
		loc := NewLocation(31.2, 29.9)
		assert.Equal(t, 5, loc.EstimateTravelMinutes(loc))
	})

	t.Run("estimate scales with distance", func(t *testing.T) {
		// ~20 km at 40 km/h is 30 minutes plus the 5 minute buffer.
		a := NewLocation(31.0, 29.9)
		b := NewLocation(31.18, 29.9)
		mins := a.EstimateTravelMinutes(b)
		assert.InDelta(t, 35, mins, 2)
	})
}

func TestLocation_IsZero(t *testing.T) {
	assert.True(t, Location{}.IsZero())
	assert.False(t, NewLocation(31.2, 29.9).IsZero())
}
