package agent_test

import (
	"testing"

	"faircrop/agent"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	p := agent.Coordinate{Lat: 9.9816, Lon: 76.2999}
	assert.Equal(t, 0.0, agent.Distance(p, p))
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	a := agent.Coordinate{Lat: 0, Lon: 76}
	b := agent.Coordinate{Lat: 1, Lon: 76}
	// 2*pi*6371/360, rounded to 2 decimal places.
	assert.Equal(t, 111.19, agent.Distance(a, b))
}

func TestDistanceSymmetric(t *testing.T) {
	a := agent.ResolveHub("Thiruvananthapuram").Coord
	b := agent.ResolveHub("Kasaragod").Coord
	assert.Equal(t, agent.Distance(a, b), agent.Distance(b, a))
}

func TestDistanceAcrossState(t *testing.T) {
	d := agent.Distance(
		agent.ResolveHub("Thiruvananthapuram").Coord,
		agent.ResolveHub("Kasaragod").Coord,
	)
	// Roughly the length of Kerala.
	assert.Greater(t, d, 400.0)
	assert.Less(t, d, 600.0)
}

func TestDistanceToleratesOutOfRangeCoordinates(t *testing.T) {
	d := agent.Distance(
		agent.Coordinate{Lat: 95, Lon: 200},
		agent.Coordinate{Lat: -95, Lon: -200},
	)
	assert.False(t, d < 0)
}
