package agent_test

import (
	"testing"

	"faircrop/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiateAcceptsAtOrAboveReserve(t *testing.T) {
	d, err := agent.Negotiate("Tomato", 100, "Ernakulam", "Ernakulam", 30, 25)
	require.NoError(t, err)

	assert.Equal(t, agent.DecisionAccepted, d.Status)
	require.NotNil(t, d.FinalPrice)
	assert.Equal(t, 30.0, *d.FinalPrice)
	assert.Nil(t, d.CounterPrice)
	// Same district, so the dispatch floor applies.
	assert.Equal(t, 0.0, d.DistanceKm)
	assert.Equal(t, 50.0, d.DeliveryCost)
	assert.Equal(t, 2950.0, d.NetProfit)
	assert.Contains(t, d.Reasoning, "Accepted")
}

func TestNegotiateCountersAtMidpoint(t *testing.T) {
	d, err := agent.Negotiate("Tomato", 100, "Ernakulam", "Ernakulam", 22, 25)
	require.NoError(t, err)

	// Gap of 12% is within the counter threshold.
	assert.Equal(t, agent.DecisionCounterOffer, d.Status)
	require.NotNil(t, d.CounterPrice)
	assert.Equal(t, 23.5, *d.CounterPrice)
	assert.Nil(t, d.FinalPrice)
	assert.GreaterOrEqual(t, d.DeliveryCost, 50.0)
	assert.InDelta(t, 0.12, d.Gap, 1e-9)
	assert.Contains(t, d.Reasoning, "midpoint")
}

func TestNegotiateCounterThresholdBoundary(t *testing.T) {
	// Exactly 15% below reserve still earns a counter.
	d, err := agent.Negotiate("Tomato", 100, "Ernakulam", "Ernakulam", 21.25, 25)
	require.NoError(t, err)
	assert.Equal(t, agent.DecisionCounterOffer, d.Status)
	require.NotNil(t, d.CounterPrice)
	assert.Equal(t, 23.13, *d.CounterPrice)

	// Just past the threshold is a rejection.
	d, err = agent.Negotiate("Tomato", 100, "Ernakulam", "Ernakulam", 21, 25)
	require.NoError(t, err)
	assert.Equal(t, agent.DecisionRejected, d.Status)
}

func TestNegotiateRejectsLowballOffer(t *testing.T) {
	d, err := agent.Negotiate("Tomato", 100, "Ernakulam", "Ernakulam", 5, 25)
	require.NoError(t, err)

	assert.Equal(t, agent.DecisionRejected, d.Status)
	assert.Nil(t, d.FinalPrice)
	assert.Nil(t, d.CounterPrice)
	assert.InDelta(t, 0.8, d.Gap, 1e-9)
	assert.Contains(t, d.Reasoning, "Rejected")
}

func TestNegotiateRejectsUnprofitableDeal(t *testing.T) {
	// 1 kg above reserve still loses money once the ₹50 dispatch floor
	// applies, so the deal is rejected rather than accepted.
	d, err := agent.Negotiate("Tomato", 1, "Ernakulam", "Ernakulam", 30, 25)
	require.NoError(t, err)

	assert.Equal(t, agent.DecisionRejected, d.Status)
	assert.Equal(t, 50.0, d.DeliveryCost)
	assert.Equal(t, -20.0, d.NetProfit)
}

func TestNegotiateDeliveryScalesWithDistanceAndQuantity(t *testing.T) {
	d, err := agent.Negotiate("Tomato", 1000, "Thiruvananthapuram", "Kasaragod", 30, 25)
	require.NoError(t, err)

	assert.Greater(t, d.DistanceKm, 400.0)
	// distance * 1000 kg * 0.5 / 100 is well above the floor.
	assert.Greater(t, d.DeliveryCost, 2000.0)
}

func TestNegotiateUnknownDistrictsUseFallbackHub(t *testing.T) {
	d, err := agent.Negotiate("Tomato", 100, "Nowhere", "Elsewhere", 30, 25)
	require.NoError(t, err)
	// Both resolve to the central hub, so distance collapses to zero.
	assert.Equal(t, 0.0, d.DistanceKm)
	assert.Equal(t, agent.DecisionAccepted, d.Status)
}

func TestNegotiateValidation(t *testing.T) {
	_, err := agent.Negotiate("Tomato", 0, "Ernakulam", "Ernakulam", 30, 25)
	assert.ErrorIs(t, err, agent.ErrInvalidInput)

	_, err = agent.Negotiate("Tomato", 100, "Ernakulam", "Ernakulam", 0, 25)
	assert.ErrorIs(t, err, agent.ErrInvalidInput)

	_, err = agent.Negotiate("Tomato", 100, "Ernakulam", "Ernakulam", 30, 0)
	assert.ErrorIs(t, err, agent.ErrInvalidInput)
}
