package agent_test

import (
	"math"
	"testing"

	"faircrop/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateOffersPicksHighestNetProfit(t *testing.T) {
	offers := []agent.CandidateOffer{
		{BuyerID: "far", BuyerDistrict: "Kasaragod", PricePerKg: 26},
		{BuyerID: "near", BuyerDistrict: "Ernakulam", PricePerKg: 25},
		{BuyerID: "low", BuyerDistrict: "Ernakulam", PricePerKg: 20},
	}

	eval, err := agent.EvaluateOffers("l1", "Ernakulam", 100, offers, nil)
	require.NoError(t, err)
	require.Equal(t, agent.StatusEvaluated, eval.Status)
	require.NotNil(t, eval.BestBuyer)

	// The Kasaragod buyer pays ₹1/kg more but the ~300 km haul at
	// ₹15/km erases far more than the ₹100 price advantage.
	assert.Equal(t, "near", eval.BestBuyer.BuyerID)
	assert.Equal(t, 2500.0, eval.BestBuyer.GrossRevenue)
	assert.Equal(t, 0.0, eval.BestBuyer.DeliveryCost)
	assert.Equal(t, 2500.0, eval.BestBuyer.NetProfit)
	assert.Len(t, eval.Comparisons, 3)
}

func TestEvaluateOffersDistanceBreaksNetProfitTie(t *testing.T) {
	// Construct a remote offer whose higher price exactly covers its
	// delivery cost, so both candidates net the same amount.
	dist := agent.Distance(
		agent.ResolveHub("Ernakulam").Coord,
		agent.ResolveHub("Thrissur").Coord,
	)
	delivery := math.Round(dist*agent.PricePerKm*100) / 100

	offers := []agent.CandidateOffer{
		{BuyerID: "remote", BuyerDistrict: "Thrissur", PricePerKg: (2500 + delivery) / 100},
		{BuyerID: "local", BuyerDistrict: "Ernakulam", PricePerKg: 25},
	}

	eval, err := agent.EvaluateOffers("l1", "Ernakulam", 100, offers, nil)
	require.NoError(t, err)
	require.Equal(t, agent.StatusEvaluated, eval.Status)
	assert.Equal(t, "local", eval.BestBuyer.BuyerID)
	assert.Equal(t, 2500.0, eval.BestBuyer.NetProfit)
}

func TestEvaluateOffersReserveFiltersWinner(t *testing.T) {
	reserve := 24.0
	offers := []agent.CandidateOffer{
		{BuyerID: "high", BuyerDistrict: "Ernakulam", PricePerKg: 26},
		{BuyerID: "below", BuyerDistrict: "Ernakulam", PricePerKg: 23},
	}

	eval, err := agent.EvaluateOffers("l1", "Ernakulam", 100, offers, &reserve)
	require.NoError(t, err)
	require.Equal(t, agent.StatusEvaluated, eval.Status)
	assert.Equal(t, "high", eval.BestBuyer.BuyerID)
	assert.Contains(t, eval.Reasoning, "1 offer(s) below reserve were excluded")

	// The excluded offer still appears in the comparison table.
	require.Len(t, eval.Comparisons, 2)
	for _, c := range eval.Comparisons {
		if c.BuyerID == "below" {
			assert.True(t, c.BelowReserve)
		}
	}
}

func TestEvaluateOffersAllBelowReserve(t *testing.T) {
	reserve := 30.0
	offers := []agent.CandidateOffer{
		{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: 25},
		{BuyerID: "b2", BuyerDistrict: "Ernakulam", PricePerKg: 27},
	}

	eval, err := agent.EvaluateOffers("l1", "Ernakulam", 100, offers, &reserve)
	require.NoError(t, err)
	assert.Equal(t, agent.StatusBelowReserve, eval.Status)
	assert.Nil(t, eval.BestBuyer)
	assert.Contains(t, eval.Reasoning, "₹30.00/kg")
	assert.Contains(t, eval.Reasoning, "₹27.00/kg")
}

func TestEvaluateOffersNoViableOffer(t *testing.T) {
	// 10 kg at ₹5/kg grosses ₹50; the cross-state delivery costs far more.
	offers := []agent.CandidateOffer{
		{BuyerID: "b1", BuyerDistrict: "Kasaragod", PricePerKg: 5},
	}

	eval, err := agent.EvaluateOffers("l1", "Thiruvananthapuram", 10, offers, nil)
	require.NoError(t, err)
	assert.Equal(t, agent.StatusNoViableOffer, eval.Status)
	assert.Nil(t, eval.BestBuyer)
	assert.Contains(t, eval.Reasoning, "positive net profit")
}

func TestEvaluateOffersRunnerUpInReasoning(t *testing.T) {
	offers := []agent.CandidateOffer{
		{BuyerID: "first", BuyerDistrict: "Ernakulam", PricePerKg: 25},
		{BuyerID: "second", BuyerDistrict: "Ernakulam", PricePerKg: 24},
	}

	eval, err := agent.EvaluateOffers("l1", "Ernakulam", 100, offers, nil)
	require.NoError(t, err)
	assert.Contains(t, eval.Reasoning, "Runner-up")
	assert.Contains(t, eval.Reasoning, "second")
	assert.Contains(t, eval.Reasoning, "₹100.00 less")
}

func TestEvaluateOffersValidation(t *testing.T) {
	valid := []agent.CandidateOffer{{BuyerID: "b", BuyerDistrict: "Ernakulam", PricePerKg: 20}}

	_, err := agent.EvaluateOffers("l1", "Ernakulam", 0, valid, nil)
	assert.ErrorIs(t, err, agent.ErrInvalidInput)

	_, err = agent.EvaluateOffers("l1", "Ernakulam", 100, nil, nil)
	assert.ErrorIs(t, err, agent.ErrInvalidInput)

	_, err = agent.EvaluateOffers("l1", "Ernakulam", 100,
		[]agent.CandidateOffer{{BuyerID: "b", PricePerKg: -1}}, nil)
	assert.ErrorIs(t, err, agent.ErrInvalidInput)
}
