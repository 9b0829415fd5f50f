package agent_test

import (
	"context"
	"errors"
	"testing"

	"faircrop/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	result agent.ExtractedOffer
	err    error
	calls  int
}

func (s *stubExtractor) ExtractOffer(_ context.Context, _ string) (agent.ExtractedOffer, error) {
	s.calls++
	return s.result, s.err
}

type stubGenerator struct {
	message string
	err     error
}

func (s *stubGenerator) NegotiationMessage(_ context.Context, _ agent.NegotiationDecision, _ agent.MessageContext) (string, error) {
	return s.message, s.err
}

func TestOrchestrateAnalyzeOnly(t *testing.T) {
	o := &agent.Orchestrator{Source: tomatoSource("high")}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:     agent.ActionAnalyzeOnly,
		Crop:       "Tomato",
		QuantityKg: 100,
	})

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "analyzed", res.FinalDecision)
	assert.Equal(t, []string{"market_analyst"}, res.Pipeline)
	require.NotNil(t, res.Market)
	assert.Equal(t, 17.0, res.Market.RecommendedReservePrice)
	assert.Nil(t, res.Evaluation)
	assert.Nil(t, res.Negotiation)

	require.Len(t, res.Trace, 1)
	assert.Equal(t, "market_analyst", res.Trace[0].Agent)
	assert.Equal(t, "success", res.Trace[0].Status)
	assert.Contains(t, res.Reasoning, "Market Analyst:")
}

func TestOrchestrateEvaluateOffers(t *testing.T) {
	o := &agent.Orchestrator{Source: tomatoSource("high")}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:         agent.ActionEvaluateOffers,
		ListingID:      "l1",
		Crop:           "Tomato",
		QuantityKg:     100,
		FarmerDistrict: "Ernakulam",
		Offers: []agent.CandidateOffer{
			{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: 20},
		},
	})

	assert.Equal(t, []string{"market_analyst", "negotiator"}, res.Pipeline)
	require.NotNil(t, res.Evaluation)
	assert.Equal(t, agent.StatusEvaluated, res.FinalDecision)
	assert.Equal(t, "l1", res.Evaluation.ListingID)
	// Reasoning joins each stage's rationale.
	assert.Contains(t, res.Reasoning, " | ")
	assert.Contains(t, res.Reasoning, "Negotiator:")
}

func TestOrchestrateNegotiate(t *testing.T) {
	o := &agent.Orchestrator{Source: tomatoSource("high")}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:         agent.ActionNegotiate,
		Crop:           "Tomato",
		QuantityKg:     100,
		FarmerDistrict: "Ernakulam",
		Offers: []agent.CandidateOffer{
			// Reserve is 17.00; 15.50 sits inside the counter window.
			{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: 15.5},
		},
	})

	require.NotNil(t, res.Negotiation)
	assert.Equal(t, agent.DecisionCounterOffer, res.FinalDecision)
	require.NotNil(t, res.Negotiation.CounterPrice)
	assert.Equal(t, 16.25, *res.Negotiation.CounterPrice)
}

func TestOrchestrateNegotiateSkipsWithoutReserve(t *testing.T) {
	o := &agent.Orchestrator{Source: tomatoSource("high")}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:         agent.ActionNegotiate,
		Crop:           "Durian",
		QuantityKg:     100,
		FarmerDistrict: "Ernakulam",
		Offers: []agent.CandidateOffer{
			{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: 20},
		},
	})

	assert.Nil(t, res.Negotiation)
	assert.Equal(t, "incomplete", res.FinalDecision)
	assert.Contains(t, res.Reasoning, "skipped, no reserve price available")
}

func TestOrchestrateFullEvaluationFromRawText(t *testing.T) {
	o := &agent.Orchestrator{Source: tomatoSource("high")}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:  agent.ActionFullEvaluation,
		RawText: "I want to sell 200 kg of tomato from Thrissur",
		Offers: []agent.CandidateOffer{
			{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: 20},
		},
	})

	assert.Equal(t, []string{"listener", "market_analyst", "negotiator"}, res.Pipeline)
	require.NotNil(t, res.Listener)
	assert.Equal(t, "Tomato", res.Listener.Slots.Crop)
	require.NotNil(t, res.Market)
	require.NotNil(t, res.Evaluation)
	assert.Equal(t, agent.StatusEvaluated, res.FinalDecision)
	assert.Contains(t, res.Reasoning, "Listener:")

	for _, step := range res.Trace {
		assert.Equal(t, "success", step.Status, step.Agent)
	}
}

func TestOrchestrateIncompleteWithoutInputs(t *testing.T) {
	o := &agent.Orchestrator{Source: tomatoSource("high")}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action: agent.ActionFullEvaluation,
	})

	assert.Equal(t, "incomplete", res.FinalDecision)
	assert.Empty(t, res.Pipeline)
	assert.Contains(t, res.Reasoning, "missing required fields")
}

func TestOrchestrateExtractorFailureFallsBack(t *testing.T) {
	ext := &stubExtractor{err: errors.New("llm down")}
	o := &agent.Orchestrator{Source: tomatoSource("high"), Extractor: ext}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:  agent.ActionFullEvaluation,
		RawText: "selling 100 kg of tomato from Ernakulam",
		Offers: []agent.CandidateOffer{
			{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: 20},
		},
	})

	assert.Equal(t, 1, ext.calls)
	require.NotNil(t, res.Listener)
	assert.Equal(t, "Tomato", res.Listener.Slots.Crop)
	assert.Equal(t, agent.StatusEvaluated, res.FinalDecision)
}

func TestOrchestrateExtractorFillsMissingSlots(t *testing.T) {
	qty := 300.0
	district := "Wayanad"
	ext := &stubExtractor{result: agent.ExtractedOffer{QuantityKg: &qty, District: &district}}
	o := &agent.Orchestrator{Source: tomatoSource("high"), Extractor: ext}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:  agent.ActionFullEvaluation,
		RawText: "fresh tomato available",
		Offers: []agent.CandidateOffer{
			{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: 20},
		},
	})

	require.NotNil(t, res.Listener)
	require.NotNil(t, res.Listener.Slots.QuantityKg)
	assert.Equal(t, 300.0, *res.Listener.Slots.QuantityKg)
	assert.Equal(t, "Wayanad", res.Listener.Slots.District)
	assert.Equal(t, agent.StatusEvaluated, res.FinalDecision)
}

func TestOrchestrateEvaluationErrorRecordedInTrace(t *testing.T) {
	o := &agent.Orchestrator{Source: tomatoSource("high")}

	res := o.Run(context.Background(), agent.OrchestrateRequest{
		Action:         agent.ActionEvaluateOffers,
		Crop:           "Tomato",
		QuantityKg:     100,
		FarmerDistrict: "Ernakulam",
		Offers: []agent.CandidateOffer{
			{BuyerID: "b1", BuyerDistrict: "Ernakulam", PricePerKg: -5},
		},
	})

	assert.Equal(t, "error", res.FinalDecision)
	require.Len(t, res.Trace, 2)
	assert.Equal(t, "error", res.Trace[1].Status)
	assert.Contains(t, res.Trace[1].Message, "non-positive price")
}
