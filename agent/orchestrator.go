package agent

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Supported orchestration actions.
const (
	ActionAnalyzeOnly    = "analyze_only"
	ActionEvaluateOffers = "evaluate_offers"
	ActionNegotiate      = "negotiate"
	ActionFullEvaluation = "full_evaluation"
)

// Extractor is the external text-understanding collaborator. It may be
// slow or unavailable; callers always keep a deterministic fallback.
type Extractor interface {
	ExtractOffer(ctx context.Context, buyerText string) (ExtractedOffer, error)
}

// MessageContext is the numeric context handed to the message generator.
// The generator only renders it; it never computes or alters a number.
type MessageContext struct {
	Crop             string   `json:"crop"`
	QuantityKg       float64  `json:"quantity"`
	FarmerDistrict   string   `json:"farmerDistrict"`
	BuyerDistrict    string   `json:"buyerDistrict"`
	BuyerOffer       float64  `json:"buyerOffer"`
	DeliveryCost     float64  `json:"deliveryCost"`
	NetProfitOffer   float64  `json:"netProfitAtOffer"`
	NetProfitCounter *float64 `json:"netProfitAtCounter,omitempty"`
	ReservePrice     float64  `json:"reservePrice"`
	RoundNumber      int      `json:"roundNumber"`
}

// MessageGenerator turns a decision into display text. A failure here
// must never prevent returning the decision itself.
type MessageGenerator interface {
	NegotiationMessage(ctx context.Context, decision NegotiationDecision, mctx MessageContext) (string, error)
}

// PipelineStep is one trace entry for an orchestrated stage.
type PipelineStep struct {
	Agent      string  `json:"agent"`
	Status     string  `json:"status"` // success | error
	DurationMs float64 `json:"durationMs"`
	Message    string  `json:"message"`
}

// OrchestrateRequest names an action and supplies whatever structured
// inputs the caller already has. For full_evaluation, missing fields may
// be filled from RawText by the listener stage.
type OrchestrateRequest struct {
	Action         string           `json:"action"`
	ListingID      string           `json:"listingId,omitempty"`
	Crop           string           `json:"crop,omitempty"`
	QuantityKg     float64          `json:"quantity,omitempty"`
	FarmerDistrict string           `json:"farmerDistrict,omitempty"`
	Offers         []CandidateOffer `json:"offers,omitempty"`
	RawText        string           `json:"rawText,omitempty"`
	RoundNumber    int              `json:"roundNumber,omitempty"`
}

// OrchestrateResult carries every stage's output plus the execution
// trace. The trace lives only for the duration of the call.
type OrchestrateResult struct {
	RunID         string               `json:"runId"`
	ListingID     string               `json:"listingId,omitempty"`
	Action        string               `json:"action"`
	Pipeline      []string             `json:"pipeline"`
	Trace         []PipelineStep       `json:"pipelineTrace"`
	Listener      *ListenResult        `json:"listenerResult,omitempty"`
	Market        *MarketAnalysis      `json:"marketAnalysis,omitempty"`
	Evaluation    *Evaluation          `json:"evaluation,omitempty"`
	Negotiation   *NegotiationDecision `json:"negotiation,omitempty"`
	FinalDecision string               `json:"finalDecision"`
	Reasoning     string               `json:"reasoning"`
}

// Orchestrator sequences the listener, market analyst and negotiator or
// evaluator stages. It holds no mutable state; every Run is independent
// and safe to execute concurrently.
type Orchestrator struct {
	Source    PriceSource
	Extractor Extractor        // optional; nil means pattern rules only
	Generator MessageGenerator // optional; nil means template messages only
}

// Run executes the pipeline for the requested action. Stage failures are
// recorded in the trace without discarding earlier results; missing
// inputs end the pipeline with finalDecision "incomplete", never a hard
// failure.
func (o *Orchestrator) Run(ctx context.Context, req OrchestrateRequest) OrchestrateResult {
	res := OrchestrateResult{
		RunID:     uuid.NewString(),
		ListingID: req.ListingID,
		Action:    req.Action,
	}
	var reasoningParts []string

	crop := req.Crop
	quantity := req.QuantityKg
	farmerDistrict := req.FarmerDistrict

	// Stage 1: listener, only when full_evaluation has raw text and the
	// structured fields are not already supplied.
	if req.Action == ActionFullEvaluation && req.RawText != "" &&
		(crop == "" || quantity <= 0 || farmerDistrict == "") {
		res.Pipeline = append(res.Pipeline, "listener")
		runStage(&res.Trace, "listener", func() (string, error) {
			lr := o.extractListing(ctx, req.RawText)
			res.Listener = &lr
			if crop == "" && lr.Slots.Crop != "" {
				crop = lr.Slots.Crop
			}
			if quantity <= 0 && lr.Slots.QuantityKg != nil {
				quantity = *lr.Slots.QuantityKg
			}
			if farmerDistrict == "" && lr.Slots.District != "" {
				farmerDistrict = lr.Slots.District
			}
			reasoningParts = append(reasoningParts, "Listener: "+lr.Reasoning)
			return fmt.Sprintf("Intent: %s, confidence: %.2f", lr.Intent, lr.Confidence), nil
		})
	}

	// Stage 2: market analyst.
	if crop != "" {
		res.Pipeline = append(res.Pipeline, "market_analyst")
		runStage(&res.Trace, "market_analyst", func() (string, error) {
			qty := quantity
			if qty <= 0 {
				qty = 100
			}
			m := Analyst{Source: o.Source}.Analyze(crop, qty)
			res.Market = &m
			reasoningParts = append(reasoningParts, "Market Analyst: "+m.Reasoning)
			return fmt.Sprintf("Reserve: ₹%.2f/kg from %d markets",
				m.RecommendedReservePrice, m.TotalMarkets), nil
		})
	}

	if req.Action == ActionAnalyzeOnly {
		res.FinalDecision = "analyzed"
		res.Reasoning = strings.Join(reasoningParts, " | ")
		return res
	}

	// Stage 3: evaluator or negotiator.
	switch req.Action {
	case ActionFullEvaluation, ActionEvaluateOffers:
		if len(req.Offers) > 0 && farmerDistrict != "" && crop != "" && quantity > 0 {
			res.Pipeline = append(res.Pipeline, "negotiator")
			runStage(&res.Trace, "negotiator", func() (string, error) {
				var reserve *float64
				// A zero reserve means "no data" and never feeds
				// evaluation as a real price.
				if res.Market != nil && res.Market.RecommendedReservePrice > 0 {
					reserve = &res.Market.RecommendedReservePrice
				}
				ev, err := EvaluateOffers(req.ListingID, farmerDistrict, quantity, req.Offers, reserve)
				if err != nil {
					res.FinalDecision = "error"
					return "", err
				}
				res.Evaluation = &ev
				res.FinalDecision = ev.Status
				reasoningParts = append(reasoningParts, "Negotiator: "+ev.Reasoning)
				return "Decision: " + ev.Status, nil
			})
		}

	case ActionNegotiate:
		if len(req.Offers) > 0 && farmerDistrict != "" && crop != "" && quantity > 0 {
			if res.Market == nil || res.Market.RecommendedReservePrice <= 0 {
				reasoningParts = append(reasoningParts,
					fmt.Sprintf("Negotiator: skipped, no reserve price available for %q.", crop))
				break
			}
			res.Pipeline = append(res.Pipeline, "negotiator")
			runStage(&res.Trace, "negotiator", func() (string, error) {
				offer := req.Offers[0]
				nd, err := Negotiate(crop, quantity, farmerDistrict, offer.BuyerDistrict,
					offer.PricePerKg, res.Market.RecommendedReservePrice)
				if err != nil {
					res.FinalDecision = "error"
					return "", err
				}
				res.Negotiation = &nd
				res.FinalDecision = nd.Status
				reasoningParts = append(reasoningParts, "Negotiator: "+nd.Reasoning)
				return "Decision: " + nd.Status, nil
			})
		}
	}

	if res.FinalDecision == "" {
		res.FinalDecision = "incomplete"
		reasoningParts = append(reasoningParts,
			"Pipeline incomplete: missing required fields (crop, quantity, farmer district, or offers).")
	}
	res.Reasoning = strings.Join(reasoningParts, " | ")
	return res
}

// extractListing runs the pattern listener and, when an external
// extractor is wired, lets it fill slots the patterns missed. Extractor
// failures fall back silently to the pattern result.
func (o *Orchestrator) extractListing(ctx context.Context, rawText string) ListenResult {
	lr := Listener{Crops: o.Source.Crops()}.Listen(rawText)
	if o.Extractor == nil {
		return lr
	}

	ext, err := o.Extractor.ExtractOffer(ctx, rawText)
	if err != nil {
		return lr
	}
	if lr.Slots.QuantityKg == nil && ext.QuantityKg != nil {
		lr.Slots.QuantityKg = ext.QuantityKg
	}
	if lr.Slots.District == "" && ext.District != nil {
		lr.Slots.District = *ext.District
	}
	if lr.Intent == "unknown" && ext.Intent != "" {
		lr.Intent = ext.Intent
	}
	return lr
}

// runStage times fn and appends a trace entry, converting a returned
// error or a panic into an "error" step instead of aborting the pipeline.
func runStage(trace *[]PipelineStep, agent string, fn func() (string, error)) {
	start := time.Now()
	msg, err := func() (msg string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()
	elapsed := math.Round(float64(time.Since(start).Microseconds())/100) / 10

	step := PipelineStep{Agent: agent, Status: "success", DurationMs: elapsed, Message: msg}
	if err != nil {
		step.Status = "error"
		step.Message = err.Error()
	}
	*trace = append(*trace, step)
}
