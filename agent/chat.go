package agent

import (
	"context"
	"fmt"
	"math"
)

// Chat-only decision statuses, in addition to the negotiation ones.
const (
	ChatBuyerRejected = "buyer_rejected"
	ChatNeedInfo      = "need_info"
)

// ChatRequest is one buyer message plus the negotiation state the caller
// persisted between turns. The engine itself stores nothing.
type ChatRequest struct {
	ListingID         string   `json:"listingId"`
	BuyerMessage      string   `json:"buyerMessage"`
	BuyerID           string   `json:"buyerId"`
	BuyerDistrict     string   `json:"buyerDistrict"`
	Crop              string   `json:"crop"`
	QuantityKg        float64  `json:"quantity"`
	FarmerDistrict    string   `json:"farmerDistrict"`
	RoundNumber       int      `json:"roundNumber"`
	CurrentOfferPrice *float64 `json:"currentOfferPrice,omitempty"`
	LastCounterPrice  *float64 `json:"lastCounterPrice,omitempty"`
}

// ChatDecision is the machine-readable part of a chat turn.
type ChatDecision struct {
	Status       string   `json:"status"`
	FinalPrice   *float64 `json:"finalPrice,omitempty"`
	CounterPrice *float64 `json:"counterPrice,omitempty"`
}

// ChatResult pairs the decision with its display message. The message is
// presentation only; every number in it was computed by the engine.
type ChatResult struct {
	Decision     ChatDecision `json:"decision"`
	ChatMessage  string       `json:"chatMessage"`
	ReservePrice *float64     `json:"reservePrice,omitempty"`
}

// Chat runs one negotiation turn from a raw buyer message: extract the
// offer, decide, then render a reply. Extraction prefers the external
// collaborator but always falls back to pattern rules; message generation
// failures fall back to templates so a decision is always returned.
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	if req.BuyerMessage == "" {
		return ChatResult{}, fmt.Errorf("%w: buyer message is required", ErrInvalidInput)
	}
	if req.QuantityKg <= 0 {
		return ChatResult{}, fmt.Errorf("%w: quantity must be positive, got %v", ErrInvalidInput, req.QuantityKg)
	}

	extracted := o.extractOffer(ctx, req.BuyerMessage)

	offerPrice := extracted.PricePerKg
	if offerPrice == nil {
		offerPrice = req.CurrentOfferPrice
	}
	intent := extracted.Intent
	// A price in the actual message is a new offer regardless of the
	// extractor's intent guess.
	if extracted.PricePerKg != nil {
		intent = IntentNewOffer
	}

	if intent == IntentAcceptCounter && req.LastCounterPrice != nil {
		return ChatResult{
			Decision: ChatDecision{Status: DecisionAccepted, FinalPrice: req.LastCounterPrice},
			ChatMessage: fmt.Sprintf(
				"Wonderful! The deal is confirmed at ₹%.2f/kg for %.0f kg of %s. Thank you for choosing FairCrop!",
				*req.LastCounterPrice, req.QuantityKg, req.Crop),
		}, nil
	}

	if intent == IntentReject {
		return ChatResult{
			Decision:    ChatDecision{Status: ChatBuyerRejected},
			ChatMessage: "We understand. Thank you for your interest. If you reconsider, our listing remains open.",
		}, nil
	}

	if intent == IntentQuestion {
		return ChatResult{
			Decision: ChatDecision{Status: ChatNeedInfo},
			ChatMessage: fmt.Sprintf(
				"Hello! Welcome to FairCrop. We have %.0f kg of fresh %s available from %s. "+
					"Please share your offer price per kg to start the negotiation!",
				req.QuantityKg, req.Crop, req.FarmerDistrict),
		}, nil
	}

	if offerPrice == nil {
		return ChatResult{
			Decision: ChatDecision{Status: ChatNeedInfo},
			ChatMessage: fmt.Sprintf(
				"Thank you for your interest in our %s! Could you please share your offer price per kg?",
				req.Crop),
		}, nil
	}

	market := Analyst{Source: o.Source}.Analyze(req.Crop, req.QuantityKg)
	reserve := market.RecommendedReservePrice
	if reserve <= 0 {
		return ChatResult{
			Decision: ChatDecision{Status: ChatNeedInfo},
			ChatMessage: fmt.Sprintf(
				"We currently don't have market data for %q in our system. "+
					"Please check back later as we expand coverage.", req.Crop),
		}, nil
	}

	decision, err := Negotiate(req.Crop, req.QuantityKg, req.FarmerDistrict, req.BuyerDistrict, *offerPrice, reserve)
	if err != nil {
		return ChatResult{}, err
	}

	mctx := o.messageContext(req, *offerPrice, reserve, decision.CounterPrice)

	return ChatResult{
		Decision: ChatDecision{
			Status:       decision.Status,
			FinalPrice:   decision.FinalPrice,
			CounterPrice: decision.CounterPrice,
		},
		ChatMessage:  o.renderMessage(ctx, req, decision, mctx),
		ReservePrice: &reserve,
	}, nil
}

// extractOffer asks the external extractor first and falls back to the
// deterministic patterns on failure, or to fill a missing price.
func (o *Orchestrator) extractOffer(ctx context.Context, text string) ExtractedOffer {
	if o.Extractor == nil {
		return FallbackExtract(text)
	}
	ext, err := o.Extractor.ExtractOffer(ctx, text)
	if err != nil {
		return FallbackExtract(text)
	}
	if ext.PricePerKg == nil {
		if fb := FallbackExtract(text); fb.PricePerKg != nil {
			ext.PricePerKg = fb.PricePerKg
			ext.Intent = IntentNewOffer
		}
	}
	return ext
}

// messageContext recomputes the delivery economics the generator may cite.
func (o *Orchestrator) messageContext(req ChatRequest, offerPrice, reserve float64, counterPrice *float64) MessageContext {
	farmerHub := ResolveHub(req.FarmerDistrict)
	buyerHub := ResolveHub(req.BuyerDistrict)
	dist := Distance(farmerHub.Coord, buyerHub.Coord)
	deliveryCost := round2(math.Max(minDispatchCharge, dist*req.QuantityKg*0.5/100))
	netProfit := round2(offerPrice*req.QuantityKg - deliveryCost)

	mctx := MessageContext{
		Crop:           req.Crop,
		QuantityKg:     req.QuantityKg,
		FarmerDistrict: req.FarmerDistrict,
		BuyerDistrict:  req.BuyerDistrict,
		BuyerOffer:     offerPrice,
		DeliveryCost:   deliveryCost,
		NetProfitOffer: netProfit,
		ReservePrice:   reserve,
		RoundNumber:    req.RoundNumber,
	}
	if counterPrice != nil {
		netAtCounter := round2(*counterPrice*req.QuantityKg - deliveryCost)
		mctx.NetProfitCounter = &netAtCounter
	}
	return mctx
}

// renderMessage builds the reply text. Accepted and rejected always use
// templates because their numbers must be exact; counter-offers go to the
// generator for tone, with a template fallback.
func (o *Orchestrator) renderMessage(ctx context.Context, req ChatRequest, decision NegotiationDecision, mctx MessageContext) string {
	switch decision.Status {
	case DecisionAccepted:
		return fmt.Sprintf(
			"Deal confirmed! We're happy to accept your offer of ₹%.2f/kg for %.0f kg of %s. "+
				"Total: ₹%.2f. Thank you for choosing FairCrop!",
			mctx.BuyerOffer, req.QuantityKg, req.Crop, round2(mctx.BuyerOffer*req.QuantityKg))
	case DecisionRejected:
		return fmt.Sprintf(
			"Thank you for your offer of ₹%.2f/kg. Unfortunately, this is below our minimum price of "+
				"₹%.2f/kg for %s. Could you consider a higher offer?",
			mctx.BuyerOffer, decision.ReservePrice, req.Crop)
	}

	if o.Generator != nil {
		if msg, err := o.Generator.NegotiationMessage(ctx, decision, mctx); err == nil && msg != "" {
			return msg
		}
	}
	counter := 0.0
	if decision.CounterPrice != nil {
		counter = *decision.CounterPrice
	}
	return fmt.Sprintf(
		"Thank you for your offer of ₹%.2f/kg for %s. Based on current Kerala mandi prices and "+
			"delivery costs, we would like to propose ₹%.2f/kg, which ensures a fair return for the "+
			"farmer while remaining competitive. Let us know if this works for you.",
		mctx.BuyerOffer, req.Crop, counter)
}
