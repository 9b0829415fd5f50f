package agent

import (
	"fmt"
	"math"
)

const (
	// CounterThreshold is the largest fractional shortfall below reserve
	// that earns a counter-offer instead of a rejection.
	CounterThreshold = 0.15

	// minDispatchCharge is the delivery cost floor in rupees: even a
	// next-door delivery pays for a dispatch.
	minDispatchCharge = 50.0
)

// Negotiation decision statuses. All three are terminal; each call is a
// single-shot decision and multi-round flow is the caller's concern.
const (
	DecisionAccepted     = "accepted"
	DecisionCounterOffer = "counter_offer"
	DecisionRejected     = "rejected"
)

// NegotiationDecision is the outcome of one negotiation turn, carrying
// every numeric input to the decision so it can be reproduced independent
// of the rationale wording.
type NegotiationDecision struct {
	Status       string   `json:"status"`
	ReservePrice float64  `json:"reservePrice"`
	FinalPrice   *float64 `json:"finalPrice,omitempty"`   // set when accepted
	CounterPrice *float64 `json:"counterPrice,omitempty"` // set when countering
	DistanceKm   float64  `json:"distanceKm"`
	DeliveryCost float64  `json:"deliveryCost"`
	NetProfit    float64  `json:"netProfit"`
	Gap          float64  `json:"gap"` // fractional shortfall below reserve; negative when offer >= reserve
	Reasoning    string   `json:"reasoning"`
}

// Negotiate decides accept, counter or reject for a single offer against
// a reserve price. Districts resolve through the hub directory fallback,
// so an unrecognized district degrades to an approximate cost instead of
// failing. Delivery cost uses the dispatch-floor model:
//
//	cost = max(50, distance * quantity * 0.5 / 100)
func Negotiate(crop string, quantityKg float64, farmerDistrict, buyerDistrict string, offerPrice, reservePrice float64) (NegotiationDecision, error) {
	if quantityKg <= 0 {
		return NegotiationDecision{}, fmt.Errorf("%w: quantity must be positive, got %v", ErrInvalidInput, quantityKg)
	}
	if offerPrice <= 0 {
		return NegotiationDecision{}, fmt.Errorf("%w: offer price must be positive, got %v", ErrInvalidInput, offerPrice)
	}
	if reservePrice <= 0 {
		return NegotiationDecision{}, fmt.Errorf("%w: reserve price must be positive, got %v", ErrInvalidInput, reservePrice)
	}

	farmerHub := ResolveHub(farmerDistrict)
	buyerHub := ResolveHub(buyerDistrict)

	dist := Distance(farmerHub.Coord, buyerHub.Coord)
	grossRevenue := round2(offerPrice * quantityKg)
	deliveryCost := round2(math.Max(minDispatchCharge, dist*quantityKg*0.5/100))
	netProfit := round2(grossRevenue - deliveryCost)
	gap := (reservePrice - offerPrice) / reservePrice

	d := NegotiationDecision{
		ReservePrice: reservePrice,
		DistanceKm:   dist,
		DeliveryCost: deliveryCost,
		NetProfit:    netProfit,
		Gap:          gap,
	}

	if offerPrice >= reservePrice && netProfit > 0 {
		d.Status = DecisionAccepted
		d.FinalPrice = &offerPrice
		d.Reasoning = fmt.Sprintf(
			"Accepted offer of ₹%.2f/kg from %s. Meets reserve price of ₹%.2f/kg. "+
				"Net profit: ₹%.2f after ₹%.2f delivery (%.1f km).",
			offerPrice, buyerHub.District, reservePrice, netProfit, deliveryCost, dist)
		return d, nil
	}

	if gap <= CounterThreshold && netProfit > 0 {
		counter := round2((offerPrice + reservePrice) / 2)
		d.Status = DecisionCounterOffer
		d.CounterPrice = &counter
		d.Reasoning = fmt.Sprintf(
			"Offer of ₹%.2f/kg is %.0f%% below reserve ₹%.2f/kg. "+
				"Counter-offer at ₹%.2f/kg (midpoint). "+
				"Delivery: ₹%.2f (%.1f km). Net profit at offer: ₹%.2f.",
			offerPrice, gap*100, reservePrice, counter, deliveryCost, dist, netProfit)
		return d, nil
	}

	d.Status = DecisionRejected
	d.Reasoning = fmt.Sprintf(
		"Rejected offer of ₹%.2f/kg from %s. Reserve: ₹%.2f/kg (gap: %.0f%%). "+
			"Net profit: ₹%.2f after ₹%.2f delivery (%.1f km).",
		offerPrice, buyerHub.District, reservePrice, gap*100, netProfit, deliveryCost, dist)
	return d, nil
}
