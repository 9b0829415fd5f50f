package agent

import (
	"fmt"
	"sort"
	"strings"
)

// PricePerKm is the flat delivery rate used for offer evaluation (₹/km).
const PricePerKm = 15.0

// CandidateOffer is one buyer's bid on a listing. Input only.
type CandidateOffer struct {
	BuyerID       string  `json:"buyerId"`
	BuyerDistrict string  `json:"buyerDistrict"`
	PricePerKg    float64 `json:"offerPricePerKg"`
}

// Comparison is a CandidateOffer enriched with the delivery economics
// computed for it. Derived fresh on every evaluation.
type Comparison struct {
	BuyerID       string  `json:"buyerId"`
	BuyerDistrict string  `json:"buyerDistrict"`
	PricePerKg    float64 `json:"offerPricePerKg"`
	GrossRevenue  float64 `json:"grossRevenue"`
	DistanceKm    float64 `json:"distanceKm"`
	DeliveryCost  float64 `json:"deliveryCost"`
	NetProfit     float64 `json:"netProfit"`
	BelowReserve  bool    `json:"belowReserve"`
}

// Evaluation statuses.
const (
	StatusEvaluated     = "evaluated"
	StatusBelowReserve  = "below_reserve"
	StatusNoViableOffer = "no_viable_offer"
)

// Evaluation is the outcome of ranking all offers on one listing.
type Evaluation struct {
	ListingID   string       `json:"listingId,omitempty"`
	Status      string       `json:"status"`
	BestBuyer   *Comparison  `json:"bestBuyer,omitempty"`
	Comparisons []Comparison `json:"allComparisons"`
	Reasoning   string       `json:"reasoning"`
}

// EvaluateOffers computes delivery-adjusted net profit for every offer and
// selects the winner among viable candidates (positive net profit, not
// below reserve). A nil reserve disables reserve enforcement. Ties in net
// profit are broken by shorter distance, then by higher price.
func EvaluateOffers(listingID, farmerDistrict string, quantityKg float64, offers []CandidateOffer, reservePrice *float64) (Evaluation, error) {
	if quantityKg <= 0 {
		return Evaluation{}, fmt.Errorf("%w: quantity must be positive, got %v", ErrInvalidInput, quantityKg)
	}
	if len(offers) == 0 {
		return Evaluation{}, fmt.Errorf("%w: at least one offer is required", ErrInvalidInput)
	}

	farmerHub := ResolveHub(farmerDistrict)

	comparisons := make([]Comparison, 0, len(offers))
	for _, o := range offers {
		if o.PricePerKg <= 0 {
			return Evaluation{}, fmt.Errorf("%w: offer from %q has non-positive price %v",
				ErrInvalidInput, o.BuyerID, o.PricePerKg)
		}

		buyerHub := ResolveHub(o.BuyerDistrict)
		dist := Distance(farmerHub.Coord, buyerHub.Coord)
		gross := round2(o.PricePerKg * quantityKg)
		delivery := round2(dist * PricePerKm)
		net := round2(gross - delivery)
		below := reservePrice != nil && o.PricePerKg < *reservePrice

		comparisons = append(comparisons, Comparison{
			BuyerID:       o.BuyerID,
			BuyerDistrict: o.BuyerDistrict,
			PricePerKg:    o.PricePerKg,
			GrossRevenue:  gross,
			DistanceKm:    dist,
			DeliveryCost:  delivery,
			NetProfit:     net,
			BelowReserve:  below,
		})
	}

	var viable []Comparison
	for _, c := range comparisons {
		if c.NetProfit > 0 && !c.BelowReserve {
			viable = append(viable, c)
		}
	}

	if len(viable) == 0 {
		var bestPrice float64
		profitable := 0
		for _, c := range comparisons {
			if c.NetProfit > 0 {
				profitable++
				if c.PricePerKg > bestPrice {
					bestPrice = c.PricePerKg
				}
			}
		}
		if profitable > 0 && reservePrice != nil {
			return Evaluation{
				ListingID:   listingID,
				Status:      StatusBelowReserve,
				Comparisons: comparisons,
				Reasoning: fmt.Sprintf(
					"No offer meets the reserve price of ₹%.2f/kg. Best offer: ₹%.2f/kg. "+
						"Consider counter-offering or waiting for better offers.",
					*reservePrice, bestPrice),
			}, nil
		}
		return Evaluation{
			ListingID:   listingID,
			Status:      StatusNoViableOffer,
			Comparisons: comparisons,
			Reasoning:   "No offer yields a positive net profit after delivery costs.",
		}, nil
	}

	// net profit DESC, then distance ASC, then price DESC
	sort.Slice(viable, func(i, j int) bool {
		if viable[i].NetProfit != viable[j].NetProfit {
			return viable[i].NetProfit > viable[j].NetProfit
		}
		if viable[i].DistanceKm != viable[j].DistanceKm {
			return viable[i].DistanceKm < viable[j].DistanceKm
		}
		return viable[i].PricePerKg > viable[j].PricePerKg
	})
	best := viable[0]

	return Evaluation{
		ListingID:   listingID,
		Status:      StatusEvaluated,
		BestBuyer:   &best,
		Comparisons: comparisons,
		Reasoning:   selectionReasoning(best, viable, comparisons, reservePrice),
	}, nil
}

// selectionReasoning explains a winner pick: the winner's economics, the
// effect of the reserve, and the runner-up when one exists. Each figure is
// stated as a discrete fact so callers can verify them independently.
func selectionReasoning(best Comparison, viable, all []Comparison, reservePrice *float64) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Selected %s buyer (%s) with net profit ₹%.2f.",
		best.BuyerDistrict, best.BuyerID, best.NetProfit))
	parts = append(parts, fmt.Sprintf(
		"Delivery distance %.1f km costs ₹%.2f, yielding the highest return among %d offer(s).",
		best.DistanceKm, best.DeliveryCost, len(all)))

	if reservePrice != nil {
		parts = append(parts, fmt.Sprintf("Reserve price: ₹%.2f/kg.", *reservePrice))
		excluded := 0
		for _, c := range all {
			if c.BelowReserve {
				excluded++
			}
		}
		if excluded > 0 {
			parts = append(parts, fmt.Sprintf("%d offer(s) below reserve were excluded.", excluded))
		}
	} else if rejected := len(all) - len(viable); rejected > 0 {
		parts = append(parts, fmt.Sprintf("%d offer(s) were rejected due to negative net profit.", rejected))
	}

	if len(viable) >= 2 {
		runner := viable[1]
		parts = append(parts, fmt.Sprintf("Runner-up: %s (%s) with ₹%.2f net profit (₹%.2f less).",
			runner.BuyerDistrict, runner.BuyerID, runner.NetProfit, round2(best.NetProfit-runner.NetProfit)))
	}

	return strings.Join(parts, " ")
}
