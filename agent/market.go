package agent

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// PriceRecord is one observed mandi quote for a crop, already converted
// to rupees per kilogram. Records are immutable once loaded.
type PriceRecord struct {
	District        string  `json:"district"`
	Market          string  `json:"market"`
	MinPricePerKg   float64 `json:"minPricePerKg"`
	MaxPricePerKg   float64 `json:"maxPricePerKg"`
	ModalPricePerKg float64 `json:"modalPricePerKg"`
	ArrivalTonnes   float64 `json:"arrivalTonnes"`
	Date            string  `json:"date"`
}

// CropProfile is static metadata per crop.
type CropProfile struct {
	Category      string `json:"category"`
	Perishability string `json:"perishability"` // high | medium | low
	ShelfLifeDays int    `json:"shelfLifeDays"`
	Season        string `json:"season"`
	Unit          string `json:"unit"`
}

// PriceSource supplies crop metadata and price records. Implementations
// are read-only after load, so concurrent reads need no locking. A crop
// with no data is reported through the ok flag or an empty slice, never
// through an error.
type PriceSource interface {
	Profile(crop string) (CropProfile, bool)
	Records(crop string) []PriceRecord
	Crops() []string
}

// perishabilityFactor discounts the reserve price by spoilage risk: high
// risk produce must move fast, so the floor comes down.
func perishabilityFactor(class string) float64 {
	switch class {
	case "high":
		return 0.85
	case "low":
		return 0.95
	default: // medium or unknown
		return 0.90
	}
}

// quantityFactor applies a slight bulk discount.
func quantityFactor(quantityKg float64) float64 {
	switch {
	case quantityKg > 1000:
		return 0.95
	case quantityKg > 500:
		return 0.97
	default:
		return 1.0
	}
}

// MarketAnalysis is the full market picture for one listing. A zero
// RecommendedReservePrice is the sentinel for "no data for this crop";
// downstream stages must not treat it as a real price.
type MarketAnalysis struct {
	Crop                    string        `json:"crop"`
	TotalMarkets            int           `json:"totalMarkets"`
	MandiPrices             []PriceRecord `json:"mandiPrices,omitempty"`
	AvgPricePerKg           float64       `json:"avgPricePerKg"`
	MinPricePerKg           float64       `json:"minPricePerKg"`
	MaxPricePerKg           float64       `json:"maxPricePerKg"`
	RecommendedReservePrice float64       `json:"recommendedReservePrice"`
	Perishability           string        `json:"perishability"`
	ShelfLifeDays           int           `json:"shelfLifeDays"`
	Reasoning               string        `json:"reasoning"`
}

// Analyst computes reserve price recommendations from a PriceSource.
type Analyst struct {
	Source PriceSource
}

// Analyze aggregates all price records for a crop and recommends a
// reserve price:
//
//	reserve = avg(modal) * perishabilityFactor * quantityFactor
//
// The average is taken over modal prices; min and max come from the
// records' own min and max fields. An unknown crop or a crop with no
// records yields reserve 0 with a descriptive rationale.
func (a Analyst) Analyze(crop string, quantityKg float64) MarketAnalysis {
	profile, ok := a.Source.Profile(crop)
	if !ok {
		return MarketAnalysis{
			Crop:          crop,
			Perishability: "unknown",
			Reasoning: fmt.Sprintf("No market data available for crop %q. Supported: %s.",
				crop, strings.Join(a.Source.Crops(), ", ")),
		}
	}

	records := a.Source.Records(crop)
	if len(records) == 0 {
		return MarketAnalysis{
			Crop:          crop,
			Perishability: profile.Perishability,
			ShelfLifeDays: profile.ShelfLifeDays,
			Reasoning:     fmt.Sprintf("No price records available for crop %q.", crop),
		}
	}

	modal := make([]float64, len(records))
	mins := make([]float64, len(records))
	maxs := make([]float64, len(records))
	for i, r := range records {
		modal[i] = r.ModalPricePerKg
		mins[i] = r.MinPricePerKg
		maxs[i] = r.MaxPricePerKg
	}
	avg, _ := stats.Mean(modal)
	minPrice, _ := stats.Min(mins)
	maxPrice, _ := stats.Max(maxs)
	avg = round2(avg)

	pFactor := perishabilityFactor(profile.Perishability)
	qFactor := quantityFactor(quantityKg)
	reserve := round2(avg * pFactor * qFactor)

	reasoning := fmt.Sprintf(
		"Analyzed %d markets across Kerala for %s. "+
			"Price range: ₹%.2f/kg to ₹%.2f/kg, average ₹%.2f/kg. "+
			"Perishability: %s (shelf life %d days), factor %.2f. "+
			"Quantity %.0f kg, factor %.2f. "+
			"Recommended reserve price: ₹%.2f/kg.",
		len(records), crop,
		minPrice, maxPrice, avg,
		profile.Perishability, profile.ShelfLifeDays, pFactor,
		quantityKg, qFactor,
		reserve,
	)

	return MarketAnalysis{
		Crop:                    crop,
		TotalMarkets:            len(records),
		MandiPrices:             records,
		AvgPricePerKg:           avg,
		MinPricePerKg:           minPrice,
		MaxPricePerKg:           maxPrice,
		RecommendedReservePrice: reserve,
		Perishability:           profile.Perishability,
		ShelfLifeDays:           profile.ShelfLifeDays,
		Reasoning:               reasoning,
	}
}

// DistrictAveragePrices aggregates modal prices by district, weighted by
// arrival tonnage. Districts with no arrivals get a minimum weight so a
// single zero-tonnage quote still counts.
func (a Analyst) DistrictAveragePrices(crop string) map[string]float64 {
	records := a.Source.Records(crop)
	if len(records) == 0 {
		return map[string]float64{}
	}

	type acc struct{ weighted, weight float64 }
	byDistrict := make(map[string]*acc)
	for _, r := range records {
		w := r.ArrivalTonnes
		if w < 0.01 {
			w = 0.01
		}
		d, ok := byDistrict[r.District]
		if !ok {
			d = &acc{}
			byDistrict[r.District] = d
		}
		d.weighted += r.ModalPricePerKg * w
		d.weight += w
	}

	out := make(map[string]float64, len(byDistrict))
	for district, d := range byDistrict {
		out[district] = round2(d.weighted / d.weight)
	}
	return out
}
