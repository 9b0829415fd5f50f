package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// intentRule is one intent and the patterns that signal it. Rules are
// evaluated in order and the first intent with the highest match count
// wins, so detection is deterministic. Confidence is the fraction of the
// rule's patterns that matched, capped at 1.0.
type intentRule struct {
	name     string
	patterns []*regexp.Regexp
}

var intentRules = []intentRule{
	{"create_listing", compileAll(
		`\b(sell|list|post|offer|put up|want to sell|selling)\b`,
		`\b(create|new|add)\b.*\b(listing|lot|stock)\b`,
	)},
	{"check_price", compileAll(
		`\b(price|rate|cost|worth|value|going for)\b`,
		`\b(how much|what is|current)\b.*\b(price|rate)\b`,
		`\b(market|mandi)\b.*\b(price|rate)\b`,
	)},
	{"accept_offer", compileAll(
		`\b(accept|agree|yes|ok|done|confirm|take)\b.*\b(offer|deal|bid)\b`,
		`\b(go ahead|proceed)\b`,
	)},
	{"counter_offer", compileAll(
		`\b(counter|negotiate|higher|more|increase|raise)\b`,
		`\b(not enough|too low|want more)\b`,
		`\b(can you do|at least)\b.*\b\d+\b`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// quantityUnits carries one regex per unit family with its kg multiplier,
// tried in order before the plain-number fallback.
var quantityUnits = []struct {
	re   *regexp.Regexp
	mult float64
}{
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(kg|kilos?|kilograms?)\b`), 1},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(quintals?|qtl)\b`), 100},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(tonnes?|tons?|mt)\b`), 1000},
}

var plainNumberRe = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`)

// Slots are the structured fields pulled out of raw text. Nil or empty
// means the field was not found.
type Slots struct {
	Crop       string   `json:"crop,omitempty"`
	QuantityKg *float64 `json:"quantity,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	District   string   `json:"district,omitempty"`
}

// ListenResult is the outcome of deterministic intent extraction.
type ListenResult struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Slots      Slots    `json:"extractedSlots"`
	Missing    []string `json:"missingSlots"`
	Reasoning  string   `json:"reasoning"`
}

// Listener extracts intent and listing slots from raw farmer text using
// pattern rules only. It is pure and needs no external collaborator.
type Listener struct {
	Crops []string // known crop names for slot matching
}

// Listen detects the intent and extracts crop, quantity and district.
func (l Listener) Listen(rawText string) ListenResult {
	text := strings.ToLower(rawText)

	intent, confidence := detectIntent(text)
	crop := matchKnown(text, l.Crops)
	quantity, unit := extractQuantity(text, crop != "")
	district := matchKnown(text, Districts())

	slots := Slots{Crop: crop, QuantityKg: quantity, District: district}
	if unit != "" {
		slots.Unit = unit
	} else {
		slots.Unit = "kg"
	}

	var missing []string
	if crop == "" {
		missing = append(missing, "crop")
	}
	if quantity == nil {
		missing = append(missing, "quantity")
	}
	if district == "" {
		missing = append(missing, "district")
	}

	parts := []string{fmt.Sprintf("Detected intent: %q (confidence: %.2f).", intent, confidence)}
	if crop != "" {
		parts = append(parts, fmt.Sprintf("Crop: %s.", crop))
	}
	if quantity != nil {
		parts = append(parts, fmt.Sprintf("Quantity: %.0f kg.", *quantity))
	}
	if district != "" {
		parts = append(parts, fmt.Sprintf("District: %s.", district))
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("Missing: %s.", strings.Join(missing, ", ")))
	}

	return ListenResult{
		Intent:     intent,
		Confidence: confidence,
		Slots:      slots,
		Missing:    missing,
		Reasoning:  strings.Join(parts, " "),
	}
}

func detectIntent(lower string) (string, float64) {
	best := "unknown"
	bestMatches := 0
	bestTotal := 1
	for _, rule := range intentRules {
		matches := 0
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				matches++
			}
		}
		if matches > bestMatches {
			best = rule.name
			bestMatches = matches
			bestTotal = len(rule.patterns)
		}
	}
	if bestMatches == 0 {
		return "unknown", 0
	}
	confidence := float64(bestMatches) / float64(bestTotal)
	if confidence > 1 {
		confidence = 1
	}
	return best, round2(confidence)
}

// matchKnown finds the first known value present in the text,
// case-insensitively.
func matchKnown(lower string, known []string) string {
	for _, k := range known {
		if strings.Contains(lower, strings.ToLower(k)) {
			return k
		}
	}
	return ""
}

// extractQuantity parses a quantity with unit, converting to kilograms.
// A bare number only counts when a crop was also mentioned, to avoid
// reading prices or dates as quantities.
func extractQuantity(lower string, cropMentioned bool) (*float64, string) {
	for _, u := range quantityUnits {
		if m := u.re.FindStringSubmatch(lower); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			kg := v * u.mult
			return &kg, m[2]
		}
	}
	if cropMentioned {
		if m := plainNumberRe.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return &v, "kg"
			}
		}
	}
	return nil, ""
}

// Buyer-message intents produced by offer extraction.
const (
	IntentNewOffer      = "new_offer"
	IntentAcceptCounter = "accept_counter"
	IntentReject        = "reject"
	IntentQuestion      = "question"
)

// ExtractedOffer is a structured offer pulled from buyer text, either by
// the external extractor or by FallbackExtract. Nil fields mean the value
// was not found.
type ExtractedOffer struct {
	PricePerKg *float64 `json:"offerPricePerKg"`
	QuantityKg *float64 `json:"quantity"`
	District   *string  `json:"buyerDistrict"`
	Intent     string   `json:"intent"`
}

var (
	offerPriceRe = regexp.MustCompile(`(?i)₹?\s*(\d+(?:\.\d+)?)\s*(?:per\s*kg|/kg|per\s*kilo)`)
	offerQtyRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:kg|kilos?|quintals?)`)
	acceptCueRe  = regexp.MustCompile(`\b(accept|agree|ok|okay|deal|yes)\b`)
	rejectCueRe  = regexp.MustCompile(`\b(no|pass|reject|too high|too much)\b`)
)

// FallbackExtract is the deterministic offer extractor used whenever the
// external text-understanding collaborator is unavailable or returns
// nothing usable. Negotiation must never block on the collaborator.
func FallbackExtract(text string) ExtractedOffer {
	lower := strings.ToLower(text)

	var out ExtractedOffer
	if m := offerPriceRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.PricePerKg = &v
		}
	}
	if m := offerQtyRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.QuantityKg = &v
		}
	}

	switch {
	case acceptCueRe.MatchString(lower):
		out.Intent = IntentAcceptCounter
	case rejectCueRe.MatchString(lower):
		out.Intent = IntentReject
	case out.PricePerKg != nil:
		out.Intent = IntentNewOffer
	default:
		out.Intent = IntentQuestion
	}
	return out
}
