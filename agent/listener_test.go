package agent_test

import (
	"testing"

	"faircrop/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListener() agent.Listener {
	return agent.Listener{Crops: []string{"Tomato", "Banana"}}
}

func TestListenCreateListingIntent(t *testing.T) {
	res := newListener().Listen("I want to sell 500 kg of tomato from Palakkad")

	assert.Equal(t, "create_listing", res.Intent)
	assert.Greater(t, res.Confidence, 0.0)
	assert.Equal(t, "Tomato", res.Slots.Crop)
	require.NotNil(t, res.Slots.QuantityKg)
	assert.Equal(t, 500.0, *res.Slots.QuantityKg)
	assert.Equal(t, "Palakkad", res.Slots.District)
	assert.Empty(t, res.Missing)
	assert.Contains(t, res.Reasoning, "create_listing")
}

func TestListenCheckPriceIntent(t *testing.T) {
	res := newListener().Listen("what is the market price of banana today")
	assert.Equal(t, "check_price", res.Intent)
	assert.Equal(t, "Banana", res.Slots.Crop)
}

func TestListenUnitConversion(t *testing.T) {
	cases := []struct {
		text string
		kg   float64
		unit string
	}{
		{"sell 5 quintals of tomato", 500, "quintals"},
		{"sell 2 tonnes of tomato", 2000, "tonnes"},
		{"sell 250 kg of tomato", 250, "kg"},
	}
	for _, tc := range cases {
		res := newListener().Listen(tc.text)
		require.NotNil(t, res.Slots.QuantityKg, tc.text)
		assert.Equal(t, tc.kg, *res.Slots.QuantityKg, tc.text)
		assert.Equal(t, tc.unit, res.Slots.Unit, tc.text)
	}
}

func TestListenBareNumberNeedsCrop(t *testing.T) {
	// A bare number with a crop reads as a quantity.
	res := newListener().Listen("selling 300 tomato")
	require.NotNil(t, res.Slots.QuantityKg)
	assert.Equal(t, 300.0, *res.Slots.QuantityKg)

	// Without a crop it is ignored; prices and dates are not quantities.
	res = newListener().Listen("selling 300")
	assert.Nil(t, res.Slots.QuantityKg)
	assert.Contains(t, res.Missing, "crop")
	assert.Contains(t, res.Missing, "quantity")
}

func TestListenUnknownIntent(t *testing.T) {
	res := newListener().Listen("hello there")
	assert.Equal(t, "unknown", res.Intent)
	assert.Zero(t, res.Confidence)
	assert.ElementsMatch(t, []string{"crop", "quantity", "district"}, res.Missing)
}

func TestListenConfidenceIsMatchFraction(t *testing.T) {
	// Only the keyword pattern of the two create_listing patterns matches.
	res := newListener().Listen("I am selling tomato")
	assert.Equal(t, "create_listing", res.Intent)
	assert.Equal(t, 0.5, res.Confidence)
}

func TestFallbackExtractOfferPrice(t *testing.T) {
	ext := agent.FallbackExtract("I can offer ₹22 per kg for 100 kg")
	require.NotNil(t, ext.PricePerKg)
	assert.Equal(t, 22.0, *ext.PricePerKg)
	require.NotNil(t, ext.QuantityKg)
	assert.Equal(t, 100.0, *ext.QuantityKg)
	assert.Equal(t, agent.IntentNewOffer, ext.Intent)
}

func TestFallbackExtractPriceVariants(t *testing.T) {
	for _, text := range []string{
		"22 per kg works for me",
		"how about 22/kg",
		"₹ 22.50 per kilo",
	} {
		ext := agent.FallbackExtract(text)
		require.NotNil(t, ext.PricePerKg, text)
	}
}

func TestFallbackExtractAcceptCue(t *testing.T) {
	ext := agent.FallbackExtract("okay, deal!")
	assert.Equal(t, agent.IntentAcceptCounter, ext.Intent)
	assert.Nil(t, ext.PricePerKg)
}

func TestFallbackExtractRejectCue(t *testing.T) {
	ext := agent.FallbackExtract("that is too much for me")
	assert.Equal(t, agent.IntentReject, ext.Intent)
}

func TestFallbackExtractQuestionByDefault(t *testing.T) {
	ext := agent.FallbackExtract("is the produce organic?")
	assert.Equal(t, agent.IntentQuestion, ext.Intent)
}

func TestFallbackExtractWordBoundaries(t *testing.T) {
	// "yesterday" must not read as an acceptance.
	ext := agent.FallbackExtract("I was there yesterday")
	assert.NotEqual(t, agent.IntentAcceptCounter, ext.Intent)
}
