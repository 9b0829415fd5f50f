package main

import "faircrop/agent"

const apiVersion = "3.0.0"

// Request/response DTOs. Keep them minimal and explicit.

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`     // farmer | buyer
	District string `json:"district"` // optional
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string `json:"token"`
}

type createListingReq struct {
	Crop       string  `json:"crop"`
	QuantityKg float64 `json:"quantityKg"`
	District   string  `json:"district"`
	Notes      string  `json:"notes,omitempty"`
}

type placeOfferReq struct {
	PricePerKg    float64 `json:"pricePerKg"`
	QuantityKg    float64 `json:"quantityKg,omitempty"`
	BuyerDistrict string  `json:"buyerDistrict,omitempty"` // defaults to the buyer's profile district
}

// Agent service contracts, matching the backend integration exactly.

type analyzeMarketReq struct {
	Crop           string  `json:"crop"`
	Quantity       float64 `json:"quantity"`
	FarmerDistrict string  `json:"farmerDistrict"`
}

type analyzeMarketResp struct {
	RecommendedReservePrice float64 `json:"recommendedReservePrice"`
}

type districtRef struct {
	District string `json:"district"`
}

type negotiateReq struct {
	Crop            string      `json:"crop"`
	Quantity        float64     `json:"quantity"`
	Farmer          districtRef `json:"farmer"`
	Buyer           districtRef `json:"buyer"`
	OfferPricePerKg float64     `json:"offerPricePerKg"`
	ReservePrice    float64     `json:"reservePrice"`
}

type counterOfferResp struct {
	CounterPrice float64 `json:"counterPrice"`
}

type negotiateResp struct {
	Status       string            `json:"status"`
	ReservePrice float64           `json:"ReservePrice"`
	FinalPrice   *float64          `json:"finalPrice"`
	CounterOffer *counterOfferResp `json:"counterOffer"`
	DistanceKm   float64           `json:"distanceKm"`
	DeliveryCost float64           `json:"deliveryCost"`
	NetProfit    float64           `json:"netProfit"`
	Reasoning    string            `json:"reasoning"`
}

type evaluateReq struct {
	ListingID    string                 `json:"listingId"`
	Crop         string                 `json:"crop"`
	Quantity     float64                `json:"quantity"`
	Farmer       districtRef            `json:"farmer"`
	Offers       []agent.CandidateOffer `json:"offers"`
	ReservePrice *float64               `json:"reservePrice,omitempty"`
}

type listenReq struct {
	RawText string `json:"rawText"`
}

type chatResp struct {
	Decision     agent.ChatDecision `json:"decision"`
	ChatMessage  string             `json:"chatMessage"`
	ReservePrice *float64           `json:"ReservePrice"`
	RoundNumber  int                `json:"roundNumber,omitempty"`
}
