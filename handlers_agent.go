package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"faircrop/agent"
	"faircrop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// handleAnalyzeMarket returns the recommended reserve price for a crop
// lot. A crop with no mandi records yields 404 so callers never mistake
// the zero sentinel for a real price.
func (a *App) handleAnalyzeMarket(w http.ResponseWriter, r *http.Request) {
	var req analyzeMarketReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Crop) == "" || req.Quantity <= 0 {
		http.Error(w, "crop and positive quantity are required", http.StatusBadRequest)
		return
	}

	analysis := agent.Analyst{Source: a.source}.Analyze(req.Crop, req.Quantity)
	if analysis.RecommendedReservePrice <= 0 {
		http.Error(w, "no market data for crop", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(analyzeMarketResp{
		RecommendedReservePrice: analysis.RecommendedReservePrice,
	})
}

// handleNegotiate decides accept/counter/reject for a single offer.
func (a *App) handleNegotiate(w http.ResponseWriter, r *http.Request) {
	var req negotiateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	d, err := agent.Negotiate(req.Crop, req.Quantity, req.Farmer.District, req.Buyer.District,
		req.OfferPricePerKg, req.ReservePrice)
	if err != nil {
		if errors.Is(err, agent.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "negotiation failed", http.StatusInternalServerError)
		return
	}

	resp := negotiateResp{
		Status:       d.Status,
		ReservePrice: d.ReservePrice,
		FinalPrice:   d.FinalPrice,
		DistanceKm:   d.DistanceKm,
		DeliveryCost: d.DeliveryCost,
		NetProfit:    d.NetProfit,
		Reasoning:    d.Reasoning,
	}
	if d.CounterPrice != nil {
		resp.CounterOffer = &counterOfferResp{CounterPrice: *d.CounterPrice}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// handleEvaluateOffers ranks a batch of offers by net profit. The
// reserve price is optional; when omitted it is derived from market
// data, and a zero sentinel falls through as "no reserve".
func (a *App) handleEvaluateOffers(w http.ResponseWriter, r *http.Request) {
	var req evaluateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	reserve := req.ReservePrice
	if reserve == nil && req.Crop != "" {
		analysis := agent.Analyst{Source: a.source}.Analyze(req.Crop, req.Quantity)
		if analysis.RecommendedReservePrice > 0 {
			reserve = &analysis.RecommendedReservePrice
		}
	}

	eval, err := agent.EvaluateOffers(req.ListingID, req.Farmer.District, req.Quantity, req.Offers, reserve)
	if err != nil {
		if errors.Is(err, agent.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(eval)
}

// handleOrchestrate runs the multi-stage pipeline for one action.
func (a *App) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	var req agent.OrchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	switch req.Action {
	case agent.ActionAnalyzeOnly, agent.ActionEvaluateOffers, agent.ActionNegotiate, agent.ActionFullEvaluation:
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	res := a.orchestrator.Run(ctx, req)
	_ = json.NewEncoder(w).Encode(res)
}

// handleListen extracts intent and slots from raw farmer or buyer text.
func (a *App) handleListen(w http.ResponseWriter, r *http.Request) {
	var req listenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		http.Error(w, "rawText is required", http.StatusBadRequest)
		return
	}
	lr := agent.Listener{Crops: a.source.Crops()}.Listen(req.RawText)
	_ = json.NewEncoder(w).Encode(lr)
}

// handleChat runs one buyer chat turn. Negotiation state travels in the
// request; when the listing id is a valid ObjectID the round counter,
// last counter price and transcript are also persisted best-effort so
// dashboards can show the thread.
func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	var req agent.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	res, err := a.orchestrator.Chat(ctx, req)
	if err != nil {
		if errors.Is(err, agent.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "chat turn failed", http.StatusInternalServerError)
		return
	}

	round := req.RoundNumber
	if res.Decision.Status == agent.DecisionCounterOffer {
		round++
	}
	a.persistChatTurn(ctx, req, res, round)

	_ = json.NewEncoder(w).Encode(chatResp{
		Decision:     res.Decision,
		ChatMessage:  res.ChatMessage,
		ReservePrice: res.ReservePrice,
		RoundNumber:  round,
	})
}

// persistChatTurn upserts the negotiation thread document. Persistence
// is advisory; failures are ignored so a Mongo outage cannot block the
// decision path.
func (a *App) persistChatTurn(ctx context.Context, req agent.ChatRequest, res agent.ChatResult, round int) {
	listingID, err := primitive.ObjectIDFromHex(req.ListingID)
	if err != nil {
		return
	}

	now := time.Now()
	filter := bson.M{"listingId": listingID}
	if buyerID, err := primitive.ObjectIDFromHex(req.BuyerID); err == nil {
		filter["buyerId"] = buyerID
	}

	set := bson.M{
		"roundNumber": round,
		"status":      res.Decision.Status,
		"updatedAt":   now,
	}
	if res.Decision.CounterPrice != nil {
		set["lastCounterPrice"] = *res.Decision.CounterPrice
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
		"$push": bson.M{"turns": bson.M{"$each": []models.ChatTurn{
			{From: "buyer", Text: req.BuyerMessage, At: now},
			{From: "agent", Text: res.ChatMessage, At: now},
		}}},
	}

	_, _ = a.negotiations.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
}
