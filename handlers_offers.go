package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"faircrop/agent"
	"faircrop/models"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// handlePlaceOffer records a buyer's bid on an open listing. The
// buyer's district defaults from their profile when omitted.
func (a *App) handlePlaceOffer(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if u.Role != models.RoleBuyer {
		http.Error(w, "only buyers can place offers", http.StatusForbidden)
		return
	}

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req placeOfferReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PricePerKg <= 0 {
		http.Error(w, "pricePerKg must be positive", http.StatusBadRequest)
		return
	}
	district := req.BuyerDistrict
	if district == "" {
		district = u.District
	}
	if district == "" {
		http.Error(w, "district is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var l models.Listing
	if err := a.listings.FindOne(ctx, bson.M{"_id": oid}).Decode(&l); err != nil {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	if l.Status != models.ListingStatusOpen {
		http.Error(w, "listing is not open", http.StatusConflict)
		return
	}

	quantity := req.QuantityKg
	if quantity <= 0 {
		quantity = l.QuantityKg
	}
	o := models.Offer{
		ListingID:     oid,
		BuyerID:       u.ID,
		BuyerDistrict: district,
		PricePerKg:    req.PricePerKg,
		QuantityKg:    quantity,
		Status:        models.OfferStatusPending,
		CreatedAt:     time.Now(),
	}
	res, err := a.offers.InsertOne(ctx, &o)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	o.ID = res.InsertedID.(primitive.ObjectID)

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(o)
}

// handleListOffers returns all offers on a listing to its owner.
func (a *App) handleListOffers(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	var l models.Listing
	if err := a.listings.FindOne(ctx, bson.M{"_id": oid}).Decode(&l); err != nil {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	if l.FarmerID != uid {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	cur, err := a.offers.Find(ctx, bson.M{"listingId": oid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	var out []models.Offer
	if err := cur.All(ctx, &out); err != nil {
		http.Error(w, "decode error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleEvaluateListing ranks the stored offers on an owned listing
// using the listing's reserve price and quantity.
func (a *App) handleEvaluateListing(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var l models.Listing
	if err := a.listings.FindOne(ctx, bson.M{"_id": oid}).Decode(&l); err != nil {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	if l.FarmerID != uid {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	cur, err := a.offers.Find(ctx, bson.M{"listingId": oid, "status": models.OfferStatusPending})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	var stored []models.Offer
	if err := cur.All(ctx, &stored); err != nil {
		http.Error(w, "decode error", http.StatusInternalServerError)
		return
	}
	if len(stored) == 0 {
		http.Error(w, "no pending offers", http.StatusNotFound)
		return
	}

	candidates := make([]agent.CandidateOffer, 0, len(stored))
	for _, o := range stored {
		candidates = append(candidates, agent.CandidateOffer{
			BuyerID:       o.BuyerID.Hex(),
			BuyerDistrict: o.BuyerDistrict,
			PricePerKg:    o.PricePerKg,
		})
	}

	var reserve *float64
	if l.ReservePrice > 0 {
		rp := l.ReservePrice
		reserve = &rp
	}

	eval, err := agent.EvaluateOffers(oid.Hex(), l.District, l.QuantityKg, candidates, reserve)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(eval)
}
