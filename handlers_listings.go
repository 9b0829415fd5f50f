package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"faircrop/agent"
	"faircrop/models"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// handleCreateListing inserts a new produce lot for the authenticated
// farmer and stores the recommended reserve price computed from current
// mandi data. A reserve of 0 means no market data for the crop; the
// listing is still created and the farmer sets a price manually.
func (a *App) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if u.Role != models.RoleFarmer {
		http.Error(w, "only farmers can create listings", http.StatusForbidden)
		return
	}

	var req createListingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Crop) == "" || req.QuantityKg <= 0 {
		http.Error(w, "crop and positive quantityKg are required", http.StatusBadRequest)
		return
	}
	district := req.District
	if district == "" {
		district = u.District
	}
	if district == "" {
		http.Error(w, "district is required", http.StatusBadRequest)
		return
	}

	analysis := agent.Analyst{Source: a.source}.Analyze(req.Crop, req.QuantityKg)

	now := time.Now()
	l := models.Listing{
		FarmerID:     u.ID,
		Crop:         req.Crop,
		QuantityKg:   req.QuantityKg,
		District:     district,
		ReservePrice: analysis.RecommendedReservePrice,
		Status:       models.ListingStatusOpen,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := a.listings.InsertOne(ctx, &l)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	l.ID = res.InsertedID.(primitive.ObjectID)

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(bson.M{
		"listing":        l,
		"marketAnalysis": analysis,
	})
}

// handleListListings returns open listings for browsing buyers.
func (a *App) handleListListings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	cur, err := a.listings.Find(ctx,
		bson.M{"status": models.ListingStatusOpen},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	var out []models.Listing
	if err := cur.All(ctx, &out); err != nil {
		http.Error(w, "decode error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleMyListings returns the current farmer's listings, newest first.
func (a *App) handleMyListings(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	cur, err := a.listings.Find(ctx, bson.M{"farmerId": uid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	var out []models.Listing
	if err := cur.All(ctx, &out); err != nil {
		http.Error(w, "decode error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleGetListing returns a single listing by id.
func (a *App) handleGetListing(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var l models.Listing
	if err := a.listings.FindOne(ctx, bson.M{"_id": oid}).Decode(&l); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(l)
}

// handleUpdateListing updates quantity, notes or status for the owner.
func (a *App) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req struct {
		QuantityKg   *float64 `json:"quantityKg,omitempty"`
		Notes        *string  `json:"notes,omitempty"`
		Status       *string  `json:"status,omitempty"`
		ReservePrice *float64 `json:"reservePrice,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.QuantityKg != nil {
		if *req.QuantityKg <= 0 {
			http.Error(w, "quantityKg must be positive", http.StatusBadRequest)
			return
		}
		set["quantityKg"] = *req.QuantityKg
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}
	if req.Status != nil {
		set["status"] = models.ListingStatus(*req.Status)
	}
	if req.ReservePrice != nil {
		if *req.ReservePrice <= 0 {
			http.Error(w, "reservePrice must be positive", http.StatusBadRequest)
			return
		}
		set["reservePrice"] = *req.ReservePrice
	}
	if len(set) == 1 {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res := a.listings.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid, "farmerId": uid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var out models.Listing
	if err := res.Decode(&out); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleDeleteListing removes an owned listing.
func (a *App) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := a.listings.DeleteOne(ctx, bson.M{"_id": oid, "farmerId": uid})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(bson.M{"ok": true})
}
