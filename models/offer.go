package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// Offer is a buyer's bid on a listing.
type Offer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ListingID     primitive.ObjectID `bson:"listingId"     json:"listingId"`
	BuyerID       primitive.ObjectID `bson:"buyerId"       json:"buyerId"`
	BuyerDistrict string             `bson:"buyerDistrict" json:"buyerDistrict"`
	PricePerKg    float64            `bson:"pricePerKg"    json:"pricePerKg"`
	QuantityKg    float64            `bson:"quantityKg"    json:"quantityKg"`
	Status        OfferStatus        `bson:"status"        json:"status"`
	CreatedAt     time.Time          `bson:"createdAt"     json:"createdAt"`
}
