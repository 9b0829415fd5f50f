package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingStatus string

const (
	ListingStatusOpen      ListingStatus = "open"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusWithdrawn ListingStatus = "withdrawn"
)

// Listing is a farmer's produce lot up for offers. ReservePrice is the
// recommended reserve computed at creation time; 0 means no market data
// was available for the crop.
type Listing struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FarmerID     primitive.ObjectID `bson:"farmerId"      json:"farmerId"`
	Crop         string             `bson:"crop"          json:"crop"`
	QuantityKg   float64            `bson:"quantityKg"    json:"quantityKg"`
	District     string             `bson:"district"      json:"district"`
	ReservePrice float64            `bson:"reservePrice"  json:"reservePrice"`
	FinalPrice   float64            `bson:"finalPrice,omitempty" json:"finalPrice,omitempty"`
	Status       ListingStatus      `bson:"status"        json:"status"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"     json:"updatedAt"`
}
