package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatTurn is one exchanged message in a negotiation thread.
type ChatTurn struct {
	From string    `bson:"from" json:"from"` // buyer | agent
	Text string    `bson:"text" json:"text"`
	At   time.Time `bson:"at"   json:"at"`
}

// Negotiation is the persisted state of one buyer's chat thread on a
// listing: round counter, last counter price and the transcript. The
// decision engine itself is stateless; this document is what the HTTP
// layer feeds back into it on each turn.
type Negotiation struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"     json:"id"`
	ListingID        primitive.ObjectID `bson:"listingId"         json:"listingId"`
	BuyerID          primitive.ObjectID `bson:"buyerId,omitempty" json:"buyerId,omitempty"`
	RoundNumber      int                `bson:"roundNumber"       json:"roundNumber"`
	LastCounterPrice *float64           `bson:"lastCounterPrice,omitempty" json:"lastCounterPrice,omitempty"`
	Status           string             `bson:"status"            json:"status"`
	Turns            []ChatTurn         `bson:"turns,omitempty"   json:"turns,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"         json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"         json:"updatedAt"`
}
