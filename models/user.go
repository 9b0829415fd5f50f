package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

// User is a marketplace account. District is where the user's produce
// ships from (farmers) or to (buyers).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username"      json:"username"`
	Email        string             `bson:"email"         json:"email"`
	PasswordHash string             `bson:"passwordHash"  json:"-"`
	Role         Role               `bson:"role"          json:"role"`
	District     string             `bson:"district,omitempty" json:"district,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"     json:"createdAt"`
}
