package utils

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a new ObjectID in hex form. Users, products, cart items and orders
// all share this identifier format.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func IsObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
