package bookingRepo

import (
	"clinicbook/database"

	"go.mongodb.org/mongo-driver/mongo"
)

const bookingCollection = "bookings"

// MongoBookingRepo implements BookingRepository against MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository bound to the bookings collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{coll: database.Collection(bookingCollection)}
}
