package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the booking core relies on. The partial
// unique index over (resource_key, date, time_slot) filtered to active
// statuses IS the slot-uniqueness invariant: a duplicate insert fails at the
// store regardless of what any advisory reservation said.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("booking_id_unique"),
		},
		{
			Keys: bson.D{
				{Key: "resource_key", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time_slot", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("active_slot_unique").
				SetPartialFilterExpression(bson.M{
					"booking_status": bson.M{"$in": bson.A{
						models.BookingStatusPending,
						models.BookingStatusConfirmed,
					}},
				}),
		},
		{
			Keys: bson.D{
				{Key: "booking_status", Value: 1},
				{Key: "checkin_status", Value: 1},
				{Key: "start_at", Value: 1},
			},
			Options: options.Index().SetName("sweep_lookup"),
		},
		{
			Keys: bson.D{
				{Key: "subject_id", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetName("subject_date_lookup"),
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
