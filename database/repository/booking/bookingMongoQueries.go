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

func activeStatusFilter() bson.M {
	return bson.M{"$in": bson.A{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
	}}
}

// ActiveExists reports whether an active booking occupies the slot.
func (repo *MongoBookingRepo) ActiveExists(ctx context.Context, resourceKey, date, timeSlot, excludeID string) (bool, error) {
	filter := bson.M{
		"resource_key":   resourceKey,
		"date":           date,
		"time_slot":      timeSlot,
		"booking_status": activeStatusFilter(),
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	count, err := repo.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("slot occupancy check failed: %w", err)
	}
	return count > 0, nil
}

// OccupiedSlots returns the set of time slots with an active booking for a
// resource on a date.
func (repo *MongoBookingRepo) OccupiedSlots(ctx context.Context, resourceKey, date string) (map[string]bool, error) {
	cursor, err := repo.coll.Find(ctx,
		bson.M{
			"resource_key":   resourceKey,
			"date":           date,
			"booking_status": activeStatusFilter(),
		},
		options.Find().SetProjection(bson.M{"time_slot": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("occupied slot query failed: %w", err)
	}
	defer cursor.Close(ctx)

	occupied := make(map[string]bool)
	for cursor.Next(ctx) {
		var doc struct {
			TimeSlot string `bson:"time_slot"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode occupied slot: %w", err)
		}
		occupied[doc.TimeSlot] = true
	}
	return occupied, cursor.Err()
}

// FindOverdue returns confirmed, not-arrived bookings whose appointment
// started before the cutoff. Sweep input.
func (repo *MongoBookingRepo) FindOverdue(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	cursor, err := repo.coll.Find(ctx, bson.M{
		"booking_status": models.BookingStatusConfirmed,
		"checkin_status": models.CheckinStatusNotArrived,
		"start_at":       bson.M{"$lt": cutoff},
	})
	if err != nil {
		return nil, fmt.Errorf("overdue booking query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overdue bookings: %w", err)
	}
	return bookings, nil
}

// FindActiveBySubjectAndDate is the manual check-in lookup: the subject's
// active booking for the given day.
func (repo *MongoBookingRepo) FindActiveBySubjectAndDate(ctx context.Context, subjectID, date string) (*models.Booking, error) {
	var booking models.Booking
	err := repo.coll.FindOne(ctx, bson.M{
		"subject_id":     subjectID,
		"date":           date,
		"booking_status": activeStatusFilter(),
	}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("subject booking lookup failed: %w", err)
	}
	return &booking, nil
}

// ListBySubject returns a subject's bookings within an inclusive date range,
// newest first.
func (repo *MongoBookingRepo) ListBySubject(ctx context.Context, subjectID, fromDate, toDate string) ([]models.Booking, error) {
	filter := bson.M{"subject_id": subjectID}
	if fromDate != "" || toDate != "" {
		dateRange := bson.M{}
		if fromDate != "" {
			dateRange["$gte"] = fromDate
		}
		if toDate != "" {
			dateRange["$lte"] = toDate
		}
		filter["date"] = dateRange
	}

	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("subject booking list failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode subject bookings: %w", err)
	}
	return bookings, nil
}
