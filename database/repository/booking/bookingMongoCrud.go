package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Insert persists a new booking. The partial unique index rejects the write
// when an active booking already occupies (resource_key, date, time_slot),
// which surfaces here as ErrSlotTaken. An extra occupancy query narrows but
// cannot replace that check; the index is the atomic unit.
func (repo *MongoBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	taken, err := repo.ActiveExists(ctx, booking.ResourceKey, booking.Date, booking.TimeSlot, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	if _, err := repo.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its unique ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// ConfirmPending flips pending → confirmed. The filter carries the expected
// current state; MatchedCount == 0 means the booking was not pending anymore.
func (repo *MongoBookingRepo) ConfirmPending(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"id": id, "booking_status": models.BookingStatusPending},
		bson.M{"$set": bson.M{
			"booking_status": models.BookingStatusConfirmed,
			"confirmed_at":   at,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("confirm booking failed: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// CancelActive flips pending|confirmed → cancelled_by_subject. The filter
// refuses once the patient has checked in or the status went terminal.
func (repo *MongoBookingRepo) CancelActive(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{
			"id": id,
			"booking_status": bson.M{"$in": bson.A{
				models.BookingStatusPending,
				models.BookingStatusConfirmed,
			}},
			"checkin_status": models.CheckinStatusNotArrived,
		},
		bson.M{"$set": bson.M{
			"booking_status":      models.BookingStatusCancelled,
			"cancelled_at":        at,
			"cancellation_reason": reason,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("cancel booking failed: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// MarkNoShow flips confirmed+not_arrived → no_show+missed. Losing the race
// to a check-in or a second sweep pass simply leaves MatchedCount at zero.
func (repo *MongoBookingRepo) MarkNoShow(ctx context.Context, id string) (bool, error) {
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{
			"id":             id,
			"booking_status": models.BookingStatusConfirmed,
			"checkin_status": models.CheckinStatusNotArrived,
		},
		bson.M{"$set": bson.M{
			"booking_status": models.BookingStatusNoShow,
			"checkin_status": models.CheckinStatusMissed,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("mark no-show failed: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// SetCheckedIn flips confirmed+not_arrived → checked_in.
func (repo *MongoBookingRepo) SetCheckedIn(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{
			"id":             id,
			"booking_status": models.BookingStatusConfirmed,
			"checkin_status": models.CheckinStatusNotArrived,
		},
		bson.M{"$set": bson.M{
			"checkin_status": models.CheckinStatusCheckedIn,
			"checkin_at":     at,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("check-in update failed: %w", err)
	}
	return res.MatchedCount > 0, nil
}
