package notification

import (
	"context"
	"fmt"

	"clinicbook/models"
	"clinicbook/utils"

	"firebase.google.com/go/v4/messaging"
)

// FCMDispatcher delivers booking events as push messages over Firebase Cloud
// Messaging. Each patient subscribes to their own topic from the mini-app, so
// no device token bookkeeping happens on this side.
type FCMDispatcher struct {
	Client *messaging.Client
}

// NewFCMDispatcher wires the dispatcher to the shared messaging client.
func NewFCMDispatcher() *FCMDispatcher {
	return &FCMDispatcher{Client: utils.FCMClient}
}

var eventTitles = map[string]string{
	models.NotifyBookingConfirmed: "Appointment confirmed",
	models.NotifyBookingCancelled: "Appointment cancelled",
	models.NotifyBookingNoShow:    "Missed appointment",
	models.NotifyBookingCheckedIn: "Checked in",
}

// DispatchBookingEvent sends one push to the subject's topic.
func (d *FCMDispatcher) DispatchBookingEvent(ctx context.Context, n models.BookingNotification) error {
	title, ok := eventTitles[n.Event]
	if !ok {
		return fmt.Errorf("unknown booking event %q", n.Event)
	}

	msg := &messaging.Message{
		Topic: "patient-" + n.SubjectID,
		Notification: &messaging.Notification{
			Title: title,
			Body:  fmt.Sprintf("%s at %s", n.Date, n.TimeSlot),
		},
		Data: map[string]string{
			"event":     n.Event,
			"bookingId": n.BookingID,
			"date":      n.Date,
			"timeSlot":  n.TimeSlot,
		},
	}

	if _, err := d.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message for booking %s: %w", n.BookingID, err)
	}
	return nil
}
