package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinicbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBookingRetriesInfrastructureErrors(t *testing.T) {
	repo := newMemRepo()
	repo.insertFaults = []error{
		errors.New("connection reset"),
		errors.New("connection reset"),
	}
	svc := newTestService(repo)

	b, err := svc.SubmitBooking(context.Background(), testCandidate(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, 3, repo.insertCalls, "two transient failures then success")
}

func TestSubmitBookingSurfacesInfraAfterMaxAttempts(t *testing.T) {
	repo := newMemRepo()
	repo.insertFaults = []error{
		errors.New("store down"),
		errors.New("store down"),
		errors.New("store down"),
	}
	svc := newTestService(repo)

	_, err := svc.SubmitBooking(context.Background(), testCandidate(), "")
	var infra *InfrastructureError
	require.ErrorAs(t, err, &infra)
	assert.Equal(t, 3, repo.insertCalls, "bounded at MaxAttempts")
}

func TestSubmitBookingNeverRetriesConflicts(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.SubmitBooking(ctx, testCandidate(), "")
	require.NoError(t, err)
	callsAfterFirst := repo.insertCalls

	loser := testCandidate()
	loser.SubjectID = "patient-2"
	_, err = svc.SubmitBooking(ctx, loser, "")
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, callsAfterFirst+1, repo.insertCalls, "a slot conflict goes straight to suggestions")
}

func TestConflictAlternativesExcludeConflictingAndOccupied(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	date := tomorrow()
	occupy := func(subject, slot string) {
		c := models.BookingCandidate{SubjectID: subject, ResourceKey: "dr-adams:main", Date: date, TimeSlot: slot}
		_, err := svc.SubmitBooking(ctx, c, "")
		require.NoError(t, err)
	}
	occupy("patient-1", "10:30")
	occupy("patient-2", "11:00")
	occupy("patient-3", "14:00")

	loser := models.BookingCandidate{SubjectID: "patient-4", ResourceKey: "dr-adams:main", Date: date, TimeSlot: "10:30"}
	_, err := svc.SubmitBooking(ctx, loser, "")
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotEmpty(t, conflict.Alternatives)
	assert.False(t, conflict.NoAlternatives)

	for _, alt := range conflict.Alternatives {
		assert.Equal(t, date, alt.Date, "same-day suggestions come first")
		assert.NotEqual(t, "10:30", alt.TimeSlot, "conflicting slot is never suggested")
		assert.NotEqual(t, "11:00", alt.TimeSlot, "occupied slots are never suggested")
		assert.NotEqual(t, "14:00", alt.TimeSlot, "occupied slots are never suggested")
	}
	assert.LessOrEqual(t, len(conflict.Alternatives), svc.Policy.MaxAlternatives)
}

func TestConflictSpillsIntoFollowingDays(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Fill the entire conflict day.
	date := tomorrow()
	grid, err := svc.slotGrid()
	require.NoError(t, err)
	for _, slot := range grid {
		seedConfirmed(repo, "bk-fill-"+slot, "patient-seed", date, slot, time.Now().AddDate(0, 0, 1))
	}

	loser := models.BookingCandidate{SubjectID: "patient-x", ResourceKey: "dr-adams:main", Date: date, TimeSlot: grid[0]}
	_, err = svc.SubmitBooking(ctx, loser, "")
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotEmpty(t, conflict.Alternatives)
	for _, alt := range conflict.Alternatives {
		assert.Greater(t, alt.Date, date, "full day spills into the lookahead window")
	}
}

func TestConflictReportsNoAlternatives(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	svc.Policy.LookaheadDays = 1
	ctx := context.Background()

	date := tomorrow()
	nextDate := time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	grid, err := svc.slotGrid()
	require.NoError(t, err)
	for _, slot := range grid {
		seedConfirmed(repo, "bk-a-"+slot, "patient-seed", date, slot, time.Now().AddDate(0, 0, 1))
		seedConfirmed(repo, "bk-b-"+slot, "patient-seed", nextDate, slot, time.Now().AddDate(0, 0, 2))
	}

	loser := models.BookingCandidate{SubjectID: "patient-x", ResourceKey: "dr-adams:main", Date: date, TimeSlot: grid[0]}
	_, err = svc.SubmitBooking(ctx, loser, "")
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Empty(t, conflict.Alternatives)
	assert.True(t, conflict.NoAlternatives, "exhausted window is explicit, not an empty list")
}

// releasingReservations records Release calls.
type releasingReservations struct {
	released []string
}

func (r *releasingReservations) Reserve(context.Context, string, string, string, string) (*models.SlotReservation, error) {
	return nil, errors.New("not used")
}
func (r *releasingReservations) Release(_ context.Context, reservationID string) error {
	r.released = append(r.released, reservationID)
	return nil
}
func (r *releasingReservations) IsHeld(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func TestSubmitBookingReleasesReservationOnSuccess(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	res := &releasingReservations{}
	svc.Reservations = res

	_, err := svc.SubmitBooking(context.Background(), testCandidate(), "res-123")
	require.NoError(t, err)
	assert.Equal(t, []string{"res-123"}, res.released)
}

func TestSubmitBookingToleratesMissingReservation(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	// No reservation manager wired and no reservation ID supplied.
	_, err := svc.SubmitBooking(context.Background(), testCandidate(), "")
	assert.NoError(t, err)
}

func TestSubmitBookingValidatesCandidate(t *testing.T) {
	svc := newTestService(newMemRepo())

	bad := testCandidate()
	bad.TimeSlot = "not-a-time"
	_, err := svc.SubmitBooking(context.Background(), bad, "")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}
