package reservation

import (
	"context"
	"testing"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo satisfies BookingRepository with a fixed occupancy answer; the
// reservation manager only calls ActiveExists.
type stubRepo struct {
	occupied bool
}

func (s *stubRepo) Insert(context.Context, *models.Booking) error { return nil }
func (s *stubRepo) GetByID(context.Context, string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}
func (s *stubRepo) ActiveExists(context.Context, string, string, string, string) (bool, error) {
	return s.occupied, nil
}
func (s *stubRepo) OccupiedSlots(context.Context, string, string) (map[string]bool, error) {
	return nil, nil
}
func (s *stubRepo) ConfirmPending(context.Context, string, time.Time) (bool, error) {
	return false, nil
}
func (s *stubRepo) CancelActive(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
func (s *stubRepo) MarkNoShow(context.Context, string) (bool, error)           { return false, nil }
func (s *stubRepo) SetCheckedIn(context.Context, string, time.Time) (bool, error) { return false, nil }
func (s *stubRepo) FindOverdue(context.Context, time.Time) ([]models.Booking, error) {
	return nil, nil
}
func (s *stubRepo) FindActiveBySubjectAndDate(context.Context, string, string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}
func (s *stubRepo) ListBySubject(context.Context, string, string, string) ([]models.Booking, error) {
	return nil, nil
}

func newTestManager(t *testing.T, repo bookingRepo.BookingRepository) (*DefaultSlotReservationManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewDefaultSlotReservationManager(client, repo, 5*time.Minute), mr
}

func TestReserveGrantsHoldWithTTL(t *testing.T) {
	mgr, _ := newTestManager(t, &stubRepo{})
	ctx := context.Background()

	before := time.Now()
	res, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-1")
	require.NoError(t, err)
	require.NotEmpty(t, res.ReservationID)
	assert.Equal(t, "dr-adams:main", res.ResourceKey)

	// expiresAt = now + TTL (5 minutes).
	assert.WithinDuration(t, before.Add(5*time.Minute), res.ExpiresAt, 2*time.Second)

	held, err := mgr.IsHeld(ctx, "dr-adams:main", "2025-07-01", "10:30")
	require.NoError(t, err)
	assert.True(t, held)
}

func TestReserveDeniedWhileHeld(t *testing.T) {
	mgr, _ := newTestManager(t, &stubRepo{})
	ctx := context.Background()

	_, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-1")
	require.NoError(t, err)

	_, err = mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-2")
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)

	// A different slot on the same resource is unaffected.
	_, err = mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "11:00", "patient-2")
	assert.NoError(t, err)
}

func TestReserveSucceedsAfterExpiry(t *testing.T) {
	mgr, mr := newTestManager(t, &stubRepo{})
	ctx := context.Background()

	_, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-1")
	require.NoError(t, err)

	// Advance past the TTL; the redis key expires and a new hold is granted.
	mr.FastForward(6 * time.Minute)

	res, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-2")
	require.NoError(t, err)
	assert.Equal(t, "patient-2", res.SubjectID)
}

func TestReserveSupersedesWallClockExpiredHold(t *testing.T) {
	mgr, _ := newTestManager(t, &stubRepo{})
	ctx := context.Background()

	// Issue a hold whose wall-clock expiry is already in the past even
	// though the redis TTL has not fired.
	mgr.now = func() time.Time { return time.Now().Add(-10 * time.Minute) }
	_, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-1")
	require.NoError(t, err)

	mgr.now = time.Now
	res, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-2")
	require.NoError(t, err)
	assert.Equal(t, "patient-2", res.SubjectID)
}

func TestReserveDeniedWhenSlotBooked(t *testing.T) {
	mgr, _ := newTestManager(t, &stubRepo{occupied: true})

	_, err := mgr.Reserve(context.Background(), "dr-adams:main", "2025-07-01", "10:30", "patient-1")
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
}

func TestReleaseFreesSlot(t *testing.T) {
	mgr, _ := newTestManager(t, &stubRepo{})
	ctx := context.Background()

	res, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-1")
	require.NoError(t, err)

	require.NoError(t, mgr.Release(ctx, res.ReservationID))

	held, err := mgr.IsHeld(ctx, "dr-adams:main", "2025-07-01", "10:30")
	require.NoError(t, err)
	assert.False(t, held)

	// Releasing again is a no-op.
	assert.NoError(t, mgr.Release(ctx, res.ReservationID))
}

func TestReleaseLeavesNewerHoldIntact(t *testing.T) {
	mgr, mr := newTestManager(t, &stubRepo{})
	ctx := context.Background()

	first, err := mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-1")
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)
	_, err = mgr.Reserve(ctx, "dr-adams:main", "2025-07-01", "10:30", "patient-2")
	require.NoError(t, err)

	// The stale release must not free patient-2's hold.
	require.NoError(t, mgr.Release(ctx, first.ReservationID))

	held, err := mgr.IsHeld(ctx, "dr-adams:main", "2025-07-01", "10:30")
	require.NoError(t, err)
	assert.True(t, held)
}
