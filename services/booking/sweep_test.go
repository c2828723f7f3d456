package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinicbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepMarksOverdueBookings(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	seedConfirmed(repo, "bk-overdue", "patient-1", yesterday.Format("2006-01-02"), "10:30", yesterday)

	result, err := svc.RunNoShowSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Empty(t, result.Failures)

	b, err := repo.GetByID(ctx, "bk-overdue")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusNoShow, b.BookingStatus)
	assert.Equal(t, models.CheckinStatusMissed, b.CheckinStatus)

	// A second pass finds nothing left to do.
	again, err := svc.RunNoShowSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ProcessedCount)
	assert.Empty(t, again.Failures)

	b2, err := repo.GetByID(ctx, "bk-overdue")
	require.NoError(t, err)
	assert.Equal(t, b.BookingStatus, b2.BookingStatus)
}

func TestSweepHonorsGracePeriod(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Started ten minutes ago, grace is thirty: not yet overdue.
	seedConfirmed(repo, "bk-fresh", "patient-1", time.Now().Format("2006-01-02"), "10:00", time.Now().Add(-10*time.Minute))

	result, err := svc.RunNoShowSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ProcessedCount)

	b, err := repo.GetByID(ctx, "bk-fresh")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.BookingStatus)
}

func TestSweepSkipsCheckedInBookings(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	seedConfirmed(repo, "bk-arrived", "patient-1", yesterday.Format("2006-01-02"), "10:30", yesterday)
	_, err := svc.CheckIn(ctx, "bk-arrived")
	require.NoError(t, err)

	result, err := svc.RunNoShowSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ProcessedCount)

	b, err := repo.GetByID(ctx, "bk-arrived")
	require.NoError(t, err)
	assert.Equal(t, models.CheckinStatusCheckedIn, b.CheckinStatus)
}

func TestSweepToleratesConcurrentInvocation(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	for _, slot := range []string{"09:00", "09:30", "10:00", "10:30"} {
		seedConfirmed(repo, "bk-"+slot, "patient-"+slot, yesterday.Format("2006-01-02"), slot, yesterday)
	}

	var wg sync.WaitGroup
	results := make([]*SweepResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.RunNoShowSweep(ctx)
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Between the two overlapping passes every booking transitions exactly
	// once; a lost conditional write is a silent skip, not a failure.
	total := results[0].ProcessedCount + results[1].ProcessedCount
	assert.GreaterOrEqual(t, total, 4)
	assert.Empty(t, results[0].Failures)
	assert.Empty(t, results[1].Failures)

	for _, slot := range []string{"09:00", "09:30", "10:00", "10:30"} {
		b, err := repo.GetByID(ctx, "bk-"+slot)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusNoShow, b.BookingStatus)
	}
}
