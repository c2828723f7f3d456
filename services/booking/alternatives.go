package booking

import (
	"context"
	"fmt"
	"time"

	"clinicbook/models"
)

// slotGrid enumerates the clinic's bookable time slots for one day.
func (s *DefaultBookingService) slotGrid() ([]string, error) {
	open, err := time.Parse("15:04", s.Policy.ClinicOpen)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic open time %q: %w", s.Policy.ClinicOpen, err)
	}
	close, err := time.Parse("15:04", s.Policy.ClinicClose)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic close time %q: %w", s.Policy.ClinicClose, err)
	}

	step := time.Duration(s.Policy.SlotMinutes) * time.Minute
	var grid []string
	for t := open; t.Before(close); t = t.Add(step) {
		grid = append(grid, t.Format("15:04"))
	}
	return grid, nil
}

// suggestAlternatives computes replacement slots for a conflicting request:
// remaining open same-day slots first, then the following lookahead days if
// the day is full. The conflicting slot and every slot occupied at
// computation time are excluded; slots already in the past are skipped.
func (s *DefaultBookingService) suggestAlternatives(ctx context.Context, conflict models.SlotRef) ([]models.SlotRef, error) {
	grid, err := s.slotGrid()
	if err != nil {
		return nil, err
	}

	sameDay, err := s.openSlotsOn(ctx, conflict.ResourceKey, conflict.Date, grid, conflict.TimeSlot)
	if err != nil {
		return nil, err
	}
	if len(sameDay) > 0 {
		return sameDay, nil
	}

	day, err := time.ParseInLocation("2006-01-02", conflict.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid conflict date %q: %w", conflict.Date, err)
	}

	var suggestions []models.SlotRef
	for offset := 1; offset <= s.Policy.LookaheadDays; offset++ {
		date := day.AddDate(0, 0, offset).Format("2006-01-02")
		open, err := s.openSlotsOn(ctx, conflict.ResourceKey, date, grid, "")
		if err != nil {
			return nil, err
		}
		for _, slot := range open {
			suggestions = append(suggestions, slot)
			if len(suggestions) >= s.Policy.MaxAlternatives {
				return suggestions, nil
			}
		}
	}
	return suggestions, nil
}

func (s *DefaultBookingService) openSlotsOn(ctx context.Context, resourceKey, date string, grid []string, excludeSlot string) ([]models.SlotRef, error) {
	occupied, err := s.Repo.OccupiedSlots(ctx, resourceKey, date)
	if err != nil {
		return nil, wrapInfra("alternative slot lookup", err)
	}

	now := s.now()
	var open []models.SlotRef
	for _, slot := range grid {
		if slot == excludeSlot || occupied[slot] {
			continue
		}
		start, err := slotStart(date, slot)
		if err != nil || start.Before(now) {
			continue
		}
		open = append(open, models.SlotRef{ResourceKey: resourceKey, Date: date, TimeSlot: slot})
		if len(open) >= s.Policy.MaxAlternatives {
			break
		}
	}
	return open, nil
}
