// Package inventory tracks seat availability per schedule.  Reserve and
// Release run against whatever SeatStore they are given; the booking
// lifecycle passes a transaction-bound store so the status check and the
// status write happen under the same row locks.
package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iliyamo/cinema-ticket-booking/internal/apperr"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// SeatStore is the persistence needed by the inventory.  LockByIDs must
// return the current persisted rows and, for SQL stores, hold a row lock
// until the surrounding transaction ends.
type SeatStore interface {
	ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error)
	LockByIDs(ctx context.Context, ids []uint64) ([]model.Seat, error)
	UpdateStatus(ctx context.Context, ids []uint64, status model.SeatStatus) error
}

// ListAvailable returns every seat of the schedule with its status, in
// label order, for the seat selection view.
func ListAvailable(ctx context.Context, store SeatStore, scheduleID uint64) ([]model.Seat, error) {
	seats, err := store.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list seats of schedule %d: %w", scheduleID, err)
	}
	return seats, nil
}

// Reserve books seatIDs for scheduleID.  Every seat must exist, belong to
// the schedule and be AVAILABLE; otherwise a SeatUnavailable error naming
// all offending ids is returned and nothing is written.
func Reserve(ctx context.Context, store SeatStore, seatIDs []uint64, scheduleID uint64) error {
	ids := Normalize(seatIDs)
	if len(ids) == 0 {
		return apperr.New(apperr.Validation, "at least one seat must be selected").
			WithField("seat_id", []string{"at least one seat must be selected"})
	}
	seats, err := store.LockByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("lock seats: %w", err)
	}
	found := make(map[uint64]model.Seat, len(seats))
	for _, s := range seats {
		found[s.ID] = s
	}
	var unavailable []uint64
	for _, id := range ids {
		s, ok := found[id]
		if !ok || s.ScheduleID != scheduleID || s.Status != model.SeatAvailable {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return apperr.New(apperr.SeatUnavailable, "Chair Has Been Chosen!").
			WithField("seat_id", unavailable)
	}
	if err := store.UpdateStatus(ctx, ids, model.SeatBooked); err != nil {
		return fmt.Errorf("mark seats booked: %w", err)
	}
	return nil
}

// Release makes seatIDs AVAILABLE again.  Releasing a seat that is
// already available is a no-op.
func Release(ctx context.Context, store SeatStore, seatIDs []uint64) error {
	ids := Normalize(seatIDs)
	if len(ids) == 0 {
		return nil
	}
	if err := store.UpdateStatus(ctx, ids, model.SeatAvailable); err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	return nil
}

// Normalize drops zero ids and duplicates and sorts the rest ascending,
// which is also the row lock order.
func Normalize(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
