// Package booking implements the booking lifecycle: create, edit and
// cancel bookings while keeping the seat inventory and the booking total
// consistent, plus the read views built on top of persisted bookings.
//
// Every mutation runs in a single transaction.  Seats are locked and
// re-checked against their persisted status inside that transaction, so
// two concurrent requests for the same seat serialize and exactly one of
// them wins.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/cinema-ticket-booking/internal/apperr"
	"github.com/iliyamo/cinema-ticket-booking/internal/inventory"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/pricing"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
)

// CreateInput is a new booking request.  UserID is the authenticated
// caller unless the request named another user explicitly.
type CreateInput struct {
	UserID     uint64
	ScheduleID uint64
	SeatIDs    []uint64
	ServiceIDs []uint64
}

// UpdateInput replaces the seats and services of a booking.
type UpdateInput struct {
	SeatIDs    []uint64
	ServiceIDs []uint64
}

// Options configures a Service.  Zero values fall back to the legacy
// cutoff, time.Now, a no-op publisher and slog.Default.
type Options struct {
	Cutoff        CutoffPolicy
	Now           func() time.Time
	Events        EventPublisher
	Logger        *slog.Logger
	PublicBaseURL string
}

// Service is the booking lifecycle manager.
type Service struct {
	store   Store
	engine  *pricing.Engine
	cutoff  CutoffPolicy
	now     func() time.Time
	events  EventPublisher
	log     *slog.Logger
	baseURL string
}

// NewService wires a Service over store.
func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:   store,
		engine:  pricing.NewEngine(),
		cutoff:  opts.Cutoff,
		now:     opts.Now,
		events:  opts.Events,
		log:     opts.Logger,
		baseURL: opts.PublicBaseURL,
	}
	if s.cutoff == "" {
		s.cutoff = CutoffLegacy
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Create books seats (and optional services) on a schedule for a user.
// The new booking is PENDING and priced from the schedule and services.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.BookingDetail, error) {
	seatIDs := inventory.Normalize(in.SeatIDs)
	if err := validateCreate(in, seatIDs); err != nil {
		return nil, err
	}
	selections := pricing.Selections(in.ServiceIDs)

	var created model.Booking
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.ScheduleByID(ctx, in.ScheduleID); err != nil {
			return err
		}
		exists, err := tx.UserExists(ctx, in.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if !exists {
			return apperr.New(apperr.Validation, "The given data was invalid.").
				WithField("user_id", []string{"The selected user id is invalid."})
		}
		if err := inventory.Reserve(ctx, tx, seatIDs, in.ScheduleID); err != nil {
			return err
		}
		quote, err := s.engine.Compute(ctx, tx, in.ScheduleID, len(seatIDs), selections)
		if err != nil {
			return err
		}
		b := model.Booking{
			UserID:     in.UserID,
			ScheduleID: in.ScheduleID,
			TotalPrice: quote.Total,
			Status:     model.BookingPending,
		}
		if err := tx.CreateBooking(ctx, &b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		if err := attach(ctx, tx, b.ID, seatIDs, quote.Lines); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.log.InfoContext(ctx, "booking created",
		slog.Uint64("booking_id", created.ID),
		slog.Uint64("user_id", created.UserID),
		slog.Uint64("schedule_id", created.ScheduleID),
		slog.Int("seats", len(seatIDs)),
		slog.Int64("total_price", created.TotalPrice))
	s.publish(ctx, EventCreated, created, seatIDs)
	return s.Get(ctx, created.ID)
}

// Update releases every seat the booking holds, reserves the new set and
// reprices the booking.  Any failure rolls the whole edit back, leaving
// the previous seats held.
func (s *Service) Update(ctx context.Context, bookingID uint64, in UpdateInput) (*model.BookingDetail, error) {
	seatIDs := inventory.Normalize(in.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, seatRequired()
	}
	selections := pricing.Selections(in.ServiceIDs)

	var updated model.Booking
	err := s.store.InTx(ctx, func(tx Tx) error {
		b, err := s.lockMutable(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		held, err := tx.BookingSeatIDs(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("load held seats: %w", err)
		}
		if err := inventory.Release(ctx, tx, held); err != nil {
			return err
		}
		if err := tx.DetachSeats(ctx, b.ID); err != nil {
			return fmt.Errorf("detach seats: %w", err)
		}
		if err := tx.DetachServices(ctx, b.ID); err != nil {
			return fmt.Errorf("detach services: %w", err)
		}
		if err := inventory.Reserve(ctx, tx, seatIDs, b.ScheduleID); err != nil {
			return err
		}
		quote, err := s.engine.Compute(ctx, tx, b.ScheduleID, len(seatIDs), selections)
		if err != nil {
			return err
		}
		if err := attach(ctx, tx, b.ID, seatIDs, quote.Lines); err != nil {
			return err
		}
		if err := tx.UpdateBookingTotal(ctx, b.ID, quote.Total); err != nil {
			return fmt.Errorf("update total: %w", err)
		}
		b.TotalPrice = quote.Total
		updated = *b
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.log.InfoContext(ctx, "booking updated",
		slog.Uint64("booking_id", updated.ID),
		slog.Int("seats", len(seatIDs)),
		slog.Int64("total_price", updated.TotalPrice))
	s.publish(ctx, EventUpdated, updated, seatIDs)
	return s.Get(ctx, updated.ID)
}

// Cancel releases the booking's seats and removes the booking together
// with its seat and service attachments.
func (s *Service) Cancel(ctx context.Context, bookingID uint64) error {
	var (
		cancelled model.Booking
		released  []uint64
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		b, err := s.lockMutable(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		held, err := tx.BookingSeatIDs(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("load held seats: %w", err)
		}
		if err := inventory.Release(ctx, tx, held); err != nil {
			return err
		}
		if err := tx.DetachSeats(ctx, b.ID); err != nil {
			return fmt.Errorf("detach seats: %w", err)
		}
		if err := tx.DetachServices(ctx, b.ID); err != nil {
			return fmt.Errorf("detach services: %w", err)
		}
		if err := tx.DeleteBooking(ctx, b.ID); err != nil {
			return err
		}
		cancelled, released = *b, held
		return nil
	})
	if err != nil {
		return translate(err)
	}

	s.log.InfoContext(ctx, "booking cancelled",
		slog.Uint64("booking_id", cancelled.ID),
		slog.Int("released_seats", len(released)))
	s.publish(ctx, EventCancelled, cancelled, released)
	return nil
}

// lockMutable locks a booking row and rejects it when the cutoff has
// been reached for its schedule.
func (s *Service) lockMutable(ctx context.Context, tx Tx, bookingID uint64) (*model.Booking, error) {
	b, err := tx.LockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	sch, err := tx.ScheduleByID(ctx, b.ScheduleID)
	if err != nil {
		return nil, err
	}
	if s.cutoff.Locked(sch.Date, s.now()) {
		return nil, apperr.New(apperr.Immutable, "Booking can no longer be changed").
			WithField("schedule_date", sch.Date.UTC().Format(time.DateOnly))
	}
	return b, nil
}

func attach(ctx context.Context, tx Tx, bookingID uint64, seatIDs []uint64, lines []model.BookingServiceLine) error {
	if err := tx.AttachSeats(ctx, bookingID, seatIDs); err != nil {
		return fmt.Errorf("attach seats: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}
	owned := make([]model.BookingServiceLine, len(lines))
	for i, l := range lines {
		l.BookingID = bookingID
		owned[i] = l
	}
	if err := tx.AttachServices(ctx, owned); err != nil {
		return fmt.Errorf("attach services: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, typ EventType, b model.Booking, seatIDs []uint64) {
	ev := Event{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		ScheduleID: b.ScheduleID,
		SeatIDs:    seatIDs,
		TotalPrice: b.TotalPrice,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish booking event failed",
			slog.String("event", string(typ)),
			slog.Uint64("booking_id", b.ID),
			slog.Any("err", err))
	}
}

func validateCreate(in CreateInput, seatIDs []uint64) error {
	fields := map[string][]string{}
	if in.UserID == 0 {
		fields["user_id"] = []string{"The user id field is required."}
	}
	if in.ScheduleID == 0 {
		fields["schedule_id"] = []string{"The schedule id field is required."}
	}
	if len(seatIDs) == 0 {
		fields["seat_id"] = []string{"At least one seat must be selected."}
	}
	if len(fields) == 0 {
		return nil
	}
	e := apperr.New(apperr.Validation, "The given data was invalid.")
	for k, v := range fields {
		e.WithField(k, v)
	}
	return e
}

func seatRequired() error {
	return apperr.New(apperr.Validation, "The given data was invalid.").
		WithField("seat_id", []string{"At least one seat must be selected."})
}

// translate maps repository sentinels onto error kinds.  Errors that
// already carry a kind pass through; everything else is Unexpected.
func translate(err error) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, repository.ErrBookingNotFound):
		return apperr.Wrap(apperr.NotFound, "Booking not found", err)
	case errors.Is(err, repository.ErrScheduleNotFound):
		return apperr.Wrap(apperr.NotFound, "Schedule not found", err)
	default:
		return apperr.Wrap(apperr.Unexpected, "booking operation failed", err)
	}
}
