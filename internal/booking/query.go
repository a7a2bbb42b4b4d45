package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-ticket-booking/internal/inventory"
	"github.com/iliyamo/cinema-ticket-booking/internal/media"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Page selects a slice of the booking list.  Page is 1-based.
type Page struct {
	Page    int
	PerPage int
}

// Normalize clamps PerPage to [1, MaxPerPage] (0 means DefaultPerPage)
// and Page to at least 1.
func (p Page) Normalize() Page {
	if p.PerPage == 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage < 1 {
		p.PerPage = 1
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Offset is the number of rows skipped before the page.
func (p Page) Offset() int { return (p.Page - 1) * p.PerPage }

// PageResult is one page of bookings with the paging metadata.
type PageResult struct {
	Items       []model.BookingDetail `json:"data"`
	CurrentPage int                   `json:"current_page"`
	PerPage     int                   `json:"per_page"`
	Total       int64                 `json:"total"`
	LastPage    int                   `json:"last_page"`
}

// SelectionView is everything a client needs to pick seats for a
// schedule: the schedule and its film, the film's other schedules, the
// seat map with status and the service catalog.
type SelectionView struct {
	Schedule  *model.ScheduleWithFilm `json:"schedule"`
	Schedules []model.Schedule        `json:"schedules"`
	Seats     []model.Seat            `json:"seats"`
	Services  []model.Service         `json:"services"`
}

// Get returns a booking with its schedule, film, seats and services.
func (s *Service) Get(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	tx := s.store.Reader()
	b, err := tx.GetBooking(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	details, err := s.assemble(ctx, tx, []model.Booking{*b})
	if err != nil {
		return nil, translate(err)
	}
	return &details[0], nil
}

// List returns bookings newest first.
func (s *Service) List(ctx context.Context, page Page) (*PageResult, error) {
	page = page.Normalize()
	tx := s.store.Reader()
	rows, total, err := tx.ListBookings(ctx, page.PerPage, page.Offset())
	if err != nil {
		return nil, translate(fmt.Errorf("list bookings: %w", err))
	}
	items, err := s.assemble(ctx, tx, rows)
	if err != nil {
		return nil, translate(err)
	}
	last := int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	if last < 1 {
		last = 1
	}
	return &PageResult{
		Items:       items,
		CurrentPage: page.Page,
		PerPage:     page.PerPage,
		Total:       total,
		LastPage:    last,
	}, nil
}

// LatestForUserAndSchedule returns the caller's most recent booking on a
// schedule, used by the confirmation screen.
func (s *Service) LatestForUserAndSchedule(ctx context.Context, userID, scheduleID uint64) (*model.BookingDetail, error) {
	tx := s.store.Reader()
	b, err := tx.LatestBooking(ctx, userID, scheduleID)
	if err != nil {
		return nil, translate(err)
	}
	details, err := s.assemble(ctx, tx, []model.Booking{*b})
	if err != nil {
		return nil, translate(err)
	}
	return &details[0], nil
}

// SelectionView builds the seat selection screen for a schedule.
func (s *Service) SelectionView(ctx context.Context, scheduleID uint64) (*SelectionView, error) {
	tx := s.store.Reader()
	sch, err := tx.ScheduleWithFilm(ctx, scheduleID)
	if err != nil {
		return nil, translate(err)
	}
	s.decorate(sch)
	schedules, err := tx.SchedulesByFilm(ctx, sch.FilmID)
	if err != nil {
		return nil, translate(fmt.Errorf("list schedules: %w", err))
	}
	seats, err := inventory.ListAvailable(ctx, tx, scheduleID)
	if err != nil {
		return nil, translate(err)
	}
	services, err := tx.AllServices(ctx)
	if err != nil {
		return nil, translate(fmt.Errorf("list services: %w", err))
	}
	return &SelectionView{
		Schedule:  sch,
		Schedules: orEmpty(schedules),
		Seats:     orEmpty(seats),
		Services:  orEmpty(services),
	}, nil
}

// assemble loads attachments for a batch of bookings with one query per
// relation and one schedule lookup per distinct schedule.
func (s *Service) assemble(ctx context.Context, tx Tx, bookings []model.Booking) ([]model.BookingDetail, error) {
	out := make([]model.BookingDetail, 0, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}
	ids := make([]uint64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	seats, err := tx.SeatsByBookings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load booking seats: %w", err)
	}
	lines, err := tx.ServiceLinesByBookings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load booking services: %w", err)
	}
	schedules := make(map[uint64]*model.ScheduleWithFilm)
	for _, b := range bookings {
		sch, ok := schedules[b.ScheduleID]
		if !ok {
			sch, err = tx.ScheduleWithFilm(ctx, b.ScheduleID)
			if err != nil && !errors.Is(err, repository.ErrScheduleNotFound) {
				return nil, fmt.Errorf("load schedule %d: %w", b.ScheduleID, err)
			}
			s.decorate(sch)
			schedules[b.ScheduleID] = sch
		}
		out = append(out, model.BookingDetail{
			Booking:  b,
			Schedule: sch,
			Seats:    orEmpty(seats[b.ID]),
			Services: orEmpty(lines[b.ID]),
		})
	}
	return out, nil
}

func (s *Service) decorate(sch *model.ScheduleWithFilm) {
	if sch == nil || sch.Film == nil {
		return
	}
	sch.Film.PosterURL = media.PosterURL(s.baseURL, sch.Film.Poster)
}

func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
