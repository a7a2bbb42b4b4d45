package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
)

// memStore is an in-memory Store.  Transactions are serialized and a
// failed transaction restores the snapshot taken when it began, which is
// what row locks plus rollback give the MySQL store.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    *memData

	// failAttachServices makes AttachServices fail, to exercise rollback.
	failAttachServices error
}

type memData struct {
	films           map[uint64]model.Film
	schedules       map[uint64]model.Schedule
	seats           map[uint64]model.Seat
	services        map[uint64]model.Service
	users           map[uint64]bool
	bookings        map[uint64]model.Booking
	bookingSeats    map[uint64][]uint64
	bookingServices map[uint64][]model.BookingServiceLine
	nextID          uint64
	tick            time.Time
}

func newMemStore() *memStore {
	return &memStore{d: &memData{
		films:           map[uint64]model.Film{},
		schedules:       map[uint64]model.Schedule{},
		seats:           map[uint64]model.Seat{},
		services:        map[uint64]model.Service{},
		users:           map[uint64]bool{},
		bookings:        map[uint64]model.Booking{},
		bookingSeats:    map[uint64][]uint64{},
		bookingServices: map[uint64][]model.BookingServiceLine{},
		nextID:          1000,
		tick:            time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC),
	}}
}

func (d *memData) clone() *memData {
	c := *d
	c.films = cloneMap(d.films)
	c.schedules = cloneMap(d.schedules)
	c.seats = cloneMap(d.seats)
	c.services = cloneMap(d.services)
	c.users = cloneMap(d.users)
	c.bookings = cloneMap(d.bookings)
	c.bookingSeats = make(map[uint64][]uint64, len(d.bookingSeats))
	for k, v := range d.bookingSeats {
		c.bookingSeats[k] = append([]uint64(nil), v...)
	}
	c.bookingServices = make(map[uint64][]model.BookingServiceLine, len(d.bookingServices))
	for k, v := range d.bookingServices {
		c.bookingServices[k] = append([]model.BookingServiceLine(nil), v...)
	}
	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	snap := s.d.clone()
	s.mu.Unlock()
	if err := fn(memTx{s}); err != nil {
		s.mu.Lock()
		s.d = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) Reader() Tx { return memTx{s} }

// seed helpers

func (s *memStore) addFilm(f model.Film) { s.d.films[f.ID] = f }

func (s *memStore) addSchedule(sch model.Schedule) { s.d.schedules[sch.ID] = sch }

func (s *memStore) addSeat(id, scheduleID uint64, label string) {
	s.d.seats[id] = model.Seat{ID: id, ScheduleID: scheduleID, SeatNumber: label, Status: model.SeatAvailable}
}

func (s *memStore) addService(sv model.Service) { s.d.services[sv.ID] = sv }

func (s *memStore) addUsers(ids ...uint64) {
	for _, id := range ids {
		s.d.users[id] = true
	}
}

func (s *memStore) seatStatus(id uint64) model.SeatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.seats[id].Status
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.d.bookings)
}

func (s *memStore) attachedSeats(bookingID uint64) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.d.bookingSeats[bookingID]...)
}

type memTx struct{ s *memStore }

func (t memTx) lock() (*memData, func()) {
	t.s.mu.Lock()
	return t.s.d, t.s.mu.Unlock
}

func (t memTx) ListBySchedule(_ context.Context, scheduleID uint64) ([]model.Seat, error) {
	d, unlock := t.lock()
	defer unlock()
	var out []model.Seat
	for _, st := range d.seats {
		if st.ScheduleID == scheduleID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (t memTx) LockByIDs(_ context.Context, ids []uint64) ([]model.Seat, error) {
	d, unlock := t.lock()
	defer unlock()
	out := []model.Seat{}
	for _, id := range ids {
		if st, ok := d.seats[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (t memTx) UpdateStatus(_ context.Context, ids []uint64, status model.SeatStatus) error {
	d, unlock := t.lock()
	defer unlock()
	for _, id := range ids {
		if st, ok := d.seats[id]; ok {
			st.Status = status
			d.seats[id] = st
		}
	}
	return nil
}

func (t memTx) ScheduleByID(_ context.Context, id uint64) (*model.Schedule, error) {
	d, unlock := t.lock()
	defer unlock()
	sch, ok := d.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	return &sch, nil
}

func (t memTx) ServicesByIDs(_ context.Context, ids []uint64) ([]model.Service, error) {
	d, unlock := t.lock()
	defer unlock()
	var out []model.Service
	for _, id := range ids {
		if sv, ok := d.services[id]; ok {
			out = append(out, sv)
		}
	}
	return out, nil
}

func (t memTx) ScheduleWithFilm(_ context.Context, id uint64) (*model.ScheduleWithFilm, error) {
	d, unlock := t.lock()
	defer unlock()
	sch, ok := d.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	f := d.films[sch.FilmID]
	return &model.ScheduleWithFilm{Schedule: sch, Film: &f}, nil
}

func (t memTx) SchedulesByFilm(_ context.Context, filmID uint64) ([]model.Schedule, error) {
	d, unlock := t.lock()
	defer unlock()
	var out []model.Schedule
	for _, sch := range d.schedules {
		if sch.FilmID == filmID {
			out = append(out, sch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t memTx) AllServices(_ context.Context) ([]model.Service, error) {
	d, unlock := t.lock()
	defer unlock()
	var out []model.Service
	for _, sv := range d.services {
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t memTx) SeatsByBookings(_ context.Context, bookingIDs []uint64) (map[uint64][]model.Seat, error) {
	d, unlock := t.lock()
	defer unlock()
	out := map[uint64][]model.Seat{}
	for _, bid := range bookingIDs {
		for _, sid := range d.bookingSeats[bid] {
			out[bid] = append(out[bid], d.seats[sid])
		}
	}
	return out, nil
}

func (t memTx) UserExists(_ context.Context, id uint64) (bool, error) {
	d, unlock := t.lock()
	defer unlock()
	return d.users[id], nil
}

func (t memTx) CreateBooking(_ context.Context, b *model.Booking) error {
	d, unlock := t.lock()
	defer unlock()
	d.nextID++
	d.tick = d.tick.Add(time.Minute)
	b.ID = d.nextID
	b.CreatedAt, b.UpdatedAt = d.tick, d.tick
	d.bookings[b.ID] = *b
	return nil
}

func (t memTx) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
	d, unlock := t.lock()
	defer unlock()
	b, ok := d.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (t memTx) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.GetBooking(ctx, id)
}

func (t memTx) LatestBooking(_ context.Context, userID, scheduleID uint64) (*model.Booking, error) {
	d, unlock := t.lock()
	defer unlock()
	var latest *model.Booking
	for _, b := range d.bookings {
		if b.UserID != userID || b.ScheduleID != scheduleID {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			b := b
			latest = &b
		}
	}
	if latest == nil {
		return nil, repository.ErrBookingNotFound
	}
	return latest, nil
}

func (t memTx) ListBookings(_ context.Context, limit, offset int) ([]model.Booking, int64, error) {
	d, unlock := t.lock()
	defer unlock()
	all := make([]model.Booking, 0, len(d.bookings))
	for _, b := range d.bookings {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Booking{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (t memTx) UpdateBookingTotal(_ context.Context, id uint64, total int64) error {
	d, unlock := t.lock()
	defer unlock()
	b, ok := d.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.TotalPrice = total
	d.bookings[id] = b
	return nil
}

func (t memTx) DeleteBooking(_ context.Context, id uint64) error {
	d, unlock := t.lock()
	defer unlock()
	if _, ok := d.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(d.bookings, id)
	delete(d.bookingSeats, id)
	delete(d.bookingServices, id)
	return nil
}

func (t memTx) AttachSeats(_ context.Context, bookingID uint64, seatIDs []uint64) error {
	d, unlock := t.lock()
	defer unlock()
	d.bookingSeats[bookingID] = append(d.bookingSeats[bookingID], seatIDs...)
	return nil
}

func (t memTx) DetachSeats(_ context.Context, bookingID uint64) error {
	d, unlock := t.lock()
	defer unlock()
	delete(d.bookingSeats, bookingID)
	return nil
}

func (t memTx) BookingSeatIDs(_ context.Context, bookingID uint64) ([]uint64, error) {
	d, unlock := t.lock()
	defer unlock()
	return append([]uint64{}, d.bookingSeats[bookingID]...), nil
}

func (t memTx) AttachServices(_ context.Context, lines []model.BookingServiceLine) error {
	if t.s.failAttachServices != nil {
		return t.s.failAttachServices
	}
	d, unlock := t.lock()
	defer unlock()
	for _, l := range lines {
		d.bookingServices[l.BookingID] = append(d.bookingServices[l.BookingID], l)
	}
	return nil
}

func (t memTx) DetachServices(_ context.Context, bookingID uint64) error {
	d, unlock := t.lock()
	defer unlock()
	delete(d.bookingServices, bookingID)
	return nil
}

func (t memTx) ServiceLinesByBookings(_ context.Context, bookingIDs []uint64) (map[uint64][]model.BookingServiceLine, error) {
	d, unlock := t.lock()
	defer unlock()
	out := map[uint64][]model.BookingServiceLine{}
	for _, bid := range bookingIDs {
		out[bid] = append(out[bid], d.bookingServices[bid]...)
	}
	return out, nil
}
