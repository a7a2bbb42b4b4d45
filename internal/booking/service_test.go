package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-booking/internal/apperr"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

var fixedNow = time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)

const (
	pastSchedule   uint64 = 1
	futureSchedule uint64 = 2
	user           uint64 = 5
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func seeded() *memStore {
	s := newMemStore()
	s.addFilm(model.Film{ID: 1, Title: "Dune", Poster: "posters/2024/dune.jpg"})
	s.addSchedule(model.Schedule{ID: pastSchedule, FilmID: 1, Date: fixedNow.AddDate(0, 0, -1), Price: 50000})
	s.addSchedule(model.Schedule{ID: futureSchedule, FilmID: 1, Date: fixedNow.AddDate(0, 0, 1), Price: 60000})
	s.addSeat(11, pastSchedule, "A1")
	s.addSeat(12, pastSchedule, "A2")
	s.addSeat(13, pastSchedule, "A3")
	s.addSeat(21, futureSchedule, "A1")
	s.addSeat(22, futureSchedule, "A2")
	s.addService(model.Service{ID: 7, Name: "Popcorn", Price: 25000})
	s.addService(model.Service{ID: 8, Name: "Soda", Price: 15000})
	s.addUsers(user, 9)
	for id := uint64(100); id < 132; id++ {
		s.addUsers(id)
	}
	return s
}

func newTestService(store Store, rec *recorder, policy CutoffPolicy) *Service {
	return NewService(store, Options{
		Cutoff:        policy,
		Now:           func() time.Time { return fixedNow },
		Events:        rec,
		PublicBaseURL: "http://cdn.test",
	})
}

func mustCreate(t *testing.T, svc *Service, schedule uint64, seats []uint64, services ...uint64) *model.BookingDetail {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateInput{
		UserID: user, ScheduleID: schedule, SeatIDs: seats, ServiceIDs: services,
	})
	require.NoError(t, err)
	return b
}

func seatFields(t *testing.T, err error) []uint64 {
	t.Helper()
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae), "expected *apperr.Error, got %v", err)
	ids, ok := ae.Fields["seat_id"].([]uint64)
	require.True(t, ok)
	return ids
}

func TestCreateBooksSeatsAndPrices(t *testing.T) {
	store, rec := seeded(), &recorder{}
	svc := newTestService(store, rec, CutoffLegacy)

	b := mustCreate(t, svc, pastSchedule, []uint64{12, 11})

	assert.Equal(t, int64(100000), b.TotalPrice)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, user, b.UserID)
	assert.Len(t, b.Seats, 2)
	assert.Empty(t, b.Services)
	require.NotNil(t, b.Schedule)
	require.NotNil(t, b.Schedule.Film.PosterURL)
	assert.Equal(t, "http://cdn.test/api/storage/posters/dune.jpg", *b.Schedule.Film.PosterURL)
	assert.Equal(t, model.SeatBooked, store.seatStatus(11))
	assert.Equal(t, model.SeatBooked, store.seatStatus(12))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(13))

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventCreated, rec.events[0].Type)
	assert.Equal(t, []uint64{11, 12}, rec.events[0].SeatIDs)
	assert.Equal(t, b.ID, rec.events[0].BookingID)
}

func TestCreateConflictLeavesOtherSeatsAvailable(t *testing.T) {
	store, rec := seeded(), &recorder{}
	svc := newTestService(store, rec, CutoffLegacy)
	mustCreate(t, svc, pastSchedule, []uint64{11, 12})

	_, err := svc.Create(context.Background(), CreateInput{UserID: 9, ScheduleID: pastSchedule, SeatIDs: []uint64{11, 13}})

	assert.Equal(t, apperr.SeatUnavailable, apperr.KindOf(err))
	assert.Equal(t, []uint64{11}, seatFields(t, err))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(13))
	assert.Equal(t, 1, store.bookingCount())
	assert.Len(t, rec.events, 1)
}

func TestCreateRejectsSeatOfAnotherSchedule(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)

	_, err := svc.Create(context.Background(), CreateInput{UserID: user, ScheduleID: pastSchedule, SeatIDs: []uint64{11, 21, 404}})

	assert.Equal(t, []uint64{21, 404}, seatFields(t, err))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(11))
}

func TestCreateWithServices(t *testing.T) {
	svc := newTestService(seeded(), &recorder{}, CutoffLegacy)

	b := mustCreate(t, svc, pastSchedule, []uint64{11}, 7, 8, 7)

	assert.Equal(t, int64(50000+25000+15000), b.TotalPrice)
	require.Len(t, b.Services, 2)
	for _, l := range b.Services {
		assert.Equal(t, uint32(1), l.Quantity)
		assert.Equal(t, b.ID, l.BookingID)
	}
}

func TestCreateMissingServiceRollsBack(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)

	_, err := svc.Create(context.Background(), CreateInput{UserID: user, ScheduleID: pastSchedule, SeatIDs: []uint64{11}, ServiceIDs: []uint64{99}})

	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(11))
	assert.Zero(t, store.bookingCount())
}

func TestCreateUnknownUserIsValidationError(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 999, ScheduleID: pastSchedule, SeatIDs: []uint64{11}})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Fields, "user_id")
	assert.Equal(t, model.SeatAvailable, store.seatStatus(11))
	assert.Zero(t, store.bookingCount())
}

func TestCreateMissingSchedule(t *testing.T) {
	svc := newTestService(seeded(), &recorder{}, CutoffLegacy)
	_, err := svc.Create(context.Background(), CreateInput{UserID: user, ScheduleID: 404, SeatIDs: []uint64{11}})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(seeded(), &recorder{}, CutoffLegacy)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{UserID: user, ScheduleID: pastSchedule})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Create(ctx, CreateInput{ScheduleID: pastSchedule, SeatIDs: []uint64{11}})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.Validation, ae.Kind)
	assert.Contains(t, ae.Fields, "user_id")
}

func TestUpdateFreesReleasedSeats(t *testing.T) {
	store, rec := seeded(), &recorder{}
	svc := newTestService(store, rec, CutoffLegacy)
	b := mustCreate(t, svc, pastSchedule, []uint64{11, 12})

	got, err := svc.Update(context.Background(), b.ID, UpdateInput{SeatIDs: []uint64{12}})
	require.NoError(t, err)

	assert.Equal(t, int64(50000), got.TotalPrice)
	assert.Equal(t, model.SeatAvailable, store.seatStatus(11))
	assert.Equal(t, model.SeatBooked, store.seatStatus(12))
	assert.Equal(t, []uint64{12}, store.attachedSeats(b.ID))
	require.Len(t, rec.events, 2)
	assert.Equal(t, EventUpdated, rec.events[1].Type)
}

func TestUpdateReselectingHeldSeats(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)
	b := mustCreate(t, svc, pastSchedule, []uint64{11, 12}, 7)

	got, err := svc.Update(context.Background(), b.ID, UpdateInput{SeatIDs: []uint64{11, 12}})
	require.NoError(t, err)

	assert.Equal(t, int64(100000), got.TotalPrice)
	assert.Empty(t, got.Services)
	assert.Equal(t, model.SeatBooked, store.seatStatus(11))
	assert.Equal(t, model.SeatBooked, store.seatStatus(12))
}

func TestUpdateConflictKeepsPreviousSeats(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)
	mine := mustCreate(t, svc, pastSchedule, []uint64{11})
	mustCreate(t, svc, pastSchedule, []uint64{12})

	_, err := svc.Update(context.Background(), mine.ID, UpdateInput{SeatIDs: []uint64{12, 13}})

	assert.Equal(t, []uint64{12}, seatFields(t, err))
	assert.Equal(t, model.SeatBooked, store.seatStatus(11))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(13))
	assert.Equal(t, []uint64{11}, store.attachedSeats(mine.ID))

	reloaded, err := svc.Get(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), reloaded.TotalPrice)
}

func TestUpdateStoreFailureRollsBack(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)
	b := mustCreate(t, svc, pastSchedule, []uint64{11})
	store.failAttachServices = errors.New("lost connection")

	_, err := svc.Update(context.Background(), b.ID, UpdateInput{SeatIDs: []uint64{13}, ServiceIDs: []uint64{7}})

	assert.Equal(t, apperr.Unexpected, apperr.KindOf(err))
	assert.Equal(t, model.SeatBooked, store.seatStatus(11))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(13))
	assert.Equal(t, []uint64{11}, store.attachedSeats(b.ID))
}

func TestUpdateThenCancelLeavesSeatsAvailable(t *testing.T) {
	store, rec := seeded(), &recorder{}
	svc := newTestService(store, rec, CutoffLegacy)
	ctx := context.Background()
	b := mustCreate(t, svc, pastSchedule, []uint64{11})

	_, err := svc.Update(ctx, b.ID, UpdateInput{SeatIDs: []uint64{12, 13}, ServiceIDs: []uint64{8}})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, b.ID))

	for _, id := range []uint64{11, 12, 13} {
		assert.Equal(t, model.SeatAvailable, store.seatStatus(id))
	}
	_, err = svc.Get(ctx, b.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	require.Len(t, rec.events, 3)
	assert.Equal(t, EventCancelled, rec.events[2].Type)
	assert.Equal(t, []uint64{12, 13}, rec.events[2].SeatIDs)
}

func TestCancelMissingBooking(t *testing.T) {
	svc := newTestService(seeded(), &recorder{}, CutoffLegacy)
	err := svc.Cancel(context.Background(), 404)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestLegacyCutoffLocksFutureSchedules(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)
	ctx := context.Background()
	future := mustCreate(t, svc, futureSchedule, []uint64{21})
	past := mustCreate(t, svc, pastSchedule, []uint64{11})

	_, err := svc.Update(ctx, future.ID, UpdateInput{SeatIDs: []uint64{22}})
	assert.Equal(t, apperr.Immutable, apperr.KindOf(err))
	assert.Equal(t, apperr.Immutable, apperr.KindOf(svc.Cancel(ctx, future.ID)))
	assert.Equal(t, model.SeatBooked, store.seatStatus(21))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(22))

	require.NoError(t, svc.Cancel(ctx, past.ID))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(11))
}

func TestShowtimeCutoffLocksPastSchedules(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffShowtime)
	ctx := context.Background()
	future := mustCreate(t, svc, futureSchedule, []uint64{21})
	past := mustCreate(t, svc, pastSchedule, []uint64{11})

	assert.Equal(t, apperr.Immutable, apperr.KindOf(svc.Cancel(ctx, past.ID)))
	assert.Equal(t, model.SeatBooked, store.seatStatus(11))

	got, err := svc.Update(ctx, future.ID, UpdateInput{SeatIDs: []uint64{21, 22}})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), got.TotalPrice)
	require.NoError(t, svc.Cancel(ctx, future.ID))
}

func TestConcurrentCreatesNeverDoubleBook(t *testing.T) {
	store := seeded()
	svc := newTestService(store, &recorder{}, CutoffLegacy)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		seats := []uint64{11, 12}
		if i%2 == 1 {
			seats = []uint64{12, 13}
		}
		wg.Add(1)
		go func(uid uint64, seats []uint64) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateInput{UserID: uid, ScheduleID: pastSchedule, SeatIDs: seats})
			mu.Lock()
			defer mu.Unlock()
			switch apperr.KindOf(err) {
			case apperr.SeatUnavailable:
				conflicts++
			default:
				if err == nil {
					succeeded++
				}
			}
		}(uint64(100+i), seats)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, store.bookingCount())
	assert.Equal(t, model.SeatBooked, store.seatStatus(12))
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	svc := newTestService(seeded(), rec, CutoffLegacy)

	b := mustCreate(t, svc, pastSchedule, []uint64{11})
	assert.NotZero(t, b.ID)
	assert.Len(t, rec.events, 1)
}
