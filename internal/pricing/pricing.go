// Package pricing computes booking totals.  Nothing here is stored: a
// total is always recomputed from the schedule price, the seat count and
// the service lines currently attached.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/cinema-ticket-booking/internal/apperr"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
)

// Catalog resolves the read-only data a price depends on.  The SQL
// implementation is a transaction-bound pair of repositories.
type Catalog interface {
	ScheduleByID(ctx context.Context, id uint64) (*model.Schedule, error)
	ServicesByIDs(ctx context.Context, ids []uint64) ([]model.Service, error)
}

// Selection is a requested service with a quantity.
type Selection struct {
	ServiceID uint64
	Quantity  uint32
}

// Quote is the result of pricing a booking.
type Quote struct {
	Schedule  *model.Schedule
	SeatCount int
	Lines     []model.BookingServiceLine
	Total     int64
}

// Selections turns a list of service ids into selections of quantity 1.
// Zero ids are dropped and each distinct service appears once.
func Selections(serviceIDs []uint64) []Selection {
	seen := make(map[uint64]struct{}, len(serviceIDs))
	out := make([]Selection, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Selection{ServiceID: id, Quantity: 1})
	}
	return out
}

// Total returns price × seatCount + Σ(unit price × quantity).  A line
// with a zero quantity counts once.
func Total(schedulePrice int64, seatCount int, lines []model.BookingServiceLine) int64 {
	total := schedulePrice * int64(seatCount)
	for _, l := range lines {
		q := int64(l.Quantity)
		if q <= 0 {
			q = 1
		}
		total += l.UnitPrice * q
	}
	return total
}

// Engine prices bookings against a Catalog.
type Engine struct{}

// NewEngine returns a pricing engine.
func NewEngine() *Engine { return &Engine{} }

// Compute resolves the schedule and the selected services and returns
// the priced quote.  A missing schedule or service yields NotFound; the
// missing service ids are listed under "services".
func (e *Engine) Compute(ctx context.Context, catalog Catalog, scheduleID uint64, seatCount int, selections []Selection) (*Quote, error) {
	sch, err := catalog.ScheduleByID(ctx, scheduleID)
	if errors.Is(err, repository.ErrScheduleNotFound) {
		return nil, apperr.Wrap(apperr.NotFound, "schedule not found", err).
			WithField("schedule_id", scheduleID)
	}
	if err != nil {
		return nil, fmt.Errorf("load schedule %d: %w", scheduleID, err)
	}

	ids := make([]uint64, 0, len(selections))
	for _, s := range selections {
		ids = append(ids, s.ServiceID)
	}
	services, err := catalog.ServicesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	byID := make(map[uint64]model.Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	lines := make([]model.BookingServiceLine, 0, len(selections))
	var missing []uint64
	for _, sel := range selections {
		svc, ok := byID[sel.ServiceID]
		if !ok {
			missing = append(missing, sel.ServiceID)
			continue
		}
		qty := sel.Quantity
		if qty == 0 {
			qty = 1
		}
		lines = append(lines, model.BookingServiceLine{
			ServiceID: svc.ID,
			Name:      svc.Name,
			UnitPrice: svc.Price,
			Quantity:  qty,
		})
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, apperr.Wrap(apperr.NotFound, "service not found", repository.ErrServiceNotFound).
			WithField("services", missing)
	}

	return &Quote{
		Schedule:  sch,
		SeatCount: seatCount,
		Lines:     lines,
		Total:     Total(sch.Price, seatCount, lines),
	}, nil
}
