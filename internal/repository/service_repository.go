package repository

import (
	"context"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// ServiceRepo reads the add-on service catalog.
type ServiceRepo struct {
	db DBTX
}

// NewServiceRepo constructs a ServiceRepo.
func NewServiceRepo(db DBTX) *ServiceRepo { return &ServiceRepo{db: db} }

// ListAll returns the whole catalog ordered by id.
func (r *ServiceRepo) ListAll(ctx context.Context) ([]model.Service, error) {
	return r.query(ctx, `SELECT id, name, price FROM services ORDER BY id`)
}

// GetByIDs returns the services matching ids.  Unknown ids are absent
// from the result; callers compare lengths to detect them.
func (r *ServiceRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Service, error) {
	if len(ids) == 0 {
		return []model.Service{}, nil
	}
	in, args := inClause(ids)
	return r.query(ctx, `SELECT id, name, price FROM services WHERE id IN (`+in+`) ORDER BY id`, args...)
}

func (r *ServiceRepo) query(ctx context.Context, q string, args ...any) ([]model.Service, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
