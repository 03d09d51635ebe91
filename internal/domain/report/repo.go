package report

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("report not found")

// Repository persists reports. Lookups are always scoped to a patient so a
// report id from one chart cannot be read through another.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, patientID, reportID int) (*Report, error)
	Update(ctx context.Context, r *Report) error
	Delete(ctx context.Context, patientID, reportID int) error
	ListByPatient(ctx context.Context, patientID, limit, skip int) ([]*Report, int, error)
}
