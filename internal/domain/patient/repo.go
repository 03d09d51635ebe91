package patient

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("patient not found")
	ErrDuplicateMRN = errors.New("duplicate medical record number")
)

// Repository defines the persistence interface for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	GetByIDs(ctx context.Context, ids []int) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, filter ListFilter, limit, skip int) ([]*Patient, int, error)
}
