package patient

import (
	"context"
	"errors"
	"time"
)

var ErrValidation = errors.New("invalid patient data")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Create registers a patient. The medical record number is checked before
// insert; the unique constraint still backstops the race between the check
// and the write.
func (s *Service) Create(ctx context.Context, input CreateInput, createdBy int) (*Patient, error) {
	switch {
	case input.MedicalRecordNumber == "",
		input.FirstName == "",
		input.LastName == "":
		return nil, ErrValidation
	case !validDate(input.DateOfBirth):
		return nil, ErrValidation
	case !validGender(input.Gender):
		return nil, ErrValidation
	}

	if _, err := s.repo.GetByMRN(ctx, input.MedicalRecordNumber); err == nil {
		return nil, ErrDuplicateMRN
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p := &Patient{
		MedicalRecordNumber: input.MedicalRecordNumber,
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		DateOfBirth:         input.DateOfBirth,
		Gender:              input.Gender,
		Email:               input.Email,
		Phone:               input.Phone,
		Address:             input.Address,
		Notes:               input.Notes,
		IsActive:            true,
		CreatedByID:         &createdBy,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, skip int) ([]*Patient, int, error) {
	return s.repo.List(ctx, filter, limit, skip)
}

func (s *Service) Update(ctx context.Context, id int, input UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		p.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		p.LastName = *input.LastName
	}
	if input.DateOfBirth != nil {
		if !validDate(*input.DateOfBirth) {
			return nil, ErrValidation
		}
		p.DateOfBirth = *input.DateOfBirth
	}
	if input.Gender != nil {
		if !validGender(*input.Gender) {
			return nil, ErrValidation
		}
		p.Gender = *input.Gender
	}
	if input.Email != nil {
		p.Email = input.Email
	}
	if input.Phone != nil {
		p.Phone = input.Phone
	}
	if input.Address != nil {
		p.Address = input.Address
	}
	if input.Notes != nil {
		p.Notes = input.Notes
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate is the soft delete behind DELETE /api/patients/:id. Records
// carry clinical history and are never removed.
func (s *Service) Deactivate(ctx context.Context, id int) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	return s.repo.Update(ctx, p)
}

// Refs resolves the internal projections for a set of ids. Unknown ids are
// omitted, never an error.
func (s *Service) Refs(ctx context.Context, ids []int) ([]Ref, error) {
	patients, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	refs := make([]Ref, 0, len(patients))
	for _, p := range patients {
		refs = append(refs, p.Ref())
	}
	return refs, nil
}
