package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/pdfclient"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/registry"
)

var ErrValidation = errors.New("invalid report data")

// Renderer produces the PDF bytes for a report payload.
type Renderer interface {
	GenerateReport(ctx context.Context, payload pdfclient.Request) ([]byte, error)
}

type Service struct {
	repo     Repository
	patients registry.Source
	renderer Renderer
	logger   zerolog.Logger
}

func NewService(repo Repository, patients registry.Source, renderer Renderer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		renderer: renderer,
		logger:   logger.With().Str("component", "reports").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, patientID int, input CreateInput, createdBy int) (*Report, error) {
	if input.Content == "" {
		return nil, ErrValidation
	}
	r := &Report{
		PatientID:         patientID,
		DiagnosisCode:     emptyToNil(input.DiagnosisCode),
		Content:           input.Content,
		Therapy:           emptyToNil(input.Therapy),
		LabExams:          emptyToNil(input.LabExams),
		ReferralSpecialty: emptyToNil(input.ReferralSpecialty),
		CreatedByID:       &createdBy,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, patientID, reportID int) (*Report, error) {
	return s.repo.Get(ctx, patientID, reportID)
}

func (s *Service) Update(ctx context.Context, patientID, reportID int, input UpdateInput) (*Report, error) {
	r, err := s.repo.Get(ctx, patientID, reportID)
	if err != nil {
		return nil, err
	}
	if input.DiagnosisCode != nil {
		r.DiagnosisCode = input.DiagnosisCode
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, ErrValidation
		}
		r.Content = *input.Content
	}
	if input.Therapy != nil {
		r.Therapy = input.Therapy
	}
	if input.LabExams != nil {
		r.LabExams = input.LabExams
	}
	if input.ReferralSpecialty != nil {
		r.ReferralSpecialty = input.ReferralSpecialty
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, patientID, reportID int) error {
	return s.repo.Delete(ctx, patientID, reportID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID, limit, skip int) ([]*Report, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, skip)
}

// RenderPDF resolves the patient's display name through the registry and
// hands the report to the renderer. A patient missing from the registry
// falls back to a generic label rather than blocking the download; a
// registry outage still fails the request.
func (s *Service) RenderPDF(ctx context.Context, patientID, reportID int) ([]byte, error) {
	r, err := s.repo.Get(ctx, patientID, reportID)
	if err != nil {
		return nil, err
	}

	name, err := s.patientName(ctx, patientID)
	if err != nil {
		return nil, err
	}

	payload := pdfclient.Request{
		PatientName: name,
		Report: pdfclient.ReportData{
			DiagnosisCode:     r.DiagnosisCode,
			Content:           r.Content,
			Therapy:           r.Therapy,
			LabExams:          r.LabExams,
			ReferralSpecialty: r.ReferralSpecialty,
			CreatedAt:         isoTime(r.CreatedAt),
			UpdatedAt:         isoTime(r.UpdatedAt),
		},
	}
	return s.renderer.GenerateReport(ctx, payload)
}

func (s *Service) patientName(ctx context.Context, patientID int) (string, error) {
	ref, err := s.patients.Patient(ctx, patientID)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return fmt.Sprintf("Patient %d", patientID), nil
	case err != nil:
		return "", err
	}
	return ref.FullName(), nil
}

func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
