package report

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/pdfclient"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/registry"
)

type mockRepo struct {
	reports map[int]*Report
	nextID  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{reports: map[int]*Report{}, nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, r *Report) error {
	r.ID = m.nextID
	m.nextID++
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, patientID, reportID int) (*Report, error) {
	r, ok := m.reports[reportID]
	if !ok || r.PatientID != patientID {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, r *Report) error {
	existing, ok := m.reports[r.ID]
	if !ok || existing.PatientID != r.PatientID {
		return ErrNotFound
	}
	r.UpdatedAt = time.Now()
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, patientID, reportID int) error {
	r, ok := m.reports[reportID]
	if !ok || r.PatientID != patientID {
		return ErrNotFound
	}
	delete(m.reports, reportID)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID, limit, skip int) ([]*Report, int, error) {
	matched := []*Report{}
	for _, r := range m.reports {
		if r.PatientID != patientID {
			continue
		}
		cp := *r
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UpdatedAt.After(matched[j].UpdatedAt) })
	total := len(matched)
	if skip >= len(matched) {
		return []*Report{}, total, nil
	}
	matched = matched[skip:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type fakeRegistry struct {
	refs map[int]registry.PatientRef
	err  error
}

func (f *fakeRegistry) Patient(_ context.Context, id int) (*registry.PatientRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	ref, ok := f.refs[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return &ref, nil
}

func (f *fakeRegistry) Patients(_ context.Context, ids []int) ([]registry.PatientRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []registry.PatientRef{}
	for _, id := range ids {
		if ref, ok := f.refs[id]; ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

type fakeRenderer struct {
	lastPayload pdfclient.Request
	err         error
}

func (f *fakeRenderer) GenerateReport(_ context.Context, payload pdfclient.Request) ([]byte, error) {
	f.lastPayload = payload
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func newTestService(reg *fakeRegistry) (*Service, *mockRepo, *fakeRenderer) {
	if reg == nil {
		reg = &fakeRegistry{refs: map[int]registry.PatientRef{}}
	}
	repo := newMockRepo()
	renderer := &fakeRenderer{}
	return NewService(repo, reg, renderer, zerolog.Nop()), repo, renderer
}

func strPtr(s string) *string { return &s }

func TestCreateReport(t *testing.T) {
	svc, _, _ := newTestService(nil)

	r, err := svc.Create(context.Background(), 7, CreateInput{
		Content:       "Stable angina, follow up in two weeks.",
		DiagnosisCode: strPtr("I20.8"),
	}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID == 0 || r.PatientID != 7 {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.CreatedByID == nil || *r.CreatedByID != 3 {
		t.Errorf("expected created_by_id 3, got %v", r.CreatedByID)
	}
	if r.Therapy != nil {
		t.Errorf("expected nil therapy, got %v", *r.Therapy)
	}
}

func TestCreateReport_RequiresContent(t *testing.T) {
	svc, _, _ := newTestService(nil)

	if _, err := svc.Create(context.Background(), 7, CreateInput{}, 3); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCreateReport_BlankOptionalFieldsStoredAsNull(t *testing.T) {
	svc, _, _ := newTestService(nil)

	r, err := svc.Create(context.Background(), 7, CreateInput{
		Content:       "note",
		DiagnosisCode: strPtr(""),
		Therapy:       strPtr(""),
	}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DiagnosisCode != nil || r.Therapy != nil {
		t.Errorf("expected blank optionals coerced to null, got %+v", r)
	}
}

func TestUpdateReport_Partial(t *testing.T) {
	svc, _, _ := newTestService(nil)
	r, _ := svc.Create(context.Background(), 7, CreateInput{
		Content:       "initial",
		DiagnosisCode: strPtr("I20.8"),
	}, 3)

	updated, err := svc.Update(context.Background(), 7, r.ID, UpdateInput{
		Therapy: strPtr("Aspirin 100mg daily"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Content != "initial" {
		t.Errorf("content should be preserved, got %q", updated.Content)
	}
	if updated.DiagnosisCode == nil || *updated.DiagnosisCode != "I20.8" {
		t.Errorf("diagnosis code should be preserved, got %v", updated.DiagnosisCode)
	}
	if updated.Therapy == nil || *updated.Therapy != "Aspirin 100mg daily" {
		t.Errorf("therapy not applied: %v", updated.Therapy)
	}
}

func TestUpdateReport_EmptyContentRejected(t *testing.T) {
	svc, _, _ := newTestService(nil)
	r, _ := svc.Create(context.Background(), 7, CreateInput{Content: "initial"}, 3)

	if _, err := svc.Update(context.Background(), 7, r.ID, UpdateInput{Content: strPtr("")}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestGetReport_ScopedToPatient(t *testing.T) {
	svc, _, _ := newTestService(nil)
	r, _ := svc.Create(context.Background(), 7, CreateInput{Content: "note"}, 3)

	if _, err := svc.Get(context.Background(), 99, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong patient, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 7, r.ID); err != nil {
		t.Errorf("unexpected error for owning patient: %v", err)
	}
}

func TestDeleteReport_HardDelete(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	r, _ := svc.Create(context.Background(), 7, CreateInput{Content: "note"}, 3)

	if err := svc.Delete(context.Background(), 7, r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.reports[r.ID]; ok {
		t.Error("expected row removed")
	}
	if err := svc.Delete(context.Background(), 7, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRenderPDF_PayloadAndName(t *testing.T) {
	reg := &fakeRegistry{refs: map[int]registry.PatientRef{
		7: {ID: 7, FirstName: "Jane", LastName: "Doe", MedicalRecordNumber: "MRN-7"},
	}}
	svc, _, renderer := newTestService(reg)
	r, _ := svc.Create(context.Background(), 7, CreateInput{
		Content:       "Stable.",
		DiagnosisCode: strPtr("I20.8"),
	}, 3)

	pdf, err := svc.RenderPDF(context.Background(), 7, r.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("expected pdf bytes")
	}
	if renderer.lastPayload.PatientName != "Jane Doe" {
		t.Errorf("unexpected patient name: %q", renderer.lastPayload.PatientName)
	}
	if renderer.lastPayload.Report.Content != "Stable." {
		t.Errorf("unexpected content: %q", renderer.lastPayload.Report.Content)
	}
	if renderer.lastPayload.Report.CreatedAt == nil {
		t.Error("expected created_at in payload")
	}

	// the payload has to survive a JSON round trip for the renderer
	if _, err := json.Marshal(renderer.lastPayload); err != nil {
		t.Errorf("payload not serializable: %v", err)
	}
}

func TestRenderPDF_UnknownPatientFallsBack(t *testing.T) {
	svc, _, renderer := newTestService(nil)
	r, _ := svc.Create(context.Background(), 42, CreateInput{Content: "note"}, 3)

	if _, err := svc.RenderPDF(context.Background(), 42, r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer.lastPayload.PatientName != "Patient 42" {
		t.Errorf("expected fallback name, got %q", renderer.lastPayload.PatientName)
	}
}

func TestRenderPDF_RegistryDown(t *testing.T) {
	reg := &fakeRegistry{err: registry.ErrUnavailable}
	svc, _, _ := newTestService(reg)
	r, _ := svc.Create(context.Background(), 7, CreateInput{Content: "note"}, 3)

	if _, err := svc.RenderPDF(context.Background(), 7, r.ID); !errors.Is(err, registry.ErrUnavailable) {
		t.Errorf("expected registry.ErrUnavailable, got %v", err)
	}
}

func TestRenderPDF_RendererDown(t *testing.T) {
	svc, _, renderer := newTestService(nil)
	renderer.err = pdfclient.ErrUnavailable
	r, _ := svc.Create(context.Background(), 7, CreateInput{Content: "note"}, 3)

	if _, err := svc.RenderPDF(context.Background(), 7, r.ID); !errors.Is(err, pdfclient.ErrUnavailable) {
		t.Errorf("expected pdfclient.ErrUnavailable, got %v", err)
	}
}

func TestListByPatient_NewestFirst(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	first, _ := svc.Create(context.Background(), 7, CreateInput{Content: "first"}, 3)
	second, _ := svc.Create(context.Background(), 7, CreateInput{Content: "second"}, 3)
	svc.Create(context.Background(), 8, CreateInput{Content: "other patient"}, 3)

	// push the first report's updated_at ahead of the second's
	repo.reports[first.ID].UpdatedAt = time.Now().Add(time.Hour)

	items, total, err := svc.ListByPatient(context.Background(), 7, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 reports, got total=%d len=%d", total, len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Errorf("expected newest-updated first, got %d then %d", items[0].ID, items[1].ID)
	}
}
