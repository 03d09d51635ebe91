package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestClient_Patient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(auth.InternalKeyHeader) != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/internal/patients/1":
			json.NewEncoder(w).Encode(PatientRef{ID: 1, FirstName: "Jane", LastName: "Doe", MedicalRecordNumber: "MRN-001"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "s3cret", 5*time.Second, testLogger())

	ref, err := client.Patient(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.FullName() != "Jane Doe" {
		t.Errorf("expected Jane Doe, got %s", ref.FullName())
	}

	if _, err := client.Patient(context.Background(), 999); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Patient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srv.Close()

	client := NewClient(srv.URL, "", time.Second, testLogger())
	if _, err := client.Patient(context.Background(), 1); err != ErrUnavailable {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_Patients_OmitsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/patients/batch" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req map[string][]int
		json.NewDecoder(r.Body).Decode(&req)
		refs := []PatientRef{}
		for _, id := range req["ids"] {
			if id == 1 {
				refs = append(refs, PatientRef{ID: 1, FirstName: "Jane", LastName: "Doe"})
			}
		}
		json.NewEncoder(w).Encode(refs)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())

	refs, err := client.Patients(context.Background(), []int{1, 999})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != 1 {
		t.Errorf("expected only patient 1, got %+v", refs)
	}
}

func TestClient_Patients_EmptyInput(t *testing.T) {
	client := NewClient("http://unreachable.invalid", "", time.Second, testLogger())
	refs, err := client.Patients(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected empty result, got %+v", refs)
	}
}

type mapKV struct {
	data map[string]string
	sets int
}

func (m *mapKV) Get(_ context.Context, key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mapKV) Set(_ context.Context, key, value string, _ time.Duration) {
	m.sets++
	m.data[key] = value
}

type countingSource struct {
	refs  map[int]PatientRef
	calls int
}

func (s *countingSource) Patient(_ context.Context, id int) (*PatientRef, error) {
	s.calls++
	ref, ok := s.refs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ref, nil
}

func (s *countingSource) Patients(_ context.Context, ids []int) ([]PatientRef, error) {
	s.calls++
	out := []PatientRef{}
	for _, id := range ids {
		if ref, ok := s.refs[id]; ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

func TestCache_ReadThrough(t *testing.T) {
	src := &countingSource{refs: map[int]PatientRef{
		1: {ID: 1, FirstName: "Jane", LastName: "Doe"},
	}}
	cache := newCacheWithStore(src, &mapKV{data: map[string]string{}}, testLogger())

	for i := 0; i < 3; i++ {
		ref, err := cache.Patient(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 1 {
			t.Errorf("expected patient 1, got %+v", ref)
		}
	}
	if src.calls != 1 {
		t.Errorf("expected a single source call, got %d", src.calls)
	}
}

func TestCache_BatchFetchesOnlyMisses(t *testing.T) {
	src := &countingSource{refs: map[int]PatientRef{
		1: {ID: 1, FirstName: "Jane", LastName: "Doe"},
		2: {ID: 2, FirstName: "John", LastName: "Smith"},
	}}
	store := &mapKV{data: map[string]string{}}
	cache := newCacheWithStore(src, store, testLogger())

	if _, err := cache.Patient(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refs, err := cache.Patients(context.Background(), []int{1, 2, 999})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("expected 2 refs, got %+v", refs)
	}
	// One Patient call plus one batch call for the misses.
	if src.calls != 2 {
		t.Errorf("expected 2 source calls, got %d", src.calls)
	}
}

func TestCache_MissNotFound(t *testing.T) {
	src := &countingSource{refs: map[int]PatientRef{}}
	cache := newCacheWithStore(src, &mapKV{data: map[string]string{}}, testLogger())

	if _, err := cache.Patient(context.Background(), 42); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
