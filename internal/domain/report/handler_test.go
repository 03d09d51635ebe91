package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/pdfclient"
)

func seedReport(t *testing.T, svc *Service) *Report {
	t.Helper()
	r, err := svc.Create(context.Background(), 7, CreateInput{Content: "note"}, 3)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return r
}

func authedCtx(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID int) echo.Context {
	c := e.NewContext(req, rec)
	ident := &auth.Identity{ID: userID, Username: "staff", Role: auth.RoleUser, Active: true}
	c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), ident)))
	return c
}

func TestCreateReport_Handler(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	body := `{"content":"Follow up in two weeks.","diagnosis_code":"I20.8"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedCtx(e, req, rec, 3)
	c.SetParamNames("patient_id")
	c.SetParamValues("7")

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var r Report
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if r.PatientID != 7 || r.CreatedByID == nil || *r.CreatedByID != 3 {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestCreateReport_Handler_MissingContent(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := authedCtx(e, req, httptest.NewRecorder(), 3)
	c.SetParamNames("patient_id")
	c.SetParamValues("7")

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGetReport_Handler_NotFound(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := authedCtx(e, req, httptest.NewRecorder(), 3)
	c.SetParamNames("patient_id", "report_id")
	c.SetParamValues("7", "42")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if he.Message != "Report not found" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestListReports_Handler_LimitBound(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?limit=101", nil)
	c := authedCtx(e, req, httptest.NewRecorder(), 3)
	c.SetParamNames("patient_id")
	c.SetParamValues("7")

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit over max, got %v", err)
	}
}

func TestReportPDF_Handler(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	seedReport(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedCtx(e, req, rec, 3)
	c.SetParamNames("patient_id", "report_id")
	c.SetParamValues("7", "1")

	if err := h.PDF(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("unexpected content type: %q", ct)
	}
	want := `attachment; filename="report-1.pdf"`
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd != want {
		t.Errorf("unexpected disposition: %q", cd)
	}
}

func TestReportPDF_Handler_RendererDown(t *testing.T) {
	svc, _, renderer := newTestService(nil)
	renderer.err = pdfclient.ErrUnavailable
	h := NewHandler(svc)
	e := echo.New()

	seedReport(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := authedCtx(e, req, httptest.NewRecorder(), 3)
	c.SetParamNames("patient_id", "report_id")
	c.SetParamValues("7", "1")

	err := h.PDF(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
	if he.Message != "PDF service unavailable" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestDeleteReport_Handler(t *testing.T) {
	svc, _, _ := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()

	seedReport(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := authedCtx(e, req, rec, 3)
	c.SetParamNames("patient_id", "report_id")
	c.SetParamValues("7", "1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
