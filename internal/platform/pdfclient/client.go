// Package pdfclient calls the PDF renderer service on behalf of the report
// store. Rendering is synchronous with a bounded timeout and no retry; the
// caller maps ErrUnavailable to a 503.
package pdfclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrUnavailable = errors.New("pdf service unavailable")

// ReportData mirrors the renderer's input contract.
type ReportData struct {
	DiagnosisCode     *string `json:"diagnosis_code"`
	Content           string  `json:"content"`
	Therapy           *string `json:"therapy"`
	LabExams          *string `json:"lab_exams"`
	ReferralSpecialty *string `json:"referral_specialty"`
	CreatedAt         *string `json:"created_at"`
	UpdatedAt         *string `json:"updated_at"`
}

// Request is the payload for POST /api/generate/report.
type Request struct {
	PatientName string     `json:"patient_name"`
	Report      ReportData `json:"report"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With().Str("component", "pdf_client").Logger(),
	}
}

// GenerateReport renders a report and returns the raw PDF bytes. Any
// transport failure or non-200 response surfaces as ErrUnavailable.
func (c *Client) GenerateReport(ctx context.Context, payload Request) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate/report", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("pdf render call failed")
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("unexpected pdf service status")
		return nil, ErrUnavailable
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrUnavailable
	}
	return pdf, nil
}
