// Package registry is the HTTP client for the patient registry's internal
// read surface. Scheduling and reports resolve patient display data through
// it instead of keeping local mirrors, trading mirror drift for a live call
// with a bounded staleness window when the cache is enabled.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
)

var (
	ErrNotFound    = errors.New("patient not found")
	ErrUnavailable = errors.New("patient registry unavailable")
)

// PatientRef is the narrow projection the registry exposes internally.
type PatientRef struct {
	ID                  int    `json:"id"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	MedicalRecordNumber string `json:"medical_record_number"`
	IsActive            bool   `json:"is_active"`
}

func (p PatientRef) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Source resolves patient projections by id. Batch lookups omit unknown ids
// rather than erroring.
type Source interface {
	Patient(ctx context.Context, id int) (*PatientRef, error)
	Patients(ctx context.Context, ids []int) ([]PatientRef, error)
}

// Client calls the management service's /internal/patients endpoints,
// authenticating with the pre-shared internal key.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	internalKey string
	logger      zerolog.Logger
}

func NewClient(baseURL, internalKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		internalKey: internalKey,
		logger:      logger.With().Str("component", "registry_client").Logger(),
	}
}

func (c *Client) Patient(ctx context.Context, id int) (*PatientRef, error) {
	url := fmt.Sprintf("%s/internal/patients/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Int("patient_id", id).Msg("registry call failed")
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var ref PatientRef
		if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
			return nil, ErrUnavailable
		}
		return &ref, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Warn().Int("status", resp.StatusCode).Int("patient_id", id).Msg("unexpected registry status")
		return nil, ErrUnavailable
	}
}

func (c *Client) Patients(ctx context.Context, ids []int) ([]PatientRef, error) {
	if len(ids) == 0 {
		return []PatientRef{}, nil
	}

	body, err := json.Marshal(map[string][]int{"ids": ids})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/patients/batch", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Int("count", len(ids)).Msg("registry batch call failed")
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("unexpected registry status")
		return nil, ErrUnavailable
	}

	var refs []PatientRef
	if err := json.NewDecoder(resp.Body).Decode(&refs); err != nil {
		return nil, ErrUnavailable
	}
	return refs, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.internalKey != "" {
		req.Header.Set(auth.InternalKeyHeader, c.internalKey)
	}
}
