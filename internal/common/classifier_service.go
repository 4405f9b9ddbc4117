package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"flightdeck/logbook/internal/metrics"
	"flightdeck/logbook/internal/models/dtos"
)

// ClassifierService talks to the external LLM/OCR classification service.
// Every call is best-effort single-attempt; there is no retry or backoff.
type ClassifierService struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	metrics *metrics.MetricsRegistry
}

// NewClassifierService creates a new instance, reading config from environment variables
func NewClassifierService(metricsReg *metrics.MetricsRegistry) *ClassifierService {
	baseURL := os.Getenv("CLASSIFIER_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:9090/v1" // Default
	}
	apiKey := os.Getenv("CLASSIFIER_API_KEY")
	client := &http.Client{Timeout: 60 * time.Second}
	return &ClassifierService{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  client,
		metrics: metricsReg,
	}
}

// helper: does POST with auth header, parses json into result, returns status code
func (svc *ClassifierService) doPost(ctx context.Context, endpoint string, payload interface{}, result interface{}) (int, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", svc.BaseURL+endpoint, buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+svc.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(result)
	case http.StatusNotFound:
		return resp.StatusCode, errors.New("resource not found")
	default:
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func (svc *ClassifierService) observe(operation string, start time.Time, err error) {
	if svc.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	svc.metrics.ClassifierCallsTotal.WithLabelValues(operation, outcome).Inc()
	svc.metrics.ClassifierCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ExtractTable sends a scanned image or PDF and receives its content as a
// tab-delimited table.
func (svc *ClassifierService) ExtractTable(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	start := time.Now()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.WriteField("content_type", mimeType); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", svc.BaseURL+"/extract/table", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+svc.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := svc.Client.Do(req)
	if err != nil {
		svc.observe("extract_table", start, err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		svc.observe("extract_table", start, err)
		return "", err
	}

	var r dtos.ExtractTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		svc.observe("extract_table", start, err)
		return "", err
	}
	if r.Table == "" {
		err = errors.New("classifier returned an empty table")
		svc.observe("extract_table", start, err)
		return "", err
	}

	svc.observe("extract_table", start, nil)
	return r.Table, nil
}

// GuessKeyColumns asks for the zero-based indices of the date-time and
// aircraft-identifier columns, plus a date parse layout.
func (svc *ClassifierService) GuessKeyColumns(ctx context.Context, headers []string, sample [][]string) (*dtos.KeyColumnGuess, error) {
	start := time.Now()

	payload := dtos.SuggestColumnsRequest{Headers: headers, Sample: sample}
	var r dtos.KeyColumnGuess
	_, err := svc.doPost(ctx, "/columns/locate", payload, &r)
	svc.observe("guess_key_columns", start, err)
	if err != nil {
		return nil, err
	}

	if r.DateIndex < 0 || r.AircraftIndex < 0 {
		return nil, errors.New("classifier did not locate both key columns")
	}
	return &r, nil
}

// SuggestColumns asks which source columns should be renamed to canonical
// names and which removed as irrelevant. Advisory only.
func (svc *ClassifierService) SuggestColumns(ctx context.Context, headers []string, sample [][]string, catalog []string) ([]dtos.ColumnSuggestion, error) {
	start := time.Now()

	payload := dtos.SuggestColumnsRequest{Headers: headers, Sample: sample, Catalog: catalog}
	var r dtos.SuggestColumnsResponse
	_, err := svc.doPost(ctx, "/columns/suggest", payload, &r)
	svc.observe("suggest_columns", start, err)
	if err != nil {
		return nil, err
	}
	return r.Suggestions, nil
}

// ClassifyAircraft submits a batch of unknown aircraft identifiers and
// receives a canonical model name and attribute set for each.
func (svc *ClassifierService) ClassifyAircraft(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error) {
	start := time.Now()

	payload := map[string][]string{"identifiers": identifiers}
	var r dtos.ClassifyAircraftResponse
	_, err := svc.doPost(ctx, "/aircraft/classify", payload, &r)
	svc.observe("classify_aircraft", start, err)
	if err != nil {
		return nil, err
	}
	return r.Results, nil
}
