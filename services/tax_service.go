package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lewiuberg/nortax/apperror"
	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/metrics"
	"github.com/lewiuberg/nortax/models"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

const breakerName = "tax-service"

// TaxService looks up deductions in the Skatteetaten tax table service.
type TaxService struct {
	baseURL     string
	client      *http.Client
	cb          *gobreaker.CircuitBreaker
	environment string

	mu          sync.Mutex
	lastRequest models.RequestDescriptor
}

// NewTaxService creates a TaxService from the application configuration
func NewTaxService(cfg models.Config) *TaxService {
	return NewTaxServiceWithClient(cfg, &http.Client{
		Timeout: time.Duration(cfg.TaxService.Timeout) * time.Second,
	})
}

// NewTaxServiceWithClient creates a TaxService using the given HTTP client
func NewTaxServiceWithClient(cfg models.Config, client *http.Client) *TaxService {
	environment := cfg.Environment
	if environment == "" {
		environment = "dev"
	}
	baseURL := cfg.TaxService.BaseURL

	s := &TaxService{
		baseURL:     baseURL,
		client:      client,
		environment: environment,
	}

	if cfg.CircuitBreakerEnabled {
		cbConfig := cfg.CircuitBreaker
		settings := gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: uint32(cbConfig.MaxHalfOpenReqs),
			Interval:    0, // No forced reset based on time (reset only by success/failure events)
			Timeout:     time.Duration(cbConfig.Timeout) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= uint32(cbConfig.RequestThreshold) && failureRatio >= cbConfig.FailureRatio
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("Circuit breaker '%s' changed from '%v' to '%v' [threshold=%d, ratio=%.2f]",
					name, from, to, cbConfig.RequestThreshold, cbConfig.FailureRatio)

				// 1=closed, 2=half-open, 3=open
				var stateValue float64
				switch to {
				case gobreaker.StateClosed:
					stateValue = 1
				case gobreaker.StateHalfOpen:
					stateValue = 2
				case gobreaker.StateOpen:
					stateValue = 3
				}
				metrics.CircuitBreakerState.WithLabelValues(name, environment).Set(stateValue)
			},
		}

		s.cb = gobreaker.NewCircuitBreaker(settings)
		metrics.CircuitBreakerState.WithLabelValues(breakerName, environment).Set(1)
	}

	return s
}

// LastRequest returns the descriptor of the most recent lookup.
func (s *TaxService) LastRequest() models.RequestDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequest
}

// Deduction returns the amount withheld from q.GrossIncome.
func (s *TaxService) Deduction(ctx context.Context, q models.TaxQuery) (int64, error) {
	body, err := s.lookup(ctx, "deduction", q.WithWholeTable(false))
	if err != nil {
		return 0, err
	}

	deduction, err := decodeInteger(body)
	if err != nil {
		s.record("deduction", "invalid_body")
		return 0, apperror.RemoteService(err, "tax table service returned a non-integer deduction")
	}
	s.record("deduction", "ok")
	return deduction, nil
}

// NetIncome returns q.GrossIncome minus its deduction.
func (s *TaxService) NetIncome(ctx context.Context, q models.TaxQuery) (int64, error) {
	deduction, err := s.Deduction(ctx, q)
	if err != nil {
		return 0, err
	}
	return q.GrossIncome - deduction, nil
}

// WholeTable returns the deduction for every income bracket of q's table, period and year.
func (s *TaxService) WholeTable(ctx context.Context, q models.TaxQuery) (map[string]int64, error) {
	body, err := s.lookup(ctx, "whole_table", q.WithWholeTable(true))
	if err != nil {
		return nil, err
	}

	var response map[string]json.RawMessage
	if err := json.Unmarshal(body, &response); err != nil {
		s.record("whole_table", "invalid_body")
		return nil, apperror.RemoteService(err, "tax table service returned invalid JSON")
	}

	raw, ok := response[models.AllDeductionsKey]
	if !ok {
		s.record("whole_table", "schema")
		return nil, apperror.Schema("tax table response has no %q key", models.AllDeductionsKey)
	}

	var table map[string]int64
	if err := json.Unmarshal(raw, &table); err != nil || table == nil {
		s.record("whole_table", "schema")
		return nil, apperror.Schema("tax table response key %q is not a bracket mapping", models.AllDeductionsKey)
	}

	s.record("whole_table", "ok")
	return table, nil
}

// lookup validates q, issues the GET and returns the raw body.
func (s *TaxService) lookup(ctx context.Context, operation string, q models.TaxQuery) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	descriptor := models.BuildRequest(s.baseURL, q)
	s.mu.Lock()
	s.lastRequest = descriptor
	s.mu.Unlock()

	url := descriptor.String()
	logger.Debug("===> %s lookup: GET %s", operation, url)

	body, err := s.fetch(ctx, url)
	if err != nil {
		s.record(operation, "error")
		return nil, err
	}
	return body, nil
}

// fetch runs the request through the circuit breaker when one is configured.
func (s *TaxService) fetch(ctx context.Context, url string) ([]byte, error) {
	if s.cb == nil {
		body, err := s.doFetch(ctx, url)
		if err != nil {
			metrics.TaxServiceErrors.WithLabelValues(s.environment).Inc()
			return nil, err
		}
		return body, nil
	}

	response, err := s.cb.Execute(func() (interface{}, error) {
		return s.doFetch(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRejected.WithLabelValues(breakerName, s.environment).Inc()
			return nil, apperror.RemoteService(err, "tax table service is unavailable")
		}

		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "false", s.environment).Inc()
		metrics.TaxServiceErrors.WithLabelValues(s.environment).Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "true", s.environment).Inc()
	return response.([]byte), nil
}

// doFetch performs the actual HTTP request to the tax service
func (s *TaxService) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.RemoteService(err, "could not build tax table request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("===> Error calling tax table service: %v", err)
		return nil, apperror.RemoteService(err, "tax table request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("===> Error reading response body: %v", err)
		return nil, apperror.RemoteService(err, "could not read tax table response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.RemoteService(statusError(resp.StatusCode, body), "tax table service rejected the request")
	}

	return body, nil
}

// statusError describes a non-2xx response, using the structured error list when present.
func statusError(statusCode int, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("status %d", statusCode)
	}

	var errorResponse struct {
		Errors []models.TaxServiceError `json:"errors"`
	}
	if err := json.Unmarshal(body, &errorResponse); err == nil && len(errorResponse.Errors) > 0 {
		messages := make([]string, 0, len(errorResponse.Errors))
		for _, e := range errorResponse.Errors {
			messages = append(messages, fmt.Sprintf("%s: %s", e.Code, e.Message))
		}
		return fmt.Errorf("status %d: %s", statusCode, strings.Join(messages, "; "))
	}

	return fmt.Errorf("status %d - Details: %s", statusCode, strings.TrimSpace(string(body)))
}

// decodeInteger reads a JSON body holding an integer: a number literal,
// a float (truncated) or a numeric string. Anything after the value is an error.
func decodeInteger(body []byte) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return 0, err
	}
	var trailing interface{}
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("unexpected data after the integer")
	}

	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%q is not an integer", v.String())
		}
		return int64(f), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

func (s *TaxService) record(operation, outcome string) {
	metrics.TaxServiceRequests.WithLabelValues(operation, outcome, s.environment).Inc()
}
