package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lewiuberg/nortax/apperror"
	"github.com/lewiuberg/nortax/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTaxService(t *testing.T, handler http.HandlerFunc) (*TaxService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := models.Config{
		TaxService:  models.TaxServiceConfig{BaseURL: server.URL},
		Environment: "test",
	}
	return NewTaxService(cfg), server
}

func exampleQuery(t *testing.T) models.TaxQuery {
	t.Helper()
	q, err := models.NewTaxQuery(65625, "7107", models.IncomeTypeWage, models.PeriodMonthly, 2023)
	require.NoError(t, err)
	return q
}

func TestDeduction(t *testing.T) {
	service, _ := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "7107", r.URL.Query().Get(models.ParamTable))
		assert.Equal(t, "Wage", r.URL.Query().Get(models.ParamIncomeType))
		assert.Equal(t, "PERIODE_1_MAANED", r.URL.Query().Get(models.ParamPeriod))
		assert.Equal(t, "65625", r.URL.Query().Get(models.ParamIncome))
		assert.Equal(t, "2023", r.URL.Query().Get(models.ParamYear))
		assert.Equal(t, "False", r.URL.Query().Get(models.ParamShowWholeTable))
		assert.Equal(t, "False", r.URL.Query().Get(models.ParamGetWholeTable))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `18000`)
	})

	deduction, err := service.Deduction(context.Background(), exampleQuery(t))

	require.NoError(t, err)
	assert.Equal(t, int64(18000), deduction)
}

func TestDeductionCoercesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{"integer", `12345`, 12345},
		{"integral float", `12345.0`, 12345},
		{"fractional float is truncated", `12345.9`, 12345},
		{"numeric string", `"12345"`, 12345},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, _ := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			})

			got, err := service.Deduction(context.Background(), exampleQuery(t))

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeductionRemoteFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-JSON body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>maintenance</html>`)
		}},
		{"object body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"trekk": 100}`)
		}},
		{"trailing garbage", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `18000 garbage`)
		}},
		{"trailing brace", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `18000}`)
		}},
		{"float beyond int64", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `1e30`)
		}},
		{"negative float beyond int64", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `-1e30`)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"structured error body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"errors":[{"code":"UGYLDIG_TABELL","field":"valgtTabell","message":"ukjent tabell"}]}`)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, _ := newTestTaxService(t, tc.handler)

			_, err := service.Deduction(context.Background(), exampleQuery(t))

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrRemoteService), "got %v", err)
		})
	}
}

func TestDeductionTransportFailure(t *testing.T) {
	service, server := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := service.Deduction(context.Background(), exampleQuery(t))

	assert.True(t, errors.Is(err, apperror.ErrRemoteService))
}

func TestNetIncomeIsGrossMinusDeduction(t *testing.T) {
	service, _ := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `18000`)
	})
	q := exampleQuery(t)

	deduction, err := service.Deduction(context.Background(), q)
	require.NoError(t, err)
	net, err := service.NetIncome(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, q.GrossIncome-deduction, net)
	assert.Equal(t, int64(47625), net)
}

func TestWholeTable(t *testing.T) {
	service, _ := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "True", r.URL.Query().Get(models.ParamShowWholeTable))
		assert.Equal(t, "True", r.URL.Query().Get(models.ParamGetWholeTable))
		fmt.Fprint(w, `{"alleTrekk": {"100": 10, "200": 20}}`)
	})

	table, err := service.WholeTable(context.Background(), exampleQuery(t))

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"100": 10, "200": 20}, table)
	assert.Equal(t, "True", service.LastRequest().Params[4].Value)
}

func TestWholeTableSchemaErrors(t *testing.T) {
	for name, body := range map[string]string{
		"missing key":   `{"trekk": {"100": 10}}`,
		"not a mapping": `{"alleTrekk": [10, 20]}`,
		"null mapping":  `{"alleTrekk": null}`,
	} {
		t.Run(name, func(t *testing.T) {
			service, _ := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			})

			_, err := service.WholeTable(context.Background(), exampleQuery(t))

			assert.True(t, errors.Is(err, apperror.ErrSchema), "got %v", err)
		})
	}
}

func TestWholeTableInvalidJSON(t *testing.T) {
	service, _ := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"alleTrekk":`)
	})

	_, err := service.WholeTable(context.Background(), exampleQuery(t))

	assert.True(t, errors.Is(err, apperror.ErrRemoteService))
}

func TestLastRequestTracksMostRecentQuery(t *testing.T) {
	var urls []string
	service, server := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
		urls = append(urls, r.URL.RawQuery)
		fmt.Fprint(w, `100`)
	})

	q := exampleQuery(t)
	_, err := service.Deduction(context.Background(), q)
	require.NoError(t, err)

	q.Period = models.PeriodOneWeek
	q.GrossIncome = 15000
	_, err = service.Deduction(context.Background(), q)
	require.NoError(t, err)

	last := service.LastRequest()
	assert.Equal(t, server.URL, last.BaseURL)
	assert.Equal(t, models.BuildRequest(server.URL, q).String(), last.String())
	require.Len(t, urls, 2)
	assert.Contains(t, urls[1], "PERIODE_1_UKE")
	assert.Contains(t, urls[1], "valgtLonn=15000")
}

func TestInvalidQueryNeverReachesService(t *testing.T) {
	called := false
	service, _ := newTestTaxService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	q := exampleQuery(t)
	q.Table = "1234"
	_, err := service.Deduction(context.Background(), q)

	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	assert.False(t, called)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := NewTaxService(models.Config{
		TaxService:            models.TaxServiceConfig{BaseURL: server.URL},
		Environment:           "test",
		CircuitBreakerEnabled: true,
		CircuitBreaker: models.CircuitBreakerConfig{
			RequestThreshold: 2,
			FailureRatio:     0.5,
			Timeout:          60,
			MaxHalfOpenReqs:  1,
		},
	})

	for i := 0; i < 3; i++ {
		_, err := service.Deduction(context.Background(), exampleQuery(t))
		assert.True(t, errors.Is(err, apperror.ErrRemoteService))
	}

	assert.Equal(t, 2, calls, "open breaker must reject without calling the service")
}
