package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lewiuberg/nortax/apperror"
	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/models"

	json "github.com/goccy/go-json"
)

// TaxLookup is the part of services.TaxService the HTTP layer needs
type TaxLookup interface {
	Deduction(ctx context.Context, q models.TaxQuery) (int64, error)
	WholeTable(ctx context.Context, q models.TaxQuery) (map[string]int64, error)
}

// TaxHandler serves deduction and whole-table lookups
type TaxHandler struct {
	taxes TaxLookup
	now   func() time.Time
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(taxes TaxLookup) *TaxHandler {
	return &TaxHandler{taxes: taxes, now: time.Now}
}

// HandleDeduction returns the deduction and net income for one income
func (h *TaxHandler) HandleDeduction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q, err := h.parseQuery(r, true)
	if err != nil {
		respondWithError(w, err)
		return
	}

	deduction, err := h.taxes.Deduction(r.Context(), q)
	if err != nil {
		logger.Error("Deduction lookup failed: %v", err)
		respondWithError(w, err)
		return
	}

	json.NewEncoder(w).Encode(models.DeductionResponse{
		Income:     q.GrossIncome,
		Table:      q.Table,
		IncomeType: q.IncomeType,
		Period:     q.Period,
		Year:       q.Year,
		Deduction:  deduction,
		NetIncome:  q.GrossIncome - deduction,
	})
}

// HandleWholeTable returns every bracket of a table
func (h *TaxHandler) HandleWholeTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q, err := h.parseQuery(r, false)
	if err != nil {
		respondWithError(w, err)
		return
	}

	table, err := h.taxes.WholeTable(r.Context(), q)
	if err != nil {
		logger.Error("Whole table lookup failed: %v", err)
		respondWithError(w, err)
		return
	}

	json.NewEncoder(w).Encode(models.WholeTableResponse{
		Table:         q.Table,
		IncomeType:    q.IncomeType,
		Period:        q.Period,
		Year:          q.Year,
		AllDeductions: table,
	})
}

// parseQuery reads lookup parameters from the URL query and, for POST, the form body.
func (h *TaxHandler) parseQuery(r *http.Request, requireIncome bool) (models.TaxQuery, error) {
	get, err := formValues(r)
	if err != nil {
		return models.TaxQuery{}, err
	}

	var income int64
	if raw := get("income"); raw != "" {
		amount, err := models.ParseAmount(raw)
		if err != nil {
			return models.TaxQuery{}, err
		}
		income = amount.Floor().IntPart()
	} else if requireIncome {
		return models.TaxQuery{}, apperror.InvalidInput("income parameter is required")
	}

	rawTable := get("table")
	if rawTable == "" {
		return models.TaxQuery{}, apperror.InvalidInput("table parameter is required")
	}
	table, err := models.ParseTaxTable(rawTable)
	if err != nil {
		return models.TaxQuery{}, err
	}

	period := models.PeriodMonthly
	if raw := get("period"); raw != "" {
		if period, err = models.ParsePeriod(raw); err != nil {
			return models.TaxQuery{}, err
		}
	}

	incomeType := models.IncomeTypeWage
	if raw := get("incomeType"); raw != "" {
		if incomeType, err = models.ParseIncomeType(raw); err != nil {
			return models.TaxQuery{}, err
		}
	}

	year := h.now().Year()
	if raw := get("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			return models.TaxQuery{}, apperror.InvalidInput("invalid year format: %v", err)
		}
	}

	return models.NewTaxQuery(income, table, incomeType, period, year)
}

// formValues returns a lookup that prefers URL query values over POST form values.
func formValues(r *http.Request) (func(string) string, error) {
	query := r.URL.Query()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return nil, apperror.InvalidInput("invalid form data: %v", err)
		}
	}
	return func(key string) string {
		if v := query.Get(key); v != "" {
			return v
		}
		if r.PostForm != nil {
			return r.PostForm.Get(key)
		}
		return ""
	}, nil
}

func respondWithError(w http.ResponseWriter, err error) {
	response := models.ErrorResponse{Error: err.Error()}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		response.Code = appErr.Code
	} else {
		response.Code = apperror.ErrInternal.Code
		response.Error = fmt.Sprintf("%s: %v", apperror.ErrInternal.Message, err)
	}
	w.WriteHeader(apperror.StatusOf(err))
	json.NewEncoder(w).Encode(response)
}
