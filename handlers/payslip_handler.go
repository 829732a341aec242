package handlers

import (
	"context"
	"net/http"

	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/models"
	"github.com/lewiuberg/nortax/services"

	json "github.com/goccy/go-json"
)

// PayslipComputer is the part of services.Accountant the HTTP layer needs
type PayslipComputer interface {
	Compute(ctx context.Context, ov models.Overrides) (*models.PayslipResult, error)
}

// PayslipHandler serves payslip breakdowns
type PayslipHandler struct {
	accountant PayslipComputer
}

// NewPayslipHandler creates a new payslip handler
func NewPayslipHandler(accountant PayslipComputer) *PayslipHandler {
	return &PayslipHandler{accountant: accountant}
}

// Handle computes a payslip. income, commission and reimbursements are optional
// and override the persisted settings when present.
func (h *PayslipHandler) Handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	get, err := formValues(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	ov, err := services.ParseOverrides(get("income"), get("commission"), get("reimbursements"))
	if err != nil {
		respondWithError(w, err)
		return
	}

	result, err := h.accountant.Compute(r.Context(), ov)
	if err != nil {
		logger.Error("Payslip computation failed: %v", err)
		respondWithError(w, err)
		return
	}

	json.NewEncoder(w).Encode(result.Record())
}
