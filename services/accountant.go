package services

import (
	"context"
	"sync"
	"time"

	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/metrics"
	"github.com/lewiuberg/nortax/models"

	"github.com/shopspring/decimal"
)

// DeductionSource returns the withholding for a tax query.
type DeductionSource interface {
	Deduction(ctx context.Context, q models.TaxQuery) (int64, error)
}

// SettingsRepository loads and saves the persisted payslip settings.
type SettingsRepository interface {
	Load() (models.PayslipSettings, error)
	Save(settings models.PayslipSettings) error
}

// Accountant combines persisted payslip settings with per-call overrides and
// the remote deduction into a full pay breakdown. It is safe for concurrent
// use; the load and save of one computation are never interleaved with another.
type Accountant struct {
	mu          *sync.Mutex // shared by copies made with WithClock
	settings    SettingsRepository
	taxes       DeductionSource
	now         func() time.Time
	environment string
}

// NewAccountant creates an Accountant. The tax year is taken from the wall clock.
func NewAccountant(settings SettingsRepository, taxes DeductionSource, environment string) *Accountant {
	return &Accountant{
		mu:          &sync.Mutex{},
		settings:    settings,
		taxes:       taxes,
		now:         time.Now,
		environment: environment,
	}
}

// WithClock returns a copy of a that reads the current year from now.
func (a *Accountant) WithClock(now func() time.Time) *Accountant {
	c := *a
	c.now = now
	return &c
}

// ParseOverrides parses the amounts supplied on the command line or in a
// request. An empty string leaves the persisted value in place.
func ParseOverrides(income, commission, reimbursements string) (models.Overrides, error) {
	var ov models.Overrides
	for _, f := range []struct {
		raw string
		dst **decimal.Decimal
	}{
		{income, &ov.Income},
		{commission, &ov.Commission},
		{reimbursements, &ov.Reimbursements},
	} {
		if f.raw == "" {
			continue
		}
		amount, err := models.ParseAmount(f.raw)
		if err != nil {
			return models.Overrides{}, err
		}
		*f.dst = &amount
	}
	return ov, nil
}

// LoadSettings returns the persisted settings with ov applied on top.
func (a *Accountant) LoadSettings(ov models.Overrides) (models.PayslipSettings, error) {
	persisted, err := a.settings.Load()
	if err != nil {
		return models.PayslipSettings{}, err
	}
	return ov.Apply(persisted), nil
}

// SaveSettings persists s as the new effective settings.
func (a *Accountant) SaveSettings(s models.PayslipSettings) error {
	return a.settings.Save(s)
}

// Compute loads and saves the effective settings, then derives the payslip.
func (a *Accountant) Compute(ctx context.Context, ov models.Overrides) (*models.PayslipResult, error) {
	result, err := a.compute(ctx, ov)
	if err != nil {
		metrics.PayslipComputations.WithLabelValues("error", a.env()).Inc()
		return nil, err
	}
	metrics.PayslipComputations.WithLabelValues("ok", a.env()).Inc()
	return result, nil
}

func (a *Accountant) compute(ctx context.Context, ov models.Overrides) (*models.PayslipResult, error) {
	settings, err := a.persist(ov)
	if err != nil {
		return nil, err
	}

	year := a.now().Year()
	benefits := settings.Benefits.ElectronicCommunication.Add(settings.Benefits.PersonnelInsurance)
	taxableIncome := settings.Salary.Income.Add(benefits)

	q, err := models.NewTaxQuery(
		taxableIncome.Floor().IntPart(),
		settings.Tax.Table,
		settings.Salary.IncomeType,
		settings.Tax.Period,
		year,
	)
	if err != nil {
		return nil, err
	}

	incomeTax, err := a.taxes.Deduction(ctx, q)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	netIncome := roundHalfEven(settings.Salary.Income.Sub(decimal.NewFromInt(incomeTax)))
	commissionTax := roundHalfEven(settings.Salary.Commission.Mul(settings.Tax.Percentage).Div(hundred))
	netCommission := roundHalfEven(settings.Salary.Commission.Sub(decimal.NewFromInt(commissionTax)))

	result := &models.PayslipResult{
		Settings:        settings,
		Year:            year,
		TaxableBenefits: benefits,
		TaxableIncome:   taxableIncome,
		IncomeTax:       incomeTax,
		NetIncome:       netIncome,
		CommissionTax:   commissionTax,
		NetCommission:   netCommission,
		TotalTax:        incomeTax + commissionTax,
		TotalSalary:     netIncome + netCommission,
		TotalPay:        decimal.NewFromInt(netIncome + netCommission).Add(settings.Salary.Reimbursements),
	}

	logger.Debug("Payslip for table %s (%s, %s, %d): taxable income %s, income tax %d, total pay %s",
		settings.Tax.Table, settings.Salary.IncomeType, settings.Tax.Period, year,
		taxableIncome, incomeTax, result.TotalPay)

	return result, nil
}

// persist applies ov to the stored settings and writes the result back.
func (a *Accountant) persist(ov models.Overrides) (models.PayslipSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	settings, err := a.LoadSettings(ov)
	if err != nil {
		return models.PayslipSettings{}, err
	}
	if err := a.SaveSettings(settings); err != nil {
		return models.PayslipSettings{}, err
	}
	return settings, nil
}

func (a *Accountant) env() string {
	if a.environment == "" {
		return "dev"
	}
	return a.environment
}

// roundHalfEven rounds to whole kroner, ties to even.
func roundHalfEven(d decimal.Decimal) int64 {
	return d.RoundBank(0).IntPart()
}
