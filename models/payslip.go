package models

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/lewiuberg/nortax/apperror"
)

// PayslipSettings is the persisted payslip configuration. Every leaf is
// written as a JSON string.
type PayslipSettings struct {
	Tax      TaxSettings     `json:"tax"`
	Benefits BenefitSettings `json:"benefits"`
	Salary   SalarySettings  `json:"salary"`
}

// TaxSettings selects the withholding table and the flat commission rate.
type TaxSettings struct {
	Table      TaxTable        `json:"table"`
	Percentage decimal.Decimal `json:"percentage"` // flat rate applied to commission
	Period     Period          `json:"period"`
}

// BenefitSettings holds the taxable benefits added to the table lookup amount.
type BenefitSettings struct {
	ElectronicCommunication decimal.Decimal `json:"electronic_communication"`
	PersonnelInsurance      decimal.Decimal `json:"personnel_insurance"`
}

// SalarySettings holds the amounts paid for one period.
type SalarySettings struct {
	Income         decimal.Decimal `json:"income"`
	Commission     decimal.Decimal `json:"commission"`
	Reimbursements decimal.Decimal `json:"reimbursements"`
	IncomeType     IncomeType      `json:"type"`
}

type rawPayslipSettings struct {
	Tax *struct {
		Table      *TaxTable        `json:"table"`
		Percentage *decimal.Decimal `json:"percentage"`
		Period     *Period          `json:"period"`
	} `json:"tax"`
	Benefits *struct {
		ElectronicCommunication *decimal.Decimal `json:"electronic_communication"`
		PersonnelInsurance      *decimal.Decimal `json:"personnel_insurance"`
	} `json:"benefits"`
	Salary *struct {
		Income         *decimal.Decimal `json:"income"`
		Commission     *decimal.Decimal `json:"commission"`
		Reimbursements *decimal.Decimal `json:"reimbursements"`
		IncomeType     *IncomeType      `json:"type"`
	} `json:"salary"`
}

// UnmarshalJSON decodes a settings document. Every group and every field must
// be present; a missing one is an error rather than a zero value.
func (s *PayslipSettings) UnmarshalJSON(data []byte) error {
	var raw rawPayslipSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var missing []string
	need := func(present bool, name string) bool {
		if !present {
			missing = append(missing, name)
		}
		return present
	}

	var out PayslipSettings
	if need(raw.Tax != nil, "tax") {
		if need(raw.Tax.Table != nil, "tax.table") {
			out.Tax.Table = *raw.Tax.Table
		}
		if need(raw.Tax.Percentage != nil, "tax.percentage") {
			out.Tax.Percentage = *raw.Tax.Percentage
		}
		if need(raw.Tax.Period != nil, "tax.period") {
			out.Tax.Period = *raw.Tax.Period
		}
	}
	if need(raw.Benefits != nil, "benefits") {
		if need(raw.Benefits.ElectronicCommunication != nil, "benefits.electronic_communication") {
			out.Benefits.ElectronicCommunication = *raw.Benefits.ElectronicCommunication
		}
		if need(raw.Benefits.PersonnelInsurance != nil, "benefits.personnel_insurance") {
			out.Benefits.PersonnelInsurance = *raw.Benefits.PersonnelInsurance
		}
	}
	if need(raw.Salary != nil, "salary") {
		if need(raw.Salary.Income != nil, "salary.income") {
			out.Salary.Income = *raw.Salary.Income
		}
		if need(raw.Salary.Commission != nil, "salary.commission") {
			out.Salary.Commission = *raw.Salary.Commission
		}
		if need(raw.Salary.Reimbursements != nil, "salary.reimbursements") {
			out.Salary.Reimbursements = *raw.Salary.Reimbursements
		}
		if need(raw.Salary.IncomeType != nil, "salary.type") {
			out.Salary.IncomeType = *raw.Salary.IncomeType
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("settings are missing %s", strings.Join(missing, ", "))
	}

	*s = out
	return nil
}

// DefaultPayslipSettings is written when no settings file exists yet.
func DefaultPayslipSettings() PayslipSettings {
	return PayslipSettings{
		Tax: TaxSettings{
			Table:      "7100",
			Percentage: decimal.NewFromInt(40),
			Period:     PeriodMonthly,
		},
		Benefits: BenefitSettings{
			ElectronicCommunication: decimal.Zero,
			PersonnelInsurance:      decimal.Zero,
		},
		Salary: SalarySettings{
			Income:         decimal.NewFromInt(50000),
			Commission:     decimal.Zero,
			Reimbursements: decimal.Zero,
			IncomeType:     IncomeTypeWage,
		},
	}
}

// Validate checks the enumerated fields and that benefits are not negative.
func (s PayslipSettings) Validate() error {
	if !s.Tax.Table.IsValid() {
		return apperror.InvalidInput("unknown tax table %q", string(s.Tax.Table))
	}
	if !s.Tax.Period.IsValid() {
		return apperror.InvalidInput("unknown period %q", string(s.Tax.Period))
	}
	if !s.Salary.IncomeType.IsValid() {
		return apperror.InvalidInput("unknown income type %q", string(s.Salary.IncomeType))
	}
	if s.Benefits.ElectronicCommunication.IsNegative() || s.Benefits.PersonnelInsurance.IsNegative() {
		return apperror.InvalidInput("benefits must not be negative")
	}
	return nil
}

// Overrides carries amounts supplied for the current invocation. A nil field
// means the persisted value is used.
type Overrides struct {
	Income         *decimal.Decimal
	Commission     *decimal.Decimal
	Reimbursements *decimal.Decimal
}

// Apply returns s with every supplied override in place of the persisted value.
func (o Overrides) Apply(s PayslipSettings) PayslipSettings {
	if o.Income != nil {
		s.Salary.Income = *o.Income
	}
	if o.Commission != nil {
		s.Salary.Commission = *o.Commission
	}
	if o.Reimbursements != nil {
		s.Salary.Reimbursements = *o.Reimbursements
	}
	return s
}

var groupSeparators = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")

// ParseAmount parses a user supplied amount. A comma is read as the decimal
// separator and spaces between digit groups are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	normalized := groupSeparators.Replace(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, ",", ".")
	if normalized == "" {
		return decimal.Zero, apperror.InvalidInput("could not convert %q to a number", s)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, apperror.InvalidInput("could not convert %q to a number", s)
	}
	return d, nil
}

// PayslipResult is one computed pay breakdown together with the settings it
// was computed from.
type PayslipResult struct {
	Settings PayslipSettings
	Year     int

	TaxableBenefits decimal.Decimal
	TaxableIncome   decimal.Decimal
	IncomeTax       int64
	NetIncome       int64
	CommissionTax   int64
	NetCommission   int64
	TotalTax        int64
	TotalSalary     int64
	TotalPay        decimal.Decimal
}

// Field is one entry of a Record.
type Field struct {
	Key   string
	Value interface{}
}

// Record is an ordered flat mapping used for display and JSON output.
type Record []Field

// Record flattens r into display order.
func (r PayslipResult) Record() Record {
	s := r.Settings
	return Record{
		{"Tax Table", s.Tax.Table.String()},
		{"Tax Percentage", s.Tax.Percentage},
		{"Period", s.Tax.Period.String()},
		{"Year", r.Year},
		{"Income Type", s.Salary.IncomeType.String()},
		{"Electronic Communication Benefit", s.Benefits.ElectronicCommunication},
		{"Personnel Insurance Benefit", s.Benefits.PersonnelInsurance},
		{"Taxable Benefits", r.TaxableBenefits},
		{"Income", s.Salary.Income},
		{"Income Tax", r.IncomeTax},
		{"Net Income", r.NetIncome},
		{"Commission", s.Salary.Commission},
		{"Commission Tax", r.CommissionTax},
		{"Net Commission", r.NetCommission},
		{"Reimbursements", s.Salary.Reimbursements},
		{"Total Tax", r.TotalTax},
		{"Total Salary", r.TotalSalary},
		{"Total Pay", r.TotalPay},
	}
}

// Get returns the value stored under key.
func (rec Record) Get(key string) (interface{}, bool) {
	for _, f := range rec {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Lines renders one "Key: Value" line per field.
func (rec Record) Lines() []string {
	lines := make([]string, 0, len(rec))
	for _, f := range rec {
		lines = append(lines, fmt.Sprintf("%s: %v", f.Key, f.Value))
	}
	return lines
}

// MarshalJSON writes the record as an object in field order. Decimal amounts
// are written as JSON numbers.
func (rec Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range rec {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		switch v := f.Value.(type) {
		case decimal.Decimal:
			buf.WriteString(v.String())
		default:
			val, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
