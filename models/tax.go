package models

import (
	"github.com/lewiuberg/nortax/apperror"
)

// TaxTable is a withholding table code assigned by Skatteetaten.
type TaxTable string

// validTables lists every table code the service accepts.
var validTables = []TaxTable{
	"7100", "7101", "7102", "7103", "7104", "7105", "7106", "7107", "7108", "7109",
	"7110", "7111", "7112", "7113", "7114", "7115", "7116", "7117", "7118", "7119",
	"7120", "7121", "7122", "7123", "7124", "7125", "7126", "7127", "7128", "7129",
	"7130", "7131", "7132", "7133", "7150", "7160", "7170", "7300", "7350", "7500",
	"7550", "7700", "6300", "6350", "6500", "6550", "6700", "0100", "0101",
}

// TaxTables returns the accepted table codes in display order.
func TaxTables() []TaxTable {
	out := make([]TaxTable, len(validTables))
	copy(out, validTables)
	return out
}

// ParseTaxTable returns the table for code, or INVALID_INPUT for an unknown code.
func ParseTaxTable(code string) (TaxTable, error) {
	for _, t := range validTables {
		if string(t) == code {
			return t, nil
		}
	}
	return "", apperror.InvalidInput("unknown tax table %q", code)
}

// IsValid reports whether t is an accepted table code.
func (t TaxTable) IsValid() bool {
	_, err := ParseTaxTable(string(t))
	return err == nil
}

// String returns the table code.
func (t TaxTable) String() string { return string(t) }

// MarshalText writes the code, refusing an unknown table.
func (t TaxTable) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, apperror.InvalidInput("unknown tax table %q", string(t))
	}
	return []byte(t), nil
}

// UnmarshalText accepts only known table codes.
func (t *TaxTable) UnmarshalText(text []byte) error {
	parsed, err := ParseTaxTable(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IncomeType selects the wage or pension variant of a table.
type IncomeType string

const (
	IncomeTypeWage    IncomeType = "Wage"
	IncomeTypePension IncomeType = "Pension"
)

// ParseIncomeType returns the income type named s, or INVALID_INPUT.
func ParseIncomeType(s string) (IncomeType, error) {
	switch IncomeType(s) {
	case IncomeTypeWage, IncomeTypePension:
		return IncomeType(s), nil
	default:
		return "", apperror.InvalidInput("unknown income type %q", s)
	}
}

// IsValid reports whether i is Wage or Pension.
func (i IncomeType) IsValid() bool {
	_, err := ParseIncomeType(string(i))
	return err == nil
}

// String returns the name sent to the service.
func (i IncomeType) String() string { return string(i) }

// MarshalText writes the name, refusing an unknown income type.
func (i IncomeType) MarshalText() ([]byte, error) {
	if !i.IsValid() {
		return nil, apperror.InvalidInput("unknown income type %q", string(i))
	}
	return []byte(i), nil
}

// UnmarshalText accepts only Wage or Pension.
func (i *IncomeType) UnmarshalText(text []byte) error {
	parsed, err := ParseIncomeType(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Period is the payroll interval. Its String form is the display spelling;
// Token is what the tax table service expects on the wire.
type Period string

const (
	PeriodOneDay    Period = "1 day"
	PeriodTwoDays   Period = "2 days"
	PeriodThreeDays Period = "3 days"
	PeriodFourDays  Period = "4 days"
	PeriodOneWeek   Period = "1 week"
	PeriodTwoWeeks  Period = "2 weeks"
	PeriodMonthly   Period = "Monthly"
)

type periodToken struct {
	period Period
	token  string
}

// periodTokens is ordered; rendering substitutes in this order.
var periodTokens = []periodToken{
	{PeriodOneDay, "PERIODE_1_DAG"},
	{PeriodTwoDays, "PERIODE_2_DAGER"},
	{PeriodThreeDays, "PERIODE_3_DAGER"},
	{PeriodFourDays, "PERIODE_4_DAGER"},
	{PeriodOneWeek, "PERIODE_1_UKE"},
	{PeriodTwoWeeks, "PERIODE_14_DAGER"},
	{PeriodMonthly, "PERIODE_1_MAANED"},
}

// Periods returns every period in display order.
func Periods() []Period {
	out := make([]Period, 0, len(periodTokens))
	for _, pt := range periodTokens {
		out = append(out, pt.period)
	}
	return out
}

// ParsePeriod returns the period with display spelling s, or INVALID_INPUT.
func ParsePeriod(s string) (Period, error) {
	for _, pt := range periodTokens {
		if string(pt.period) == s {
			return pt.period, nil
		}
	}
	return "", apperror.InvalidInput("unknown period %q", s)
}

// IsValid reports whether p is one of Periods.
func (p Period) IsValid() bool {
	_, err := ParsePeriod(string(p))
	return err == nil
}

// String returns the display spelling, e.g. "2 weeks".
func (p Period) String() string { return string(p) }

// Token returns the service encoding of p, or "" for an unknown period.
func (p Period) Token() string {
	for _, pt := range periodTokens {
		if pt.period == p {
			return pt.token
		}
	}
	return ""
}

// MarshalText writes the display spelling, refusing an unknown period.
func (p Period) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, apperror.InvalidInput("unknown period %q", string(p))
	}
	return []byte(p), nil
}

// UnmarshalText accepts a display spelling, not a service token.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
