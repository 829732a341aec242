package models

import (
	"strconv"
	"strings"

	"github.com/lewiuberg/nortax/apperror"
)

// Query parameter names understood by the tax table service.
const (
	ParamTable          = "valgtTabell"
	ParamIncomeType     = "valgtInntektType"
	ParamPeriod         = "valgtPeriode"
	ParamIncome         = "valgtLonn"
	ParamShowWholeTable = "visHeleTabellen"
	ParamYear           = "valgtAar"
	ParamGetWholeTable  = "hentHeleTabellen"

	// AllDeductionsKey addresses the per-bracket mapping in a whole-table response.
	AllDeductionsKey = "alleTrekk"
)

// TaxQuery holds the parameters of one tax table lookup.
type TaxQuery struct {
	GrossIncome      int64
	Table            TaxTable
	IncomeType       IncomeType
	Period           Period
	Year             int
	ReturnWholeTable bool
}

// NewTaxQuery validates the parameters and returns a query for a single deduction.
func NewTaxQuery(grossIncome int64, table TaxTable, incomeType IncomeType, period Period, year int) (TaxQuery, error) {
	q := TaxQuery{
		GrossIncome: grossIncome,
		Table:       table,
		IncomeType:  incomeType,
		Period:      period,
		Year:        year,
	}
	if err := q.Validate(); err != nil {
		return TaxQuery{}, err
	}
	return q, nil
}

// Validate rejects values the service would otherwise receive unchecked.
func (q TaxQuery) Validate() error {
	if q.GrossIncome < 0 {
		return apperror.InvalidInput("gross income must not be negative, got %d", q.GrossIncome)
	}
	if !q.Table.IsValid() {
		return apperror.InvalidInput("unknown tax table %q", string(q.Table))
	}
	if !q.IncomeType.IsValid() {
		return apperror.InvalidInput("unknown income type %q", string(q.IncomeType))
	}
	if !q.Period.IsValid() {
		return apperror.InvalidInput("unknown period %q", string(q.Period))
	}
	if q.Year < 1000 || q.Year > 9999 {
		return apperror.InvalidInput("year must have four digits, got %d", q.Year)
	}
	return nil
}

// WithWholeTable returns a copy of q with the whole-table flag set.
func (q TaxQuery) WithWholeTable(whole bool) TaxQuery {
	q.ReturnWholeTable = whole
	return q
}

// QueryParam is one key/value pair of a request descriptor.
type QueryParam struct {
	Key   string
	Value string
}

// RequestDescriptor is the rendered form of a TaxQuery against a base URL.
type RequestDescriptor struct {
	BaseURL string
	Params  []QueryParam
}

// wireBool spells a flag the way the service has always been sent it.
func wireBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// BuildRequest renders q into a descriptor. It has no side effects; a changed
// query always needs a new call.
func BuildRequest(baseURL string, q TaxQuery) RequestDescriptor {
	whole := wireBool(q.ReturnWholeTable)
	return RequestDescriptor{
		BaseURL: baseURL,
		Params: []QueryParam{
			{ParamTable, string(q.Table)},
			{ParamIncomeType, string(q.IncomeType)},
			{ParamPeriod, string(q.Period)},
			{ParamIncome, strconv.FormatInt(q.GrossIncome, 10)},
			{ParamShowWholeTable, whole},
			{ParamYear, strconv.Itoa(q.Year)},
			{ParamGetWholeTable, whole},
		},
	}
}

// String renders the full URL. Period display spellings are replaced with
// their service tokens over the whole rendered string, not per parameter.
func (d RequestDescriptor) String() string {
	var b strings.Builder
	b.WriteString(d.BaseURL)
	b.WriteByte('?')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}

	rendered := b.String()
	for _, pt := range periodTokens {
		rendered = strings.ReplaceAll(rendered, string(pt.period), pt.token)
	}
	return rendered
}
