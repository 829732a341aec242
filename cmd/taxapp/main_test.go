package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lewiuberg/nortax/apperror"
	"github.com/lewiuberg/nortax/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKroner(t *testing.T) {
	assert.Equal(t, "18 000", formatKroner(18000))
	assert.Equal(t, "1 234 567", formatKroner(1234567))
	assert.Equal(t, "950", formatKroner(950))
}

func TestParseLookup(t *testing.T) {
	q, err := parseLookup("25000", "7100", "2 weeks", "Pension", 2022)
	require.NoError(t, err)
	assert.Equal(t, models.TaxQuery{
		GrossIncome: 25000,
		Table:       "7100",
		IncomeType:  models.IncomeTypePension,
		Period:      models.PeriodTwoWeeks,
		Year:        2022,
	}, q)

	_, err = parseLookup("25000", "7100", "fortnight", "Pension", 2022)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestPayslipRejectsMalformedOverride(t *testing.T) {
	root := newRootCmd()
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"payslip", "65625", "abc"})

	err := root.Execute()

	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	assert.Contains(t, stderr.String(), `could not convert "abc" to a number`)
	assert.Contains(t, stderr.String(), "Exiting...")
}
