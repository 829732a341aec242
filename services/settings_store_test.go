package services

import (
	"errors"
	"testing"

	"github.com/lewiuberg/nortax/apperror"
	"github.com/lewiuberg/nortax/models"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsStoreCreatesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := NewSettingsStoreWithFs(fsys, "config/income_details.json")

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, models.TaxTable("7100"), settings.Tax.Table)
	assert.Equal(t, models.PeriodMonthly, settings.Tax.Period)
	assert.True(t, settings.Tax.Percentage.Equal(decimal.NewFromInt(40)))
	assert.True(t, settings.Salary.Income.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, models.IncomeTypeWage, settings.Salary.IncomeType)

	exists, err := afero.Exists(fsys, "config/income_details.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSettingsStoreWritesStringLeaves(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := NewSettingsStoreWithFs(fsys, "income_details.json")
	require.NoError(t, store.Save(models.DefaultPayslipSettings()))

	data, err := afero.ReadFile(fsys, "income_details.json")
	require.NoError(t, err)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)
	assert.Equal(t, "40", raw["tax"]["percentage"])
	assert.Equal(t, "50000", raw["salary"]["income"])
	assert.Equal(t, "0", raw["benefits"]["personnel_insurance"])
}

func TestSettingsStoreSaveReplacesInPlace(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := NewSettingsStoreWithFs(fsys, "config/income_details.json")
	require.NoError(t, store.Save(models.DefaultPayslipSettings()))

	next := models.DefaultPayslipSettings()
	next.Salary.Income = decimal.NewFromInt(61000)
	require.NoError(t, store.Save(next))

	entries, err := afero.ReadDir(fsys, "config")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "income_details.json", entries[0].Name())
	assert.Equal(t, "-rw-r--r--", entries[0].Mode().Perm().String())

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.Salary.Income.Equal(decimal.NewFromInt(61000)))
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	store := NewSettingsStoreWithFs(afero.NewMemMapFs(), "income_details.json")

	want := models.DefaultPayslipSettings()
	want.Tax.Table = "7107"
	want.Tax.Period = models.PeriodTwoWeeks
	want.Benefits.ElectronicCommunication = decimal.RequireFromString("366.67")
	want.Salary.Commission = decimal.RequireFromString("1234.5")
	want.Salary.IncomeType = models.IncomeTypePension

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, want.Tax.Table, got.Tax.Table)
	assert.Equal(t, want.Tax.Period, got.Tax.Period)
	assert.Equal(t, want.Salary.IncomeType, got.Salary.IncomeType)
	assert.True(t, want.Benefits.ElectronicCommunication.Equal(got.Benefits.ElectronicCommunication))
	assert.True(t, want.Salary.Commission.Equal(got.Salary.Commission))
	assert.True(t, want.Salary.Income.Equal(got.Salary.Income))
}

func TestSettingsStoreReadsLegacyFloatStrings(t *testing.T) {
	fsys := afero.NewMemMapFs()
	legacy := `{
  "tax": {"table": "7107", "percentage": "40.0", "period": "Monthly"},
  "benefits": {"electronic_communication": "0.0", "personnel_insurance": "0.0"},
  "salary": {"income": "65625.0", "commission": "0.0", "reimbursements": "0.0", "type": "Wage"}
}`
	require.NoError(t, afero.WriteFile(fsys, "income_details.json", []byte(legacy), 0o644))

	settings, err := NewSettingsStoreWithFs(fsys, "income_details.json").Load()

	require.NoError(t, err)
	assert.True(t, settings.Salary.Income.Equal(decimal.NewFromInt(65625)))
}

func TestSettingsStoreMalformedFile(t *testing.T) {
	for name, content := range map[string]string{
		"not JSON":      `{"tax": `,
		"unknown table": `{"tax":{"table":"1234","percentage":"40","period":"Monthly"}}`,
		"missing table": `{"salary":{"income":"1000","type":"Wage"}}`,
		"bad amount":    `{"tax":{"table":"7100","percentage":"forty","period":"Monthly"}}`,
		"missing income": `{"tax":{"table":"7100","percentage":"40","period":"Monthly"},` +
			`"benefits":{"electronic_communication":"0","personnel_insurance":"0"},` +
			`"salary":{"commission":"0","reimbursements":"0","type":"Wage"}}`,
		"missing percentage": `{"tax":{"table":"7100","period":"Monthly"},` +
			`"benefits":{"electronic_communication":"0","personnel_insurance":"0"},` +
			`"salary":{"income":"50000","commission":"0","reimbursements":"0","type":"Wage"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "income_details.json", []byte(content), 0o644))

			_, err := NewSettingsStoreWithFs(fsys, "income_details.json").Load()

			assert.True(t, errors.Is(err, apperror.ErrSettingsFile), "got %v", err)

			data, readErr := afero.ReadFile(fsys, "income_details.json")
			require.NoError(t, readErr)
			assert.Equal(t, content, string(data), "a malformed file must not be replaced")
		})
	}
}
