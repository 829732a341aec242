package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lewiuberg/nortax/models"
	"github.com/lewiuberg/nortax/services"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newDeductionCmd() *cobra.Command {
	var (
		incomeType string
		year       int
	)

	cmd := &cobra.Command{
		Use:   "deduction <gross income> <table> [period]",
		Short: "Print the tax deduction for a gross income",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := string(models.PeriodMonthly)
			if len(args) > 2 {
				period = args[2]
			}

			q, err := parseLookup(args[0], args[1], period, incomeType, year)
			if err != nil {
				return err
			}

			deduction, err := services.NewTaxService(cfg).Deduction(cmd.Context(), q)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tax deduction: %s NOK\n", formatKroner(deduction))
			return nil
		},
	}
	cmd.Flags().StringVar(&incomeType, "income-type", string(models.IncomeTypePension), "income type (Wage or Pension)")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "tax year")
	return cmd
}

// parseLookup turns command line strings into a validated query.
func parseLookup(rawIncome, rawTable, rawPeriod, rawIncomeType string, year int) (models.TaxQuery, error) {
	var income int64
	if rawIncome != "" {
		amount, err := models.ParseAmount(rawIncome)
		if err != nil {
			return models.TaxQuery{}, err
		}
		income = amount.Floor().IntPart()
	}

	table, err := models.ParseTaxTable(rawTable)
	if err != nil {
		return models.TaxQuery{}, err
	}
	period, err := models.ParsePeriod(rawPeriod)
	if err != nil {
		return models.TaxQuery{}, err
	}
	incomeType, err := models.ParseIncomeType(rawIncomeType)
	if err != nil {
		return models.TaxQuery{}, err
	}

	return models.NewTaxQuery(income, table, incomeType, period, year)
}

// formatKroner groups thousands with spaces, e.g. 18 000.
func formatKroner(amount int64) string {
	p := message.NewPrinter(language.English)
	return strings.ReplaceAll(p.Sprintf("%d", amount), ",", " ")
}
