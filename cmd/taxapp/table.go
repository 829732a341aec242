package main

import (
	"fmt"
	"time"

	"github.com/lewiuberg/nortax/models"
	"github.com/lewiuberg/nortax/services"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newTableCmd() *cobra.Command {
	var (
		incomeType string
		year       int
	)

	cmd := &cobra.Command{
		Use:   "table <table> [period]",
		Short: "Print every deduction bracket of a tax table",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := string(models.PeriodMonthly)
			if len(args) > 1 {
				period = args[1]
			}

			q, err := parseLookup("", args[0], period, incomeType, year)
			if err != nil {
				return err
			}

			table, err := services.NewTaxService(cfg).WholeTable(cmd.Context(), q)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(table, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&incomeType, "income-type", string(models.IncomeTypeWage), "income type (Wage or Pension)")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "tax year")
	return cmd
}
