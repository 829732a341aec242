package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lewiuberg/nortax/apperror"
	"github.com/lewiuberg/nortax/services"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newPayslipCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "payslip [income] [commission] [reimbursements]",
		Short: "Calculate the payslip from the saved settings and optional overrides",
		Long: "Calculate net income after tax. Any amount given replaces the value saved in the " +
			"settings file and is saved for the next run. A comma may be used as decimal separator.",
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]string, 3)
			copy(inputs, args)

			ov, err := services.ParseOverrides(inputs[0], inputs[1], inputs[2])
			if err != nil {
				if errors.Is(err, apperror.ErrInvalidInput) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n\nExiting...\n", err)
				}
				return err
			}

			store := services.NewSettingsStore(cfg.Payslip.SettingsFile)
			accountant := services.NewAccountant(store, services.NewTaxService(cfg), cfg.Environment)

			result, err := accountant.Compute(cmd.Context(), ov)
			if err != nil {
				return err
			}

			record := result.Record()
			if asJSON {
				data, err := json.MarshalIndent(record, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(record.Lines(), "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the payslip as JSON")
	return cmd
}
