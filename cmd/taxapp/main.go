package main

import (
	"fmt"
	"os"

	"github.com/lewiuberg/nortax/config"
	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/models"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cfg is populated before any subcommand runs
var cfg models.Config

func newRootCmd() *cobra.Command {
	var env string

	root := &cobra.Command{
		Use:           "taxapp",
		Short:         "Norwegian withholding tax lookups and payslip breakdowns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			cfg = config.Load(env)
		},
	}
	root.PersistentFlags().StringVar(&env, "env", "dev", "configuration environment (selects config.<env>.yaml)")

	root.AddCommand(
		newPayslipCmd(),
		newDeductionCmd(),
		newTableCmd(),
		newServeCmd(),
	)
	return root
}

func main() {
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
