package main

import (
	"net/http"

	"github.com/lewiuberg/nortax/handlers"
	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/metrics"
	"github.com/lewiuberg/nortax/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tax lookups and payslip over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("===> Application starting with environment: %v", cfg.Environment)
			logger.Debug("===> Loaded configuration: %+v", cfg)

			taxService := services.NewTaxService(cfg)
			accountant := services.NewAccountant(
				services.NewSettingsStore(cfg.Payslip.SettingsFile),
				taxService,
				cfg.Environment,
			)

			taxHandler := handlers.NewTaxHandler(taxService)
			payslipHandler := handlers.NewPayslipHandler(accountant)

			mux := http.NewServeMux()
			mux.HandleFunc("/deduction", taxHandler.HandleDeduction)
			mux.HandleFunc("/whole-table", taxHandler.HandleWholeTable)
			mux.HandleFunc("/payslip", payslipHandler.Handle)
			mux.Handle("/metrics", promhttp.Handler())

			handler := metrics.InstrumentMux(mux, cfg.Environment)

			logger.Info("Server started on port %s in %s environment", cfg.Port, cfg.Environment)
			logger.Info("Metrics available at http://localhost:%s/metrics", cfg.Port)

			return http.ListenAndServe(":"+cfg.Port, handler)
		},
	}
}
