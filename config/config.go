package config

import (
	"log"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/models"

	"github.com/spf13/viper"
)

// DefaultTaxServiceURL is the Skatteetaten withholding table endpoint
const DefaultTaxServiceURL = "https://tabellkort.app.skatteetaten.no/skattetrekk"

// Load loads application configuration from YAML files and NORTAX_* environment variables
func Load(env ...string) models.Config {
	environment := "dev"
	if len(env) > 0 && env[0] != "" {
		environment = env[0]
	}

	// Config files live next to this source file
	_, currentFilePath, _, _ := runtime.Caller(0)
	configDir := filepath.Dir(currentFilePath)

	v := viper.New()

	v.SetConfigName("config")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("NORTAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("taxService.baseUrl", DefaultTaxServiceURL)
	v.SetDefault("taxService.timeout", 0) // Default: wait for the service indefinitely
	v.SetDefault("port", "8080")
	v.SetDefault("circuitBreakerEnabled", true)
	v.SetDefault("circuitBreaker.requestThreshold", 5)
	v.SetDefault("circuitBreaker.failureRatio", 0.5)
	v.SetDefault("circuitBreaker.timeout", 60)
	v.SetDefault("circuitBreaker.maxHalfOpenReqs", 100)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("payslip.settingsFile", "income_details.json")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	if environment != "dev" {
		v.SetConfigName("config." + environment)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("Warning: Could not read environment config for '%s': %v", environment, err)
		}
	}

	config := models.Config{
		TaxService: models.TaxServiceConfig{
			BaseURL: v.GetString("taxService.baseUrl"),
			Timeout: v.GetInt("taxService.timeout"),
		},
		Port:                  v.GetString("port"),
		Environment:           environment,
		CircuitBreakerEnabled: v.GetBool("circuitBreakerEnabled"),
		CircuitBreaker: models.CircuitBreakerConfig{
			RequestThreshold: v.GetInt("circuitBreaker.requestThreshold"),
			FailureRatio:     v.GetFloat64("circuitBreaker.failureRatio"),
			Timeout:          v.GetInt("circuitBreaker.timeout"),
			MaxHalfOpenReqs:  v.GetInt("circuitBreaker.maxHalfOpenReqs"),
		},
		Logging: models.LoggingConfig{
			Enabled: v.GetBool("logging.enabled"),
			Level:   v.GetString("logging.level"),
		},
		Payslip: models.PayslipConfig{
			SettingsFile: v.GetString("payslip.settingsFile"),
		},
	}

	logger.Configure(logger.Config{
		Enabled: config.Logging.Enabled,
		Level:   logger.LevelFromString(config.Logging.Level),
		Output:  nil,
	})

	logger.Debug("Configuration loaded for environment '%s': TaxServiceURL=%s, Timeout=%ds, Port=%s, CircuitBreakerEnabled=%v, SettingsFile=%s",
		environment, config.TaxService.BaseURL, config.TaxService.Timeout, config.Port,
		config.CircuitBreakerEnabled, config.Payslip.SettingsFile)
	logger.Debug("Circuit Breaker Config: RequestThreshold=%d, FailureRatio=%.2f, Timeout=%ds, MaxHalfOpenReqs=%d",
		config.CircuitBreaker.RequestThreshold, config.CircuitBreaker.FailureRatio,
		config.CircuitBreaker.Timeout, config.CircuitBreaker.MaxHalfOpenReqs)

	return config
}
