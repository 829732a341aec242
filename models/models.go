package models

// Config holds application configuration
type Config struct {
	TaxService            TaxServiceConfig
	Port                  string
	Environment           string
	CircuitBreakerEnabled bool
	CircuitBreaker        CircuitBreakerConfig
	Logging               LoggingConfig
	Payslip               PayslipConfig
}

// TaxServiceConfig points at the Skatteetaten tax table service
type TaxServiceConfig struct {
	BaseURL string
	Timeout int // Seconds; 0 disables the client timeout
}

// CircuitBreakerConfig holds the circuit breaker configuration parameters
type CircuitBreakerConfig struct {
	RequestThreshold int     // Minimum number of requests before the circuit can trip
	FailureRatio     float64 // Percentage (0.0-1.0) of failures required to trip the circuit
	Timeout          int     // Seconds before half-open state is tried after circuit opens
	MaxHalfOpenReqs  int     // Maximum requests allowed when circuit is half-open
}

// LoggingConfig holds configuration for application logging
type LoggingConfig struct {
	Enabled bool   // Whether logging is enabled
	Level   string // Log level (NONE, ERROR, WARN, INFO, DEBUG)
}

// PayslipConfig locates the persisted payslip settings
type PayslipConfig struct {
	SettingsFile string
}

// TaxServiceError represents an error body returned by the tax table service
type TaxServiceError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DeductionResponse is returned by the /deduction endpoint
type DeductionResponse struct {
	Income     int64      `json:"income"`
	Table      TaxTable   `json:"table"`
	IncomeType IncomeType `json:"incomeType"`
	Period     Period     `json:"period"`
	Year       int        `json:"year"`
	Deduction  int64      `json:"deduction"`
	NetIncome  int64      `json:"netIncome"`
}

// WholeTableResponse is returned by the /whole-table endpoint
type WholeTableResponse struct {
	Table         TaxTable         `json:"table"`
	IncomeType    IncomeType       `json:"incomeType"`
	Period        Period           `json:"period"`
	Year          int              `json:"year"`
	AllDeductions map[string]int64 `json:"allDeductions"`
}

// ErrorResponse carries a failure back to HTTP clients
type ErrorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}
