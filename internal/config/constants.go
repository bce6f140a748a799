package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "sheetpivot"
	AppVersion = "1.0.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultOperationTimeout = 90 * time.Second

	// File Paths (relative to the working directory)
	DefaultDataDir  = "data"
	DefaultLogsDir  = "logs"
	DefaultStoreDir = "data/store"

	// Store
	DefaultCollection = "tables"

	// Pipeline
	DefaultThreshold       = 0.7
	DefaultSentinel        = "no data"
	DefaultGrandTotalLabel = "Total General"

	// Workbook sheet names
	ValidatedSheetName = "Datos_Validados"
	PivotSheetName     = "Tabla_Dinamica"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
