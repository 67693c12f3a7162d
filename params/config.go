package params

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type API struct {
	Addr           string
	AllowedOrigins []string
}

type Solver struct {
	// StrictSellCeiling rejects fills whose sell amount exceeds the order's
	// ceiling beyond tolerance instead of clamping them with a logged error.
	StrictSellCeiling bool
	// StrictLimitPrice rejects fills whose realized rate violates the
	// order's limit beyond tolerance. Disable only where small numerical
	// drift from upstream search is acceptable.
	StrictLimitPrice bool
	// AmountTol is the accepted violation of the amount bounds and the
	// dust threshold.
	AmountTol decimal.Decimal
	// XRateTol is the accepted limit-rate violation per unit of buy token.
	XRateTol decimal.Decimal
}

type Archive struct {
	// Enabled persists every received instance and produced solution.
	Enabled bool
	Path    string
}

type Config struct {
	API     API
	Solver  Solver
	Archive Archive
	LogFile string
}

func Default() Config {
	return Config{
		API: API{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
		},
		Solver: Solver{
			StrictSellCeiling: false,
			StrictLimitPrice:  true,
			AmountTol:         decimal.New(1, -8),
			XRateTol:          decimal.New(1, -6),
		},
		Archive: Archive{
			Enabled: false,
			Path:    "data/archive",
		},
		LogFile: "data/solver.log",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if addr := os.Getenv("API_ADDR"); addr != "" {
		cfg.API.Addr = addr
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.API.AllowedOrigins = strings.Split(origins, ",")
	}

	if v := os.Getenv("STRICT_SELL_CEILING"); v != "" {
		cfg.Solver.StrictSellCeiling = v == "true"
	}
	if v := os.Getenv("STRICT_LIMIT_PRICE"); v != "" {
		cfg.Solver.StrictLimitPrice = v == "true"
	}
	if v := os.Getenv("AMOUNT_TOL"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			cfg.Solver.AmountTol = d
		}
	}
	if v := os.Getenv("XRATE_TOL"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			cfg.Solver.XRateTol = d
		}
	}

	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = v == "true"
	}
	if path := os.Getenv("ARCHIVE_PATH"); path != "" {
		cfg.Archive.Path = path
	}
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}

	return cfg
}
