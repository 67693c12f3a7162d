package params

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.API.Addr != ":8000" {
		t.Errorf("addr = %q", cfg.API.Addr)
	}
	if cfg.Solver.StrictSellCeiling {
		t.Error("sell ceiling strict by default")
	}
	if !cfg.Solver.StrictLimitPrice {
		t.Error("limit price lenient by default")
	}
	if !cfg.Solver.AmountTol.Equal(decimal.New(1, -8)) {
		t.Errorf("amount tol = %s", cfg.Solver.AmountTol)
	}
	if !cfg.Solver.XRateTol.Equal(decimal.New(1, -6)) {
		t.Errorf("xrate tol = %s", cfg.Solver.XRateTol)
	}
	if cfg.Archive.Enabled {
		t.Error("archive enabled by default")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("STRICT_SELL_CEILING", "true")
	t.Setenv("STRICT_LIMIT_PRICE", "false")
	t.Setenv("AMOUNT_TOL", "0.001")
	t.Setenv("ARCHIVE_ENABLED", "true")
	t.Setenv("ARCHIVE_PATH", "/tmp/arch")

	cfg := LoadFromEnv("")
	if cfg.API.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.API.Addr)
	}
	if len(cfg.API.AllowedOrigins) != 2 || cfg.API.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("origins = %v", cfg.API.AllowedOrigins)
	}
	if !cfg.Solver.StrictSellCeiling {
		t.Error("STRICT_SELL_CEILING not applied")
	}
	if cfg.Solver.StrictLimitPrice {
		t.Error("STRICT_LIMIT_PRICE not applied")
	}
	if !cfg.Solver.AmountTol.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("amount tol = %s", cfg.Solver.AmountTol)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Path != "/tmp/arch" {
		t.Errorf("archive = %+v", cfg.Archive)
	}
}

func TestLoadFromEnvRejectsNegativeTolerance(t *testing.T) {
	t.Setenv("AMOUNT_TOL", "-1")
	t.Setenv("XRATE_TOL", "bogus")
	cfg := LoadFromEnv("")
	if !cfg.Solver.AmountTol.Equal(decimal.New(1, -8)) {
		t.Errorf("negative tolerance accepted: %s", cfg.Solver.AmountTol)
	}
	if !cfg.Solver.XRateTol.Equal(decimal.New(1, -6)) {
		t.Errorf("unparsable tolerance accepted: %s", cfg.Solver.XRateTol)
	}
}
