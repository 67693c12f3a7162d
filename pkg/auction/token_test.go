package auction

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

var (
	usdc = NewToken("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	dai  = NewToken("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	weth = NewToken("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewTokenNormalization(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{
			name: "hex address casing collapses",
			a:    "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			b:    "0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48",
			same: true,
		},
		{
			name: "surrounding whitespace is trimmed",
			a:    " 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48 ",
			b:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			same: true,
		},
		{
			name: "non-address identifiers are lowercased",
			a:    "USDC",
			b:    "usdc",
			same: true,
		},
		{
			name: "different addresses stay distinct",
			a:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			b:    "0x6B175474E89094C44Da98b954EedeAC495271d0F",
			same: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewToken(tt.a) == NewToken(tt.b); got != tt.same {
				t.Errorf("NewToken(%q) == NewToken(%q): got %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestParseTokenBalance(t *testing.T) {
	tb, err := ParseTokenBalance("123.456", usdc)
	if err != nil {
		t.Fatalf("ParseTokenBalance: %v", err)
	}
	if !tb.Balance.Equal(dec("123.456")) || tb.Token != usdc {
		t.Errorf("got %s, want 123.456 %s", tb, usdc)
	}

	for _, bad := range []string{"", "abc", "1.2.3", "NaN"} {
		if _, err := ParseTokenBalance(bad, usdc); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseTokenBalance(%q): got %v, want ErrInvalidAmount", bad, err)
		}
	}
}

func TestTokenBalanceArithmetic(t *testing.T) {
	a := NewTokenBalance(dec("100.5"), usdc)
	b := NewTokenBalance(dec("0.25"), usdc)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// a + b - b == a, exact decimal arithmetic
	back, err := sum.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if !back.Equal(a) {
		t.Errorf("a+b-b = %s, want %s", back, a)
	}

	cmp, err := a.Cmp(b)
	if err != nil || cmp != 1 {
		t.Errorf("Cmp = (%d, %v), want (1, nil)", cmp, err)
	}

	lo, err := a.Min(b)
	if err != nil || !lo.Equal(b) {
		t.Errorf("Min = (%s, %v), want %s", lo, err, b)
	}
	hi, err := a.Max(b)
	if err != nil || !hi.Equal(a) {
		t.Errorf("Max = (%s, %v), want %s", hi, err, a)
	}
}

func TestTokenBalanceMismatch(t *testing.T) {
	a := NewTokenBalance(dec("1"), usdc)
	b := NewTokenBalance(dec("1"), dai)

	t.Run("add", func(t *testing.T) {
		if _, err := a.Add(b); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("got %v, want ErrTokenMismatch", err)
		}
	})
	t.Run("sub", func(t *testing.T) {
		if _, err := a.Sub(b); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("got %v, want ErrTokenMismatch", err)
		}
	})
	t.Run("cmp", func(t *testing.T) {
		if _, err := a.Cmp(b); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("got %v, want ErrTokenMismatch", err)
		}
	})
	t.Run("min", func(t *testing.T) {
		if _, err := a.Min(b); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("got %v, want ErrTokenMismatch", err)
		}
	})
	t.Run("max", func(t *testing.T) {
		if _, err := a.Max(b); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("got %v, want ErrTokenMismatch", err)
		}
	})
}

func TestTokenBalanceScaling(t *testing.T) {
	a := NewTokenBalance(dec("100"), usdc)

	scaled := a.Mul(dec("1.5"))
	if !scaled.Balance.Equal(dec("150")) || scaled.Token != usdc {
		t.Errorf("Mul = %s, want 150 %s", scaled, usdc)
	}
	halved := a.Div(dec("2"))
	if !halved.Balance.Equal(dec("50")) {
		t.Errorf("Div = %s, want 50", halved)
	}
	// Operands are untouched
	if !a.Balance.Equal(dec("100")) {
		t.Errorf("operand mutated: %s", a)
	}
}

func TestTokenBalanceNegativeScalarPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Mul with negative scalar did not panic")
		}
	}()
	NewTokenBalance(dec("1"), usdc).Mul(dec("-1"))
}
