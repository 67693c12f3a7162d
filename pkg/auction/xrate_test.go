package auction

import (
	"errors"
	"testing"
)

func TestNewExchangeRateValidation(t *testing.T) {
	tests := []struct {
		name string
		tb1  TokenBalance
		tb2  TokenBalance
	}{
		{
			name: "same token",
			tb1:  NewTokenBalance(dec("1"), usdc),
			tb2:  NewTokenBalance(dec("2"), usdc),
		},
		{
			name: "zero amount",
			tb1:  NewTokenBalance(dec("0"), usdc),
			tb2:  NewTokenBalance(dec("2"), dai),
		},
		{
			name: "negative amount",
			tb1:  NewTokenBalance(dec("1"), usdc),
			tb2:  NewTokenBalance(dec("-2"), dai),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewExchangeRate(tt.tb1, tt.tb2); !errors.Is(err, ErrInvalidRate) {
				t.Errorf("got %v, want ErrInvalidRate", err)
			}
		})
	}
}

func TestExchangeRateConvertUnit(t *testing.T) {
	// 100 USDC is worth 95 DAI
	x, err := NewExchangeRate(
		NewTokenBalance(dec("100"), usdc),
		NewTokenBalance(dec("95"), dai),
	)
	if err != nil {
		t.Fatalf("NewExchangeRate: %v", err)
	}

	perUSDC, err := x.ConvertUnit(usdc)
	if err != nil {
		t.Fatalf("ConvertUnit(usdc): %v", err)
	}
	if !perUSDC.Equal(dec("0.95")) {
		t.Errorf("DAI per USDC = %s, want 0.95", perUSDC)
	}

	perDAI, err := x.ConvertUnit(dai)
	if err != nil {
		t.Fatalf("ConvertUnit(dai): %v", err)
	}
	want := dec("100").DivRound(dec("95"), 50)
	if !perDAI.Equal(want) {
		t.Errorf("USDC per DAI = %s, want %s", perDAI, want)
	}

	if _, err := x.ConvertUnit(weth); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("ConvertUnit(weth): got %v, want ErrUnknownToken", err)
	}
}

func TestExchangeRateTokens(t *testing.T) {
	x, err := NewExchangeRate(
		NewTokenBalance(dec("1"), usdc),
		NewTokenBalance(dec("2"), dai),
	)
	if err != nil {
		t.Fatalf("NewExchangeRate: %v", err)
	}

	t1, t2 := x.Tokens()
	if t1 != usdc || t2 != dai {
		t.Errorf("Tokens = (%s, %s), want (%s, %s)", t1, t2, usdc, dai)
	}
	if !x.HasTokens(usdc, dai) || !x.HasTokens(dai, usdc) {
		t.Error("HasTokens must match the pair in either order")
	}
	if x.HasTokens(usdc, weth) {
		t.Error("HasTokens matched a foreign token")
	}
	if !x.Has(usdc) || x.Has(weth) {
		t.Error("Has membership check wrong")
	}
}
