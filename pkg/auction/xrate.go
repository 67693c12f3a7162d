package auction

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExchangeRate states that tb1 is worth tb2: the two amounts are mutually
// convertible. Both legs must be strictly positive and on distinct tokens.
type ExchangeRate struct {
	tb1 TokenBalance
	tb2 TokenBalance
}

// NewExchangeRate builds a rate from two balances of different tokens.
func NewExchangeRate(tb1, tb2 TokenBalance) (ExchangeRate, error) {
	if tb1.Token == tb2.Token {
		return ExchangeRate{}, fmt.Errorf("%w: both legs on token <%s>", ErrInvalidRate, tb1.Token)
	}
	if !tb1.IsPositive() || !tb2.IsPositive() {
		return ExchangeRate{}, fmt.Errorf(
			"%w: amounts must be strictly positive, got %s / %s", ErrInvalidRate, tb1, tb2)
	}
	return ExchangeRate{tb1: tb1, tb2: tb2}, nil
}

// Tokens returns the two token identities referenced by the rate.
func (x ExchangeRate) Tokens() (Token, Token) {
	return x.tb1.Token, x.tb2.Token
}

// Has reports whether the rate references the given token.
func (x ExchangeRate) Has(t Token) bool {
	return x.tb1.Token == t || x.tb2.Token == t
}

// HasTokens reports whether the rate references exactly the given pair,
// in either order.
func (x ExchangeRate) HasTokens(a, b Token) bool {
	return (x.tb1.Token == a && x.tb2.Token == b) || (x.tb1.Token == b && x.tb2.Token == a)
}

// ConvertUnit returns the amount of the other token per one unit of t.
func (x ExchangeRate) ConvertUnit(t Token) (decimal.Decimal, error) {
	switch t {
	case x.tb1.Token:
		return x.tb2.Balance.DivRound(x.tb1.Balance, divPrec), nil
	case x.tb2.Token:
		return x.tb1.Balance.DivRound(x.tb2.Balance, divPrec), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: <%s> not referenced by rate %s", ErrUnknownToken, t, x)
	}
}

func (x ExchangeRate) String() string {
	return fmt.Sprintf("%s = %s", x.tb1, x.tb2)
}
