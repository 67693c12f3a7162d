package auction

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// divPrec is the number of decimal digits kept when dividing amounts.
// Token amounts arrive at wei scale (up to ~1e27), so the default shopspring
// precision of 16 digits is not enough to resolve rate tolerances of 1e-6.
const divPrec = 50

// Token is an opaque, totally-ordered token identity. Hex addresses are
// normalized to their EIP-55 checksummed form so that casing differences in
// the input collapse to one identity; anything else is lowercased as-is.
type Token string

// NewToken normalizes a raw token identifier.
func NewToken(s string) Token {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return Token(common.HexToAddress(s).Hex())
	}
	return Token(strings.ToLower(s))
}

func (t Token) String() string { return string(t) }

// TokenInfo carries the auction-supplied static data for one token.
type TokenInfo struct {
	Token            Token
	Decimals         int32
	Symbol           string
	ReferencePrice   decimal.Decimal
	AvailableBalance decimal.Decimal
	Trusted          bool
}

// TokenBalance is an amount tagged with the token it is denominated in.
// All arithmetic between two balances requires identical tokens; crossing
// tokens returns ErrTokenMismatch rather than comparing raw magnitudes.
// Values are immutable; operations return new balances.
type TokenBalance struct {
	Balance decimal.Decimal
	Token   Token
}

// NewTokenBalance builds a balance from an exact decimal amount.
func NewTokenBalance(amount decimal.Decimal, token Token) TokenBalance {
	return TokenBalance{Balance: amount, Token: token}
}

// ParseTokenBalance builds a balance from a decimal string, rejecting
// non-numeric input.
func ParseTokenBalance(amount string, token Token) (TokenBalance, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return TokenBalance{}, fmt.Errorf("%w: %q for token <%s>", ErrInvalidAmount, amount, token)
	}
	return TokenBalance{Balance: d, Token: token}, nil
}

func (tb TokenBalance) sameToken(other TokenBalance, op string) error {
	if tb.Token != other.Token {
		return fmt.Errorf("%w: %s of <%s> and <%s>", ErrTokenMismatch, op, tb.Token, other.Token)
	}
	return nil
}

// Add returns tb + other. Both balances must reference the same token.
func (tb TokenBalance) Add(other TokenBalance) (TokenBalance, error) {
	if err := tb.sameToken(other, "addition"); err != nil {
		return TokenBalance{}, err
	}
	return TokenBalance{Balance: tb.Balance.Add(other.Balance), Token: tb.Token}, nil
}

// Sub returns tb - other. Both balances must reference the same token.
func (tb TokenBalance) Sub(other TokenBalance) (TokenBalance, error) {
	if err := tb.sameToken(other, "subtraction"); err != nil {
		return TokenBalance{}, err
	}
	return TokenBalance{Balance: tb.Balance.Sub(other.Balance), Token: tb.Token}, nil
}

// Cmp compares two same-token balances: -1 if tb < other, 0 if equal, +1 if greater.
func (tb TokenBalance) Cmp(other TokenBalance) (int, error) {
	if err := tb.sameToken(other, "comparison"); err != nil {
		return 0, err
	}
	return tb.Balance.Cmp(other.Balance), nil
}

// Equal reports whether two balances carry the same token and amount.
func (tb TokenBalance) Equal(other TokenBalance) bool {
	return tb.Token == other.Token && tb.Balance.Equal(other.Balance)
}

// Mul scales the balance by a non-negative scalar, preserving the token tag.
// A negative scalar is a programming error: tolerance arithmetic never scales
// downward through zero.
func (tb TokenBalance) Mul(scalar decimal.Decimal) TokenBalance {
	if scalar.IsNegative() {
		panic(fmt.Sprintf("auction: negative scalar %s in TokenBalance.Mul", scalar))
	}
	return TokenBalance{Balance: tb.Balance.Mul(scalar), Token: tb.Token}
}

// Div scales the balance by a positive scalar, preserving the token tag.
func (tb TokenBalance) Div(scalar decimal.Decimal) TokenBalance {
	if !scalar.IsPositive() {
		panic(fmt.Sprintf("auction: non-positive scalar %s in TokenBalance.Div", scalar))
	}
	return TokenBalance{Balance: tb.Balance.DivRound(scalar, divPrec), Token: tb.Token}
}

// Min returns the smaller of two same-token balances.
func (tb TokenBalance) Min(other TokenBalance) (TokenBalance, error) {
	cmp, err := tb.Cmp(other)
	if err != nil {
		return TokenBalance{}, err
	}
	if cmp <= 0 {
		return tb, nil
	}
	return other, nil
}

// Max returns the larger of two same-token balances.
func (tb TokenBalance) Max(other TokenBalance) (TokenBalance, error) {
	cmp, err := tb.Cmp(other)
	if err != nil {
		return TokenBalance{}, err
	}
	if cmp >= 0 {
		return tb, nil
	}
	return other, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (tb TokenBalance) IsPositive() bool { return tb.Balance.IsPositive() }

// IsZero reports whether the amount is exactly zero.
func (tb TokenBalance) IsZero() bool { return tb.Balance.IsZero() }

func (tb TokenBalance) String() string {
	return fmt.Sprintf("%s %s", tb.Balance, tb.Token)
}
