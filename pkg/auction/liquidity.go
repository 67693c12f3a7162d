package auction

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// LiquiditySource is the quote contract the core requires from any liquidity
// pool. Implementations must make AmountOut monotonically non-decreasing in
// the input amount and must never create value: repeated round trips through
// the same pool cannot increase a token balance.
type LiquiditySource interface {
	// PoolID is the stable identifier of the pool within one auction.
	PoolID() string
	// Tokens returns the tokens held by the pool, sorted.
	Tokens() []Token
	// AmountOut quotes the amount received for swapping in the given balance.
	// It fails with ErrUnknownToken if the pool does not hold in.Token and
	// with ErrInvalidAmount for a non-positive input.
	AmountOut(in TokenBalance) (TokenBalance, error)
}

// ConstantProductPool is a UniswapV2-style two-token pool quoting along the
// x*y=k curve with a proportional fee on the input amount.
type ConstantProductPool struct {
	id          string
	address     string
	fee         decimal.Decimal
	gasEstimate decimal.Decimal
	reserves    map[Token]decimal.Decimal
	tokens      []Token
}

// NewConstantProductPool builds a pool from exactly two positive reserves.
// The fee is a fraction in [0, 1).
func NewConstantProductPool(
	id, address string,
	fee decimal.Decimal,
	reserves map[Token]decimal.Decimal,
	gasEstimate decimal.Decimal,
) (*ConstantProductPool, error) {
	if id == "" {
		return nil, &MissingFieldError{Field: "id"}
	}
	if len(reserves) != 2 {
		return nil, fmt.Errorf(
			"pool <%s>: %w: constant-product pool needs exactly 2 tokens, got %d",
			id, ErrInvalidAmount, len(reserves))
	}
	if fee.IsNegative() || fee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("pool <%s>: %w: fee %s outside [0,1)", id, ErrInvalidAmount, fee)
	}
	tokens := make([]Token, 0, 2)
	balances := make(map[Token]decimal.Decimal, 2)
	for t, b := range reserves {
		if !b.IsPositive() {
			return nil, fmt.Errorf(
				"pool <%s>: %w: reserve %s of token <%s> must be positive",
				id, ErrInvalidAmount, b, t)
		}
		tokens = append(tokens, t)
		balances[t] = b
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return &ConstantProductPool{
		id:          id,
		address:     address,
		fee:         fee,
		gasEstimate: gasEstimate,
		reserves:    balances,
		tokens:      tokens,
	}, nil
}

func (p *ConstantProductPool) PoolID() string { return p.id }

// Address is the on-chain address of the pool.
func (p *ConstantProductPool) Address() string { return p.address }

// Fee is the proportional input fee of the pool.
func (p *ConstantProductPool) Fee() decimal.Decimal { return p.fee }

// GasEstimate approximates the gas units needed to use the pool on-chain.
func (p *ConstantProductPool) GasEstimate() decimal.Decimal { return p.gasEstimate }

func (p *ConstantProductPool) Tokens() []Token {
	out := make([]Token, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// Reserve returns the pool's balance of the given token.
func (p *ConstantProductPool) Reserve(t Token) (decimal.Decimal, error) {
	b, ok := p.reserves[t]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("pool <%s>: %w: <%s>", p.id, ErrUnknownToken, t)
	}
	return b, nil
}

// Other returns the counterpart token of t within the pair.
func (p *ConstantProductPool) Other(t Token) (Token, error) {
	switch t {
	case p.tokens[0]:
		return p.tokens[1], nil
	case p.tokens[1]:
		return p.tokens[0], nil
	default:
		return "", fmt.Errorf("pool <%s>: %w: <%s>", p.id, ErrUnknownToken, t)
	}
}

// AmountOut quotes out = Y * in' / (X + in') with in' = in * (1 - fee).
// The output approaches but never reaches the counterpart reserve, so the
// pool can always supply the quote.
func (p *ConstantProductPool) AmountOut(in TokenBalance) (TokenBalance, error) {
	if !in.IsPositive() {
		return TokenBalance{}, fmt.Errorf(
			"pool <%s>: %w: input amount %s must be positive", p.id, ErrInvalidAmount, in.Balance)
	}
	outToken, err := p.Other(in.Token)
	if err != nil {
		return TokenBalance{}, err
	}
	x := p.reserves[in.Token]
	y := p.reserves[outToken]
	inEff := in.Balance.Mul(decimal.NewFromInt(1).Sub(p.fee))
	out := y.Mul(inEff).DivRound(x.Add(inEff), divPrec)
	return NewTokenBalance(out, outToken), nil
}

// SpotRate is the marginal exchange rate of the pool at its current reserves.
func (p *ConstantProductPool) SpotRate() (ExchangeRate, error) {
	return NewExchangeRate(
		NewTokenBalance(p.reserves[p.tokens[0]], p.tokens[0]),
		NewTokenBalance(p.reserves[p.tokens[1]], p.tokens[1]),
	)
}

func (p *ConstantProductPool) String() string {
	return fmt.Sprintf("ConstantProductPool(%s: %s %s / %s %s, fee %s)",
		p.id,
		p.reserves[p.tokens[0]], p.tokens[0],
		p.reserves[p.tokens[1]], p.tokens[1],
		p.fee)
}

var _ LiquiditySource = (*ConstantProductPool)(nil)
