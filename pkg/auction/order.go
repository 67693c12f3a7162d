package auction

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderKind says which side of the order carries the hard amount bound.
type OrderKind string

const (
	KindSell OrderKind = "sell"
	KindBuy  OrderKind = "buy"
)

// OrderClass is the protocol classification of an order.
type OrderClass string

const (
	ClassMarket    OrderClass = "market"
	ClassLimit     OrderClass = "limit"
	ClassLiquidity OrderClass = "liquidity"
)

// MatchType classifies which side of a peer-to-peer match is fully filled.
type MatchType int

const (
	LhsFilled MatchType = iota
	RhsFilled
	BothFilled
)

func (m MatchType) String() string {
	switch m {
	case LhsFilled:
		return "LhsFilled"
	case RhsFilled:
		return "RhsFilled"
	case BothFilled:
		return "BothFilled"
	}
	return fmt.Sprintf("MatchType(%d)", int(m))
}

// Quote is a (sellAmount, buyAmount) reference pair used as the improvement
// baseline of a price-improvement fee.
type Quote struct {
	SellAmount decimal.Decimal
	BuyAmount  decimal.Decimal
}

// FeePolicy is a closed union of the fee policies that can apply to an order.
// The core carries policies as data; computing the fee owed is the solver's job.
type FeePolicy interface {
	feePolicy()
}

// VolumeFee charges a fraction of the order's executed volume.
type VolumeFee struct {
	Factor decimal.Decimal
}

// SurplusFee charges a fraction of the order's surplus, capped by a volume factor.
type SurplusFee struct {
	Factor          decimal.Decimal
	MaxVolumeFactor decimal.Decimal
}

// PriceImprovementFee charges a fraction of the improvement over a quote baseline.
type PriceImprovementFee struct {
	Factor          decimal.Decimal
	MaxVolumeFactor decimal.Decimal
	Quote           *Quote
}

func (VolumeFee) feePolicy()           {}
func (SurplusFee) feePolicy()          {}
func (PriceImprovementFee) feePolicy() {}

// Order is a limit order: a maximum buy amount, a maximum sell amount, and the
// limit exchange rate the two imply. Which amount acts as the hard ceiling is
// decided by Kind; the other bound follows from the limit rate. Execution
// state is attached by a successful Execute call.
type Order struct {
	ID                string
	BuyToken          Token
	SellToken         Token
	BuyAmount         decimal.Decimal
	SellAmount        decimal.Decimal
	Kind              OrderKind
	PartiallyFillable bool
	Class             OrderClass
	FeePolicies       []FeePolicy

	execBuy  *TokenBalance
	execSell *TokenBalance
}

// NewOrder validates the order terms and builds an unexecuted order.
func NewOrder(
	id string,
	buyToken, sellToken Token,
	buyAmount, sellAmount decimal.Decimal,
	kind OrderKind,
	partiallyFillable bool,
	class OrderClass,
	feePolicies []FeePolicy,
) (*Order, error) {
	if id == "" {
		return nil, &MissingFieldError{Field: "uid"}
	}
	if buyToken == sellToken {
		return nil, fmt.Errorf("order <%s>: %w", id, ErrEqualTokens)
	}
	if !buyAmount.IsPositive() || !sellAmount.IsPositive() {
		return nil, fmt.Errorf(
			"order <%s>: %w: buy %s and sell %s amounts must be positive",
			id, ErrInvalidAmount, buyAmount, sellAmount)
	}
	switch kind {
	case KindSell, KindBuy:
	default:
		return nil, fmt.Errorf("order <%s>: %w: unknown kind %q", id, ErrInvalidAmount, kind)
	}
	return &Order{
		ID:                id,
		BuyToken:          buyToken,
		SellToken:         sellToken,
		BuyAmount:         buyAmount,
		SellAmount:        sellAmount,
		Kind:              kind,
		PartiallyFillable: partiallyFillable,
		Class:             class,
		FeePolicies:       feePolicies,
	}, nil
}

// Tokens returns the order's buy and sell token.
func (o *Order) Tokens() (Token, Token) {
	return o.BuyToken, o.SellToken
}

// MaxLimit is the order's limit expressed as an exchange rate:
// SellAmount of SellToken is worth BuyAmount of BuyToken.
func (o *Order) MaxLimit() ExchangeRate {
	x, err := NewExchangeRate(
		NewTokenBalance(o.SellAmount, o.SellToken),
		NewTokenBalance(o.BuyAmount, o.BuyToken),
	)
	if err != nil {
		// Constructor guarantees positive amounts on distinct tokens.
		panic(fmt.Sprintf("auction: order <%s> limit rate: %v", o.ID, err))
	}
	return x
}

// MaxBuyAmount returns the hard buy ceiling. Only buy-kind orders have one.
func (o *Order) MaxBuyAmount() (TokenBalance, bool) {
	if o.Kind != KindBuy {
		return TokenBalance{}, false
	}
	return NewTokenBalance(o.BuyAmount, o.BuyToken), true
}

// MaxSellAmount returns the hard sell ceiling. Only sell-kind orders have one.
func (o *Order) MaxSellAmount() (TokenBalance, bool) {
	if o.Kind != KindSell {
		return TokenBalance{}, false
	}
	return NewTokenBalance(o.SellAmount, o.SellToken), true
}

// Overlaps reports whether this order can be matched against another: the
// token legs must be opposite, and this order's limit price must be at least
// as generous as what the other is willing to give. The comparison is
// cross-multiplied to avoid division. Mismatched legs are a normal case and
// return false without error.
func (o *Order) Overlaps(other *Order) bool {
	if o.BuyToken != other.SellToken || o.SellToken != other.BuyToken {
		return false
	}
	lhs := o.BuyAmount.Mul(other.BuyAmount)
	rhs := other.SellAmount.Mul(o.SellAmount)
	return lhs.LessThanOrEqual(rhs)
}

// MatchWith classifies which side's bound is binding for a peer-to-peer
// match. Defined only for overlapping orders; ok is false otherwise.
func (o *Order) MatchWith(other *Order) (MatchType, bool) {
	if !o.Overlaps(other) {
		return 0, false
	}
	if o.BuyAmount.LessThan(other.SellAmount) && o.SellAmount.LessThan(other.BuyAmount) {
		return LhsFilled, true
	}
	if o.BuyAmount.GreaterThan(other.SellAmount) && o.SellAmount.GreaterThan(other.BuyAmount) {
		return RhsFilled, true
	}
	return BothFilled, true
}

// IsExecutable reports whether a proposed market rate satisfies the order's
// limit. The rate may be worse than the limit by at most xrateTol per unit of
// buy token. The rate must reference exactly the order's token pair.
func (o *Order) IsExecutable(xrate ExchangeRate, xrateTol decimal.Decimal) (bool, error) {
	if !xrate.HasTokens(o.BuyToken, o.SellToken) {
		return false, fmt.Errorf(
			"%w: exchange rate %s vs. order tokens <%s> | <%s>",
			ErrTokenMismatch, xrate, o.BuyToken, o.SellToken)
	}
	if xrateTol.IsNegative() {
		panic(fmt.Sprintf("auction: negative xrate tolerance %s", xrateTol))
	}
	marketBuy, err := xrate.ConvertUnit(o.BuyToken)
	if err != nil {
		return false, err
	}
	limitBuy, err := o.MaxLimit().ConvertUnit(o.BuyToken)
	if err != nil {
		return false, err
	}
	bound := limitBuy.Mul(decimal.NewFromInt(1).Add(xrateTol))
	return marketBuy.LessThanOrEqual(bound), nil
}

// ExecPolicy configures Order.Execute. It is passed per call so that
// concurrent auction instances and tests can pick strict or lenient
// enforcement independently, without shared state.
type ExecPolicy struct {
	// AmountTol is the accepted violation of the buy/sell amount bounds and
	// the threshold below which a fill counts as dust.
	AmountTol decimal.Decimal
	// XRateTol is the accepted violation of the limit rate per unit of buy token.
	XRateTol decimal.Decimal
	// StrictSellCeiling raises ErrExecutionLimit on a sell-bound violation
	// instead of clamping with a logged error.
	StrictSellCeiling bool
	// StrictLimitPrice raises ErrLimitPrice on a realized-rate violation
	// instead of letting the fill through with a logged error.
	StrictLimitPrice bool
	// Log receives violation reports; nil disables logging.
	Log *zap.SugaredLogger
}

// DefaultExecPolicy mirrors production defaults: lenient sell ceiling,
// strict limit price.
func DefaultExecPolicy() ExecPolicy {
	return ExecPolicy{
		AmountTol:        decimal.New(1, -8),
		XRateTol:         decimal.New(1, -6),
		StrictLimitPrice: true,
	}
}

func (p ExecPolicy) log() *zap.SugaredLogger {
	if p.Log == nil {
		return zap.NewNop().Sugar()
	}
	return p.Log
}

// Execute validates a proposed fill and commits it as the order's execution
// state. Amounts within AmountTol below zero are tolerated as rounding noise;
// anything further negative, or a negative token price, is a caller contract
// violation and panics. Calling Execute again replaces the prior fill.
func (o *Order) Execute(buyAmountValue, sellAmountValue decimal.Decimal, buyTokenPrice, sellTokenPrice decimal.Decimal, pol ExecPolicy) error {
	tol := pol.AmountTol
	if tol.IsNegative() {
		panic(fmt.Sprintf("auction: negative amount tolerance %s", tol))
	}
	if buyAmountValue.LessThan(tol.Neg()) || sellAmountValue.LessThan(tol.Neg()) {
		panic(fmt.Sprintf(
			"auction: order <%s>: negative execution amounts buy=%s sell=%s",
			o.ID, buyAmountValue, sellAmountValue))
	}
	if buyTokenPrice.IsNegative() || sellTokenPrice.IsNegative() {
		panic(fmt.Sprintf(
			"auction: order <%s>: negative token prices buy=%s sell=%s",
			o.ID, buyTokenPrice, sellTokenPrice))
	}

	one := decimal.NewFromInt(1)
	buyAmount := NewTokenBalance(buyAmountValue, o.BuyToken)
	sellAmount := NewTokenBalance(sellAmountValue, o.SellToken)

	// Buy ceiling: exceeding it beyond both the relative and the absolute
	// tolerance rejects the fill; otherwise the amount is clamped down so an
	// execution never reports more than the order's max.
	if xmax, ok := o.MaxBuyAmount(); ok {
		overRel := buyAmount.Balance.GreaterThan(xmax.Balance.Mul(one.Add(tol)))
		overAbs := buyAmount.Balance.GreaterThan(xmax.Balance.Add(tol))
		if overRel && overAbs {
			return fmt.Errorf(
				"%w: order <%s>: buy amount (exec): %s buy amount (max): %s",
				ErrExecutionLimit, o.ID, buyAmount.Balance, xmax.Balance)
		}
		buyAmount, _ = buyAmount.Min(xmax)
	}

	// Sell ceiling: same check, but enforcement is a deployment choice.
	if ymax, ok := o.MaxSellAmount(); ok {
		overRel := sellAmount.Balance.GreaterThan(ymax.Balance.Mul(one.Add(tol)))
		overAbs := sellAmount.Balance.GreaterThan(ymax.Balance.Add(tol))
		if overRel && overAbs {
			pol.log().Errorw("sell_amount_exceeds_limit",
				"order", o.ID,
				"sell_exec", sellAmount.Balance.String(),
				"sell_max", ymax.Balance.String())
			if pol.StrictSellCeiling {
				return fmt.Errorf(
					"%w: order <%s>: sell amount (exec): %s sell amount (max): %s",
					ErrExecutionLimit, o.ID, sellAmount.Balance, ymax.Balance)
			}
		}
		sellAmount, _ = sellAmount.Min(ymax)
	}

	// Dust rule: a fill must be meaningfully two-sided or not happen at all.
	if buyAmount.Balance.LessThanOrEqual(tol) || sellAmount.Balance.LessThanOrEqual(tol) {
		buyAmount = NewTokenBalance(decimal.Zero, o.BuyToken)
		sellAmount = NewTokenBalance(decimal.Zero, o.SellToken)
	}

	if buyAmount.IsPositive() {
		if !sellAmount.IsPositive() {
			panic(fmt.Sprintf(
				"auction: order <%s>: positive buy %s against non-positive sell %s",
				o.ID, buyAmount, sellAmount))
		}
		xrate, err := NewExchangeRate(buyAmount, sellAmount)
		if err != nil {
			return err
		}
		ok, err := o.IsExecutable(xrate, pol.XRateTol)
		if err != nil {
			return err
		}
		if !ok {
			pol.log().Errorw("limit_price_violated",
				"order", o.ID,
				"buy_exec", buyAmount.Balance.String(),
				"sell_exec", sellAmount.Balance.String(),
				"xrate", xrate.String(),
				"limit", o.MaxLimit().String())
			if pol.StrictLimitPrice {
				return fmt.Errorf(
					"%w: order <%s>: xrate (exec): %s limit (max): %s",
					ErrLimitPrice, o.ID, xrate, o.MaxLimit())
			}
		}
	}

	o.execBuy = &buyAmount
	o.execSell = &sellAmount
	return nil
}

// ExecBuyAmount returns the committed buy amount of an executed order.
func (o *Order) ExecBuyAmount() (TokenBalance, bool) {
	if o.execBuy == nil {
		return TokenBalance{}, false
	}
	return *o.execBuy, true
}

// ExecSellAmount returns the committed sell amount of an executed order.
func (o *Order) ExecSellAmount() (TokenBalance, bool) {
	if o.execSell == nil {
		return TokenBalance{}, false
	}
	return *o.execSell, true
}

// IsExecuted reports whether the order carries committed execution state.
func (o *Order) IsExecuted() bool {
	return o.execBuy != nil && o.execSell != nil
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(%s: sell %s %s for >= %s %s, %s)",
		o.ID, o.SellAmount, o.SellToken, o.BuyAmount, o.BuyToken, o.Kind)
}
