package auction

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minjcho/cowlick/pkg/schema"
)

const defaultName = "batch_auction"

// Drivers send deadlines with fractional seconds and a numeric zone offset,
// which is not exactly RFC 3339.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999-0700",
	"2006-01-02T15:04:05.999999Z0700",
}

// BatchAuction owns the tokens, orders and liquidity sources of one auction
// round. It is built once per request, mutated only through order execution
// by a single solving pass, and discarded with the response.
type BatchAuction struct {
	ID   string
	Name string

	tokens map[Token]TokenInfo
	sorted []Token
	orders map[string]*Order
	pools  map[string]LiquiditySource

	EffectiveGasPrice decimal.Decimal
	Deadline          time.Time
}

// NewBatchAuction assembles an auction from already-validated entities and
// enforces the cross-entity invariants: unique order ids, unique pool ids,
// and no order or pool referencing a token outside the token set.
func NewBatchAuction(
	id, name string,
	tokens map[Token]TokenInfo,
	orders []*Order,
	pools []LiquiditySource,
	effectiveGasPrice decimal.Decimal,
	deadline time.Time,
) (*BatchAuction, error) {
	if name == "" {
		name = defaultName
	}
	if effectiveGasPrice.IsNegative() {
		return nil, fmt.Errorf("%w: effective gas price %s", ErrInvalidAmount, effectiveGasPrice)
	}

	b := &BatchAuction{
		ID:                id,
		Name:              name,
		tokens:            make(map[Token]TokenInfo, len(tokens)),
		orders:            make(map[string]*Order, len(orders)),
		pools:             make(map[string]LiquiditySource, len(pools)),
		EffectiveGasPrice: effectiveGasPrice,
		Deadline:          deadline,
	}
	for t, info := range tokens {
		b.tokens[t] = info
		b.sorted = append(b.sorted, t)
	}
	sort.Slice(b.sorted, func(i, j int) bool { return b.sorted[i] < b.sorted[j] })

	for _, o := range orders {
		if _, dup := b.orders[o.ID]; dup {
			return nil, fmt.Errorf("%w: <%s>", ErrDuplicateOrder, o.ID)
		}
		for _, t := range []Token{o.BuyToken, o.SellToken} {
			if _, ok := b.tokens[t]; !ok {
				return nil, fmt.Errorf("order <%s>: %w: <%s>", o.ID, ErrUnknownToken, t)
			}
		}
		b.orders[o.ID] = o
	}
	for _, p := range pools {
		if _, dup := b.pools[p.PoolID()]; dup {
			return nil, fmt.Errorf("%w: <%s>", ErrDuplicatePool, p.PoolID())
		}
		for _, t := range p.Tokens() {
			if _, ok := b.tokens[t]; !ok {
				return nil, fmt.Errorf("pool <%s>: %w: <%s>", p.PoolID(), ErrUnknownToken, t)
			}
		}
		b.pools[p.PoolID()] = p
	}
	return b, nil
}

// FromRequest decodes a wire instance into a BatchAuction. All five mandatory
// instance fields must be present; order and pool records are validated hard,
// while a token repeated under different spellings only logs a warning.
func FromRequest(req *schema.SolveRequest, log *zap.SugaredLogger) (*BatchAuction, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if req.Tokens == nil {
		return nil, &MissingFieldError{Field: "tokens"}
	}
	if req.Orders == nil {
		return nil, &MissingFieldError{Field: "orders"}
	}
	if req.Liquidity == nil {
		return nil, &MissingFieldError{Field: "liquidity"}
	}
	if req.EffectiveGasPrice == nil {
		return nil, &MissingFieldError{Field: "effectiveGasPrice"}
	}
	if req.Deadline == nil {
		return nil, &MissingFieldError{Field: "deadline"}
	}

	gasPrice, err := decimal.NewFromString(*req.EffectiveGasPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: effective gas price %q", ErrInvalidAmount, *req.EffectiveGasPrice)
	}
	deadline, err := parseDeadline(*req.Deadline)
	if err != nil {
		return nil, err
	}

	tokens := loadTokens(req.Tokens, log)
	orders, err := loadOrders(req.Orders)
	if err != nil {
		return nil, err
	}
	pools, err := loadPools(req.Liquidity, log)
	if err != nil {
		return nil, err
	}

	return NewBatchAuction(req.ID.String(), defaultName, tokens, orders, pools, gasPrice, deadline)
}

func parseDeadline(s string) (time.Time, error) {
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: deadline %q", ErrInvalidAmount, s)
}

// loadTokens normalizes and deduplicates the token map. Two spellings of the
// same address collapse to one entry; the later one wins with a warning, since
// upstream data may harmlessly repeat a token.
func loadTokens(raw map[string]schema.TokenInfo, log *zap.SugaredLogger) map[Token]TokenInfo {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tokens := make(map[Token]TokenInfo, len(raw))
	for _, k := range keys {
		t := NewToken(k)
		if _, dup := tokens[t]; dup {
			log.Warnw("token_already_exists", "token", t.String())
		}
		info := TokenInfo{Token: t}
		w := raw[k]
		if w.Decimals != nil {
			info.Decimals = *w.Decimals
		}
		if w.Symbol != nil {
			info.Symbol = *w.Symbol
		}
		if w.ReferencePrice != nil {
			if d, err := decimal.NewFromString(*w.ReferencePrice); err == nil {
				info.ReferencePrice = d
			}
		}
		if w.AvailableBalance != nil {
			if d, err := decimal.NewFromString(*w.AvailableBalance); err == nil {
				info.AvailableBalance = d
			}
		}
		info.Trusted = w.Trusted
		tokens[t] = info
	}
	return tokens
}

func loadOrders(raw []schema.Order) ([]*Order, error) {
	orders := make([]*Order, 0, len(raw))
	for i, w := range raw {
		o, err := orderFromWire(w)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func orderFromWire(w schema.Order) (*Order, error) {
	switch {
	case w.UID == nil:
		return nil, &MissingFieldError{Field: "uid"}
	case w.SellToken == nil:
		return nil, &MissingFieldError{Field: "sellToken"}
	case w.BuyToken == nil:
		return nil, &MissingFieldError{Field: "buyToken"}
	case w.SellAmount == nil:
		return nil, &MissingFieldError{Field: "sellAmount"}
	case w.BuyAmount == nil:
		return nil, &MissingFieldError{Field: "buyAmount"}
	case w.Kind == nil:
		return nil, &MissingFieldError{Field: "kind"}
	case w.PartiallyFillable == nil:
		return nil, &MissingFieldError{Field: "partiallyFillable"}
	case w.Class == nil:
		return nil, &MissingFieldError{Field: "class"}
	}
	sellAmount, err := decimal.NewFromString(*w.SellAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: sell amount %q", ErrInvalidAmount, *w.SellAmount)
	}
	buyAmount, err := decimal.NewFromString(*w.BuyAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: buy amount %q", ErrInvalidAmount, *w.BuyAmount)
	}
	fees, err := feePoliciesFromWire(w.FeePolicies)
	if err != nil {
		return nil, err
	}
	return NewOrder(
		*w.UID,
		NewToken(*w.BuyToken), NewToken(*w.SellToken),
		buyAmount, sellAmount,
		OrderKind(*w.Kind),
		*w.PartiallyFillable,
		OrderClass(*w.Class),
		fees,
	)
}

func feePoliciesFromWire(raw []schema.FeePolicy) ([]FeePolicy, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]FeePolicy, 0, len(raw))
	for _, w := range raw {
		factor := decimal.Zero
		if w.Factor != nil {
			factor = decimal.NewFromFloat(*w.Factor)
		}
		maxVolume := decimal.Zero
		if w.MaxVolumeFactor != nil {
			maxVolume = decimal.NewFromFloat(*w.MaxVolumeFactor)
		}
		if factor.IsNegative() || maxVolume.IsNegative() {
			return nil, fmt.Errorf("%w: fee policy factors must be non-negative", ErrInvalidAmount)
		}
		switch w.Kind {
		case schema.FeeVolume:
			out = append(out, VolumeFee{Factor: factor})
		case schema.FeeSurplus:
			out = append(out, SurplusFee{Factor: factor, MaxVolumeFactor: maxVolume})
		case schema.FeePriceImprovement:
			var quote *Quote
			if w.Quote != nil && w.Quote.SellAmount != nil && w.Quote.BuyAmount != nil {
				sell, err := decimal.NewFromString(*w.Quote.SellAmount)
				if err != nil {
					return nil, fmt.Errorf("%w: quote sell amount %q", ErrInvalidAmount, *w.Quote.SellAmount)
				}
				buy, err := decimal.NewFromString(*w.Quote.BuyAmount)
				if err != nil {
					return nil, fmt.Errorf("%w: quote buy amount %q", ErrInvalidAmount, *w.Quote.BuyAmount)
				}
				quote = &Quote{SellAmount: sell, BuyAmount: buy}
			}
			out = append(out, PriceImprovementFee{Factor: factor, MaxVolumeFactor: maxVolume, Quote: quote})
		default:
			return nil, fmt.Errorf("%w: unknown fee policy kind %q", ErrInvalidAmount, w.Kind)
		}
	}
	return out, nil
}

// loadPools instantiates quoting sources from the liquidity records.
// Only constant-product pools are quotable here; other kinds are skipped with
// a log line so the instance still settles on orders alone.
func loadPools(raw []schema.Liquidity, log *zap.SugaredLogger) ([]LiquiditySource, error) {
	pools := make([]LiquiditySource, 0, len(raw))
	for i, w := range raw {
		if w.ID == nil {
			return nil, fmt.Errorf("liquidity %d: %w", i, &MissingFieldError{Field: "id"})
		}
		if w.Kind != schema.KindConstantProduct {
			log.Infow("skipping_unsupported_liquidity", "pool", *w.ID, "kind", w.Kind)
			continue
		}
		poolTokens, err := w.PoolTokens()
		if err != nil {
			return nil, fmt.Errorf("pool <%s>: %w: malformed tokens", *w.ID, ErrInvalidAmount)
		}
		reserves := make(map[Token]decimal.Decimal, len(poolTokens))
		for addr, pt := range poolTokens {
			if pt.Balance == nil {
				return nil, fmt.Errorf("pool <%s>: %w", *w.ID, &MissingFieldError{Field: "balance"})
			}
			bal, err := decimal.NewFromString(*pt.Balance)
			if err != nil {
				return nil, fmt.Errorf("pool <%s>: %w: balance %q", *w.ID, ErrInvalidAmount, *pt.Balance)
			}
			reserves[NewToken(addr)] = bal
		}
		fee := decimal.Zero
		if w.Fee != "" {
			fee, err = decimal.NewFromString(w.Fee)
			if err != nil {
				return nil, fmt.Errorf("pool <%s>: %w: fee %q", *w.ID, ErrInvalidAmount, w.Fee)
			}
		}
		gasEstimate := decimal.Zero
		if w.GasEstimate != "" {
			gasEstimate, err = decimal.NewFromString(w.GasEstimate)
			if err != nil {
				return nil, fmt.Errorf("pool <%s>: %w: gas estimate %q", *w.ID, ErrInvalidAmount, w.GasEstimate)
			}
		}
		pool, err := NewConstantProductPool(*w.ID, w.Address, fee, reserves, gasEstimate)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

// Tokens returns the auction's tokens in canonical sorted order.
func (b *BatchAuction) Tokens() []Token {
	out := make([]Token, len(b.sorted))
	copy(out, b.sorted)
	return out
}

// Orders returns the auction's orders sorted by order id.
func (b *BatchAuction) Orders() []*Order {
	out := make([]*Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Order looks up one order by id.
func (b *BatchAuction) Order(id string) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// Pools returns the auction's liquidity sources sorted by pool id.
func (b *BatchAuction) Pools() []LiquiditySource {
	out := make([]LiquiditySource, 0, len(b.pools))
	for _, p := range b.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PoolID() < out[j].PoolID() })
	return out
}

// Pool looks up one liquidity source by pool id.
func (b *BatchAuction) Pool(id string) (LiquiditySource, bool) {
	p, ok := b.pools[id]
	return p, ok
}

// TokenInfo is a total lookup of the auction's token data.
func (b *BatchAuction) TokenInfo(t Token) (TokenInfo, error) {
	info, ok := b.tokens[t]
	if !ok {
		return TokenInfo{}, fmt.Errorf("%w: <%s> not in batch auction", ErrUnknownToken, t)
	}
	return info, nil
}

func (b *BatchAuction) String() string {
	return fmt.Sprintf("BatchAuction(%s: %d tokens, %d orders, %d pools)",
		b.ID, len(b.tokens), len(b.orders), len(b.pools))
}
