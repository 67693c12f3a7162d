// Package schema defines the wire format of the solver API: the problem
// (batch auction) a driver posts to /solve and the solution returned.
// Token amounts travel as exact decimal strings, never floats.
package schema

import "encoding/json"

// Liquidity kinds.
const (
	KindConstantProduct = "constantProduct"
	KindWeightedProduct = "weightedProduct"
	KindStable          = "stable"
	KindConcentrated    = "concentratedLiquidity"
	KindLimitOrder      = "limitOrder"
)

// Trade kinds.
const (
	TradeFulfillment = "fulfillment"
	TradeJit         = "jit"
)

// Interaction kinds.
const (
	InteractionLiquidity = "liquidity"
	InteractionCustom    = "custom"
)

// TokenInfo is the token-specific data of an auction instance.
type TokenInfo struct {
	Decimals *int32 `json:"decimals,omitempty"`
	Symbol   *string `json:"symbol,omitempty"`
	// ReferencePrice is the scoring price, only present for tokens with orders.
	ReferencePrice *string `json:"referencePrice,omitempty"`
	// AvailableBalance is what the settlement contract holds of this token.
	AvailableBalance *string `json:"availableBalance,omitempty"`
	// Trusted marks tokens whose internal balances may replace AMM routing.
	Trusted bool `json:"trusted"`
}

// Quote is the reference (sellAmount, buyAmount) pair of a fee policy.
type Quote struct {
	SellAmount *string `json:"sellAmount"`
	BuyAmount  *string `json:"buyAmount"`
}

// FeePolicy is one fee policy attached to an order.
type FeePolicy struct {
	Kind            string   `json:"kind"`
	Factor          *float64 `json:"factor,omitempty"`
	MaxVolumeFactor *float64 `json:"maxVolumeFactor,omitempty"`
	Quote           *Quote   `json:"quote,omitempty"`
}

// Fee policy kinds.
const (
	FeeSurplus          = "surplus"
	FeePriceImprovement = "priceImprovement"
	FeeVolume           = "volume"
)

// Order is one order record of the auction instance. Mandatory fields are
// pointers so that absence is distinguishable from zero values.
type Order struct {
	UID               *string     `json:"uid"`
	SellToken         *string     `json:"sellToken"`
	BuyToken          *string     `json:"buyToken"`
	SellAmount        *string     `json:"sellAmount"`
	BuyAmount         *string     `json:"buyAmount"`
	Kind              *string     `json:"kind"`
	PartiallyFillable *bool       `json:"partiallyFillable"`
	Class             *string     `json:"class"`
	FeePolicies       []FeePolicy `json:"feePolicies,omitempty"`
}

// PoolToken is the per-token info of an object-keyed liquidity pool.
type PoolToken struct {
	Balance       *string `json:"balance"`
	ScalingFactor *string `json:"scalingFactor,omitempty"`
	Weight        *string `json:"weight,omitempty"`
}

// Liquidity is one on-chain liquidity record. The set of populated fields
// depends on Kind; Tokens is an object keyed by token for the product/stable
// kinds and a plain address list for concentrated liquidity, so it stays raw
// until the kind is known.
type Liquidity struct {
	ID          *string         `json:"id"`
	Address     string          `json:"address"`
	GasEstimate string          `json:"gasEstimate"`
	Kind        string          `json:"kind"`
	Tokens      json.RawMessage `json:"tokens,omitempty"`
	Fee         string          `json:"fee,omitempty"`
	Router      string          `json:"router,omitempty"`

	// weightedProduct / stable
	BalancerPoolID         string `json:"balancerPoolId,omitempty"`
	Version                string `json:"version,omitempty"`
	AmplificationParameter string `json:"amplificationParameter,omitempty"`

	// concentratedLiquidity
	SqrtPrice    string            `json:"sqrtPrice,omitempty"`
	Liquidity    string            `json:"liquidity,omitempty"`
	Tick         *int64            `json:"tick,omitempty"`
	LiquidityNet map[string]string `json:"liquidityNet,omitempty"`

	// limitOrder
	MakerToken          string `json:"makerToken,omitempty"`
	TakerToken          string `json:"takerToken,omitempty"`
	MakerAmount         string `json:"makerAmount,omitempty"`
	TakerAmount         string `json:"takerAmount,omitempty"`
	TakerTokenFeeAmount string `json:"takerTokenFeeAmount,omitempty"`
}

// PoolTokens decodes the token object of a product- or stable-kind pool.
func (l *Liquidity) PoolTokens() (map[string]PoolToken, error) {
	var out map[string]PoolToken
	if err := json.Unmarshal(l.Tokens, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TokenList decodes the token address list of a concentrated-liquidity pool.
func (l *Liquidity) TokenList() ([]string, error) {
	var out []string
	if err := json.Unmarshal(l.Tokens, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SolveRequest is the batch auction instance posted to /solve.
type SolveRequest struct {
	ID                json.Number          `json:"id"`
	Tokens            map[string]TokenInfo `json:"tokens"`
	Orders            []Order              `json:"orders"`
	Liquidity         []Liquidity          `json:"liquidity"`
	EffectiveGasPrice *string              `json:"effectiveGasPrice"`
	Deadline          *string              `json:"deadline"`
}

// Trade is one executed order of a solution: either the fulfillment of an
// auction order referenced by UID, or a just-in-time liquidity order.
type Trade struct {
	Kind string `json:"kind"`
	// Order is the UID of the fulfilled auction order.
	Order string `json:"order,omitempty"`
	// Fee is the sell-token amount taken as fee, limit orders only.
	Fee *string `json:"fee,omitempty"`
	// ExecutedAmount is denominated in sellToken for sell orders and in
	// buyToken for buy orders.
	ExecutedAmount *string `json:"executedAmount,omitempty"`
	// JitOrder carries the full order terms of a jit trade.
	JitOrder *JitOrder `json:"order_,omitempty"`
}

// JitOrder is a just-in-time liquidity order created by the solver itself.
type JitOrder struct {
	SellToken         string `json:"sellToken"`
	BuyToken          string `json:"buyToken"`
	Receiver          string `json:"receiver"`
	SellAmount        string `json:"sellAmount"`
	BuyAmount         string `json:"buyAmount"`
	ValidTo           string `json:"validTo"`
	FeeAmount         string `json:"feeAmount"`
	Kind              string `json:"kind"`
	PartiallyFillable bool   `json:"partiallyFillable"`
	SigningScheme     string `json:"signingScheme"`
	Signature         string `json:"signature"`
}

// Interaction is one settlement step: executing auction liquidity or a
// custom call.
type Interaction struct {
	Kind        string `json:"kind"`
	Internalize bool   `json:"internalize"`

	// liquidity
	ID           string `json:"id,omitempty"`
	InputToken   string `json:"inputToken,omitempty"`
	OutputToken  string `json:"outputToken,omitempty"`
	InputAmount  string `json:"inputAmount,omitempty"`
	OutputAmount string `json:"outputAmount,omitempty"`

	// custom
	Target   string  `json:"target,omitempty"`
	Value    string  `json:"value,omitempty"`
	CallData string  `json:"callData,omitempty"`
	Inputs   []Asset `json:"inputs,omitempty"`
	Outputs  []Asset `json:"outputs,omitempty"`
}

// Asset is a token address with an amount.
type Asset struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// Solution is one settled batch auction: uniform clearing prices per token
// plus the trades and interactions realizing them.
type Solution struct {
	Prices       map[string]string `json:"prices"`
	Trades       []Trade           `json:"trades"`
	Interactions []Interaction     `json:"interactions"`
	Gas          *int64            `json:"gas,omitempty"`
}

// SolveResponse wraps the solutions returned from /solve.
type SolveResponse struct {
	Solutions []Solution `json:"solutions"`
}
