// Package solver turns a wire instance into a BatchAuction, runs the
// optimization pass over it, and assembles the outward solution from the
// per-order execution state.
package solver

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minjcho/cowlick/pkg/auction"
	"github.com/minjcho/cowlick/pkg/schema"
)

// Solver validates instances and produces solutions.
type Solver struct {
	policy auction.ExecPolicy
	log    *zap.SugaredLogger
}

// New builds a solver with the given execution policy.
func New(policy auction.ExecPolicy, log *zap.SugaredLogger) *Solver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if policy.Log == nil {
		policy.Log = log
	}
	return &Solver{policy: policy, log: log}
}

// Policy returns the execution policy fills are validated against.
func (s *Solver) Policy() auction.ExecPolicy { return s.policy }

// Solve decodes the instance, runs the matching pass and returns the
// settled solution. A decode or validation failure rejects the whole
// instance.
func (s *Solver) Solve(req *schema.SolveRequest) (*schema.SolveResponse, error) {
	batch, err := auction.FromRequest(req, s.log)
	if err != nil {
		return nil, err
	}
	s.log.Infow("received_batch_auction",
		"id", batch.ID,
		"tokens", len(batch.Tokens()),
		"orders", len(batch.Orders()),
		"pools", len(batch.Pools()))

	s.match(batch)

	solution := BuildSolution(batch)
	return &schema.SolveResponse{Solutions: []schema.Solution{solution}}, nil
}

// match is the optimization pass deciding which orders to fill against which
// liquidity. Order selection is intentionally not implemented here: the
// engine only validates and records fills proposed through Order.Execute.
func (s *Solver) match(batch *auction.BatchAuction) {
	for _, p := range batch.Pools() {
		cp, ok := p.(*auction.ConstantProductPool)
		if !ok {
			continue
		}
		if spot, err := cp.SpotRate(); err == nil {
			s.log.Debugw("pool_spot_rate", "pool", p.PoolID(), "rate", spot.String())
		}
	}
}

// BuildSolution reads post-execution order state into the wire solution.
// Prices are the reference prices of tokens touched by executed orders;
// executed amounts are denominated in sellToken for sell orders and buyToken
// for buy orders.
func BuildSolution(batch *auction.BatchAuction) schema.Solution {
	solution := schema.Solution{
		Prices:       map[string]string{},
		Trades:       []schema.Trade{},
		Interactions: []schema.Interaction{},
	}
	gas := int64(0)
	solution.Gas = &gas

	for _, o := range batch.Orders() {
		if !o.IsExecuted() {
			continue
		}
		execBuy, _ := o.ExecBuyAmount()
		execSell, _ := o.ExecSellAmount()
		if execBuy.IsZero() && execSell.IsZero() {
			// Dust-zeroed fill, nothing to settle.
			continue
		}

		executed := execSell.Balance
		if o.Kind == auction.KindBuy {
			executed = execBuy.Balance
		}
		amount := executed.String()
		solution.Trades = append(solution.Trades, schema.Trade{
			Kind:           schema.TradeFulfillment,
			Order:          o.ID,
			ExecutedAmount: &amount,
		})

		for _, t := range []auction.Token{o.BuyToken, o.SellToken} {
			if _, seen := solution.Prices[t.String()]; seen {
				continue
			}
			info, err := batch.TokenInfo(t)
			if err != nil {
				continue
			}
			price := info.ReferencePrice
			if price.IsZero() {
				price = decimal.NewFromInt(1)
			}
			solution.Prices[t.String()] = price.String()
		}
	}
	return solution
}
