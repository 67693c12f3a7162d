package auction

import (
	"errors"
	"fmt"
)

// Error taxonomy for the settlement core.
//
// Construction and unit-safety errors always propagate to the caller.
// Execution errors (ErrExecutionLimit, ErrLimitPrice) propagate only when the
// corresponding strict flag of ExecPolicy is set; in lenient mode they are
// logged and the fill proceeds with clamped values.
var (
	// ErrTokenMismatch is returned when arithmetic or a rate lookup crosses
	// two different token identities.
	ErrTokenMismatch = errors.New("token mismatch")

	// ErrUnknownToken is returned when a token is not part of the entity it
	// is looked up in (exchange rate, pool, auction token set).
	ErrUnknownToken = errors.New("unknown token")

	// ErrInvalidRate is returned when an exchange rate is constructed from a
	// non-positive amount or from two balances of the same token.
	ErrInvalidRate = errors.New("invalid exchange rate")

	// ErrInvalidAmount is returned for non-positive or non-numeric amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEqualTokens is returned when an order names the same buy and sell token.
	ErrEqualTokens = errors.New("buy and sell token are equal")

	// ErrDuplicateOrder is returned when two orders share an order id.
	ErrDuplicateOrder = errors.New("duplicate order id")

	// ErrDuplicatePool is returned when two liquidity sources share a pool id.
	ErrDuplicatePool = errors.New("duplicate pool id")

	// ErrExecutionLimit is returned when a proposed fill exceeds the order's
	// stated bound beyond tolerance.
	ErrExecutionLimit = errors.New("execution amount exceeds order limit")

	// ErrLimitPrice is returned when the realized rate of a fill is worse
	// than the order's limit price beyond tolerance.
	ErrLimitPrice = errors.New("limit price violated")
)

// MissingFieldError reports a mandatory field absent from the input data.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("mandatory field '%s' missing in instance data", e.Field)
}
