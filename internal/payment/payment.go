// Package payment holds the payment step of checkout. There is no real
// gateway: the stock processor simulates one round trip and always
// settles.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("payment: amount must not be negative")

// Processor settles the amount due for one checkout.
type Processor interface {
	Charge(ctx context.Context, amount decimal.Decimal) error
}

// Simulated waits out a fixed processing delay and succeeds.
type Simulated struct {
	Delay time.Duration
}

func (s Simulated) Charge(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	delay := s.Delay
	if delay == 0 {
		delay = 2 * time.Second
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
