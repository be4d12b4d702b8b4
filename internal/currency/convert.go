package currency

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAmount rejects NaN and infinite amounts.
	ErrInvalidAmount = errors.New("currency: invalid amount")

	// ErrUnsupportedCurrency rejects codes outside the supported set.
	ErrUnsupportedCurrency = errors.New("currency: unsupported currency")

	// ErrRateUnavailable wraps a rate source failure. The converter never
	// retries and never substitutes a fallback rate.
	ErrRateUnavailable = errors.New("currency: rate service unavailable")
)

// RateSource provides the exchange rate between two supported currencies.
// Implementations are external collaborators and may fail.
type RateSource interface {
	Rate(ctx context.Context, from, to Code) (float64, error)
}

// Result carries a converted amount and the effective rate applied.
// Rate is 0 when the input amount was 0 (the effective rate is undefined).
type Result struct {
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}

// Converter is a stateless facade over a RateSource.
type Converter struct {
	src RateSource
}

func NewConverter(src RateSource) *Converter {
	return &Converter{src: src}
}

// Convert converts amount from one supported currency to another.
//
// Inputs are validated before any external call: the amount must be finite
// and both codes must be supported. Same-currency conversions return the
// amount unchanged at rate 1.0 and a zero amount converts to zero, neither
// consulting the rate source.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to Code) (Result, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if !Supported(from) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, from)
	}
	if !Supported(to) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, to)
	}
	if from == to {
		return Result{Amount: amount, Rate: 1}, nil
	}
	if amount == 0 {
		return Result{Amount: 0, Rate: 0}, nil
	}

	rate, err := c.src.Rate(ctx, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	converted := amount * rate
	return Result{Amount: converted, Rate: converted / amount}, nil
}
