package currency

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	rate  float64
	err   error
	calls int
}

func (s *stubSource) Rate(ctx context.Context, from, to Code) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.rate, nil
}

func TestConverter_Convert(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		from, to   Code
		rate       float64
		srcErr     error
		wantErr    error
		wantAmount float64
		wantRate   float64
		wantCalls  int
	}{
		{
			name:   "basic conversion",
			amount: 100, from: GBP, to: EUR,
			rate:       1.17,
			wantAmount: 117, wantRate: 1.17, wantCalls: 1,
		},
		{
			name:   "same currency skips rate lookup",
			amount: 100, from: GBP, to: GBP,
			wantAmount: 100, wantRate: 1, wantCalls: 0,
		},
		{
			name:   "zero amount converts to zero with undefined rate",
			amount: 0, from: GBP, to: EUR,
			wantAmount: 0, wantRate: 0, wantCalls: 0,
		},
		{
			name:   "unsupported source code rejected before lookup",
			amount: 100, from: Code("XXX"), to: EUR,
			wantErr: ErrUnsupportedCurrency, wantCalls: 0,
		},
		{
			name:   "unsupported target code rejected before lookup",
			amount: 100, from: EUR, to: Code("DOGE"),
			wantErr: ErrUnsupportedCurrency, wantCalls: 0,
		},
		{
			name:   "NaN amount rejected",
			amount: math.NaN(), from: GBP, to: EUR,
			wantErr: ErrInvalidAmount, wantCalls: 0,
		},
		{
			name:   "infinite amount rejected",
			amount: math.Inf(1), from: GBP, to: EUR,
			wantErr: ErrInvalidAmount, wantCalls: 0,
		},
		{
			name:   "rate source failure surfaces as unavailable",
			amount: 100, from: GBP, to: EUR,
			srcErr:  errors.New("connection refused"),
			wantErr: ErrRateUnavailable, wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{rate: tt.rate, err: tt.srcErr}
			conv := NewConverter(src)

			res, err := conv.Convert(context.Background(), tt.amount, tt.from, tt.to)

			assert.Equal(t, tt.wantCalls, src.calls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantAmount, res.Amount, 1e-9)
			assert.InDelta(t, tt.wantRate, res.Rate, 1e-9)
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(USD))
	assert.True(t, Supported(NGN))
	assert.False(t, Supported(Code("XXX")))
	assert.False(t, Supported(Code("usd")), "codes are case sensitive")
	for _, c := range Codes() {
		assert.True(t, Supported(c))
	}
}
