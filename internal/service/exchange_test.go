package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

func newTestExchange() *ExchangeService {
	return NewExchangeService(NewStaticRateSource(testRates()), testLogger())
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	exchange := newTestExchange()

	amount := decimal.RequireFromString("123.4567")
	got, err := exchange.Convert(context.Background(), amount, "PEN", "PEN")
	require.NoError(t, err)
	assert.True(t, got.Equal(amount), "identidad: %s", got)
}

func TestConvertToPivot(t *testing.T) {
	exchange := newTestExchange()

	got, err := exchange.Convert(context.Background(), decimal.RequireFromString("500.00"), "PEN", "USD")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("148.3680")), "PEN→USD: %s", got)
}

func TestConvertFromPivot(t *testing.T) {
	exchange := newTestExchange()

	got, err := exchange.Convert(context.Background(), decimal.RequireFromString("100.00"), "USD", "PEN")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("337.0000")), "USD→PEN: %s", got)
}

func TestConvertCrossKeepsIntermediateUnrounded(t *testing.T) {
	exchange := newTestExchange()

	// 50 EUR → PEN: 50 * 3.37 / 0.92 = 183.15217..., un solo redondeo final.
	// Redondear el paso por USD daría 183.1521.
	got, err := exchange.Convert(context.Background(), decimal.RequireFromString("50.00"), "EUR", "PEN")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("183.1522")), "EUR→PEN: %s", got)
}

func TestConvertRoundTripStaysClose(t *testing.T) {
	exchange := newTestExchange()
	amount := decimal.RequireFromString("500.00")

	usd, err := exchange.Convert(context.Background(), amount, "PEN", "USD")
	require.NoError(t, err)
	back, err := exchange.Convert(context.Background(), usd, "USD", "PEN")
	require.NoError(t, err)

	diff := back.Sub(amount).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")),
		"ida y vuelta se desvía %s", diff)
}

func TestConvertUnsupportedCurrency(t *testing.T) {
	exchange := newTestExchange()

	_, err := exchange.Convert(context.Background(), decimal.RequireFromString("10.00"), "GBP", "PEN")
	assert.ErrorIs(t, err, model.ErrUnsupportedCurrency)

	_, err = exchange.Convert(context.Background(), decimal.RequireFromString("10.00"), "PEN", "GBP")
	assert.ErrorIs(t, err, model.ErrUnsupportedCurrency)
}

type failingRateSource struct{}

func (failingRateSource) Rates(ctx context.Context, symbols ...string) (map[string]decimal.Decimal, error) {
	return nil, errors.New("feed caído")
}

func TestConvertRateSourceFailure(t *testing.T) {
	exchange := NewExchangeService(failingRateSource{}, testLogger())

	_, err := exchange.Convert(context.Background(), decimal.RequireFromString("10.00"), "PEN", "USD")
	assert.ErrorIs(t, err, model.ErrRateUnavailable)
}

// Una fuente externa puede entregar tasas corruptas; una tasa cero en el
// divisor debe fallar como tasa no disponible, jamás entrar en pánico.
func TestConvertRejectsNonPositiveRate(t *testing.T) {
	exchange := NewExchangeService(NewStaticRateSource(map[string]decimal.Decimal{
		"PEN": decimal.Zero,
		"EUR": decimal.RequireFromString("-0.92"),
	}), testLogger())

	_, err := exchange.Convert(context.Background(), decimal.RequireFromString("10.00"), "PEN", "USD")
	assert.ErrorIs(t, err, model.ErrRateUnavailable)

	_, err = exchange.Convert(context.Background(), decimal.RequireFromString("10.00"), "USD", "EUR")
	assert.ErrorIs(t, err, model.ErrRateUnavailable)
}
