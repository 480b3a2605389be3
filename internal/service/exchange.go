package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// BaseCurrency es la moneda pivote: toda conversión entre dos monedas sin
// tasa directa pasa por ella.
const BaseCurrency = "USD"

func init() {
	// Las conversiones cruzadas mantienen el intermedio en moneda base sin
	// redondear: dividir y multiplicar en precisión de 4 decimales acumula
	// error de redondeo. 28 dígitos significativos antes del redondeo final.
	if decimal.DivisionPrecision < 28 {
		decimal.DivisionPrecision = 28
	}
}

// RateSource entrega tasas de cambio expresadas en unidades de moneda por
// 1 USD. Un código ausente en el mapa significa moneda no soportada.
type RateSource interface {
	Rates(ctx context.Context, symbols ...string) (map[string]decimal.Decimal, error)
}

// StaticRateSource sirve tasas desde una tabla fija de configuración.
type StaticRateSource struct {
	rates map[string]decimal.Decimal
}

func NewStaticRateSource(rates map[string]decimal.Decimal) *StaticRateSource {
	normalized := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		normalized[strings.ToUpper(code)] = rate
	}
	return &StaticRateSource{rates: normalized}
}

func (s *StaticRateSource) Rates(_ context.Context, symbols ...string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(symbols))
	for _, symbol := range symbols {
		if rate, ok := s.rates[symbol]; ok {
			result[symbol] = rate
		}
	}
	return result, nil
}

// ExchangeService convierte montos entre monedas usando la fuente de tasas
// configurada.
type ExchangeService struct {
	source RateSource
	logger *logrus.Logger
}

func NewExchangeService(source RateSource, logger *logrus.Logger) *ExchangeService {
	return &ExchangeService{source: source, logger: logger}
}

// Convert convierte amount de la moneda from a la moneda to, redondeando a
// 4 decimales (mitad hacia arriba). Si from == to devuelve el monto intacto,
// sin introducir pérdida de precisión.
func (s *ExchangeService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return amount, nil
	}

	var symbols []string
	if from != BaseCurrency {
		symbols = append(symbols, from)
	}
	if to != BaseCurrency {
		symbols = append(symbols, to)
	}

	rates, err := s.source.Rates(ctx, symbols...)
	if err != nil {
		s.logger.WithError(err).Error("Error consultando la fuente de tipos de cambio")
		return decimal.Zero, fmt.Errorf("%w: %v", model.ErrRateUnavailable, err)
	}

	for _, symbol := range symbols {
		rate, ok := rates[symbol]
		if !ok {
			s.logger.WithField("currency", symbol).Warn("Moneda sin tasa conocida")
			return decimal.Zero, model.ErrUnsupportedCurrency
		}
		// Una tasa cero o negativa es un dato corrupto de la fuente, nunca
		// un valor operable: dividir por ella haría pánico.
		if !rate.IsPositive() {
			s.logger.WithFields(logrus.Fields{
				"currency": symbol,
				"rate":     rate.String(),
			}).Error("Tasa no positiva recibida de la fuente de tipos de cambio")
			return decimal.Zero, fmt.Errorf("%w: tasa no positiva para %s", model.ErrRateUnavailable, symbol)
		}
	}

	switch {
	case from == BaseCurrency:
		return amount.Mul(rates[to]).Round(4), nil
	case to == BaseCurrency:
		return amount.Div(rates[from]).Round(4), nil
	default:
		// Pivote por moneda base: multiplicar antes de dividir deja el
		// intermedio sin redondear hasta el redondeo final.
		return amount.Mul(rates[to]).Div(rates[from]).Round(4), nil
	}
}
