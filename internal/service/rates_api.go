package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ExchangeAPIClient consulta tasas a un servicio externo estilo
// openexchangerates (GET /latest.json?app_id=...&base=USD&symbols=A,B).
// Toda llamada tiene un timeout acotado: si la fuente no responde, la
// operación financiera completa falla sin mutar saldos.
type ExchangeAPIClient struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	logger     *logrus.Logger
}

func NewExchangeAPIClient(baseURL, appID string, timeout time.Duration, logger *logrus.Logger) *ExchangeAPIClient {
	return &ExchangeAPIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		logger:  logger,
	}
}

type exchangeRateResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (c *ExchangeAPIClient) Rates(ctx context.Context, symbols ...string) (map[string]decimal.Decimal, error) {
	c.logger.WithField("symbols", symbols).Info("Consultando tipos de cambio a la API externa")

	query := url.Values{}
	query.Set("app_id", c.appID)
	query.Set("base", BaseCurrency)
	query.Set("symbols", strings.Join(symbols, ","))

	endpoint := c.baseURL + "/latest.json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Error al consultar la API de tipos de cambio")
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var body exchangeRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}

	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rate source returned no rates")
	}

	c.logger.WithField("count", len(body.Rates)).Debug("Tipos de cambio recibidos")
	return body.Rates, nil
}
