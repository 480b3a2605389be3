package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Fuentes de tipos de cambio soportadas.
const (
	ExchangeSourceStatic = "static"
	ExchangeSourceAPI    = "api"
)

// Config contiene la configuración de la aplicación.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret   string
	TokenExpiry time.Duration

	HTTPAddr string

	// Fuente de tipos de cambio: tabla fija o API externa.
	ExchangeSource      string
	ExchangeAPIBaseURL  string
	ExchangeAPIAppID    string
	ExchangeAPITimeout  time.Duration
	ExchangeStaticRates map[string]decimal.Decimal

	// Planificador de abono de intereses sobre cuentas de ahorro.
	InterestCronSpec   string
	InterestAnnualRate decimal.Decimal
}

// LoadConfig carga la configuración desde el archivo .env y el entorno.
func LoadConfig() (*Config, error) {
	// Cargamos las variables de entorno del archivo .env
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Archivo .env no encontrado")
	}

	expiry, err := time.ParseDuration(getEnv("TOKEN_EXPIRY", "24h"))
	if err != nil {
		expiry = 24 * time.Hour
	}

	apiTimeout, err := time.ParseDuration(getEnv("EXCHANGE_API_TIMEOUT", "10s"))
	if err != nil {
		apiTimeout = 10 * time.Second
	}

	staticRates, err := parseStaticRates(getEnv("EXCHANGE_STATIC_RATES", "PEN:3.37,EUR:0.92"))
	if err != nil {
		return nil, fmt.Errorf("EXCHANGE_STATIC_RATES inválido: %w", err)
	}

	interestRate, err := decimal.NewFromString(getEnv("INTEREST_ANNUAL_RATE", "0.02"))
	if err != nil {
		return nil, fmt.Errorf("INTEREST_ANNUAL_RATE inválido: %w", err)
	}

	config := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "banking_core"),

		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key"),
		TokenExpiry: expiry,

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		ExchangeSource:      getEnv("EXCHANGE_SOURCE", ExchangeSourceStatic),
		ExchangeAPIBaseURL:  getEnv("EXCHANGE_API_BASE_URL", "https://openexchangerates.org/api"),
		ExchangeAPIAppID:    getEnv("EXCHANGE_API_APP_ID", ""),
		ExchangeAPITimeout:  apiTimeout,
		ExchangeStaticRates: staticRates,

		InterestCronSpec:   getEnv("INTEREST_CRON", "0 3 1 * *"),
		InterestAnnualRate: interestRate,
	}

	if config.ExchangeSource != ExchangeSourceStatic && config.ExchangeSource != ExchangeSourceAPI {
		return nil, fmt.Errorf("EXCHANGE_SOURCE debe ser %q o %q", ExchangeSourceStatic, ExchangeSourceAPI)
	}

	return config, nil
}

// parseStaticRates interpreta una lista "CODIGO:tasa,..." de tasas por 1 USD.
func parseStaticRates(raw string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("par malformado %q", pair)
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		rate, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("tasa inválida para %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("la tasa de %s debe ser positiva", code)
		}
		rates[code] = rate
	}
	return rates, nil
}

// getEnv obtiene una variable de entorno o devuelve el valor por defecto.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
