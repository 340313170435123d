package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// StoreDriver values
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config gathers every environment-driven setting. Load never fails: every
// value has a development default.
type Config struct {
	Port        string
	StoreDriver string
	CORSOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// DemolishFlowThreshold selects the deeper demolish approval chain when
	// the total book value exceeds it. The default of 1 is a placeholder
	// until the business supplies the real figure, so it stays configurable
	// instead of being baked in.
	DemolishFlowThreshold decimal.Decimal

	// DemolishBudgetDocThreshold is the total above which a BUDGET_DOC
	// attachment is required at submit time.
	DemolishBudgetDocThreshold decimal.Decimal
}

func get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return parsed
}

func Load() *Config {
	one := decimal.NewFromInt(1)
	return &Config{
		Port:        get("PORT", "8080"),
		StoreDriver: get("STORE_DRIVER", DriverPostgres),
		CORSOrigins: strings.Split(get("CORS_ORIGINS", "http://localhost:3000"), ","),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", "postgres"),
		DBName:     get("DB_NAME", "assetdb"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		DemolishFlowThreshold:      getDecimal("DEMOLISH_FLOW_THRESHOLD", one),
		DemolishBudgetDocThreshold: getDecimal("DEMOLISH_BUDGET_DOC_THRESHOLD", one),
	}
}

func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
}
