package config

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

type Config struct {
	HTTPAddr       string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"address the HTTP API listens on"`
	PostgresURL    string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"Postgres connection string"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" required:"true" description:"Redis address used for messaging and sessions"`
	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" description:"Jaeger collector endpoint, tracing is not exported when empty"`
	GatewayAddr    string `long:"gateway-addr" env:"GATEWAY_ADDR" description:"gateway in front of external services, overrides the Square endpoint host"`

	Square Square `group:"Square" namespace:"square" env-namespace:"SQUARE"`

	SessionTTL          time.Duration `long:"session-ttl" env:"SESSION_TTL" default:"24h" description:"how long a session stays valid"`
	EnforceSlotCapacity bool          `long:"enforce-slot-capacity" env:"ENFORCE_SLOT_CAPACITY" description:"refuse bookings that would overfill a slot, counting unpaid bookings as holding their places"`
}

type Square struct {
	Endpoint       string        `long:"endpoint" env:"ENDPOINT" default:"https://connect.squareupsandbox.com/v2" description:"Square API base URL"`
	APIKey         string        `long:"api-key" env:"API_KEY" description:"Square access token"`
	LocationID     string        `long:"location-id" env:"LOCATION_ID" description:"Square location the payment links are created for"`
	PaymentTimeout time.Duration `long:"payment-timeout" env:"PAYMENT_TIMEOUT" default:"10s" description:"timeout of a single payment provider call"`
}

// Load reads the configuration from args and the environment. Flags win over
// environment variables.
func Load(args []string) (Config, error) {
	var cfg Config

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}

	return cfg, nil
}

// PaymentsEndpoint is where payment provider calls go: the gateway when one is
// configured, Square directly otherwise.
func (c Config) PaymentsEndpoint() string {
	if c.GatewayAddr != "" {
		return c.GatewayAddr + "/square/v2"
	}
	return c.Square.Endpoint
}
