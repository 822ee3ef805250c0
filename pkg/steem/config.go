package steem

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/steemkit/steembridge/pkg/rpc"
)

// DefaultEndpoint is the public node used when STEEM_ENDPOINT is unset.
const DefaultEndpoint = "wss://steemd.steemit.com"

// Config holds the connection settings of a client.
type Config struct {
	Endpoint         string        `env:"STEEM_ENDPOINT" env-default:"wss://steemd.steemit.com" validate:"required,url,websocket_url"`
	ResponseTimeout  time.Duration `env:"STEEM_RESPONSE_TIMEOUT" env-default:"5s" validate:"gt=0"`
	Username         string        `env:"STEEM_USERNAME"`
	Password         string        `env:"STEEM_PASSWORD"`
	PingInterval     time.Duration `env:"STEEM_PING_INTERVAL" env-default:"30s" validate:"gte=0"`
	HandshakeTimeout time.Duration `env:"STEEM_HANDSHAKE_TIMEOUT" env-default:"5s" validate:"gt=0"`
	// NumericAPIIDs sends the ids learned during discovery instead of
	// sub-API names.
	NumericAPIIDs bool `env:"STEEM_NUMERIC_API_IDS" env-default:"false"`
}

// DefaultConfig returns the settings used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Endpoint:         DefaultEndpoint,
		ResponseTimeout:  5 * time.Second,
		PingInterval:     30 * time.Second,
		HandshakeTimeout: 5 * time.Second,
	}
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Credentials returns the configured login credentials.
func (c Config) Credentials() Credentials {
	return Credentials{Username: c.Username, Password: c.Password}
}

// DialerConfig returns the dialer settings derived from c.
func (c Config) DialerConfig() rpc.WebsocketDialerConfig {
	return rpc.WebsocketDialerConfig{
		HandshakeTimeout: c.HandshakeTimeout,
		PingInterval:     c.PingInterval,
		RequestTimeout:   c.ResponseTimeout,
	}
}

func getValidator() *validator.Validate {
	validate := validator.New()

	if err := validate.RegisterValidation("websocket_url", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && (u.Scheme == "ws" || u.Scheme == "wss") && u.Host != ""
	}); err != nil {
		panic(fmt.Sprintf("failed to register websocket_url validation: %v", err))
	}
	return validate
}
