package app

import (
	"net"
	"strconv"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/diag"
)

// Storage drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the complete application configuration, loadable from
// environment variables, flags, or YAML config files. Environment names match
// the ones the service has always been deployed with.
type Config struct {
	Addr     string `default:"" env:"ADDR" flag:"addr" yaml:"addr" usage:"Listen address; overrides port when set"`
	Port     int    `default:"8000" env:"PORT" flag:"port" yaml:"port" usage:"Listen port"`
	LogLevel string `default:"" env:"LOG_LEVEL" flag:"log-level" yaml:"log_level" usage:"Set to trace for diagnostic request logging"`

	StorageDriver     string `default:"mongo" env:"STORAGE_DRIVER" flag:"storage-driver" yaml:"storage_driver" usage:"mongo, postgres or memory"`
	DatabaseURI       string `default:"" env:"DATABASE_URI" flag:"database-uri" yaml:"database_uri" usage:"MongoDB or PostgreSQL connection URI"`
	DatabaseName      string `default:"shop" env:"DATABASE_NAME" flag:"database-name" yaml:"database_name" usage:"MongoDB database name"`
	ProductCollection string `default:"product" env:"PRODUCT_COLLECTION" flag:"product-collection" yaml:"product_collection" usage:"Product collection or table"`
	OrderCollection   string `default:"order" env:"ORDER_COLLECTION" flag:"order-collection" yaml:"order_collection" usage:"Order collection or table"`

	CORS     CORSConfig     `env:"CORS" flag:"cors" yaml:"cors"`
	Graceful GracefulConfig `env:"GRACEFUL" flag:"graceful" yaml:"graceful"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins     []string `default:"*" env:"ORIGINS" flag:"origins" yaml:"origins" usage:"Allowed CORS origins"`
	Credentials bool     `default:"false" env:"CREDENTIALS" flag:"credentials" yaml:"credentials" usage:"Allow credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s" env:"READINESS_DELAY" flag:"readiness-delay" yaml:"readiness_delay" usage:"Delay after readiness=false before shutdown"`
	ShutdownTimeout time.Duration `default:"15s" env:"SHUTDOWN_TIMEOUT" flag:"shutdown-timeout" yaml:"shutdown_timeout" usage:"Maximum shutdown duration"`
}

// LoadConfig loads configuration from the environment, flags and
// config.yaml.
func LoadConfig() (*Config, error) {
	cfg, _, err := load(aconfig.Config{})
	return cfg, err
}

// LoadConfigArgs is LoadConfig for tools that take positional arguments
// after the flags. It returns those arguments.
func LoadConfigArgs(args []string) (*Config, []string, error) {
	return load(aconfig.Config{Args: args})
}

func load(ac aconfig.Config) (*Config, []string, error) {
	var cfg Config
	ac.Files = []string{"config.yaml", "/etc/storefront/config.yaml"}
	ac.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}
	ac.AllowUnknownFields = true

	loader := aconfig.LoaderFor(&cfg, ac)
	if err := loader.Load(); err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var rest []string
	if !ac.SkipFlags {
		rest = loader.Flags().Args()
	}
	return &cfg, rest, nil
}

// Validate checks settings that defaults cannot fix.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMongo, DriverPostgres:
		if c.DatabaseURI == "" {
			return errors.Errorf("DATABASE_URI is required for the %s driver", c.StorageDriver)
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.ProductCollection == "" || c.OrderCollection == "" {
		return errors.New("collection names must not be empty")
	}
	if c.ProductCollection == c.OrderCollection {
		return errors.Errorf("products and orders share collection %q", c.ProductCollection)
	}
	return nil
}

// ListenAddr returns Addr, or all interfaces on Port when Addr is empty.
func (c *Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}

// Diag returns the diagnostic gate selected by LOG_LEVEL.
func (c *Config) Diag() diag.Gate {
	return diag.New(c.LogLevel)
}
