package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"custody/settlement/internal/domain"
	"custody/settlement/internal/keys"
	"custody/settlement/internal/network"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	STORAGE_POSTGRES = "postgres"
	STORAGE_MEMORY   = "memory"
)

type Config struct {
	Prod_env bool

	Storage struct {
		Driver string `toml:"driver"`
	} `toml:"storage"`

	Postgres struct {
		Host     string
		User     string
		Password string `toml:"-"`
		Db_name  string
		Port     uint16
		Ssl_mode string
	}

	Nats struct {
		Servers            string        `toml:"-"`
		TomlServers        []string      `toml:"servers"`
		NotificationStream string        `toml:"notification_stream"`
		UsersSubject       string        `toml:"users_subject"`
		RequestTimeout     time.Duration `toml:"request_timeout"`
		Workers            int           `toml:"workers"`
	}

	Networks map[string]NetworkConfig `toml:"networks"`

	Provisioning struct {
		FundingNetwork string `toml:"funding_network"`
		BootstrapGas   string `toml:"bootstrap_gas"` // native units
		KeyMode        string `toml:"key_mode"`
		FundingKey     string `toml:"-"`
	} `toml:"provisioning"`

	Settlement struct {
		MaxAttempts int           `toml:"max_attempts"`
		BaseBackoff time.Duration `toml:"base_backoff"`
		MaxBackoff  time.Duration `toml:"max_backoff"`
		RpcTimeout  time.Duration `toml:"rpc_timeout"`
		TxTimeout   time.Duration `toml:"tx_timeout"`
	} `toml:"settlement"`

	Mint struct {
		Quantity         string `toml:"quantity"`
		TransferQuantity string `toml:"transfer_quantity"`
		HotWalletKey     string `toml:"-"`
	} `toml:"mint"`

	Metrics struct {
		Listen string `toml:"listen"`
	} `toml:"metrics"`

	TronApiKey string `toml:"-"`
}

type NetworkConfig struct {
	Endpoints []string `toml:"endpoints"`
	Fee       string   `toml:"fee"`
	Contract  string   `toml:"contract"`
	Decimals  int32    `toml:"decimals"`
	ChainID   int64    `toml:"chain_id"`
	Disabled  bool     `toml:"disabled"`
}

// Secrets are read from SETTLEMENT_* environment variables.
type Secrets struct {
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	FundingKey       string `envconfig:"FUNDING_KEY"`
	HotWalletKey     string `envconfig:"HOT_WALLET_KEY"`
	NatsUser         string `envconfig:"NATS_USER"`
	NatsPassword     string `envconfig:"NATS_PASSWORD"`
	TronApiKey       string `envconfig:"TRON_API_KEY"`
}

func ReadConfig() *Config {
	byteConfig, err := os.ReadFile(os.Getenv("CONFIG"))
	if err != nil {
		panic(err)
	}

	config, err := Parse(byteConfig)
	if err != nil {
		panic(err)
	}

	var secrets Secrets
	if err := envconfig.Process("settlement", &secrets); err != nil {
		panic(err)
	}
	config.ApplySecrets(secrets)

	if err := config.Validate(); err != nil {
		panic(err)
	}

	return config
}

// Parse decodes a TOML document and fills defaults.
func Parse(data []byte) (*Config, error) {
	var config Config
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	config.defaults()
	return &config, nil
}

func (c *Config) defaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = STORAGE_POSTGRES
	}
	if c.Nats.NotificationStream == "" {
		c.Nats.NotificationStream = "notifications"
	}
	if c.Nats.UsersSubject == "" {
		c.Nats.UsersSubject = "users.core.exists"
	}
	if c.Nats.RequestTimeout == 0 {
		c.Nats.RequestTimeout = 7 * time.Second
	}
	if c.Nats.Workers == 0 {
		c.Nats.Workers = 10
	}
	if c.Provisioning.FundingNetwork == "" {
		c.Provisioning.FundingNetwork = domain.NETWORK_ETHEREUM.ToString()
	}
	if c.Provisioning.BootstrapGas == "" {
		c.Provisioning.BootstrapGas = "0.001"
	}
	if c.Provisioning.KeyMode == "" {
		c.Provisioning.KeyMode = string(keys.MODE_SYNTHETIC)
	}
	if c.Settlement.MaxAttempts == 0 {
		c.Settlement.MaxAttempts = 4
	}
	if c.Settlement.BaseBackoff == 0 {
		c.Settlement.BaseBackoff = 50 * time.Millisecond
	}
	if c.Settlement.MaxBackoff == 0 {
		c.Settlement.MaxBackoff = time.Second
	}
	if c.Settlement.RpcTimeout == 0 {
		c.Settlement.RpcTimeout = 10 * time.Second
	}
	if c.Settlement.TxTimeout == 0 {
		c.Settlement.TxTimeout = 3 * time.Minute
	}
	if c.Mint.Quantity == "" {
		c.Mint.Quantity = "1000"
	}
	if c.Mint.TransferQuantity == "" {
		c.Mint.TransferQuantity = "50"
	}
}

func (c *Config) ApplySecrets(s Secrets) {
	c.Postgres.Password = s.PostgresPassword
	c.Provisioning.FundingKey = s.FundingKey
	c.Mint.HotWalletKey = s.HotWalletKey
	c.TronApiKey = s.TronApiKey

	var servers []string
	for _, x := range c.Nats.TomlServers {
		if s.NatsUser != "" {
			servers = append(servers, fmt.Sprintf("nats://%s:%s@%s", s.NatsUser, s.NatsPassword, x))
			continue
		}
		servers = append(servers, "nats://"+x)
	}
	c.Nats.Servers = strings.Join(servers, ",")
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case STORAGE_POSTGRES, STORAGE_MEMORY:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if c.Prod_env && c.Storage.Driver == STORAGE_MEMORY {
		return fmt.Errorf("cannot use memory storage in prod")
	}

	if c.Settlement.MaxAttempts < 1 {
		return fmt.Errorf("settlement.max_attempts must be >= 1")
	}
	if c.Settlement.BaseBackoff > c.Settlement.MaxBackoff {
		return fmt.Errorf("settlement.base_backoff exceeds max_backoff")
	}

	if n := domain.StrToNetwork(c.Provisioning.FundingNetwork); n.Family() != domain.FAMILY_EVM {
		return fmt.Errorf("provisioning.funding_network must be an evm network, got %q", c.Provisioning.FundingNetwork)
	}

	switch keys.Mode(c.Provisioning.KeyMode) {
	case keys.MODE_SYNTHETIC, keys.MODE_NATIVE:
	default:
		return fmt.Errorf("unknown provisioning.key_mode: %s", c.Provisioning.KeyMode)
	}

	for _, v := range []string{c.Provisioning.BootstrapGas, c.Mint.Quantity, c.Mint.TransferQuantity} {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			return fmt.Errorf("invalid amount in config: %q", v)
		}
	}

	for name := range c.Networks {
		if domain.StrToNetwork(name).IsNone() {
			return fmt.Errorf("unknown network in config: %s", name)
		}
	}
	return nil
}

// NetworkSpecs overlays the [networks.*] tables on the default specs.
func (c *Config) NetworkSpecs() ([]network.Spec, error) {
	specs := network.DefaultSpecs()

	for i := range specs {
		nc, ok := c.Networks[specs[i].ID.ToString()]
		if !ok {
			continue
		}

		specs[i].Endpoints = nc.Endpoints
		specs[i].Disabled = nc.Disabled
		if nc.Contract != "" {
			specs[i].Contract = nc.Contract
		}
		if nc.Decimals != 0 {
			specs[i].Decimals = nc.Decimals
		}
		if nc.ChainID != 0 {
			specs[i].ChainID = nc.ChainID
		}
		if nc.Fee != "" {
			fee, err := decimal.NewFromString(nc.Fee)
			if err != nil || fee.IsNegative() {
				return nil, fmt.Errorf("invalid fee for %s: %q", specs[i].ID.ToString(), nc.Fee)
			}
			specs[i].Fee = fee
		}
	}
	return specs, nil
}
