package config

import (
	"testing"
	"time"

	"custody/settlement/internal/domain"

	"github.com/shopspring/decimal"
)

const sample = `
prod_env = false

[storage]
driver = "memory"

[nats]
servers = ["localhost:4222", "localhost:4223"]

[networks.polygon]
endpoints = ["https://rpc-a", "https://rpc-b"]
fee = "0.25"

[networks.solana]
disabled = true

[settlement]
max_attempts = 6
base_backoff = "20ms"
max_backoff = "500ms"
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}

	c.ApplySecrets(Secrets{NatsUser: "u", NatsPassword: "p", FundingKey: "k"})
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	if c.Storage.Driver != STORAGE_MEMORY {
		t.Fatalf("driver = %s", c.Storage.Driver)
	}
	if c.Settlement.MaxAttempts != 6 || c.Settlement.BaseBackoff != 20*time.Millisecond || c.Settlement.MaxBackoff != 500*time.Millisecond {
		t.Fatalf("settlement = %+v", c.Settlement)
	}
	if c.Nats.Servers != "nats://u:p@localhost:4222,nats://u:p@localhost:4223" {
		t.Fatalf("servers = %s", c.Nats.Servers)
	}
	if c.Provisioning.FundingKey != "k" || c.Mint.Quantity != "1000" || c.Mint.TransferQuantity != "50" {
		t.Fatalf("defaults/secrets not applied: %+v %+v", c.Provisioning, c.Mint)
	}

	specs, err := c.NetworkSpecs()
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range specs {
		switch s.ID {
		case domain.NETWORK_POLYGON:
			if !s.Fee.Equal(decimal.RequireFromString("0.25")) || len(s.Endpoints) != 2 || s.ChainID != 80001 {
				t.Fatalf("polygon spec = %+v", s)
			}
		case domain.NETWORK_SOLANA:
			if !s.Disabled {
				t.Fatal("solana must be disabled")
			}
		case domain.NETWORK_ETHEREUM:
			if !s.Fee.Equal(decimal.RequireFromString("2.5")) {
				t.Fatalf("ethereum fee = %s", s.Fee)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		modify func(c *Config)
	}{
		{"memory in prod", "prod_env = true\n[storage]\ndriver = \"memory\"", nil},
		{"unknown driver", "[storage]\ndriver = \"mongo\"", nil},
		{"unknown network", "[networks.bitcoin]\nfee = \"1\"", nil},
		{"non evm funding", "[provisioning]\nfunding_network = \"tron\"", nil},
		{"bad key mode", "[provisioning]\nkey_mode = \"hsm\"", nil},
		{"backoff order", "[settlement]\nbase_backoff = \"2s\"\nmax_backoff = \"1s\"", nil},
		{"zero mint", "[mint]\nquantity = \"0\"", nil},
		{"attempts", "", func(c *Config) { c.Settlement.MaxAttempts = -1 }},
	}

	for _, tt := range tests {
		c, err := Parse([]byte(tt.doc))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if tt.modify != nil {
			tt.modify(c)
		}
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}

func TestNetworkSpecsBadFee(t *testing.T) {
	c, err := Parse([]byte("[networks.ton]\nfee = \"abc\""))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.NetworkSpecs(); err == nil {
		t.Fatal("expected fee error")
	}
}
