package core

import (
	"fmt"
	"strings"
)

type StoreConfig struct {
	Dir        string `koanf:"dir" mapstructure:"dir"`
	UserFile   string `koanf:"user_file" mapstructure:"user_file"`
	APIKeyFile string `koanf:"api_key_file" mapstructure:"api_key_file"`
}

type LedgerConfig struct {
	ContractAddress string `koanf:"contract_address" mapstructure:"contract_address"`
	MaxReplacements int    `koanf:"max_replacements" mapstructure:"max_replacements"`
}

type Config struct {
	ServiceName string       `koanf:"service_name" mapstructure:"service_name"`
	Store       StoreConfig  `koanf:"store" mapstructure:"store"`
	Ledger      LedgerConfig `koanf:"ledger" mapstructure:"ledger"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "userops",
		Store: StoreConfig{
			Dir:        "data",
			UserFile:   "users.json",
			APIKeyFile: "api-keys.json",
		},
		Ledger: LedgerConfig{
			MaxReplacements: DefaultMaxReplacements,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Ledger.MaxReplacements < 0 {
		return fmt.Errorf("core: ledger.max_replacements must not be negative")
	}
	if strings.TrimSpace(c.Ledger.ContractAddress) != "" {
		if err := ValidateHexAddress(c.Ledger.ContractAddress); err != nil {
			return fmt.Errorf("core: ledger.contract_address: %w", err)
		}
	}
	return nil
}
