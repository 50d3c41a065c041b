package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

// LedgerConfig holds the syndicate's money rules: how much each player pays
// per week and how the betting budget accrues.
type LedgerConfig struct {
	WeeklyContribution string `mapstructure:"weekly_contribution"` // e.g. "5.00"
	BudgetCycleWeeks   int    `mapstructure:"budget_cycle_weeks"`  // e.g. 6
	BudgetPerCycle     string `mapstructure:"budget_per_cycle"`    // e.g. "30.00"
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		v.SetDefault("server.address", "0.0.0.0")
		v.SetDefault("server.port", 8000)
		v.SetDefault("database.path", "data/syndicate.db")
		v.SetDefault("upload.dir", "uploads/screenshots")
		v.SetDefault("ledger.weekly_contribution", "5.00")
		v.SetDefault("ledger.budget_cycle_weeks", 6)
		v.SetDefault("ledger.budget_per_cycle", "30.00")
		v.SetDefault("app.page_size", 50)

		// environment overrides, e.g. BSL_SERVER_PORT=9000
		v.SetEnvPrefix("BSL") // betting syndicate ledger
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
