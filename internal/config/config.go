package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
)

const (
	defaultMode     = "testnet"
	defaultCurrency = "USD"
	defaultInterval = 30
	defaultLevel    = "info"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	envFile     = ".env"
)

// NetworkModes lists the accepted values of NetworkMode.
var NetworkModes = []string{"mainnet", "testnet", "devnet"}

// ErrInvalidNetworkMode is returned for a mode outside NetworkModes.
var ErrInvalidNetworkMode = errors.New("invalid network mode")

// Load reads config from dir (or creates defaults). dir defaults to
// $STXTOKEN_CONFIG_DIR, then ~/.stxtoken. A .env file in the working
// directory or in dir is loaded first, then STXTOKEN_* variables override
// file values for this process only.
func Load(dir string) (*Config, error) {
	if env := os.Getenv(EnvConfigDir); env != "" {
		dir = env
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".stxtoken")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.configDir = dir

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk. Values that came from the environment
// are not persisted.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	out := c.persistable()
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the wallet store file.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// SetNetworkMode validates and sets the network mode.
func (c *Config) SetNetworkMode(mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !slices.Contains(NetworkModes, mode) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidNetworkMode, mode, strings.Join(NetworkModes, ", "))
	}
	c.NetworkMode = mode
	return nil
}

// SetContract validates and sets the token contract identifier.
func (c *Config) SetContract(id string) error {
	id = strings.TrimSpace(id)
	if _, err := clarity.ParseContractID(id); err != nil {
		return err
	}
	c.Contract = id
	return nil
}

// RefreshDelayDuration returns RefreshDelay as a duration, falling back to
// DefaultRefresh when unset.
func (c *Config) RefreshDelayDuration() time.Duration {
	if c.RefreshDelay <= 0 {
		return DefaultRefresh
	}
	return time.Duration(c.RefreshDelay) * time.Second
}

// FromEnv reports which settings were overridden by the environment.
func (c *Config) FromEnv() []string {
	var out []string
	for name, v := range map[string]string{
		"network_mode":   c.env.Network,
		"api_url":        c.env.APIURL,
		"api_key":        c.env.APIKey,
		"contract":       c.env.Contract,
		"default_wallet": c.env.Wallet,
		"log_level":      c.env.LogLevel,
	} {
		if v != "" {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		NetworkMode:   defaultMode,
		Contract:      DefaultContract,
		AssetName:     DefaultAssetName,
		AppName:       DefaultAppName,
		AppIcon:       DefaultAppIcon,
		RateLimit:     DefaultRateLimit,
		TxFee:         DefaultTxFee,
		RefreshDelay:  int(DefaultRefresh / time.Second),
		WatchInterval: defaultInterval,
		PriceCurrency: defaultCurrency,
		LogLevel:      defaultLevel,
		configDir:     dir,
	}
}

func (c *Config) applyEnv() error {
	for _, p := range []string{envFile, filepath.Join(c.configDir, envFile)} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	var env overlay
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	c.file = overlay{
		Network:  c.NetworkMode,
		APIURL:   c.APIURL,
		APIKey:   c.APIKey,
		Contract: c.Contract,
		Wallet:   c.DefaultWallet,
		LogLevel: c.LogLevel,
	}
	c.env = env

	if env.Network != "" {
		if err := c.SetNetworkMode(env.Network); err != nil {
			return fmt.Errorf("%s_NETWORK: %w", EnvPrefix, err)
		}
	}
	if env.Contract != "" {
		if err := c.SetContract(env.Contract); err != nil {
			return fmt.Errorf("%s_CONTRACT: %w", EnvPrefix, err)
		}
	}
	setIf(&c.APIURL, env.APIURL)
	setIf(&c.APIKey, env.APIKey)
	setIf(&c.DefaultWallet, env.Wallet)
	setIf(&c.LogLevel, env.LogLevel)
	return nil
}

// persistable returns a copy with environment values swapped back for the
// file values they shadowed, unless the caller changed them since.
func (c *Config) persistable() Config {
	out := *c
	for _, f := range []struct {
		cur       *string
		env, file string
	}{
		{&out.NetworkMode, strings.ToLower(c.env.Network), c.file.Network},
		{&out.APIURL, c.env.APIURL, c.file.APIURL},
		{&out.APIKey, c.env.APIKey, c.file.APIKey},
		{&out.Contract, c.env.Contract, c.file.Contract},
		{&out.DefaultWallet, c.env.Wallet, c.file.Wallet},
		{&out.LogLevel, c.env.LogLevel, c.file.LogLevel},
	} {
		if f.env != "" && *f.cur == strings.TrimSpace(f.env) {
			*f.cur = f.file
		}
	}
	return out
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
