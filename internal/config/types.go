package config

// Config holds all stxtoken configuration.
type Config struct {
	NetworkMode   string  `json:"network_mode"` // "mainnet" | "testnet" | "devnet"
	DefaultWallet string  `json:"default_wallet"`
	Contract      string  `json:"contract"`   // ADDR.contract-name of the SIP-010 token
	AssetName     string  `json:"asset_name"` // define-fungible-token name inside Contract
	AppName       string  `json:"app_name"`
	AppIcon       string  `json:"app_icon"`
	APIURL        string  `json:"api_url,omitempty"` // overrides the network's default API root
	APIKey        string  `json:"api_key,omitempty"`
	RateLimit     float64 `json:"rate_limit"`     // API requests per second
	TxFee         uint64  `json:"tx_fee"`         // micro-STX per transaction
	RefreshDelay  int     `json:"refresh_delay"`  // seconds before re-reading after a submit
	WatchInterval int     `json:"watch_interval"` // dashboard auto-refresh, seconds
	PriceCurrency string  `json:"price_currency"`
	LogLevel      string  `json:"log_level"`

	// internal: config dir path used for Save()
	configDir string
	// values from the environment, and what the file held before they applied
	env  overlay
	file overlay
}

// overlay is the set of settings the environment may override.
type overlay struct {
	Network  string `envconfig:"NETWORK"`
	APIURL   string `envconfig:"API_URL"`
	APIKey   string `envconfig:"API_KEY"`
	Contract string `envconfig:"CONTRACT"`
	Wallet   string `envconfig:"WALLET"`
	LogLevel string `envconfig:"LOG_LEVEL"`
}
