package config

import "time"

// Defaults for the token this tool was built around.
const (
	DefaultContract  = "ST3HQ67G6GN7SDY331HPK07313ZR6XSJCSEVQS7M8.simple-token"
	DefaultAssetName = "bebek-token"
	DefaultAppName   = "Bebek DApp"
	DefaultAppIcon   = "https://bebek.app/logo.png"
)

// Fee and rate defaults.
const (
	DefaultTxFee     = uint64(10_000) // 0.01 STX, enough for a contract call on testnet
	DefaultRateLimit = 5.0            // Hiro allows more with an API key
)

// Timeout constants used across cmd and the dashboard.
const (
	ReadTimeout    = 30 * time.Second // token info + balance load
	PingTimeout    = 5 * time.Second  // network ping
	DefaultRefresh = 8 * time.Second  // delay before re-reading chain state after a submit
)

// EnvPrefix is the prefix of environment overrides, e.g. STXTOKEN_NETWORK.
const EnvPrefix = "STXTOKEN"

// EnvConfigDir overrides the config directory.
const EnvConfigDir = "STXTOKEN_CONFIG_DIR"
