package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the CarbonQuest API server configuration
type Config struct {
	// Demo runs the server on in-memory stores without a database or a
	// chain connection. Approvals record a token URI but mint nothing.
	Demo        bool              `mapstructure:"demo"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Ethereum    EthereumConfig    `mapstructure:"ethereum"`
	Images      ImagesConfig      `mapstructure:"images"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// AuthConfig contains session and bootstrap-admin settings
type AuthConfig struct {
	// JWTSecret signs session bearer tokens (HS256).
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// AdminEmail/AdminPassword seed the bootstrap admin account. The account
	// is created once at startup if it does not already exist, so the system
	// is never left without an administrator.
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// EthereumConfig contains chain client settings for NFT minting
type EthereumConfig struct {
	RPCURL           string        `mapstructure:"rpc_url"`
	ChainID          int64         `mapstructure:"chain_id"`
	ContractAddress  string        `mapstructure:"contract_address"`
	MinterPrivateKey string        `mapstructure:"minter_private_key"`
	GasLimit         uint64        `mapstructure:"gas_limit"`
	MaxGasPrice      string        `mapstructure:"max_gas_price"`
	MintTimeout      time.Duration `mapstructure:"mint_timeout"`
	// TokenURIBase prefixes derived token URIs, e.g. "ipfs://QmCarbonQuest/".
	TokenURIBase string `mapstructure:"token_uri_base"`
}

// ImagesConfig contains proof-image blob storage settings
type ImagesConfig struct {
	// Backend selects the blob store: "s3" or "memory" (demo mode).
	Backend  string `mapstructure:"backend"`
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	// URLBase is prepended to object keys to form display URLs.
	URLBase string `mapstructure:"url_base"`
}

// LeaderboardConfig contains leaderboard snapshot settings
type LeaderboardConfig struct {
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
	Interval       time.Duration `mapstructure:"interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "carbonquest")

	// Auth defaults
	viper.SetDefault("auth.session_ttl", "24h")
	viper.SetDefault("auth.admin_email", "admin@carbonquest.com")
	viper.SetDefault("auth.admin_password", "adminpassword")

	// Ethereum defaults (Sepolia testnet)
	viper.SetDefault("ethereum.chain_id", 11155111)
	viper.SetDefault("ethereum.gas_limit", 300000)
	viper.SetDefault("ethereum.mint_timeout", "2m")
	viper.SetDefault("ethereum.token_uri_base", "ipfs://carbonquest/")

	// Images defaults
	viper.SetDefault("images.backend", "s3")
	viper.SetDefault("images.bucket", "carbonquest-proofs")
	viper.SetDefault("images.region", "us-east-1")
	viper.SetDefault("images.url_base", "/images/")

	// Leaderboard defaults
	viper.SetDefault("leaderboard.refresh_timeout", "30s")
	viper.SetDefault("leaderboard.interval", "5m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if config.Demo {
		return nil
	}
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Ethereum.RPCURL == "" {
		return fmt.Errorf("ethereum.rpc_url is required")
	}
	if config.Ethereum.ContractAddress == "" {
		return fmt.Errorf("ethereum.contract_address is required")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
