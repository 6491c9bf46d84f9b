// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/datetime"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-calculator.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Rates     RatesConfig     `yaml:"rates,omitempty"`
	Storage   StorageConfig   `yaml:"storage,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Chat      ChatConfig      `yaml:"chat,omitempty"`
	Scraper   ScraperConfig   `yaml:"scraper,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, yaml
}

// ServerConfig defines runtime parameters for the HTTP server.
type ServerConfig struct {
	Address         string          `yaml:"address,omitempty"`
	Port            string          `yaml:"port,omitempty"` // overrides the port of Address when set
	MaxBodySize     string          `yaml:"maxBodySize,omitempty"`
	AllowedOrigins  []string        `yaml:"allowedOrigins,omitempty"`
	RateLimit       RateLimitConfig `yaml:"rateLimit,omitempty"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout,omitempty"`
	ReadTimeout     time.Duration   `yaml:"readTimeout,omitempty"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout,omitempty"`
	maxBodyBytes    int64
}

// RateLimitConfig bounds requests per client address on the chat endpoint.
type RateLimitConfig struct {
	Requests int           `yaml:"requests,omitempty"`
	Window   time.Duration `yaml:"window,omitempty"`
}

// RatesConfig describes where interest and exchange rates come from.
type RatesConfig struct {
	BaseRateName             string        `yaml:"baseRateName,omitempty"`
	BaseRate                 float64       `yaml:"baseRate,omitempty"`
	LastUpdated              string        `yaml:"lastUpdated,omitempty"`
	ExchangeRatesURL         string        `yaml:"exchangeRatesURL,omitempty"`
	FallbackExchangeRatesURL string        `yaml:"fallbackExchangeRatesURL,omitempty"`
	Timeout                  time.Duration `yaml:"timeout,omitempty"`
	CacheTTL                 time.Duration `yaml:"cacheTTL,omitempty"`
}

// StorageConfig locates the listings database.
type StorageConfig struct {
	SQLitePath string        `yaml:"sqlitePath,omitempty"`
	CacheTTL   time.Duration `yaml:"cacheTTL,omitempty"` // city statistics cache lifetime
}

// CacheConfig selects the cache backend. An empty RedisAddress selects the in-process cache.
type CacheConfig struct {
	RedisAddress  string `yaml:"redisAddress,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       int    `yaml:"redisDB,omitempty"`
	KeyPrefix     string `yaml:"keyPrefix,omitempty"`
}

// ChatConfig configures the chat completions proxy.
type ChatConfig struct {
	APIKey       string        `yaml:"apiKey,omitempty"`
	Endpoint     string        `yaml:"endpoint,omitempty"`
	Model        string        `yaml:"model,omitempty"`
	SystemPrompt string        `yaml:"systemPrompt,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	HistoryLimit int           `yaml:"historyLimit,omitempty"`
	SessionTTL   time.Duration `yaml:"sessionTTL,omitempty"`
}

// ScraperConfig configures the listings scraper process.
type ScraperConfig struct {
	Command     []string      `yaml:"command,omitempty"`
	WorkDir     string        `yaml:"workDir,omitempty"`
	Schedule    string        `yaml:"schedule,omitempty"` // cron spec, empty disables scheduled runs
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	OutputLines int           `yaml:"outputLines,omitempty"`
}

// TelemetryConfig configures trace export. An empty OTLPEndpoint disables export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty"`
	ServiceName  string `yaml:"serviceName,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("output.format", constants.OutputFormatPretty)

	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.port", "")
	v.SetDefault("server.maxBodySize", "64K")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.rateLimit.requests", 20)
	v.SetDefault("server.rateLimit.window", time.Minute)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second)

	v.SetDefault("rates.baseRateName", constants.DefaultBaseRateName)
	v.SetDefault("rates.baseRate", constants.DefaultBaseRatePercent)
	v.SetDefault("rates.lastUpdated", "2023-11-15")
	v.SetDefault("rates.exchangeRatesURL", "https://api.nbp.pl/api/exchangerates/tables/A?format=json")
	v.SetDefault("rates.fallbackExchangeRatesURL", "https://api.exchangerate.host/latest?base=EUR")
	v.SetDefault("rates.timeout", 5*time.Second)
	v.SetDefault("rates.cacheTTL", time.Hour)

	v.SetDefault("storage.sqlitePath", "otodom.db")
	v.SetDefault("storage.cacheTTL", time.Hour)

	v.SetDefault("cache.redisAddress", "")
	v.SetDefault("cache.redisPassword", "")
	v.SetDefault("cache.redisDB", 0)
	v.SetDefault("cache.keyPrefix", "mortgage:")

	v.SetDefault("chat.apiKey", "")
	v.SetDefault("chat.endpoint", "https://api.deepseek.com/chat/completions")
	v.SetDefault("chat.model", "deepseek-chat")
	v.SetDefault("chat.systemPrompt", "You are a helpful assistant named Jarvis.")
	v.SetDefault("chat.timeout", time.Minute)
	v.SetDefault("chat.historyLimit", 50)
	v.SetDefault("chat.sessionTTL", 24*time.Hour)

	v.SetDefault("scraper.command", []string{"python", "run_scraper.py"})
	v.SetDefault("scraper.workDir", "")
	v.SetDefault("scraper.schedule", "")
	v.SetDefault("scraper.timeout", 2*time.Hour)
	v.SetDefault("scraper.outputLines", 100)

	v.SetDefault("telemetry.otlpEndpoint", "")
	v.SetDefault("telemetry.serviceName", "mortgage-calculator")
	v.SetDefault("telemetry.insecure", false)
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Plain variable names used by container platforms.
	for key, env := range map[string]string{
		"server.port":           "PORT",
		"server.allowedOrigins": "CORS_ORIGIN",
		"chat.apiKey":           "DEEPSEEK_API_KEY",
	} {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return v, nil
}

// LoadEnvFile loads variables from a dotenv file without overriding the
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults, still subject to
// environment overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

// Default returns the configuration used when nothing is configured.
func Default() *Configuration {
	conf, err := LoadConfigurationFromReader(strings.NewReader(""))
	if err != nil {
		panic(err)
	}
	return conf
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := configuration.normalize(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func (c *Configuration) normalize() error {
	if c.Server.Port != "" {
		host := c.Server.Address
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		c.Server.Address = host + ":" + strings.TrimPrefix(c.Server.Port, ":")
	}
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}

	var origins []string
	for _, origin := range c.Server.AllowedOrigins {
		for _, part := range strings.Split(origin, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.Server.AllowedOrigins = origins

	size, err := ParseSize(c.Server.MaxBodySize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxBodySizeBytes
	}
	c.Server.maxBodyBytes = size
	return nil
}

// MaxBodySizeBytes returns the configured request body limit in bytes.
func (s ServerConfig) MaxBodySizeBytes() int64 {
	if s.maxBodyBytes <= 0 {
		return constants.DefaultMaxBodySizeBytes
	}
	return s.maxBodyBytes
}

// SetMaxBodySizeBytes overrides the configured request body limit.
func (s *ServerConfig) SetMaxBodySizeBytes(size int64) {
	if size > 0 {
		s.maxBodyBytes = size
		s.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

// AllowsAnyOrigin reports whether CORS is open to every origin.
func (s ServerConfig) AllowsAnyOrigin() bool {
	for _, origin := range s.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, fmt.Sprintf("output.format: %v; falling back to %s", err, constants.OutputFormatPretty))
	}
	if c.Rates.BaseRate < constants.MinInterestRatePercent || c.Rates.BaseRate > constants.MaxInterestRatePercent {
		warnings = append(warnings, fmt.Sprintf("rates.baseRate %.2f is outside %.0f-%.0f%%",
			c.Rates.BaseRate, constants.MinInterestRatePercent, constants.MaxInterestRatePercent))
	}
	if _, err := datetime.ParseDate(c.Rates.LastUpdated); err != nil {
		warnings = append(warnings, fmt.Sprintf("rates.lastUpdated: %v", err))
	}
	if c.Chat.APIKey == "" {
		warnings = append(warnings, "chat.apiKey is not set (DEEPSEEK_API_KEY); the chat endpoint will be unavailable")
	}
	if c.Server.RateLimit.Requests <= 0 || c.Server.RateLimit.Window <= 0 {
		warnings = append(warnings, "server.rateLimit is not positive; chat requests will not be rate limited")
	}
	if c.Scraper.Schedule != "" && len(c.Scraper.Command) == 0 {
		warnings = append(warnings, "scraper.schedule is set but scraper.command is empty")
	}
	if c.Rates.CacheTTL <= 0 {
		warnings = append(warnings, "rates.cacheTTL is not positive; exchange rates will be fetched on every request")
	}

	return warnings
}
