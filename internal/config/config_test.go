package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

func TestLoadConfigurationMissingFileUsesDefaults(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration returned error: %v", err)
	}

	if conf.Server.Address != constants.DefaultServerAddress {
		t.Errorf("Server.Address = %q, expected %q", conf.Server.Address, constants.DefaultServerAddress)
	}
	if conf.Server.MaxBodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Errorf("MaxBodySizeBytes() = %d, expected %d", conf.Server.MaxBodySizeBytes(), constants.DefaultMaxBodySizeBytes)
	}
	if !conf.Server.AllowsAnyOrigin() {
		t.Errorf("AllowsAnyOrigin() = false, expected true for default origins %v", conf.Server.AllowedOrigins)
	}
	if conf.Rates.BaseRateName != constants.DefaultBaseRateName || conf.Rates.BaseRate != constants.DefaultBaseRatePercent {
		t.Errorf("Rates = %s %.2f, expected %s %.2f", conf.Rates.BaseRateName, conf.Rates.BaseRate,
			constants.DefaultBaseRateName, constants.DefaultBaseRatePercent)
	}
	if conf.Chat.Model != "deepseek-chat" {
		t.Errorf("Chat.Model = %q, expected deepseek-chat", conf.Chat.Model)
	}
	if conf.Chat.Timeout != time.Minute {
		t.Errorf("Chat.Timeout = %v, expected 1m", conf.Chat.Timeout)
	}
	if conf.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Output.Format = %q, expected %q", conf.Output.Format, constants.OutputFormatPretty)
	}
	if len(conf.Scraper.Command) != 2 {
		t.Errorf("Scraper.Command = %v, expected the default two-element command", conf.Scraper.Command)
	}
	if conf.Storage.CacheTTL != time.Hour {
		t.Errorf("Storage.CacheTTL = %v, expected 1h", conf.Storage.CacheTTL)
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
logging:
  level: debug
  format: json
server:
  address: "127.0.0.1:8080"
  maxBodySize: "1M"
  allowedOrigins:
    - https://example.com
    - https://app.example.com
  rateLimit:
    requests: 5
    window: 30s
rates:
  baseRateName: WIBOR 6M
  baseRate: 5.9
  cacheTTL: 10m
storage:
  sqlitePath: /tmp/listings.db
  cacheTTL: 2h
cache:
  redisAddress: localhost:6379
  redisDB: 2
chat:
  apiKey: secret
  historyLimit: 10
scraper:
  command: ["./scrape.sh", "--all"]
  schedule: "0 3 * * *"
telemetry:
  otlpEndpoint: localhost:4318
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration returned error: %v", err)
	}

	if conf.Logging.Level != "debug" || conf.Logging.Format != "json" {
		t.Errorf("Logging = %+v, expected debug/json", conf.Logging)
	}
	if conf.Server.Address != "127.0.0.1:8080" {
		t.Errorf("Server.Address = %q, expected 127.0.0.1:8080", conf.Server.Address)
	}
	if conf.Server.MaxBodySizeBytes() != 1024*1024 {
		t.Errorf("MaxBodySizeBytes() = %d, expected %d", conf.Server.MaxBodySizeBytes(), 1024*1024)
	}
	if conf.Server.AllowsAnyOrigin() || len(conf.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, expected the two configured origins", conf.Server.AllowedOrigins)
	}
	if conf.Server.RateLimit.Requests != 5 || conf.Server.RateLimit.Window != 30*time.Second {
		t.Errorf("RateLimit = %+v, expected 5 per 30s", conf.Server.RateLimit)
	}
	if conf.Rates.BaseRate != 5.9 || conf.Rates.CacheTTL != 10*time.Minute {
		t.Errorf("Rates = %+v, expected baseRate 5.9 and cacheTTL 10m", conf.Rates)
	}
	if conf.Storage.SQLitePath != "/tmp/listings.db" {
		t.Errorf("Storage.SQLitePath = %q", conf.Storage.SQLitePath)
	}
	if conf.Storage.CacheTTL != 2*time.Hour {
		t.Errorf("Storage.CacheTTL = %v, expected 2h independent of rates.cacheTTL", conf.Storage.CacheTTL)
	}
	if conf.Cache.RedisAddress != "localhost:6379" || conf.Cache.RedisDB != 2 {
		t.Errorf("Cache = %+v, expected localhost:6379 db 2", conf.Cache)
	}
	if conf.Chat.APIKey != "secret" || conf.Chat.HistoryLimit != 10 {
		t.Errorf("Chat = %+v, expected apiKey secret and historyLimit 10", conf.Chat)
	}
	if len(conf.Scraper.Command) != 2 || conf.Scraper.Command[0] != "./scrape.sh" {
		t.Errorf("Scraper.Command = %v, expected [./scrape.sh --all]", conf.Scraper.Command)
	}
	if conf.Scraper.Schedule != "0 3 * * *" {
		t.Errorf("Scraper.Schedule = %q", conf.Scraper.Schedule)
	}
	if conf.Telemetry.OTLPEndpoint != "localhost:4318" {
		t.Errorf("Telemetry.OTLPEndpoint = %q", conf.Telemetry.OTLPEndpoint)
	}
}

func TestLoadConfigurationEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example")
	t.Setenv("DEEPSEEK_API_KEY", "from-env")
	t.Setenv("RATES_BASERATE", "6.1")

	conf, err := LoadConfigurationFromReader(strings.NewReader("server:\n  address: \"0.0.0.0:3000\"\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader returned error: %v", err)
	}

	if conf.Server.Address != "0.0.0.0:8081" {
		t.Errorf("Server.Address = %q, expected 0.0.0.0:8081", conf.Server.Address)
	}
	if len(conf.Server.AllowedOrigins) != 2 || conf.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v, expected two trimmed origins", conf.Server.AllowedOrigins)
	}
	if conf.Chat.APIKey != "from-env" {
		t.Errorf("Chat.APIKey = %q, expected from-env", conf.Chat.APIKey)
	}
	if conf.Rates.BaseRate != 6.1 {
		t.Errorf("Rates.BaseRate = %.2f, expected 6.10", conf.Rates.BaseRate)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MORTGAGE_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MORTGAGE_TEST_DOTENV") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile returned error: %v", err)
	}
	if got := os.Getenv("MORTGAGE_TEST_DOTENV"); got != "loaded" {
		t.Errorf("MORTGAGE_TEST_DOTENV = %q, expected loaded", got)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadEnvFile on a missing file returned error: %v", err)
	}
}

func TestLoadConfigurationInvalidBodySize(t *testing.T) {
	_, err := LoadConfigurationFromReader(strings.NewReader("server:\n  maxBodySize: \"10G\"\n"))
	if err == nil {
		t.Fatal("expected error for unsupported size unit")
	}
}

func TestLoadConfigurationMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidateConfiguration(t *testing.T) {
	conf := Default()
	conf.Chat.APIKey = "set"

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("ValidateConfiguration() = %v, expected no warnings", warnings)
	}

	conf.Output.Format = "xml"
	conf.Chat.APIKey = ""
	conf.Rates.BaseRate = 20
	conf.Server.RateLimit.Requests = 0
	conf.Scraper.Schedule = "@daily"
	conf.Scraper.Command = nil
	conf.Rates.LastUpdated = "15.11.2023"

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 6 {
		t.Fatalf("ValidateConfiguration() returned %d warnings, expected 6: %v", len(warnings), warnings)
	}
	for _, want := range []string{"output.format", "rates.baseRate", "rates.lastUpdated", "chat.apiKey", "server.rateLimit", "scraper.schedule"} {
		found := false
		for _, w := range warnings {
			if strings.HasPrefix(w, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected a warning starting with %q in %v", want, warnings)
		}
	}
}

func TestSetMaxBodySizeBytes(t *testing.T) {
	conf := Default()
	conf.Server.SetMaxBodySizeBytes(2048)
	if conf.Server.MaxBodySizeBytes() != 2048 {
		t.Errorf("MaxBodySizeBytes() = %d, expected 2048", conf.Server.MaxBodySizeBytes())
	}
	conf.Server.SetMaxBodySizeBytes(0)
	if conf.Server.MaxBodySizeBytes() != 2048 {
		t.Errorf("SetMaxBodySizeBytes(0) changed limit to %d", conf.Server.MaxBodySizeBytes())
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"", constants.DefaultMaxBodySizeBytes, false},
		{"512", 512, false},
		{"512B", 512, false},
		{"64K", 64 * 1024, false},
		{"64kb", 64 * 1024, false},
		{"10M", 10 * 1024 * 1024, false},
		{" 2 MB ", 2 * 1024 * 1024, false},
		{"abc", 0, true},
		{"10G", 0, true},
		{"K", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSize(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}
