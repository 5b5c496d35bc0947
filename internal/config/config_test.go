package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}},
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Prompt.Providers = map[string]ProviderConfig{
		"nebius": {
			Kind:    ProviderOpenAI,
			APIKey:  "test-key",
			BaseURL: "https://api.example.com/v1/",
			Budget: BudgetConfig{
				DailyTokenLimit: 1000000,
				Action:          "invalid_action",
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `prompt.providers.nebius.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Prompt.Providers = map[string]ProviderConfig{
				"nebius": {Kind: ProviderOpenAI, APIKey: "test-key", Budget: BudgetConfig{Action: action}},
			}

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		db      DatabaseConfig
		wantErr bool
	}{
		{"redis", DatabaseConfig{Driver: DriverRedis, Addrs: []string{"r:6379"}}, false},
		{"valkey", DatabaseConfig{Driver: DriverValkey, Addrs: []string{"v:6379"}}, false},
		{"memory without addrs", DatabaseConfig{Driver: DriverMemory}, false},
		{"redis without addrs", DatabaseConfig{Driver: DriverRedis}, true},
		{"unknown", DatabaseConfig{Driver: "sqlite", Addrs: []string{"x"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database = tt.db
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Prompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  PromptConfig
		wantErr bool
	}{
		{"disabled", PromptConfig{}, false},
		{"selected openai", PromptConfig{
			Provider:  "nebius",
			Providers: map[string]ProviderConfig{"nebius": {Kind: ProviderOpenAI, Model: "m"}},
		}, false},
		{"gemini default model", PromptConfig{
			Provider:  "google",
			Providers: map[string]ProviderConfig{"google": {Kind: ProviderGemini, APIKey: "k"}},
		}, false},
		{"undefined provider", PromptConfig{Provider: "ghost"}, true},
		{"openai without model", PromptConfig{
			Provider:  "nebius",
			Providers: map[string]ProviderConfig{"nebius": {Kind: ProviderOpenAI}},
		}, true},
		{"unknown kind", PromptConfig{
			Providers: map[string]ProviderConfig{"x": {Kind: "anthropic"}},
		}, true},
		{"negative rps", PromptConfig{RateLimit: RateLimitConfig{RPS: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Prompt = tt.prompt
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_PhotosRequireBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Photos = PhotosConfig{Endpoint: "minio:9000"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing bucket")
	}

	cfg.Photos.Bucket = "photos"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Prompt: PromptConfig{
		Providers: map[string]ProviderConfig{"nebius": {APIKey: "k"}},
		RateLimit: RateLimitConfig{RPS: 2},
	}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.HTTP.MaxBodyBytes != 1<<20 {
		t.Errorf("expected MaxBodyBytes=1MiB, got %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Prompt.MaxTokens != 1024 {
		t.Errorf("expected MaxTokens=1024, got %d", cfg.Prompt.MaxTokens)
	}
	if cfg.Prompt.CacheTTLSec != 7*24*3600 {
		t.Errorf("expected CacheTTLSec=1w, got %d", cfg.Prompt.CacheTTLSec)
	}
	if cfg.Prompt.RateLimit.Burst != 1 {
		t.Errorf("expected Burst=1, got %d", cfg.Prompt.RateLimit.Burst)
	}
	if cfg.Prompt.Providers["nebius"].Kind != ProviderOpenAI {
		t.Errorf("expected Kind=openai, got %q", cfg.Prompt.Providers["nebius"].Kind)
	}
	if cfg.Photos.MaxBytes != 5<<20 {
		t.Errorf("expected photo MaxBytes=5MiB, got %d", cfg.Photos.MaxBytes)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverMemory, ReadinessTimeout: 15},
		Prompt:   PromptConfig{MaxTokens: 256, CacheTTLSec: 60},
		Photos:   PhotosConfig{MaxBytes: 1024},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected Driver=memory, got %q", cfg.Database.Driver)
	}
	if cfg.Prompt.MaxTokens != 256 || cfg.Prompt.CacheTTLSec != 60 {
		t.Errorf("prompt settings overridden: %+v", cfg.Prompt)
	}
	if cfg.Photos.MaxBytes != 1024 {
		t.Errorf("expected photo MaxBytes=1024, got %d", cfg.Photos.MaxBytes)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MATCHCRAFT_TEST_KEY", "sk-123")

	in := []byte("key: ${MATCHCRAFT_TEST_KEY}\nport: ${MATCHCRAFT_TEST_UNSET:-8080}\nempty: ${MATCHCRAFT_TEST_UNSET}")
	got := string(expandEnvVars(in))

	want := "key: sk-123\nport: 8080\nempty: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `http:
  port: ${MATCHCRAFT_TEST_PORT:-9090}
database:
  driver: memory
auth:
  admin_api_keys: ["root"]
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unit.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unit")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected memory driver, got %q", cfg.Database.Driver)
	}
	if len(cfg.Auth.AdminAPIKeys) != 1 || cfg.Auth.AdminAPIKeys[0] != "root" {
		t.Errorf("unexpected admin keys %v", cfg.Auth.AdminAPIKeys)
	}
}
