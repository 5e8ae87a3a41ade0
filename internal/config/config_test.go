package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithEnvSubstitution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "witness.json")
	data := `{
		"server": {"port": 8888},
		"engine": {"model": "${WITNESS_MODEL:tinyllama}", "log_dir": "logs"},
		"providers": [{"id": "local", "type": "ollama", "endpoint": "${OLLAMA_URL:http://localhost:11434}"}],
		"gateway": {"discord": {"enabled": true, "bot_token": "${DISCORD_TOKEN:}"}}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WITNESS_MODEL", "llama3")
	os.Unsetenv("OLLAMA_URL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Model != "llama3" {
		t.Errorf("model = %q, want env override", cfg.Engine.Model)
	}
	if cfg.Providers[0].Endpoint != "http://localhost:11434" {
		t.Errorf("endpoint = %q, want default", cfg.Providers[0].Endpoint)
	}
	if cfg.Gateway.Discord.BotToken != "" {
		t.Errorf("token = %q, want empty default", cfg.Gateway.Discord.BotToken)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "witness.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Model != "tinyllama" {
		t.Errorf("default model = %q", cfg.Engine.Model)
	}
	if cfg.Engine.LogDir != "logs" {
		t.Errorf("default log dir = %q", cfg.Engine.LogDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/witness.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
