package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3001 {
			t.Errorf("expected default port 3001, got %d", config.Server.Port)
		}
		if config.Ollama.BaseURL != "http://localhost:11434" {
			t.Errorf("unexpected default ollama base url: %s", config.Ollama.BaseURL)
		}
		if config.Ollama.Model != "llama3.1:8b" {
			t.Errorf("unexpected default model: %s", config.Ollama.Model)
		}
		if len(config.Credentials.Spotify.Scopes) == 0 {
			t.Error("expected default scopes to be set")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		content := `
[server]
host = "0.0.0.0"
port = 9000
client_origin = "http://example.test"
cookie_secret = "s3cret"

[credentials.spotify]
client_id = "abc"
client_secret = "def"
redirect_uri = "http://example.test/api/auth/callback"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Server.Port != 9000 {
			t.Errorf("expected port 9000, got %d", config.Server.Port)
		}
		if config.Credentials.Spotify.ClientID != "abc" {
			t.Errorf("expected client id 'abc', got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Addr() != "0.0.0.0:9000" {
			t.Errorf("unexpected addr: %s", config.Addr())
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("LoadConfig invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		os.WriteFile(path, []byte("not [valid"), 0644)

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for invalid toml")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
		t.Setenv("OLLAMA_MODEL", "mistral:7b")
		t.Setenv("PORT", "8088")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected env client id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Ollama.Model != "mistral:7b" {
			t.Errorf("expected env model, got %s", config.Ollama.Model)
		}
		if config.Server.Port != 8088 {
			t.Errorf("expected env port, got %d", config.Server.Port)
		}
	})

	t.Run("ApplyEnv ignores invalid port", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Server.Port != 3001 {
			t.Errorf("expected port to remain 3001, got %d", config.Server.Port)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}

		config.Server.Port = 0
		if err := config.Validate(); err == nil {
			t.Error("expected error for invalid port")
		}

		config = DefaultConfig()
		config.Server.ClientOrigin = ""
		if err := config.Validate(); err == nil {
			t.Error("expected error for missing client origin")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected config file to exist: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}
