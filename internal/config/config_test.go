package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_missingFileUsesDefaults(t *testing.T) {
	t.Setenv("GIXEN_USERNAME", "")
	os.Unsetenv("GIXEN_USERNAME")
	t.Setenv("GIXEN_PASSWORD", "")
	os.Unsetenv("GIXEN_PASSWORD")
	t.Setenv("PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Fatalf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, defaultBaseURL)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("Timeout = %v, want %v", cfg.Timeout, defaultTimeout)
	}
	if cfg.Username != "" || cfg.Password != "" || cfg.TrustAnchor != "" {
		t.Fatalf("unexpected credentials: %+v", cfg)
	}
}

func TestLoad_parsesFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `listen_addr = "127.0.0.1:9000"
base_url = "https://gixen.test"
username = "alice"
password = " spaced pass "
trust_anchor = "` + filepath.Join(dir, "gixen.pem") + `"
timeout = "5s"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GIXEN_USERNAME", "")
	os.Unsetenv("GIXEN_USERNAME")
	t.Setenv("GIXEN_PASSWORD", "from-env")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.BaseURL != "https://gixen.test" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Username != "alice" {
		t.Fatalf("Username = %q, want alice", cfg.Username)
	}
	if cfg.Password != "from-env" {
		t.Fatalf("Password = %q, want from-env", cfg.Password)
	}
	if cfg.TrustAnchor != filepath.Join(dir, "gixen.pem") {
		t.Fatalf("TrustAnchor = %q", cfg.TrustAnchor)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v, want 5s", cfg.Timeout)
	}
}

func TestLoad_portEnv(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != ":7000" {
		t.Fatalf("ListenAddr = %q, want :7000", cfg.ListenAddr)
	}
}

func TestLoad_rejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad toml":         "username = ",
		"bad timeout":      `timeout = "soon"`,
		"negative timeout": `timeout = "-1s"`,
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
