package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config はサーバーとCLIが使う設定です
type Config struct {
	ListenAddr  string
	BaseURL     string
	Username    string
	Password    string
	TrustAnchor string // 証明書を固定する場合のPEMファイル。空ならシステムの信頼ストア
	Timeout     time.Duration
}

const (
	defaultConfigPath = "~/.config/gixen/config.toml"
	defaultListenAddr = ":8080"
	defaultBaseURL    = "https://www.gixen.com"
	defaultTimeout    = 30 * time.Second
)

// Load は設定ファイルを読み込みます。ファイルがなければデフォルト値を使います
// 環境変数 GIXEN_USERNAME / GIXEN_PASSWORD / PORT はファイルの値より優先します
func Load(path string) (Config, error) {
	cfg := Config{
		ListenAddr: defaultListenAddr,
		BaseURL:    defaultBaseURL,
		Timeout:    defaultTimeout,
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	bytes, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if bytes != nil {
		if err := cfg.apply(bytes); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return bytes, nil
}

func (c *Config) apply(bytes []byte) error {
	var raw struct {
		ListenAddr  string `toml:"listen_addr"`
		BaseURL     string `toml:"base_url"`
		Username    string `toml:"username"`
		Password    string `toml:"password"`
		TrustAnchor string `toml:"trust_anchor"`
		Timeout     string `toml:"timeout"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		c.BaseURL = v
	}
	// 認証情報は加工しない
	c.Username = raw.Username
	c.Password = raw.Password

	if v := strings.TrimSpace(raw.TrustAnchor); v != "" {
		expanded, err := expandPath(v)
		if err != nil {
			return fmt.Errorf("trust_anchor: %w", err)
		}
		c.TrustAnchor = expanded
	}
	if v := strings.TrimSpace(raw.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse timeout %q: %w", v, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive: %q", v)
		}
		c.Timeout = d
	}
	return nil
}

func applyEnv(c *Config) {
	if v, ok := os.LookupEnv("GIXEN_USERNAME"); ok {
		c.Username = v
	}
	if v, ok := os.LookupEnv("GIXEN_PASSWORD"); ok {
		c.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		c.ListenAddr = ":" + v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
