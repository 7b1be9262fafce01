package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"jo3qma.com/gixen/internal/config"
	"jo3qma.com/gixen/internal/infrastructure/gixen"
	"jo3qma.com/gixen/internal/usecase"
)

// rootOptions はすべてのサブコマンドで共通のフラグです
type rootOptions struct {
	configPath  string
	username    string
	password    string
	baseURL     string
	trustAnchor string
	verbose     bool
}

// NewRootCmd はサブコマンドを登録したルートコマンドを作成します
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "gixen",
		Short:         "Manage Gixen auction snipes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.toml (default ~/.config/gixen/config.toml)")
	flags.StringVarP(&opts.username, "username", "u", "", "eBay username (overrides config and GIXEN_USERNAME)")
	flags.StringVarP(&opts.password, "password", "p", "", "eBay password (overrides config and GIXEN_PASSWORD)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Gixen API base url")
	flags.StringVar(&opts.trustAnchor, "trust-anchor", "", "PEM file to verify the server certificate against")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "write debug logs to stderr")

	root.AddCommand(
		newSnipeCmd(opts),
		newUnsnipeCmd(opts),
		newListCmd(opts),
		newPurgeCmd(opts),
	)
	return root
}

// Execute はコマンドラインを解析して実行します
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newUsecase は設定ファイル・環境変数・フラグの順に設定を解決し、ユースケースを組み立てます
// 返したロガーは呼び出し側で Sync してください
func (o *rootOptions) newUsecase() (*usecase.SnipeUsecase, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.username != "" {
		cfg.Username = o.username
	}
	if o.password != "" {
		cfg.Password = o.password
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.trustAnchor != "" {
		cfg.TrustAnchor = o.trustAnchor
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, nil, fmt.Errorf("username and password are required")
	}

	logger := zap.NewNop()
	if o.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, nil, fmt.Errorf("create logger: %w", err)
		}
	}

	clientOpts := []gixen.Option{
		gixen.WithBaseURL(cfg.BaseURL),
		gixen.WithTimeout(cfg.Timeout),
	}
	if cfg.TrustAnchor != "" {
		clientOpts = append(clientOpts, gixen.WithTrustAnchorFile(cfg.TrustAnchor))
	}
	client, err := gixen.NewGixenClient(cfg.Username, cfg.Password, clientOpts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("gixen client ready",
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("pinned", cfg.TrustAnchor != ""),
		zap.Duration("timeout", cfg.Timeout),
	)
	return usecase.NewSnipeUsecase(client), logger, nil
}
