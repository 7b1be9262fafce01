package gixen

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"jo3qma.com/gixen/internal/domain/model"
	"jo3qma.com/gixen/internal/domain/repository"
)

const (
	// DefaultBaseURL は Gixen のAPIサーバーです
	DefaultBaseURL = "https://www.gixen.com"
	// DefaultTimeout は1リクエストあたりのタイムアウトです
	DefaultTimeout = 30 * time.Second

	apiPath = "/api.php"
)

// Client は Gixen のAPIを呼び出して、スナイプの登録・削除・一覧取得を行う実装です
// 腐敗防止層（Anti-Corruption Layer）として、Gixen の古いテキスト形式の
// レスポンスをドメインモデルに変換する責務を持ちます
type Client struct {
	client   *http.Client
	baseURL  string
	username string
	password string
}

// Client が SnipeRepository を満たすことをコンパイル時に確認します
var _ repository.SnipeRepository = (*Client)(nil)

type clientConfig struct {
	baseURL    string
	timeout    time.Duration
	anchorPEM  []byte
	anchorFile string
	httpClient *http.Client
}

// Option は NewGixenClient の設定を変更します
type Option func(*clientConfig)

// WithTrustAnchor は証明書の検証をシステムの信頼ストアではなく、
// 指定されたPEMの証明書に対して行うようにします
func WithTrustAnchor(pem []byte) Option {
	return func(c *clientConfig) { c.anchorPEM = pem }
}

// WithTrustAnchorFile は WithTrustAnchor と同じですが、PEMをファイルから読み込みます
func WithTrustAnchorFile(path string) Option {
	return func(c *clientConfig) { c.anchorFile = path }
}

// WithTimeout はリクエストのタイムアウトを変更します
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithBaseURL は接続先を変更します（テストや検証環境向け）
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) { c.baseURL = baseURL }
}

// WithHTTPClient は http.Client をそのまま差し替えます
// 指定した場合、タイムアウトと証明書の設定は無視されます
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// NewGixenClient は新しい Client を作成します
// username と password は eBay の認証情報で、加工せずにそのまま送信します
func NewGixenClient(username, password string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		tlsConfig, err := cfg.tlsConfig()
		if err != nil {
			return nil, err
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsConfig
		hc = &http.Client{
			Timeout:   cfg.timeout,
			Transport: otelhttp.NewTransport(transport),
		}
	}

	return newGixenClient(hc, base, username, password), nil
}

// newGixenClient はテスト容易性のための内部コンストラクタです。
func newGixenClient(client *http.Client, baseURL, username, password string) *Client {
	return &Client{
		client:   client,
		baseURL:  baseURL,
		username: username,
		password: password,
	}
}

// tlsConfig は証明書検証の設定を組み立てます。検証を無効にすることはありません
func (c *clientConfig) tlsConfig() (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	pem := c.anchorPEM
	if len(pem) == 0 && c.anchorFile != "" {
		b, err := os.ReadFile(c.anchorFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read trust anchor: %w", err)
		}
		pem = b
	}
	if len(pem) == 0 {
		return cfg, nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("trust anchor contains no certificates")
	}
	cfg.RootCAs = pool
	return cfg, nil
}

// requestURL は認証情報と notags=1 を付けたURLに、操作ごとのパラメータを連結します
func (c *Client) requestURL(params map[string]any) string {
	u := fmt.Sprintf("%s%s?username=%s&password=%s&notags=1",
		c.baseURL, apiPath, url.QueryEscape(c.username), url.QueryEscape(c.password))
	if q := EncodeQuery(params, ""); q != "" {
		u += "&" + q
	}
	return u
}

func (c *Client) submit(ctx context.Context, params map[string]any) (string, error) {
	return fetchBody(ctx, c.client, c.requestURL(params))
}

// Snipe は itemID のオークションに maxBid（"23.50" のような金額）でスナイプを登録します
// 通貨は出品の通貨になります
func (c *Client) Snipe(ctx context.Context, itemID, maxBid string, opts model.SnipeOptions) (bool, error) {
	params := map[string]any{
		"itemid": itemID,
		"maxbid": maxBid,
	}
	if opts.SnipeGroup != 0 {
		params["snipegroup"] = opts.SnipeGroup
	}
	if opts.BidOffset != model.BidOffsetUnspecified {
		params["bidoffset"] = int(opts.BidOffset)
	}
	if opts.BidOffsetMirror != model.BidOffsetUnspecified {
		params["bidoffsetmirror"] = int(opts.BidOffsetMirror)
	}
	if opts.Quantity != 0 {
		params["quantity"] = opts.Quantity
	}

	body, err := c.submit(ctx, params)
	if err != nil {
		return false, err
	}
	return confirmed(body, keywordAdded), nil
}

// Unsnipe は itemID のスナイプを削除します
func (c *Client) Unsnipe(ctx context.Context, itemID string) (bool, error) {
	body, err := c.submit(ctx, map[string]any{"ditemid": itemID})
	if err != nil {
		return false, err
	}
	return confirmed(body, keywordDeleted), nil
}

// MainSnipes はメインサーバーに登録されているスナイプ一覧を取得します
func (c *Client) MainSnipes(ctx context.Context) ([]*model.SnipeRecord, error) {
	body, err := c.submit(ctx, map[string]any{"listsnipesmain": 1})
	if err != nil {
		return nil, err
	}
	return parseListing(body, false), nil
}

// MirrorSnipes はミラーサーバーに登録されているスナイプ一覧を取得します
func (c *Client) MirrorSnipes(ctx context.Context) ([]*model.SnipeRecord, error) {
	body, err := c.submit(ctx, map[string]any{"listsnipesmirror": 1})
	if err != nil {
		return nil, err
	}
	return parseListing(body, true), nil
}

// Snipes はメイン、ミラーの順に両方のスナイプ一覧を取得して連結します
// どちらかが失敗した場合は全体を失敗とします
func (c *Client) Snipes(ctx context.Context) ([]*model.SnipeRecord, error) {
	records, err := c.MainSnipes(ctx)
	if err != nil {
		return nil, err
	}
	mirror, err := c.MirrorSnipes(ctx)
	if err != nil {
		return nil, err
	}
	return append(records, mirror...), nil
}

// Purge は終了済みのスナイプを一覧から削除します
func (c *Client) Purge(ctx context.Context) (bool, error) {
	body, err := c.submit(ctx, map[string]any{"purgecompleted": 1})
	if err != nil {
		return false, err
	}
	return confirmed(body, keywordPurged), nil
}
