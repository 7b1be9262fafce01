package gixen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"jo3qma.com/gixen/internal/domain/model"
)

const userAgent = "gixen-go/0.1"

// fetchBody は指定されたURLにGETを送り、レスポンス本文を文字列で返します
// 本文がエラー行なら ServiceError、通信の失敗なら TransportError を返します
func fetchBody(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/plain, text/html;q=0.9, */*;q=0.8")

	res, err := client.Do(req)
	if err != nil {
		return "", &model.TransportError{Op: "failed to fetch " + apiPath, Err: stripURL(err)}
	}
	defer func() { _ = res.Body.Close() }()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &model.TransportError{Op: "failed to read response body", Err: stripURL(err)}
	}
	body := string(b)

	// エラー行はHTTPステータスに関係なく優先する
	if err := checkError(body); err != nil {
		return "", err
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return "", &model.TransportError{Op: "failed to fetch " + apiPath, StatusCode: res.StatusCode}
	}
	return body, nil
}

// stripURL は *url.Error からURLを取り除きます
// URLには認証情報がそのまま入っているため、エラーメッセージに残さない
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
