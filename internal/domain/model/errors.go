package model

import "fmt"

// Gixen が返す代表的なエラーコード
const (
	CodeLoginFailed = 101
)

// ServiceError は Gixen が "ERROR (<code>): <message>" 形式で返したエラーです
// ログイン失敗や不正なパラメータなど、リモート側が明示的に拒否した場合に使います
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%d - %s", e.Code, e.Message)
}

// TransportError は通信そのものの失敗（DNS、TLSハンドシェイク、タイムアウト、
// 想定外のHTTPステータスなど）を表します。ServiceError とは区別します
type TransportError struct {
	Op         string
	StatusCode int // HTTPステータスで失敗した場合のみ設定
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
