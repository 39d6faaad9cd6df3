package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// ----------------------------------------------------------------------
// クライアント構造体とコンストラクタ
// ----------------------------------------------------------------------

// Doer は組み立て済みの *http.Request を実行し、ボディを返す能力を抽象化します。
// httpkit.Client がこれを満たします。
type Doer interface {
	DoRequest(req *http.Request) ([]byte, error)
}

// Client は StepFun API へのリクエストを送信する共有HTTPヘルパーです。
// リトライやステータスチェックは httpkit.Client に委譲し、このパッケージでは実装しません。
type Client struct {
	doer Doer
}

// ClientOption は Client の設定を変更するための関数です。
type ClientOption func(*Client)

// WithDoer は HTTP 実行部分を差し替えます。
func WithDoer(d Doer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// NewClient は新しい Client を初期化します。
func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		doer: httpkit.New(timeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ----------------------------------------------------------------------
// ヘルパー: API URLの構築
// ----------------------------------------------------------------------

// BuildURL はベースURLとエンドポイントを結合します。
// ベースURL末尾やエンドポイント先頭のスラッシュの数に関わらず、区切りはちょうど1つになります。
func BuildURL(baseURL, endpoint string, query url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", &ErrAPINetwork{Endpoint: endpoint, WrappedErr: fmt.Errorf("API URLのパース失敗: %w", err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &ErrAPINetwork{Endpoint: endpoint, WrappedErr: fmt.Errorf("API URLが絶対URLではありません: %q", baseURL)}
	}

	u = u.JoinPath(endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}

// ----------------------------------------------------------------------
// API呼び出しロジック
// ----------------------------------------------------------------------

// Send はリクエストを実行し、レスポンスボディをそのまま返します。
// 認証ヘッダーの付与は呼び出し側の責務です。
func (c *Client) Send(ctx context.Context, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: r.URL, WrappedErr: fmt.Errorf("リクエスト構築失敗: %w", err)}
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	slog.DebugContext(ctx, "APIリクエスト送信", "method", method, "url", r.URL, "body_bytes", len(r.Body))

	respBody, err := c.doer.DoRequest(req)
	if err != nil {
		netErr := &ErrAPINetwork{Endpoint: r.URL, WrappedErr: err}
		// 4xx はリトライされずステータスとボディがそのまま届く
		var httpErr *httpkit.NonRetryableHTTPError
		if errors.As(err, &httpErr) {
			netErr.StatusCode = httpErr.StatusCode
			netErr.Body = httpErr.Body
		}
		slog.WarnContext(ctx, "APIリクエスト失敗", "url", r.URL, "status", netErr.StatusCode, "error", err)
		return nil, netErr
	}

	slog.DebugContext(ctx, "APIレスポンス受信", "url", r.URL, "body_bytes", len(respBody))
	return respBody, nil
}
