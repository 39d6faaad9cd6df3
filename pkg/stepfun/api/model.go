package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// ----------------------------------------------------------------------
// データモデル (リクエスト)
// ----------------------------------------------------------------------

// Request は送信前のHTTPリクエストを表します。
// ボディはバイト列で保持するため、HTTPヘルパーによる再送でも安全に読み直せます。
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Sender はリクエストを送信してレスポンスボディを返す能力を抽象化します。
// Client がこれを満たします。
type Sender interface {
	Send(ctx context.Context, r Request) ([]byte, error)
}

// NewJSONRequest は v をJSONエンコードしたボディを持つリクエストを構築します。
func NewJSONRequest(method, url string, v any) (Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Request{}, &ErrInvalidJSON{Details: "リクエストボディのエンコード", WrappedErr: err}
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return Request{Method: method, URL: url, Header: header, Body: body}, nil
}

// Clone はヘッダーとボディを複製したリクエストを返します。
func (r Request) Clone() Request {
	out := r
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = http.Header{}
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}
