// Package nodetest はノードのテスト用に node.Host の偽実装を提供します。
package nodetest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
)

// Responder はリクエストに対する応答を返します。
type Responder func(r api.Request) ([]byte, error)

// Host は送信されたリクエストを記録し、Responder で応答する node.Host です。
type Host struct {
	Credential    credential.Credential
	CredentialErr error

	// Authenticated は SendAuthenticated、Plain は Send に対する応答です。
	Authenticated Responder
	Plain         Responder

	mu                sync.Mutex
	authRequests      []api.Request
	plainRequests     []api.Request
	written           []node.BinaryData
	credentialFetches int
}

var _ node.Host = (*Host)(nil)

// New は有効な認証情報を持つ Host を返します。
func New() *Host {
	return &Host{
		Credential: credential.Credential{APIKey: "sk-test", BaseURL: "https://api.example.com/v1/"},
	}
}

func (h *Host) FetchCredentials(_ context.Context) (credential.Credential, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.credentialFetches++
	return h.Credential, h.CredentialErr
}

func (h *Host) SendAuthenticated(_ context.Context, r api.Request) ([]byte, error) {
	r = r.Clone()
	h.Credential.Authenticate(&r)

	h.mu.Lock()
	h.authRequests = append(h.authRequests, r)
	h.mu.Unlock()

	if h.Authenticated == nil {
		return nil, fmt.Errorf("unexpected authenticated request: %s %s", r.Method, r.URL)
	}
	return h.Authenticated(r)
}

func (h *Host) Send(_ context.Context, r api.Request) ([]byte, error) {
	r = r.Clone()

	h.mu.Lock()
	h.plainRequests = append(h.plainRequests, r)
	h.mu.Unlock()

	if h.Plain == nil {
		return nil, fmt.Errorf("unexpected request: %s %s", r.Method, r.URL)
	}
	return h.Plain(r)
}

func (h *Host) ReadBinary(item node.Item, field string) (node.BinaryData, error) {
	bd, ok := item.Binary[field]
	if !ok {
		return node.BinaryData{}, fmt.Errorf("binary property %q not found", field)
	}
	return bd, nil
}

func (h *Host) WriteBinary(data []byte, fileName, mimeType string) (node.BinaryData, error) {
	bd := node.BinaryData{
		ID:            fmt.Sprintf("bin-%d", len(h.Written())),
		Data:          data,
		FileName:      fileName,
		MimeType:      mimeType,
		FileExtension: strings.TrimPrefix(filepath.Ext(fileName), "."),
		FileSize:      len(data),
	}

	h.mu.Lock()
	h.written = append(h.written, bd)
	h.mu.Unlock()
	return bd, nil
}

// AuthenticatedRequests は SendAuthenticated に渡されたリクエストを返します。
func (h *Host) AuthenticatedRequests() []api.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]api.Request(nil), h.authRequests...)
}

// PlainRequests は Send に渡されたリクエストを返します。
func (h *Host) PlainRequests() []api.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]api.Request(nil), h.plainRequests...)
}

// NetworkCalls はネットワーク呼び出しの総数を返します。
func (h *Host) NetworkCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.authRequests) + len(h.plainRequests)
}

// Written は WriteBinary で準備されたバイナリを返します。
func (h *Host) Written() []node.BinaryData {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]node.BinaryData(nil), h.written...)
}

// CredentialFetches は FetchCredentials の呼び出し回数を返します。
func (h *Host) CredentialFetches() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.credentialFetches
}
