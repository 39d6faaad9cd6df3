package credential

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
)

const (
	// Name はノードが参照する認証情報の種別名です。
	Name = "stepFunApi"

	DefaultBaseURL   = "https://api.stepfun.ai/v1"
	AlternateBaseURL = "https://api.stepfun.com/v1"

	testEndpoint = "/models"
)

// Credential は StepFun API を呼び出すための認証情報です。実行中は読み取り専用として扱います。
type Credential struct {
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl"`
}

// Definition は認証情報の登録メタデータです。
type Definition struct {
	Name             string        `json:"name"`
	DisplayName      string        `json:"displayName"`
	DocumentationURL string        `json:"documentationUrl"`
	Icon             string        `json:"icon"`
	SupportedNodes   []string      `json:"supportedNodes"`
	Properties       []param.Field `json:"properties"`
}

// Describe は認証情報の定義を返します。
func Describe() Definition {
	return Definition{
		Name:             Name,
		DisplayName:      "Stepfun AI API Key",
		DocumentationURL: "https://platform.stepfun.ai/",
		Icon:             "file:stepfun.png",
		SupportedNodes:   []string{"stepFunTts", "stepFunAsr"},
		Properties: []param.Field{
			{
				Name:        "apiKey",
				DisplayName: "API Key",
				Type:        param.TypeSecret,
				Default:     "",
				Required:    true,
				Description: "Your Stepfun.ai API Key. You can find your API Key at https://platform.stepfun.ai/interface-key",
			},
			{
				Name:        "baseUrl",
				DisplayName: "Base URL",
				Type:        param.TypeString,
				Default:     DefaultBaseURL,
				Required:    true,
				Description: "Use " + AlternateBaseURL + " for the mainland China endpoint",
			},
		},
	}
}

// Validate はネットワーク呼び出しの前に設定値を検証します。
func (c Credential) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ErrInvalidCredential{Field: "apiKey", Reason: "API Keyが設定されていません"}
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return &ErrInvalidCredential{Field: "baseUrl", Reason: "Base URLが設定されていません"}
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ErrInvalidCredential{Field: "baseUrl", Reason: fmt.Sprintf("http(s) の絶対URLではありません: %q", c.BaseURL)}
	}
	return nil
}

// URL はベースURLにエンドポイントを結合したURLを返します。
func (c Credential) URL(endpoint string, query url.Values) (string, error) {
	return api.BuildURL(c.BaseURL, endpoint, query)
}

// BearerToken は Authorization ヘッダーの値を返します。
func (c Credential) BearerToken() string {
	return "Bearer " + c.APIKey
}

// Authenticate はリクエストに Bearer 認証ヘッダーを付与します。
func (c Credential) Authenticate(r *api.Request) {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Header.Set("Authorization", c.BearerToken())
}

// Test は GET {baseUrl}/models を送信し、接続と認証情報を確認します。
// エラーステータスでなければ成功です。失敗時は HTTP ヘルパーのエラーをそのまま返します。
func Test(ctx context.Context, s api.Sender, c Credential) error {
	if err := c.Validate(); err != nil {
		return err
	}

	u, err := c.URL(testEndpoint, nil)
	if err != nil {
		return err
	}

	req := api.Request{Method: http.MethodGet, URL: u}
	c.Authenticate(&req)

	if _, err := s.Send(ctx, req); err != nil {
		return err
	}

	slog.InfoContext(ctx, "認証情報のテストに成功しました", "url", u)
	return nil
}
