package stepfun

import (
	"context"
	"log/slog"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
	"github.com/shouni/go-stepfun/pkg/stepfun/host"
)

// ----------------------------------------------------------------------
// Factory 関数
// ----------------------------------------------------------------------

// NewLocalHost は設定から HTTP クライアントとローカルホストを組み立てます。
// 認証情報の検証は行いません。ノードの実行時、または TestCredential で検証されます。
func NewLocalHost(cfg Config, opts ...api.ClientOption) *host.Local {
	client := api.NewClient(cfg.HTTPTimeout, opts...)

	var hostOpts []host.Option
	if cfg.OutputDir != "" {
		hostOpts = append(hostOpts, host.WithOutputDir(cfg.OutputDir))
	}

	slog.Info("StepFun ホストの初期化が完了しました。",
		"base_url", cfg.Credential.BaseURL,
		"http_timeout", cfg.HTTPTimeout.String(),
		"output_dir", cfg.OutputDir)

	return host.NewLocal(client, cfg.Credential, hostOpts...)
}

// TestCredential は設定済みの認証情報で GET {baseUrl}/models を送信します。
func TestCredential(ctx context.Context, cfg Config, opts ...api.ClientOption) error {
	return credential.Test(ctx, api.NewClient(cfg.HTTPTimeout, opts...), cfg.Credential)
}
