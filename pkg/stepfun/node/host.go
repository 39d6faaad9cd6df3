package node

import (
	"context"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
)

// ----------------------------------------------------------------------
// インターフェース
// ----------------------------------------------------------------------

// Host はノードが実行時に利用するホストの機能です。
// ノードのロジックはこのインターフェースにのみ依存します。
type Host interface {
	// FetchCredentials は設定済みの認証情報を返します。
	FetchCredentials(ctx context.Context) (credential.Credential, error)
	// SendAuthenticated は認証ヘッダーを付与してリクエストを送信します。
	SendAuthenticated(ctx context.Context, r api.Request) ([]byte, error)
	// Send は認証ヘッダーを付与せずにリクエストを送信します。
	Send(ctx context.Context, r api.Request) ([]byte, error)
	// ReadBinary はアイテムの指定フィールドのバイナリを、Data を埋めた状態で返します。
	ReadBinary(item Item, field string) (BinaryData, error)
	// WriteBinary は出力用のバイナリを準備します。
	WriteBinary(data []byte, fileName, mimeType string) (BinaryData, error)
}

// Executor はホストに登録されるノードです。
type Executor interface {
	Description() Description
	Execute(ctx context.Context, h Host, items []Item, params param.Values, opts ...RunOption) ([]OutputItem, error)
}
