// Package host は CLI などから利用するローカル実行用の node.Host 実装を提供します。
package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
)

// Local は設定済みの認証情報と api.Sender でノードを実行するホストです。
// outputDir が設定されている場合、WriteBinary はファイルにも書き出します。
type Local struct {
	sender    api.Sender
	cred      credential.Credential
	outputDir string
}

var _ node.Host = (*Local)(nil)

// Option は Local の設定を変更するための関数です。
type Option func(*Local)

// WithOutputDir は出力バイナリの保存先ディレクトリを設定します。
func WithOutputDir(dir string) Option {
	return func(l *Local) {
		l.outputDir = dir
	}
}

// NewLocal は Local を初期化します。
func NewLocal(sender api.Sender, cred credential.Credential, opts ...Option) *Local {
	l := &Local{
		sender: sender,
		cred:   cred,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) FetchCredentials(_ context.Context) (credential.Credential, error) {
	return l.cred, nil
}

func (l *Local) SendAuthenticated(ctx context.Context, r api.Request) ([]byte, error) {
	r = r.Clone()
	l.cred.Authenticate(&r)
	return l.sender.Send(ctx, r)
}

func (l *Local) Send(ctx context.Context, r api.Request) ([]byte, error) {
	return l.sender.Send(ctx, r)
}

// ReadBinary はアイテムのバイナリを返します。
// Data が空で Path がある場合はファイルを読み込み、MIME タイプが未設定なら内容から推定します。
func (l *Local) ReadBinary(item node.Item, field string) (node.BinaryData, error) {
	bd, ok := item.Binary[field]
	if !ok {
		return node.BinaryData{}, &ErrBinaryNotFound{Field: field}
	}

	if bd.Data == nil && bd.Path != "" {
		data, err := os.ReadFile(bd.Path)
		if err != nil {
			return node.BinaryData{}, fmt.Errorf("バイナリファイル %s の読み込みに失敗しました: %w", bd.Path, err)
		}
		bd.Data = data
		if bd.FileName == "" {
			bd.FileName = filepath.Base(bd.Path)
		}
	}
	if bd.Data == nil {
		return node.BinaryData{}, &ErrBinaryNotFound{Field: field}
	}

	if bd.MimeType == "" {
		mt := mimetype.Detect(bd.Data)
		bd.MimeType = mt.String()
		if bd.FileExtension == "" {
			bd.FileExtension = strings.TrimPrefix(mt.Extension(), ".")
		}
		slog.Debug("バイナリの MIME タイプを推定しました", "field", field, "mime_type", bd.MimeType)
	}
	if bd.FileExtension == "" && bd.FileName != "" {
		bd.FileExtension = strings.TrimPrefix(filepath.Ext(bd.FileName), ".")
	}
	bd.FileSize = len(bd.Data)
	return bd, nil
}

// WriteBinary は出力バイナリを準備します。outputDir が設定されていれば <id先頭8文字>-<fileName> として保存します。
func (l *Local) WriteBinary(data []byte, fileName, mimeType string) (node.BinaryData, error) {
	id := uuid.NewString()
	bd := node.BinaryData{
		ID:            id,
		Data:          data,
		FileName:      fileName,
		MimeType:      mimeType,
		FileExtension: strings.TrimPrefix(filepath.Ext(fileName), "."),
		FileSize:      len(data),
	}

	if l.outputDir == "" {
		return bd, nil
	}

	if err := os.MkdirAll(l.outputDir, 0o755); err != nil {
		return node.BinaryData{}, fmt.Errorf("出力ディレクトリ %s の作成に失敗しました: %w", l.outputDir, err)
	}
	path := filepath.Join(l.outputDir, id[:8]+"-"+filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return node.BinaryData{}, fmt.Errorf("バイナリファイル %s の書き込みに失敗しました: %w", path, err)
	}
	bd.Path = path

	slog.Info("出力バイナリを保存しました", "path", path, "bytes", len(data))
	return bd, nil
}
