package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
)

// ----------------------------------------------------------------------
// 音声一覧の動的ロード
// ----------------------------------------------------------------------

// LoadVoices は /audio/system_voices から音声一覧を取得し、選択肢に変換します。
//
// UIの応答性を優先するため、認証情報の取得・通信・解析のいずれかに失敗した場合は
// エラーを返さず空の一覧を返します。
func LoadVoices(ctx context.Context, h node.Host) []param.Option {
	options, err := fetchVoices(ctx, h)
	if err != nil {
		slog.WarnContext(ctx, "音声一覧の取得に失敗したため空の一覧を返します", "error", err)
		return []param.Option{}
	}
	slog.DebugContext(ctx, "音声一覧をロードしました", "voices_count", len(options))
	return options
}

func fetchVoices(ctx context.Context, h node.Host) ([]param.Option, error) {
	cred, err := h.FetchCredentials(ctx)
	if err != nil {
		return nil, err
	}

	u, err := cred.URL(voiceListEndpoint, url.Values{"model": {voiceListModel}})
	if err != nil {
		return nil, err
	}

	// 共有の認証ヘルパーを経由せず、Bearer ヘッダーを直接付与する
	header := http.Header{}
	header.Set("Authorization", cred.BearerToken())

	body, err := h.Send(ctx, api.Request{Method: http.MethodGet, URL: u, Header: header})
	if err != nil {
		return nil, err
	}

	return parseVoices(body)
}

// parseVoices は応答を選択肢に変換します。
// 配列そのもの、または data / voices に配列を持つオブジェクトを受け付け、それ以外は空の一覧になります。
func parseVoices(body []byte) ([]param.Option, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, &api.ErrInvalidJSON{Details: voiceListEndpoint + " 応答", WrappedErr: err}
	}

	var entries any
	switch v := parsed.(type) {
	case []any:
		entries = v
	case map[string]any:
		entries = firstPresent(v, "data", "voices")
	}

	list, ok := entries.([]any)
	if !ok {
		return []param.Option{}, nil
	}

	options := make([]param.Option, 0, len(list))
	for _, e := range list {
		voice, ok := e.(map[string]any)
		if !ok {
			continue
		}
		options = append(options, param.Option{
			Name:  asString(firstPresent(voice, "name", "display_name", "id")),
			Value: asString(firstPresent(voice, "id", "voice_id", "name")),
		})
	}
	return options, nil
}

// firstPresent は keys のうち最初に値 (null 以外) を持つものを返します。
func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
