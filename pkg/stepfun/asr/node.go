package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
)

// Node は音声をテキストに書き起こすノードです。
type Node struct{}

var _ node.Executor = (*Node)(nil)

// New は ASR ノードを返します。
func New() *Node {
	return &Node{}
}

// Description はノードの登録メタデータを返します。
func (n *Node) Description() node.Description {
	return node.Description{
		DisplayName:      "StepFun ASR",
		Name:             NodeName,
		Group:            []string{"transform"},
		Version:          1,
		Description:      "Speech-to-text via StepFun",
		Subtitle:         `={{$parameter["model"]}}`,
		DocumentationURL: "https://platform.stepfun.com/",
		Icon:             "file:stepfun.svg",
		Categories:       []string{"AI", "Audio"},
		Aliases:          []string{"asr", "speech to text", "speech-to-text", "transcribe", "transcription", "stt"},
		DefaultName:      "StepFun ASR",
		Credentials:      []node.CredentialRef{{Name: credential.Name, Required: true}},
		Properties:       Fields(),
	}
}

// Fields はノードのパラメータ定義を返します。
func Fields() []param.Field {
	return []param.Field{
		{
			Name:        paramAudioSource,
			DisplayName: "Audio Source",
			Type:        param.TypeOptions,
			Default:     audioSourceBinary,
			Options: []param.Option{
				{Name: "Binary", Value: audioSourceBinary},
				{Name: "URL", Value: audioSourceURL},
			},
		},
		{
			Name:        paramBinaryPropertyName,
			DisplayName: "Binary Property",
			Type:        param.TypeString,
			Default:     DefaultBinaryPropertyName,
			Required:    true,
			ShowWhen:    map[string][]string{paramAudioSource: {audioSourceBinary}},
		},
		{
			Name:        paramAudioURL,
			DisplayName: "Audio URL",
			Type:        param.TypeString,
			Default:     "",
			Required:    true,
			ShowWhen:    map[string][]string{paramAudioSource: {audioSourceURL}},
		},
		{
			Name:        paramEndpointPath,
			DisplayName: "Endpoint Path",
			Type:        param.TypeString,
			Default:     DefaultEndpointPath,
			Required:    true,
		},
		{
			Name:        paramModel,
			DisplayName: "Model",
			Type:        param.TypeString,
			Default:     DefaultModel,
			Required:    true,
		},
		{
			Name:        paramLanguage,
			DisplayName: "Language",
			Type:        param.TypeString,
			Default:     "",
			Placeholder: "zh",
		},
		{
			Name:        paramPrompt,
			DisplayName: "Prompt",
			Type:        param.TypeString,
			Default:     "",
		},
		{
			Name:        paramResponseFormat,
			DisplayName: "Response Format",
			Type:        param.TypeOptions,
			Default:     DefaultResponseFormat,
			Options: []param.Option{
				{Name: "JSON", Value: "json"},
				{Name: "Text", Value: "text"},
				{Name: "Verbose JSON", Value: "verbose_json"},
				{Name: "SRT", Value: "srt"},
				{Name: "VTT", Value: "vtt"},
			},
		},
	}
}

// ----------------------------------------------------------------------
// メイン処理 (Execute メソッド)
// ----------------------------------------------------------------------

// Execute は入力アイテムごとに書き起こしAPIを1回呼び出し、結果をJSONとして返します。
func (n *Node) Execute(ctx context.Context, h node.Host, items []node.Item, params param.Values, opts ...node.RunOption) ([]node.OutputItem, error) {
	runID := uuid.NewString()

	cred, err := h.FetchCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("認証情報 %s の取得に失敗しました: %w", credential.Name, err)
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "ASRノードの実行を開始します", "run_id", runID, "items", len(items))

	fields := Fields()
	out, err := node.Run(ctx, items, func(ctx context.Context, index int, item node.Item) (node.OutputItem, error) {
		return n.transcribe(ctx, h, cred, fields, params, index, item)
	}, opts...)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "ASRノードの実行が完了しました", "run_id", runID, "outputs", len(out))
	return out, nil
}

// transcribe はアイテム1件分の書き起こしを行います。
func (n *Node) transcribe(ctx context.Context, h node.Host, cred credential.Credential, fields []param.Field, params param.Values, index int, item node.Item) (node.OutputItem, error) {
	p, err := param.Resolve(fields, params, item.JSON)
	if err != nil {
		return node.OutputItem{}, node.NewValidationError(index, err.Error())
	}

	form := transcriptionForm{
		FileName:       defaultFileName,
		ContentType:    defaultContentType,
		Model:          p.String(paramModel),
		Language:       p.String(paramLanguage),
		Prompt:         p.String(paramPrompt),
		ResponseFormat: p.String(paramResponseFormat),
	}

	switch p.String(paramAudioSource) {
	case audioSourceURL:
		audio, err := h.Send(ctx, api.Request{Method: http.MethodGet, URL: p.String(paramAudioURL)})
		if err != nil {
			return node.OutputItem{}, node.NewAPIError(index, err)
		}
		form.Audio = audio
	default:
		bin, err := h.ReadBinary(item, p.String(paramBinaryPropertyName))
		if err != nil {
			return node.OutputItem{}, node.NewAPIError(index, err)
		}
		form.Audio = bin.Data
		if bin.FileName != "" {
			form.FileName = bin.FileName
		}
		if bin.MimeType != "" {
			form.ContentType = bin.MimeType
		}
	}

	body, contentType, err := form.encode()
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}

	u, err := cred.URL(p.String(paramEndpointPath), nil)
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)

	resp, err := h.SendAuthenticated(ctx, api.Request{Method: http.MethodPost, URL: u, Header: header, Body: body})
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}

	slog.DebugContext(ctx, "書き起こしが完了しました",
		"item_index", index,
		"model", form.Model,
		"audio_bytes", len(form.Audio),
		"response_format", form.ResponseFormat)

	result, err := decodeTranscription(resp, form.ResponseFormat)
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}
	return node.OutputItem{JSON: result}, nil
}

// decodeTranscription は応答を出力JSONに変換します。
// json / verbose_json ではオブジェクトに responseFormat を加え、それ以外はテキストとして text に格納します。
func decodeTranscription(resp []byte, format string) (map[string]any, error) {
	if !isJSONFormat(format) {
		return map[string]any{"text": string(resp), "responseFormat": format}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(resp))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, &api.ErrInvalidJSON{Details: "書き起こし応答", WrappedErr: err}
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &api.ErrInvalidJSON{
			Details:    "書き起こし応答",
			WrappedErr: fmt.Errorf("JSONオブジェクトではありません: %s", strings.TrimSpace(string(resp))),
		}
	}
	obj["responseFormat"] = format
	return obj, nil
}
