package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
)

// Node はテキストを音声に変換するノードです。
type Node struct{}

var _ node.Executor = (*Node)(nil)

// New は TTS ノードを返します。
func New() *Node {
	return &Node{}
}

// speechRequest は /audio/speech のリクエストボディです。
type speechRequest struct {
	Model          string   `json:"model"`
	Input          string   `json:"input"`
	Voice          string   `json:"voice,omitempty"`
	ResponseFormat string   `json:"response_format"`
	Speed          *float64 `json:"speed,omitempty"`
	Volume         *float64 `json:"volume,omitempty"`
}

// Description はノードの登録メタデータを返します。
func (n *Node) Description() node.Description {
	return node.Description{
		DisplayName:      "Stepfun.ai",
		Name:             NodeName,
		Group:            []string{"transform"},
		Version:          1,
		Description:      "Convert Text Into Speech using Stepfun.ai's Model (TTS)",
		Subtitle:         `={{$parameter["model"]}}`,
		DocumentationURL: "https://platform.stepfun.ai/",
		Icon:             "file:stepfun.svg",
		Categories:       []string{"AI", "Audio"},
		Aliases:          []string{"tts", "text to speech", "text-to-speech", "speech synthesis", "voice", "stepfun"},
		DefaultName:      "Convert Text Into Speech",
		Credentials:      []node.CredentialRef{{Name: credential.Name, Required: true}},
		Properties:       Fields(),
	}
}

// Fields はノードのパラメータ定義を返します。
func Fields() []param.Field {
	return []param.Field{
		{
			Name:        paramText,
			DisplayName: "Text",
			Type:        param.TypeString,
			Default:     "",
			Required:    true,
			Description: fmt.Sprintf("The text to convert to speech (max %d characters)", MaxTextLength),
		},
		{
			Name:        paramVoiceSource,
			DisplayName: "Voice Source",
			Type:        param.TypeOptions,
			Default:     voiceSourceList,
			Options: []param.Option{
				{Name: "From List", Value: voiceSourceList},
				{Name: "Custom Voice ID", Value: voiceSourceCustom},
			},
		},
		{
			Name:              paramVoice,
			DisplayName:       "Voice",
			Type:              param.TypeOptions,
			Default:           "",
			LoadOptionsMethod: "getVoices",
			Description:       "The voice to use for speech synthesis",
			ShowWhen:          map[string][]string{paramVoiceSource: {voiceSourceList}},
		},
		{
			Name:        paramCustomVoice,
			DisplayName: "Voice ID",
			Type:        param.TypeString,
			Default:     "",
			Required:    true,
			ShowWhen:    map[string][]string{paramVoiceSource: {voiceSourceCustom}},
		},
		{
			Name:        paramModel,
			DisplayName: "Model",
			Type:        param.TypeOptions,
			Default:     DefaultModel,
			Required:    true,
			Options: []param.Option{
				{Name: "step-tts-2", Value: "step-tts-2"},
				{Name: "step-tts-mini", Value: "step-tts-mini"},
			},
			Description: "The TTS model to use",
		},
		{
			Name:        paramOutputFormat,
			DisplayName: "Output Format",
			Type:        param.TypeOptions,
			Default:     DefaultOutputFormat,
			Options: []param.Option{
				{Name: "MP3", Value: "mp3"},
				{Name: "AAC", Value: "aac"},
				{Name: "FLAC", Value: "flac"},
				{Name: "WAV", Value: "wav"},
				{Name: "PCM", Value: "pcm"},
				{Name: "Opus", Value: "opus"},
			},
			Description: "The audio format for the output file",
		},
		{
			Name:        paramSpeed,
			DisplayName: "Speed",
			Type:        param.TypeNumber,
			Min:         param.Float(0.5),
			Max:         param.Float(2.0),
			Precision:   2,
		},
		{
			Name:        paramVolume,
			DisplayName: "Volume",
			Type:        param.TypeNumber,
			Min:         param.Float(0.1),
			Max:         param.Float(2.0),
			Precision:   2,
		},
		{
			Name:        paramMimeType,
			DisplayName: "MIME Type",
			Type:        param.TypeOptions,
			Default:     mimeTypeAuto,
			Options: []param.Option{
				{Name: "From Output Format", Value: mimeTypeAuto},
				{Name: "audio/mpeg", Value: "audio/mpeg"},
				{Name: "audio/aac", Value: "audio/aac"},
				{Name: "audio/flac", Value: "audio/flac"},
				{Name: "audio/wav", Value: "audio/wav"},
				{Name: "audio/pcm", Value: "audio/pcm"},
				{Name: "audio/opus", Value: "audio/opus"},
				{Name: "audio/ogg", Value: "audio/ogg"},
				{Name: "Custom", Value: mimeTypeCustom},
			},
		},
		{
			Name:        paramCustomMimeType,
			DisplayName: "Custom MIME Type",
			Type:        param.TypeString,
			Default:     "",
			Required:    true,
			Placeholder: "audio/x-custom",
			ShowWhen:    map[string][]string{paramMimeType: {mimeTypeCustom}},
		},
		{
			Name:        paramBinaryPropertyName,
			DisplayName: "Put Output File in Field",
			Type:        param.TypeString,
			Default:     DefaultBinaryPropertyName,
			Required:    true,
		},
		{
			Name:        paramFileName,
			DisplayName: "File Name",
			Type:        param.TypeString,
			Default:     DefaultFileNameStem,
			Description: "File name without extension; the extension is derived from the MIME type",
		},
		{
			Name:        paramEndpointPath,
			DisplayName: "Endpoint Path",
			Type:        param.TypeString,
			Default:     DefaultEndpointPath,
			Required:    true,
		},
	}
}

// ----------------------------------------------------------------------
// メイン処理 (Execute メソッド)
// ----------------------------------------------------------------------

// Execute は入力アイテムごとに音声合成を1回呼び出し、音声をバイナリとして添付した出力を返します。
func (n *Node) Execute(ctx context.Context, h node.Host, items []node.Item, params param.Values, opts ...node.RunOption) ([]node.OutputItem, error) {
	runID := uuid.NewString()

	cred, err := h.FetchCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("認証情報 %s の取得に失敗しました: %w", credential.Name, err)
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "TTSノードの実行を開始します", "run_id", runID, "items", len(items))

	fields := Fields()
	out, err := node.Run(ctx, items, func(ctx context.Context, index int, item node.Item) (node.OutputItem, error) {
		return n.synthesize(ctx, h, cred, fields, params, index, item)
	}, opts...)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "TTSノードの実行が完了しました", "run_id", runID, "outputs", len(out))
	return out, nil
}

// synthesize はアイテム1件分の音声合成を行います。
func (n *Node) synthesize(ctx context.Context, h node.Host, cred credential.Credential, fields []param.Field, params param.Values, index int, item node.Item) (node.OutputItem, error) {
	p, err := param.Resolve(fields, params, item.JSON)
	if err != nil {
		if isMissingText(err) {
			return node.OutputItem{}, node.NewValidationError(index, "Text is required")
		}
		return node.OutputItem{}, node.NewValidationError(index, err.Error())
	}

	// ネットワーク呼び出しの前にテキストを検証する
	text := p.String(paramText)
	if strings.TrimSpace(text) == "" {
		return node.OutputItem{}, node.NewValidationError(index, "Text is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return node.OutputItem{}, node.NewValidationError(index,
			fmt.Sprintf("Text must be at most %d characters (got %d)", MaxTextLength, utf8.RuneCountInString(text)))
	}

	voice := p.String(paramVoice)
	if p.String(paramVoiceSource) == voiceSourceCustom {
		voice = p.String(paramCustomVoice)
	}
	model := p.String(paramModel)
	format := p.String(paramOutputFormat)

	body := speechRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: format,
	}
	if v, ok := p.Float(paramSpeed); ok {
		body.Speed = &v
	}
	if v, ok := p.Float(paramVolume); ok {
		body.Volume = &v
	}

	u, err := cred.URL(p.String(paramEndpointPath), nil)
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}
	req, err := api.NewJSONRequest(http.MethodPost, u, body)
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}

	audio, err := h.SendAuthenticated(ctx, req)
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}
	if len(audio) == 0 {
		return node.OutputItem{}, node.NewAPIError(index, &ErrInvalidAudio{Format: format, Details: "応答が空です"})
	}

	// 出力フォーマットから導出した WAV のみ内容を検証する
	mimeType := resolveMimeType(p)
	if isAutoMimeType(p) && isWavMimeType(mimeType) {
		if err := validateWav(audio); err != nil {
			return node.OutputItem{}, node.NewAPIError(index, err)
		}
	}

	fileName := FileName(p.String(paramFileName), mimeType)
	bin, err := h.WriteBinary(audio, fileName, mimeType)
	if err != nil {
		return node.OutputItem{}, node.NewAPIError(index, err)
	}

	slog.DebugContext(ctx, "音声合成が完了しました",
		"item_index", index,
		"model", model,
		"format", format,
		"bytes", len(audio))

	result := map[string]any{
		"text":         text,
		"voice":        voice,
		"model":        model,
		"outputFormat": format,
		"mimeType":     mimeType,
		"fileName":     fileName,
	}
	if body.Speed != nil {
		result[paramSpeed] = *body.Speed
	}
	if body.Volume != nil {
		result[paramVolume] = *body.Volume
	}

	return node.OutputItem{
		JSON:   result,
		Binary: map[string]node.BinaryData{p.String(paramBinaryPropertyName): bin},
	}, nil
}

func isAutoMimeType(p param.Resolved) bool {
	sel := p.String(paramMimeType)
	return sel == "" || sel == mimeTypeAuto
}

// resolveMimeType は MIME タイプの選択から実際の MIME タイプを決定します。
func resolveMimeType(p param.Resolved) string {
	switch sel := p.String(paramMimeType); sel {
	case "", mimeTypeAuto:
		return MimeTypeForFormat(p.String(paramOutputFormat))
	case mimeTypeCustom:
		return strings.TrimSpace(p.String(paramCustomMimeType))
	default:
		return sel
	}
}

func isMissingText(err error) bool {
	var rerr *param.ErrRequiredParameter
	return errors.As(err, &rerr) && rerr.Name == paramText
}

// Voices は UI の選択肢用に音声一覧を返します。失敗時は空の一覧です。
func (n *Node) Voices(ctx context.Context, h node.Host) []param.Option {
	return LoadVoices(ctx, h)
}
