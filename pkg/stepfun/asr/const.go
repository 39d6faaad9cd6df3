package asr

// ----------------------------------------------------------------------
// ノード定数
// ----------------------------------------------------------------------

const (
	NodeName = "stepFunAsr"

	DefaultEndpointPath       = "/audio/transcriptions"
	DefaultModel              = "step-asr-mini"
	DefaultResponseFormat     = "json"
	DefaultBinaryPropertyName = "data"

	// 音声ファイルの既定値。バイナリに情報がない場合や URL から取得した場合に使います。
	defaultFileName    = "audio"
	defaultContentType = "application/octet-stream"
)

// パラメータ名
const (
	paramAudioSource        = "audioSource"
	paramBinaryPropertyName = "binaryPropertyName"
	paramAudioURL           = "audioUrl"
	paramEndpointPath       = "endpointPath"
	paramModel              = "model"
	paramLanguage           = "language"
	paramPrompt             = "prompt"
	paramResponseFormat     = "responseFormat"
)

const (
	audioSourceBinary = "binary"
	audioSourceURL    = "url"
)

// isJSONFormat は応答をJSONとして解釈する response_format かを返します。
func isJSONFormat(format string) bool {
	return format == "json" || format == "verbose_json"
}
