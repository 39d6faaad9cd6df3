package tts

import "strings"

// ----------------------------------------------------------------------
// ノード定数
// ----------------------------------------------------------------------

const (
	NodeName = "stepFunTts"

	DefaultEndpointPath       = "/audio/speech"
	DefaultModel              = "step-tts-2"
	DefaultOutputFormat       = "mp3"
	DefaultBinaryPropertyName = "audio"
	DefaultFileNameStem       = "stepfun-tts"

	// MaxTextLength は1リクエストで合成できる最大文字数です。
	MaxTextLength = 1000

	voiceListEndpoint = "/audio/system_voices"
	voiceListModel    = "step-tts-mini"
)

// パラメータ名
const (
	paramText               = "text"
	paramVoiceSource        = "voiceSource"
	paramVoice              = "voice"
	paramCustomVoice        = "customVoice"
	paramModel              = "model"
	paramOutputFormat       = "outputFormat"
	paramSpeed              = "speed"
	paramVolume             = "volume"
	paramMimeType           = "mimeType"
	paramCustomMimeType     = "customMimeType"
	paramBinaryPropertyName = "binaryPropertyName"
	paramFileName           = "fileName"
	paramEndpointPath       = "endpointPath"
)

const (
	voiceSourceList   = "list"
	voiceSourceCustom = "custom"

	mimeTypeAuto   = "auto"
	mimeTypeCustom = "custom"
)

// ----------------------------------------------------------------------
// 出力フォーマットと MIME タイプ
// ----------------------------------------------------------------------

// outputFormatMimeTypes は response_format ごとの MIME タイプです。
var outputFormatMimeTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"wav":  "audio/wav",
	"pcm":  "audio/pcm",
	"opus": "audio/opus",
}

// mimeTypeExtensions は MIME タイプからファイル拡張子への固定の対応表です。
var mimeTypeExtensions = map[string]string{
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/aac":    "aac",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
	"audio/wav":    "wav",
	"audio/wave":   "wav",
	"audio/x-wav":  "wav",
	"audio/pcm":    "pcm",
	"audio/opus":   "opus",
	"audio/ogg":    "ogg",
}

// MimeTypeForFormat は出力フォーマットに対応する MIME タイプを返します。
// 未知のフォーマットは mp3 として扱います。
func MimeTypeForFormat(format string) string {
	if m, ok := outputFormatMimeTypes[strings.ToLower(format)]; ok {
		return m
	}
	return outputFormatMimeTypes[DefaultOutputFormat]
}

// ExtensionForMimeType は MIME タイプに対応する拡張子を返します。
// 対応表にない場合は空文字を返し、ファイル名に拡張子を付けません。
func ExtensionForMimeType(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mimeTypeExtensions[mt]
}

// FileName はファイル名の語幹と MIME タイプから出力ファイル名を組み立てます。
func FileName(stem, mimeType string) string {
	if stem == "" {
		stem = DefaultFileNameStem
	}
	if ext := ExtensionForMimeType(mimeType); ext != "" {
		return stem + "." + ext
	}
	return stem
}

func isWavMimeType(mimeType string) bool {
	return ExtensionForMimeType(mimeType) == "wav"
}
