package tts

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
	"github.com/shouni/go-stepfun/pkg/stepfun/node/nodetest"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
)

// minimalWav は fmt と data チャンクを持つ最小のWAVを返します。
func minimalWav() []byte {
	b := make([]byte, 0, 48)
	b = append(b, "RIFF"...)
	b = binary.LittleEndian.AppendUint32(b, 40)
	b = append(b, "WAVE"...)
	b = append(b, "fmt "...)
	b = binary.LittleEndian.AppendUint32(b, 16)
	b = append(b, make([]byte, 16)...)
	b = append(b, "data"...)
	b = binary.LittleEndian.AppendUint32(b, 4)
	b = append(b, 0, 0, 0, 0)
	return b
}

func audioHost(audio []byte) *nodetest.Host {
	h := nodetest.New()
	h.Authenticated = func(api.Request) ([]byte, error) { return audio, nil }
	return h
}

func decodeBody(t *testing.T, r api.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &m))
	return m
}

func TestExecute_EmptyTextMakesNoNetworkCall(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		h := audioHost([]byte("ID3"))

		_, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{"text": text})

		var nodeErr *node.NodeError
		require.ErrorAs(t, err, &nodeErr, "text %q", text)
		assert.Equal(t, node.KindValidation, nodeErr.Kind)
		assert.Equal(t, 0, nodeErr.ItemIndex)
		assert.Equal(t, "Text is required", nodeErr.Message)
		assert.Zero(t, h.NetworkCalls())
	}
}

func TestExecute_EmptyTextAttributedToItemIndex(t *testing.T) {
	h := audioHost([]byte("ID3"))
	items := []node.Item{
		{JSON: map[string]any{"t": "hello"}},
		{JSON: map[string]any{"t": "  "}},
	}

	_, err := New().Execute(context.Background(), h, items, param.Values{"text": "={{.t}}"})

	var nodeErr *node.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, node.KindValidation, nodeErr.Kind)
	assert.Equal(t, 1, nodeErr.ItemIndex)
	// 1件目のみ送信される
	assert.Equal(t, 1, h.NetworkCalls())
}

func TestExecute_TooLongText(t *testing.T) {
	h := audioHost([]byte("ID3"))
	long := make([]rune, MaxTextLength+1)
	for i := range long {
		long[i] = 'あ'
	}

	_, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{"text": string(long)})

	var nodeErr *node.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, node.KindValidation, nodeErr.Kind)
	assert.Zero(t, h.NetworkCalls())
}

func TestExecute_BuildsRequestAndAttachesAudio(t *testing.T) {
	h := audioHost([]byte("ID3-audio"))

	out, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{
		"text":  "こんにちは",
		"voice": "cixingnansheng",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	reqs := h.AuthenticatedRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "https://api.example.com/v1/audio/speech", reqs[0].URL)
	assert.Equal(t, "Bearer sk-test", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, map[string]any{
		"model":           "step-tts-2",
		"input":           "こんにちは",
		"voice":           "cixingnansheng",
		"response_format": "mp3",
	}, decodeBody(t, reqs[0]))

	o := out[0]
	assert.Equal(t, 0, o.PairedItem)
	assert.Equal(t, "こんにちは", o.JSON["text"])
	assert.Equal(t, "cixingnansheng", o.JSON["voice"])
	assert.Equal(t, "step-tts-2", o.JSON["model"])
	assert.Equal(t, "mp3", o.JSON["outputFormat"])

	bin, ok := o.Binary[DefaultBinaryPropertyName]
	require.True(t, ok)
	assert.Equal(t, "stepfun-tts.mp3", bin.FileName)
	assert.Equal(t, "audio/mpeg", bin.MimeType)
	assert.Equal(t, []byte("ID3-audio"), bin.Data)
}

func TestExecute_SpeedVolumeAndCustomVoice(t *testing.T) {
	h := audioHost([]byte("OggS"))

	out, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{
		"text":               "hi",
		"voiceSource":        "custom",
		"customVoice":        "my-voice",
		"model":              "step-tts-mini",
		"outputFormat":       "opus",
		"speed":              1.256,
		"volume":             "0.8",
		"binaryPropertyName": "speech",
		"fileName":           "greeting",
	})
	require.NoError(t, err)

	body := decodeBody(t, h.AuthenticatedRequests()[0])
	assert.Equal(t, "my-voice", body["voice"])
	assert.Equal(t, "step-tts-mini", body["model"])
	assert.Equal(t, "opus", body["response_format"])
	assert.InDelta(t, 1.26, body["speed"], 1e-9)
	assert.InDelta(t, 0.8, body["volume"], 1e-9)

	bin := out[0].Binary["speech"]
	assert.Equal(t, "greeting.opus", bin.FileName)
	assert.Equal(t, "audio/opus", bin.MimeType)
	assert.InDelta(t, 1.26, out[0].JSON["speed"], 1e-9)
}

func TestExecute_OmitsOptionalFieldsWhenUnset(t *testing.T) {
	h := audioHost([]byte("ID3"))

	_, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{"text": "hi"})
	require.NoError(t, err)

	body := decodeBody(t, h.AuthenticatedRequests()[0])
	assert.NotContains(t, body, "speed")
	assert.NotContains(t, body, "volume")
	assert.NotContains(t, body, "voice")
}

func TestExecute_CustomMimeTypeWithoutExtension(t *testing.T) {
	h := audioHost([]byte("raw"))

	out, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{
		"text":           "hi",
		"mimeType":       "custom",
		"customMimeType": "audio/x-unknown",
	})
	require.NoError(t, err)

	bin := out[0].Binary[DefaultBinaryPropertyName]
	assert.Equal(t, "stepfun-tts", bin.FileName)
	assert.Equal(t, "audio/x-unknown", bin.MimeType)
}

func TestExecute_WavIsValidated(t *testing.T) {
	h := audioHost(minimalWav())
	out, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{"text": "hi", "outputFormat": "wav"})
	require.NoError(t, err)
	assert.Equal(t, "stepfun-tts.wav", out[0].Binary[DefaultBinaryPropertyName].FileName)

	h = audioHost([]byte(`{"error":"not audio"}`))
	_, err = New().Execute(context.Background(), h, []node.Item{{}}, param.Values{"text": "hi", "outputFormat": "wav"})

	var nodeErr *node.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, node.KindAPI, nodeErr.Kind)
	var audioErr *ErrInvalidAudio
	assert.ErrorAs(t, err, &audioErr)
}

func TestExecute_PresetWavMimeTypeIsNotValidated(t *testing.T) {
	h := audioHost([]byte("ID3-not-riff"))

	out, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{
		"text":     "hi",
		"mimeType": "audio/wav",
	})
	require.NoError(t, err)

	bin := out[0].Binary[DefaultBinaryPropertyName]
	assert.Equal(t, "audio/wav", bin.MimeType)
	assert.Equal(t, "stepfun-tts.wav", bin.FileName)
	assert.Equal(t, []byte("ID3-not-riff"), bin.Data)
}

func TestExecute_LiteralBracesAreSentAsIs(t *testing.T) {
	h := audioHost([]byte("ID3"))

	out, err := New().Execute(context.Background(), h, []node.Item{{JSON: map[string]any{}}}, param.Values{"text": "Say {{hello}} now"})
	require.NoError(t, err)

	require.Equal(t, 1, h.NetworkCalls())
	assert.Equal(t, "Say {{hello}} now", decodeBody(t, h.AuthenticatedRequests()[0])["input"])
	assert.Equal(t, "Say {{hello}} now", out[0].JSON["text"])
}

func TestExecute_ExpressionErrorIsNotMissingText(t *testing.T) {
	h := audioHost([]byte("ID3"))

	_, err := New().Execute(context.Background(), h, []node.Item{{JSON: map[string]any{"line": "one"}}}, param.Values{"text": "={{.missing}}"})

	var nodeErr *node.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, node.KindValidation, nodeErr.Kind)
	assert.NotEqual(t, "Text is required", nodeErr.Message)
	assert.Contains(t, nodeErr.Message, "{{.missing}}")
	assert.Zero(t, h.NetworkCalls())
}

func TestExecute_APIErrorCarriesPayloadAndIndex(t *testing.T) {
	h := nodetest.New()
	calls := 0
	h.Authenticated = func(api.Request) ([]byte, error) {
		calls++
		if calls == 2 {
			return nil, &api.ErrAPINetwork{Endpoint: "/audio/speech", WrappedErr: errors.New(`429 {"error":{"message":"rate limited"}}`)}
		}
		return []byte("ID3"), nil
	}
	items := []node.Item{{}, {}, {}}

	_, err := New().Execute(context.Background(), h, items, param.Values{"text": "hi"})

	var nodeErr *node.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, node.KindAPI, nodeErr.Kind)
	assert.Equal(t, 1, nodeErr.ItemIndex)
	assert.Contains(t, nodeErr.Payload["description"], "rate limited")
	assert.Equal(t, 2, calls)
}

func TestExecute_MultipleItemsPairing(t *testing.T) {
	h := audioHost([]byte("ID3"))
	items := []node.Item{
		{JSON: map[string]any{"line": "one"}},
		{JSON: map[string]any{"line": "two"}},
		{JSON: map[string]any{"line": "three"}},
	}

	out, err := New().Execute(context.Background(), h, items, param.Values{"text": "={{.line}}"})
	require.NoError(t, err)

	require.Len(t, out, len(items))
	for i, o := range out {
		assert.Equal(t, i, o.PairedItem)
		assert.Equal(t, items[i].JSON["line"], o.JSON["text"])
	}
	assert.Equal(t, 1, h.CredentialFetches())
}

func TestExecute_ContinueOnFail(t *testing.T) {
	h := audioHost([]byte("ID3"))
	items := []node.Item{
		{JSON: map[string]any{"line": "one"}},
		{JSON: map[string]any{"line": " "}},
		{JSON: map[string]any{"line": "three"}},
	}

	out, err := New().Execute(context.Background(), h, items, param.Values{"text": "={{.line}}"}, node.WithContinueOnFail(true))
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "Text is required", out[1].JSON["error"])
	assert.Equal(t, "three", out[2].JSON["text"])
	assert.Equal(t, 2, h.NetworkCalls())
}

func TestExecute_InvalidCredential(t *testing.T) {
	h := audioHost([]byte("ID3"))
	h.Credential.APIKey = ""

	_, err := New().Execute(context.Background(), h, []node.Item{{}}, param.Values{"text": "hi"})

	require.Error(t, err)
	assert.Zero(t, h.NetworkCalls())
}

func TestExtensionForMimeType(t *testing.T) {
	assert.Equal(t, "wav", ExtensionForMimeType("audio/wav"))
	assert.Equal(t, "mp3", ExtensionForMimeType("audio/mpeg"))
	assert.Equal(t, "mp3", ExtensionForMimeType("Audio/MPEG; charset=binary"))
	assert.Equal(t, "", ExtensionForMimeType("audio/x-unknown"))

	assert.Equal(t, "stepfun-tts.wav", FileName("", "audio/wav"))
	assert.Equal(t, "speech", FileName("speech", "application/octet-stream"))
}

func TestMimeTypeForFormat(t *testing.T) {
	assert.Equal(t, "audio/flac", MimeTypeForFormat("flac"))
	assert.Equal(t, "audio/mpeg", MimeTypeForFormat("unknown"))
}

func TestValidateWav(t *testing.T) {
	assert.NoError(t, validateWav(minimalWav()))

	// LIST チャンクを挟んでも data を見つける
	b := minimalWav()[:12]
	b = append(b, "LIST"...)
	b = binary.LittleEndian.AppendUint32(b, 3)
	b = append(b, 1, 2, 3, 0)
	b = append(b, "data"...)
	b = binary.LittleEndian.AppendUint32(b, 0)
	assert.NoError(t, validateWav(b))

	assert.Error(t, validateWav([]byte("RIFF")))
	assert.Error(t, validateWav(minimalWav()[:36]))
}

func TestDescription(t *testing.T) {
	d := New().Description()
	assert.Equal(t, NodeName, d.Name)
	require.Len(t, d.Credentials, 1)
	assert.Equal(t, "stepFunApi", d.Credentials[0].Name)
}
