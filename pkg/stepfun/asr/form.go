package asr

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// transcriptionForm は /audio/transcriptions に送る multipart フォームの内容です。
type transcriptionForm struct {
	Audio          []byte
	FileName       string
	ContentType    string
	Model          string
	Language       string
	Prompt         string
	ResponseFormat string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode はフォームをエンコードし、ボディと Content-Type ヘッダーの値を返します。
// 空の任意フィールドは送信しません。
func (f transcriptionForm) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// file パートの Content-Type は音声の MIME タイプ
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.FileName)))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("file パートの作成に失敗しました: %w", err)
	}
	if _, err := part.Write(f.Audio); err != nil {
		return nil, "", fmt.Errorf("音声データの書き込みに失敗しました: %w", err)
	}

	fields := []struct{ name, value string }{
		{"model", f.Model},
		{"language", f.Language},
		{"prompt", f.Prompt},
		{"response_format", f.ResponseFormat},
	}
	for _, fd := range fields {
		if fd.value == "" && fd.name != "model" {
			continue
		}
		if err := w.WriteField(fd.name, fd.value); err != nil {
			return nil, "", fmt.Errorf("フィールド %s の書き込みに失敗しました: %w", fd.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart フォームの終端に失敗しました: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
