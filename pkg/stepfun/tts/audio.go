package tts

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ----------------------------------------------------------------------
// WAV ヘッダー定数
// ----------------------------------------------------------------------

const (
	riffChunkIDSize    = 4 // "RIFF"
	riffChunkSizeField = 4 // File size - 8
	waveIDSize         = 4 // "WAVE"
	wavRiffHeaderSize  = riffChunkIDSize + riffChunkSizeField + waveIDSize

	chunkHeaderSize = 8 // chunk ID + chunk size
)

// validateWav は合成結果がWAVとして解釈できるかを確認します。
// RIFF/WAVE ヘッダーに続いて data チャンクが存在することのみを検証し、
// サンプリングレートなどの内容には立ち入りません。
func validateWav(wavBytes []byte) error {
	if len(wavBytes) < wavRiffHeaderSize {
		return &ErrInvalidAudio{
			Format:  "wav",
			Details: fmt.Sprintf("WAVデータのサイズが短すぎます (%dバイト)", len(wavBytes)),
		}
	}
	if !bytes.Equal(wavBytes[0:4], []byte("RIFF")) || !bytes.Equal(wavBytes[8:12], []byte("WAVE")) {
		return &ErrInvalidAudio{Format: "wav", Details: "RIFF/WAVE ヘッダーがありません"}
	}

	// fmt や LIST などのチャンクを読み飛ばし、data チャンクを探す
	offset := wavRiffHeaderSize
	for offset+chunkHeaderSize <= len(wavBytes) {
		chunkID := wavBytes[offset : offset+4]
		chunkSize := binary.LittleEndian.Uint32(wavBytes[offset+4 : offset+8])

		if bytes.Equal(chunkID, []byte("data")) {
			return nil
		}

		next := offset + chunkHeaderSize + int(chunkSize)
		// チャンクは偶数バイト境界に揃えられる
		if chunkSize%2 == 1 {
			next++
		}
		if next <= offset {
			break
		}
		offset = next
	}

	return &ErrInvalidAudio{Format: "wav", Details: "data チャンクが見つかりません"}
}
