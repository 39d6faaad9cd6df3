package tts

import "fmt"

// ErrInvalidAudio は合成APIの応答が要求したフォーマットの音声として解釈できないことを示します。
type ErrInvalidAudio struct {
	Format  string
	Details string
}

func (e *ErrInvalidAudio) Error() string {
	return fmt.Sprintf("不正な音声データ (%s): %s", e.Format, e.Details)
}
