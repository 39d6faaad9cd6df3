package api

import (
	"fmt"
)

// ErrAPINetwork は StepFun API またはダウンロード先との通信失敗を示します。
// サーバーが 4xx を返した場合は StatusCode と応答ボディを保持します。
type ErrAPINetwork struct {
	Endpoint   string
	StatusCode int
	Body       []byte
	WrappedErr error
}

func (e *ErrAPINetwork) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API通信エラー (%s, HTTP %d): %v", e.Endpoint, e.StatusCode, e.WrappedErr)
	}
	return fmt.Sprintf("API通信エラー (%s): %v", e.Endpoint, e.WrappedErr)
}

func (e *ErrAPINetwork) Unwrap() error {
	return e.WrappedErr
}

// ErrInvalidJSON は応答ボディが想定した JSON の形をしていないことを示します。
type ErrInvalidJSON struct {
	Details    string
	WrappedErr error
}

func (e *ErrInvalidJSON) Error() string {
	return fmt.Sprintf("応答JSONが不正です: %s (%v)", e.Details, e.WrappedErr)
}

func (e *ErrInvalidJSON) Unwrap() error {
	return e.WrappedErr
}
