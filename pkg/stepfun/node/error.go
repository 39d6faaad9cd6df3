package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
)

// ----------------------------------------------------------------------
// アイテム単位のエラー
// ----------------------------------------------------------------------

// ErrorKind はアイテム処理の失敗の種類です。
type ErrorKind string

const (
	// KindValidation はネットワーク呼び出し前にローカルで検出した入力エラーです。
	KindValidation ErrorKind = "validation"
	// KindAPI はHTTP呼び出しの失敗、または想定外の応答形式です。
	KindAPI ErrorKind = "api"
)

// NodeError は失敗したアイテムのインデックスと、リモートから返されたペイロードを保持します。
type NodeError struct {
	Kind      ErrorKind
	ItemIndex int
	Message   string
	Payload   map[string]any
	Err       error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("アイテム #%d の処理に失敗しました (%s): %s", e.ItemIndex, e.Kind, e.Message)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewValidationError は入力検証エラーを生成します。
func NewValidationError(index int, message string) *NodeError {
	return &NodeError{
		Kind:      KindValidation,
		ItemIndex: index,
		Message:   message,
		Payload:   map[string]any{"message": message},
	}
}

// NewAPIError は err をアイテム単位のAPIエラーとしてラップします。
// err が既に *NodeError の場合は種類を保ったままインデックスだけを付け直します。
func NewAPIError(index int, err error) *NodeError {
	var ne *NodeError
	if errors.As(err, &ne) {
		cp := *ne
		cp.ItemIndex = index
		return &cp
	}

	payload := map[string]any{"message": err.Error()}
	var netErr *api.ErrAPINetwork
	if errors.As(err, &netErr) {
		payload["endpoint"] = netErr.Endpoint
		if netErr.WrappedErr != nil {
			payload["description"] = netErr.WrappedErr.Error()
		}
		if netErr.StatusCode != 0 {
			payload["httpCode"] = netErr.StatusCode
		}
		if len(netErr.Body) > 0 {
			payload["body"] = decodeBody(netErr.Body)
		}
	}

	return &NodeError{
		Kind:      KindAPI,
		ItemIndex: index,
		Message:   err.Error(),
		Payload:   payload,
		Err:       err,
	}
}

// decodeBody は応答ボディを JSON として解釈し、解釈できなければ文字列のまま返します。
func decodeBody(b []byte) any {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return string(b)
	}
	return v
}

// ErrExecutionAborted は continue-on-fail が無効な実行で最初に失敗したアイテムを示します。
type ErrExecutionAborted struct {
	Completed int
	Cause     *NodeError
}

func (e *ErrExecutionAborted) Error() string {
	return fmt.Sprintf("ノードの実行を中断しました (完了 %d 件): %v", e.Completed, e.Cause)
}

func (e *ErrExecutionAborted) Unwrap() error {
	return e.Cause
}
