package node

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-stepfun/pkg/stepfun/api"
)

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{JSON: map[string]any{"n": i}}
	}
	return items
}

func echoHandler(calls *[]int, failAt map[int]error) ItemHandler {
	return func(_ context.Context, index int, item Item) (OutputItem, error) {
		*calls = append(*calls, index)
		if err, ok := failAt[index]; ok {
			return OutputItem{}, err
		}
		return OutputItem{JSON: map[string]any{"n": item.JSON["n"]}}, nil
	}
}

func TestRun_PreservesCountAndPairing(t *testing.T) {
	var calls []int
	out, err := Run(context.Background(), makeItems(4), echoHandler(&calls, nil))
	require.NoError(t, err)

	require.Len(t, out, 4)
	for i, o := range out {
		assert.Equal(t, i, o.PairedItem)
		assert.Equal(t, i, o.JSON["n"])
	}
	assert.Equal(t, []int{0, 1, 2, 3}, calls)
}

func TestRun_AbortsAtFirstFailure(t *testing.T) {
	var calls []int
	cause := errors.New("boom")

	out, err := Run(context.Background(), makeItems(4), echoHandler(&calls, map[int]error{1: cause}))

	assert.Nil(t, out)
	var aborted *ErrExecutionAborted
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, 1, aborted.Completed)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, 1, nodeErr.ItemIndex)
	assert.Equal(t, KindAPI, nodeErr.Kind)
	assert.ErrorIs(t, err, cause)

	// 失敗以降のアイテムは処理されない
	assert.Equal(t, []int{0, 1}, calls)
}

func TestRun_ContinueOnFail(t *testing.T) {
	var calls []int
	failAt := map[int]error{
		1: NewValidationError(99, "Text is required"),
		2: errors.New("boom"),
	}

	out, err := Run(context.Background(), makeItems(4), echoHandler(&calls, failAt), WithContinueOnFail(true))
	require.NoError(t, err)

	require.Len(t, out, 4)
	assert.Equal(t, 0, out[0].JSON["n"])
	assert.Equal(t, map[string]any{"error": "Text is required"}, out[1].JSON)
	assert.Equal(t, 1, out[1].PairedItem)
	assert.Equal(t, map[string]any{"error": "boom"}, out[2].JSON)
	assert.Equal(t, 3, out[3].PairedItem)
	assert.Equal(t, []int{0, 1, 2, 3}, calls)
}

func TestRun_ValidationKindIsKept(t *testing.T) {
	var calls []int
	_, err := Run(context.Background(), makeItems(3), echoHandler(&calls, map[int]error{2: NewValidationError(0, "empty")}))

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, KindValidation, nodeErr.Kind)
	assert.Equal(t, 2, nodeErr.ItemIndex)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []int
	_, err := Run(ctx, makeItems(2), echoHandler(&calls, nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestNewAPIError_Payload(t *testing.T) {
	err := NewAPIError(3, &api.ErrAPINetwork{Endpoint: "https://x/v1/audio/speech", WrappedErr: errors.New(`401 {"error":"invalid key"}`)})

	assert.Equal(t, 3, err.ItemIndex)
	assert.Equal(t, "https://x/v1/audio/speech", err.Payload["endpoint"])
	assert.Equal(t, `401 {"error":"invalid key"}`, err.Payload["description"])
	assert.Contains(t, err.Error(), "#3")
	assert.NotContains(t, err.Payload, "httpCode")
	assert.NotContains(t, err.Payload, "body")
}

func TestNewAPIError_HTTPStatusAndBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{"JSONボディ", `{"error":{"message":"bad voice","code":12}}`, map[string]any{
			"error": map[string]any{"message": "bad voice", "code": json.Number("12")},
		}},
		{"JSONでないボディ", "Bad Request\n", "Bad Request\n"},
		{"末尾にゴミのあるJSON", `{"a":1} trailing`, `{"a":1} trailing`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(0, &api.ErrAPINetwork{
				Endpoint:   "https://x/v1/audio/speech",
				StatusCode: 400,
				Body:       []byte(tt.body),
				WrappedErr: errors.New("client error"),
			})

			assert.Equal(t, 400, err.Payload["httpCode"])
			assert.Equal(t, tt.want, err.Payload["body"])
		})
	}
}

func TestReduce(t *testing.T) {
	results := []Result{
		Success(0, OutputItem{JSON: map[string]any{"ok": true}}),
		Failure(1, NewValidationError(1, "bad")),
	}

	_, err := Reduce(results, false)
	var aborted *ErrExecutionAborted
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, 1, aborted.Cause.ItemIndex)

	out, err := Reduce(results, true)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].PairedItem)
	assert.Equal(t, 1, out[1].PairedItem)
}
