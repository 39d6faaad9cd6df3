package node

import (
	"context"
	"fmt"
	"log/slog"
)

// ----------------------------------------------------------------------
// 実行オプション (Functional Options Pattern)
// ----------------------------------------------------------------------

// RunConfig は Run の実行中に適用される設定です。
type RunConfig struct {
	ContinueOnFail bool
}

// RunOption はオプションを適用するための関数シグネチャです。
type RunOption func(*RunConfig)

// WithContinueOnFail は失敗したアイテムをエラー出力として残し、後続のアイテムの処理を続けます。
func WithContinueOnFail(enabled bool) RunOption {
	return func(cfg *RunConfig) {
		cfg.ContinueOnFail = enabled
	}
}

func newRunConfig(opts []RunOption) *RunConfig {
	cfg := &RunConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ----------------------------------------------------------------------
// アイテム単位の結果
// ----------------------------------------------------------------------

// Result はアイテム1件分の処理結果です。Output と Err のどちらか一方のみが設定されます。
type Result struct {
	Index  int
	Output *OutputItem
	Err    *NodeError
}

// Success は成功結果を生成します。
func Success(index int, out OutputItem) Result {
	out.PairedItem = index
	return Result{Index: index, Output: &out}
}

// Failure は失敗結果を生成します。
func Failure(index int, err *NodeError) Result {
	return Result{Index: index, Err: err}
}

// Reduce は結果の列から最終的な出力を組み立てます。
//
// continueOnFail が有効な場合、失敗したアイテムは {"error": メッセージ} を持つ出力に置き換わり、
// 入力と出力の1対1の対応が保たれます。無効な場合は最初の失敗で ErrExecutionAborted を返します。
func Reduce(results []Result, continueOnFail bool) ([]OutputItem, error) {
	out := make([]OutputItem, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, *r.Output)
			continue
		}
		if !continueOnFail {
			return nil, &ErrExecutionAborted{Completed: len(out), Cause: r.Err}
		}
		out = append(out, OutputItem{
			JSON:       map[string]any{"error": r.Err.Message},
			PairedItem: r.Index,
		})
	}
	return out, nil
}

// ----------------------------------------------------------------------
// メイン処理
// ----------------------------------------------------------------------

// ItemHandler はアイテム1件を処理し、出力を1件返します。
type ItemHandler func(ctx context.Context, index int, item Item) (OutputItem, error)

// Run はアイテムを入力順に1件ずつ処理します。
// continue-on-fail が無効な場合、最初の失敗以降のアイテムは処理しません。
func Run(ctx context.Context, items []Item, handler ItemHandler, opts ...RunOption) ([]OutputItem, error) {
	cfg := newRunConfig(opts)
	results := make([]Result, 0, len(items))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("アイテム #%d の処理前にキャンセルされました: %w", i, err)
		}

		out, err := handler(ctx, i, item)
		if err != nil {
			nodeErr := NewAPIError(i, err)
			slog.WarnContext(ctx, "アイテムの処理に失敗しました",
				"item_index", i,
				"kind", nodeErr.Kind,
				"error", nodeErr.Message)
			results = append(results, Failure(i, nodeErr))
			if !cfg.ContinueOnFail {
				break
			}
			continue
		}
		results = append(results, Success(i, out))
	}

	return Reduce(results, cfg.ContinueOnFail)
}
