package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shouni/go-stepfun/pkg/stepfun/node"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
)

// loadItems は入力アイテムを読み込みます。パスが空の場合は空のアイテムを1件返します。
func loadItems(path string) ([]node.Item, error) {
	if path == "" {
		return []node.Item{{JSON: map[string]any{}}}, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("アイテムファイル %s の読み込みに失敗しました: %w", path, err)
	}
	var items []node.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("アイテムファイル %s のJSONが不正です: %w", path, err)
	}
	for i := range items {
		if items[i].JSON == nil {
			items[i].JSON = map[string]any{}
		}
	}
	return items, nil
}

// parseParams は name=value 形式の指定をパラメータ値に変換します。
func parseParams(pairs []string) (param.Values, error) {
	values := param.Values{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("パラメータの形式が不正です (name=value): %q", p)
		}
		values[name] = value
	}
	return values, nil
}

// writeJSON は v をインデント付きJSONとして出力します。path が空なら w に書き込みます。
func writeJSON(w io.Writer, path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("出力のエンコードに失敗しました: %w", err)
	}
	b = append(b, '\n')

	if path == "" {
		_, err := w.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("出力ファイル %s の書き込みに失敗しました: %w", path, err)
	}
	return nil
}
